// Package model defines shared data structures.
package model

import "time"

// RotationData is the processed rotation state emitted for one sample.
type RotationData struct {
	Angle               float64 // degrees, [0,360)
	AngularVelocity     float64 // degrees/second
	AngularAcceleration float64 // degrees/second^2
	Timestamp           float64 // seconds
}

// ScoreData is the terminal snapshot of a play session.
type ScoreData struct {
	TotalScore   int     `json:"total_score"`
	Accuracy     float64 `json:"accuracy"`
	MaxCombo     int     `json:"max_combo"`
	PerfectCount int     `json:"perfect_count"`
	GreatCount   int     `json:"great_count"`
	GoodCount    int     `json:"good_count"`
	MissCount    int     `json:"miss_count"`
	FullCombo    bool    `json:"full_combo"`
}

// TotalNotes returns the number of judged notes in the snapshot.
func (s ScoreData) TotalNotes() int {
	return s.PerfectCount + s.GreatCount + s.GoodCount + s.MissCount
}

// ScoreRecord is one completed session's contribution to the B40 rating.
type ScoreRecord struct {
	SongID     string    `json:"song_id"`
	Difficulty int       `json:"difficulty"`
	Rating     float64   `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}

// NoteType identifies the kind of a chart note.
type NoteType string

// Note types understood by charts.
const (
	NoteTap      NoteType = "tap"
	NoteHold     NoteType = "hold"
	NoteCatch    NoteType = "catch"
	NoteFlick    NoteType = "flick"
	NoteRotation NoteType = "rotation"
)

// Valid reports whether t is a known note type.
func (t NoteType) Valid() bool {
	switch t {
	case NoteTap, NoteHold, NoteCatch, NoteFlick, NoteRotation:
		return true
	default:
		return false
	}
}

// Note is a single chart note.
type Note struct {
	Time          float64  `json:"time"`     // seconds
	Position      float64  `json:"position"` // degrees
	Type          NoteType `json:"type"`
	Duration      *float64 `json:"duration"`
	Direction     *string  `json:"direction"`
	RotationSpeed *float64 `json:"rotation_speed"`
}

// Chart is a complete beatmap.
type Chart struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	BPM         float64 `json:"bpm"`
	Difficulty  int     `json:"difficulty"`
	AudioFile   string  `json:"audio_file"`
	PreviewTime float64 `json:"preview_time"`
	Offset      float64 `json:"offset"` // audio offset, ms
	Notes       []Note  `json:"notes"`
}

// PlayConfig defines settings for a simulated play session.
type PlayConfig struct {
	SongID         string
	ChartPath      string
	Difficulty     int
	Duration       float64
	BaseNoteScore  int
	JitterMs       float64
	AlignTolerance float64
	FrameRate      float64
	Seed           int64
	Input          string
	Calibration    float64
}
