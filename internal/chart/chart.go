// Package chart loads, saves, and validates beatmap files.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/rotaenot/internal/model"
)

// ErrUnsupportedFormat is returned for chart files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// MaxNoteTime is the latest allowed note time, in seconds.
const MaxNoteTime = 3600.0

// minNoteGap is the smallest allowed spacing between consecutive notes, in seconds.
const minNoteGap = 0.05

type noteFile struct {
	Time          *float64 `json:"time"`
	Position      *float64 `json:"position"`
	Type          *string  `json:"type"`
	Duration      *float64 `json:"duration"`
	Direction     *string  `json:"direction"`
	RotationSpeed *float64 `json:"rotation_speed"`
}

type chartFile struct {
	Title       *string    `json:"title"`
	Artist      *string    `json:"artist"`
	BPM         *float64   `json:"bpm"`
	Difficulty  *int       `json:"difficulty"`
	AudioFile   *string    `json:"audio_file"`
	PreviewTime float64    `json:"preview_time"`
	Offset      float64    `json:"offset"`
	Notes       []noteFile `json:"notes"`
}

// Load reads a chart from path. Only .json charts are supported.
func Load(path string) (model.Chart, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return model.Chart{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Chart{}, err
	}
	return Parse(data)
}

// Parse decodes a JSON chart payload.
func Parse(data []byte) (model.Chart, error) {
	var raw chartFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Chart{}, fmt.Errorf("failed to decode chart: %w", err)
	}
	if err := requireFields(map[string]bool{
		"title":      raw.Title != nil,
		"artist":     raw.Artist != nil,
		"bpm":        raw.BPM != nil,
		"difficulty": raw.Difficulty != nil,
		"audio_file": raw.AudioFile != nil,
	}); err != nil {
		return model.Chart{}, err
	}

	notes := make([]model.Note, 0, len(raw.Notes))
	for i, n := range raw.Notes {
		if n.Time == nil || n.Position == nil || n.Type == nil {
			return model.Chart{}, fmt.Errorf("note %d: time, position, and type are required", i)
		}
		noteType := model.NoteType(*n.Type)
		if !noteType.Valid() {
			return model.Chart{}, fmt.Errorf("note %d: unknown note type %q", i, *n.Type)
		}
		notes = append(notes, model.Note{
			Time:          *n.Time,
			Position:      *n.Position,
			Type:          noteType,
			Duration:      n.Duration,
			Direction:     n.Direction,
			RotationSpeed: n.RotationSpeed,
		})
	}

	return model.Chart{
		Title:       *raw.Title,
		Artist:      *raw.Artist,
		BPM:         *raw.BPM,
		Difficulty:  *raw.Difficulty,
		AudioFile:   *raw.AudioFile,
		PreviewTime: raw.PreviewTime,
		Offset:      raw.Offset,
		Notes:       notes,
	}, nil
}

func requireFields(present map[string]bool) error {
	var missing []string
	for _, name := range []string{"title", "artist", "bpm", "difficulty", "audio_file"} {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("chart is missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Save writes c to path as indented JSON, replacing any existing file.
func Save(path string, c model.Chart) error {
	if c.Notes == nil {
		c.Notes = []model.Note{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "chart-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp chart: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close chart: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// Validate reports notes closer than 50 ms apart, times outside
// [0, MaxNoteTime], and positions outside [0,360).
// An empty result means the chart is valid.
func Validate(c model.Chart) []string {
	var problems []string
	for i := 1; i < len(c.Notes); i++ {
		if c.Notes[i].Time-c.Notes[i-1].Time < minNoteGap {
			problems = append(problems, fmt.Sprintf("Notes too close at %gs", c.Notes[i].Time))
		}
	}
	for _, n := range c.Notes {
		if !(n.Time >= 0 && n.Time <= MaxNoteTime) {
			problems = append(problems, fmt.Sprintf("Invalid time %gs", n.Time))
		}
		if n.Position < 0 || n.Position >= 360 {
			problems = append(problems, fmt.Sprintf("Invalid position %g at %gs", n.Position, n.Time))
		}
	}
	return problems
}
