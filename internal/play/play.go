// Package play runs a simulated session: it steers a rotation processor
// toward each note, judges the hit, and accumulates the score.
package play

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/rotaenot/internal/anglemath"
	"github.com/verte-zerg/rotaenot/internal/chart"
	"github.com/verte-zerg/rotaenot/internal/judgment"
	"github.com/verte-zerg/rotaenot/internal/model"
	"github.com/verte-zerg/rotaenot/internal/rotation"
	"github.com/verte-zerg/rotaenot/internal/score"
)

// Input selects which processor path drives the simulated player.
type Input string

// Input modes.
const (
	InputSimulate Input = "simulate"
	InputTilt     Input = "tilt"
	InputGyro     Input = "gyro"
)

// maxFrameRate bounds the simulated frames per second.
const maxFrameRate = 1000.0

// gyroGain converts remaining angular distance (deg) into a commanded rate (1/s).
const gyroGain = 8.0

var (
	// ErrEmptyChart is returned for charts without notes.
	ErrEmptyChart = errors.New("chart has no notes")
	// ErrOffsetCount is returned when offsets do not match the note count.
	ErrOffsetCount = errors.New("offset count does not match note count")
	// ErrNoteTime is returned for notes outside [0, chart.MaxNoteTime] seconds.
	ErrNoteTime = errors.New("note time out of range")
)

// Options configures a session.
type Options struct {
	Input          Input
	Rotation       rotation.Config
	Window         judgment.Window
	BaseNoteScore  int
	FrameRate      float64 // frames per second
	AlignTolerance float64 // degrees
	Calibration    float64 // device angle treated as zero, degrees
}

// DefaultOptions returns the stock session settings.
func DefaultOptions() Options {
	return Options{
		Input:          InputSimulate,
		Rotation:       rotation.DefaultConfig(),
		Window:         judgment.DefaultWindow(),
		BaseNoteScore:  score.DefaultBaseNoteScore,
		FrameRate:      60,
		AlignTolerance: 45,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	switch o.Input {
	case InputSimulate, InputTilt, InputGyro:
	default:
		return fmt.Errorf("unknown input mode %q", o.Input)
	}
	if err := o.Rotation.Validate(); err != nil {
		return err
	}
	if err := o.Window.Validate(); err != nil {
		return err
	}
	if o.BaseNoteScore < 0 {
		return fmt.Errorf("base note score must be >= 0")
	}
	if !(o.FrameRate > 0) || o.FrameRate > maxFrameRate {
		return fmt.Errorf("frame rate must be > 0 and <= %g", maxFrameRate)
	}
	if !(o.AlignTolerance >= 0) || o.AlignTolerance > 180 {
		return fmt.Errorf("align tolerance must be between 0 and 180")
	}
	return nil
}

// Result is the outcome of one session.
type Result struct {
	ID             uuid.UUID
	SongID         string
	Difficulty     int
	Score          model.ScoreData
	Grade          score.Grade
	Rating         float64
	TheoreticalMax int
	Judgments      []judgment.Tag
	// Trace holds the processed angle at each note's hit time.
	Trace []float64
}

// Record converts the result into a B40 score record.
func (r Result) Record(at time.Time) model.ScoreRecord {
	return model.ScoreRecord{
		SongID:     r.SongID,
		Difficulty: r.Difficulty,
		Rating:     r.Rating,
		Timestamp:  at,
	}
}

// Run plays chart with one timing offset (ms) per note. Notes are played in
// time order; offsets are matched to notes in that order.
func Run(songID string, c model.Chart, offsets []float64, opts Options) (Result, error) {
	if len(c.Notes) == 0 {
		return Result{}, ErrEmptyChart
	}
	if len(offsets) != len(c.Notes) {
		return Result{}, fmt.Errorf("%w: %d offsets for %d notes", ErrOffsetCount, len(offsets), len(c.Notes))
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	for _, note := range c.Notes {
		if !(note.Time >= 0 && note.Time <= chart.MaxNoteTime) {
			return Result{}, fmt.Errorf("%w: %g", ErrNoteTime, note.Time)
		}
	}

	notes := make([]model.Note, len(c.Notes))
	copy(notes, c.Notes)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Time < notes[j].Time })

	proc, err := rotation.NewProcessor(opts.Rotation)
	if err != nil {
		return Result{}, err
	}
	proc.Calibrate(opts.Calibration)
	acc := score.NewAccumulator()

	s := &session{proc: proc, opts: opts, frame: 1 / opts.FrameRate}
	res := Result{
		ID:         uuid.New(),
		SongID:     songID,
		Difficulty: c.Difficulty,
		Judgments:  make([]judgment.Tag, 0, len(notes)),
		Trace:      make([]float64, 0, len(notes)),
	}
	for i, note := range notes {
		data := s.advance(note)
		tag := judgment.Miss
		if math.Abs(anglemath.ShortestDifference(data.Angle, note.Position)) <= opts.AlignTolerance {
			tag = opts.Window.Judge(offsets[i])
		}
		acc.RecordHit(tag, opts.BaseNoteScore)
		res.Judgments = append(res.Judgments, tag)
		res.Trace = append(res.Trace, data.Angle)
	}

	res.Score = acc.Snapshot()
	res.Grade = acc.LetterGrade()
	res.Rating = acc.Rating(c.Difficulty)
	res.TheoreticalMax = score.TheoreticalMax(len(notes), opts.BaseNoteScore)
	return res, nil
}

type session struct {
	proc  *rotation.Processor
	opts  Options
	frame float64
	now   float64
	fed   bool
}

// advance feeds frames up to the note's time and returns the state there.
func (s *session) advance(note model.Note) model.RotationData {
	for !s.fed || s.now+s.frame <= note.Time {
		if s.fed {
			s.now += s.frame
		}
		s.feed(note.Position)
		s.fed = true
	}
	return s.proc.Last()
}

func (s *session) feed(target float64) {
	switch s.opts.Input {
	case InputTilt:
		rad := (target + s.opts.Calibration) * math.Pi / 180
		s.proc.ProcessTilt(math.Cos(rad), math.Sin(rad), s.now)
	case InputGyro:
		diff := anglemath.ShortestDifference(target, s.proc.CurrentAngle())
		rate := diff * gyroGain * math.Pi / 180
		s.proc.ProcessAngularRate(0, 0, rate, s.now)
	default:
		s.proc.SimulateTowards(target, s.now)
	}
}
