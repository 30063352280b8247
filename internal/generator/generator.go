// Package generator builds procedural charts and simulated hit timing.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/rotaenot/internal/model"
)

const (
	baseDensity     = 2.0 // notes per second at difficulty 0
	densityPerLevel = 0.5
	spiralStep      = 45.0
	holdDuration    = 0.5
	generatedBPM    = 120
	generatedTitle  = "Generated Chart"
	generatedArtist = "Unknown"
	flickEvery      = 7
	catchEvery      = 5
	holdEvery       = 11
	flickMinLevel   = 5
	catchMinLevel   = 3
	holdMinLevel    = 7
)

// Generator produces charts and randomized hit offsets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Chart builds a full chart around a test pattern.
func (g *Generator) Chart(audioFile string, duration float64, difficulty int) model.Chart {
	return model.Chart{
		Title:      generatedTitle,
		Artist:     generatedArtist,
		BPM:        generatedBPM,
		Difficulty: difficulty,
		AudioFile:  audioFile,
		Notes:      Pattern(duration, difficulty),
	}
}

// Pattern lays out a spiral of notes whose density and type mix grow with
// difficulty. The result is deterministic.
func Pattern(duration float64, difficulty int) []model.Note {
	density := baseDensity + float64(difficulty)*densityPerLevel
	if duration <= 0 || density <= 0 {
		return nil
	}
	total := int(duration * density)
	notes := make([]model.Note, 0, total)
	for i := 0; i < total; i++ {
		note := model.Note{
			Time:     float64(i) / density,
			Position: math.Mod(float64(i)*spiralStep, 360),
			Type:     noteTypeFor(i, difficulty),
		}
		if note.Type == model.NoteHold {
			d := holdDuration
			note.Duration = &d
		}
		notes = append(notes, note)
	}
	return notes
}

func noteTypeFor(i, difficulty int) model.NoteType {
	switch {
	case difficulty > flickMinLevel && i%flickEvery == 0:
		return model.NoteFlick
	case difficulty > catchMinLevel && i%catchEvery == 0:
		return model.NoteCatch
	case difficulty > holdMinLevel && i%holdEvery == 0:
		return model.NoteHold
	default:
		return model.NoteTap
	}
}

// HitOffsets draws one timing offset (ms) per note from a normal
// distribution with the given standard deviation.
func (g *Generator) HitOffsets(count int, stddevMs float64) []float64 {
	offsets := make([]float64, count)
	for i := range offsets {
		offsets[i] = g.rnd.NormFloat64() * stddevMs
	}
	return offsets
}
