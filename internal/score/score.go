// Package score tracks per-session score, combo, accuracy, and rating.
package score

import (
	"math"

	"github.com/verte-zerg/rotaenot/internal/judgment"
	"github.com/verte-zerg/rotaenot/internal/model"
)

// DefaultBaseNoteScore is the score of a single Perfect note.
const DefaultBaseNoteScore = 1000

// Grade is a letter grade derived from accuracy.
type Grade string

// Letter grades, best first.
const (
	GradeSSS Grade = "SSS"
	GradeSS  Grade = "SS"
	GradeS   Grade = "S"
	GradeA   Grade = "A"
	GradeB   Grade = "B"
	GradeC   Grade = "C"
	GradeD   Grade = "D"
)

// Multiplier returns the fraction of the base note score awarded for tag.
// Unknown tags score as a Miss.
func Multiplier(tag judgment.Tag) float64 {
	switch tag {
	case judgment.Perfect:
		return 1.0
	case judgment.Great:
		return 0.8
	case judgment.Good:
		return 0.5
	case judgment.Miss:
		return 0.0
	default:
		return 0.0
	}
}

// Accumulator holds the running state of one play session. It is not safe
// for concurrent use.
type Accumulator struct {
	currentScore int
	currentCombo int
	maxCombo     int

	perfect int
	great   int
	good    int
	miss    int
}

// NewAccumulator returns an accumulator ready for a new session.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Reset starts a new session.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// RecordHit applies one judged note and returns the score it gained.
func (a *Accumulator) RecordHit(tag judgment.Tag, baseNoteScore int) int {
	if !tag.Valid() {
		tag = judgment.Miss
	}
	switch tag {
	case judgment.Perfect:
		a.perfect++
		a.currentCombo++
	case judgment.Great:
		a.great++
		a.currentCombo++
	case judgment.Good:
		a.good++
		a.currentCombo++
	case judgment.Miss:
		a.miss++
		a.currentCombo = 0
	}
	if a.currentCombo > a.maxCombo {
		a.maxCombo = a.currentCombo
	}

	gained := int(math.Floor(float64(baseNoteScore) * Multiplier(tag)))
	if gained < 0 {
		gained = 0
	}
	a.currentScore += gained
	return gained
}

// CurrentScore returns the running score.
func (a *Accumulator) CurrentScore() int { return a.currentScore }

// CurrentCombo returns the running combo.
func (a *Accumulator) CurrentCombo() int { return a.currentCombo }

// MaxCombo returns the longest combo so far.
func (a *Accumulator) MaxCombo() int { return a.maxCombo }

// TotalNotes returns the number of judged notes.
func (a *Accumulator) TotalNotes() int {
	return a.perfect + a.great + a.good + a.miss
}

// Count returns the number of notes judged as tag.
func (a *Accumulator) Count(tag judgment.Tag) int {
	switch tag {
	case judgment.Perfect:
		return a.perfect
	case judgment.Great:
		return a.great
	case judgment.Good:
		return a.good
	case judgment.Miss:
		return a.miss
	default:
		return 0
	}
}

// Accuracy returns the weighted hit percentage in [0,100]. An empty session
// is 100.
func (a *Accumulator) Accuracy() float64 {
	total := a.TotalNotes()
	if total == 0 {
		return 100.0
	}
	weighted := float64(a.perfect)*Multiplier(judgment.Perfect) +
		float64(a.great)*Multiplier(judgment.Great) +
		float64(a.good)*Multiplier(judgment.Good)
	return weighted / float64(total) * 100
}

// LetterGrade returns the grade for the current accuracy.
func (a *Accumulator) LetterGrade() Grade {
	return GradeFor(a.Accuracy())
}

// Rating returns the play rating for a chart of the given difficulty.
func (a *Accumulator) Rating(chartDifficulty int) float64 {
	return RatingFor(chartDifficulty, a.Accuracy())
}

// Snapshot returns the terminal view of the session.
func (a *Accumulator) Snapshot() model.ScoreData {
	total := a.TotalNotes()
	return model.ScoreData{
		TotalScore:   a.currentScore,
		Accuracy:     a.Accuracy(),
		MaxCombo:     a.maxCombo,
		PerfectCount: a.perfect,
		GreatCount:   a.great,
		GoodCount:    a.good,
		MissCount:    a.miss,
		FullCombo:    a.miss == 0 && total > 0,
	}
}

// GradeFor maps accuracy to a letter grade.
func GradeFor(accuracy float64) Grade {
	switch {
	case accuracy >= 100:
		return GradeSSS
	case accuracy >= 98:
		return GradeSS
	case accuracy >= 95:
		return GradeS
	case accuracy >= 90:
		return GradeA
	case accuracy >= 80:
		return GradeB
	case accuracy >= 70:
		return GradeC
	default:
		return GradeD
	}
}

// RatingFor returns max(0, difficulty + modifier(accuracy)).
func RatingFor(chartDifficulty int, accuracy float64) float64 {
	var modifier float64
	switch {
	case accuracy >= 100:
		modifier = 2.0
	case accuracy >= 98:
		modifier = 1.5
	case accuracy >= 95:
		modifier = 1.0
	case accuracy >= 90:
		modifier = 0.5
	case accuracy >= 80:
		modifier = 0.0
	default:
		modifier = -0.5
	}
	return math.Max(0, float64(chartDifficulty)+modifier)
}

// TheoreticalMax is the score of an all-Perfect run.
func TheoreticalMax(totalNotes, baseNoteScore int) int {
	return totalNotes * baseNoteScore
}
