// Package judgment classifies hit timing offsets into judgment tiers.
package judgment

import (
	"errors"
	"fmt"
	"math"
)

// Tag is a judgment tier, ordered from strictest to loosest.
type Tag int

// Judgment tags.
const (
	Perfect Tag = iota
	Great
	Good
	Miss
)

// Tags lists every tag in strictness order.
var Tags = []Tag{Perfect, Great, Good, Miss}

// Valid reports whether t is one of the defined tags.
func (t Tag) Valid() bool {
	switch t {
	case Perfect, Great, Good, Miss:
		return true
	default:
		return false
	}
}

func (t Tag) String() string {
	switch t {
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	case Miss:
		return "Miss"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ErrInvalidWindow is returned for windows that are not ascending and non-negative.
var ErrInvalidWindow = errors.New("invalid judgment window")

// Window holds the millisecond thresholds for each tier.
type Window struct {
	Perfect float64
	Great   float64
	Good    float64
}

// DefaultWindow returns the stock 40/80/120 ms thresholds.
func DefaultWindow() Window {
	return Window{Perfect: 40, Great: 80, Good: 120}
}

// Validate checks 0 <= perfect <= great <= good.
func (w Window) Validate() error {
	for _, v := range []float64{w.Perfect, w.Great, w.Good} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: thresholds must be finite", ErrInvalidWindow)
		}
	}
	if w.Perfect < 0 || w.Perfect > w.Great || w.Great > w.Good {
		return fmt.Errorf("%w: want 0 <= perfect (%v) <= great (%v) <= good (%v)", ErrInvalidWindow, w.Perfect, w.Great, w.Good)
	}
	return nil
}

// Judge classifies the absolute timing offset against the thresholds.
// Offsets beyond the good threshold, and non-finite offsets, are a Miss.
func (w Window) Judge(offsetMs float64) Tag {
	d := math.Abs(offsetMs)
	switch {
	case d <= w.Perfect:
		return Perfect
	case d <= w.Great:
		return Great
	case d <= w.Good:
		return Good
	default:
		return Miss
	}
}
