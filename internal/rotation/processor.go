// Package rotation turns raw angular-rate and tilt samples into a smoothed,
// wrap-safe angle with angular velocity and acceleration.
package rotation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/rotaenot/internal/anglemath"
	"github.com/verte-zerg/rotaenot/internal/model"
)

const (
	angleHistorySize    = 10
	velocityHistorySize = 5

	// fallbackDelta is the time step assumed for the first sample.
	fallbackDelta = 1.0 / 60.0
)

// ErrInvalidConfig is returned for out-of-range processor settings.
var ErrInvalidConfig = errors.New("invalid rotation config")

// Config holds processor tuning.
type Config struct {
	// SmoothingFactor is the per-step weight decay of the angle history and
	// the approach fraction used by SimulateTowards, in [0,1].
	SmoothingFactor float64
	// DeadZone is the minimum rate (deg/s) or angle change (deg) treated as motion.
	DeadZone float64
}

// DefaultConfig returns the stock processor tuning.
func DefaultConfig() Config {
	return Config{SmoothingFactor: 0.15, DeadZone: 2.0}
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if !isFinite(c.SmoothingFactor) || c.SmoothingFactor < 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("%w: smoothing factor %v must be between 0 and 1", ErrInvalidConfig, c.SmoothingFactor)
	}
	if !isFinite(c.DeadZone) || c.DeadZone < 0 {
		return fmt.Errorf("%w: dead zone %v must be >= 0", ErrInvalidConfig, c.DeadZone)
	}
	return nil
}

// Processor is a stateful rotation filter. It is not safe for concurrent
// use; callers serialize all calls for one session.
type Processor struct {
	cfg Config

	calibrationOffset float64
	// current is the continuous (unwrapped) angle; history entries live on
	// the same track so smoothing never averages across the 0/360 seam.
	current         float64
	angularVelocity float64

	previousTimestamp float64
	hasTimestamp      bool

	angles     *Ring
	velocities *Ring
	last       model.RotationData
}

// NewProcessor returns a calibrated-at-zero processor.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		cfg:        cfg,
		angles:     NewRing(angleHistorySize),
		velocities: NewRing(velocityHistorySize),
	}, nil
}

// Calibrate sets initialAngle as the zero point and clears motion state.
func (p *Processor) Calibrate(initialAngle float64) {
	p.calibrationOffset = anglemath.Normalize(initialAngle)
	p.Reset()
}

// Reset clears motion state and histories, keeping the calibration offset.
func (p *Processor) Reset() {
	p.current = 0
	p.angularVelocity = 0
	p.previousTimestamp = 0
	p.hasTimestamp = false
	p.angles.Clear()
	p.velocities.Clear()
	p.last = model.RotationData{}
}

// CalibrationOffset returns the active calibration offset in [0,360).
func (p *Processor) CalibrationOffset() float64 {
	return p.calibrationOffset
}

// CurrentAngle returns the current angle in [0,360).
func (p *Processor) CurrentAngle() float64 {
	return anglemath.Normalize(p.current)
}

// AngularVelocity returns the most recent angular velocity in deg/s.
func (p *Processor) AngularVelocity() float64 {
	return p.angularVelocity
}

// Last returns the most recently emitted rotation data.
func (p *Processor) Last() model.RotationData {
	return p.last
}

// ProcessAngularRate integrates a gyroscope reading. Rates are in rad/s;
// only the z axis drives rotation, and x and y are ignored without any
// finiteness check.
func (p *Processor) ProcessAngularRate(x, y, z, timestamp float64) model.RotationData {
	if !isFinite(z) || !isFinite(timestamp) {
		return p.last
	}
	rate := anglemath.Degrees(z)
	if math.Abs(rate) < p.cfg.DeadZone {
		rate = 0
	}
	dt := p.delta(timestamp)

	p.current += rate * math.Max(dt, 0)
	p.angles.Push(p.current)
	smoothed := smooth(p.angles.Slice(), p.cfg.SmoothingFactor)

	accel := p.acceleration(rate, dt)
	p.velocities.Push(rate)

	return p.commit(model.RotationData{
		Angle:               anglemath.Normalize(smoothed),
		AngularVelocity:     rate,
		AngularAcceleration: accel,
		Timestamp:           timestamp,
	})
}

// ProcessTilt derives the angle from a two-axis accelerometer reading.
func (p *Processor) ProcessTilt(x, y, timestamp float64) model.RotationData {
	if !isFinite(x) || !isFinite(y) || !isFinite(timestamp) {
		return p.last
	}
	raw := anglemath.Normalize(anglemath.Degrees(math.Atan2(y, x)))
	calibrated := anglemath.Normalize(raw - p.calibrationOffset)

	// Velocity follows the raw reading; the dead zone only holds the angle.
	diff := anglemath.ShortestDifference(calibrated, p.current)
	held := diff
	if math.Abs(diff) < p.cfg.DeadZone {
		held = 0
	}
	dt := p.delta(timestamp)
	velocity := p.derivative(diff, dt)

	p.angles.Push(p.current + held)
	smoothed := smooth(p.angles.Slice(), p.cfg.SmoothingFactor)

	accel := p.acceleration(velocity, dt)
	p.velocities.Push(velocity)
	p.current = smoothed

	return p.commit(model.RotationData{
		Angle:               anglemath.Normalize(smoothed),
		AngularVelocity:     velocity,
		AngularAcceleration: accel,
		Timestamp:           timestamp,
	})
}

// SimulateTowards moves the angle a SmoothingFactor fraction of the shortest
// distance toward targetAngle. It is meant for synthetic or manual input.
func (p *Processor) SimulateTowards(targetAngle, timestamp float64) model.RotationData {
	if !isFinite(targetAngle) || !isFinite(timestamp) {
		return p.last
	}
	step := anglemath.ShortestDifference(targetAngle, p.current) * p.cfg.SmoothingFactor
	dt := p.delta(timestamp)
	velocity := p.derivative(step, dt)

	accel := p.acceleration(velocity, dt)
	p.velocities.Push(velocity)
	p.current += step

	return p.commit(model.RotationData{
		Angle:               anglemath.Normalize(p.current),
		AngularVelocity:     velocity,
		AngularAcceleration: accel,
		Timestamp:           timestamp,
	})
}

func (p *Processor) commit(data model.RotationData) model.RotationData {
	p.previousTimestamp = data.Timestamp
	p.hasTimestamp = true
	p.angularVelocity = data.AngularVelocity
	p.last = data
	return data
}

// delta returns the elapsed time since the previous sample, or the fallback
// step for the first one.
func (p *Processor) delta(timestamp float64) float64 {
	if !p.hasTimestamp {
		return fallbackDelta
	}
	return timestamp - p.previousTimestamp
}

// derivative returns change/dt, or 0 before the first timestamp and for dt <= 0.
func (p *Processor) derivative(change, dt float64) float64 {
	if !p.hasTimestamp || dt <= 0 {
		return 0
	}
	return change / dt
}

func (p *Processor) acceleration(velocity, dt float64) float64 {
	prev, ok := p.velocities.Last()
	if !ok || dt <= 0 {
		return 0
	}
	return (velocity - prev) / dt
}

// smooth returns the recency-weighted average of values ordered oldest to
// newest. The newest value has weight 1 and each older step is scaled by
// factor; weights are normalized to sum to 1.
func smooth(values []float64, factor float64) float64 {
	if len(values) == 0 {
		return 0
	}
	weights := make([]float64, len(values))
	for i := range values {
		age := len(values) - 1 - i
		weights[i] = math.Pow(factor, float64(age))
	}
	floats.Scale(1/floats.Sum(weights), weights)
	return floats.Dot(weights, values)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
