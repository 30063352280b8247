package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func newTestProcessor(t *testing.T, smoothing, deadZone float64) *Processor {
	t.Helper()
	p, err := NewProcessor(Config{SmoothingFactor: smoothing, DeadZone: deadZone})
	require.NoError(t, err)
	return p
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

func tiltFor(angle float64) (x, y float64) {
	return math.Cos(degToRad(angle)), math.Sin(degToRad(angle))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())
	for _, cfg := range []Config{
		{SmoothingFactor: -0.1, DeadZone: 1},
		{SmoothingFactor: 1.5, DeadZone: 1},
		{SmoothingFactor: math.NaN(), DeadZone: 1},
		{SmoothingFactor: 0.5, DeadZone: -1},
	} {
		_, err := NewProcessor(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "config %+v", cfg)
	}
}

func TestCalibratedTiltFirstSample(t *testing.T) {
	t.Parallel()
	p, err := NewProcessor(DefaultConfig())
	require.NoError(t, err)

	p.Calibrate(45)
	data := p.ProcessTilt(1, 0, 0)

	assert.InDelta(t, 315, data.Angle, tol)
	assert.Zero(t, data.AngularVelocity)
	assert.Zero(t, data.AngularAcceleration)
	assert.InDelta(t, 315, p.CurrentAngle(), tol)
	assert.InDelta(t, 45, p.CalibrationOffset(), tol)
}

func TestAngularRateSmoothingFavoursNewest(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)
	rate := degToRad(60)

	first := p.ProcessAngularRate(0, 0, rate, 0)
	assert.InDelta(t, 1, first.Angle, tol, "first sample integrates over 1/60 s")
	assert.InDelta(t, 60, first.AngularVelocity, tol)
	assert.Zero(t, first.AngularAcceleration)

	second := p.ProcessAngularRate(0, 0, rate, 0.5)
	// History [1, 31] weighted [0.5, 1] / 1.5. A plain mean would give 16 and
	// an oldest-weighted average 11.
	assert.InDelta(t, 21, second.Angle, tol)
	assert.Zero(t, second.AngularAcceleration)
}

func TestAngularRateDeadZone(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.15, 2)

	data := p.ProcessAngularRate(0, 0, 0.01, 0)
	assert.Zero(t, data.AngularVelocity)
	assert.Zero(t, data.Angle)

	data = p.ProcessAngularRate(0, 0, -0.01, 0.1)
	assert.Zero(t, data.AngularVelocity)
	assert.Zero(t, data.Angle)
}

func TestAngularRateNonPositiveDelta(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0, 0)

	p.ProcessAngularRate(0, 0, degToRad(60), 1)
	before := p.CurrentAngle()

	same := p.ProcessAngularRate(0, 0, degToRad(120), 1)
	assert.Zero(t, same.AngularAcceleration)
	assert.InDelta(t, before, same.Angle, tol)

	back := p.ProcessAngularRate(0, 0, degToRad(30), 0.5)
	assert.Zero(t, back.AngularAcceleration)
	assert.InDelta(t, before, back.Angle, tol)
}

func TestAngularRateAcceleration(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.15, 0)

	p.ProcessAngularRate(0, 0, degToRad(10), 0)
	data := p.ProcessAngularRate(0, 0, degToRad(30), 0.5)
	assert.InDelta(t, 40, data.AngularAcceleration, tol)
	assert.InDelta(t, 30, p.AngularVelocity(), tol)
}

func TestTiltSmoothingAcrossWrap(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)
	p.Calibrate(0)

	x, y := tiltFor(350)
	first := p.ProcessTilt(x, y, 0)
	assert.InDelta(t, 350, first.Angle, tol)

	x, y = tiltFor(10)
	second := p.ProcessTilt(x, y, 0.1)
	assert.InDelta(t, 10.0/3.0, second.Angle, tol)
	assert.InDelta(t, 200, second.AngularVelocity, 1e-4)
	assert.InDelta(t, 2000, second.AngularAcceleration, 1e-3)
}

func TestTiltDeadZoneKeepsAngle(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.15, 2)

	x, y := tiltFor(90)
	p.ProcessTilt(x, y, 0)
	settled := p.CurrentAngle()

	x, y = tiltFor(settled + 1)
	data := p.ProcessTilt(x, y, 0.1)
	assert.InDelta(t, settled, data.Angle, tol)
	assert.InDelta(t, 10, data.AngularVelocity, 1e-6, "velocity uses the unsuppressed change")
	assert.InDelta(t, 100, data.AngularAcceleration, 1e-4)
	assert.InDelta(t, settled, p.CurrentAngle(), tol)
}

func TestAngularRateIgnoresOtherAxes(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.15, 0)

	data := p.ProcessAngularRate(math.NaN(), math.Inf(1), math.Pi/2, 0)
	assert.InDelta(t, 1.5, data.Angle, tol)
	assert.InDelta(t, 90, data.AngularVelocity, tol)
}

func TestSimulateTowards(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)

	first := p.SimulateTowards(90, 0)
	assert.InDelta(t, 45, first.Angle, tol)
	assert.Zero(t, first.AngularVelocity)

	second := p.SimulateTowards(90, 0.5)
	assert.InDelta(t, 67.5, second.Angle, tol)
	assert.InDelta(t, 45, second.AngularVelocity, tol)
	assert.InDelta(t, 90, second.AngularAcceleration, tol)
}

func TestSimulateTowardsTakesShortWay(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)

	p.SimulateTowards(20, 0) // 10
	data := p.SimulateTowards(330, 0.1)
	// Shortest path from 10 to 330 is -40 degrees.
	assert.InDelta(t, 350, data.Angle, tol)
	assert.InDelta(t, -200, data.AngularVelocity, tol)
}

func TestNonFiniteSamplesAreRejected(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)

	want := p.SimulateTowards(90, 0)
	assert.Equal(t, want, p.ProcessAngularRate(0, 0, math.NaN(), 1))
	assert.Equal(t, want, p.ProcessTilt(math.Inf(1), 0, 1))
	assert.Equal(t, want, p.SimulateTowards(10, math.NaN()))
	assert.InDelta(t, 45, p.CurrentAngle(), tol)
}

func TestResetKeepsCalibration(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.5, 0)
	p.Calibrate(30)
	p.SimulateTowards(90, 0)
	p.SimulateTowards(90, 0.1)

	p.Reset()
	assert.InDelta(t, 30, p.CalibrationOffset(), tol)
	assert.Zero(t, p.CurrentAngle())
	assert.Zero(t, p.AngularVelocity())

	// No previous timestamp after a reset, so velocity restarts at zero.
	data := p.SimulateTowards(90, 5)
	assert.Zero(t, data.AngularVelocity)
}

func TestOutputAngleAlwaysNormalized(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 0.15, 0)
	ts := 0.0
	for i := 0; i < 500; i++ {
		ts += 0.02
		data := p.ProcessAngularRate(0, 0, degToRad(720), ts)
		require.GreaterOrEqual(t, data.Angle, 0.0)
		require.Less(t, data.Angle, 360.0)
	}
}

func TestSmoothWeights(t *testing.T) {
	t.Parallel()

	assert.Zero(t, smooth(nil, 0.5))
	assert.InDelta(t, 7, smooth([]float64{7}, 0.5), tol)
	assert.InDelta(t, 3, smooth([]float64{1, 2, 3}, 0), tol, "zero factor keeps only the newest")
	assert.InDelta(t, 2, smooth([]float64{1, 2, 3}, 1), tol, "unit factor is a plain mean")
	// weights 0.25, 0.5, 1 over 1.75
	assert.InDelta(t, (0.25*1+0.5*2+1*3)/1.75, smooth([]float64{1, 2, 3}, 0.5), tol)
}

func TestBasketFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BasketLeft, BasketFor(270))
	assert.Equal(t, BasketRight, BasketFor(90))
	assert.Equal(t, BasketNone, BasketFor(0))
	assert.Equal(t, BasketLeft, BasketFor(225))
	assert.Equal(t, BasketLeft, BasketFor(315))
	assert.Equal(t, BasketRight, BasketFor(45))
	assert.Equal(t, BasketRight, BasketFor(135))
	assert.Equal(t, BasketNone, BasketFor(180))
	assert.Equal(t, BasketLeft, BasketFor(-90))
	assert.Equal(t, "left", BasketLeft.String())
}
