package anglemath

import (
	"math"
	"testing"
)

func TestNormalizeRange(t *testing.T) {
	inputs := []float64{0, 359.999, 360, 720, -1, -360, -720.5, 1e9, -1e9, -1e-15}
	for _, in := range inputs {
		got := Normalize(in)
		if got < 0 || got >= 360 {
			t.Fatalf("Normalize(%v) = %v, want within [0,360)", in, got)
		}
	}
}

func TestNormalizeValues(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		370:  10,
		-10:  350,
		-370: 350,
		45.5: 45.5,
	}
	for in, want := range cases {
		if got := Normalize(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("Normalize(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestShortestDifference(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 350, 20},
		{350, 10, -20},
		{90, 90, 0},
		{180, 0, 180},
		{0, 180, 180},
		{270, 0, -90},
		{725, 0, 5},
	}
	for _, c := range cases {
		if got := ShortestDifference(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("ShortestDifference(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestShortestDifferenceRange(t *testing.T) {
	for a := -720.0; a <= 720; a += 17.25 {
		for b := -720.0; b <= 720; b += 23.5 {
			d := ShortestDifference(a, b)
			if d <= -180 || d > 180 {
				t.Fatalf("ShortestDifference(%v, %v) = %v out of (-180,180]", a, b, d)
			}
		}
		if d := ShortestDifference(a, a); d != 0 {
			t.Fatalf("ShortestDifference(%v, %v) = %v, want 0", a, a, d)
		}
	}
}
