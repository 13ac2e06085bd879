package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestSafeNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"X axis", Vec3{5, 0, 0}, Vec3{1, 0, 0}},
		{"Negative Z", Vec3{0, 0, -0.25}, Vec3{0, 0, -1}},
		{"Pythagorean", Vec3{2, 3, 6}, Vec3{2.0 / 7, 3.0 / 7, 6.0 / 7}},
		{"Zero", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{"Below epsilon", Vec3{1e-12, 0, 0}, Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNormalize(tt.in)
			if !Eq(got, tt.want) {
				t.Errorf("SafeNormalize(%v) = %v; want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if math.IsNaN(got[i]) {
					t.Fatalf("SafeNormalize(%v) produced NaN", tt.in)
				}
			}
		})
	}
}

func TestNewVectorSpherical(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		theta  float64
		phi    float64
		want   Vec3
	}{
		{"Zero radius", 0, 1, 1, Vec3{0, 0, 0}},
		{"North pole", 2, 0, 0, Vec3{0, 0, 2}},
		{"South pole", 2, 0, math.Pi, Vec3{0, 0, -2}},
		{"Equator X", 3, 0, math.Pi / 2, Vec3{3, 0, 0}},
		{"Equator Y", 3, math.Pi / 2, math.Pi / 2, Vec3{0, 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVectorSpherical(tt.radius, tt.theta, tt.phi)
			if !EqWithin(got, tt.want, 1e-12) {
				t.Errorf("NewVectorSpherical(%v, %v, %v) = %v; want %v", tt.radius, tt.theta, tt.phi, got, tt.want)
			}
		})
	}

	t.Run("Unit length", func(t *testing.T) {
		for _, angles := range [][2]float64{{0.3, 0.7}, {2, 2.5}, {5.9, 1.1}} {
			if l := NewVectorSpherical(1, angles[0], angles[1]).Len(); !floatEquals(l, 1) {
				t.Errorf("length at %v = %v; want 1", angles, l)
			}
		}
	})
}

func TestDistance(t *testing.T) {
	a := Vec3{1, 1, 1}
	b := Vec3{3, 4, 7} // d = (2,3,6), |d| = 7

	if got := Distance(a, b); !floatEquals(got, 7) {
		t.Errorf("Distance = %v; want 7", got)
	}
	if got := DistanceSquared(a, b); !floatEquals(got, 49) {
		t.Errorf("DistanceSquared = %v; want 49", got)
	}
}

func TestFormat(t *testing.T) {
	want := "(1.23, -5.68, 0.00)"
	if got := Format(Vec3{1.234, -5.678, 0}); got != want {
		t.Errorf("Format() = %q; want %q", got, want)
	}
}
