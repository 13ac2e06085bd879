package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon Precision constant used for float64 comparisons and for deciding
// when a vector is too short to have a direction.
const (
	Epsilon = 1e-9
)

// Vec3 is the vector type used across the module.
// It is an alias so callers can use mgl64 helpers directly: v := Vec3{1, 2, 3}
type Vec3 = mgl64.Vec3

// Zero is the zero vector.
var Zero = Vec3{}

// SafeNormalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero, where mgl64's
// Normalize would produce NaN components.
func SafeNormalize(v Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// NewVectorSpherical creates a vector from spherical coordinates.
// theta is the azimuth in the XY plane and phi the polar angle from +Z, both in radians.
func NewVectorSpherical(radius, theta, phi float64) Vec3 {
	sinPhi := math.Sin(phi)
	v := Vec3{
		radius * sinPhi * math.Cos(theta),
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
	}
	// Handle standard floating point precision issues near zero
	for i := range v {
		if math.Abs(v[i]) < Epsilon {
			v[i] = 0
		}
	}
	return v
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// DistanceSquared calculates the squared Euclidean distance between two points.
// Use it for comparisons to avoid the square root.
func DistanceSquared(a, b Vec3) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func Eq(a, b Vec3) bool {
	return EqWithin(a, b, Epsilon)
}

// EqWithin compares component-wise with an absolute tolerance.
func EqWithin(a, b Vec3, tolerance float64) bool {
	return math.Abs(a[0]-b[0]) <= tolerance &&
		math.Abs(a[1]-b[1]) <= tolerance &&
		math.Abs(a[2]-b[2]) <= tolerance
}

// Format renders a vector with two decimals, handy in log lines.
func Format(v Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
