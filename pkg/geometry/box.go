package geometry

import "math"

// BoundingBox is an axis-aligned box described by its center and half extents.
// It is a small value type and is never mutated once built.
type BoundingBox struct {
	Center      Vec3 `json:"center"`
	HalfExtents Vec3 `json:"halfExtents"`
}

// NewBoundingBox creates a box from its center and half extents.
func NewBoundingBox(center, halfExtents Vec3) BoundingBox {
	return BoundingBox{Center: center, HalfExtents: halfExtents}
}

// NewCube creates a box with the same half extent on every axis.
func NewCube(center Vec3, halfExtent float64) BoundingBox {
	return BoundingBox{Center: center, HalfExtents: Vec3{halfExtent, halfExtent, halfExtent}}
}

// Min returns the lowest corner.
func (b BoundingBox) Min() Vec3 {
	return b.Center.Sub(b.HalfExtents)
}

// Max returns the highest corner.
func (b BoundingBox) Max() Vec3 {
	return b.Center.Add(b.HalfExtents)
}

// Size returns the full extents (twice the half extents).
func (b BoundingBox) Size() Vec3 {
	return b.HalfExtents.Mul(2)
}

// Volume returns the box volume.
func (b BoundingBox) Volume() float64 {
	s := b.Size()
	return s[0] * s[1] * s[2]
}

// Contains reports whether p lies strictly inside the box.
// A point exactly on a face is NOT contained.
func (b BoundingBox) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] <= b.Center[i]-b.HalfExtents[i] || p[i] >= b.Center[i]+b.HalfExtents[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes overlap.
// Boxes that only share a face, an edge or a corner do intersect.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	for i := 0; i < 3; i++ {
		if other.Center[i]-other.HalfExtents[i] > b.Center[i]+b.HalfExtents[i] ||
			other.Center[i]+other.HalfExtents[i] < b.Center[i]-b.HalfExtents[i] {
			return false
		}
	}
	return true
}

// ClosestPoint clamps p onto the box volume.
func (b BoundingBox) ClosestPoint(p Vec3) Vec3 {
	lo, hi := b.Min(), b.Max()
	return Vec3{
		math.Max(lo[0], math.Min(p[0], hi[0])),
		math.Max(lo[1], math.Min(p[1], hi[1])),
		math.Max(lo[2], math.Min(p[2], hi[2])),
	}
}

// IntersectsSphere reports whether the sphere touches the box.
func (b BoundingBox) IntersectsSphere(center Vec3, radius float64) bool {
	return DistanceSquared(b.ClosestPoint(center), center) <= radius*radius
}

// Octant returns the i-th eighth of the box (0 <= i < 8).
// Bit 0 of i selects +X, bit 1 selects +Y and bit 2 selects +Z.
func (b BoundingBox) Octant(i int) BoundingBox {
	half := b.HalfExtents.Mul(0.5)
	center := b.Center
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			center[axis] += half[axis]
		} else {
			center[axis] -= half[axis]
		}
	}
	return BoundingBox{Center: center, HalfExtents: half}
}

// Corners returns the 8 corners, indexed with the same bit layout as Octant.
func (b BoundingBox) Corners() [8]Vec3 {
	var corners [8]Vec3
	for i := range corners {
		c := b.Center
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[axis] += b.HalfExtents[axis]
			} else {
				c[axis] -= b.HalfExtents[axis]
			}
		}
		corners[i] = c
	}
	return corners
}

// Edge is a segment between two box corners.
type Edge struct {
	From, To Vec3
}

// Edges returns the 12 edges of the box, ready for line drawing.
func (b BoundingBox) Edges() [12]Edge {
	c := b.Corners()
	var edges [12]Edge
	n := 0
	// two corners share an edge when their indices differ by exactly one bit
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			j := i | 1<<axis
			if j != i {
				edges[n] = Edge{From: c[i], To: c[j]}
				n++
			}
		}
	}
	return edges
}
