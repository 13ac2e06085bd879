package viewer

import (
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
)

// Plane names the two world axes mapped to the screen X and Y.
type Plane struct {
	Name string
	U, V int
}

// Planes lists the orthographic views the viewer can cycle through.
var Planes = []Plane{
	{Name: "XY (front)", U: 0, V: 1},
	{Name: "XZ (top)", U: 0, V: 2},
	{Name: "ZY (side)", U: 2, V: 1},
}

// Projection maps world coordinates on a plane to screen pixels.
// Screen Y grows downwards, world V grows upwards.
type Projection struct {
	Plane  Plane
	Scale  float64
	OX, OY float64 // screen position of the world center
	center geometry.Vec3
}

// NewProjection fits bounds inside the viewport (x, y, w, h), keeping the aspect ratio.
func NewProjection(bounds geometry.BoundingBox, plane Plane, x, y, w, h float64) Projection {
	extentU := 2 * bounds.HalfExtents[plane.U]
	extentV := 2 * bounds.HalfExtents[plane.V]
	scale := min(w/extentU, h/extentV)
	return Projection{
		Plane:  plane,
		Scale:  scale,
		OX:     x + w/2,
		OY:     y + h/2,
		center: bounds.Center,
	}
}

// Point projects a world position onto the screen.
func (p Projection) Point(v geometry.Vec3) (float32, float32) {
	u := (v[p.Plane.U] - p.center[p.Plane.U]) * p.Scale
	w := (v[p.Plane.V] - p.center[p.Plane.V]) * p.Scale
	return float32(p.OX + u), float32(p.OY - w)
}

// Rect projects a box to its screen rectangle (top-left corner, width, height).
func (p Projection) Rect(b geometry.BoundingBox) (x, y, w, h float32) {
	lo, hi := b.Min(), b.Max()
	x, _ = p.Point(lo)
	_, y = p.Point(hi)
	w = float32(2 * b.HalfExtents[p.Plane.U] * p.Scale)
	h = float32(2 * b.HalfExtents[p.Plane.V] * p.Scale)
	return x, y, w, h
}

// Direction projects a world direction, without translation, flipping V like Point.
func (p Projection) Direction(d geometry.Vec3) (float64, float64) {
	return d[p.Plane.U], -d[p.Plane.V]
}
