// Package octree implements a point octree rebuilt from scratch as often as needed.
//
// Every node owns up to eight children that exactly tile its volume. A node keeps
// points locally until it reaches its capacity, then subdivides and forwards new
// points to its children. By default the points it already holds stay where they
// are; Options.Redistribute pushes them down when the node subdivides.
package octree

import (
	"errors"

	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
)

const (
	// DefaultCapacity is the number of points a node stores before subdividing.
	DefaultCapacity = 4
	// DefaultMaxDepth is the depth at which nodes stop subdividing and accept any
	// number of points. It bounds both tree size and recursion depth.
	DefaultMaxDepth = 8
)

// ErrInvalidRadius is returned by QueryRadius for a negative radius.
var ErrInvalidRadius = errors.New("octree: radius must not be negative")

// Point is a position stored in the tree together with a caller payload.
type Point[T any] struct {
	Position geometry.Vec3
	Value    T
}

// Options tunes node behavior. Zero values fall back to the defaults.
type Options struct {
	Capacity int
	MaxDepth int
	// Redistribute moves the points of a node into its children when it subdivides.
	// Points that no child contains (they lie on a split plane) stay in the node.
	Redistribute bool
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Octree is a node of the tree; the root is just a node at depth 0.
// It is not safe for concurrent mutation, concurrent queries are fine.
type Octree[T any] struct {
	boundary geometry.BoundingBox
	depth    int
	opts     Options
	divided  bool
	points   []Point[T]
	children [8]*Octree[T]
}

// New creates an empty root node covering boundary.
func New[T any](boundary geometry.BoundingBox, opts Options) *Octree[T] {
	return newNode[T](boundary, 0, opts.withDefaults())
}

func newNode[T any](boundary geometry.BoundingBox, depth int, opts Options) *Octree[T] {
	return &Octree[T]{
		boundary: boundary,
		depth:    depth,
		opts:     opts,
	}
}

// Boundary returns the box covered by this node.
func (o *Octree[T]) Boundary() geometry.BoundingBox { return o.boundary }

// Depth returns the node depth, 0 for the root.
func (o *Octree[T]) Depth() int { return o.depth }

// Divided reports whether the node has children.
func (o *Octree[T]) Divided() bool { return o.divided }

// Capacity returns the per-node capacity.
func (o *Octree[T]) Capacity() int { return o.opts.Capacity }

// Points returns the points stored directly in this node (not in its children).
func (o *Octree[T]) Points() []Point[T] { return o.points }

// Child returns the i-th child, or nil on a leaf. See geometry.BoundingBox.Octant for the layout.
func (o *Octree[T]) Child(i int) *Octree[T] { return o.children[i] }

// Insert stores p in the tree and reports whether some node accepted it.
// A point outside the boundary is ignored.
func (o *Octree[T]) Insert(p Point[T]) bool {
	if !o.boundary.Contains(p.Position) {
		return false
	}
	if !o.divided && (len(o.points) < o.opts.Capacity || o.depth >= o.opts.MaxDepth) {
		o.points = append(o.points, p)
		return true
	}

	if !o.divided {
		o.subdivide()
	}
	if o.forward(p) {
		return true
	}
	if o.opts.Redistribute {
		o.points = append(o.points, p)
		return true
	}
	return false
}

// forward hands p to every child; each one runs its own containment check.
func (o *Octree[T]) forward(p Point[T]) bool {
	stored := false
	for _, child := range o.children {
		if child.Insert(p) {
			stored = true
		}
	}
	return stored
}

func (o *Octree[T]) subdivide() {
	for i := range o.children {
		o.children[i] = newNode[T](o.boundary.Octant(i), o.depth+1, o.opts)
	}
	o.divided = true

	if !o.opts.Redistribute {
		return
	}
	kept := o.points[:0]
	for _, p := range o.points {
		if !o.forward(p) {
			kept = append(kept, p)
		}
	}
	clear(o.points[len(kept):])
	o.points = kept
}

// Query appends to found every point contained in rangeBox and returns the extended slice.
// Results come in traversal order.
func (o *Octree[T]) Query(rangeBox geometry.BoundingBox, found []Point[T]) []Point[T] {
	if !o.boundary.Intersects(rangeBox) {
		return found
	}
	for _, p := range o.points {
		if rangeBox.Contains(p.Position) {
			found = append(found, p)
		}
	}
	if o.divided {
		for _, child := range o.children {
			found = child.Query(rangeBox, found)
		}
	}
	return found
}

// QueryRadius appends every point within radius of center (inclusive).
func (o *Octree[T]) QueryRadius(center geometry.Vec3, radius float64, found []Point[T]) ([]Point[T], error) {
	if radius < 0 {
		return found, ErrInvalidRadius
	}
	return o.queryRadius(center, radius, radius*radius, found), nil
}

func (o *Octree[T]) queryRadius(center geometry.Vec3, radius, radiusSq float64, found []Point[T]) []Point[T] {
	if !o.boundary.IntersectsSphere(center, radius) {
		return found
	}
	for _, p := range o.points {
		if geometry.DistanceSquared(p.Position, center) <= radiusSq {
			found = append(found, p)
		}
	}
	if o.divided {
		for _, child := range o.children {
			found = child.queryRadius(center, radius, radiusSq, found)
		}
	}
	return found
}

// Clear removes every point and drops the children. Safe to call repeatedly.
// The point slice keeps its capacity so a rebuild does not reallocate the root.
func (o *Octree[T]) Clear() {
	clear(o.points)
	o.points = o.points[:0]
	if o.divided {
		for i := range o.children {
			o.children[i].Clear()
			o.children[i] = nil
		}
		o.divided = false
	}
}

// Walk visits the node hierarchy depth-first, parents before children.
// Returning false from fn skips the children of that node.
func (o *Octree[T]) Walk(fn func(box geometry.BoundingBox, depth int, points int) bool) {
	if !fn(o.boundary, o.depth, len(o.points)) || !o.divided {
		return
	}
	for _, child := range o.children {
		child.Walk(fn)
	}
}

// Len returns the number of points stored in the subtree.
func (o *Octree[T]) Len() int {
	n := 0
	o.Walk(func(_ geometry.BoundingBox, _ int, points int) bool {
		n += points
		return true
	})
	return n
}

// NodeCount returns the number of nodes in the subtree, this one included.
func (o *Octree[T]) NodeCount() int {
	n := 0
	o.Walk(func(geometry.BoundingBox, int, int) bool {
		n++
		return true
	})
	return n
}

// MaxDepthReached returns the deepest node depth in the subtree.
func (o *Octree[T]) MaxDepthReached() int {
	deepest := 0
	o.Walk(func(_ geometry.BoundingBox, depth int, _ int) bool {
		deepest = max(deepest, depth)
		return true
	})
	return deepest
}
