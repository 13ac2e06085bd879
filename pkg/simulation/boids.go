package simulation

import (
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/octree"
)

// Neighbor is what the spatial index remembers about an agent between two rebuilds.
// Velocity is captured at rebuild time so every agent of a step sees the same state.
type Neighbor struct {
	ID       int
	Velocity geometry.Vec3
}

// Perception decides which candidates count as neighbors and how hard they steer.
type Perception struct {
	Weights
	NeighborDistance float64
	// CosViewAngle is the cosine of the view cone half angle; a candidate must be strictly above it.
	CosViewAngle float64
}

// Perceives reports whether other is seen by an agent at position looking along forward.
func (p Perception) Perceives(position, forward, other geometry.Vec3) bool {
	to := other.Sub(position)
	dir := geometry.SafeNormalize(to)
	// The agent itself normalizes to the zero vector, so it passes only when CosViewAngle < 0.
	// At 90 degrees the float64 cosine is about +6.1e-17 and the strict > still excludes it.
	return forward.Dot(dir) > p.CosViewAngle && to.Len() <= p.NeighborDistance
}

// ComputeFlockingForce calculates the separation, alignment and cohesion steering of me
// from the candidates returned by the spatial index.
// It returns the acceleration to add and the number of perceived neighbors.
func ComputeFlockingForce(me *Agent, candidates []octree.Point[Neighbor], p Perception) (geometry.Vec3, int) {
	var separation, alignment, cohesion geometry.Vec3
	neighbors := 0
	forward := me.Forward()

	for _, other := range candidates {
		if !p.Perceives(me.Position, forward, other.Position) {
			continue
		}
		separation = separation.Add(geometry.SafeNormalize(me.Position.Sub(other.Position)))
		alignment = alignment.Add(other.Value.Velocity)
		cohesion = cohesion.Add(other.Position)
		neighbors++
	}

	if neighbors == 0 {
		return geometry.Vec3{}, 0
	}

	n := float64(neighbors)
	force := separation.Mul(1 / n).Mul(p.Separation)
	force = force.Add(alignment.Mul(1 / n).Sub(me.Velocity).Mul(p.Alignment))
	force = force.Add(cohesion.Mul(1 / n).Sub(me.Position).Mul(p.Cohesion))
	return force, neighbors
}

// WallAvoidanceForce pushes an agent back inside bounds. Each face closer than
// distance contributes maxForce * (distance - d) / distance towards the interior.
func WallAvoidanceForce(position geometry.Vec3, bounds geometry.BoundingBox, distance, maxForce float64) geometry.Vec3 {
	var force geometry.Vec3
	lo, hi := bounds.Min(), bounds.Max()
	for axis := 0; axis < 3; axis++ {
		toLow := position[axis] - lo[axis]
		toHigh := hi[axis] - position[axis]
		if toLow < distance {
			force[axis] += maxForce * (distance - toLow) / distance
		}
		if toHigh < distance {
			force[axis] -= maxForce * (distance - toHigh) / distance
		}
	}
	return force
}
