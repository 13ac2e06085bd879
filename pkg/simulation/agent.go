package simulation

import "github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"

// FallbackHeading is the direction given by the speed floor to an agent whose
// velocity has no direction (zero length).
var FallbackHeading = geometry.Vec3{1, 0, 0}

// Agent is one boid of the flock.
type Agent struct {
	Position     geometry.Vec3
	Velocity     geometry.Vec3
	Acceleration geometry.Vec3
}

// Forward returns the unit heading, or the zero vector when the agent is not moving.
func (a *Agent) Forward() geometry.Vec3 {
	return geometry.SafeNormalize(a.Velocity)
}

// Speed returns the velocity magnitude.
func (a *Agent) Speed() float64 {
	return a.Velocity.Len()
}

// Integrate applies the accumulated acceleration over dt, enforces the speed floor,
// moves the agent and resets the acceleration.
func (a *Agent) Integrate(dt, minSpeed float64) {
	a.Velocity = a.Velocity.Add(a.Acceleration.Mul(dt))
	a.Velocity = ClampMinSpeed(a.Velocity, minSpeed)
	a.Position = a.Position.Add(a.Velocity.Mul(dt))
	a.Acceleration = geometry.Vec3{}
}

// ClampMinSpeed rescales v to minSpeed when it is slower, keeping its direction.
func ClampMinSpeed(v geometry.Vec3, minSpeed float64) geometry.Vec3 {
	if v.Len() >= minSpeed {
		return v
	}
	dir := geometry.SafeNormalize(v)
	if dir == geometry.Zero {
		dir = FallbackHeading
	}
	return dir.Mul(minSpeed)
}
