package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/octree"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// DebugDrawer receives what the simulator wants shown. Implementations live outside
// the core (see internal/viewer); the simulator never depends on a renderer.
type DebugDrawer interface {
	DrawPoint(position geometry.Vec3)
	DrawBox(box geometry.BoundingBox, depth int)
}

// BoxNode is one node of the octree hierarchy as reported for debug drawing.
type BoxNode struct {
	Box    geometry.BoundingBox
	Depth  int
	Points int
}

// Snapshot is a copy of the simulation state, safe to hand to another goroutine.
type Snapshot struct {
	Tick   uint64
	Bounds geometry.BoundingBox
	Agents []Agent
	Boxes  []BoxNode
	Stats  Stats
}

// Visualize replays the snapshot into d the way Simulator.Visualize would have at that tick.
func (s *Snapshot) Visualize(d DebugDrawer) {
	for i := range s.Agents {
		d.DrawPoint(s.Agents[i].Position)
	}
	for _, b := range s.Boxes {
		d.DrawBox(b.Box, b.Depth)
	}
}

// Stats summarizes the last step.
type Stats struct {
	Tick          uint64
	Agents        int
	Indexed       int // agents present in the octree, the others left the world box
	Nodes         int
	Depth         int
	MeanSpeed     float64
	MeanNeighbors float64
}

// Simulator owns the flock and the octree used for neighbor queries.
// It is not safe for concurrent use; WorldActor serializes access to it.
type Simulator struct {
	cfg        Config
	perception Perception
	agents     []Agent
	tree       *octree.Octree[Neighbor]
	rng        *rand.Rand
	logger     log.Logger

	tick          uint64
	lastNeighbors int
	// scratch holds one query buffer per worker, reused across steps
	scratch [][]octree.Point[Neighbor]
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger, log.DiscardLogger by default.
func WithLogger(l log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithRand replaces the seeded random source used to spawn agents.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

// NewSimulator spawns cfg.NumAgents agents at random inside the world box and indexes them.
func NewSimulator(cfg *Config, opts ...Option) (*Simulator, error) {
	s, err := newSimulator(cfg, opts)
	if err != nil {
		return nil, err
	}
	s.agents = s.spawn(cfg.NumAgents)
	s.rebuild()
	s.logger.Infof("simulator ready: %d agents in %s, octree %d nodes (capacity %d)",
		len(s.agents), geometry.Format(cfg.WorldHalfExtent), s.tree.NodeCount(), s.tree.Capacity())
	return s, nil
}

// NewSimulatorFromAgents starts from a given flock instead of a random one.
// cfg.NumAgents is ignored.
func NewSimulatorFromAgents(cfg *Config, agents []Agent, opts ...Option) (*Simulator, error) {
	s, err := newSimulator(cfg, opts)
	if err != nil {
		return nil, err
	}
	s.agents = append([]Agent(nil), agents...)
	s.rebuild()
	return s, nil
}

func newSimulator(cfg *Config, opts []Option) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:    *cfg,
		tree:   octree.New[Neighbor](cfg.WorldBounds(), cfg.OctreeOptions()),
		logger: log.DiscardLogger,
	}
	s.updatePerception()
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}
	s.scratch = make([][]octree.Point[Neighbor], max(1, cfg.Workers))
	return s, nil
}

func (s *Simulator) updatePerception() {
	s.perception = Perception{
		Weights:          s.cfg.Weights(),
		NeighborDistance: s.cfg.NeighborDistance,
		CosViewAngle:     math.Cos(mgl64.DegToRad(s.cfg.ViewAngleThresholdDegrees)),
	}
}

// spawn places n agents uniformly in the world box, heading in a random direction
// sampled with polar angle in [0, pi] and azimuth in [0, 2pi].
func (s *Simulator) spawn(n int) []Agent {
	bounds := s.cfg.WorldBounds()
	agents := make([]Agent, n)
	for i := range agents {
		var pos geometry.Vec3
		for axis := 0; axis < 3; axis++ {
			pos[axis] = bounds.Center[axis] + (s.rng.Float64()*2-1)*bounds.HalfExtents[axis]
		}
		theta := s.rng.Float64() * 2 * math.Pi
		phi := s.rng.Float64() * math.Pi
		agents[i] = Agent{
			Position: pos,
			Velocity: geometry.NewVectorSpherical(s.cfg.InitialSpeed, theta, phi),
		}
	}
	return agents
}

// Reset respawns the whole flock from a new seed.
func (s *Simulator) Reset(seed uint64) {
	s.cfg.Seed = seed
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s.agents = s.spawn(s.cfg.NumAgents)
	s.tick = 0
	s.lastNeighbors = 0
	s.rebuild()
	s.logger.Infof("flock reset with seed %d", seed)
}

// Step advances the simulation by dt seconds.
// Every agent is updated against the octree built at the end of the previous step,
// then the octree is rebuilt from the new positions.
func (s *Simulator) Step(dt float64) {
	if s.cfg.Workers > 1 && len(s.agents) > 1 {
		s.lastNeighbors = s.stepParallel(dt)
	} else {
		s.lastNeighbors = s.updateRange(0, len(s.agents), dt, 0)
	}
	s.rebuild()
	s.tick++
}

// updateRange runs the per-agent pass on agents[lo:hi] with the query buffer of worker w.
// It only reads the octree and only writes the agents of its range.
func (s *Simulator) updateRange(lo, hi int, dt float64, w int) int {
	bounds := s.tree.Boundary()
	found := s.scratch[w]
	total := 0
	for i := lo; i < hi; i++ {
		a := &s.agents[i]
		a.Acceleration = a.Acceleration.Add(WallAvoidanceForce(a.Position, bounds, s.cfg.WallAvoidanceDistance, s.cfg.WallAvoidanceForce))

		found = s.tree.Query(geometry.NewCube(a.Position, s.cfg.NeighborDistance), found[:0])
		steer, n := ComputeFlockingForce(a, found, s.perception)
		a.Acceleration = a.Acceleration.Add(steer)
		total += n

		a.Integrate(dt, s.cfg.MinSpeed)
	}
	clear(found)
	s.scratch[w] = found[:0]
	return total
}

func (s *Simulator) stepParallel(dt float64) int {
	workers := min(s.cfg.Workers, len(s.agents))
	chunk := (len(s.agents) + workers - 1) / workers
	counts := make([]int, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(s.agents))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			counts[w] = s.updateRange(lo, hi, dt, w)
			return nil
		})
	}
	// barrier: the rebuild must not start before every agent is written
	_ = g.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// rebuild clears the octree and reinserts every agent with its current velocity.
func (s *Simulator) rebuild() {
	s.tree.Clear()
	dropped := 0
	for i := range s.agents {
		a := &s.agents[i]
		if !s.tree.Insert(octree.Point[Neighbor]{
			Position: a.Position,
			Value:    Neighbor{ID: i, Velocity: a.Velocity},
		}) {
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Debugf("tick %d: %d agents outside the octree", s.tick, dropped)
	}
}

// Config returns a copy of the active configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Tick returns the number of steps taken since the last reset.
func (s *Simulator) Tick() uint64 { return s.tick }

// Tree exposes the octree for read-only use between steps.
func (s *Simulator) Tree() *octree.Octree[Neighbor] { return s.tree }

// Agents returns a copy of the flock.
func (s *Simulator) Agents() []Agent {
	return append([]Agent(nil), s.agents...)
}

// Positions returns the current agent positions.
func (s *Simulator) Positions() []geometry.Vec3 {
	out := make([]geometry.Vec3, len(s.agents))
	for i := range s.agents {
		out[i] = s.agents[i].Position
	}
	return out
}

// Boxes returns the octree hierarchy, parents before children.
func (s *Simulator) Boxes() []BoxNode {
	var boxes []BoxNode
	s.tree.Walk(func(box geometry.BoundingBox, depth int, points int) bool {
		boxes = append(boxes, BoxNode{Box: box, Depth: depth, Points: points})
		return true
	})
	return boxes
}

// Visualize reports every agent position and, when drawBoxes is set, every octree box.
func (s *Simulator) Visualize(d DebugDrawer, drawBoxes bool) {
	for i := range s.agents {
		d.DrawPoint(s.agents[i].Position)
	}
	if !drawBoxes {
		return
	}
	s.tree.Walk(func(box geometry.BoundingBox, depth int, _ int) bool {
		d.DrawBox(box, depth)
		return true
	})
}

// Snapshot copies the state for a renderer. Boxes are only included when withBoxes is set.
func (s *Simulator) Snapshot(withBoxes bool) *Snapshot {
	snap := &Snapshot{
		Tick:   s.tick,
		Bounds: s.tree.Boundary(),
		Agents: s.Agents(),
		Stats:  s.Stats(),
	}
	if withBoxes {
		snap.Boxes = s.Boxes()
	}
	return snap
}

// Stats summarizes the current state.
func (s *Simulator) Stats() Stats {
	st := Stats{
		Tick:    s.tick,
		Agents:  len(s.agents),
		Indexed: s.tree.Len(),
		Nodes:   s.tree.NodeCount(),
		Depth:   s.tree.MaxDepthReached(),
	}
	if len(s.agents) == 0 {
		return st
	}
	var speed float64
	for i := range s.agents {
		speed += s.agents[i].Speed()
	}
	st.MeanSpeed = speed / float64(len(s.agents))
	st.MeanNeighbors = float64(s.lastNeighbors) / float64(len(s.agents))
	return st
}

// SetWeights changes the steering weights from the next step on.
func (s *Simulator) SetWeights(w Weights) {
	s.cfg.SeparationWeight = w.Separation
	s.cfg.AlignmentWeight = w.Alignment
	s.cfg.CohesionWeight = w.Cohesion
	s.updatePerception()
}

// Tune overrides live tunables by their JSON name. Unknown names and values that
// break Config.Validate are rejected and leave the simulator unchanged.
func (s *Simulator) Tune(values map[string]float64) error {
	next := s.cfg
	for name, v := range values {
		switch name {
		case "separationWeight":
			next.SeparationWeight = v
		case "alignmentWeight":
			next.AlignmentWeight = v
		case "cohesionWeight":
			next.CohesionWeight = v
		case "neighborDistance":
			next.NeighborDistance = v
		case "viewAngleThresholdDegrees":
			next.ViewAngleThresholdDegrees = v
		case "wallAvoidanceDistance":
			next.WallAvoidanceDistance = v
		case "wallAvoidanceForce":
			next.WallAvoidanceForce = v
		case "minSpeed":
			next.MinSpeed = v
		default:
			return fmt.Errorf("%w: %q is not a live tunable", ErrInvalidConfig, name)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	s.updatePerception()
	return nil
}
