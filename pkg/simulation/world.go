package simulation

import (
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WorldActor owns the Simulator and serializes every access to it.
//
// Messages:
//   - *durationpb.Duration: advance the flock by that duration, then push a Snapshot
//   - *structpb.Struct: Tune the live parameters, numbers only
//   - *wrapperspb.BoolValue: include (or not) the octree boxes in snapshots
//   - *wrapperspb.UInt64Value: Reset the flock with that seed
//   - *emptypb.Empty: reply with the current Stats as a *structpb.Struct
type WorldActor struct {
	cfg *Config
	sim *Simulator
	// Communication with UI, may be nil for headless runs
	snapshotCh chan<- *Snapshot
	drawOctree bool

	// --- Benchmark Stats ---
	stepCount   int
	stepTime    time.Duration
	lastLogTime time.Time
}

// Enforce interface compliance
var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. The simulator itself is built in PreStart
// so that it logs through the actor system logger.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		drawOctree:  cfg.DrawOctree,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	sim, err := NewSimulator(w.cfg, WithLogger(ctx.ActorSystem().Logger()))
	if err != nil {
		return err
	}
	w.sim = sim
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started with %d agents", len(w.sim.agents))
		w.pushSnapshot()

	// The main simulation step, driven by the game loop or the bench
	case *durationpb.Duration:
		start := time.Now()
		w.sim.Step(msg.AsDuration().Seconds())
		w.stepTime += time.Since(start)
		w.stepCount++
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *structpb.Struct:
		values, err := tuneValues(msg)
		if err != nil {
			ctx.Logger().Warnf("tune rejected: %v", err)
			return
		}
		if err := w.sim.Tune(values); err != nil {
			ctx.Logger().Warnf("tune rejected: %v", err)
			return
		}
		ctx.Logger().Infof("tuned %d parameters", len(values))

	case *wrapperspb.BoolValue:
		w.drawOctree = msg.GetValue()
		w.pushSnapshot()

	case *wrapperspb.UInt64Value:
		w.sim.Reset(msg.GetValue())
		w.pushSnapshot()

	case *emptypb.Empty:
		stats, err := statsToStruct(w.sim.Stats())
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(stats)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	st := w.sim.Stats()
	ctx.Logger().Infof("📊 STEP RATE: %d/sec (avg %s) | tick %d | octree %d nodes, depth %d | %.2f neighbors/agent",
		w.stepCount, w.stepTime/time.Duration(max(1, w.stepCount)), st.Tick, st.Nodes, st.Depth, st.MeanNeighbors)
	w.stepCount = 0
	w.stepTime = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.sim.Snapshot(w.drawOctree):
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.sim.Tick())
	return nil
}

// tuneValues extracts the numeric fields of a tune message. Any other kind is an error:
// reading it as a number would silently tune the parameter to 0.
func tuneValues(s *structpb.Struct) (map[string]float64, error) {
	values := make(map[string]float64, len(s.GetFields()))
	for name, v := range s.GetFields() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a number, got %T", ErrInvalidConfig, name, v.GetKind())
		}
		values[name] = n.NumberValue
	}
	return values, nil
}

func statsToStruct(st Stats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"tick":          st.Tick,
		"agents":        st.Agents,
		"indexed":       st.Indexed,
		"nodes":         st.Nodes,
		"depth":         st.Depth,
		"meanSpeed":     st.MeanSpeed,
		"meanNeighbors": st.MeanNeighbors,
	})
}

// StatsFromStruct decodes the reply to an *emptypb.Empty request.
func StatsFromStruct(s *structpb.Struct) Stats {
	f := s.GetFields()
	return Stats{
		Tick:          uint64(f["tick"].GetNumberValue()),
		Agents:        int(f["agents"].GetNumberValue()),
		Indexed:       int(f["indexed"].GetNumberValue()),
		Nodes:         int(f["nodes"].GetNumberValue()),
		Depth:         int(f["depth"].GetNumberValue()),
		MeanSpeed:     f["meanSpeed"].GetNumberValue(),
		MeanNeighbors: f["meanNeighbors"].GetNumberValue(),
	}
}
