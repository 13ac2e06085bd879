package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startWorld(t *testing.T, cfg *Config, snapshotCh chan<- *Snapshot) (context.Context, *actor.PID, *WorldActor) {
	t.Helper()
	ctx := context.Background()
	system, err := actor.NewActorSystem("TestWorld", actor.WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })

	world := NewWorldActor(snapshotCh, cfg)
	pid, err := system.Spawn(ctx, "world", world)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return ctx, pid, world
}

func askStats(t *testing.T, ctx context.Context, pid *actor.PID) Stats {
	t.Helper()
	reply, err := actor.Ask(ctx, pid, &emptypb.Empty{}, 5*time.Second)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	s, ok := reply.(*structpb.Struct)
	if !ok {
		t.Fatalf("reply is %T; want *structpb.Struct", reply)
	}
	return StatsFromStruct(s)
}

func TestWorldActor_TicksAndStats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 100
	snapshots := make(chan *Snapshot, 16)
	ctx, pid, _ := startWorld(t, cfg, snapshots)

	for i := 0; i < 3; i++ {
		if err := actor.Tell(ctx, pid, durationpb.New(time.Second/60)); err != nil {
			t.Fatalf("Tell: %v", err)
		}
	}

	st := askStats(t, ctx, pid)
	if st.Tick != 3 {
		t.Errorf("Tick = %d; want 3", st.Tick)
	}
	if st.Agents != 100 || st.Indexed == 0 || st.Nodes == 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.MeanSpeed < cfg.MinSpeed {
		t.Errorf("MeanSpeed = %v; want at least %v", st.MeanSpeed, cfg.MinSpeed)
	}

	var last *Snapshot
	for len(snapshots) > 0 {
		last = <-snapshots
	}
	if last == nil || last.Tick != 3 || len(last.Agents) != 100 {
		t.Fatalf("last snapshot = %+v; want tick 3 with 100 agents", last)
	}
}

func TestWorldActor_ResetAndToggle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 50
	snapshots := make(chan *Snapshot, 16)
	ctx, pid, _ := startWorld(t, cfg, snapshots)

	_ = actor.Tell(ctx, pid, durationpb.New(time.Second/30))
	_ = actor.Tell(ctx, pid, wrapperspb.UInt64(7))
	if st := askStats(t, ctx, pid); st.Tick != 0 {
		t.Errorf("Tick after reset = %d; want 0", st.Tick)
	}

	_ = actor.Tell(ctx, pid, wrapperspb.Bool(true))
	_ = askStats(t, ctx, pid)
	var last *Snapshot
	for len(snapshots) > 0 {
		last = <-snapshots
	}
	if last == nil || len(last.Boxes) == 0 {
		t.Fatal("snapshot after enabling the octree toggle has no boxes")
	}
}

func TestWorldActor_Tune(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 20
	ctx, pid, world := startWorld(t, cfg, nil)

	valid, err := structpb.NewStruct(map[string]any{"cohesionWeight": 0.9, "minSpeed": 3})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	if err := actor.Tell(ctx, pid, valid); err != nil {
		t.Fatalf("Tell: %v", err)
	}
	// the reply orders the check after the tune was handled
	_ = askStats(t, ctx, pid)
	got := world.sim.Config()
	if got.CohesionWeight != 0.9 || got.MinSpeed != 3 {
		t.Fatalf("after a valid tune cohesionWeight = %v, minSpeed = %v; want 0.9 and 3", got.CohesionWeight, got.MinSpeed)
	}

	notNumbers, err := structpb.NewStruct(map[string]any{"minSpeed": "fast", "separationWeight": true})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	_ = actor.Tell(ctx, pid, notNumbers)
	_ = askStats(t, ctx, pid)
	after := world.sim.Config()
	if after != got {
		t.Errorf("non-numeric tune changed the config: %+v; want %+v", after, got)
	}
}

func TestTuneValues(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		want    map[string]float64
		wantErr bool
	}{
		{"Numbers", map[string]any{"minSpeed": 4.5, "alignmentWeight": 0}, map[string]float64{"minSpeed": 4.5, "alignmentWeight": 0}, false},
		{"Empty", map[string]any{}, map[string]float64{}, false},
		{"String", map[string]any{"minSpeed": "fast"}, nil, true},
		{"Bool", map[string]any{"separationWeight": true}, nil, true},
		{"Null", map[string]any{"cohesionWeight": nil}, nil, true},
		{"Mixed", map[string]any{"cohesionWeight": 0.2, "minSpeed": []any{1.0}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.fields)
			if err != nil {
				t.Fatalf("NewStruct: %v", err)
			}
			got, err := tuneValues(s)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("tuneValues() error = %v; want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("tuneValues() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("tuneValues() = %v; want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("tuneValues()[%q] = %v; want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestWorldActor_PushSnapshotDoesNotBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 10
	ch := make(chan *Snapshot, 1)
	w := NewWorldActor(ch, cfg)
	sim, err := NewSimulator(cfg)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	w.sim = sim

	w.pushSnapshot()
	w.pushSnapshot() // dropped, the UI has not drained the first one
	if len(ch) != 1 {
		t.Errorf("channel holds %d snapshots; want 1", len(ch))
	}

	headless := NewWorldActor(nil, cfg)
	headless.sim = sim
	headless.pushSnapshot()
}

func TestStatsStructRoundTrip(t *testing.T) {
	want := Stats{Tick: 12, Agents: 30, Indexed: 29, Nodes: 17, Depth: 2, MeanSpeed: 8.5, MeanNeighbors: 3.25}
	s, err := statsToStruct(want)
	if err != nil {
		t.Fatalf("statsToStruct: %v", err)
	}
	if got := StatsFromStruct(s); got != want {
		t.Errorf("StatsFromStruct() = %+v; want %+v", got, want)
	}
}
