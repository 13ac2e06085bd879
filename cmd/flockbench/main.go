// Headless flock benchmark.
//
// Profiling:
// go build ./cmd/flockbench
// ./flockbench -profile cpu
// go tool pprof -http=":8000" ./flockbench cpu.pprof

package main

import (
	"flag"
	golog "log"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/simulation"
	"github.com/pkg/profile"
	"github.com/tochemey/goakt/v3/log"
)

var (
	configFlag  = flag.String("config", "", "JSON configuration file, the defaults are used when empty")
	stepsFlag   = flag.Int("steps", 600, "number of steps to run")
	dtFlag      = flag.Duration("dt", time.Second/60, "simulated time per step")
	agentsFlag  = flag.Int("agents", 0, "override the number of agents when > 0")
	workersFlag = flag.Int("workers", -1, "override the number of step workers when >= 0")
	profileFlag = flag.String("profile", "", "write a cpu or mem profile in the current directory")
	everyFlag   = flag.Int("every", 60, "log stats every n steps, 0 to disable")
)

func main() {
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFlag); err != nil {
			golog.Fatalf("💥 error loading configuration: %v", err)
		}
	}
	if *agentsFlag > 0 {
		cfg.NumAgents = *agentsFlag
	}
	if *workersFlag >= 0 {
		cfg.Workers = *workersFlag
	}

	logger := log.New(log.InfoLevel, os.Stdout)
	sim, err := simulation.NewSimulator(cfg, simulation.WithLogger(logger))
	if err != nil {
		golog.Fatal(err)
	}

	switch *profileFlag {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "":
	default:
		golog.Fatalf("💥 unknown profile %q, want cpu or mem", *profileFlag)
	}

	dt := dtFlag.Seconds()
	start := time.Now()
	for i := 1; i <= *stepsFlag; i++ {
		sim.Step(dt)
		if *everyFlag > 0 && i%*everyFlag == 0 {
			st := sim.Stats()
			logger.Infof("tick %d | octree %d nodes, depth %d, %d/%d indexed | speed %.2f | %.2f neighbors/agent",
				st.Tick, st.Nodes, st.Depth, st.Indexed, st.Agents, st.MeanSpeed, st.MeanNeighbors)
		}
	}
	elapsed := time.Since(start)
	logger.Infof("📊 %d steps of %d agents with %d workers in %s (%s/step)",
		*stepsFlag, cfg.NumAgents, cfg.Workers, elapsed, elapsed/time.Duration(max(1, *stepsFlag)))
}
