package main

import (
	"context"
	"flag"
	golog "log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-octree-boids/internal/viewer"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

var (
	configFlag  = flag.String("config", "", "JSON configuration file, the defaults are used when empty")
	schemaFlag  = flag.String("schema", "", "external JSON schema for the configuration, the embedded one when empty")
	agentsFlag  = flag.Int("agents", 0, "override the number of agents when > 0")
	workersFlag = flag.Int("workers", -1, "override the number of step workers when >= 0")
	debugFlag   = flag.Bool("debug", false, "log at debug level")
)

func loadConfig() (*simulation.Config, error) {
	switch {
	case *configFlag == "":
		return simulation.DefaultConfig(), nil
	case *schemaFlag != "":
		return simulation.LoadConfigWithSchema(*configFlag, *schemaFlag)
	default:
		return simulation.LoadConfig(*configFlag)
	}
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		golog.Fatalf("💥 error loading configuration: %v", err)
	}
	if *agentsFlag > 0 {
		cfg.NumAgents = *agentsFlag
	}
	if *workersFlag >= 0 {
		cfg.Workers = *workersFlag
	}
	if err := cfg.Validate(); err != nil {
		golog.Fatalf("💥 %v", err)
	}

	level := log.InfoLevel
	if *debugFlag {
		level = log.DebugLevel
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("OctreeBoids",
		actor.WithLogger(log.New(level, os.Stdout)),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		golog.Fatalf("💥 failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		golog.Fatalf("💥 failed to start actor system: %v", err)
	}
	defer system.Stop(ctx)

	game, err := viewer.NewGame(ctx, cfg, system)
	if err != nil {
		golog.Fatal(err)
	}

	ebiten.SetWindowSize(viewer.ScreenWidth, viewer.ScreenHeight)
	ebiten.SetWindowTitle("Octree boids")
	if err := ebiten.RunGame(game); err != nil {
		golog.Fatal(err)
	}
}
