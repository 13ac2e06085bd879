// Package viewer is the ebiten debug window of the flock: an orthographic projection of
// the agents and of the octree boxes, driven by the world actor.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ScreenWidth  = 1100
	ScreenHeight = 800
	panelWidth   = 260
	margin       = 20
)

var (
	background = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	worldFill  = color.RGBA{R: 18, G: 18, B: 45, A: 255}
)

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config

	// UI Controls
	panel         *ui.UIPanel
	widgetPaused  *ui.Checkbox
	widgetOctree  *ui.Checkbox
	widgetHeading *ui.Checkbox
	widgetPlane   *ui.Button
	sentOctree    bool
	plane         int
	seed          uint64

	drawer *screenDrawer

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns the world actor in system and builds the window around it.
func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) (*Game, error) {
	// Buffer to avoid blocking the world actor
	snapshotCh := make(chan *simulation.Snapshot, 4)

	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.Snapshot{Bounds: cfg.WorldBounds()},
		cfg:        cfg,
		sentOctree: cfg.DrawOctree,
		seed:       cfg.Seed,
		drawer:     &screenDrawer{pixel: newPixel()},
	}

	panel := ui.NewUIPanel(margin/2, margin/2, panelWidth-margin, ScreenHeight-margin, "Octree boids")
	panel.AddSection("Simulation")
	g.widgetPaused = panel.AddCheckbox("Paused", false).WithKey(ebiten.KeySpace)
	panel.AddButton("Reset flock", g.reset).WithKey(ebiten.KeyR)
	panel.AddSection("Display")
	g.widgetOctree = panel.AddCheckbox("Octree boxes", cfg.DrawOctree).WithKey(ebiten.KeyO)
	g.widgetHeading = panel.AddCheckbox("Headings", true).WithKey(ebiten.KeyH)
	g.widgetPlane = panel.AddButton(Planes[0].Name, g.nextPlane).WithKey(ebiten.KeyP)
	g.panel = panel
	return g, nil
}

func (g *Game) reset() {
	g.seed++
	_ = actor.Tell(g.ctx, g.worldPID, wrapperspb.UInt64(g.seed))
}

func (g *Game) nextPlane() {
	g.plane = (g.plane + 1) % len(Planes)
	g.widgetPlane.Label = Planes[g.plane].Name
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	if g.widgetOctree.Value != g.sentOctree {
		g.sentOctree = g.widgetOctree.Value
		_ = actor.Tell(g.ctx, g.worldPID, wrapperspb.Bool(g.sentOctree))
	}

	if !g.widgetPaused.Value {
		// Trigger Simulation Step, one tick of simulated time per frame
		_ = actor.Tell(g.ctx, g.worldPID, durationpb.New(time.Second/time.Duration(ebiten.TPS())))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)

	snap := g.lastState
	g.drawer.screen = screen
	g.drawer.proj = NewProjection(snap.Bounds, Planes[g.plane],
		panelWidth, margin, ScreenWidth-panelWidth-margin, ScreenHeight-2*margin)
	x, y, w, h := g.drawer.proj.Rect(snap.Bounds)
	vector.FillRect(screen, x, y, w, h, worldFill, false)

	if g.widgetHeading.Value {
		for _, b := range snap.Boxes {
			g.drawer.DrawBox(b.Box, b.Depth)
		}
		for i := range snap.Agents {
			g.drawer.drawHeading(&snap.Agents[i])
		}
	} else {
		snap.Visualize(g.drawer)
	}
	if len(snap.Boxes) == 0 {
		// always show the world box
		g.drawer.DrawBox(snap.Bounds, 0)
	}

	st := snap.Stats
	g.panel.SetLines(
		fmt.Sprintf("Tick:      %d", st.Tick),
		fmt.Sprintf("Agents:    %d (%d indexed)", st.Agents, st.Indexed),
		fmt.Sprintf("Octree:    %d nodes", st.Nodes),
		fmt.Sprintf("Depth:     %d", st.Depth),
		fmt.Sprintf("Speed:     %.2f", st.MeanSpeed),
		fmt.Sprintf("Neighbors: %.2f", st.MeanNeighbors),
		"",
		fmt.Sprintf("FPS: %.2f  TPS: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("Update: %.2fms", g.updateAvg),
		fmt.Sprintf("Draw:   %.2fms", g.drawAvg),
	)
	g.panel.Draw(screen)

	ebitenutil.DebugPrintAt(screen, Planes[g.plane].Name, panelWidth, 2)
}

func (g *Game) Layout(w, h int) (int, int) { return ScreenWidth, ScreenHeight }
