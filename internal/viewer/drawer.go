package viewer

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/simulation"
)

var (
	agentColor = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	// one color per octree depth, deeper nodes are warmer
	depthColors = []color.RGBA{
		{R: 90, G: 90, B: 110, A: 255},
		{R: 60, G: 130, B: 200, A: 200},
		{R: 60, G: 190, B: 150, A: 180},
		{R: 170, G: 200, B: 60, A: 160},
		{R: 230, G: 170, B: 50, A: 150},
		{R: 240, G: 110, B: 50, A: 140},
		{R: 230, G: 60, B: 80, A: 130},
		{R: 200, G: 50, B: 160, A: 120},
		{R: 160, G: 60, B: 220, A: 110},
	}
)

// screenDrawer renders DebugDrawer calls onto an ebiten image through a projection.
type screenDrawer struct {
	screen *ebiten.Image
	proj   Projection
	// pixel is the white source image of the heading triangles
	pixel *ebiten.Image
}

var _ simulation.DebugDrawer = (*screenDrawer)(nil)

func (d *screenDrawer) DrawPoint(p geometry.Vec3) {
	x, y := d.proj.Point(p)
	vector.FillRect(d.screen, x-1, y-1, 2, 2, agentColor, false)
}

// DrawBox strokes the 12 edges of the box, edges seen end-on collapse to a point.
func (d *screenDrawer) DrawBox(b geometry.BoundingBox, depth int) {
	clr := depthColors[min(depth, len(depthColors)-1)]
	for _, e := range b.Edges() {
		x0, y0 := d.proj.Point(e.From)
		x1, y1 := d.proj.Point(e.To)
		if x0 == x1 && y0 == y1 {
			continue
		}
		vector.StrokeLine(d.screen, x0, y0, x1, y1, 1, clr, false)
	}
}

func newPixel() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}

// drawHeading draws the agent as a small triangle pointing along its projected velocity.
func (d *screenDrawer) drawHeading(a *simulation.Agent) {
	dx, dy := d.proj.Direction(a.Velocity)
	if dx == 0 && dy == 0 {
		d.DrawPoint(a.Position)
		return
	}
	angle := math.Atan2(dy, dx)
	px, py := d.proj.Point(a.Position)
	x, y := float64(px), float64(py)

	tipX := x + math.Cos(angle)*6
	tipY := y + math.Sin(angle)*6
	rightX := x + math.Cos(angle+2.5)*4
	rightY := y + math.Sin(angle+2.5)*4
	leftX := x + math.Cos(angle-2.5)*4
	leftY := y + math.Sin(angle-2.5)*4

	r, g, b := float32(agentColor.R)/255, float32(agentColor.G)/255, float32(agentColor.B)/255
	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
	}
	d.screen.DrawTriangles(vertices, []uint16{0, 1, 2}, d.pixel, &ebiten.DrawTrianglesOptions{})
}
