package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a simple UI widget for boolean values.
// It toggles on click or when its keyboard shortcut is pressed.
type Checkbox struct {
	Label   string
	Value   bool
	X, Y    float64
	Size    float64
	Key     ebiten.Key
	HasKey  bool
	clicked bool // Track if already clicked this frame
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16, // Default size
	}
}

// WithKey binds a keyboard shortcut to the checkbox.
func (c *Checkbox) WithKey(k ebiten.Key) *Checkbox {
	c.Key = k
	c.HasKey = true
	return c
}

// Update checks for mouse and keyboard interaction
func (c *Checkbox) Update() {
	if c.HasKey && inpututil.IsKeyJustPressed(c.Key) {
		c.Value = !c.Value
	}

	mx, my := ebiten.CursorPosition()
	isOver := float64(mx) >= c.X && float64(mx) <= c.X+c.Size &&
		float64(my) >= c.Y && float64(my) <= c.Y+c.Size

	// Toggle on click (with debouncing)
	if isOver && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !c.clicked {
			c.Value = !c.Value
			c.clicked = true
		}
	} else {
		c.clicked = false
	}
}

// Draw renders the checkbox and its label
func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}
	ebitenutil.DebugPrintAt(screen, labelWithKey(c.Label, c.Key, c.HasKey), int(c.X+c.Size+8), int(c.Y))
}

func (c *Checkbox) GetHeight() float64 {
	return c.Size + 8
}
