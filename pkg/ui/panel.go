package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
}

// UIPanel stacks widgets vertically under a title, grouped in sections,
// followed by free text lines (stats, help).
type UIPanel struct {
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	Title         string
	Widgets       []UIWidget
	Lines         []string

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
}

// PanelSection is a titled group of consecutive widgets
type PanelSection struct {
	Title      string
	StartIndex int // Widget index where this section starts
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64, title string) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 200},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section, following widgets belong to it
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, PanelSection{Title: title, StartIndex: len(p.Widgets)})
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.Widgets = append(p.Widgets, c)
	return c
}

// AddButton adds a full width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.Widgets = append(p.Widgets, b)
	return b
}

// SetLines replaces the free text shown under the widgets
func (p *UIPanel) SetLines(lines ...string) {
	p.Lines = lines
}

// Update lays the widgets out and handles their input
func (p *UIPanel) Update() {
	p.layout()
	for _, widget := range p.Widgets {
		widget.Update()
	}
}

// layout assigns the Y position of every widget, section headers included.
// It returns the Y where the free text starts.
func (p *UIPanel) layout() float64 {
	y := p.Y + 25
	section := 0
	for i, widget := range p.Widgets {
		for section < len(p.sections) && p.sections[section].StartIndex == i {
			y += 22
			section++
		}
		switch w := widget.(type) {
		case *Checkbox:
			w.Y = y
		case *Button:
			w.Y = y
		}
		y += widget.GetHeight()
	}
	return y + 8
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	textY := p.layout()
	y := p.Y + 25
	section := 0
	for i, widget := range p.Widgets {
		for section < len(p.sections) && p.sections[section].StartIndex == i {
			vector.FillRect(screen,
				float32(p.X+5), float32(y),
				float32(p.Width-10), 18,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, p.sections[section].Title, int(p.X+10), int(y+1))
			y += 22
			section++
		}
		widget.Draw(screen)
		y += widget.GetHeight()
	}

	for i, line := range p.Lines {
		ebitenutil.DebugPrintAt(screen, line, int(p.X+10), int(textY)+i*16)
	}
}

func labelWithKey(label string, k ebiten.Key, hasKey bool) string {
	if !hasKey {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, k)
}
