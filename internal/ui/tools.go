package ui

import (
	"errors"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LeapPaint/internal/filter"
	"LeapPaint/internal/stroke"
)

// ErrNoColor is reported while no palette colour is selected.
var ErrNoColor = errors.New("no colour selected")

// DefaultColors is the palette offered by the toolbar.
var DefaultColors = []stroke.Color{
	stroke.Black,
	{R: 1, A: 1},
	{G: 1, A: 1},
	{B: 1, A: 1},
	{R: 1, G: 1, A: 1},
	stroke.White,
}

// Palette is the colour the user paints with. It is the painting colour
// source for both the colour filter and the stroke start gate.
type Palette struct {
	colors   []stroke.Color
	selected int
	mu       sync.RWMutex
}

var _ filter.ColorSource = (*Palette)(nil)

func NewPalette(colors ...stroke.Color) *Palette {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return &Palette{colors: colors}
}

// Colors returns the palette entries.
func (p *Palette) Colors() []stroke.Color {
	return append([]stroke.Color(nil), p.colors...)
}

// Select picks entry i; a negative index deselects, which stops new strokes
// from starting.
func (p *Palette) Select(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= len(p.colors) {
		i = len(p.colors) - 1
	}
	p.selected = max(i, -1)
}

func (p *Palette) CurrentColor() (stroke.Color, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected < 0 {
		return stroke.Color{}, ErrNoColor
	}
	return p.colors[p.selected], nil
}

// ThicknessControl holds the normalized brush size set by the slider.
type ThicknessControl struct {
	mu    sync.RWMutex
	value float32
}

var _ filter.ScalarSource = (*ThicknessControl)(nil)

func NewThicknessControl(v float32) *ThicknessControl {
	t := &ThicknessControl{}
	t.Set(v)
	return t
}

// Set stores v clamped to [0, 1].
func (t *ThicknessControl) Set(v float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = min(max(v, 0), 1)
}

func (t *ThicknessControl) CurrentScalar() (float32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value, nil
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func()
}

func newColorSwatch(c color.Color, tapped func()) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped()
	}
}

// Actions are the toolbar commands.
type Actions struct {
	Undo, Clear, Save, Load, Export, ResetView func()
}

// NewToolbar builds the scene actions, the palette and the brush size slider.
func NewToolbar(a Actions, palette *Palette, size *ThicknessControl) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), a.Undo),
		widget.NewToolbarAction(theme.DeleteIcon(), a.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.Save),
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.Load),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), a.Export),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), a.ResetView),
	)

	colorBox := container.NewHBox()
	for i, c := range palette.Colors() {
		colorBox.Add(newColorSwatch(c.NRGBA(), func() { palette.Select(i) }))
	}

	current, _ := size.CurrentScalar()
	sizeSlider := widget.NewSlider(0, 1)
	sizeSlider.Step = 0.05
	sizeSlider.SetValue(float64(current))
	sizeSlider.OnChanged = func(v float64) {
		size.Set(float32(v))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
