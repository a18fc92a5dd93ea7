package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// Free space colors, cycled for visual distinction. Alpha is low because
// maximal rectangles overlap.
var freeColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 60},  // green
	{R: 33, G: 150, B: 243, A: 60}, // blue
	{R: 255, G: 152, B: 0, A: 60},  // orange
	{R: 156, G: 39, B: 176, A: 60}, // purple
	{R: 0, G: 188, B: 212, A: 60},  // cyan
	{R: 255, G: 235, B: 59, A: 60}, // yellow
}

var (
	outerColor     = color.NRGBA{R: 245, G: 245, B: 240, A: 255}
	obstacleColor  = color.NRGBA{R: 120, G: 120, B: 130, A: 230}
	highlightColor = color.NRGBA{R: 244, G: 67, B: 54, A: 160}
)

// LayoutCanvas renders an outer rectangle, its obstacles, the free space of
// a result and an optional highlighted rectangle (a placement or a selected
// free rectangle).
type LayoutCanvas struct {
	widget.BaseWidget
	layout    model.Layout
	free      []model.FreeSpace
	highlight *geom.Rect
	maxWidth  float32
	maxHeight float32
}

func NewLayoutCanvas(layout model.Layout, free []model.FreeSpace, maxW, maxH float32) *LayoutCanvas {
	lc := &LayoutCanvas{
		layout:    layout,
		free:      free,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	lc.ExtendBaseWidget(lc)
	return lc
}

// SetHighlight marks r on the canvas; nil clears the highlight.
func (lc *LayoutCanvas) SetHighlight(r *geom.Rect) {
	lc.highlight = r
	lc.Refresh()
}

func (lc *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newLayoutCanvasRenderer(lc)
}

// FitScale returns the factor that fits a w x h rectangle into maxW x maxH.
// Degenerate rectangles scale by 1.
func FitScale(w, h, maxW, maxH float32) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return scale
}

type layoutCanvasRenderer struct {
	lc      *LayoutCanvas
	objects []fyne.CanvasObject
}

func newLayoutCanvasRenderer(lc *LayoutCanvas) *layoutCanvasRenderer {
	r := &layoutCanvasRenderer{lc: lc}
	r.rebuild()
	return r
}

func (r *layoutCanvasRenderer) scale() float32 {
	outer := r.lc.layout.Outer
	return FitScale(float32(outer.Width), float32(outer.Height), r.lc.maxWidth, r.lc.maxHeight)
}

// toCanvas maps a layout rectangle to canvas position and size.
func (r *layoutCanvasRenderer) toCanvas(rect geom.Rect, scale float32) (fyne.Position, fyne.Size) {
	outer := r.lc.layout.Outer
	pos := fyne.NewPos(float32(rect.Left-outer.Left)*scale, float32(rect.Top-outer.Top)*scale)
	size := fyne.NewSize(float32(rect.Width)*scale, float32(rect.Height)*scale)
	return pos, size
}

func (r *layoutCanvasRenderer) addRect(rect geom.Rect, scale float32, fill, stroke color.Color, strokeWidth float32) {
	pos, size := r.toCanvas(rect, scale)
	shape := canvas.NewRectangle(fill)
	shape.StrokeColor = stroke
	shape.StrokeWidth = strokeWidth
	shape.Resize(size)
	shape.Move(pos)
	r.objects = append(r.objects, shape)
}

func (r *layoutCanvasRenderer) rebuild() {
	r.objects = nil

	layout := r.lc.layout
	scale := r.scale()

	// Outer background and border
	r.addRect(layout.Outer, scale, outerColor, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, 2)

	// Free space first so obstacles stay readable on top
	for i, f := range r.lc.free {
		col := freeColors[i%len(freeColors)]
		stroke := col
		stroke.A = 200
		r.addRect(f.Rect, scale, col, stroke, 1)
	}

	for _, o := range layout.Obstacles {
		r.addRect(o.Rect, scale, obstacleColor, color.NRGBA{R: 30, G: 30, B: 30, A: 255}, 1)

		pos, size := r.toCanvas(o.Rect, scale)
		// Label (only if big enough)
		if size.Width > 30 && size.Height > 16 {
			label := canvas.NewText(o.Label, color.White)
			label.TextSize = 10
			label.Move(fyne.NewPos(pos.X+3, pos.Y+2))
			r.objects = append(r.objects, label)
		}
	}

	if r.lc.highlight != nil {
		r.addRect(*r.lc.highlight, scale, highlightColor, color.NRGBA{R: 200, G: 0, B: 0, A: 255}, 2)
	}
}

func (r *layoutCanvasRenderer) Layout(size fyne.Size)        {}
func (r *layoutCanvasRenderer) Refresh()                     { r.rebuild(); canvas.Refresh(r.lc) }
func (r *layoutCanvasRenderer) Destroy()                     {}
func (r *layoutCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *layoutCanvasRenderer) MinSize() fyne.Size {
	outer := r.lc.layout.Outer
	scale := r.scale()
	return fyne.NewSize(float32(outer.Width)*scale, float32(outer.Height)*scale)
}

// SummaryLines describes a result in a few lines of text.
func SummaryLines(proj model.Project) []string {
	if proj.Result == nil {
		return nil
	}
	res := proj.Result
	units := string(proj.Settings.Units)
	usable := res.Usable(proj.Settings.MinWidth, proj.Settings.MinHeight)

	lines := []string{
		fmt.Sprintf("Outer: %g x %g %s, %d obstacles, %.1f%% occupied",
			proj.Layout.Outer.Width, proj.Layout.Outer.Height, units,
			len(proj.Layout.Obstacles), proj.Layout.Occupancy()),
		fmt.Sprintf("Free space: %d maximal rectangles (%d usable), %g %s² uncovered",
			len(res.Free), len(usable), res.FreeArea(), units),
		fmt.Sprintf("Candidates: %d horizontal, %d vertical, %d distinct",
			res.Stats.HorizontalCandidates, res.Stats.VerticalCandidates, res.Stats.Distinct),
	}
	if largest, ok := res.Largest(); ok {
		lines = append(lines, fmt.Sprintf("Largest: %g x %g at (%g, %g)",
			largest.Rect.Width, largest.Rect.Height, largest.Rect.Left, largest.Rect.Top))
	}
	return lines
}

// RenderResult creates a scrollable view of a project's layout and free
// space, returning the canvas so callers can highlight rectangles on it.
func RenderResult(proj model.Project) (fyne.CanvasObject, *LayoutCanvas) {
	if proj.Result == nil {
		return widget.NewLabel("No results yet. Define the layout, then click Find Free Space."), nil
	}

	var items []fyne.CanvasObject

	lc := NewLayoutCanvas(proj.Layout, proj.Result.Free, 700, 450)
	items = append(items, lc, widget.NewSeparator())

	if len(proj.Result.Free) == 0 {
		warning := widget.NewLabel("The obstacles cover the whole outer rectangle. No free space left.")
		warning.Importance = widget.WarningImportance
		items = append(items, warning)
	}

	for i, line := range SummaryLines(proj) {
		l := widget.NewLabel(line)
		if i == 0 {
			l.TextStyle = fyne.TextStyle{Bold: true}
		}
		items = append(items, l)
	}

	return container.NewVScroll(container.NewVBox(items...)), lc
}
