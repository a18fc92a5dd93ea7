// Package geom provides the axis-aligned rectangle and interval primitives
// used by the free-space engine.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeSize is returned when a rectangle would have a negative (or NaN)
// width or height.
var ErrNegativeSize = errors.New("rectangle width and height must be >= 0")

// Axis identifies one of the two coordinate axes.
type Axis int

const (
	AxisX Axis = iota // Horizontal, left to right
	AxisY             // Vertical, top to bottom
)

// Other returns the orthogonal axis.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

func (a Axis) String() string {
	if a == AxisX {
		return "X"
	}
	return "Y"
}

// Rect is an axis-aligned rectangle. The origin is top-left and Y grows
// downwards. Rect is a comparable value type; two rects are equal when all
// four fields are equal.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect builds a rectangle, rejecting negative or NaN sizes.
func NewRect(left, top, width, height float64) (Rect, error) {
	if !(width >= 0) || !(height >= 0) {
		return Rect{}, fmt.Errorf("%w: got %gx%g", ErrNegativeSize, width, height)
	}
	return Rect{Left: left, Top: top, Width: width, Height: height}, nil
}

// MustRect is like NewRect but panics on invalid sizes. Meant for literals
// in tests and built-in templates.
func MustRect(left, top, width, height float64) Rect {
	r, err := NewRect(left, top, width, height)
	if err != nil {
		panic(err)
	}
	return r
}

// Valid reports whether the rect satisfies the size invariant. Rects decoded
// from JSON bypass NewRect, so loaders check this.
func (r Rect) Valid() bool {
	return r.Width >= 0 && r.Height >= 0 && !math.IsNaN(r.Left) && !math.IsNaN(r.Top)
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }
func (r Rect) Area() float64   { return r.Width * r.Height }

// Span returns the extent of the rect along the given axis.
func (r Rect) Span(axis Axis) Interval {
	if axis == AxisX {
		return Interval{Begin: r.Left, End: r.Right()}
	}
	return Interval{Begin: r.Top, End: r.Bottom()}
}

// Transpose swaps the roles of X and Y.
func (r Rect) Transpose() Rect {
	return Rect{Left: r.Top, Top: r.Left, Width: r.Height, Height: r.Width}
}

// Contains reports whether other lies fully inside r. Edges may differ by up
// to tol in the wrong direction and still count as contained.
func (r Rect) Contains(other Rect, tol float64) bool {
	return r.Left <= other.Left+tol && r.Top <= other.Top+tol &&
		r.Right() >= other.Right()-tol && r.Bottom() >= other.Bottom()-tol
}

// Overlaps reports whether r and other share area. Rects that only touch,
// or penetrate by no more than tol, do not overlap.
func (r Rect) Overlaps(other Rect, tol float64) bool {
	return r.Span(AxisX).Overlaps(other.Span(AxisX), tol) &&
		r.Span(AxisY).Overlaps(other.Span(AxisY), tol)
}

// Intersect returns the common area of r and other, and false if they share
// none.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if right <= left || bottom <= top {
		return Rect{}, false
	}
	return FromEdges(left, top, right, bottom), true
}

// FromEdges builds the rect between the given edges. The size is chosen so
// that Right and Bottom reproduce right and bottom exactly whenever some
// float64 size allows it, and otherwise fall just short of them.
func FromEdges(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Width: spanLen(left, right), Height: spanLen(top, bottom)}
}

// spanLen returns a length l with begin+l == end if one exists, else the
// largest l with begin+l < end.
func spanLen(begin, end float64) float64 {
	l := end - begin
	for i := 0; i < 4 && begin+l > end; i++ {
		l = math.Nextafter(l, math.Inf(-1))
	}
	for i := 0; i < 4 && begin+l < end; i++ {
		next := math.Nextafter(l, math.Inf(1))
		if begin+next > end {
			break
		}
		l = next
	}
	return l
}

// Less orders rects by top, then left, then width, then height.
func (r Rect) Less(other Rect) bool {
	if r.Top != other.Top {
		return r.Top < other.Top
	}
	if r.Left != other.Left {
		return r.Left < other.Left
	}
	if r.Width != other.Width {
		return r.Width < other.Width
	}
	return r.Height < other.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.Left, r.Top, r.Width, r.Height)
}

// FromSpans rebuilds a rect from its extent along the sweep axis and the
// orthogonal cross axis.
func FromSpans(sweepAxis Axis, sweep, cross Interval) Rect {
	if sweepAxis == AxisY {
		return Rect{Left: cross.Begin, Top: sweep.Begin, Width: cross.Len(), Height: sweep.Len()}
	}
	return Rect{Left: sweep.Begin, Top: cross.Begin, Width: sweep.Len(), Height: cross.Len()}
}

// Bounds returns the smallest rect covering all rects, and false for an
// empty input.
func Bounds(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	left, top := rects[0].Left, rects[0].Top
	right, bottom := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		left = math.Min(left, r.Left)
		top = math.Min(top, r.Top)
		right = math.Max(right, r.Right())
		bottom = math.Max(bottom, r.Bottom())
	}
	return FromEdges(left, top, right, bottom), true
}
