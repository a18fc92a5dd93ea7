package geom

import (
	"fmt"
	"math"
)

// Interval is the half-open range [Begin, End) along one axis. Within a
// sweep strip it describes a gap of uncovered space.
type Interval struct {
	Begin float64
	End   float64
}

func (iv Interval) Len() float64 { return iv.End - iv.Begin }

// Empty reports whether the interval is no longer than tol.
func (iv Interval) Empty(tol float64) bool {
	return iv.End-iv.Begin <= tol
}

// Overlaps reports whether the two intervals share more than tol.
func (iv Interval) Overlaps(other Interval, tol float64) bool {
	return math.Min(iv.End, other.End)-math.Max(iv.Begin, other.Begin) > tol
}

// Clip limits the interval to bounds. The result may be empty.
func (iv Interval) Clip(bounds Interval) Interval {
	if iv.Begin < bounds.Begin {
		iv.Begin = bounds.Begin
	}
	if iv.End > bounds.End {
		iv.End = bounds.End
	}
	if iv.End < iv.Begin {
		iv.End = iv.Begin
	}
	return iv
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g,%g)", iv.Begin, iv.End)
}

// SubtractInterval removes cut from every gap and returns the remaining
// non-empty gaps in order. A gap disjoint from cut is kept, a covered gap is
// dropped, a clipped gap is shortened and a gap cut in the middle splits in
// two. Pieces no longer than tol are discarded.
func SubtractInterval(gaps []Interval, cut Interval, tol float64) []Interval {
	if cut.Empty(tol) {
		return gaps
	}
	out := make([]Interval, 0, len(gaps)+1)
	for _, g := range gaps {
		if !g.Overlaps(cut, tol) {
			out = append(out, g)
			continue
		}
		if before := (Interval{Begin: g.Begin, End: cut.Begin}); !before.Empty(tol) {
			out = append(out, before)
		}
		if after := (Interval{Begin: cut.End, End: g.End}); !after.Empty(tol) {
			out = append(out, after)
		}
	}
	return out
}
