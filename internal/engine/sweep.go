package engine

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/piwi3910/gapfinder/internal/geom"
)

// strip is the band between two consecutive event coordinates. The set of
// obstacles crossing it is constant across the band.
type strip struct {
	span   geom.Interval
	active []int
}

// sweep runs one pass with the given sweep axis and returns one candidate
// per free gap per strip.
func (f *Finder) sweep(outer geom.Rect, inner []geom.Rect, axis geom.Axis) []geom.Rect {
	tol := f.Settings.Tolerance
	cross := axis.Other()
	outerCross := outer.Span(cross)
	if outerCross.Empty(tol) {
		return nil
	}

	strips := buildStrips(outer, inner, axis, tol)

	var candidates []geom.Rect
	for si, s := range strips {
		gaps := []geom.Interval{outerCross}
		for _, oi := range s.active {
			gaps = geom.SubtractInterval(gaps, inner[oi].Span(cross).Clip(outerCross), tol)
			if len(gaps) == 0 {
				break
			}
		}
		for _, g := range gaps {
			span := s.span
			if f.Settings.ExpandStrips {
				span = expandSpan(strips, si, g, inner, cross, tol)
			}
			candidates = append(candidates, geom.FromSpans(axis, span, g))
		}
	}
	return candidates
}

// buildStrips cuts the outer sweep extent at every obstacle edge and
// records the obstacles active in each strip. Degenerate strips are skipped.
func buildStrips(outer geom.Rect, inner []geom.Rect, axis geom.Axis, tol float64) []strip {
	events := eventPoints(outer, inner, axis, tol)
	index := newObstacleIndex(inner, axis)

	strips := make([]strip, 0, len(events))
	for i := 0; i+1 < len(events); i++ {
		span := geom.Interval{Begin: events[i], End: events[i+1]}
		if span.Empty(tol) {
			continue
		}
		strips = append(strips, strip{
			span:   span,
			active: index.overlapping(span, tol),
		})
	}
	return strips
}

// eventPoints returns the distinct sweep coordinates of the outer and inner
// edges, clipped to the outer extent and sorted. Coordinates closer than tol
// collapse onto the smaller one.
func eventPoints(outer geom.Rect, inner []geom.Rect, axis geom.Axis, tol float64) []float64 {
	bounds := outer.Span(axis)
	seen := mapset.New[float64]()
	seen.Put(bounds.Begin)
	seen.Put(bounds.End)
	for _, r := range inner {
		span := r.Span(axis).Clip(bounds)
		seen.Put(span.Begin)
		seen.Put(span.End)
	}

	coords := make([]float64, 0, seen.Size())
	seen.Each(func(c float64) {
		coords = append(coords, c)
	})
	sort.Float64s(coords)

	events := coords[:1]
	for _, c := range coords[1:] {
		if c-events[len(events)-1] > tol {
			events = append(events, c)
		}
	}
	// The outer end must stay an event even if a neighbour swallowed it.
	if last := events[len(events)-1]; last != bounds.End {
		events[len(events)-1] = bounds.End
	}
	return events
}

// expandSpan grows the strip si along the sweep axis over neighbouring
// strips for as long as no active obstacle blocks the cross interval gap.
// The gap is already bounded on both cross sides within strip si, so the
// grown rectangle is maximal in both directions.
func expandSpan(strips []strip, si int, gap geom.Interval, inner []geom.Rect, cross geom.Axis, tol float64) geom.Interval {
	blocked := func(s strip) bool {
		for _, oi := range s.active {
			if inner[oi].Span(cross).Overlaps(gap, tol) {
				return true
			}
		}
		return false
	}

	lo, hi := si, si
	for lo > 0 && !blocked(strips[lo-1]) {
		lo--
	}
	for hi+1 < len(strips) && !blocked(strips[hi+1]) {
		hi++
	}
	return geom.Interval{Begin: strips[lo].span.Begin, End: strips[hi].span.End}
}
