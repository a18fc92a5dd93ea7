package engine

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/piwi3910/gapfinder/internal/geom"
)

// dedupe drops exact structural duplicates, keeping first-seen order.
func dedupe(rects []geom.Rect) []geom.Rect {
	seen := mapset.New[geom.Rect]()
	out := make([]geom.Rect, 0, len(rects))
	for _, r := range rects {
		if seen.Has(r) {
			continue
		}
		seen.Put(r)
		out = append(out, r)
	}
	return out
}

// pruneContained removes any rect that is fully contained within another.
// Rects that contain each other (equal within tol) keep only the first.
func pruneContained(rects []geom.Rect, tol float64) []geom.Rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]geom.Rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !b.Contains(a, tol) {
				continue
			}
			if !a.Contains(b, tol) || j < i {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}
