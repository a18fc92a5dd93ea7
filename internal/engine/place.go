package engine

import (
	"fmt"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// Placement is a spot found for a new element.
type Placement struct {
	Rect    geom.Rect // Where the element goes
	Host    geom.Rect // The free rectangle it was placed in
	Rotated bool      // Whether width and height were swapped
}

// Place picks a position for a w x h element among the free rectangles
// using Best Area Fit: the host that leaves the least area unused wins.
// Ties go to the top-most, then left-most host. The element is anchored at
// the host's top-left corner. Returns false if nothing fits.
func Place(free []geom.Rect, w, h float64, allowRotation bool, tol float64) (Placement, bool) {
	var best Placement
	bestAreaFit := -1.0

	try := func(host geom.Rect, pw, ph float64, rotated bool) {
		if pw > host.Width+tol || ph > host.Height+tol {
			return
		}
		areaFit := host.Area() - pw*ph
		if bestAreaFit >= 0 {
			if areaFit > bestAreaFit {
				return
			}
			if areaFit == bestAreaFit && !host.Less(best.Host) {
				return
			}
		}
		bestAreaFit = areaFit
		best = Placement{
			Rect:    geom.Rect{Left: host.Left, Top: host.Top, Width: pw, Height: ph},
			Host:    host,
			Rotated: rotated,
		}
	}

	for _, host := range free {
		try(host, w, h, false)
		if allowRotation && w != h {
			try(host, h, w, true)
		}
	}
	return best, bestAreaFit >= 0
}

// PlaceInLayout computes the free space of layout and places a w x h element
// in it according to the finder's settings.
func (f *Finder) PlaceInLayout(layout model.Layout, w, h float64) (Placement, bool, error) {
	if !(w >= 0) || !(h >= 0) {
		return Placement{}, false, fmt.Errorf("element %gx%g: %w", w, h, geom.ErrNegativeSize)
	}
	outer := layout.Outer
	free, err := f.Find(&outer, layout.Rects())
	if err != nil {
		return Placement{}, false, err
	}
	p, ok := Place(free, w, h, f.Settings.AllowRotation, f.Settings.Tolerance)
	return p, ok, nil
}
