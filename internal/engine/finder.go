// Package engine finds the maximal empty rectangles left inside an outer
// rectangle by a set of disjoint obstacles.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

var (
	// ErrNilArgument is returned when the outer rectangle is missing.
	ErrNilArgument = errors.New("missing argument")
	// ErrInvalidNesting is returned when an obstacle is not fully inside the
	// outer rectangle.
	ErrInvalidNesting = errors.New("inner rectangle is not contained in outer rectangle")
)

// Finder computes free space. A Finder holds no mutable state, so one value
// can serve concurrent callers.
type Finder struct {
	Settings model.Settings
	Logger   *slog.Logger
}

func New(settings model.Settings) *Finder {
	return &Finder{Settings: settings}
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Find returns the maximal empty rectangles of outer once the inner
// rectangles are taken out. Every result is disjoint from all inner
// rectangles, lies inside outer and is not contained in another result;
// together they cover all of outer that no inner rectangle covers.
//
// Inner rectangles are assumed not to overlap each other. A nil inner slice
// is an empty obstacle set. Results are sorted by top, left, width, height.
//
// The shape of the output depends on Settings.ExpandStrips, which
// model.DefaultSettings turns on. When set, each strip-by-gap candidate is
// grown along the sweep axis over every neighbouring strip that leaves its
// gap free before filtering, so results are the true maximal empty
// rectangles. When unset, the raw candidates of both sweeps are filtered
// as they are, and a result may still be extendable along its sweep axis.
func (f *Finder) Find(outer *geom.Rect, inner []geom.Rect) ([]geom.Rect, error) {
	rects, _, err := f.FindWithStats(outer, inner)
	return rects, err
}

// FindWithStats is Find plus per-pass candidate counts.
func (f *Finder) FindWithStats(outer *geom.Rect, inner []geom.Rect) ([]geom.Rect, model.PassStats, error) {
	if err := f.validate(outer, inner); err != nil {
		return nil, model.PassStats{}, err
	}

	if len(inner) == 0 {
		return []geom.Rect{*outer}, model.PassStats{HorizontalCandidates: 1, VerticalCandidates: 1, Distinct: 1, Maximal: 1}, nil
	}

	horizontal := f.sweep(*outer, inner, geom.AxisY)
	vertical := f.sweep(*outer, inner, geom.AxisX)

	candidates := make([]geom.Rect, 0, len(horizontal)+len(vertical))
	candidates = append(candidates, horizontal...)
	candidates = append(candidates, vertical...)

	distinct := dedupe(candidates)
	maximal := pruneContained(distinct, f.Settings.Tolerance)
	sort.Slice(maximal, func(i, j int) bool { return maximal[i].Less(maximal[j]) })

	stats := model.PassStats{
		HorizontalCandidates: len(horizontal),
		VerticalCandidates:   len(vertical),
		Distinct:             len(distinct),
		Maximal:              len(maximal),
	}
	f.logger().Debug("free space computed",
		"obstacles", len(inner),
		"horizontal", stats.HorizontalCandidates,
		"vertical", stats.VerticalCandidates,
		"distinct", stats.Distinct,
		"maximal", stats.Maximal,
	)
	return maximal, stats, nil
}

func (f *Finder) validate(outer *geom.Rect, inner []geom.Rect) error {
	if outer == nil {
		return fmt.Errorf("%w: outer rectangle is nil", ErrNilArgument)
	}
	if !outer.Valid() {
		return fmt.Errorf("outer rectangle %v: %w", *outer, geom.ErrNegativeSize)
	}
	for i, r := range inner {
		if !r.Valid() {
			return fmt.Errorf("inner[%d] %v: %w", i, r, geom.ErrNegativeSize)
		}
		if !outer.Contains(r, f.Settings.Tolerance) {
			return fmt.Errorf("%w: inner[%d] %v exceeds outer %v", ErrInvalidNesting, i, r, *outer)
		}
	}
	return nil
}

// Run computes the free space of a layout and wraps it in a model.Result.
func (f *Finder) Run(layout model.Layout) (model.Result, error) {
	outer := layout.Outer
	rects, stats, err := f.FindWithStats(&outer, layout.Rects())
	if err != nil {
		return model.Result{}, err
	}
	return model.NewResult(rects, stats), nil
}
