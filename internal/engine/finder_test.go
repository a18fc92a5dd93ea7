package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

func defaultTestSettings() model.Settings {
	return model.DefaultSettings()
}

func rawStripSettings() model.Settings {
	s := model.DefaultSettings()
	s.ExpandStrips = false
	return s
}

var sortRects = cmpopts.SortSlices(func(a, b geom.Rect) bool { return a.Less(b) })

func rectPtr(l, t, w, h float64) *geom.Rect {
	r := geom.MustRect(l, t, w, h)
	return &r
}

func TestFind_EmptyInputReturnsOuter(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)

	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{})
	require.NoError(t, err)
	assert.Equal(t, []geom.Rect{*outer}, got)

	got, err = New(defaultTestSettings()).Find(outer, nil)
	require.NoError(t, err)
	assert.Equal(t, []geom.Rect{*outer}, got, "nil inner is an empty collection")
}

func TestFind_SingleCenteredObstacle(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(4, 4, 2, 2)}

	want := []geom.Rect{
		geom.MustRect(0, 0, 10, 4),
		geom.MustRect(0, 6, 10, 4),
		geom.MustRect(0, 0, 4, 10),
		geom.MustRect(6, 0, 4, 10),
	}

	for name, settings := range map[string]model.Settings{
		"expanded": defaultTestSettings(),
		"raw":      rawStripSettings(),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := New(settings).Find(outer, inner)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got, sortRects); diff != "" {
				t.Errorf("free rects mismatch (-want +got):\n%s", diff)
			}
			for _, r := range got {
				assert.False(t, r.Overlaps(inner[0], 0), "%v overlaps the obstacle", r)
			}
			assert.True(t, Verify(*outer, inner, got, 0).OK())
		})
	}
}

func TestFind_ExpandStripsControlsOutputShape(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(0, 0, 2, 2), geom.MustRect(8, 8, 2, 2)}

	expanded, err := New(defaultTestSettings()).Find(outer, inner)
	require.NoError(t, err)
	want := []geom.Rect{
		geom.MustRect(2, 0, 8, 8),
		geom.MustRect(0, 2, 8, 8),
		geom.MustRect(0, 2, 10, 6),
		geom.MustRect(2, 0, 6, 10),
	}
	if diff := cmp.Diff(want, expanded, sortRects); diff != "" {
		t.Errorf("expanded free rects mismatch (-want +got):\n%s", diff)
	}

	raw, err := New(rawStripSettings()).Find(outer, inner)
	require.NoError(t, err)
	assert.Contains(t, raw, geom.MustRect(2, 0, 8, 2), "raw strip candidate kept as is")
	assert.NotContains(t, expanded, geom.MustRect(2, 0, 8, 2))
	assert.True(t, Verify(*outer, inner, raw, 0).OK())
}

func TestFind_InvalidNesting(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(8, 8, 5, 5)}

	got, err := New(defaultTestSettings()).Find(outer, inner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidNesting))
	assert.Nil(t, got, "must not silently clip")
}

func TestFind_NilOuter(t *testing.T) {
	_, err := New(defaultTestSettings()).Find(nil, []geom.Rect{geom.MustRect(0, 0, 1, 1)})
	assert.ErrorIs(t, err, ErrNilArgument)
}

func TestFind_InvalidRectFromLiteral(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	_, err := New(defaultTestSettings()).Find(outer, []geom.Rect{{Left: 1, Top: 1, Width: -2, Height: 2}})
	assert.ErrorIs(t, err, geom.ErrNegativeSize)

	_, err = New(defaultTestSettings()).Find(&geom.Rect{Width: -1, Height: 1}, nil)
	assert.ErrorIs(t, err, geom.ErrNegativeSize)
}

func TestFind_ObstacleFillsOuter(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{*outer})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_ObstacleTouchingBoundary(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{geom.MustRect(0, 0, 5, 10)})
	require.NoError(t, err)
	assert.Equal(t, []geom.Rect{geom.MustRect(5, 0, 5, 10)}, got)
}

func TestFind_CornerObstacle(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{geom.MustRect(0, 0, 5, 5)})
	require.NoError(t, err)

	want := []geom.Rect{
		geom.MustRect(5, 0, 5, 10),
		geom.MustRect(0, 5, 10, 5),
	}
	if diff := cmp.Diff(want, got, sortRects); diff != "" {
		t.Errorf("free rects mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_SharedEdgeCoordinates(t *testing.T) {
	// Both obstacles share their top and bottom coordinates, so several
	// edges land on the same event point.
	outer := rectPtr(0, 0, 12, 8)
	inner := []geom.Rect{
		geom.MustRect(1, 2, 3, 3),
		geom.MustRect(6, 2, 3, 3),
		geom.MustRect(4, 5, 2, 3),
	}

	for _, settings := range []model.Settings{defaultTestSettings(), rawStripSettings()} {
		got, err := New(settings).Find(outer, inner)
		require.NoError(t, err)
		report := Verify(*outer, inner, got, 0)
		assert.True(t, report.OK(), "violations: %v", report.Violations)
	}
}

func TestFind_AdjacentObstacles(t *testing.T) {
	// Two obstacles touching along an edge form one solid block.
	outer := rectPtr(0, 0, 10, 10)
	inner := []geom.Rect{
		geom.MustRect(2, 2, 3, 6),
		geom.MustRect(5, 2, 3, 6),
	}

	got, err := New(defaultTestSettings()).Find(outer, inner)
	require.NoError(t, err)
	want := []geom.Rect{
		geom.MustRect(0, 0, 10, 2),
		geom.MustRect(0, 8, 10, 2),
		geom.MustRect(0, 0, 2, 10),
		geom.MustRect(8, 0, 2, 10),
	}
	if diff := cmp.Diff(want, got, sortRects); diff != "" {
		t.Errorf("free rects mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_ZeroAreaObstacleIgnored(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{geom.MustRect(3, 3, 0, 4)})
	require.NoError(t, err)
	assert.Equal(t, []geom.Rect{*outer}, got)
}

func TestFind_Idempotent(t *testing.T) {
	outer := rectPtr(0, 0, 40, 30)
	inner := randomObstacles(rand.New(rand.NewSource(7)), *outer, 12)

	f := New(defaultTestSettings())
	first, err := f.Find(outer, inner)
	require.NoError(t, err)
	second, err := f.Find(outer, inner)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, sortRects); diff != "" {
		t.Errorf("repeated Find differs (-first +second):\n%s", diff)
	}
}

func TestFind_DoesNotMutateInputs(t *testing.T) {
	outer := rectPtr(0, 0, 20, 20)
	inner := []geom.Rect{geom.MustRect(1, 1, 4, 4), geom.MustRect(10, 10, 5, 3)}
	outerCopy := *outer
	innerCopy := append([]geom.Rect(nil), inner...)

	_, err := New(defaultTestSettings()).Find(outer, inner)
	require.NoError(t, err)
	assert.Equal(t, outerCopy, *outer)
	assert.Equal(t, innerCopy, inner)
}

func TestFind_RandomLayoutsSatisfyGuarantees(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	outer := geom.MustRect(0, 0, 24, 18)

	for i := 0; i < 40; i++ {
		inner := randomObstacles(rng, outer, 1+rng.Intn(10))
		for _, settings := range []model.Settings{defaultTestSettings(), rawStripSettings()} {
			got, err := New(settings).Find(&outer, inner)
			require.NoError(t, err)
			report := Verify(outer, inner, got, 0)
			require.True(t, report.OK(), "layout %d (expand=%v) %v: %v",
				i, settings.ExpandStrips, inner, report.Violations)
		}
	}
}

func TestFind_ExpandedResultsAreMaximalEmptyRectangles(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	outer := geom.MustRect(0, 0, 30, 20)

	for i := 0; i < 20; i++ {
		inner := randomObstacles(rng, outer, 1+rng.Intn(8))
		got, err := New(defaultTestSettings()).Find(&outer, inner)
		require.NoError(t, err)
		for _, r := range got {
			assert.True(t, blockedOnAllSides(r, outer, inner), "%v can still grow (obstacles %v)", r, inner)
		}
	}
}

func TestFind_ToleranceAcceptsNearlyNestedObstacle(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(5, 5, 5.0000000001, 5)}

	_, err := New(defaultTestSettings()).Find(outer, inner)
	assert.ErrorIs(t, err, ErrInvalidNesting, "exact comparison by default")

	s := defaultTestSettings()
	s.Tolerance = 1e-6
	got, err := New(s).Find(outer, inner)
	require.NoError(t, err)
	want := []geom.Rect{
		geom.MustRect(0, 0, 10, 5),
		geom.MustRect(0, 0, 5, 10),
	}
	if diff := cmp.Diff(want, got, sortRects); diff != "" {
		t.Errorf("free rects mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_ResultsSorted(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	got, err := New(defaultTestSettings()).Find(outer, []geom.Rect{geom.MustRect(4, 4, 2, 2)})
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Less(got[i]), "results should be sorted")
	}
}

func TestFindWithStats(t *testing.T) {
	outer := rectPtr(0, 0, 10, 10)
	_, stats, err := New(rawStripSettings()).FindWithStats(outer, []geom.Rect{geom.MustRect(4, 4, 2, 2)})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.HorizontalCandidates)
	assert.Equal(t, 4, stats.VerticalCandidates)
	assert.Equal(t, 8, stats.Distinct)
	assert.Equal(t, 4, stats.Maximal)
}

func TestRun_BuildsResultWithIDs(t *testing.T) {
	o, err := model.NewObstacle("Node", 4, 4, 2, 2)
	require.NoError(t, err)
	layout := model.Layout{Outer: geom.MustRect(0, 0, 10, 10), Obstacles: []model.Obstacle{o}}

	res, err := New(defaultTestSettings()).Run(layout)
	require.NoError(t, err)
	require.Len(t, res.Free, 4)
	for _, f := range res.Free {
		assert.NotEmpty(t, f.ID)
	}
	assert.Equal(t, 96.0, res.FreeArea())
	assert.Equal(t, 4, res.Stats.Maximal)
}

func TestRun_PropagatesValidationError(t *testing.T) {
	o, err := model.NewObstacle("Outside", 8, 8, 5, 5)
	require.NoError(t, err)
	layout := model.Layout{Outer: geom.MustRect(0, 0, 10, 10), Obstacles: []model.Obstacle{o}}

	_, err = New(defaultTestSettings()).Run(layout)
	assert.ErrorIs(t, err, ErrInvalidNesting)
}

// randomObstacles places up to n non-overlapping integer rectangles inside
// outer.
func randomObstacles(rng *rand.Rand, outer geom.Rect, n int) []geom.Rect {
	var rects []geom.Rect
	for attempts := 0; len(rects) < n && attempts < n*20; attempts++ {
		w := float64(1 + rng.Intn(6))
		h := float64(1 + rng.Intn(6))
		l := outer.Left + float64(rng.Intn(int(outer.Width-w)+1))
		t := outer.Top + float64(rng.Intn(int(outer.Height-h)+1))
		r := geom.MustRect(l, t, w, h)

		ok := true
		for _, other := range rects {
			if r.Overlaps(other, 0) {
				ok = false
				break
			}
		}
		if ok {
			rects = append(rects, r)
		}
	}
	return rects
}

// blockedOnAllSides reports whether r cannot grow in any direction without
// leaving outer or running into an obstacle.
func blockedOnAllSides(r, outer geom.Rect, inner []geom.Rect) bool {
	const step = 0.5
	grown := []geom.Rect{
		{Left: r.Left - step, Top: r.Top, Width: r.Width + step, Height: r.Height},
		{Left: r.Left, Top: r.Top, Width: r.Width + step, Height: r.Height},
		{Left: r.Left, Top: r.Top - step, Width: r.Width, Height: r.Height + step},
		{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height + step},
	}
	for _, g := range grown {
		if !outer.Contains(g, 0) {
			continue
		}
		blocked := false
		for _, o := range inner {
			if g.Overlaps(o, 0) {
				blocked = true
				break
			}
		}
		if !blocked {
			return false
		}
	}
	return true
}
