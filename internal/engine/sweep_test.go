package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// ─── Obstacle Index Tests ───────────────────────────────────

func TestObstacleIndex_SharedStartCoordinates(t *testing.T) {
	rects := []geom.Rect{
		geom.MustRect(0, 0, 2, 2),
		geom.MustRect(0, 5, 6, 2),
		geom.MustRect(0, 9, 1, 1),
		geom.MustRect(7, 0, 2, 2),
	}
	ix := newObstacleIndex(rects, geom.AxisX)

	assert.Equal(t, []int{0, 1, 2}, ix.overlapping(geom.Interval{Begin: 0, End: 0.5}, 0))
	assert.Equal(t, []int{1}, ix.overlapping(geom.Interval{Begin: 3, End: 5}, 0),
		"bucket high end is the widest member but members are filtered exactly")
	assert.Equal(t, []int{1, 3}, ix.overlapping(geom.Interval{Begin: 5, End: 8}, 0))
	assert.Empty(t, ix.overlapping(geom.Interval{Begin: 9, End: 12}, 0))
}

func TestObstacleIndex_TouchingIsNotOverlapping(t *testing.T) {
	rects := []geom.Rect{geom.MustRect(2, 0, 3, 1)}
	ix := newObstacleIndex(rects, geom.AxisX)

	assert.Empty(t, ix.overlapping(geom.Interval{Begin: 0, End: 2}, 0))
	assert.Empty(t, ix.overlapping(geom.Interval{Begin: 5, End: 7}, 0))
	assert.Equal(t, []int{0}, ix.overlapping(geom.Interval{Begin: 1, End: 3}, 0))
}

func TestObstacleIndex_Empty(t *testing.T) {
	ix := newObstacleIndex(nil, geom.AxisY)
	assert.Empty(t, ix.overlapping(geom.Interval{Begin: 0, End: 10}, 0))
}

// ─── Event Point Tests ──────────────────────────────────────

func TestEventPoints_SortedAndDistinct(t *testing.T) {
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{
		geom.MustRect(4, 1, 2, 2),
		geom.MustRect(1, 1, 3, 2),
		geom.MustRect(6, 6, 4, 4),
	}

	assert.Equal(t, []float64{0, 1, 4, 6, 10}, eventPoints(outer, inner, geom.AxisX, 0))
	assert.Equal(t, []float64{0, 1, 3, 6, 10}, eventPoints(outer, inner, geom.AxisY, 0))
}

func TestEventPoints_MergeWithinTolerance(t *testing.T) {
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{
		geom.MustRect(2, 0, 2, 1),
		geom.MustRect(4.0005, 0, 2, 1),
		geom.MustRect(7, 0, 2.9995, 1),
	}

	got := eventPoints(outer, inner, geom.AxisX, 1e-3)
	assert.Equal(t, []float64{0, 2, 4, inner[1].Right(), 7, 10}, got)
}

func TestEventPoints_OuterEndSwallowed(t *testing.T) {
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(0, 6, 3, 3.9995)}
	const tol = 1e-3

	events := eventPoints(outer, inner, geom.AxisY, tol)
	assert.Equal(t, []float64{0, 6, outer.Bottom()}, events)

	strips := buildStrips(outer, inner, geom.AxisY, tol)
	require.Len(t, strips, 2)
	last := strips[len(strips)-1]
	assert.Equal(t, geom.Interval{Begin: 6, End: outer.Bottom()}, last.span)
	assert.Equal(t, []int{0}, last.active)

	settings := model.DefaultSettings()
	settings.Tolerance = tol
	free, err := New(settings).Find(&outer, inner)
	require.NoError(t, err)
	assert.Equal(t, []geom.Rect{
		geom.MustRect(0, 0, 10, 6),
		geom.MustRect(3, 0, 7, 10),
	}, free)
	for _, r := range free {
		assert.True(t, outer.Contains(r, 0), "%v escapes the outer", r)
	}
}

func TestBuildStrips_ActiveSets(t *testing.T) {
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{
		geom.MustRect(1, 2, 2, 4),
		geom.MustRect(5, 4, 2, 4),
	}

	strips := buildStrips(outer, inner, geom.AxisY, 0)
	require.Len(t, strips, 5)

	wantSpans := []geom.Interval{
		{Begin: 0, End: 2}, {Begin: 2, End: 4}, {Begin: 4, End: 6}, {Begin: 6, End: 8}, {Begin: 8, End: 10},
	}
	wantActive := [][]int{nil, {0}, {0, 1}, {1}, nil}
	for i, s := range strips {
		assert.Equal(t, wantSpans[i], s.span, "strip %d", i)
		assert.Equal(t, wantActive[i], s.active, "strip %d", i)
	}
}

func TestSweep_RawStripsOnePerGap(t *testing.T) {
	f := New(rawStripSettings())
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(4, 4, 2, 2)}

	got := f.sweep(outer, inner, geom.AxisY)
	assert.Equal(t, []geom.Rect{
		geom.MustRect(0, 0, 10, 4),
		geom.MustRect(0, 4, 4, 2),
		geom.MustRect(6, 4, 4, 2),
		geom.MustRect(0, 6, 10, 4),
	}, got)
}

func TestSweep_ExpandedGrowsAcrossStrips(t *testing.T) {
	f := New(defaultTestSettings())
	outer := geom.MustRect(0, 0, 10, 10)
	inner := []geom.Rect{geom.MustRect(4, 4, 2, 2)}

	got := f.sweep(outer, inner, geom.AxisY)
	assert.Equal(t, []geom.Rect{
		geom.MustRect(0, 0, 10, 4),
		geom.MustRect(0, 0, 4, 10),
		geom.MustRect(6, 0, 4, 10),
		geom.MustRect(0, 6, 10, 4),
	}, got)
}

func TestSweep_DegenerateOuter(t *testing.T) {
	f := New(defaultTestSettings())
	assert.Empty(t, f.sweep(geom.MustRect(0, 0, 10, 0), nil, geom.AxisY))
}

// ─── Filter Tests ───────────────────────────────────────────

func TestDedupe_KeepsFirstSeenOrder(t *testing.T) {
	a := geom.MustRect(0, 0, 1, 1)
	b := geom.MustRect(1, 1, 2, 2)
	assert.Equal(t, []geom.Rect{a, b}, dedupe([]geom.Rect{a, b, a, b, a}))
}

func TestPruneContained(t *testing.T) {
	big := geom.MustRect(0, 0, 10, 4)
	small := geom.MustRect(0, 0, 4, 4)
	other := geom.MustRect(0, 0, 4, 10)

	got := pruneContained([]geom.Rect{small, big, other}, 0)
	assert.Equal(t, []geom.Rect{big, other}, got)
}

func TestPruneContained_NearDuplicatesKeepOne(t *testing.T) {
	a := geom.MustRect(0, 0, 10, 4)
	b := geom.MustRect(0, 0, 10, 4.0000001)

	assert.Equal(t, []geom.Rect{b}, pruneContained([]geom.Rect{a, b}, 0))
	assert.Equal(t, []geom.Rect{a}, pruneContained([]geom.Rect{a, b}, 1e-3))
	assert.Equal(t, []geom.Rect{b}, pruneContained([]geom.Rect{b, a}, 1e-3))
}
