package engine

import (
	"math"
	"sort"

	"github.com/zyedidia/generic/interval"

	"github.com/piwi3910/gapfinder/internal/geom"
)

// obstacleIndex answers "which obstacles overlap this span" along one axis.
// The interval tree needs unique start positions, so obstacles starting at
// the same coordinate share one bucket whose high end is the largest of
// theirs. Buckets are filtered exactly on query.
type obstacleIndex struct {
	tree  *interval.Tree[float64, []int]
	rects []geom.Rect
	axis  geom.Axis
}

func newObstacleIndex(rects []geom.Rect, axis geom.Axis) *obstacleIndex {
	ix := &obstacleIndex{
		tree:  interval.New[float64, []int](),
		rects: rects,
		axis:  axis,
	}
	for i := range rects {
		ix.insert(i)
	}
	return ix
}

func (ix *obstacleIndex) insert(i int) {
	span := ix.rects[i].Span(ix.axis)
	ids := []int{i}
	high := span.End
	if bucket, ok := ix.tree.Get(span.Begin); ok {
		ids = append(append(make([]int, 0, len(bucket.Val)+1), bucket.Val...), i)
		high = math.Max(high, bucket.High)
	}
	ix.tree.Put(span.Begin, high, ids)
}

// overlapping returns the indices of obstacles sharing more than tol with
// span, in ascending order.
func (ix *obstacleIndex) overlapping(span geom.Interval, tol float64) []int {
	var out []int
	for _, bucket := range ix.tree.Overlaps(span.Begin, span.End) {
		for _, i := range bucket.Val {
			if ix.rects[i].Span(ix.axis).Overlaps(span, tol) {
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)
	return out
}
