package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/gapfinder/internal/geom"
)

const maxReportedViolations = 20

// VerifyReport lists the ways a free-space result breaks its guarantees.
type VerifyReport struct {
	Violations []string
	Truncated  bool
}

func (r VerifyReport) OK() bool { return len(r.Violations) == 0 }

func (r *VerifyReport) add(format string, args ...any) {
	if len(r.Violations) >= maxReportedViolations {
		r.Truncated = true
		return
	}
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// Verify checks a result against outer and the obstacles: every result rect
// lies in outer, overlaps no obstacle and is not strictly contained in
// another result, and every point of outer is covered by an obstacle or a
// result rect. Coverage is checked cell by cell on the grid spanned by all
// edges, which is exact for axis-aligned input.
func Verify(outer geom.Rect, inner, result []geom.Rect, tol float64) VerifyReport {
	var report VerifyReport

	for i, r := range result {
		if !outer.Contains(r, tol) {
			report.add("result[%d] %v is not inside outer %v", i, r, outer)
		}
		for j, o := range inner {
			if r.Overlaps(o, tol) {
				report.add("result[%d] %v overlaps obstacle[%d] %v", i, r, j, o)
			}
		}
		for j, other := range result {
			if i != j && r != other && other.Contains(r, tol) {
				report.add("result[%d] %v is contained in result[%d] %v", i, r, j, other)
			}
		}
	}

	checkCoverage(&report, outer, inner, result)
	return report
}

func checkCoverage(report *VerifyReport, outer geom.Rect, inner, result []geom.Rect) {
	xs := []float64{outer.Left, outer.Right()}
	ys := []float64{outer.Top, outer.Bottom()}
	for _, group := range [][]geom.Rect{inner, result} {
		for _, r := range group {
			xs = append(xs, r.Left, r.Right())
			ys = append(ys, r.Top, r.Bottom())
		}
	}
	xs = gridLines(xs, outer.Span(geom.AxisX))
	ys = gridLines(ys, outer.Span(geom.AxisY))

	covers := func(r geom.Rect, x, y float64) bool {
		return x > r.Left && x < r.Right() && y > r.Top && y < r.Bottom()
	}

	for i := 0; i+1 < len(xs); i++ {
		for j := 0; j+1 < len(ys); j++ {
			cx := (xs[i] + xs[i+1]) / 2
			cy := (ys[j] + ys[j+1]) / 2
			covered := false
			for _, group := range [][]geom.Rect{inner, result} {
				for _, r := range group {
					if covers(r, cx, cy) {
						covered = true
						break
					}
				}
				if covered {
					break
				}
			}
			if !covered {
				report.add("free cell [%g,%g)x[%g,%g) is not covered by any result",
					xs[i], xs[i+1], ys[j], ys[j+1])
			}
		}
	}
}

// gridLines sorts and dedupes coordinates, keeping those within bounds.
func gridLines(coords []float64, bounds geom.Interval) []float64 {
	sort.Float64s(coords)
	out := coords[:0]
	for _, c := range coords {
		if c < bounds.Begin || c > bounds.End {
			continue
		}
		if len(out) == 0 || c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}
