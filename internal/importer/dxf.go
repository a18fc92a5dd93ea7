package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// endpointTolerance is the largest gap between two LINE or ARC endpoints
// that still counts as connected.
const endpointTolerance = 0.01

type point struct {
	X, Y float64
}

type polygon []point

// box returns the axis-aligned bounding box of the polygon in DXF
// coordinates (Y pointing up).
func (p polygon) box() (minPt, maxPt point) {
	minPt = point{X: math.Inf(1), Y: math.Inf(1)}
	maxPt = point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, q := range p {
		minPt.X = math.Min(minPt.X, q.X)
		minPt.Y = math.Min(minPt.Y, q.Y)
		maxPt.X = math.Max(maxPt.X, q.X)
		maxPt.Y = math.Max(maxPt.Y, q.Y)
	}
	return minPt, maxPt
}

// segment is a line between two points, used for chaining disconnected
// LINE and ARC entities into closed outlines.
type segment struct {
	start point
	end   point
}

// ImportDXF imports a layout from a DXF file. Each closed shape (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) contributes its bounding box.
// The box that contains all others becomes the outer rectangle; the rest
// become obstacles. DXF's Y axis points up, so boxes are flipped and shifted
// to put the outer rectangle's top-left corner at the origin.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []polygon
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			shape := lwPolylineToPolygon(e)
			if len(shape) >= 3 {
				shapes = append(shapes, shape)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			shapes = append(shapes, circleToPolygon(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: point{X: e.Start[0], Y: e.Start[1]},
				end:   point{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	shapes = append(shapes, chainSegments(segments, endpointTolerance)...)
	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	buildLayout(&result, shapes)
	return result
}

// buildLayout turns closed shapes into the outer rectangle and obstacles of
// result, with the outer's top-left corner at the origin.
func buildLayout(result *ImportResult, shapes []polygon) {
	rects := shapeRects(shapes)
	outerIdx := findOuter(rects)

	count := 0
	for i, r := range rects {
		if i == outerIdx {
			result.Outer = r
			result.HasOuter = true
			continue
		}
		if r.Area() == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%g x %g)", r.Width, r.Height))
			continue
		}
		count++
		result.Obstacles = append(result.Obstacles, model.Obstacle{
			ID:    newID(),
			Label: fmt.Sprintf("DXF Shape %d", count),
			Rect:  r,
		})
	}

	if result.HasOuter {
		normalizeOrigin(result, endpointTolerance)
	}
	finishLayout(result)
	normalizeOrigin(result, endpointTolerance)
}

// shapeRects converts the shapes into top-left based rectangles by flipping
// the Y axis.
func shapeRects(shapes []polygon) []geom.Rect {
	rects := make([]geom.Rect, 0, len(shapes))
	for _, s := range shapes {
		minPt, maxPt := s.box()
		rects = append(rects, geom.FromEdges(minPt.X, -maxPt.Y, maxPt.X, -minPt.Y))
	}
	return rects
}

// findOuter returns the index of the largest rectangle that contains every
// other one, or -1 if there is none. A single shape is never the outer.
func findOuter(rects []geom.Rect) int {
	if len(rects) < 2 {
		return -1
	}
	best := -1
	for i, r := range rects {
		if best >= 0 && r.Area() <= rects[best].Area() {
			continue
		}
		all := true
		for j, other := range rects {
			if i != j && !r.Contains(other, endpointTolerance) {
				all = false
				break
			}
		}
		if all {
			best = i
		}
	}
	return best
}

// normalizeOrigin shifts the layout so the outer rectangle starts at (0, 0).
// Obstacle edges within tol of an outer edge are moved onto it, so shapes
// drawn flush with the outline stay inside it after the shift.
func normalizeOrigin(result *ImportResult, tol float64) {
	dx, dy := -result.Outer.Left, -result.Outer.Top
	width, height := result.Outer.Width, result.Outer.Height
	result.Outer = geom.Rect{Width: width, Height: height}

	for i := range result.Obstacles {
		r := result.Obstacles[i].Rect
		result.Obstacles[i].Rect = fitEdges(
			snapEdge(r.Left+dx, width, tol),
			snapEdge(r.Top+dy, height, tol),
			snapEdge(r.Right()+dx, width, tol),
			snapEdge(r.Bottom()+dy, height, tol),
		)
	}
}

// snapEdge moves v onto 0 or limit when it lies within tol of either.
func snapEdge(v, limit, tol float64) float64 {
	switch {
	case math.Abs(v) <= tol:
		return 0
	case math.Abs(v-limit) <= tol:
		return limit
	}
	return v
}

// fitEdges builds the rect between the edges. When no size puts the far
// edge exactly on right or bottom, the near edge steps inward by an ulp at
// a time until one does.
func fitEdges(left, top, right, bottom float64) geom.Rect {
	r := geom.FromEdges(left, top, right, bottom)
	for i := 0; i < 4 && r.Right() != right && r.Left < right; i++ {
		r = geom.FromEdges(math.Nextafter(r.Left, right), r.Top, right, bottom)
	}
	for i := 0; i < 4 && r.Bottom() != bottom && r.Top < bottom; i++ {
		r = geom.FromEdges(r.Left, math.Nextafter(r.Top, bottom), right, bottom)
	}
	return r
}

// lwPolylineToPolygon converts a DXF LWPOLYLINE entity to a polygon.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToPolygon(lw *entity.LwPolyline) polygon {
	var shape polygon

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := point{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := point{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is added by its own iteration
			shape = append(shape, arcPts[:len(arcPts)-1]...)
		} else {
			shape = append(shape, current)
		}
	}

	return shape
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, numSegments int) polygon {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-9 {
		return polygon{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Center lies on the chord's perpendicular bisector
	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(polygon, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToPolygon approximates a circle as a regular polygon. The polygon's
// box matches the circle's box for any segment count divisible by four.
func circleToPolygon(c *entity.Circle, numSegments int) polygon {
	shape := make(polygon, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		shape[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return shape
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed polygons.
// tolerance is the maximum distance between endpoints to consider them connected.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) []polygon {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var shapes []polygon

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := polygon{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			shapes = append(shapes, chain[:len(chain)-1])
		}
	}

	// Largest first for a stable order
	sort.SliceStable(shapes, func(i, j int) bool {
		return polygonArea(shapes[i]) > polygonArea(shapes[j])
	})

	return shapes
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// polygonArea computes the absolute area of a polygon using the shoelace formula.
func polygonArea(p polygon) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X * p[j].Y
		area -= p[j].X * p[i].Y
	}
	return math.Abs(area) / 2
}
