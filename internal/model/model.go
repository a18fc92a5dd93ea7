package model

import (
	"sort"

	"github.com/google/uuid"

	"github.com/piwi3910/gapfinder/internal/geom"
)

// Obstacle is an occupied rectangle inside the layout, e.g. the bounding box
// of a node that is already placed.
type Obstacle struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Rect  geom.Rect `json:"rect"`
}

func NewObstacle(label string, left, top, w, h float64) (Obstacle, error) {
	r, err := geom.NewRect(left, top, w, h)
	if err != nil {
		return Obstacle{}, err
	}
	return Obstacle{
		ID:    uuid.New().String()[:8],
		Label: label,
		Rect:  r,
	}, nil
}

// Layout is the outer bounding rectangle plus the obstacles nested in it.
type Layout struct {
	Outer     geom.Rect  `json:"outer"`
	Obstacles []Obstacle `json:"obstacles"`
}

// Rects returns the obstacle rectangles in layout order.
func (l Layout) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(l.Obstacles))
	for i, o := range l.Obstacles {
		rects[i] = o.Rect
	}
	return rects
}

// ObstacleArea returns the summed obstacle area. Obstacles are assumed not
// to overlap each other.
func (l Layout) ObstacleArea() float64 {
	var total float64
	for _, o := range l.Obstacles {
		total += o.Rect.Area()
	}
	return total
}

// Occupancy returns the obstacle area as a percentage of the outer area.
func (l Layout) Occupancy() float64 {
	ta := l.Outer.Area()
	if ta == 0 {
		return 0
	}
	return (l.ObstacleArea() / ta) * 100.0
}

// FreeSpace is one maximal empty rectangle of a result.
type FreeSpace struct {
	ID   string    `json:"id"`
	Rect geom.Rect `json:"rect"`
}

// PassStats records how many candidates each sweep pass produced.
type PassStats struct {
	HorizontalCandidates int `json:"horizontal_candidates"` // Sweep along Y
	VerticalCandidates   int `json:"vertical_candidates"`   // Sweep along X
	Distinct             int `json:"distinct"`
	Maximal              int `json:"maximal"`
}

// Result holds the free space found for a layout.
type Result struct {
	Free  []FreeSpace `json:"free"`
	Stats PassStats   `json:"stats"`
}

func NewResult(rects []geom.Rect, stats PassStats) Result {
	free := make([]FreeSpace, len(rects))
	for i, r := range rects {
		free[i] = FreeSpace{ID: uuid.New().String()[:8], Rect: r}
	}
	return Result{Free: free, Stats: stats}
}

// Rects returns the free rectangles in result order.
func (r Result) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(r.Free))
	for i, f := range r.Free {
		rects[i] = f.Rect
	}
	return rects
}

// Largest returns the free space with the largest area.
func (r Result) Largest() (FreeSpace, bool) {
	if len(r.Free) == 0 {
		return FreeSpace{}, false
	}
	best := r.Free[0]
	for _, f := range r.Free[1:] {
		if f.Rect.Area() > best.Rect.Area() {
			best = f
		}
	}
	return best, true
}

// FreeArea returns the area of the union of all free rectangles. Free
// rectangles overlap each other, so plain summing would over-count.
func (r Result) FreeArea() float64 {
	return UnionArea(r.Rects())
}

// UnionArea computes the area covered by a set of possibly overlapping
// rectangles on the grid spanned by their edges.
func UnionArea(rects []geom.Rect) float64 {
	if len(rects) == 0 {
		return 0
	}
	xs := make([]float64, 0, 2*len(rects))
	ys := make([]float64, 0, 2*len(rects))
	for _, r := range rects {
		xs = append(xs, r.Left, r.Right())
		ys = append(ys, r.Top, r.Bottom())
	}
	xs = sortedUnique(xs)
	ys = sortedUnique(ys)

	var total float64
	for i := 0; i+1 < len(xs); i++ {
		for j := 0; j+1 < len(ys); j++ {
			cx := (xs[i] + xs[i+1]) / 2
			cy := (ys[j] + ys[j+1]) / 2
			for _, r := range rects {
				if cx > r.Left && cx < r.Right() && cy > r.Top && cy < r.Bottom() {
					total += (xs[i+1] - xs[i]) * (ys[j+1] - ys[j])
					break
				}
			}
		}
	}
	return total
}

func sortedUnique(vals []float64) []float64 {
	sort.Float64s(vals)
	out := vals[:0]
	for i, v := range vals {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Units is the length unit a layout is expressed in. It only affects labels.
type Units string

const (
	UnitsPixels      Units = "px"
	UnitsMillimeters Units = "mm"
	UnitsWorld       Units = "units" // Scene units of the code-city
)

// Settings holds the finder and placement configuration of a project.
type Settings struct {
	// Finder
	Tolerance    float64 `json:"tolerance"`     // Float comparison slack; 0 = exact
	ExpandStrips bool    `json:"expand_strips"` // Grow strip candidates into true MERs

	// Usable free space
	MinWidth  float64 `json:"min_width"`  // Narrower free rects are hidden from reports
	MinHeight float64 `json:"min_height"` // Shorter free rects are hidden from reports

	// Placement
	AllowRotation bool `json:"allow_rotation"` // Try w x h and h x w

	Units Units `json:"units"`
}

func DefaultSettings() Settings {
	return Settings{
		Tolerance:     0,
		ExpandStrips:  true,
		MinWidth:      0,
		MinHeight:     0,
		AllowRotation: true,
		Units:         UnitsWorld,
	}
}

// Project ties everything together for save/load.
type Project struct {
	Name     string   `json:"name"`
	Layout   Layout   `json:"layout"`
	Settings Settings `json:"settings"`
	Result   *Result  `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name: "Untitled",
		Layout: Layout{
			Outer:     geom.MustRect(0, 0, 1000, 1000),
			Obstacles: []Obstacle{},
		},
		Settings: DefaultSettings(),
	}
}
