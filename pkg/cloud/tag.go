package cloud

import "time"

// Tag is a weighted label to place. Weight is the number of posts carrying
// the tag and must be at least 1.
type Tag struct {
	Label  string
	Weight int
}

// Placement is the computed position of a single tag.
type Placement struct {
	Label  string
	Weight int

	// X and Y are offsets from the layout centre in radius units.
	X, Y float64

	// Size is the unitless visual size from VisualSize. Renderers multiply
	// it by Params.BaseSize to get a font size.
	Size float64

	// Radius is the bounding-circle radius used for collision checks.
	Radius float64

	// Depth orders tags for stacking; higher values are drawn on top.
	Depth int

	// Rank is the 0-based processing order. Callers use it to stagger
	// appearance animations.
	Rank int

	// Attempts is the number of candidate positions tried.
	Attempts int

	// Degraded is set when the retry budget ran out and the fallback
	// policy picked the position.
	Degraded bool
}

// Distance returns the distance from the layout centre.
func (p Placement) Distance() float64 {
	return hypot(p.X, p.Y)
}

// Stats summarises layout quality.
type Stats struct {
	Placed           int           `json:"placed"`
	OverlappingPairs int           `json:"overlapping_pairs"`
	OutOfBounds      int           `json:"out_of_bounds"`
	Degraded         int           `json:"degraded"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Clean reports whether the layout has no overlaps and no boundary violations.
func (s Stats) Clean() bool {
	return s.OverlappingPairs == 0 && s.OutOfBounds == 0
}

// Result is the output of Compute.
type Result struct {
	// Radius is the bounding radius the layout was computed for.
	Radius float64

	// Placements holds one entry per input tag in placement order.
	Placements []Placement

	Stats Stats
}

// ByLabel indexes placements by label. When labels repeat, the first
// (heaviest) placement wins.
func (r Result) ByLabel() map[string]Placement {
	m := make(map[string]Placement, len(r.Placements))
	for _, p := range r.Placements {
		if _, ok := m[p.Label]; !ok {
			m[p.Label] = p
		}
	}
	return m
}

// Lookup returns the first placement with the given label.
func (r Result) Lookup(label string) (Placement, bool) {
	for _, p := range r.Placements {
		if p.Label == label {
			return p, true
		}
	}
	return Placement{}, false
}
