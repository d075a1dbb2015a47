package sink

import (
	"cmp"
	"image/color"
	"math"
	"slices"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
)

const (
	defaultPadding  = 10.0
	defaultBaseSize = 16.0
	minOpacity      = 0.12
	maxOpacity      = 0.35
)

var (
	inkColor      = color.RGBA{0x22, 0x22, 0x2a, 0xff}
	ringColor     = color.RGBA{0xc8, 0xc8, 0xd0, 0xff}
	overlapColor  = color.RGBA{0xd6, 0x28, 0x28, 0xff}
	backgroundRGB = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// palette cycles by rank so neighbouring tags differ.
var palette = []color.RGBA{
	{0x4e, 0x79, 0xa7, 0xff},
	{0xf2, 0x8e, 0x2b, 0xff},
	{0xe1, 0x57, 0x59, 0xff},
	{0x76, 0xb7, 0xb2, 0xff},
	{0x59, 0xa1, 0x4f, 0xff},
	{0xed, 0xc9, 0x48, 0xff},
	{0xb0, 0x7a, 0xa1, 0xff},
	{0x9c, 0x75, 0x5f, 0xff},
}

// scene is a render-ready view of a layout shared by the SVG and PNG sinks.
type scene struct {
	boundary float64
	extent   float64 // half the side of the square canvas
	items    []item  // ascending depth
}

type item struct {
	label    string
	x, y     float64
	r        float64
	fontSize float64
	fill     color.RGBA
	opacity  float64
	overlap  bool
	rank     int
	depth    int
	degraded bool
}

func buildScene(l document.Layout, r svgRenderer) scene {
	base := l.Params.BaseSize
	if !(base > 0) {
		base = defaultBaseSize
	}

	var flagged map[string]bool
	if r.overlaps {
		res := l.Result()
		flagged = make(map[string]bool)
		for _, label := range cloud.OverlappingLabels(res.Placements, l.Params.Margin) {
			flagged[label] = true
		}
	}

	maxWeight := 1
	for _, p := range l.Placements {
		maxWeight = max(maxWeight, p.Weight)
	}

	s := scene{boundary: l.Radius, extent: l.Radius}
	s.items = make([]item, 0, len(l.Placements))
	for _, p := range l.Placements {
		s.extent = max(s.extent, math.Hypot(p.X, p.Y)+p.Radius)
		s.items = append(s.items, item{
			label:    p.Label,
			x:        p.X,
			y:        p.Y,
			r:        p.Radius,
			fontSize: p.Size * base,
			fill:     palette[p.Rank%len(palette)],
			opacity:  minOpacity + (maxOpacity-minOpacity)*float64(p.Weight)/float64(maxWeight),
			overlap:  flagged[p.Label],
			rank:     p.Rank,
			depth:    p.Depth,
			degraded: p.Degraded,
		})
	}
	s.extent += r.padding

	slices.SortStableFunc(s.items, func(a, b item) int {
		return cmp.Compare(a.depth, b.depth)
	})
	return s
}
