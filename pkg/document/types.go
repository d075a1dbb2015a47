package document

import (
	"slices"
	"time"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Render styles.
const (
	StyleBubble = "bubble"
	StylePlain  = "plain"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON}

// Styles lists every supported render style.
var Styles = []string{StyleBubble, StylePlain}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool { return slices.Contains(Formats, f) }

// ValidStyle reports whether s is a supported render style.
func ValidStyle(s string) bool { return slices.Contains(Styles, s) }

// =============================================================================
// TagSet - Layout Input
// =============================================================================

// TagSet is the serialization format for layout input.
type TagSet struct {
	Tags []TagEntry `json:"tags" bson:"tags"`
}

// TagEntry is one weighted label.
type TagEntry struct {
	Label  string `json:"label" bson:"label"`
	Weight int    `json:"weight" bson:"weight"`
}

// FromTags converts engine tags into a TagSet.
func FromTags(tags []cloud.Tag) TagSet {
	entries := make([]TagEntry, len(tags))
	for i, t := range tags {
		entries[i] = TagEntry{Label: t.Label, Weight: t.Weight}
	}
	return TagSet{Tags: entries}
}

// CloudTags converts the set into engine input.
func (s TagSet) CloudTags() []cloud.Tag {
	tags := make([]cloud.Tag, len(s.Tags))
	for i, e := range s.Tags {
		tags[i] = cloud.Tag{Label: e.Label, Weight: e.Weight}
	}
	return tags
}

// =============================================================================
// Layout - Computed Tag Cloud
// =============================================================================

// Layout is the serialization format for a computed tag cloud.
type Layout struct {
	Radius     float64      `json:"radius" bson:"radius"`
	Seed       uint64       `json:"seed" bson:"seed"`
	Fallback   string       `json:"fallback,omitempty" bson:"fallback,omitempty"`
	Params     cloud.Params `json:"params" bson:"params"`
	Placements []Placement  `json:"placements" bson:"placements"`
	Stats      Stats        `json:"stats" bson:"stats"`
}

// Placement is one positioned tag.
type Placement struct {
	Label    string  `json:"label" bson:"label"`
	Weight   int     `json:"weight" bson:"weight"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Size     float64 `json:"size" bson:"size"`
	Radius   float64 `json:"radius" bson:"radius"`
	Depth    int     `json:"depth" bson:"depth"`
	Rank     int     `json:"rank" bson:"rank"`
	Attempts int     `json:"attempts,omitempty" bson:"attempts,omitempty"`
	Degraded bool    `json:"degraded,omitempty" bson:"degraded,omitempty"`
}

// Stats mirrors cloud.Stats with the elapsed time in milliseconds.
type Stats struct {
	Placed           int     `json:"placed" bson:"placed"`
	OverlappingPairs int     `json:"overlapping_pairs" bson:"overlapping_pairs"`
	OutOfBounds      int     `json:"out_of_bounds" bson:"out_of_bounds"`
	Degraded         int     `json:"degraded" bson:"degraded"`
	ElapsedMS        float64 `json:"elapsed_ms" bson:"elapsed_ms"`
}

// FromResult converts an engine result. seed and params are recorded so
// the layout can be reproduced.
func FromResult(res cloud.Result, seed uint64, params cloud.Params) Layout {
	ps := make([]Placement, len(res.Placements))
	for i, p := range res.Placements {
		ps[i] = Placement{
			Label:    p.Label,
			Weight:   p.Weight,
			X:        p.X,
			Y:        p.Y,
			Size:     p.Size,
			Radius:   p.Radius,
			Depth:    p.Depth,
			Rank:     p.Rank,
			Attempts: p.Attempts,
			Degraded: p.Degraded,
		}
	}
	return Layout{
		Radius:     res.Radius,
		Seed:       seed,
		Params:     params,
		Placements: ps,
		Stats: Stats{
			Placed:           res.Stats.Placed,
			OverlappingPairs: res.Stats.OverlappingPairs,
			OutOfBounds:      res.Stats.OutOfBounds,
			Degraded:         res.Stats.Degraded,
			ElapsedMS:        float64(res.Stats.Elapsed) / float64(time.Millisecond),
		},
	}
}

// Result converts the layout back into engine types.
func (l Layout) Result() cloud.Result {
	ps := make([]cloud.Placement, len(l.Placements))
	for i, p := range l.Placements {
		ps[i] = cloud.Placement{
			Label:    p.Label,
			Weight:   p.Weight,
			X:        p.X,
			Y:        p.Y,
			Size:     p.Size,
			Radius:   p.Radius,
			Depth:    p.Depth,
			Rank:     p.Rank,
			Attempts: p.Attempts,
			Degraded: p.Degraded,
		}
	}
	return cloud.Result{
		Radius:     l.Radius,
		Placements: ps,
		Stats: cloud.Stats{
			Placed:           l.Stats.Placed,
			OverlappingPairs: l.Stats.OverlappingPairs,
			OutOfBounds:      l.Stats.OutOfBounds,
			Degraded:         l.Stats.Degraded,
			Elapsed:          time.Duration(l.Stats.ElapsedMS * float64(time.Millisecond)),
		},
	}
}

// Tags returns the tag set the layout was computed from, in placement
// order.
func (l Layout) Tags() TagSet {
	entries := make([]TagEntry, len(l.Placements))
	for i, p := range l.Placements {
		entries[i] = TagEntry{Label: p.Label, Weight: p.Weight}
	}
	return TagSet{Tags: entries}
}
