package cache

import "github.com/matzehuels/tagcloud/pkg/cloud"

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies a layout computed from the tag set with the
	// given hash.
	LayoutKey(tagsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the layout with the
	// given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every input that changes a layout besides the tags.
type LayoutKeyOpts struct {
	Radius   float64      `json:"radius"`
	Seed     uint64       `json:"seed"`
	Fallback string       `json:"fallback"`
	Params   cloud.Params `json:"params"`
}

// ArtifactKeyOpts holds every render option that changes the output bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style"`
	Scale    float64 `json:"scale,omitempty"`
	Overlaps bool    `json:"overlaps,omitempty"`
	Animate  bool    `json:"animate,omitempty"`
	Padding  float64 `json:"padding,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(tagsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", tagsHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
