// Package pipeline provides the load → layout → render pipeline for
// tagcloud.
//
// The CLI and the HTTP service both run through a [Runner], so caching,
// defaults and observability hooks behave the same everywhere.
//
// # Stages
//
//  1. Load: count tags from a posts directory or read a tags JSON file
//  2. Layout: compute placements with the cloud engine
//  3. Render: produce SVG, PNG or JSON artifacts
//
// Each stage can run on its own or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	tags, err := runner.Load(ctx, "content/posts")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, tags, pipeline.Options{
//	    Radius:  300,
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// [Bench] runs the diagnostic harness over synthetic tag sets.
package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/tagcloud/pkg/cache"
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/errors"
	"github.com/matzehuels/tagcloud/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultRadius is the bounding radius in layout units.
	DefaultRadius = 300.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultPadding is the space between the outermost tag and the canvas
	// edge.
	DefaultPadding = 10.0

	// DefaultStyle is the default render style.
	DefaultStyle = document.StyleBubble
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Radius   float64      `json:"radius,omitempty"`
	Seed     uint64       `json:"seed,omitempty"`
	Fallback string       `json:"fallback,omitempty"`
	Params   cloud.Params `json:"params"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Padding  *float64 `json:"padding,omitempty"`
	Overlaps bool     `json:"overlaps,omitempty"`
	Animate  bool     `json:"animate,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// TagsHash is the content hash of the input tag set.
	TagsHash string

	// Layout is the computed layout.
	Layout document.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TagCount   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !document.ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !document.ValidStyle(style) {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: bubble, plain)", style)
	}
	return nil
}

// ValidateRadius checks that the bounding radius is a positive finite number.
func ValidateRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return errors.New(errors.ErrCodeInvalidArgument, "radius must be a positive finite number, got %v", radius)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks and defaults every stage. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Fallback == "" {
		o.Fallback = string(cloud.FallbackAccept)
	}
	if o.Params == (cloud.Params{}) {
		o.Params = cloud.DefaultParams()
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateRadius(o.Radius); err != nil {
		return err
	}
	if _, err := cloud.ParseFallback(o.Fallback); err != nil {
		return err
	}
	return o.Params.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{document.FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Padding == nil {
		p := DefaultPadding
		o.Padding = &p
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if !(o.Scale > 0) || math.IsInf(o.Scale, 1) {
		return errors.New(errors.ErrCodeInvalidArgument, "scale must be a positive finite number, got %v", o.Scale)
	}
	if *o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "padding must not be negative, got %v", *o.Padding)
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Radius:   o.Radius,
		Seed:     o.Seed,
		Fallback: o.Fallback,
		Params:   o.Params,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect a format are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if format == document.FormatJSON {
		return cache.ArtifactKeyOpts{Format: format}
	}
	k := cache.ArtifactKeyOpts{
		Format:   format,
		Style:    o.Style,
		Overlaps: o.Overlaps,
		Padding:  o.padding(),
	}
	switch format {
	case document.FormatSVG:
		k.Animate = o.Animate
	case document.FormatPNG:
		k.Scale = o.Scale
	}
	return k
}

func (o *Options) padding() float64 {
	if o.Padding == nil {
		return DefaultPadding
	}
	return *o.Padding
}

// svgOptions translates render options for the sink package.
func (o *Options) svgOptions() []sink.SVGOption {
	opts := []sink.SVGOption{
		sink.WithStyle(o.Style),
		sink.WithPadding(o.padding()),
	}
	if o.Overlaps {
		opts = append(opts, sink.WithOverlaps())
	}
	return opts
}

func (o *Options) String() string {
	return fmt.Sprintf("radius=%g seed=%d fallback=%s formats=%v style=%s", o.Radius, o.Seed, o.Fallback, o.Formats, o.Style)
}
