// Package document provides the JSON wire formats for tag sets and layouts.
//
// It is the serialization boundary of the module: CLI files, HTTP request
// and response bodies, and cache entries all use these types. Internal
// computation uses [github.com/matzehuels/tagcloud/pkg/cloud] types; use
// [FromTags], [TagSet.CloudTags], [FromResult] and [Layout.Result] to convert
// between them.
//
// # Tag sets
//
// A tag set is a list of labels with weights:
//
//	{"tags": [{"label": "go", "weight": 12}, {"label": "rust", "weight": 4}]}
//
// A bare array of entries is accepted as well. Weights must be at least 1.
//
// # Layouts
//
// A layout carries the bounding radius, the seed and parameters that
// produced it, one placement per tag and the quality statistics:
//
//	{
//	  "radius": 300,
//	  "seed": 42,
//	  "params": {...},
//	  "placements": [{"label": "go", "x": 0, "y": 0, "size": 1.6, ...}],
//	  "stats": {"placed": 1, "overlapping_pairs": 0, ...}
//	}
//
// # Constants
//
// This package is the single source of truth for output formats and
// render styles:
//
//	document.FormatSVG    // "svg"
//	document.FormatPNG    // "png"
//	document.FormatJSON   // "json"
//	document.StyleBubble  // "bubble"
//	document.StylePlain   // "plain"
package document
