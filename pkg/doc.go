// Package pkg provides the core libraries for Tagcloud tag cloud layouts.
//
// # Overview
//
// Tagcloud turns the front matter tags of a Markdown blog into a packed
// radial cloud: the most used tag sits in the centre and every other tag
// is placed on a golden-angle spiral around it without overlapping its
// neighbours. The pkg directory is organized into four main areas:
//
//  1. [cloud] - Layout engine (visual sizing, placement, diagnostics)
//  2. [posts] - Post discovery and tag counting
//  3. [document] - Serialization types for tag sets and layouts
//  4. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow through Tagcloud:
//
//	Markdown posts or tags.json
//	         ↓
//	    [posts] package (front matter → tag counts)
//	         ↓
//	    [cloud] package (tags → placements + stats)
//	         ↓
//	    [render/sink] package (SVG, PNG, JSON)
//
// # Quick Start
//
// Count tags and render an SVG:
//
//	import (
//	    "github.com/matzehuels/tagcloud/pkg/cloud"
//	    "github.com/matzehuels/tagcloud/pkg/document"
//	    "github.com/matzehuels/tagcloud/pkg/posts"
//	    "github.com/matzehuels/tagcloud/pkg/render/sink"
//	)
//
//	// 1. Count tags
//	ps, _ := posts.Load("content/posts")
//	tags := posts.CountTags(ps)
//
//	// 2. Compute layout
//	res, _ := cloud.Compute(tags, 300, cloud.WithSeed(42))
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(document.FromResult(res, 42, cloud.DefaultParams()))
//
// # Main Packages
//
// [cloud] - The layout engine. [cloud.VisualSize] maps weights to sizes on a
// log scale, [cloud.Compute] places tags heaviest first, and
// [cloud.Diagnose] counts overlapping pairs and boundary violations.
//
// [cloud/synth] - Synthetic tag sets (power-law, uniform, random) for
// benchmarks and tests.
//
// [posts] - Reads *.md files, parses their YAML front matter and counts tag
// usage across posts.
//
// [document] - JSON (and BSON) shapes for tag sets and layouts. A layout
// records its seed, fallback and parameters so it can be reproduced.
//
// [render/sink] - Output formats (SVG, PNG, JSON).
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (load → layout → render) used by the CLI
// and the HTTP server. Ensures consistent behavior across entry points.
//
// [cache] - Cache backends for layouts and artifacts: file (CLI default),
// memory, Redis and MongoDB, plus content-addressed keys.
//
// [config] - TOML configuration with TAGCLOUD_* environment overrides.
//
// [observability] - Pipeline, cache and HTTP hooks with a Prometheus
// implementation.
//
// [errors] - Error codes shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/cloud/...      # Specific package
//	go test -run Example ./...   # Examples only
//
// [cloud]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/cloud
// [cloud/synth]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/cloud/synth
// [posts]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/posts
// [document]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/document
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tagcloud/pkg/errors
package pkg
