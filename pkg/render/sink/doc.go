// Package sink provides output format renderers for tag cloud layouts.
//
// # Overview
//
// A "sink" transforms a computed [document.Layout] into a final output
// format. This package provides renderers for:
//
//   - SVG: scalable vector graphics, optionally animated
//   - PNG: raster image drawn with fogleman/gg
//   - JSON: layout data export for external tools
//
// # SVG Output
//
// [RenderSVG] draws a square canvas centred on the layout origin with a
// faint ring marking the bounding radius. Tags are drawn in ascending
// depth so heavier tags end up on top. Labels pass through bluemonday's
// strict policy before they are written, so tag names taken from
// untrusted posts cannot inject markup.
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithStyle(document.StyleBubble),
//	    sink.WithOverlaps(),
//	)
//
// # SVG Options
//
//   - [WithStyle]: "bubble" (circle and label) or "plain" (label only)
//   - [WithOverlaps]: outline tags whose bounding circles overlap
//   - [WithPadding]: extra space around the bounding ring
//   - [WithAnimation]: fade tags in, staggered by placement rank
//
// # PNG Output
//
// [RenderPNG] rasterises the same scene with the Go Regular font, so it
// needs no external tools or system fonts:
//
//	png, err := sink.RenderPNG(layout, sink.WithScale(2),
//	    sink.WithPNGSVGOptions(sink.WithStyle(document.StylePlain)))
//
// # JSON Output
//
// [RenderJSON] exports the layout through [document.MarshalLayout] so it
// can be re-rendered later without recomputing positions.
//
// [document.Layout]: github.com/matzehuels/tagcloud/pkg/document.Layout
// [document.MarshalLayout]: github.com/matzehuels/tagcloud/pkg/document.MarshalLayout
package sink
