package sink

import (
	"bytes"
	"fmt"
	"html"
	"image/color"

	"github.com/microcosm-cc/bluemonday"

	"github.com/matzehuels/tagcloud/pkg/document"
)

const tagCSS = `
    .boundary { fill: none; stroke-dasharray: 4 4; }
    .tag text { font-family: "Go", "Helvetica Neue", Arial, sans-serif; }
    .tag .bubble { transition: stroke-width 0.2s ease; }
    .tag:hover .bubble { stroke-width: 3; }
    .tag.overlap .bubble { stroke-width: 2; }`

const tagAnimationCSS = `
    @keyframes tag-in { from { opacity: 0; transform: scale(0.6); } to { opacity: 1; transform: scale(1); } }
    .tag { animation: tag-in 0.4s ease-out both; transform-box: fill-box; transform-origin: center; }`

// labelPolicy strips every tag and escapes the rest. Policies are safe for
// concurrent use once built.
var labelPolicy = bluemonday.StrictPolicy()

// labelText returns a label as SVG text content. The label is escaped
// before the policy runs, so angle brackets survive as text instead of
// being stripped as markup.
func labelText(label string) string {
	return labelPolicy.Sanitize(html.EscapeString(label))
}

// SVGOption configures SVG rendering. The same options shape the PNG
// scene through WithPNGSVGOptions.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    string
	overlaps bool
	padding  float64
	animate  bool
	stagger  int
}

// WithStyle selects document.StyleBubble (default) or document.StylePlain.
func WithStyle(s string) SVGOption {
	return func(r *svgRenderer) { r.style = s }
}

// WithOverlaps outlines tags whose bounding circles overlap another tag.
func WithOverlaps() SVGOption {
	return func(r *svgRenderer) { r.overlaps = true }
}

// WithPadding sets the space between the outermost tag and the canvas edge.
func WithPadding(p float64) SVGOption {
	return func(r *svgRenderer) { r.padding = max(p, 0) }
}

// WithAnimation fades tags in one after another, staggerMS apart in
// placement order.
func WithAnimation(staggerMS int) SVGOption {
	return func(r *svgRenderer) { r.animate, r.stagger = true, max(staggerMS, 0) }
}

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l document.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	s := buildScene(l, r)

	side := 2 * s.extent
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		-s.extent, -s.extent, side, side, side, side)

	css := tagCSS
	if r.animate {
		css += tagAnimationCSS
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", css)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		-s.extent, -s.extent, side, side, hex(backgroundRGB))
	fmt.Fprintf(&buf, `  <circle class="boundary" cx="0" cy="0" r="%.2f" stroke="%s"/>`+"\n", s.boundary, hex(ringColor))

	for _, it := range s.items {
		renderTag(&buf, r, it)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: document.StyleBubble, padding: defaultPadding, stagger: 30}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderTag(buf *bytes.Buffer, r svgRenderer, it item) {
	class := "tag"
	if it.overlap {
		class += " overlap"
	}
	if it.degraded {
		class += " degraded"
	}
	fmt.Fprintf(buf, `  <g class="%s" data-rank="%d" data-depth="%d"`, class, it.rank, it.depth)
	if r.animate {
		fmt.Fprintf(buf, ` style="animation-delay: %dms"`, it.rank*r.stagger)
	}
	buf.WriteString(">\n")

	if r.style != document.StylePlain {
		stroke := it.fill
		if it.overlap {
			stroke = overlapColor
		}
		fmt.Fprintf(buf, `    <circle class="bubble" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f" stroke="%s"/>`+"\n",
			it.x, it.y, it.r, hex(it.fill), it.opacity, hex(stroke))
	}

	ink := inkColor
	if r.style == document.StylePlain {
		ink = it.fill
	}
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		it.x, it.y, it.fontSize, hex(ink), labelText(it.label))
	buf.WriteString("  </g>\n")
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
