package pipeline

import (
	"fmt"

	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/render/sink"
)

// DefaultStaggerMS is the delay between tags when SVG animation is on.
const DefaultStaggerMS = 30

// Render generates output artifacts in the requested formats.
// opts must already be validated for rendering.
func Render(l document.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := opts.svgOptions()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case document.FormatSVG:
			so := svgOpts
			if opts.Animate {
				so = append(so[:len(so):len(so)], sink.WithAnimation(DefaultStaggerMS))
			}
			data = sink.RenderSVG(l, so...)
		case document.FormatPNG:
			data, err = sink.RenderPNG(l,
				sink.WithPNGSVGOptions(svgOpts...),
				sink.WithScale(opts.Scale),
			)
		case document.FormatJSON:
			data, err = sink.RenderJSON(l)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromLayoutData renders output from serialized layout data.
func RenderFromLayoutData(layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := document.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return Render(l, opts)
}
