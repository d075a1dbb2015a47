package sink

import (
	"bytes"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/errors"
)

// MaxPNGSide caps the rendered image size in pixels.
const MaxPNGSide = 8192

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes scene options (style, overlaps, padding) through
// to the rasteriser.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

var (
	goRegular     *truetype.Font
	goRegularErr  error
	goRegularOnce sync.Once
)

func loadFont() (*truetype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = truetype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// RenderPNG rasterises the layout.
func RenderPNG(l document.Layout, opts ...PNGOption) ([]byte, error) {
	pr := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&pr)
	}
	if !(pr.scale > 0) || math.IsInf(pr.scale, 1) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "png scale must be a positive finite number, got %v", pr.scale)
	}

	r := newSVGRenderer(pr.svgOpts...)
	s := buildScene(l, r)

	width := math.Ceil(2 * s.extent * pr.scale)
	if !(width <= MaxPNGSide) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "png would be %.0fpx wide (max %d); lower the scale or radius", width, MaxPNGSide)
	}
	side := int(width)

	f, err := loadFont()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}

	dc := gg.NewContext(side, side)
	dc.SetColor(backgroundRGB)
	dc.Clear()
	dc.Translate(float64(side)/2, float64(side)/2)
	dc.Scale(pr.scale, pr.scale)

	dc.SetColor(ringColor)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	dc.DrawCircle(0, 0, s.boundary)
	dc.Stroke()
	dc.SetDash()

	faces := make(map[int]font.Face)
	defer func() {
		for _, face := range faces {
			face.Close()
		}
	}()

	for _, it := range s.items {
		if r.style != document.StylePlain {
			dc.DrawCircle(it.x, it.y, it.r)
			dc.SetColor(withAlpha(it.fill, it.opacity))
			dc.FillPreserve()
			if it.overlap {
				dc.SetColor(overlapColor)
				dc.SetLineWidth(2)
			} else {
				dc.SetColor(it.fill)
				dc.SetLineWidth(1)
			}
			dc.Stroke()
		}

		// Glyphs are not affected by the context transform, so the face
		// is sized in device pixels.
		px := max(1, int(math.Round(it.fontSize*pr.scale)))
		face, ok := faces[px]
		if !ok {
			face = truetype.NewFace(f, &truetype.Options{Size: float64(px), DPI: 72, Hinting: font.HintingFull})
			faces[px] = face
		}
		dc.SetFontFace(face)
		if r.style == document.StylePlain {
			dc.SetColor(it.fill)
		} else {
			dc.SetColor(inkColor)
		}
		dc.DrawStringAnchored(it.label, it.x, it.y, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}
