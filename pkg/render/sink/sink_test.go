package sink

import (
	"bytes"
	"image/png"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/errors"
)

func testLayout(t *testing.T, tags []cloud.Tag, radius float64) document.Layout {
	t.Helper()
	res, err := cloud.Compute(tags, radius, cloud.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	return document.FromResult(res, 1, cloud.DefaultParams())
}

func sampleLayout(t *testing.T) document.Layout {
	return testLayout(t, []cloud.Tag{{"go", 10}, {"rust", 5}, {"zig", 1}}, 200)
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(t)))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-210.0 -210.0 420.0 420.0"`) {
		t.Errorf("unexpected header: %.120s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("missing closing tag")
	}
	if got := strings.Count(svg, `<g class="tag`); got != 3 {
		t.Errorf("tag groups = %d, want 3", got)
	}
	if got := strings.Count(svg, `class="bubble"`); got != 3 {
		t.Errorf("bubbles = %d, want 3", got)
	}
	if !strings.Contains(svg, `class="boundary"`) {
		t.Error("missing boundary ring")
	}
	if strings.Contains(svg, "animation-delay") {
		t.Error("animation should be off by default")
	}
}

func TestRenderSVGDepthOrder(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(t)))
	re := regexp.MustCompile(`data-depth="(\d+)"`)
	var depths []string
	for _, m := range re.FindAllStringSubmatch(svg, -1) {
		depths = append(depths, m[1])
	}
	if strings.Join(depths, ",") != "1,2,3" {
		t.Errorf("draw order by depth = %v, want [1 2 3]", depths)
	}
	// The heaviest tag is drawn last.
	if last := strings.LastIndex(svg, ">go</text>"); last < strings.LastIndex(svg, ">zig</text>") {
		t.Error("heaviest tag should be drawn on top")
	}
}

func TestRenderSVGPlainStyle(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(t), WithStyle(document.StylePlain)))
	if strings.Contains(svg, `class="bubble"`) {
		t.Error("plain style should not draw bubbles")
	}
	if got := strings.Count(svg, "<text "); got != 3 {
		t.Errorf("labels = %d, want 3", got)
	}
}

func TestRenderSVGSanitizesLabels(t *testing.T) {
	l := testLayout(t, []cloud.Tag{
		{`<script>alert(1)</script>`, 3},
		{`C&C "quoted"`, 2},
		{`<b>bold</b>`, 1},
	}, 200)
	svg := string(RenderSVG(l))

	if strings.Contains(svg, "<script>") || strings.Contains(svg, "<b>") {
		t.Errorf("markup leaked into output:\n%s", svg)
	}
	if !strings.Contains(svg, "C&amp;C") {
		t.Error("ampersand should be escaped")
	}
	if !strings.Contains(svg, ">&lt;b&gt;bold&lt;/b&gt;</text>") {
		t.Error("markup-like label should render as escaped text")
	}
}

func TestRenderSVGKeepsAngleBrackets(t *testing.T) {
	l := testLayout(t, []cloud.Tag{{"vector<int>", 2}, {"a<b", 1}}, 200)
	svg := string(RenderSVG(l))

	for _, want := range []string{">vector&lt;int&gt;</text>", ">a&lt;b</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q:\n%s", want, svg)
		}
	}
}

func TestRenderSVGOverlaps(t *testing.T) {
	l := document.Layout{
		Radius: 100,
		Params: cloud.DefaultParams(),
		Placements: []document.Placement{
			{Label: "a", Weight: 2, Radius: 20, Size: 1, Depth: 3, Rank: 0},
			{Label: "b", Weight: 1, X: 10, Radius: 20, Size: 1, Depth: 2, Rank: 1},
			{Label: "c", Weight: 1, X: -80, Radius: 10, Size: 1, Depth: 1, Rank: 2},
		},
	}

	plain := string(RenderSVG(l))
	if strings.Contains(plain, "tag overlap") {
		t.Error("overlaps should only be marked when requested")
	}

	marked := string(RenderSVG(l, WithOverlaps()))
	if got := strings.Count(marked, `class="tag overlap"`); got != 2 {
		t.Errorf("overlap groups = %d, want 2", got)
	}
	if !strings.Contains(marked, hex(overlapColor)) {
		t.Error("overlap stroke color missing")
	}
}

func TestRenderSVGExtentCoversOutliers(t *testing.T) {
	l := document.Layout{
		Radius: 50,
		Params: cloud.DefaultParams(),
		Placements: []document.Placement{
			{Label: "far", Weight: 1, X: 90, Radius: 20, Size: 1, Depth: 1},
		},
	}
	svg := string(RenderSVG(l, WithPadding(0)))
	if !strings.Contains(svg, `viewBox="-110.0 -110.0 220.0 220.0"`) {
		t.Errorf("viewBox should grow to include the outlier: %.120s", svg)
	}
}

func TestRenderSVGAnimation(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(t), WithAnimation(50)))
	for _, want := range []string{"@keyframes tag-in", "animation-delay: 0ms", "animation-delay: 50ms", "animation-delay: 100ms"} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(document.Layout{Radius: 100}))
	if strings.Contains(svg, "<g ") {
		t.Error("empty layout should have no tag groups")
	}
	if !strings.Contains(svg, `class="boundary"`) {
		t.Error("empty layout should still draw the ring")
	}
}

func TestRenderPNG(t *testing.T) {
	l := sampleLayout(t)
	data, err := RenderPNG(l, WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	side := int(math.Ceil(2 * (200 + defaultPadding)))
	if b := img.Bounds(); b.Dx() != side || b.Dy() != side {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), side, side)
	}

	// The centre tag's bubble tints the middle of the image.
	r, g, b, _ := img.At(side/2+5, side/2+25).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Error("centre bubble not drawn")
	}
	// Corners stay background.
	r, g, b, _ = img.At(1, 1).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("corner = %x %x %x, want white", r, g, b)
	}
}

func TestRenderPNGScale(t *testing.T) {
	l := sampleLayout(t)
	data, err := RenderPNG(l, WithScale(2), WithPNGSVGOptions(WithStyle(document.StylePlain), WithPadding(0)))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 800 {
		t.Errorf("width = %d, want 800", cfg.Width)
	}
}

func TestRenderPNGInvalidScale(t *testing.T) {
	for _, s := range []float64{0, -1, math.NaN(), 1000} {
		if _, err := RenderPNG(sampleLayout(t), WithScale(s)); !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("scale %v: error = %v, want %s", s, err, errors.ErrCodeInvalidArgument)
		}
	}
}

func TestRenderPNGHugeRadius(t *testing.T) {
	for _, radius := range []float64{1e6, 1e300} {
		l := document.Layout{Radius: radius, Params: cloud.DefaultParams()}
		_, err := RenderPNG(l)
		if !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("radius %g: error = %v, want %s", radius, err, errors.ErrCodeInvalidArgument)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	l := sampleLayout(t)
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := document.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Placements) != 3 || back.Radius != 200 {
		t.Errorf("round trip = %+v", back)
	}
}
