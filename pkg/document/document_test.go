package document

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/errors"
)

func TestUnmarshalTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []TagEntry
		wantCode errors.Code
	}{
		{
			name:  "object",
			input: `{"tags": [{"label": "go", "weight": 3}, {"label": "rust", "weight": 1}]}`,
			want:  []TagEntry{{"go", 3}, {"rust", 1}},
		},
		{
			name:  "bare array",
			input: ` [{"label": "go", "weight": 2}]`,
			want:  []TagEntry{{"go", 2}},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  []TagEntry{},
		},
		{
			name:     "malformed",
			input:    `{"tags": [`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "zero weight",
			input:    `{"tags": [{"label": "go", "weight": 0}]}`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "blank label",
			input:    `[{"label": "  ", "weight": 1}]`,
			wantCode: errors.ErrCodeInvalidLabel,
		},
		{
			name:     "control character",
			input:    `[{"label": "a\u0007b", "weight": 1}]`,
			wantCode: errors.ErrCodeInvalidLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalTags([]byte(tt.input))
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("UnmarshalTags() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalTags() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Tags); diff != "" {
				t.Errorf("Tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTagsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.json")
	in := FromTags([]cloud.Tag{{Label: "go", Weight: 5}, {Label: "zig", Weight: 1}})

	if err := WriteTagsFile(in, path); err != nil {
		t.Fatalf("WriteTagsFile() error = %v", err)
	}
	out, err := ReadTagsFile(path)
	if err != nil {
		t.Fatalf("ReadTagsFile() error = %v", err)
	}
	if diff := cmp.Diff(in.CloudTags(), out.CloudTags()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTagsFileMissing(t *testing.T) {
	_, err := ReadTagsFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestMarshalTagsEmpty(t *testing.T) {
	data, err := MarshalTags(TagSet{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"tags": []`) {
		t.Errorf("MarshalTags(empty) = %s, want an empty array", data)
	}
}

func computeLayout(t *testing.T) Layout {
	t.Helper()
	res, err := cloud.Compute([]cloud.Tag{{"go", 10}, {"rust", 6}, {"zig", 1}}, 300, cloud.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	return FromResult(res, 3, cloud.DefaultParams())
}

func TestFromResult(t *testing.T) {
	l := computeLayout(t)
	if l.Radius != 300 || l.Seed != 3 {
		t.Errorf("radius/seed = %v/%v", l.Radius, l.Seed)
	}
	if len(l.Placements) != 3 || l.Placements[0].Label != "go" {
		t.Fatalf("placements = %+v", l.Placements)
	}
	if l.Stats.Placed != 3 {
		t.Errorf("Stats.Placed = %d, want 3", l.Stats.Placed)
	}
	if diff := cmp.Diff([]TagEntry{{"go", 10}, {"rust", 6}, {"zig", 1}}, l.Tags().Tags); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutResultRoundTrip(t *testing.T) {
	res, err := cloud.Compute([]cloud.Tag{{"a", 4}, {"b", 2}}, 200, cloud.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	res.Stats.Elapsed = 1500 * time.Microsecond

	back := FromResult(res, 1, cloud.DefaultParams()).Result()
	if diff := cmp.Diff(res, back); diff != "" {
		t.Errorf("Result() mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := computeLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"radius":`},
		{"missing radius", `{"placements": []}`},
		{"negative radius", `{"radius": -1, "placements": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestUnmarshalLayoutEmptyPlacements(t *testing.T) {
	l, err := UnmarshalLayout([]byte(`{"radius": 10}`))
	if err != nil {
		t.Fatal(err)
	}
	if l.Placements == nil {
		t.Error("Placements should be non-nil")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{`[{"label":"go","weight":1}]`, KindTags},
		{`{"tags": []}`, KindTags},
		{`{"radius": 1, "placements": []}`, KindLayout},
		{`{"other": 1}`, KindUnknown},
		{`not json`, KindUnknown},
		{``, KindUnknown},
	}
	for _, tt := range tests {
		if got := Detect([]byte(tt.input)); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWriteLayoutNilPlacements(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLayout(Layout{Radius: 1}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"placements": []`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestValidFormatAndStyle(t *testing.T) {
	for _, f := range Formats {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("gif") {
		t.Error("ValidFormat(gif) = true")
	}
	if !ValidStyle(StylePlain) || ValidStyle("handdrawn") {
		t.Error("ValidStyle mismatch")
	}
}

func TestReadTags(t *testing.T) {
	s, err := ReadTags(strings.NewReader(`[{"label":"go","weight":1}]`))
	if err != nil || len(s.Tags) != 1 {
		t.Fatalf("ReadTags() = %+v, %v", s, err)
	}
}
