package document

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/matzehuels/tagcloud/pkg/errors"
)

// Kind identifies the content of a JSON document.
type Kind int

const (
	KindUnknown Kind = iota
	KindTags
	KindLayout
)

func (k Kind) String() string {
	switch k {
	case KindTags:
		return "tags"
	case KindLayout:
		return "layout"
	}
	return "unknown"
}

// =============================================================================
// Tag Set Serialization API
// =============================================================================

// MarshalTags converts a tag set to pretty-printed JSON.
func MarshalTags(s TagSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTags(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTags writes a tag set as JSON to w.
func WriteTags(s TagSet, w io.Writer) error {
	if s.Tags == nil {
		s.Tags = []TagEntry{}
	}
	return encode(w, s)
}

// WriteTagsFile writes a tag set to a JSON file.
func WriteTagsFile(s TagSet, path string) error {
	data, err := MarshalTags(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// UnmarshalTags decodes and validates a tag set. Both {"tags": [...]} and
// a bare array are accepted. Every label must be valid and every weight at
// least 1.
func UnmarshalTags(data []byte) (TagSet, error) {
	var s TagSet
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &s.Tags); err != nil {
			return TagSet{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tags")
		}
	} else if err := json.Unmarshal(trimmed, &s); err != nil {
		return TagSet{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tags")
	}

	if err := s.Validate(); err != nil {
		return TagSet{}, err
	}
	if s.Tags == nil {
		s.Tags = []TagEntry{}
	}
	return s, nil
}

// Validate checks every entry.
func (s TagSet) Validate() error {
	for i, e := range s.Tags {
		if err := errors.ValidateLabel(e.Label); err != nil {
			return errors.New(errors.ErrCodeInvalidLabel, "tag %d: %s", i, errors.UserMessage(err))
		}
		if e.Weight < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "tag %d (%q): weight must be at least 1, got %d", i, e.Label, e.Weight)
		}
	}
	return nil
}

// ReadTags decodes a tag set from r.
func ReadTags(r io.Reader) (TagSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TagSet{}, errors.Wrap(errors.ErrCodeInternal, err, "read tags")
	}
	return UnmarshalTags(data)
}

// ReadTagsFile reads a tag set from a JSON file.
func ReadTagsFile(path string) (TagSet, error) {
	data, err := readFile(path)
	if err != nil {
		return TagSet{}, err
	}
	return UnmarshalTags(data)
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to pretty-printed JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLayout writes a layout as JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	if l.Placements == nil {
		l.Placements = []Placement{}
	}
	return encode(w, l)
}

// UnmarshalLayout decodes a layout and checks that it can be rendered.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	if !(l.Radius > 0) || math.IsInf(l.Radius, 1) {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "layout radius must be a positive finite number, got %v", l.Radius)
	}
	if l.Placements == nil {
		l.Placements = []Placement{}
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := readFile(path)
	if err != nil {
		return Layout{}, err
	}
	return UnmarshalLayout(data)
}

// =============================================================================
// Detection
// =============================================================================

// Detect reports whether data holds a tag set or a layout. Layouts are
// recognised by their "placements" field.
func Detect(data []byte) Kind {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return KindUnknown
	}
	if trimmed[0] == '[' {
		return KindTags
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return KindUnknown
	}
	if _, ok := probe["placements"]; ok {
		return KindLayout
	}
	if _, ok := probe["tags"]; ok {
		return KindTags
	}
	return KindUnknown
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}
