package posts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tagcloud/pkg/errors"
)

// MaxExcerptRunes bounds the excerpt derived from the body.
const MaxExcerptRunes = 150

// Post is a parsed Markdown file.
type Post struct {
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	PublishDate   time.Time `json:"publish_date"`
	Tags          []string  `json:"tags"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"-"`

	// Path is the file the post was read from.
	Path string `json:"path"`

	// Warnings lists problems that were recovered from while parsing.
	Warnings []string `json:"warnings,omitempty"`
}

type frontMatter struct {
	Title         string    `yaml:"title"`
	Slug          string    `yaml:"slug"`
	PublishDate   yaml.Node `yaml:"publishDate"`
	Tags          yaml.Node `yaml:"tags"`
	FeaturedImage string    `yaml:"featuredImage"`
	Excerpt       string    `yaml:"excerpt"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Load reads every *.md file directly inside dir and returns the posts
// sorted by publish date, newest first. Subdirectories are ignored.
func Load(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "posts directory %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read posts directory %s", dir)
	}

	var posts []Post
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		p, err := ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	SortNewestFirst(posts)
	return posts, nil
}

// ReadFile parses a single post. It only fails when the file cannot be
// read; malformed content produces a fallback post with warnings.
func ReadFile(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Post{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "post %s", path)
		}
		return Post{}, errors.Wrap(errors.ErrCodeInternal, err, "read post %s", path)
	}

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}
	return Parse(path, data, modTime), nil
}

// Parse builds a post from raw file content. modTime is used when the
// front matter has no usable publish date.
func Parse(path string, data []byte, modTime time.Time) Post {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := Post{Title: name, Slug: name, PublishDate: modTime, Path: path, Tags: []string{}}

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !utf8.Valid(data) {
		p.Warnings = append(p.Warnings, "content is not valid UTF-8")
		data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}

	header, body, hasHeader := splitFrontMatter(string(data))
	p.Content = body

	var fm frontMatter
	if hasHeader {
		if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
			p.Warnings = append(p.Warnings, fmt.Sprintf("front matter: %v", err))
			p.Excerpt = excerpt(body)
			return p
		}
	}

	if t := strings.TrimSpace(fm.Title); t != "" {
		p.Title = t
	}
	if s := strings.TrimSpace(fm.Slug); s != "" {
		p.Slug = s
	}
	p.FeaturedImage = fm.FeaturedImage

	if d, ok, warn := parseDate(fm.PublishDate); ok {
		p.PublishDate = d
	} else {
		p.Warnings = append(p.Warnings, warn)
	}

	tags, warn := parseTags(fm.Tags)
	p.Tags = tags
	if warn != "" {
		p.Warnings = append(p.Warnings, warn)
	}

	if e := strings.TrimSpace(fm.Excerpt); e != "" {
		p.Excerpt = e
	} else {
		p.Excerpt = excerpt(body)
	}
	return p
}

// splitFrontMatter separates a leading "---" block from the body.
func splitFrontMatter(s string) (header, body string, ok bool) {
	first, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(first, "\r \t") != "---" {
		return "", s, false
	}

	var h strings.Builder
	for rest != "" {
		var line string
		line, rest, found = strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r \t") == "---" {
			return h.String(), rest, true
		}
		h.WriteString(line)
		h.WriteByte('\n')
		if !found {
			break
		}
	}
	// Unterminated: treat the whole file as body.
	return "", s, false
}

func parseDate(n yaml.Node) (time.Time, bool, string) {
	if n.Kind == 0 || n.Value == "" {
		return time.Time{}, false, "missing publishDate, using file modification time"
	}
	if n.Kind != yaml.ScalarNode {
		return time.Time{}, false, "publishDate is not a scalar, using file modification time"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, n.Value); err == nil {
			return t, true, ""
		}
	}
	return time.Time{}, false, fmt.Sprintf("invalid publishDate %q, using file modification time", n.Value)
}

// parseTags accepts a sequence of strings or a single string. Non-string
// and empty sequence entries are dropped.
func parseTags(n yaml.Node) ([]string, string) {
	switch n.Kind {
	case 0:
		return []string{}, ""
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return []string{}, ""
		}
		if n.ShortTag() != "!!str" {
			return []string{}, "tags must be a list or a string, ignoring"
		}
		if t := strings.TrimSpace(n.Value); t != "" {
			return []string{t}, ""
		}
		return []string{}, ""
	case yaml.SequenceNode:
		tags := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode || c.ShortTag() != "!!str" {
				continue
			}
			if t := strings.TrimSpace(c.Value); t != "" {
				tags = append(tags, t)
			}
		}
		return tags, ""
	}
	return []string{}, "tags must be a list or a string, ignoring"
}

func excerpt(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= MaxExcerptRunes {
		return line
	}
	return string([]rune(line)[:MaxExcerptRunes])
}

// SortNewestFirst orders posts by descending publish date. Posts with equal
// dates keep their order.
func SortNewestFirst(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.PublishDate.Compare(a.PublishDate)
	})
}

// WithTag returns the posts carrying tag, preserving order.
func WithTag(posts []Post, tag string) []Post {
	var out []Post
	for _, p := range posts {
		if slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out
}

// Warnings flattens the per-post warnings into "path: message" lines.
func Warnings(posts []Post) []string {
	var out []string
	for _, p := range posts {
		for _, w := range p.Warnings {
			out = append(out, p.Path+": "+w)
		}
	}
	return out
}
