// Package posts loads Markdown blog posts and derives tag weights from them.
//
// A post is a *.md file with optional YAML front matter delimited by "---"
// lines:
//
//	---
//	title: Hello
//	publishDate: 2024-03-01
//	tags: [go, layout]
//	---
//	First paragraph becomes the excerpt.
//
// Loading is forgiving. Missing fields fall back to values derived from the
// file: the base name for title and slug, the first body line for the
// excerpt, and the modification time for the publish date. A file whose
// front matter cannot be parsed still yields a post (without tags) and a
// warning in [Post.Warnings]; only directory-level failures are returned as
// errors.
//
// [CountTags] turns a set of posts into the weighted tags consumed by
// [github.com/matzehuels/tagcloud/pkg/cloud.Compute].
package posts
