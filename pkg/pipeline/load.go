package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/errors"
	"github.com/matzehuels/tagcloud/pkg/observability"
	"github.com/matzehuels/tagcloud/pkg/posts"
)

// Load sources.
const (
	SourcePosts = "posts"
	SourceTags  = "tags"
)

// Load reads tags from path. A directory is treated as a posts directory
// whose front matter tags are counted; anything else must be a tags JSON
// file.
//
// Posts that parsed with warnings are still counted; each warning is logged.
func (r *Runner) Load(ctx context.Context, path string) ([]cloud.Tag, error) {
	source := SourceTags
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		source = SourcePosts
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	tags, err := r.load(ctx, source, path)
	hooks.OnLoadComplete(ctx, source, len(tags), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded tags", "source", source, "path", path, "tags", len(tags), "duration", time.Since(start))
	return tags, nil
}

func (r *Runner) load(ctx context.Context, source, path string) ([]cloud.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "load %s", path)
	}
	if source == SourceTags {
		set, err := document.ReadTagsFile(path)
		if err != nil {
			return nil, err
		}
		return set.CloudTags(), nil
	}

	ps, err := posts.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range posts.Warnings(ps) {
		r.Logger.Warn(w)
	}
	return posts.CountTags(ps), nil
}
