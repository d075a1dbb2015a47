package pipeline

import (
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
)

// ComputeLayout runs the layout engine and converts the result to its
// serialization format. opts must already be validated for layout.
//
// The layout records seed, fallback and parameters so that it can be
// reproduced from the file alone.
func ComputeLayout(tags []cloud.Tag, opts Options) (document.Layout, error) {
	fallback, err := cloud.ParseFallback(opts.Fallback)
	if err != nil {
		return document.Layout{}, err
	}
	res, err := cloud.Compute(tags, opts.Radius,
		cloud.WithSeed(opts.Seed),
		cloud.WithParams(opts.Params),
		cloud.WithFallback(fallback),
	)
	if err != nil {
		return document.Layout{}, err
	}

	l := document.FromResult(res, opts.Seed, opts.Params)
	l.Fallback = string(fallback)
	return l, nil
}
