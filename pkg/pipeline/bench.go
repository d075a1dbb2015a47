package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/cloud/synth"
	"github.com/matzehuels/tagcloud/pkg/errors"
)

// DefaultBenchSizes are the tag counts the diagnostic harness lays out.
var DefaultBenchSizes = []int{5, 10, 20, 50, 100, 200, 500}

// Tag-set generators for Bench.
const (
	GeneratorPowerLaw = "power-law"
	GeneratorUniform  = "uniform"
	GeneratorRandom   = "random"
)

// Generators lists every supported generator name.
var Generators = []string{GeneratorPowerLaw, GeneratorUniform, GeneratorRandom}

// BenchOptions configures the diagnostic harness.
type BenchOptions struct {
	Sizes     []int
	Radius    float64
	Generator string
	Seed      uint64
	Fallback  string
	Params    cloud.Params

	// Concurrency caps parallel layouts. Zero means GOMAXPROCS.
	Concurrency int
}

// BenchResult reports layout quality for one tag count.
type BenchResult struct {
	Size  int
	Stats cloud.Stats

	// OverlapRatio is OverlappingPairs over all n(n-1)/2 pairs.
	OverlapRatio float64
}

// Clean reports whether the layout had no overlaps and no boundary
// violations.
func (b BenchResult) Clean() bool { return b.Stats.Clean() }

func (o *BenchOptions) setDefaults() {
	if len(o.Sizes) == 0 {
		o.Sizes = DefaultBenchSizes
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.Generator == "" {
		o.Generator = GeneratorPowerLaw
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Params == (cloud.Params{}) {
		o.Params = cloud.DefaultParams()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
}

func (o *BenchOptions) validate() error {
	if err := ValidateRadius(o.Radius); err != nil {
		return err
	}
	if _, err := cloud.ParseFallback(o.Fallback); err != nil {
		return err
	}
	for _, n := range o.Sizes {
		if n < 1 {
			return errors.New(errors.ErrCodeInvalidArgument, "bench size must be at least 1, got %d", n)
		}
	}
	switch o.Generator {
	case GeneratorPowerLaw, GeneratorUniform, GeneratorRandom:
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown generator %q (must be one of: power-law, uniform, random)", o.Generator)
	}
	return o.Params.Validate()
}

// Generate builds a synthetic tag set of n tags.
func (o *BenchOptions) Generate(n int) []cloud.Tag {
	switch o.Generator {
	case GeneratorUniform:
		return synth.Uniform(n, 10)
	case GeneratorRandom:
		return synth.Random(n, o.Seed)
	default:
		return synth.PowerLaw(n)
	}
}

// Bench lays out one synthetic tag set per size and reports placement
// quality. Sizes run in parallel; results keep the order of opts.Sizes.
// Each layout uses its own seeded generator, so results do not depend on
// scheduling.
func Bench(ctx context.Context, opts BenchOptions) ([]BenchResult, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fallback, _ := cloud.ParseFallback(opts.Fallback)

	results := make([]BenchResult, len(opts.Sizes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, n := range opts.Sizes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(errors.ErrCodeTimeout, err, "bench cancelled before %d tags", n)
			}
			res, err := cloud.Compute(opts.Generate(n), opts.Radius,
				cloud.WithSeed(opts.Seed),
				cloud.WithParams(opts.Params),
				cloud.WithFallback(fallback),
			)
			if err != nil {
				return err
			}
			results[i] = BenchResult{
				Size:         n,
				Stats:        res.Stats,
				OverlapRatio: overlapRatio(res.Stats.OverlappingPairs, n),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BenchTotal sums the results into one row. Elapsed is the sum of the
// per-size layout times, not wall-clock time.
func BenchTotal(results []BenchResult) BenchResult {
	var t BenchResult
	var elapsed time.Duration
	for _, r := range results {
		t.Size += r.Size
		t.Stats.Placed += r.Stats.Placed
		t.Stats.OverlappingPairs += r.Stats.OverlappingPairs
		t.Stats.OutOfBounds += r.Stats.OutOfBounds
		t.Stats.Degraded += r.Stats.Degraded
		elapsed += r.Stats.Elapsed
	}
	t.Stats.Elapsed = elapsed
	return t
}

func overlapRatio(pairs, n int) float64 {
	total := n * (n - 1) / 2
	if total == 0 {
		return 0
	}
	return float64(pairs) / float64(total)
}
