package cloud

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/matzehuels/tagcloud/pkg/errors"
)

// Option configures a single Compute call.
type Option func(*config)

type config struct {
	params   Params
	fallback Fallback
	rng      *rand.Rand
}

// WithSeed makes the layout reproducible: the same tags, radius, params
// and seed always produce the same placements.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.rng = newRand(seed) }
}

// WithRand supplies the random source directly. The source must not be
// shared with concurrent Compute calls.
func WithRand(r *rand.Rand) Option {
	return func(c *config) { c.rng = r }
}

// WithParams replaces the default parameters.
func WithParams(p Params) Option {
	return func(c *config) { c.params = p }
}

// WithFallback sets the policy used when a tag exhausts its retry budget.
func WithFallback(f Fallback) Option {
	return func(c *config) { c.fallback = f }
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Compute lays out tags inside a circle of the given radius.
//
// Tags are stable-sorted by descending weight. The heaviest one is pinned to
// the origin; each following tag starts at a weight-derived distance and an
// angle advanced by the golden angle, then moves outward and around until
// its bounding circle clears every placed tag or the retry budget runs out.
//
// Compute returns an error only for invalid input: a radius that is not a
// positive finite number, a weight below 1, or invalid Params. Unresolved
// overlaps are reported through Result.Stats and Placement.Degraded.
func Compute(tags []Tag, radius float64, opts ...Option) (Result, error) {
	start := time.Now()

	cfg := config{params: DefaultParams(), fallback: FallbackAccept}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !(radius > 0) || math.IsInf(radius, 1) {
		return Result{}, errors.New(errors.ErrCodeInvalidArgument, "radius must be a positive finite number, got %v", radius)
	}
	if err := cfg.params.Validate(); err != nil {
		return Result{}, err
	}
	if _, err := ParseFallback(string(cfg.fallback)); err != nil {
		return Result{}, err
	}
	for i, t := range tags {
		if t.Weight < 1 {
			return Result{}, errors.New(errors.ErrCodeInvalidArgument, "tag %d (%q): weight must be at least 1, got %d", i, t.Label, t.Weight)
		}
	}

	res := Result{Radius: radius, Placements: []Placement{}}
	if len(tags) == 0 {
		res.Stats.Elapsed = time.Since(start)
		return res, nil
	}

	if cfg.rng == nil {
		cfg.rng = newRand(rand.Uint64())
	}

	e := &engine{
		params:    cfg.params,
		fallback:  cfg.fallback,
		rng:       cfg.rng,
		radius:    radius,
		maxWeight: maxWeight(tags),
	}
	res.Placements = e.place(sortByWeight(tags))

	res.Stats = Diagnose(res.Placements, radius, cfg.params.Margin)
	for _, p := range res.Placements {
		if p.Degraded {
			res.Stats.Degraded++
		}
	}
	res.Stats.Elapsed = time.Since(start)
	return res, nil
}

func maxWeight(tags []Tag) int {
	m := tags[0].Weight
	for _, t := range tags[1:] {
		m = max(m, t.Weight)
	}
	return m
}

// sortByWeight returns a copy sorted by descending weight; ties keep their
// input order.
func sortByWeight(tags []Tag) []Tag {
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b Tag) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	return sorted
}

type engine struct {
	params    Params
	fallback  Fallback
	rng       *rand.Rand
	radius    float64
	maxWeight int

	placed []circle
}

type circle struct {
	x, y, r float64
}

func (e *engine) place(sorted []Tag) []Placement {
	n := len(sorted)
	out := make([]Placement, 0, n)
	e.placed = make([]circle, 0, n)

	center := sorted[0]
	size := VisualSize(center.Weight, e.maxWeight, e.params)
	r := size * e.params.ScaleFactor()
	out = append(out, Placement{
		Label:  center.Label,
		Weight: center.Weight,
		Size:   size,
		Radius: r,
		Depth:  n,
		Rank:   0,
	})
	e.placed = append(e.placed, circle{0, 0, r})

	angle := e.rng.Float64() * 2 * math.Pi
	for i, t := range sorted[1:] {
		size := VisualSize(t.Weight, e.maxWeight, e.params)
		r := size * e.params.ScaleFactor()
		distance := e.targetDistance(t.Weight)

		angle += GoldenAngle + float64(i%e.params.JitterCycle)*e.params.JitterStep

		c, attempts, ok := e.search(r, &angle, distance)

		rank := i + 1
		out = append(out, Placement{
			Label:    t.Label,
			Weight:   t.Weight,
			X:        c.x,
			Y:        c.y,
			Size:     size,
			Radius:   r,
			Depth:    n - rank,
			Rank:     rank,
			Attempts: attempts,
			Degraded: !ok,
		})
		e.placed = append(e.placed, c)
	}
	return out
}

// targetDistance keeps tags inside the annulus between InnerRatio and
// InnerRatio+SpreadRatio of the radius; heavier tags sit closer in.
func (e *engine) targetDistance(weight int) float64 {
	ratio := math.Sqrt(1 - float64(weight)/float64(e.maxWeight))
	return e.radius*e.params.InnerRatio + ratio*e.radius*e.params.SpreadRatio
}

// search walks candidate positions starting at (distance, *angle). It
// advances *angle in place so the next tag continues from where this one
// stopped.
func (e *engine) search(r float64, angle *float64, distance float64) (circle, int, bool) {
	var (
		c         circle
		best      circle
		bestScore = math.Inf(1)
	)
	for attempt := 1; attempt <= e.params.RetryBudget; attempt++ {
		c = circle{math.Cos(*angle) * distance, math.Sin(*angle) * distance, r}

		score := e.penetration(c)
		if score == 0 {
			return c, attempt, true
		}
		if score < bestScore {
			best, bestScore = c, score
		}

		*angle += e.params.AngleNudge
		distance += e.params.DistanceNudge
	}

	if e.fallback == FallbackLeastOverlap {
		return best, e.params.RetryBudget, false
	}
	return c, e.params.RetryBudget, false
}

// penetration sums how far c intrudes into the clearance zone of every
// placed circle. Zero means c is a valid position.
func (e *engine) penetration(c circle) float64 {
	var total float64
	for _, p := range e.placed {
		need := c.r + p.r + e.params.Margin
		if d := hypot(c.x-p.x, c.y-p.y); d < need {
			total += need - d
		}
	}
	return total
}

func hypot(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}
