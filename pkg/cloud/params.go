package cloud

import (
	"fmt"
	"math"

	"github.com/matzehuels/tagcloud/pkg/errors"
)

// GoldenAngle is π(3-√5), the angular increment that spreads successive
// tags evenly around the centre.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Fallback selects where a tag goes when every attempt collided.
type Fallback string

const (
	// FallbackAccept keeps the last attempted position, overlaps included.
	FallbackAccept Fallback = "accept"

	// FallbackLeastOverlap keeps the attempted position with the smallest
	// total penetration into already placed tags.
	FallbackLeastOverlap Fallback = "least-overlap"
)

// ParseFallback converts a policy name into a Fallback.
func ParseFallback(s string) (Fallback, error) {
	switch Fallback(s) {
	case "", FallbackAccept:
		return FallbackAccept, nil
	case FallbackLeastOverlap:
		return FallbackLeastOverlap, nil
	}
	return "", errors.New(errors.ErrCodeInvalidArgument, "unknown fallback %q (must be %q or %q)", s, FallbackAccept, FallbackLeastOverlap)
}

// Params holds the tunable constants of the layout. The zero value is not
// usable; start from DefaultParams.
type Params struct {
	// MinSize and MaxSize bound the visual size.
	MinSize float64 `json:"min_size" toml:"min_size" bson:"min_size"`
	MaxSize float64 `json:"max_size" toml:"max_size" bson:"max_size"`

	// BaseSize is the number of layout units per size unit (a font size in
	// pixels for most renderers).
	BaseSize float64 `json:"base_size" toml:"base_size" bson:"base_size"`

	// RadiusScale inflates the bounding circle relative to BaseSize*Size.
	RadiusScale float64 `json:"radius_scale" toml:"radius_scale" bson:"radius_scale"`

	// Margin is the minimum gap between two bounding circles.
	Margin float64 `json:"margin" toml:"margin" bson:"margin"`

	// RetryBudget is the number of candidate positions tried per tag.
	RetryBudget int `json:"retry_budget" toml:"retry_budget" bson:"retry_budget"`

	// AngleNudge and DistanceNudge are applied after each failed attempt.
	AngleNudge    float64 `json:"angle_nudge" toml:"angle_nudge" bson:"angle_nudge"`
	DistanceNudge float64 `json:"distance_nudge" toml:"distance_nudge" bson:"distance_nudge"`

	// InnerRatio and SpreadRatio define the target annulus:
	// distance = radius*InnerRatio + sqrt(1-w/max)*radius*SpreadRatio.
	InnerRatio  float64 `json:"inner_ratio" toml:"inner_ratio" bson:"inner_ratio"`
	SpreadRatio float64 `json:"spread_ratio" toml:"spread_ratio" bson:"spread_ratio"`

	// JitterStep and JitterCycle perturb the golden-angle step by
	// (i % JitterCycle) * JitterStep so equal weights do not line up.
	JitterStep  float64 `json:"jitter_step" toml:"jitter_step" bson:"jitter_step"`
	JitterCycle int     `json:"jitter_cycle" toml:"jitter_cycle" bson:"jitter_cycle"`
}

// DefaultParams returns the canonical parameter set.
func DefaultParams() Params {
	return Params{
		MinSize:       0.65,
		MaxSize:       1.6,
		BaseSize:      16,
		RadiusScale:   1.6,
		Margin:        3,
		RetryBudget:   50,
		AngleNudge:    0.2,
		DistanceNudge: 5,
		InnerRatio:    0.15,
		SpreadRatio:   0.65,
		JitterStep:    0.1,
		JitterCycle:   3,
	}
}

// ScaleFactor converts a visual size into a bounding-circle radius.
func (p Params) ScaleFactor() float64 {
	return p.BaseSize * p.RadiusScale
}

// Validate reports the first parameter that would make the layout
// meaningless.
func (p Params) Validate() error {
	checks := []struct {
		bad bool
		msg string
	}{
		{!(p.MinSize > 0), fmt.Sprintf("min_size must be positive, got %v", p.MinSize)},
		{!(p.MaxSize >= p.MinSize), fmt.Sprintf("max_size (%v) must be >= min_size (%v)", p.MaxSize, p.MinSize)},
		{!(p.BaseSize > 0), fmt.Sprintf("base_size must be positive, got %v", p.BaseSize)},
		{!(p.RadiusScale > 0), fmt.Sprintf("radius_scale must be positive, got %v", p.RadiusScale)},
		{!(p.Margin >= 0), fmt.Sprintf("margin must not be negative, got %v", p.Margin)},
		{p.RetryBudget < 1, fmt.Sprintf("retry_budget must be at least 1, got %d", p.RetryBudget)},
		{!(p.InnerRatio >= 0), fmt.Sprintf("inner_ratio must not be negative, got %v", p.InnerRatio)},
		{!(p.SpreadRatio >= 0), fmt.Sprintf("spread_ratio must not be negative, got %v", p.SpreadRatio)},
		{p.JitterCycle < 1, fmt.Sprintf("jitter_cycle must be at least 1, got %d", p.JitterCycle)},
	}
	for _, c := range checks {
		if c.bad {
			return errors.New(errors.ErrCodeInvalidArgument, "%s", c.msg)
		}
	}
	return nil
}
