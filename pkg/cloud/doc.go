// Package cloud computes tag-cloud layouts.
//
// A tag cloud places weighted labels inside a circle so that heavier tags
// are drawn larger and closer to the centre while no two bounding circles
// overlap. The engine is a center-first spiral: the heaviest tag sits at the
// origin, every other tag gets a target distance derived from its weight and
// an angle advanced by the golden angle, then nudges outward until it finds
// a free spot or runs out of attempts.
//
// # Usage
//
//	tags := []cloud.Tag{
//	    {Label: "go", Weight: 12},
//	    {Label: "rust", Weight: 7},
//	    {Label: "notes", Weight: 1},
//	}
//	res, err := cloud.Compute(tags, 300, cloud.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Placements {
//	    fmt.Printf("%s at (%.1f, %.1f) size %.2f\n", p.Label, p.X, p.Y, p.Size)
//	}
//
// # Degradation
//
// Dense inputs, especially many tags of equal weight, can exhaust the retry
// budget. Compute never fails for that reason: the tag is placed according
// to the configured [Fallback] and flagged as [Placement.Degraded]. The
// [Stats] returned with every [Result] report overlapping pairs and boundary
// violations so callers can decide to retry with a larger radius.
//
// # Concurrency
//
// Compute keeps no package state. Each call owns its random source, so
// concurrent calls are independent and a fixed seed via [WithSeed] makes a
// call reproducible.
package cloud
