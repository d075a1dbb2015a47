package cloud

import "math"

// VisualSize maps a weight into [p.MinSize, p.MaxSize] on a logarithmic
// curve so that weight-1 tags stay legible next to a dominant tag:
//
//	normalized = weight / maxWeight
//	logFactor  = log10(normalized*9 + 1)
//	size       = MinSize + logFactor*(MaxSize-MinSize)
//
// Weights are clamped to [0, maxWeight]. A non-positive maxWeight yields
// MinSize.
func VisualSize(weight, maxWeight int, p Params) float64 {
	if maxWeight <= 0 {
		return p.MinSize
	}
	normalized := float64(min(max(weight, 0), maxWeight)) / float64(maxWeight)
	logFactor := math.Log10(normalized*9 + 1)
	return p.MinSize + logFactor*(p.MaxSize-p.MinSize)
}
