package cloud

// Diagnose checks a finished layout. It counts pairs whose bounding circles
// are closer than their radii plus margin, and placements that extend past
// the bounding radius. It is O(n²) and does not fill Stats.Elapsed or
// Stats.Degraded.
func Diagnose(placements []Placement, radius, margin float64) Stats {
	s := Stats{Placed: len(placements)}
	for i, a := range placements {
		if a.Distance()+a.Radius > radius {
			s.OutOfBounds++
		}
		for _, b := range placements[i+1:] {
			if Overlaps(a, b, margin) {
				s.OverlappingPairs++
			}
		}
	}
	return s
}

// Overlaps reports whether two placements violate the minimum clearance.
func Overlaps(a, b Placement, margin float64) bool {
	return hypot(a.X-b.X, a.Y-b.Y) < a.Radius+b.Radius+margin
}

// OverlappingLabels returns the labels involved in at least one overlap,
// in placement order.
func OverlappingLabels(placements []Placement, margin float64) []string {
	hit := make([]bool, len(placements))
	for i, a := range placements {
		for j := i + 1; j < len(placements); j++ {
			if Overlaps(a, placements[j], margin) {
				hit[i], hit[j] = true, true
			}
		}
	}
	var labels []string
	for i, p := range placements {
		if hit[i] {
			labels = append(labels, p.Label)
		}
	}
	return labels
}
