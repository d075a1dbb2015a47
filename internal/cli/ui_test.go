package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.000042, "42µs"},
		{0.0123, "12.3ms"},
		{2.5, "2.50s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "0.0%"},
		{0.125, "12.5%"},
		{1, "100.0%"},
	}
	for _, tt := range tests {
		if got := formatPercent(tt.ratio); got != tt.want {
			t.Errorf("formatPercent(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestBenchTable(t *testing.T) {
	results := []pipeline.BenchResult{
		{Size: 5, Stats: cloud.Stats{Placed: 5, Elapsed: time.Millisecond}},
		{Size: 500, Stats: cloud.Stats{Placed: 500, OverlappingPairs: 12, Degraded: 3, Elapsed: 40 * time.Millisecond}, OverlapRatio: 12.0 / 124750},
	}

	out := benchTable(results)
	for _, want := range []string{"Tags", "Overlaps", "500", "12", "total", "505"} {
		if !strings.Contains(out, want) {
			t.Errorf("bench table missing %q:\n%s", want, out)
		}
	}
}

func TestTagsTable(t *testing.T) {
	out := tagsTable([]cloud.Tag{{"go", 3}, {"rust", 1}})
	for _, want := range []string{"Tag", "Posts", "go", "rust"} {
		if !strings.Contains(out, want) {
			t.Errorf("tags table missing %q:\n%s", want, out)
		}
	}
}
