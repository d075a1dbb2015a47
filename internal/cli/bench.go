package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// benchCommand creates the diagnostic harness command.
func (c *CLI) benchCommand() *cobra.Command {
	var (
		opts   pipeline.BenchOptions
		sizes  []int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure layout quality on synthetic tag sets",
		Long: `Measure layout quality on synthetic tag sets.

Lays out one generated tag set per size and reports overlapping pairs,
boundary violations, fallback placements and time. Sizes run in parallel.

Generators:
  power-law  weight of tag i is 100/(i+1)
  uniform    every tag weighs 10
  random     weights drawn uniformly from [1, 100] with --seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sizes = sizes
			if !cmd.Flags().Changed("radius") {
				opts.Radius = c.Config.Layout.Radius
			}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = c.Config.Layout.Seed
			}
			if !cmd.Flags().Changed("fallback") {
				opts.Fallback = c.Config.Layout.Fallback
			}
			opts.Params = c.Config.Layout.Params
			return c.runBench(cmd.Context(), opts, asJSON)
		},
	}

	cmd.Flags().IntSliceVar(&sizes, "sizes", pipeline.DefaultBenchSizes, "tag counts to lay out")
	cmd.Flags().StringVarP(&opts.Generator, "generator", "g", pipeline.GeneratorPowerLaw, "tag generator: "+strings.Join(pipeline.Generators, ", "))
	cmd.Flags().Float64VarP(&opts.Radius, "radius", "r", pipeline.DefaultRadius, "bounding radius in layout units")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed for layouts and the random generator")
	cmd.Flags().StringVar(&opts.Fallback, "fallback", "accept", "placement after the retry budget: accept, least-overlap")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "parallel layouts (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

func (c *CLI) runBench(ctx context.Context, opts pipeline.BenchOptions, asJSON bool) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d tag sets...", len(opts.Sizes)))
	spinner.Start()

	prog := newProgress(c.Logger)
	results, err := pipeline.Bench(ctx, opts)
	if err != nil {
		spinner.StopWithError("Bench failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Benchmarked %d sizes", len(results)))

	if asJSON {
		return writeBenchJSON(os.Stdout, results)
	}

	fmt.Println(StyleTitle.Render("Layout quality") + " " + StyleDim.Render("("+opts.Generator+")"))
	fmt.Println(benchTable(results))

	total := pipeline.BenchTotal(results)
	if total.Clean() {
		printSuccess("No overlaps or boundary violations")
	} else {
		printWarning("%d overlapping pairs and %d out of bounds across %d tags",
			total.Stats.OverlappingPairs, total.Stats.OutOfBounds, total.Size)
	}
	return nil
}

func benchTable(results []pipeline.BenchResult) string {
	rows := make([][]string, 0, len(results)+1)
	dirty := make(map[int]bool)
	for i, r := range results {
		rows = append(rows, benchRow(strconv.Itoa(r.Size), r))
		if !r.Clean() {
			dirty[i] = true
		}
	}
	rows = append(rows, benchRow("total", pipeline.BenchTotal(results)))

	return renderTable(
		[]string{"Tags", "Placed", "Overlaps", "Ratio", "Out of bounds", "Fallback", "Time"},
		rows, dirty,
	)
}

func benchRow(label string, r pipeline.BenchResult) []string {
	ratio := "-"
	if label != "total" {
		ratio = formatPercent(r.OverlapRatio)
	}
	return []string{
		label,
		strconv.Itoa(r.Stats.Placed),
		strconv.Itoa(r.Stats.OverlappingPairs),
		ratio,
		strconv.Itoa(r.Stats.OutOfBounds),
		strconv.Itoa(r.Stats.Degraded),
		formatDuration(r.Stats.Elapsed.Seconds()),
	}
}

// benchRecord is the JSON shape of one bench row.
type benchRecord struct {
	Size         int            `json:"size"`
	Stats        document.Stats `json:"stats"`
	OverlapRatio float64        `json:"overlap_ratio"`
	Clean        bool           `json:"clean"`
}

func writeBenchJSON(w io.Writer, results []pipeline.BenchResult) error {
	records := make([]benchRecord, len(results))
	for i, r := range results {
		records[i] = benchRecord{
			Size: r.Size,
			Stats: document.Stats{
				Placed:           r.Stats.Placed,
				OverlappingPairs: r.Stats.OverlappingPairs,
				OutOfBounds:      r.Stats.OutOfBounds,
				Degraded:         r.Stats.Degraded,
				ElapsedMS:        float64(r.Stats.Elapsed) / float64(time.Millisecond),
			},
			OverlapRatio: r.OverlapRatio,
			Clean:        r.Clean(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
