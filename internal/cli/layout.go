package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// layoutCommand creates the layout command for computing tag placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tags.json|posts-dir]",
		Short: "Compute tag placements",
		Long: `Compute tag placements.

The layout command takes a tags JSON file (produced by 'tags') or a posts
directory and places every tag around the heaviest one. The output is a
layout.json file that 'render' turns into SVG or PNG.

Results are cached; the same tags and options reuse the cached layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the tags, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	tags, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Placing %d tags...", len(tags)))
	spinner.Start()

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, tags, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := document.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	stats := layout.Result().Stats
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(stats, cacheHit)
	warnDegraded(stats)
	printNewline()
	printNextStep("Render", "tagcloud render "+outputPath)

	return nil
}
