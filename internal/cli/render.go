package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		lf     layoutFlags
		rf     renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json|tags.json|posts-dir]",
		Short: "Render a tag cloud to SVG, PNG or JSON",
		Long: `Render a tag cloud to SVG, PNG or JSON.

The input may be a layout.json file (produced by 'layout'), which is
rendered as-is, or a tags JSON file or posts directory, which is laid out
first. Layout flags only apply to the second case.

With one format the output is written to --output or <input>.<format>.
With several formats --output is used as a base path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &lf, &rf)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, lf.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, layoutHit, err := c.layoutFor(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d tags...", len(layout.Placements)))
	spinner.Start()

	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(ctx, artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats:     layout.Result().Stats,
		cacheHit:  layoutHit && renderHit,
	})
}

// layoutFor reads a layout file as-is or lays out a tag source.
func (c *CLI) layoutFor(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (document.Layout, bool, error) {
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		data, err := os.ReadFile(input)
		if err != nil {
			return document.Layout{}, false, fmt.Errorf("read %s: %w", input, err)
		}
		if document.Detect(data) == document.KindLayout {
			l, err := document.UnmarshalLayout(data)
			if err != nil {
				return document.Layout{}, false, fmt.Errorf("load layout %s: %w", input, err)
			}
			c.Logger.Debug("rendering existing layout", "path", input, "tags", len(l.Placements))
			return l, true, nil
		}
	}

	tags, err := runner.Load(ctx, input)
	if err != nil {
		return document.Layout{}, false, fmt.Errorf("load %s: %w", input, err)
	}
	l, hit, err := runner.LayoutWithCacheInfo(ctx, tags, opts)
	if err != nil {
		return document.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	return l, hit, nil
}
