package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
)

// tagsCommand creates the tags command that counts tags from posts.
func (c *CLI) tagsCommand() *cobra.Command {
	var (
		output string
		top    int
		table  bool
	)

	cmd := &cobra.Command{
		Use:   "tags [posts-dir]",
		Short: "Count tags across Markdown posts",
		Long: `Count tags across Markdown posts.

Reads every *.md file in the posts directory (default: posts.dir from the
config), counts how many posts carry each front matter tag, and writes a
tags JSON file that 'layout' and 'render' accept.

Without --output the JSON goes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.Config.Posts.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runTags(cmd.Context(), dir, output, top, table)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&top, "top", 0, "keep only the N heaviest tags (0 keeps all)")
	cmd.Flags().BoolVar(&table, "table", false, "print a table instead of JSON")

	return cmd
}

func (c *CLI) runTags(ctx context.Context, dir, output string, top int, asTable bool) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	tags, err := runner.Load(ctx, dir)
	if err != nil {
		return fmt.Errorf("load tags from %s: %w", dir, err)
	}
	prog.done(fmt.Sprintf("Counted %d tags in %s", len(tags), dir))

	tags = topTags(tags, top)

	if asTable {
		fmt.Println(tagsTable(tags))
		return nil
	}

	out, err := openOutput(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := writeTags(out, tags); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	printSuccess("Counted %d tags", len(tags))
	printFile(output)
	printNewline()
	printNextStep("Layout", "tagcloud layout "+output)
	return nil
}

// topTags keeps the n heaviest tags. Ties keep their input order.
func topTags(tags []cloud.Tag, n int) []cloud.Tag {
	if n <= 0 || n >= len(tags) {
		return tags
	}
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b cloud.Tag) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	return sorted[:n]
}

func writeTags(w io.Writer, tags []cloud.Tag) error {
	return document.WriteTags(document.FromTags(tags), w)
}

func tagsTable(tags []cloud.Tag) string {
	rows := make([][]string, len(tags))
	for i, t := range tags {
		rows[i] = []string{strconv.Itoa(i + 1), t.Label, strconv.Itoa(t.Weight)}
	}
	return renderTable([]string{"#", "Tag", "Posts"}, rows, nil)
}
