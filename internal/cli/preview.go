package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// Canvas styles
var (
	canvasHeavyStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	canvasNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	canvasLightStyle    = lipgloss.NewStyle().Foreground(colorGray)
	canvasDegradedStyle = lipgloss.NewStyle().Foreground(colorYellow)
	canvasBorderStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

const (
	defaultCanvasWidth  = 72
	defaultCanvasHeight = 24
	minCanvasWidth      = 20
	minCanvasHeight     = 8
	radiusStep          = 1.25
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "preview [tags.json|posts-dir]",
		Short: "Preview a layout in the terminal",
		Long: `Preview a layout in the terminal.

Draws the placed labels on a character grid scaled to the bounding radius.
Keys: r reseeds, + and - grow or shrink the radius, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), args[0], opts)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	tags, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	model, err := NewPreviewModel(tags, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// PreviewModel - Interactive layout preview
// =============================================================================

// PreviewModel is the bubbletea model for the layout preview.
type PreviewModel struct {
	Tags   []cloud.Tag
	Opts   pipeline.Options
	Layout document.Layout
	Err    error
	Width  int
	Height int
}

// NewPreviewModel lays out tags once and returns the model. opts must
// already be validated for layout.
func NewPreviewModel(tags []cloud.Tag, opts pipeline.Options) (PreviewModel, error) {
	m := PreviewModel{
		Tags:   tags,
		Opts:   opts,
		Width:  defaultCanvasWidth,
		Height: defaultCanvasHeight,
	}
	l, err := pipeline.ComputeLayout(tags, opts)
	if err != nil {
		return m, err
	}
	m.Layout = l
	return m, nil
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.Opts.Seed++
			m = m.relayout()
		case "+", "=":
			m.Opts.Radius *= radiusStep
			m = m.relayout()
		case "-":
			m.Opts.Radius /= radiusStep
			m = m.relayout()
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-2, minCanvasWidth)
		m.Height = max(msg.Height-6, minCanvasHeight)
	}
	return m, nil
}

func (m PreviewModel) relayout() PreviewModel {
	l, err := pipeline.ComputeLayout(m.Tags, m.Opts)
	m.Err = err
	if err == nil {
		m.Layout = l
	}
	return m
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tag cloud"))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("radius=%.0f seed=%d tags=%d", m.Opts.Radius, m.Opts.Seed, len(m.Layout.Placements))))
	b.WriteString("\n")

	b.WriteString(canvasBorderStyle.Render(m.canvas()))
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(StyleError.Render(m.Err.Error()))
	} else {
		s := m.Layout.Stats
		line := fmt.Sprintf("overlaps %d  out of bounds %d  fallback %d", s.OverlappingPairs, s.OutOfBounds, s.Degraded)
		if s.OverlappingPairs == 0 && s.OutOfBounds == 0 {
			b.WriteString(StyleSuccess.Render(line))
		} else {
			b.WriteString(StyleWarning.Render(line))
		}
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r reseed  +/- radius  q quit"))
	return b.String()
}

// canvas draws each label centered on its position. The grid spans the
// square around the bounding circle, stretched to the terminal size.
// Heavier tags are drawn last so they stay readable where labels collide.
func (m PreviewModel) canvas() string {
	w, h := m.Width, m.Height
	grid := make([][]rune, h)
	owner := make([][]int, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
		owner[y] = make([]int, w)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}

	radius := m.Layout.Radius
	if radius <= 0 {
		radius = 1
	}
	sx := float64(w) / (2 * radius)
	sy := float64(h) / (2 * radius)

	ps := m.Layout.Placements
	for i := len(ps) - 1; i >= 0; i-- {
		p := ps[i]
		col := int(math.Round((p.X+radius)*sx)) - len([]rune(p.Label))/2
		row := int(math.Round((p.Y + radius) * sy))
		if row < 0 || row >= h {
			continue
		}
		for j, r := range []rune(p.Label) {
			x := col + j
			if x < 0 || x >= w {
				continue
			}
			grid[row][x] = r
			owner[row][x] = i
		}
	}

	lines := make([]string, h)
	for y := range grid {
		var line strings.Builder
		for x, r := range grid[y] {
			i := owner[y][x]
			if i < 0 {
				line.WriteRune(r)
				continue
			}
			line.WriteString(m.styleFor(i).Render(string(r)))
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (m PreviewModel) styleFor(i int) lipgloss.Style {
	p := m.Layout.Placements[i]
	switch {
	case p.Degraded:
		return canvasDegradedStyle
	case i == 0 || p.Rank <= len(m.Layout.Placements)/10:
		return canvasHeavyStyle
	case p.Rank <= len(m.Layout.Placements)/2:
		return canvasNormalStyle
	default:
		return canvasLightStyle
	}
}
