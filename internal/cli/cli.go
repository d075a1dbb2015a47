// Package cli implements the tagcloud command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/buildinfo"
	"github.com/matzehuels/tagcloud/pkg/cache"
	"github.com/matzehuels/tagcloud/pkg/config"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tagcloud"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tagcloud lays out weighted tags as a packed radial cloud",
		Long:         `Tagcloud counts the tags of a Markdown blog, places them around the heaviest one without overlaps, and renders the result as SVG, PNG or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tagcloud/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.tagsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies the log level. --verbose wins
// over the configured level.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.Config.Keyer(), c.Logger), nil
}

// openCache opens the configured backend. The file backend defaults to
// the XDG cache directory; if that cannot be resolved caching is skipped.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.Config.CacheOptions()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return ch, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tagcloud/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// basePath derives the output path prefix. An empty output strips the
// extension from input; a known format extension is stripped from output.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, string(filepath.Separator))
		base = strings.TrimSuffix(base, filepath.Ext(base))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if document.ValidFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{document.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// layoutFlags holds layout flags. Only flags the user set override the
// configuration.
type layoutFlags struct {
	radius   float64
	seed     uint64
	fallback string
	noCache  bool
	refresh  bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.radius, "radius", "r", pipeline.DefaultRadius, "bounding radius in layout units")
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed for the start angle")
	cmd.Flags().StringVar(&f.fallback, "fallback", "accept", "placement after the retry budget: accept, least-overlap")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("radius") {
		opts.Radius = f.radius
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	if cmd.Flags().Changed("fallback") {
		opts.Fallback = f.fallback
	}
	opts.Refresh = f.refresh
}

// renderFlags holds render flags.
type renderFlags struct {
	formats  string
	style    string
	scale    float64
	padding  float64
	overlaps bool
	animate  bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&f.style, "style", pipeline.DefaultStyle, "visual style: bubble (default), plain")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().Float64Var(&f.padding, "padding", pipeline.DefaultPadding, "canvas padding around the cloud")
	cmd.Flags().BoolVar(&f.overlaps, "overlaps", false, "outline overlapping tags in red")
	cmd.Flags().BoolVar(&f.animate, "animate", false, "fade tags in by rank (svg)")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if cmd.Flags().Changed("style") {
		opts.Style = f.style
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	if cmd.Flags().Changed("padding") {
		p := f.padding
		opts.Padding = &p
	}
	if cmd.Flags().Changed("overlaps") {
		opts.Overlaps = f.overlaps
	}
	if cmd.Flags().Changed("animate") {
		opts.Animate = f.animate
	}
}

// options starts from the configuration and applies the flags that were
// set on cmd.
func (c *CLI) options(cmd *cobra.Command, lf *layoutFlags, rf *renderFlags) (pipeline.Options, error) {
	opts := c.Config.PipelineOptions()
	if lf != nil {
		lf.apply(cmd, &opts)
	}
	if rf != nil {
		rf.apply(cmd, &opts)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	c.Logger.Debug("options", "opts", opts.String())
	return opts, nil
}
