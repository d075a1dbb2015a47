package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/internal/server"
	"github.com/matzehuels/tagcloud/pkg/observability"
)

// serveCommand creates the HTTP service command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

Endpoints:
  POST /v1/layout          tags in, layout JSON out
  POST /v1/render?format=  tags or a layout in, SVG, PNG or JSON out
  GET  /healthz            liveness and cache health
  GET  /metrics            Prometheus metrics

Request defaults come from the [layout] and [render] config sections.
The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, metrics bool) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithDefaults(c.Config.PipelineOptions()),
		server.WithMaxBodyBytes(c.Config.Server.MaxBodyBytes),
	}
	if metrics {
		prom := observability.NewPrometheus(nil)
		prom.Register()
		defer observability.Reset()
		opts = append(opts, server.WithMetrics(prom.Handler()))
	}
	srv := server.New(runner, opts...)

	printInfo("Serving tag clouds")
	printKeyValue("Address", c.Config.Server.Addr)
	printKeyValue("Cache", c.cacheLocation())
	if metrics {
		printKeyValue("Metrics", "/metrics")
	}
	printNewline()

	err = srv.ListenAndServe(ctx, c.Config.Server)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	printSuccess("Server stopped")
	return nil
}
