package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/citytour/pkg/observability"
	"github.com/matzehuels/citytour/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Serve the solver over HTTP.

Endpoints:
  POST /v1/solve    tour as JSON
  POST /v1/render   tour diagram (svg, png or dot)
  GET  /healthz     liveness probe
  GET  /metrics     Prometheus metrics

The cache backend comes from the [cache] section of the config file, so
several instances can share one Redis or MongoDB cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = duration{timeout}
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServerAddr, "listen address (default: config server.addr)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request time limit (0 disables it)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srvCfg := server.Config{
		MaxBodyBytes: cfg.MaxBodyBytes,
		SolveTimeout: cfg.Timeout.Duration,
	}
	if cfg.metricsEnabled() {
		reg := newMetricsRegistry()
		srvCfg.Gatherer = reg
		defer observability.Reset()
	}

	c.Logger.Info("starting server", "addr", cfg.Addr, "cache", c.Config.Cache.Backend, "metrics", cfg.metricsEnabled())
	return server.New(runner, c.Logger, srvCfg).ListenAndServe(ctx, cfg.Addr)
}

// newMetricsRegistry creates a registry with the process collectors and
// registers Prometheus-backed hooks for the pipeline, cache and API.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return reg
}
