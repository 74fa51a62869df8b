// Package cli implements the citytour command-line interface.
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

	"github.com/matzehuels/citytour/pkg/buildinfo"
	"github.com/matzehuels/citytour/pkg/cache"
	"github.com/matzehuels/citytour/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "citytour"
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
	Config     Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Citytour finds short round trips through a set of cities",
		Long: `Citytour reads a cost matrix between cities and computes a short tour that
visits every city once, using row and column reduction with regret scoring.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/citytour/config.toml)")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

func newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	case backendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.MongoURI, Database: appName})
		if err != nil {
			return nil, fmt.Errorf("mongo cache: %w", err)
		}
		return mc, nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/citytour/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// matrixFlags are the load and optimize flags shared by solve and render.
type matrixFlags struct {
	start     string
	mode      string
	delimiter string
	sheet     string
	format    string
	refresh   bool
	noCache   bool
}

func (f *matrixFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "start city (default: config start_city, then the first city)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "matrix mode: symmetric (default), asymmetric")
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", "", "cell delimiter for csv matrices (default \";\")")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet of an xlsx matrix (default: first sheet)")
	cmd.Flags().StringVar(&f.format, "matrix-format", "", "matrix format: csv, xlsx, json (default: from extension)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if the tour is cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	registerMatrixCompletions(cmd)
}

// options merges flags over the config file into pipeline options. The
// matrix path argument wins over matrix_path from the config.
func (c *CLI) options(args []string, f *matrixFlags) (pipeline.Options, error) {
	path := c.Config.MatrixPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return pipeline.Options{}, fmt.Errorf("no matrix file given (pass one or set matrix_path in the config)")
	}
	return pipeline.Options{
		MatrixPath: path,
		Format:     f.format,
		Delimiter:  firstNonEmpty(f.delimiter, c.Config.Delimiter),
		Sheet:      f.sheet,
		Start:      firstNonEmpty(f.start, c.Config.StartCity),
		Mode:       firstNonEmpty(f.mode, c.Config.Mode),
		Refresh:    f.refresh,
		Logger:     c.Logger,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
