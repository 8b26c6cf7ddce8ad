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

	"github.com/matzehuels/thermogrid/pkg/cache"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "thermogrid"

	// envRedisURL selects the Redis cache backend when set.
	envRedisURL = "THERMOGRID_REDIS_URL"

	// annotationSkipConfig marks commands that must run without a readable
	// config file.
	annotationSkipConfig = "thermogrid/skip-config"
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

	configPath  string
	metricsFile string
	config      *Config
	flushHooks  func() error
}

// New creates a CLI whose logger writes to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Thermogrid renders monthly temperature anomalies as a heatmap",
		Long: `Thermogrid fetches a monthly global land-surface temperature dataset and
renders it as a year × month heatmap with a color legend, axes and hover
tooltips. Output can be SVG, PNG, PDF or a JSON export of the computed marks.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if cmd.Annotations[annotationSkipConfig] != "" {
				return nil
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			if cfg.Path() != "" {
				c.Logger.Debug("loaded config", "file", cfg.Path())
			}
			if cfg.Metrics.File != "" && !cmd.Flags().Changed("metrics-file") {
				c.metricsFile = cfg.Metrics.File
			}
			if c.metricsFile != "" {
				c.flushHooks = installMetrics(c.metricsFile)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.flushMetrics()
		},
	}

	root.SetVersionTemplate(versionTemplate())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/thermogrid/config.toml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Close flushes pending metrics. main defers it so failed runs are recorded too.
func (c *CLI) Close() error { return c.flushMetrics() }

// flushMetrics writes collected metrics once. Safe to call when metrics are off.
func (c *CLI) flushMetrics() error {
	if c.flushHooks == nil {
		return nil
	}
	flush := c.flushHooks
	c.flushHooks = nil
	if err := flush(); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "file", c.metricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheSettings selects a cache backend.
type cacheSettings struct {
	disabled bool
	redisURL string
	prefix   string
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cs cacheSettings) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, cs)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cs.prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cs.prefix)
	}
	return pipeline.NewRunner(cache.Instrument(backend), keyer, loggerFromContext(ctx)), nil
}

func (c *CLI) newCache(ctx context.Context, cs cacheSettings) (cache.Cache, error) {
	if cs.disabled {
		return cache.NewNullCache(), nil
	}
	if cs.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cs.redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheSettingsFrom merges flags, environment and config. Flags win.
func (c *CLI) cacheSettingsFrom(cmd *cobra.Command, noCache bool, redisURL string) cacheSettings {
	cs := cacheSettings{disabled: noCache, redisURL: redisURL}
	cfg := c.cfg()
	if !cmd.Flags().Changed("no-cache") && cfg.Cache.Disabled {
		cs.disabled = true
	}
	if cs.redisURL == "" {
		cs.redisURL = os.Getenv(envRedisURL)
	}
	if cs.redisURL == "" {
		cs.redisURL = cfg.Cache.RedisURL
	}
	cs.prefix = cfg.Cache.Prefix
	return cs
}

func (c *CLI) cfg() *Config {
	if c.config == nil {
		return &Config{}
	}
	return c.config
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory. A [cache] dir setting wins over
// the XDG default (~/.cache/thermogrid/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.cfg().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/thermogrid/).
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

// configDir returns the config directory using XDG standard (~/.config/thermogrid/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout when path is "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
