package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// configFileName is looked up in configDir when --config is not given.
const configFileName = "config.toml"

// Config is the optional TOML configuration file.
//
//	[chart]
//	palette = "viridis"
//	reverse = false
//	width = 1270
//
//	[legend]
//	buckets = 500
//
//	[fetch]
//	url = "https://example.com/global-temperature.json"
//	timeout = "10s"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Chart   ChartConfig   `toml:"chart"`
	Legend  LegendConfig  `toml:"legend"`
	Tooltip TooltipConfig `toml:"tooltip"`
	Fetch   FetchConfig   `toml:"fetch"`
	Cache   CacheConfig   `toml:"cache"`
	Metrics MetricsConfig `toml:"metrics"`

	// path is the file the config was read from, empty when none was found.
	path string
}

// ChartConfig holds the [chart] table.
type ChartConfig struct {
	Width     float64  `toml:"width"`
	Height    float64  `toml:"height"`
	CellWidth float64  `toml:"cell_width"`
	XTicks    int      `toml:"x_ticks"`
	Palette   string   `toml:"palette"`
	Reverse   *bool    `toml:"reverse"`
	Formats   []string `toml:"formats"`
	Scale     float64  `toml:"png_scale,omitempty"`
}

// LegendConfig holds the [legend] table.
type LegendConfig struct {
	Buckets int     `toml:"buckets"`
	Width   float64 `toml:"width"`
	Ticks   int     `toml:"ticks"`
	Unit    string  `toml:"unit"`
}

// TooltipConfig holds the [tooltip] table.
type TooltipConfig struct {
	Enabled *bool    `toml:"enabled"`
	OffsetX float64  `toml:"offset_x"`
	OffsetY *float64 `toml:"offset_y"`
	Opacity float64  `toml:"opacity"`
}

// FetchConfig holds the [fetch] table.
type FetchConfig struct {
	URL     string            `toml:"url"`
	Timeout string            `toml:"timeout"`
	Headers map[string]string `toml:"headers,omitempty"`
}

// CacheConfig holds the [cache] table.
type CacheConfig struct {
	Disabled bool   `toml:"disabled,omitempty"`
	Dir      string `toml:"dir,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`
}

// MetricsConfig holds the [metrics] table.
type MetricsConfig struct {
	File string `toml:"file,omitempty"`
}

// Path returns the file the config was read from.
func (c *Config) Path() string { return c.path }

// loadConfig reads path, or the default config file when path is empty.
// A missing default file yields an empty Config; a missing explicit file is
// an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if _, err := cfg.timeout(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.path = path
	return &cfg, nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Fetch.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("fetch.timeout: %w", err)
	}
	return d, nil
}

// applyTo copies configured values into opts for every setting whose flag the
// user did not set explicitly. Flag names are the render command's.
func (c *Config) applyTo(opts *pipeline.Options, flags *pflag.FlagSet) {
	unset := func(name string) bool {
		f := flags.Lookup(name)
		return f == nil || !f.Changed
	}

	ch := &opts.Chart
	if c.Chart.Width > 0 && unset("width") {
		ch.Frame.Width = c.Chart.Width
	}
	if c.Chart.Height > 0 && unset("height") {
		ch.Frame.Height = c.Chart.Height
	}
	if c.Chart.CellWidth > 0 && unset("cell-width") {
		ch.CellWidth = c.Chart.CellWidth
	}
	if c.Chart.XTicks > 0 && unset("x-ticks") {
		ch.XTicks = c.Chart.XTicks
	}
	if c.Chart.Palette != "" && unset("palette") {
		ch.Color.Palette = c.Chart.Palette
	}
	if c.Chart.Reverse != nil && unset("reverse") {
		ch.Color.Reverse = *c.Chart.Reverse
	}
	if len(c.Chart.Formats) > 0 && unset("format") {
		opts.Formats = c.Chart.Formats
	}
	if c.Chart.Scale > 0 && unset("scale") {
		opts.Scale = c.Chart.Scale
	}

	if c.Legend.Buckets > 0 && unset("buckets") {
		ch.Legend.Buckets = c.Legend.Buckets
	}
	if c.Legend.Width > 0 && unset("legend-width") {
		ch.Legend.Width = c.Legend.Width
	}
	if c.Legend.Ticks > 0 && unset("legend-ticks") {
		ch.Legend.MaxTicks = c.Legend.Ticks
	}
	if c.Legend.Unit != "" && unset("unit") {
		ch.Legend.Unit = c.Legend.Unit
		ch.Tooltip.Unit = c.Legend.Unit
	}

	if c.Tooltip.Enabled != nil && unset("no-tooltips") {
		opts.Tooltips = *c.Tooltip.Enabled
	}
	if c.Tooltip.OffsetX > 0 && unset("tooltip-x") {
		ch.Tooltip.OffsetX = c.Tooltip.OffsetX
	}
	if c.Tooltip.OffsetY != nil && unset("tooltip-y") {
		ch.Tooltip.OffsetY = *c.Tooltip.OffsetY
	}
	if c.Tooltip.Opacity > 0 {
		ch.Tooltip.Opacity = c.Tooltip.Opacity
	}

	if c.Fetch.URL != "" && unset("url") && unset("input") {
		opts.URL = c.Fetch.URL
	}
	if d, _ := c.timeout(); d > 0 && unset("timeout") {
		opts.Timeout = d
	}
	if len(c.Fetch.Headers) > 0 {
		opts.Headers = c.Fetch.Headers
	}
}

// writeDefaultConfig writes a commented starter config to path.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reverse := true
	enabled := true
	def := pipeline.DefaultOptions()
	offsetY := def.Chart.Tooltip.OffsetY
	starter := Config{
		Chart: ChartConfig{
			Width:     def.Chart.Frame.Width,
			Height:    def.Chart.Frame.Height,
			CellWidth: def.Chart.CellWidth,
			XTicks:    def.Chart.XTicks,
			Palette:   def.Chart.Color.Palette,
			Reverse:   &reverse,
			Formats:   def.Formats,
		},
		Legend: LegendConfig{
			Buckets: def.Chart.Legend.Buckets,
			Width:   def.Chart.Legend.Width,
			Ticks:   def.Chart.Legend.MaxTicks,
			Unit:    def.Chart.Legend.Unit,
		},
		Tooltip: TooltipConfig{
			Enabled: &enabled,
			OffsetX: def.Chart.Tooltip.OffsetX,
			OffsetY: &offsetY,
			Opacity: def.Chart.Tooltip.Opacity,
		},
		Fetch: FetchConfig{
			URL:     def.URL,
			Timeout: def.Timeout.String(),
		},
	}
	fmt.Fprintln(f, "# thermogrid configuration. Command-line flags override these values.")
	return toml.NewEncoder(f).Encode(starter)
}

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a starter config file with the default settings",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			if err := writeDefaultConfig(path); err != nil {
				return err
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file path",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, configFileName), nil
}
