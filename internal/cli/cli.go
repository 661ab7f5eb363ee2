// Package cli implements the waterfall command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/buildinfo"
	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/config"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/pipeline"
	"github.com/matzehuels/waterfall/pkg/render"
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

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "waterfall",
		Short:        "Waterfall lays out variable-height cards in masonry columns",
		Long:         `Waterfall places fixed-width, variable-height items into the shortest of several columns and grows the layout batch by batch, the way an infinite-scroll page does.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/waterfall/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and attaches the logger to the
// command context.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.config.CacheConfig())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", c.config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Feed Flags
// =============================================================================

// feedFlags selects an item source on the command line. Unset flags fall
// back to the [feed] section of the config file.
type feedFlags struct {
	manifest  string
	url       string
	seed      uint64
	count     int
	minHeight float64
	maxHeight float64
	itemWidth float64
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "read items from a JSON or TOML manifest instead of generating them")
	cmd.Flags().StringVar(&f.url, "url", "", "page items from an HTTP endpoint (GET <url>?offset=&limit=)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for generated items")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "number of generated items (0: from config)")
	cmd.Flags().Float64Var(&f.minHeight, "min-height", 0, "smallest generated item height")
	cmd.Flags().Float64Var(&f.maxHeight, "max-height", 0, "largest generated item height")
	cmd.Flags().Float64Var(&f.itemWidth, "item-width", 0, "width of generated items")
}

// source builds the item source from flags over cfg.
func (f *feedFlags) source(cmd *cobra.Command, cfg config.Feed) (feed.Source, error) {
	if cmd.Flags().Changed("url") || (cfg.Source == config.SourceRemote && cfg.URL != "") {
		u := cfg.URL
		if cmd.Flags().Changed("url") {
			u = f.url
		}
		return feed.NewRemote(u, nil)
	}

	manifest := cfg.Manifest
	if cmd.Flags().Changed("manifest") {
		manifest = f.manifest
	}
	if manifest != "" && (cfg.Source == config.SourceManifest || cmd.Flags().Changed("manifest")) {
		return feed.LoadManifest(manifest)
	}

	opts := feed.SyntheticOptions{
		Seed:      cfg.Seed,
		Count:     cfg.Count,
		Width:     cfg.ItemWidth,
		MinHeight: cfg.MinHeight,
		MaxHeight: cfg.MaxHeight,
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	if cmd.Flags().Changed("count") {
		opts.Count = f.count
	}
	if cmd.Flags().Changed("min-height") {
		opts.MinHeight = f.minHeight
	}
	if cmd.Flags().Changed("max-height") {
		opts.MaxHeight = f.maxHeight
	}
	if cmd.Flags().Changed("item-width") {
		opts.Width = f.itemWidth
	}
	return feed.NewSynthetic(opts)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
