// Package cli implements the vastmap command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vastmap/internal/config"
	"github.com/matzehuels/vastmap/pkg/buildinfo"
	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
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

	// cfgFile is the --config flag.
	cfgFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Without a subcommand, the root command lays out its argument.
func (c *CLI) RootCommand() *cobra.Command {
	var lf layoutFlags

	root := &cobra.Command{
		Use:   "vastmap [vast.json]",
		Short: "vastmap lays out VAST size reports as treemaps",
		Long: `vastmap reads a VAST size report (a tree of named nodes with optional
sizes), reconciles declared sizes against the sizes of their children, and
writes a TMAP document: the treemap rectangle of every node.`,
		Version:      buildinfo.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(log.WithContext(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args, lf)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ./vastmap.yaml)")
	addLayoutFlags(root, &lf)

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig resolves configuration with cmd's flags on top.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg *config.Config) *pipeline.Runner {
	r := pipeline.NewRunner(nil, c.Logger)
	r.Caps = cfg.Capabilities()
	return r
}

// openStore opens the configured document store.
func (c *CLI) openStore(cfg *config.Config) (store.Store, error) {
	s, err := store.Open(cfg.StoreOptions())
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", s.Name())
	return s, nil
}

// addConfigFlags registers the flags that override config keys.
func addConfigFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("mode", pipeline.DefaultMode, "weighting: aggregate, size, count")
	fs.Float64("width", pipeline.DefaultWidth, "canvas width")
	fs.Float64("height", pipeline.DefaultHeight, "canvas height")
	fs.Float64("ratio", 0, "target aspect ratio of rectangles (default: golden ratio)")
	fs.Bool("render", true, "enable the SVG renderer")
	fs.String("store", store.BackendNone, "document store: none, file, redis")
	fs.String("store-dir", "", "file store directory (default: ~/.cache/vastmap)")
	fs.String("redis-url", "", "redis store URL")
	fs.Duration("ttl", config.DefaultTTL, "lifetime of published documents")
}
