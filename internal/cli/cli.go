package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pubfig/pkg/buildinfo"
	"github.com/matzehuels/pubfig/pkg/cache"
	"github.com/matzehuels/pubfig/pkg/config"
	"github.com/matzehuels/pubfig/pkg/pipeline"
)

const appName = "pubfig"

// Log levels for main's --verbose handling.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds the state every subcommand shares.
type CLI struct {
	Logger *log.Logger

	// Config is the decoded --config file, or config.Default().
	Config config.File

	configPath string
}

// New returns a CLI logging to w at level, with the built-in config.
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

// RootCommand builds the pubfig command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pubfig renders publication-quality figures",
		Long: `pubfig renders publication-quality scientific figures from tabular data:
serif fonts with LaTeX-style math, inward mirrored ticks and a consistent
scale ratio between label and tick fonts, written as PDF, SVG, EPS or
raster images.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML file with [style], [data] and [figure] defaults")

	root.AddCommand(
		c.renderCommand(),
		c.galleryCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)

	return root
}

// loadConfig reads --config, if given, and attaches the logger to the
// command context.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	if c.configPath == "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// newRunner returns the runner shared by render and gallery: the on-disk
// cache unless noCache is set. A missing home directory disables caching
// rather than failing the command.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	var store cache.Cache = cache.NewNullCache()
	if dir, err := cacheDir(); err == nil && !noCache {
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		store = fc
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// cacheDir is ~/.cache/pubfig on Linux.
var cacheDir = cache.DefaultDir
