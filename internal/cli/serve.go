package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubfig/internal/server"
	"github.com/matzehuels/pubfig/pkg/cache"
	"github.com/matzehuels/pubfig/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	redisAddr     string
	redisPassword string
	redisDB       int
	noCache       bool
}

// serveCommand runs the HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Run an HTTP service that renders gallery figures and uploaded tables.

Rendered figures are cached on disk, or in Redis when --redis is given so
that several instances share one cache. The [style] table of --config sets
the defaults requests start from.`,
		Example: `  pubfig serve --addr :9000
  curl --data-binary @data.csv 'localhost:9000/v1/render?kind=scatter-fit&format=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	f.StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared artifact cache (host:port)")
	f.StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	f.IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

// serverRunner picks the cache backing the service.
func (c *CLI) serverRunner(ctx context.Context, o *serveOpts) (*pipeline.Runner, error) {
	if o.redisAddr == "" || o.noCache {
		return c.newRunner(o.noCache)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     o.redisAddr,
		Password: o.redisPassword,
		DB:       o.redisDB,
	})
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}

func (c *CLI) runServe(ctx context.Context, o *serveOpts) error {
	logger := loggerFromContext(ctx)
	runner, err := c.serverRunner(ctx, o)
	if err != nil {
		return err
	}
	defer runner.Close()

	if o.redisAddr != "" && !o.noCache {
		logger.Info("using redis cache", "addr", o.redisAddr, "db", o.redisDB)
	}
	srv := server.New(runner, c.Config.Style, logger)
	err = srv.ListenAndServe(ctx, o.addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
