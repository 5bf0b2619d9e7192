package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastman/sbml-diff/internal/server"
	"github.com/kastman/sbml-diff/pkg/cache"
	"github.com/kastman/sbml-diff/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string // listen address
	redisAddr  string // Redis address for the shared artifact cache
	mongoURI   string // MongoDB connection string for run history
	mongoDB    string // MongoDB database name
	noCache    bool   // disable artifact caching
	configPath string // explicit config file
}

// newServeCmd creates the serve command for running the comparison API.
func newServeCmd() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP comparison API",
		Long: `Serve exposes the comparison pipeline over HTTP.

Without --redis the artifact cache is file-based and without --mongo-uri
run history is kept in memory, so a bare "sbml-diff serve" works for a
single instance. Multi-instance deployments should point both at shared
backends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared artifact cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string for run history")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database name (default sbmldiff)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/sbml-diff/sbml-diff.toml)")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyServeConfig(&cfg.Server, opts)

	artifactCache, err := newServerCache(ctx, cfg, opts)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer artifactCache.Close()

	store, err := newStore(ctx, cfg.Server)
	if err != nil {
		return fmt.Errorf("init run history: %w", err)
	}
	defer store.Close(context.Background())

	runner := pipeline.NewRunner(artifactCache, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(runner, store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving comparison API", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// applyServeConfig overlays serve flags onto the config values.
func applyServeConfig(cfg *ServerConfig, opts *serveOpts) {
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.redisAddr != "" {
		cfg.RedisAddr = opts.redisAddr
	}
	if opts.mongoURI != "" {
		cfg.MongoURI = opts.mongoURI
	}
	if opts.mongoDB != "" {
		cfg.MongoDB = opts.mongoDB
	}
}

func newServerCache(ctx context.Context, cfg Config, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Server.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cfg.Server.RedisAddr)
	}
	return newFileCache(cfg, false), nil
}

func newStore(ctx context.Context, cfg ServerConfig) (server.Store, error) {
	if cfg.MongoURI != "" {
		return server.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	}
	return server.NewMemoryStore(), nil
}
