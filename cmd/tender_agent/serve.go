package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/tender-intel/internal/cache"
	"github.com/jonathan/tender-intel/internal/config"
	"github.com/jonathan/tender-intel/internal/fetch"
	"github.com/jonathan/tender-intel/internal/server"
	"github.com/jonathan/tender-intel/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort      int
	serveSources   []string
	serveStaticDir string
	serveBuildSHA  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start an HTTP server that loads the tender payload from the configured sources, ` +
		`caches it, and exposes the classified rows, calendar, summary and scraper health endpoints.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringSliceVar(&serveSources, "source", nil, "Payload source URL or path, in fallback order (repeatable, overrides config)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Directory of dashboard static files to serve at / (overrides config)")
	serveCmd.Flags().StringVar(&serveBuildSHA, "sha", "", "Build SHA reported in summaries (default: GITHUB_SHA or VERCEL_GIT_COMMIT_SHA)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if len(serveSources) > 0 {
		cfg.Sources = serveSources
	}
	if serveStaticDir != "" {
		cfg.Server.StaticDir = serveStaticDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.Sources) == 0 {
		log.Warn("no payload sources configured; serving the seed payload")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	loader := fetch.NewLoader(store, &fetch.LoaderConfig{
		Sources:  cfg.Sources,
		CacheKey: cfg.Cache.Key,
		Options: &fetch.Options{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
		},
	}, log)

	watcher, err := fetch.NewWatcher(cfg.Sources, loader, log)
	if err != nil {
		log.Warn("payload file watching disabled", zap.Error(err))
	} else {
		if watcher.Watching() > 0 {
			log.Info("watching local payload files", zap.Int("files", watcher.Watching()))
			go watcher.Run(ctx)
		}
		defer watcher.Close()
	}

	sha := serveBuildSHA
	if sha == "" {
		sha = buildSHAFromEnv()
	}

	srv := server.New(serverConfig(cfg, sha), loader, log)
	return srv.Run(ctx)
}

// newStore builds the configured cache backend. The redis backend must answer
// a ping before the server starts.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rs := cache.NewRedisStore(cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.Redis.Address, err)
		}
		log.Info("using redis payload cache", zap.String("address", cfg.Cache.Redis.Address))
		return rs, func() { _ = rs.Close() }, nil
	default:
		log.Info("using in-memory payload cache", zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryStore(cfg.Cache.TTL), func() {}, nil
	}
}

// serverConfig maps the service config onto the HTTP server's settings.
func serverConfig(cfg *config.Config, sha string) server.Config {
	whitelist := make(map[string]bool, len(cfg.RateLimit.Whitelist))
	for _, ip := range cfg.RateLimit.Whitelist {
		whitelist[ip] = true
	}

	return server.Config{
		Port:            cfg.Server.Port,
		StaticDir:       cfg.Server.StaticDir,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		HideOutOfScope:  cfg.Dashboard.HideOutOfScope,
		ScoreMissing:    cfg.Dashboard.ScoreMissing,
		Concurrency:     cfg.Dashboard.Concurrency,
		RunHour:         cfg.Schedule.RunHour,
		Location:        cfg.Schedule.Location(),
		BuildSHA:        sha,
		RateLimit: ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			DefaultLimit:    cfg.RateLimit.DefaultLimit,
			DefaultWindow:   cfg.RateLimit.DefaultWindow,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       whitelist,
			Rules:           ratelimit.RefreshRules(cfg.RateLimit.RefreshLimit, cfg.RateLimit.RefreshWindow, cfg.RateLimit.RefreshBurst),
		},
	}
}
