package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"issuehub/internal/agent"
	"issuehub/internal/broadcast"
	"issuehub/internal/config"
	"issuehub/internal/push"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h)
}

// openBrowser hands a URL to the desktop's default opener.
func openBrowser(ctx context.Context, url string) error {
	return exec.CommandContext(ctx, "xdg-open", url).Start()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	statePath, err := push.DefaultStatePath()
	if err != nil {
		logger.Error("cannot resolve state path", "error", err)
		os.Exit(1)
	}
	store := push.NewStateStore(statePath)

	cache := agent.NewCacheManager(
		agent.NewRedisCacheStore(rdb),
		cfg.CacheVersion,
		cfg.CacheManifest,
		cfg.APIBaseURL,
		logger,
	)
	if err := cache.Install(ctx); err != nil {
		// The agent stays useful for push without an offline cache.
		logger.Warn("asset cache install failed, continuing without offline assets", "error", err)
	} else if err := cache.Activate(ctx); err != nil {
		logger.Warn("asset cache activation failed", "error", err)
	}

	pushHandler := agent.NewPushHandler(
		store,
		broadcast.NewBroadcaster(rdb),
		agent.NewDesktopNotifier(),
		agent.NewRedisWindowClients(rdb, openBrowser),
		logger,
	)

	go agent.Heartbeat(ctx, rdb)

	listener := agent.NewListener(pushHandler, cache, store, logger)
	srv := listener.Router()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("agent listening", "addr", cfg.PushListenAddr)
		errCh <- srv.Run(cfg.PushListenAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("agent shutting down")
	case err := <-errCh:
		logger.Error("agent listener exited", "error", err)
		os.Exit(1)
	}
}
