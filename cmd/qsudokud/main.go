// SPDX-License-Identifier: MIT

// qsudokud serves the Grover sudoku solver over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qsolv/qsudoku/internal/api"
	"github.com/qsolv/qsudoku/internal/cache"
	"github.com/qsolv/qsudoku/internal/config"
	"github.com/qsolv/qsudoku/internal/estimate"
	"github.com/qsolv/qsudoku/internal/jobs"
	"github.com/qsolv/qsudoku/internal/library"
	qslog "github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		logger := qslog.Base()
		logger.Fatal().Err(err).Msg("daemon failed")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	qslog.Configure(qslog.Config{Level: cfg.LogLevel})
	qslog.SetLevel(cfg.LogLevel)
	logger := qslog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("addr", cfg.Listen).
		Str("data_dir", cfg.DataDir).
		Msg("starting qsudokud")
	if cfg.APIToken == "" {
		logger.Warn().Msg("api token not configured, authentication disabled")
	}

	for _, dir := range []string{cfg.DataDir, cfg.PuzzleDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	jobStore, err := store.OpenBadger(cfg.StoreDir)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer func() { _ = jobStore.Close() }()

	var solveCache cache.Cache = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.RedisConfig{Addr: cfg.RedisAddr, TTL: cfg.CacheTTL})
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		solveCache = redisCache
	}
	defer func() { _ = solveCache.Close() }()

	archive, err := estimate.OpenArchive(cfg.ArchiveDB)
	if err != nil {
		return fmt.Errorf("open estimate archive: %w", err)
	}
	defer func() { _ = archive.Close() }()

	lib, err := library.New(cfg.PuzzleDir)
	if err != nil {
		return fmt.Errorf("index puzzle library: %w", err)
	}

	manager, err := jobs.NewManager(jobs.Deps{
		Store:       jobStore,
		ArtifactDir: filepath.Join(cfg.DataDir, "artifacts"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	srv, err := api.New(api.Deps{
		Config:  cfg,
		Manager: manager,
		Library: lib,
		Cache:   solveCache,
		Archive: archive,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Listen).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := lib.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("library watcher stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server exited")
	return nil
}
