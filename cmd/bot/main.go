package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StakeScope/internal/collector"
	"StakeScope/internal/config"
	"StakeScope/internal/engine"
	"StakeScope/internal/httpapi"
	"StakeScope/internal/logger"
	"StakeScope/internal/metrics"
	"StakeScope/internal/notifier"
	"StakeScope/internal/scheduler"
	"StakeScope/internal/store"
	"StakeScope/internal/totals"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:         cfg.Log.Level,
		HumanFriendly: cfg.Log.HumanFriendly,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("StakeScope failed", "error", err)
		os.Exit(1)
	}
}

// run wires all components and blocks until a shutdown signal arrives or the
// HTTP server fails. Setup errors are returned after every opened resource is
// released.
func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("StakeScope starting...")

	// Init store
	st := openStore(cfg, log)
	defer st.Close()

	tr, err := totals.NewTracker(st, cfg.Points.DefaultTotal, log)
	if err != nil {
		return fmt.Errorf("init global points cache: %w", err)
	}

	m := metrics.New("")
	m.SetGlobalPoints(tr.Total())

	// Init fetchers
	prices := collector.NewCoinGeckoFetcher(cfg.Price.BaseURL, cfg.Proxy)
	points := collector.NewGraphQLPointsFetcher(cfg.Points.Endpoint, cfg.Proxy)
	log.Info("data sources", "price", prices.Name(), "points", points.Name(), "asset", cfg.Price.AssetID)
	col := collector.NewCollector(prices, points, cfg.Price.AssetID, cfg.FetchTimeout, m, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(col, tr, cfg.RewardConstants(), log)

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, eng, sender, log)
	if err := sched.RegisterAll(cfg.Price.Cron, cfg.Points.Cron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	eng.OnLookup(sched.NotifyLookup)

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		_ = eng.Run(ctx)
	}()
	defer func() {
		cancel()
		<-engineDone
	}()

	go sched.RunStartup()
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	// Start HTTP API
	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.New(httpapi.Config{Engine: eng, Metrics: m, Log: log}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server failed", "error", err)
				cancel()
			}
		}()
		log.Info("http api listening", "addr", cfg.HTTP.Addr)
	}

	log.Info("StakeScope is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		stop()
	}
	log.Info("StakeScope stopped")
	return nil
}

// openStore picks SQLite, then the JSON state file, then memory.
func openStore(cfg *config.Config, log *slog.Logger) store.Store {
	if cfg.Storage.SQLitePath != "" {
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err == nil {
			return s
		}
		log.Warn("init sqlite store failed, trying state file", "error", err)
	}
	if cfg.Storage.StateFile != "" {
		s, err := store.NewFileStore(cfg.Storage.StateFile)
		if err == nil {
			return s
		}
		log.Warn("init state file store failed", "error", err)
	}
	log.Warn("no persistent store available, global points total will not survive restarts")
	return store.NewMemoryStore()
}
