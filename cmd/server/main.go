package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"RealizedBands/internal/cache"
	"RealizedBands/internal/collector"
	"RealizedBands/internal/config"
	"RealizedBands/internal/merge"
	"RealizedBands/internal/notifier"
	"RealizedBands/internal/observability"
	"RealizedBands/internal/scheduler"
	"RealizedBands/internal/server"
	"RealizedBands/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RealizedBands starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	mergeCfg, err := cfg.MergeConfig()
	if err != nil {
		log.Fatalf("[FATAL] engine config: %v", err)
	}

	metrics := observability.NewMetrics("")

	// Init collector
	col := newCollector(cfg)
	col.Observer = metrics
	log.Printf("[INFO] data sources: %s", col.Source())

	// Init cache
	store := openCache(cfg)
	defer store.Close()

	svc := service.New(col, merge.NewEngine(mergeCfg),
		service.WithCache(store, cfg.Cache.TTL),
		service.WithObserver(metrics),
	)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		tn.Observer = metrics
		sender = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, sender)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: warm the cache on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	srv := server.New(cfg.Server.ListenAddr, svc, metrics.Handler())
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] RealizedBands is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] RealizedBands stopped")
}

func newCollector(cfg *config.Config) *collector.Collector {
	names := collector.MetricNames{
		Primary: cfg.Feeds.RealizedPrice,
		STH:     cfg.Feeds.STHRealizedPrice,
		LTH:     cfg.Feeds.LTHRealizedPrice,
	}
	if cfg.Feeds.Mock {
		log.Println("[WARN] using mock feeds")
		mock := &collector.MockFetcher{Price: 65000}
		return collector.NewCollector(mock, mock, mock, names, cfg.Feeds.Timeout, cfg.Feeds.LiveTimeout)
	}
	return collector.NewCollector(
		collector.NewBGeometricsFetcher(cfg.Feeds.MetricBaseURL, cfg.Proxy),
		collector.NewBlockchainFetcher(cfg.Feeds.HistoryURL, cfg.Proxy),
		collector.NewCoinGeckoFetcher(cfg.Feeds.LiveURL, cfg.Proxy),
		names, cfg.Feeds.Timeout, cfg.Feeds.LiveTimeout,
	)
}

// openCache falls back to no caching when the configured backend is unreachable.
func openCache(cfg *config.Config) cache.Store {
	var (
		store cache.Store
		err   error
	)
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store, err = cache.NewSQLiteStore(cache.MemoryDSN)
	case config.BackendSQLite:
		if err = os.MkdirAll(filepath.Dir(cfg.Cache.SQLitePath), 0o755); err == nil {
			store, err = cache.NewSQLiteStore(cfg.Cache.SQLitePath)
		}
	case config.BackendRedis:
		store, err = cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
	default:
		return cache.NewNoopStore()
	}
	if err != nil {
		log.Printf("[WARN] init %s cache failed, using noop: %v", cfg.Cache.Backend, err)
		return cache.NewNoopStore()
	}
	log.Printf("[INFO] response cache: %s, ttl %v", cfg.Cache.Backend, cfg.Cache.TTL)
	return store
}
