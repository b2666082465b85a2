package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"tradescape/internal/config"
	"tradescape/internal/coordinator"
	"tradescape/internal/provider"
	"tradescape/internal/recorder"
	"tradescape/internal/server"
	"tradescape/internal/workspace"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] tradescape starting...")

	// .env is optional; real env vars win either way
	_ = godotenv.Load()

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

	if err := os.MkdirAll(filepath.Dir(cfg.Workspace.File), 0755); err != nil {
		log.Fatalf("[FATAL] create data dir: %v", err)
	}

	// Load persisted workspace; corrupt files degrade to defaults
	repo := workspace.NewFileRepository(cfg.Workspace.File)
	ws, err := repo.Load()
	if err != nil {
		log.Printf("[WARN] load workspace, falling back to defaults: %v", err)
	}
	store := workspace.NewStore(ws)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Provider factory: one construction path per data source
	factory := func(kind provider.Kind) (provider.Provider, error) {
		return provider.New(kind, provider.Options{
			Proxy:  cfg.Proxy,
			APIKey: cfg.Provider.AlphaVantageKey,
		})
	}

	coord := coordinator.New(factory, store, repo, rec, cfg.Indicators)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial evaluation so /api/figure serves immediately
	coord.Evaluate(ctx, coordinator.TriggerWorkspaceLoad)

	// Auto-refresh timer; the coordinator skips ticks when disabled
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Refresh.Cron, func() {
		coord.Evaluate(ctx, coordinator.TriggerTimer)
	}); err != nil {
		log.Fatalf("[FATAL] register refresh cron: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Printf("[INFO] auto-refresh scheduled: %s", cfg.Refresh.Cron)

	srv := server.New(cfg.Server.Addr, coord)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] tradescape is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] tradescape stopped")
}
