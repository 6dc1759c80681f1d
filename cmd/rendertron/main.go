package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/molistry/rendertron/api"
	"github.com/molistry/rendertron/cache"
	"github.com/molistry/rendertron/config"
	"github.com/molistry/rendertron/content"
	"github.com/molistry/rendertron/renderer"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("rendertron starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Initialise renderer (launches browser) ───────────────────
	rend, err := renderer.New(cfg.Browser, cfg.Render)
	if err != nil {
		slog.Error("failed to initialise renderer", "error", err)
		os.Exit(1)
	}
	defer rend.Close()

	// ── 3b. Browser supervisor — relaunches Chromium if it dies ─────
	superCtx, superCancel := context.WithCancel(context.Background())
	defer superCancel()
	go rend.Supervise(superCtx)

	// ── 4. Initialise markdown converter ────────────────────────────
	conv := content.NewConverter()

	// ── 4b. Initialise cache ────────────────────────────────────────
	var cc *cache.Cache
	if cfg.Cache.Enabled {
		cc = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(rend, rend, cfg, cc, conv)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// rend.Close() runs via defer — closes pages and kills Chrome.
	slog.Info("rendertron stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
