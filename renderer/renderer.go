// Package renderer drives a headless Chromium instance through the page
// rendering pipeline: navigation, status/header override resolution, snapshot
// serialization, preview metadata extraction, and screenshot capture.
package renderer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/molistry/rendertron/config"
	"github.com/molistry/rendertron/models"
)

// Renderer owns the process-wide browser handle and hands out isolated page
// contexts, one per request. It is safe for concurrent use.
type Renderer struct {
	mu          sync.RWMutex
	browser     *rod.Browser
	browserCfg  config.BrowserConfig
	renderCfg   config.RenderConfig
	tabSem      chan struct{}
	activePages atomic.Int32
	startTime   time.Time
	fallback    *staticFetcher
}

// New launches a headless browser and returns a ready Renderer.
func New(browserCfg config.BrowserConfig, renderCfg config.RenderConfig) (*Renderer, error) {
	browser, err := launch(browserCfg)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		browser:    browser,
		browserCfg: browserCfg,
		renderCfg:  renderCfg,
		tabSem:     make(chan struct{}, browserCfg.MaxPages),
		startTime:  time.Now(),
		fallback:   newStaticFetcher(),
	}, nil
}

// launch starts a Chromium process and connects a Rod browser to it.
func launch(cfg config.BrowserConfig) (*rod.Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewRenderError(
			models.ErrCodeBrowserUnavailable,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewRenderError(
			models.ErrCodeBrowserUnavailable,
			"failed to connect to browser",
			err,
		)
	}
	return browser, nil
}

// Supervise pings the browser every HealthInterval and relaunches it on
// disconnect. Requests in flight when the process dies fail and are not
// retried here; retry is the caller's policy. Blocks until ctx is done.
func (r *Renderer) Supervise(ctx context.Context) {
	ticker := time.NewTicker(r.browserCfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if r.Alive() {
			continue
		}

		slog.Error("browser disconnected, relaunching")
		browser, err := launch(r.browserCfg)

		r.mu.Lock()
		if err != nil {
			r.browser = nil
			slog.Error("browser relaunch failed", "error", err)
		} else {
			r.browser = browser
			slog.Info("browser relaunched")
		}
		r.mu.Unlock()
	}
}

// Alive reports whether the browser handle currently responds.
func (r *Renderer) Alive() bool {
	r.mu.RLock()
	b := r.browser
	r.mu.RUnlock()

	if b == nil {
		return false
	}
	_, err := b.Version()
	return err == nil
}

// Stats returns the current and maximum number of open page contexts,
// and the renderer start time.
func (r *Renderer) Stats() (active, max int, started time.Time) {
	return int(r.activePages.Load()), r.browserCfg.MaxPages, r.startTime
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return
	}
	slog.Info("renderer shutting down: closing browser")
	if err := r.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	r.browser = nil
}

// newPage opens an isolated page context. The caller owns it exclusively for
// the lifetime of the request and must invoke release exactly once on every
// exit path; release is idempotent so a deferred call is always safe.
func (r *Renderer) newPage(ctx context.Context) (*rod.Page, func(), error) {
	select {
	case r.tabSem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, models.NewRenderError(
			models.ErrCodeTimeout,
			"timed out waiting for a free page context",
			ctx.Err(),
		)
	}

	r.mu.RLock()
	b := r.browser
	r.mu.RUnlock()

	if b == nil {
		<-r.tabSem
		return nil, nil, models.NewRenderError(
			models.ErrCodeBrowserUnavailable,
			"browser is restarting",
			nil,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		<-r.tabSem
		return nil, nil, models.NewRenderError(
			models.ErrCodeBrowserUnavailable,
			"failed to open page context",
			err,
		)
	}

	r.activePages.Add(1)

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Close uses the original page reference (without a request
			// context) so cleanup succeeds even after the request expired.
			if closeErr := page.Close(); closeErr != nil {
				slog.Warn("page close failed", "error", closeErr)
			}
			r.activePages.Add(-1)
			<-r.tabSem
		})
	}
	return page, release, nil
}
