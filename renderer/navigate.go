package renderer

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/molistry/rendertron/models"
)

// mobileUserAgent is the user agent presented when mobile emulation is on.
const mobileUserAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36"

// compatShims forces the web-components polyfill globals on before any page
// script runs. Component-based pages sniff for a "real" browser and skip
// polyfills otherwise, which breaks rendering inside a prerenderer.
const compatShims = `() => {
	if (window.customElements) {
		window.customElements.forcePolyfill = true;
	}
	window.ShadyDOM = {force: true};
	window.ShadyCSS = {shimcssproperties: true};
}`

// NavigationOutcome is what a navigation resolved to. TimedOut=true with a
// present status is the partial-success case: the main document response
// arrived before the network-idle deadline expired.
type NavigationOutcome struct {
	Status   int
	Headers  map[string]string
	TimedOut bool
}

// navigate configures emulation, drives the page through load, and resolves
// an outcome or a typed failure (NO_RESPONSE, FORBIDDEN_TARGET).
//
// Order matters:
//
//  1. Viewport and user agent first — changing device emulation later can
//     force a page reload.
//  2. Compat shims (and stealth) via EvalOnNewDocument — they only take
//     effect for navigations that happen after they are installed.
//  3. First-response listener and idle waiter before Navigate — registering
//     them afterwards would miss in-flight requests.
func (r *Renderer) navigate(ctx context.Context, page *rod.Page, req *models.RenderRequest) (*NavigationOutcome, error) {
	vp := req.Viewport
	if vp.Width <= 0 {
		vp.Width = r.renderCfg.DefaultWidth
	}
	if vp.Height <= 0 {
		vp.Height = r.renderCfg.DefaultHeight
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
		Mobile:            req.Mobile,
	}); err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal, "failed to set viewport", err)
	}
	if req.Mobile {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: mobileUserAgent,
		}); err != nil {
			return nil, models.NewRenderError(models.ErrCodeInternal, "failed to set user agent", err)
		}
	}

	if _, err := page.EvalOnNewDocument(compatShims); err != nil {
		slog.Warn("compat shim injection failed, proceeding without", "error", err)
	}
	if r.browserCfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, r.renderCfg.Timeout)
	defer cancel()
	p := page.Context(navCtx)

	// Record every main-frame document response for the whole wait. The
	// navigation can resolve through more than one document (server or
	// client-side redirects): the outcome must come from the document that
	// actually ends up rendered, while the first one is kept as the fallback
	// for navigations cut short by the time budget.
	var respMu sync.Mutex
	var first, latest *proto.NetworkResponse
	waitCapture := p.EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type != proto.NetworkResourceTypeDocument {
			return
		}
		respMu.Lock()
		defer respMu.Unlock()
		if first == nil {
			first = e.Response
		}
		latest = e.Response
	})
	go waitCapture()

	waitIdle := p.WaitRequestIdle(r.renderCfg.Quiescence, nil, nil, nil)

	timedOut := false
	if navErr := p.Navigate(req.URL); navErr != nil {
		slog.Warn("navigation failed, falling back to first captured response",
			"url", req.URL, "error", navErr)
		timedOut = true
	} else {
		waitIdle()
		if navCtx.Err() != nil {
			timedOut = true
			slog.Warn("network idle not reached within budget",
				"url", req.URL, "timeout", r.renderCfg.Timeout)
		}
	}

	respMu.Lock()
	captured := resolveCapture(first, latest, timedOut)
	respMu.Unlock()

	if captured == nil {
		return nil, models.NewRenderError(models.ErrCodeNoResponse,
			"navigation produced no response for "+req.URL, nil)
	}

	headers := headerMap(captured.Headers)
	if isMetadataEndpoint(headers) {
		return nil, models.NewRenderError(models.ErrCodeForbidden,
			"target resolves to a cloud metadata endpoint", nil)
	}

	return &NavigationOutcome{
		Status:   normalizeStatus(captured.Status),
		Headers:  headers,
		TimedOut: timedOut,
	}, nil
}

// resolveCapture picks the response the outcome is built from: the latest
// document response when the navigation resolved cleanly (a page may redirect
// through several documents before settling), the first captured one when the
// wait was cut short and the rest of the chain never committed. The
// metadata-endpoint guard runs against this response, so a page that
// client-side-redirects into a metadata service is judged by the endpoint it
// landed on, not the page it started from.
func resolveCapture(first, latest *proto.NetworkResponse, timedOut bool) *proto.NetworkResponse {
	if timedOut {
		return first
	}
	return latest
}

// headerMap flattens proto network headers (map[string]gson.JSON) to strings.
func headerMap(h proto.NetworkHeaders) map[string]string {
	m := make(map[string]string, len(h))
	for k, v := range h {
		m[k] = v.Str()
	}
	return m
}

// isMetadataEndpoint detects responses from cloud metadata services. A page
// must not be able to redirect the renderer into one.
func isMetadataEndpoint(headers map[string]string) bool {
	for k, v := range headers {
		if strings.EqualFold(k, "metadata-flavor") && v == "Google" {
			return true
		}
	}
	return false
}

// normalizeStatus maps a not-modified network status to the 200 baseline the
// override protocol operates on.
func normalizeStatus(status int) int {
	if status == 304 {
		return 200
	}
	return status
}
