package renderer

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/molistry/rendertron/models"
	"github.com/molistry/rendertron/sanitize"
)

// Serialize renders the target and returns the sanitized markup snapshot,
// the delivered status (after the in-page override protocol), and any custom
// header the page declared.
//
// Navigation degradations are part of the response contract, not errors:
// a never-committing target yields status 400, a cloud-metadata target
// yields 403, and a timed-out navigation is served from the first captured
// response. The page context is released exactly once on every path.
func (r *Renderer) Serialize(ctx context.Context, req *models.RenderRequest) (*models.SerializedResponse, error) {
	target, err := parseTarget(req.URL)
	if err != nil {
		return nil, err
	}

	page, release, err := r.newPage(ctx)
	if err != nil {
		if r.renderCfg.StaticFallback && models.CodeOf(err) == models.ErrCodeBrowserUnavailable {
			return r.serializeStatic(ctx, target)
		}
		return nil, err
	}
	defer release()

	outcome, err := r.navigate(ctx, page, req)
	if err != nil {
		switch models.CodeOf(err) {
		case models.ErrCodeNoResponse:
			return &models.SerializedResponse{Status: http.StatusBadRequest}, nil
		case models.ErrCodeForbidden:
			return &models.SerializedResponse{Status: http.StatusForbidden}, nil
		}
		return nil, err
	}

	p := page.Context(ctx)

	directives := extractDirectives(p)
	status := applyStatusOverride(outcome.Status, directives)

	headers := make(map[string]string, 1)
	if directives.HeaderName != "" {
		headers[directives.HeaderName] = directives.HeaderValue
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"failed to read rendered markup", err)
	}

	content, err := sanitize.Snapshot(rawHTML, target)
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"failed to sanitize markup", err)
	}

	if outcome.TimedOut {
		slog.Info("serving partial render", "url", req.URL, "status", status)
	}

	return &models.SerializedResponse{
		Status:        status,
		CustomHeaders: headers,
		Content:       content,
	}, nil
}

// serializeStatic is the degraded full-mode path while the browser handle is
// restarting: a plain HTTP fetch, unrendered but still sanitized. It opens
// no page context and never sees the in-page override protocol.
func (r *Renderer) serializeStatic(ctx context.Context, target *url.URL) (*models.SerializedResponse, error) {
	status, body, err := r.fallback.fetch(ctx, target.String())
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeBrowserUnavailable,
			"static fallback fetch failed", err)
	}

	content, err := sanitize.Snapshot(string(body), target)
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"failed to sanitize markup", err)
	}

	slog.Warn("served unrendered static fallback", "url", target.String(), "status", status)
	return &models.SerializedResponse{
		Status:        normalizeStatus(status),
		CustomHeaders: map[string]string{},
		Content:       content,
	}, nil
}

// parseTarget validates that the request names an absolute http(s) URL.
func parseTarget(raw string) (*url.URL, error) {
	target, err := url.Parse(raw)
	if err != nil || target.Hostname() == "" ||
		(target.Scheme != "http" && target.Scheme != "https") {
		return nil, models.NewRenderError(models.ErrCodeInvalidInput,
			"target must be an absolute http(s) URL", err)
	}
	return target, nil
}
