package renderer

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/molistry/rendertron/models"
)

// Probe lists for preview extraction. Each field resolves through its list
// in order inside the page's own script context, against the live DOM after
// network idle; the first probe yielding a non-empty value wins.

var titleProbes = []string{
	metaProbe(`meta[property="og:title"]`),
	metaProbe(`meta[name="twitter:title"]`),
	`() => document.title || ''`,
	firstH1Probe,
	// The <h1> probe runs twice in sequence. TestTitleProbeOrder documents
	// why this stays as-is.
	firstH1Probe,
}

const firstH1Probe = `() => {
	const h1 = document.querySelector('h1');
	return h1 ? h1.innerHTML.trim() : '';
}`

var descriptionProbes = []string{
	metaProbe(`meta[property="og:description"]`),
	metaProbe(`meta[name="twitter:description"]`),
	metaProbe(`meta[name="description"]`),
	renderedParagraphProbe,
}

// renderedParagraphProbe picks the first paragraph that both has a layout
// box and contains at least one child element, skipping invisible or
// structural filler paragraphs.
const renderedParagraphProbe = `() => {
	for (const p of document.querySelectorAll('p')) {
		if (p.getClientRects().length > 0 && p.children.length > 0) {
			return (p.textContent || '').trim();
		}
	}
	return '';
}`

var domainProbes = []string{
	`() => {
		const l = document.querySelector('link[rel="canonical"]');
		return l ? (l.getAttribute('href') || '') : '';
	}`,
	metaProbe(`meta[property="og:url"]`),
}

var imageProbes = []string{
	metaProbe(`meta[property="og:image"]`),
	`() => {
		const l = document.querySelector('link[rel="image_src"]');
		return l ? (l.getAttribute('href') || '') : '';
	}`,
	metaProbe(`meta[name="twitter:image"]`),
}

// collectImagesProbe reports every <img> with its rendered dimensions. The
// geometry must come from the live layout (icons are often natural-size
// large but rendered small), while the viability filter itself runs in Go.
const collectImagesProbe = `() => Array.from(document.querySelectorAll('img')).map(img => ({
	w: img.width,
	h: img.height,
	src: img.getAttribute('src') || '',
}))`

// viableImage rejects icons and decorative strips: anything 50px or smaller
// in either rendered dimension, or with a rendered aspect ratio beyond 3:1 in
// either orientation. Exactly 3:1 survives.
func viableImage(w, h int) bool {
	if w <= 50 || h <= 50 {
		return false
	}
	if w > h*3 || h > w*3 {
		return false
	}
	return true
}

// scanImages is the last-resort image probe: the src of the first rendered
// <img> that passes the viability filter, in document order.
func scanImages(p *rod.Page) string {
	res, err := p.Eval(collectImagesProbe)
	if err != nil {
		return ""
	}
	for _, img := range res.Value.Arr() {
		if viableImage(img.Get("w").Int(), img.Get("h").Int()) {
			return strings.TrimSpace(img.Get("src").Str())
		}
	}
	return ""
}

// metaProbe builds a probe reading the content attribute of a meta selector.
func metaProbe(selector string) string {
	return `() => {
		const el = document.querySelector('` + selector + `');
		return el ? (el.getAttribute('content') || '') : '';
	}`
}

// Preview renders the target and extracts preview metadata from the live
// DOM. The response carries the baseline status including the meta-tag
// status override, but the sanitizer never runs in this mode. Domain is
// never empty: it falls back to the requested URL's hostname.
func (r *Renderer) Preview(ctx context.Context, req *models.RenderRequest) (*models.PreviewResponse, error) {
	target, err := parseTarget(req.URL)
	if err != nil {
		return nil, err
	}
	fallbackDomain := stripWWW(target.Hostname())

	page, release, err := r.newPage(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	outcome, err := r.navigate(ctx, page, req)
	if err != nil {
		switch models.CodeOf(err) {
		case models.ErrCodeNoResponse:
			return &models.PreviewResponse{Status: http.StatusBadRequest, Domain: fallbackDomain}, nil
		case models.ErrCodeForbidden:
			return &models.PreviewResponse{Status: http.StatusForbidden, Domain: fallbackDomain}, nil
		}
		return nil, err
	}

	p := page.Context(ctx)

	resp := &models.PreviewResponse{
		Status: applyStatusOverride(outcome.Status, extractDirectives(p)),
		Domain: fallbackDomain,
	}

	resp.Title = optional(evalFirst(p, titleProbes))
	resp.Description = optional(evalFirst(p, descriptionProbes))

	if candidate := evalFirst(p, domainProbes); candidate != "" {
		if host := hostnameOf(candidate); host != "" {
			resp.Domain = stripWWW(host)
		}
	}

	img := evalFirst(p, imageProbes)
	if img == "" {
		img = scanImages(p)
	}
	if img != "" {
		resolved := resolveImageSrc(img, target)
		resp.Img = &resolved
	}

	return resp, nil
}

// evalFirst evaluates probes in order inside the page and returns the first
// non-empty trimmed result. A miss or an eval error just means "try the
// next probe" — lookup misses never propagate as errors.
func evalFirst(p *rod.Page, probes []string) string {
	for _, probe := range probes {
		res, err := p.Eval(probe)
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(res.Value.Str()); v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func hostnameOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// resolveImageSrc roots a source carrying no scheme-relative or absolute
// marker ("//") at the request's origin.
func resolveImageSrc(src string, target *url.URL) string {
	if strings.Contains(src, "//") {
		return src
	}
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return target.Scheme + "://" + target.Host + src
}
