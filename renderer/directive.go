package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rod/rod"
)

// Reserved meta tag names a rendered page may use to shape its own delivery.
// These two selectors are the entire protocol surface; do not grow the set
// without versioning it.
const (
	metaStatusCode = "render:status_code"
	metaHeader     = "render:header"
)

// Directives is the parsed result of the in-page override protocol: at most
// one status override and at most one custom response header per page.
type Directives struct {
	StatusCode  *int
	HeaderName  string
	HeaderValue string
}

// extractDirectives reads both reserved meta tags from the loaded DOM.
// Absent or malformed tags yield zero values, never errors — pages are
// allowed to omit either directive.
func extractDirectives(p *rod.Page) Directives {
	var d Directives

	if raw := metaContent(p, metaStatusCode); raw != "" {
		if code, ok := parseStatusDirective(raw); ok {
			d.StatusCode = &code
		}
	}
	if raw := metaContent(p, metaHeader); raw != "" {
		if name, value, ok := splitHeaderDirective(raw); ok {
			d.HeaderName, d.HeaderValue = name, value
		}
	}
	return d
}

// metaContent reads the content attribute of a named meta tag from the live
// DOM, or "" when the tag does not exist.
func metaContent(p *rod.Page, name string) string {
	js := fmt.Sprintf(`() => {
		const el = document.querySelector('meta[name=%q]');
		return el ? (el.getAttribute('content') || '') : '';
	}`, name)

	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// parseStatusDirective accepts only a valid HTTP status integer.
func parseStatusDirective(raw string) (int, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

// splitHeaderDirective splits "key:value" on the first colon only, trimming
// both parts. Malformed content yields no header.
func splitHeaderDirective(raw string) (name, value string, ok bool) {
	name, value, found := strings.Cut(raw, ":")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// applyStatusOverride honours a page-declared status only when the baseline
// is exactly 200; any other network-level status always wins.
func applyStatusOverride(baseline int, d Directives) int {
	if baseline == 200 && d.StatusCode != nil {
		return *d.StatusCode
	}
	return baseline
}
