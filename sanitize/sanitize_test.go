package sanitize

import (
	"net/url"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func snapshot(t *testing.T, rawHTML, target string) string {
	t.Helper()
	out, err := Snapshot(rawHTML, mustParse(t, target))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return out
}

func TestSnapshot_RemovesUntypedScript(t *testing.T) {
	in := `<html><head></head><body><script>alert("hi")</script><p>text</p></body></html>`
	out := snapshot(t, in, "https://example.com/page")

	if strings.Contains(out, "<script") {
		t.Errorf("untyped script survived sanitization:\n%s", out)
	}
	if !strings.Contains(out, "<p>text</p>") {
		t.Errorf("page content lost:\n%s", out)
	}
}

func TestSnapshot_RemovesJavascriptTypedScript(t *testing.T) {
	tests := []struct {
		name string
		typ  string
	}{
		{"plain", "text/javascript"},
		{"module-ish", "application/javascript"},
		{"uppercase", "TEXT/JAVASCRIPT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `<html><head><script type="` + tt.typ + `">x()</script></head><body></body></html>`
			out := snapshot(t, in, "https://example.com/")
			if strings.Contains(out, "x()") {
				t.Errorf("script with type %q survived:\n%s", tt.typ, out)
			}
		})
	}
}

func TestSnapshot_KeepsNonExecutableScript(t *testing.T) {
	in := `<html><head><script type="application/ld+json">{"@type":"Article"}</script></head><body></body></html>`
	out := snapshot(t, in, "https://example.com/")

	if !strings.Contains(out, `{"@type":"Article"}`) {
		t.Errorf("json-ld payload was stripped:\n%s", out)
	}
}

func TestSnapshot_RemovesImportLinks(t *testing.T) {
	in := `<html><head><link rel="import" href="/component.html"><link rel="stylesheet" href="/a.css"></head><body></body></html>`
	out := snapshot(t, in, "https://example.com/")

	if strings.Contains(out, `rel="import"`) {
		t.Errorf("import link survived:\n%s", out)
	}
	if !strings.Contains(out, `rel="stylesheet"`) {
		t.Errorf("stylesheet link was wrongly removed:\n%s", out)
	}
}

func TestSnapshot_InjectsBaseWhenAbsent(t *testing.T) {
	in := `<html><head><title>t</title></head><body></body></html>`
	out := snapshot(t, in, "https://example.com/deep/path?q=1")

	if !strings.Contains(out, `<base href="https://example.com"/>`) {
		t.Errorf("base tag not injected at origin:\n%s", out)
	}
	// Injected before existing head children.
	if strings.Index(out, "<base") > strings.Index(out, "<title") {
		t.Errorf("base tag not prepended to head:\n%s", out)
	}
}

func TestSnapshot_RewritesPathRelativeBase(t *testing.T) {
	in := `<html><head><base href="/assets/"></head><body></body></html>`
	out := snapshot(t, in, "https://example.com/page")

	if !strings.Contains(out, `href="https://example.com/assets/"`) {
		t.Errorf("path-relative base not rooted at origin:\n%s", out)
	}
}

func TestSnapshot_LeavesAbsoluteBaseAlone(t *testing.T) {
	in := `<html><head><base href="https://cdn.example.org/"></head><body></body></html>`
	out := snapshot(t, in, "https://example.com/page")

	if !strings.Contains(out, `href="https://cdn.example.org/"`) {
		t.Errorf("absolute base was rewritten:\n%s", out)
	}
	if strings.Count(out, "<base") != 1 {
		t.Errorf("expected exactly one base tag:\n%s", out)
	}
}

func TestSnapshot_Idempotent(t *testing.T) {
	in := `<html><head><title>t</title><script>x()</script></head><body><p>body</p></body></html>`
	once := snapshot(t, in, "https://example.com/a")
	twice := snapshot(t, once, "https://example.com/a")

	if once != twice {
		t.Errorf("sanitizing twice changed the output:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}
