// Package sanitize turns rendered markup into a faithful but non-executing
// HTML snapshot: script-bearing and import-bearing elements are stripped and
// the document's base resource URL is pinned to the requested origin.
package sanitize

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	scriptSel     = cascadia.MustCompile("script")
	importLinkSel = cascadia.MustCompile(`link[rel="import"]`)
	baseSel       = cascadia.MustCompile("base")
	headSel       = cascadia.MustCompile("head")
)

// Snapshot sanitizes rawHTML and returns the serialized result.
//
// Removed: every <script> with no type attribute or a type containing
// "javascript", and every <link rel="import">. Non-executable script payloads
// (e.g. application/json, application/ld+json) survive untouched.
//
// A <base> element carrying the request's scheme+host is injected so the
// snapshot can be visually checked against the live origin. An existing
// path-relative base is rewritten to the same origin; an existing absolute
// base is left alone. The transform is idempotent: running it over its own
// output produces no further changes.
func Snapshot(rawHTML string, target *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	stripExecutable(doc)
	injectBase(doc, origin(target))

	return doc.Html()
}

// stripExecutable removes script tags that would execute and HTML-import
// links that would re-trigger network activity in the consumer.
func stripExecutable(doc *goquery.Document) {
	doc.FindMatcher(scriptSel).Each(func(_ int, s *goquery.Selection) {
		typ, ok := s.Attr("type")
		if !ok || strings.Contains(strings.ToLower(typ), "javascript") {
			s.Remove()
		}
	})
	doc.FindMatcher(importLinkSel).Remove()
}

// injectBase pins the document's base URL to the request origin.
func injectBase(doc *goquery.Document, originURL string) {
	if base := doc.FindMatcher(baseSel).First(); base.Length() > 0 {
		href, _ := base.Attr("href")
		if strings.HasPrefix(href, "/") {
			base.SetAttr("href", originURL+href)
		}
		// An existing absolute (or otherwise non-path-relative) base wins.
		return
	}

	head := doc.FindMatcher(headSel).First()
	if head.Length() == 0 {
		return
	}
	head.PrependNodes(&html.Node{
		Type:     html.ElementNode,
		Data:     "base",
		DataAtom: atom.Base,
		Attr:     []html.Attribute{{Key: "href", Val: originURL}},
	})
}

// origin returns scheme://host for the target, with no path.
func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
