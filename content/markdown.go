// Package content converts rendered HTML snapshots into Markdown for bot and
// LLM consumers that prefer text over markup.
package content

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum readability TextContent length (in
// characters) for the extraction to be considered valid. Below this we
// assume the algorithm missed the main content and convert the whole page.
const minContentLength = 50

// Converter is a reusable, goroutine-safe HTML→Markdown pipeline.
type Converter struct {
	conv *converter.Converter
}

// NewConverter configures the markdown pipeline:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea, HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure with minimal cell padding.
func NewConverter() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Markdown extracts the main content of htmlContent via readability and
// converts it to Markdown. When readability fails or finds too little text,
// the whole document is converted instead — the endpoint must never fail
// just because the extraction heuristic choked.
func (c *Converter) Markdown(htmlContent, sourceURL string) (string, error) {
	input := htmlContent
	domain := ""

	parsed, err := nurl.Parse(sourceURL)
	if err == nil {
		domain = parsed.Hostname()

		article, rerr := readability.FromReader(strings.NewReader(htmlContent), parsed)
		switch {
		case rerr != nil:
			slog.Warn("readability extraction failed, converting full document",
				"url", sourceURL, "error", rerr)
		case len(strings.TrimSpace(article.TextContent)) < minContentLength:
			slog.Warn("readability output too short, converting full document",
				"url", sourceURL, "length", len(article.TextContent))
		default:
			input = article.Content
		}
	}

	return c.conv.ConvertString(input, converter.WithDomain(domain))
}
