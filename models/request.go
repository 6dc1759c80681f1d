package models

// Mode selects which output the rendering pipeline produces.
type Mode string

const (
	// ModeFull serializes the fully rendered, sanitized HTML document.
	ModeFull Mode = "full"

	// ModePreview extracts structured preview metadata (title, description,
	// canonical domain, representative image) from the rendered DOM.
	ModePreview Mode = "preview"

	// ModeScreenshot captures a JPEG screenshot of the rendered page.
	ModeScreenshot Mode = "screenshot"
)

// Viewport is the emulated browser viewport in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// RenderRequest describes one inbound render operation. It is constructed by
// the routing layer and immutable afterwards; one instance per request.
type RenderRequest struct {
	// URL is the target page. Required, must be absolute http(s).
	URL string

	// Mobile selects mobile device emulation (user agent + viewport flag).
	Mobile bool

	// Mode selects full serialization, preview extraction, or screenshot.
	Mode Mode

	// Viewport is the emulated viewport. For screenshots these are the
	// request-supplied dimensions; other modes use configuration defaults.
	Viewport Viewport

	// ScreenshotOptions is an opaque options bag passed through to the
	// capture call. The image format is always forced to JPEG regardless
	// of any conflicting value here.
	ScreenshotOptions map[string]interface{}
}
