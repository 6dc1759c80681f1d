package renderer

import (
	"context"

	"github.com/go-rod/rod/lib/proto"
	"github.com/molistry/rendertron/models"
)

// Screenshot renders the target with the request-supplied viewport and
// captures a JPEG. Unlike full and preview modes, navigation degradations
// surface here as typed failures: the routing layer maps FORBIDDEN_TARGET to
// 403 and everything else to 500. The page context is released before any
// failure is signalled.
func (r *Renderer) Screenshot(ctx context.Context, req *models.RenderRequest) ([]byte, error) {
	if _, err := parseTarget(req.URL); err != nil {
		return nil, err
	}

	page, release, err := r.newPage(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	// NO_RESPONSE and FORBIDDEN_TARGET pass through as-is.
	if _, err := r.navigate(ctx, page, req); err != nil {
		return nil, err
	}

	capture, fullPage := buildCapture(req.ScreenshotOptions)
	bin, err := page.Context(ctx).Screenshot(fullPage, capture)
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"screenshot capture failed", err)
	}
	return bin, nil
}

// buildCapture translates the opaque options bag into a capture request.
// The format is forced to JPEG with binary encoding no matter what the
// caller put in the bag; recognised options pass through unmodified.
func buildCapture(opts map[string]interface{}) (*proto.PageCaptureScreenshot, bool) {
	capture := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatJpeg,
	}
	fullPage := false

	for key, value := range opts {
		switch key {
		case "quality":
			if q, ok := asInt(value); ok {
				capture.Quality = &q
			}
		case "fullPage":
			if b, ok := value.(bool); ok {
				fullPage = b
			}
		case "fromSurface":
			if b, ok := value.(bool); ok {
				capture.FromSurface = b
			}
		case "optimizeForSpeed":
			if b, ok := value.(bool); ok {
				capture.OptimizeForSpeed = b
			}
		case "clip":
			if m, ok := value.(map[string]interface{}); ok {
				capture.Clip = clipOf(m)
			}
		}
	}
	return capture, fullPage
}

func clipOf(m map[string]interface{}) *proto.PageViewport {
	clip := &proto.PageViewport{Scale: 1}
	if v, ok := asFloat(m["x"]); ok {
		clip.X = v
	}
	if v, ok := asFloat(m["y"]); ok {
		clip.Y = v
	}
	if v, ok := asFloat(m["width"]); ok {
		clip.Width = v
	}
	if v, ok := asFloat(m["height"]); ok {
		clip.Height = v
	}
	if v, ok := asFloat(m["scale"]); ok && v > 0 {
		clip.Scale = v
	}
	return clip
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
