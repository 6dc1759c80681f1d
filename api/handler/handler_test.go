package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

// stubEngine returns canned responses and records the last request it saw.
type stubEngine struct {
	serialized *models.SerializedResponse
	preview    *models.PreviewResponse
	image      []byte
	err        error

	lastReq *models.RenderRequest
}

func (s *stubEngine) Serialize(_ context.Context, req *models.RenderRequest) (*models.SerializedResponse, error) {
	s.lastReq = req
	return s.serialized, s.err
}

func (s *stubEngine) Preview(_ context.Context, req *models.RenderRequest) (*models.PreviewResponse, error) {
	s.lastReq = req
	return s.preview, s.err
}

func (s *stubEngine) Screenshot(_ context.Context, req *models.RenderRequest) ([]byte, error) {
	s.lastReq = req
	return s.image, s.err
}

type stubStatus struct {
	alive  bool
	active int
}

func (s *stubStatus) Alive() bool { return s.alive }
func (s *stubStatus) Stats() (int, int, time.Time) {
	return s.active, 10, time.Now().Add(-time.Minute)
}

func performRequest(h gin.HandlerFunc, path, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(path, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var er models.ErrorResponse
	if err := json.Unmarshal([]byte(body), &er); err != nil || er.Error == nil {
		t.Fatalf("body is not an error envelope: %s", body)
	}
	return er.Error.Code
}

func TestRender_PropagatesStatusAndHeaders(t *testing.T) {
	eng := &stubEngine{serialized: &models.SerializedResponse{
		Status:        404,
		CustomHeaders: map[string]string{"X-Original-Location": "/moved"},
		Content:       "<html><body>gone</body></html>",
	}}

	w := performRequest(Render(eng, nil, nil), "/render", "/render?url=https://example.com")

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if got := w.Header().Get("X-Original-Location"); got != "/moved" {
		t.Errorf("custom header = %q, want /moved", got)
	}
	if !strings.Contains(w.Body.String(), "gone") {
		t.Errorf("body lost: %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestRender_MissingURL(t *testing.T) {
	w := performRequest(Render(&stubEngine{}, nil, nil), "/render", "/render")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w.Body.String()); code != models.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", code, models.ErrCodeInvalidInput)
	}
}

func TestRender_RejectsUnknownFormat(t *testing.T) {
	w := performRequest(Render(&stubEngine{}, nil, nil), "/render",
		"/render?url=https://example.com&format=pdf")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRender_MobileFlag(t *testing.T) {
	eng := &stubEngine{serialized: &models.SerializedResponse{Status: 200}}
	performRequest(Render(eng, nil, nil), "/render", "/render?url=https://example.com&mobile=true")

	if eng.lastReq == nil || !eng.lastReq.Mobile {
		t.Error("mobile=true not carried into the render request")
	}
	if eng.lastReq.Mode != models.ModeFull {
		t.Errorf("mode = %q, want full", eng.lastReq.Mode)
	}
}

func TestRender_BrowserUnavailable(t *testing.T) {
	eng := &stubEngine{err: models.NewRenderError(
		models.ErrCodeBrowserUnavailable, "browser is restarting", nil)}

	w := performRequest(Render(eng, nil, nil), "/render", "/render?url=https://example.com")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestPreview_ReturnsJSON(t *testing.T) {
	title := "Example Title"
	eng := &stubEngine{preview: &models.PreviewResponse{
		Status: 200,
		Title:  &title,
		Domain: "example.com",
	}}

	w := performRequest(Preview(eng), "/preview", "/preview?url=https://www.example.com")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got models.PreviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != 200 || got.Domain != "example.com" {
		t.Errorf("got %+v", got)
	}
	if got.Title == nil || *got.Title != title {
		t.Errorf("title = %v, want %q", got.Title, title)
	}
	if got.Description != nil || got.Img != nil {
		t.Errorf("absent fields should stay null: %+v", got)
	}
}

func TestPreview_NullFieldsSerializedExplicitly(t *testing.T) {
	eng := &stubEngine{preview: &models.PreviewResponse{Status: 200, Domain: "example.com"}}
	w := performRequest(Preview(eng), "/preview", "/preview?url=https://example.com")

	body := w.Body.String()
	for _, field := range []string{`"title":null`, `"description":null`, `"img":null`} {
		if !strings.Contains(body, field) {
			t.Errorf("body missing %s: %s", field, body)
		}
	}
}

func TestScreenshot_ReturnsJPEG(t *testing.T) {
	eng := &stubEngine{image: []byte{0xFF, 0xD8, 0xFF}}
	w := performRequest(Screenshot(eng), "/screenshot",
		"/screenshot?url=https://example.com&width=800&height=600&quality=70&fullPage=true")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", ct)
	}
	if eng.lastReq.Viewport.Width != 800 || eng.lastReq.Viewport.Height != 600 {
		t.Errorf("viewport = %+v", eng.lastReq.Viewport)
	}
	if q, ok := eng.lastReq.ScreenshotOptions["quality"].(int); !ok || q != 70 {
		t.Errorf("quality option = %v", eng.lastReq.ScreenshotOptions["quality"])
	}
	if fp, ok := eng.lastReq.ScreenshotOptions["fullPage"].(bool); !ok || !fp {
		t.Error("fullPage option not set")
	}
}

func TestScreenshot_ForbiddenMapsTo403(t *testing.T) {
	eng := &stubEngine{err: models.NewRenderError(
		models.ErrCodeForbidden, "target resolves to a cloud metadata endpoint", nil)}

	w := performRequest(Screenshot(eng), "/screenshot", "/screenshot?url=https://example.com")

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestScreenshot_OtherFailuresMapTo500(t *testing.T) {
	codes := []string{
		models.ErrCodeNoResponse,
		models.ErrCodeTimeout,
		models.ErrCodeBrowserUnavailable,
		models.ErrCodeInternal,
	}
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			eng := &stubEngine{err: models.NewRenderError(code, "boom", nil)}
			w := performRequest(Screenshot(eng), "/screenshot", "/screenshot?url=https://example.com")

			if w.Code != http.StatusInternalServerError {
				t.Errorf("status for %s = %d, want 500", code, w.Code)
			}
		})
	}
}

func TestHealth_OK(t *testing.T) {
	w := performRequest(Health(&stubStatus{alive: true, active: 3}), "/healthz", "/healthz")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != "ok" || !got.BrowserAlive || got.ActivePages != 3 || got.MaxPages != 10 {
		t.Errorf("got %+v", got)
	}
}

func TestHealth_Degraded(t *testing.T) {
	w := performRequest(Health(&stubStatus{alive: false}), "/healthz", "/healthz")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"degraded"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
