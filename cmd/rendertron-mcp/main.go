package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// previewResponse mirrors the Rendertron API preview model.
type previewResponse struct {
	Status      int     `json:"status"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Domain      string  `json:"domain"`
	Img         *string `json:"img"`
}

// errorResponse mirrors the Rendertron API error envelope.
type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("RENDERTRON_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("RENDERTRON_API_KEY")

	s := server.NewMCPServer(
		"rendertron",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	renderPageTool := mcp.NewTool("render_page",
		mcp.WithDescription("Render a web page in a headless browser and return the fully rendered, script-free HTML (or markdown). Useful for JavaScript-heavy pages that plain HTTP fetches cannot read."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to render"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'html' (default) or 'markdown' (readability-extracted main content)"),
			mcp.Enum("html", "markdown"),
		),
		mcp.WithBoolean("mobile",
			mcp.Description("Render with mobile device emulation"),
		),
	)
	s.AddTool(renderPageTool, handleRenderPage(apiURL, apiKey))

	previewPageTool := mcp.NewTool("preview_page",
		mcp.WithDescription("Render a web page and return its link-preview metadata: title, description, domain and representative image."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to preview"),
		),
		mcp.WithBoolean("mobile",
			mcp.Description("Render with mobile device emulation"),
		),
	)
	s.AddTool(previewPageTool, handlePreviewPage(apiURL, apiKey))

	screenshotPageTool := mcp.NewTool("screenshot_page",
		mcp.WithDescription("Render a web page in a headless browser and capture a JPEG screenshot."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to capture"),
		),
		mcp.WithBoolean("mobile",
			mcp.Description("Capture with mobile device emulation"),
		),
		mcp.WithNumber("width",
			mcp.Description("Viewport width in pixels (default: 1000)"),
		),
		mcp.WithNumber("height",
			mcp.Description("Viewport height in pixels (default: 1000)"),
		),
		mcp.WithNumber("quality",
			mcp.Description("JPEG quality 0-100"),
		),
		mcp.WithBoolean("fullPage",
			mcp.Description("Capture the full scrollable page, not just the viewport"),
		),
	)
	s.AddTool(screenshotPageTool, handleScreenshotPage(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet performs a GET against the Rendertron API and returns the status,
// content type and body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string, query url.Values) (int, string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return 0, "", nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

// apiErrorMessage extracts the error message from an API error body, falling
// back to the raw body when it does not parse.
func apiErrorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != nil {
		return fmt.Sprintf("%s: %s", er.Error.Code, er.Error.Message)
	}
	return string(body)
}

func handleRenderPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		q := url.Values{}
		q.Set("url", target)
		if format := request.GetString("format", ""); format != "" {
			q.Set("format", format)
		}
		if request.GetBool("mobile", false) {
			q.Set("mobile", "true")
		}

		status, _, body, err := apiGet(ctx, client, apiURL, apiKey, "/render", q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status >= 500 || status == http.StatusUnauthorized || status == http.StatusTooManyRequests {
			return mcp.NewToolResultError(apiErrorMessage(body)), nil
		}

		// Non-200 render statuses (page-declared overrides, 400/403 outcomes)
		// still carry a usable body; report the status alongside it.
		if status != http.StatusOK {
			return mcp.NewToolResultText(fmt.Sprintf("[status %d]\n%s", status, body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func handlePreviewPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		q := url.Values{}
		q.Set("url", target)
		if request.GetBool("mobile", false) {
			q.Set("mobile", "true")
		}

		status, _, body, err := apiGet(ctx, client, apiURL, apiKey, "/preview", q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body)), nil
		}

		var preview previewResponse
		if err := json.Unmarshal(body, &preview); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse preview response: %v", err)), nil
		}

		pretty, err := json.MarshalIndent(preview, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("format preview response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(pretty)), nil
	}
}

func handleScreenshotPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		q := url.Values{}
		q.Set("url", target)
		if request.GetBool("mobile", false) {
			q.Set("mobile", "true")
		}
		if w := request.GetInt("width", 0); w > 0 {
			q.Set("width", strconv.Itoa(w))
		}
		if h := request.GetInt("height", 0); h > 0 {
			q.Set("height", strconv.Itoa(h))
		}
		if quality := request.GetInt("quality", 0); quality > 0 {
			q.Set("quality", strconv.Itoa(quality))
		}
		if request.GetBool("fullPage", false) {
			q.Set("fullPage", "true")
		}

		status, contentType, body, err := apiGet(ctx, client, apiURL, apiKey, "/screenshot", q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body)), nil
		}
		if contentType == "" {
			contentType = "image/jpeg"
		}

		encoded := base64.StdEncoding.EncodeToString(body)
		return mcp.NewToolResultImage(
			fmt.Sprintf("Screenshot of %s (%d bytes)", target, len(body)),
			encoded,
			contentType,
		), nil
	}
}
