package renderer

import (
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

func TestIsMetadataEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"gce metadata", map[string]string{"Metadata-Flavor": "Google"}, true},
		{"lowercase key", map[string]string{"metadata-flavor": "Google"}, true},
		{"wrong value", map[string]string{"Metadata-Flavor": "AWS"}, false},
		{"value case sensitive", map[string]string{"Metadata-Flavor": "google"}, false},
		{"absent", map[string]string{"Content-Type": "text/html"}, false},
		{"empty", map[string]string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMetadataEndpoint(tt.headers); got != tt.want {
				t.Errorf("isMetadataEndpoint(%v) = %v, want %v", tt.headers, got, tt.want)
			}
		})
	}
}

func TestHeaderMap(t *testing.T) {
	in := proto.NetworkHeaders{
		"Content-Type":    gson.New("text/html"),
		"Metadata-Flavor": gson.New("Google"),
	}
	got := headerMap(in)
	if len(got) != 2 {
		t.Fatalf("headerMap returned %d entries, want 2", len(got))
	}
	if got["Content-Type"] != "text/html" || got["Metadata-Flavor"] != "Google" {
		t.Errorf("headerMap = %v", got)
	}
}

func TestResolveCapture(t *testing.T) {
	first := &proto.NetworkResponse{Status: 200, URL: "https://example.com/"}
	redirected := &proto.NetworkResponse{
		Status: 200,
		URL:    "http://169.254.169.254/computeMetadata/v1/",
		Headers: proto.NetworkHeaders{
			"Metadata-Flavor": gson.New("Google"),
		},
	}

	tests := []struct {
		name          string
		first, latest *proto.NetworkResponse
		timedOut      bool
		want          *proto.NetworkResponse
	}{
		{"single document", first, first, false, first},
		{"client redirect resolves to last document", first, redirected, false, redirected},
		{"timeout falls back to first", first, redirected, true, first},
		{"nothing captured", nil, nil, false, nil},
		{"timeout with nothing captured", nil, nil, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveCapture(tt.first, tt.latest, tt.timedOut); got != tt.want {
				t.Errorf("resolveCapture(%p, %p, %v) = %p, want %p",
					tt.first, tt.latest, tt.timedOut, got, tt.want)
			}
		})
	}
}

func TestResolveCapture_MetadataRedirectIsGuarded(t *testing.T) {
	// A page that answers cleanly and then script-navigates into a cloud
	// metadata endpoint before network idle must be judged by the endpoint
	// it landed on: the guard inspects the resolved document's headers.
	first := &proto.NetworkResponse{Status: 200, URL: "https://innocent.example.com/"}
	latest := &proto.NetworkResponse{
		Status: 200,
		URL:    "http://169.254.169.254/computeMetadata/v1/",
		Headers: proto.NetworkHeaders{
			"Metadata-Flavor": gson.New("Google"),
		},
	}

	captured := resolveCapture(first, latest, false)
	if captured != latest {
		t.Fatal("resolved capture should be the final document")
	}
	if !isMetadataEndpoint(headerMap(captured.Headers)) {
		t.Error("metadata endpoint reached via client redirect must trip the guard")
	}
}

func TestParseTarget(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/page?q=1",
		"https://example.com:8443/deep/path",
	}
	for _, raw := range valid {
		if _, err := parseTarget(raw); err != nil {
			t.Errorf("parseTarget(%q) unexpected error: %v", raw, err)
		}
	}

	invalid := []string{
		"",
		"example.com",
		"/relative/path",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
	}
	for _, raw := range invalid {
		if _, err := parseTarget(raw); err == nil {
			t.Errorf("parseTarget(%q) should fail", raw)
		} else if !strings.Contains(err.Error(), "INVALID_INPUT") {
			t.Errorf("parseTarget(%q) error should carry INVALID_INPUT, got %v", raw, err)
		}
	}
}
