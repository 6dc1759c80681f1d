package renderer

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	tls2 "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// staticFetcher performs HTTP requests with a Chrome TLS fingerprint (utls).
// It backs the degraded full-mode path served while the browser restarts.
type staticFetcher struct{}

func newStaticFetcher() *staticFetcher {
	return &staticFetcher{}
}

// fetch retrieves the URL via plain HTTP and returns the status code and
// body (capped at 10 MB). Non-2xx statuses are not errors: the caller
// delivers whatever the origin answered.
func (f *staticFetcher) fetch(ctx context.Context, targetURL string) (int, []byte, error) {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("staticfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("staticfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return 0, nil, fmt.Errorf("staticfetch: read body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
