package forwarder

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// hopHeaders are connection-scoped and must not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder sends proxied requests to their origin, optionally through an
// upstream proxy.
type Forwarder struct {
	mu      sync.Mutex
	clients map[string]*http.Client // keyed by upstream proxy URL
}

// NewForwarder creates a new forwarder
func NewForwarder() *Forwarder {
	return &Forwarder{
		clients: make(map[string]*http.Client),
	}
}

// Forward sends r to the absolute URL it names and copies the response
// back to w.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, upstreamProxy string) error {
	if !r.URL.IsAbs() {
		return fmt.Errorf("request URL %q is not absolute", r.URL.String())
	}

	client, err := f.getClient(upstreamProxy)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	targetURL := r.URL.String()
	proxyReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
	if err != nil {
		return fmt.Errorf("failed to create proxy request: %w", err)
	}
	proxyReq.ContentLength = r.ContentLength

	copyHeaders(proxyReq.Header, r.Header)
	removeHopHeaders(proxyReq.Header)
	proxyReq.Host = r.Host

	start := time.Now()
	resp, err := client.Do(proxyReq)
	if err != nil {
		log.Error().
			Err(err).
			Str("target", targetURL).
			Msg("request failed")
		return fmt.Errorf("failed to forward request: %w", err)
	}
	defer resp.Body.Close()

	log.Info().
		Str("method", r.Method).
		Str("target", targetURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request forwarded")

	removeHopHeaders(resp.Header)
	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Error().Err(err).Msg("failed to copy response body")
		return fmt.Errorf("failed to copy response: %w", err)
	}

	return nil
}

// getClient returns or creates an HTTP client for the given proxy URL
func (f *Forwarder) getClient(proxyURL string) (*http.Client, error) {
	key := proxyURL
	if key == "" {
		key = "direct"
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[key]; ok {
		return client, nil
	}

	client, err := createClient(proxyURL)
	if err != nil {
		return nil, err
	}

	f.clients[key] = client
	return client, nil
}

// createClient creates a new HTTP client with the specified proxy
func createClient(proxyURL string) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	if proxyURL != "" {
		proxy, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		log.Warn().Err(err).Msg("failed to configure HTTP/2 transport")
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// The browser follows redirects itself, and each hop is captured.
			return http.ErrUseLastResponse
		},
	}, nil
}

// copyHeaders copies HTTP headers from src to dst
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}

// Close closes all HTTP clients
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, client := range f.clients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
	return nil
}
