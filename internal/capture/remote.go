package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// RequestsPath is where a capture proxy serves its records.
const RequestsPath = "/__hasrequest/requests"

// RemoteProvider fetches records from a running capture proxy.
type RemoteProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteProvider creates a provider for the proxy at baseURL.
func NewRemoteProvider(baseURL string) *RemoteProvider {
	transport := &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		log.Warn().Err(err).Msg("failed to configure HTTP/2 transport")
	}

	return &RemoteProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// GetRequests asks the proxy for its records.
func (p *RemoteProvider) GetRequests(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+RequestsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capture proxy returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	records, err := DecodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}

// NewProvider picks a RemoteProvider for http(s) sources and a FileProvider
// otherwise.
func NewProvider(source string) Provider {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewRemoteProvider(source)
	}
	return &FileProvider{Path: source}
}
