// Package capture holds request records observed from a browser session and
// the providers that supply them.
package capture

import (
	"context"
	"time"
)

// Record is one captured outbound request. Name is the full URL.
type Record struct {
	Name    string            `json:"name" yaml:"name"`
	Method  string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Time    time.Time         `json:"time,omitempty" yaml:"time,omitempty"`
}

// Provider returns every request captured for the current session.
type Provider interface {
	GetRequests(ctx context.Context) ([]Record, error)
}

// Records is a fixed list of records that acts as a Provider.
type Records []Record

// GetRequests returns a copy of the list.
func (r Records) GetRequests(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(r))
	copy(out, r)
	return out, nil
}

// Names builds records from bare URLs.
func Names(urls ...string) Records {
	out := make(Records, len(urls))
	for i, u := range urls {
		out[i] = Record{Name: u}
	}
	return out
}
