package matchers

import (
	"net/url"
	"strings"

	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/fuzzy"
)

// Request is the parsed view of a captured record that matchers inspect.
// URL is nil when the record name does not parse; Raw and Query are always
// set.
type Request struct {
	Raw     string
	URL     *url.URL
	Query   fuzzy.QueryParams
	Method  string
	Headers map[string]string
}

// NewRequest parses a record without failing on malformed URLs.
func NewRequest(rec capture.Record) *Request {
	u, rawQuery := fuzzy.SplitURL(rec.Name)
	return &Request{
		Raw:     rec.Name,
		URL:     u,
		Query:   fuzzy.ParseQuery(rawQuery),
		Method:  rec.Method,
		Headers: rec.Headers,
	}
}

// Host returns the host without port, or "" if the URL did not parse.
func (r *Request) Host() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}

// Path returns the URL path, or "" if the URL did not parse.
func (r *Request) Path() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Path
}

// Header looks up a header case-insensitively.
func (r *Request) Header(key string) (string, bool) {
	if v, ok := r.Headers[key]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
