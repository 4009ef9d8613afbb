package matchers

import (
	"strings"
)

// HostMatcher matches requests based on the URL host
type HostMatcher struct {
	Pattern string
}

// Match checks if the request matches the host pattern
func (m *HostMatcher) Match(req *Request) bool {
	host := strings.ToLower(req.Host())
	if host == "" {
		return false
	}
	pattern := strings.ToLower(m.Pattern)

	// Exact match
	if pattern == host {
		return true
	}

	// Wildcard match (*.example.com)
	if strings.HasPrefix(pattern, "*.") {
		domain := pattern[2:]
		return strings.HasSuffix(host, "."+domain) || host == domain
	}

	return false
}

// ContainsMatcher matches requests whose full URL contains a substring
type ContainsMatcher struct {
	Substring string
}

// Match checks the raw URL, so malformed URLs can still match
func (m *ContainsMatcher) Match(req *Request) bool {
	return strings.Contains(req.Raw, m.Substring)
}
