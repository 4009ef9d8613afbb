package matchers

import (
	"regexp"
)

// HeaderMatcher matches requests based on header key-value pairs
type HeaderMatcher struct {
	Key   string
	Value string
}

// Match checks if the request has the specified header with the exact value
func (m *HeaderMatcher) Match(req *Request) bool {
	v, ok := req.Header(m.Key)
	return ok && v == m.Value
}

// HeaderRegexMatcher matches requests based on header key and value regex pattern
type HeaderRegexMatcher struct {
	Key     string
	Pattern *regexp.Regexp
}

// Match checks if the request header matches the regex pattern
func (m *HeaderRegexMatcher) Match(req *Request) bool {
	v, ok := req.Header(m.Key)
	if !ok || v == "" {
		return false
	}
	return m.Pattern.MatchString(v)
}
