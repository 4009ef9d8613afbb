package matchers

import (
	"regexp"

	"github.com/simman/go-hasrequest/internal/fuzzy"
)

// QueryMatcher matches a single query parameter fuzzily: the exact value
// or a prefix pattern. Other parameters are ignored.
type QueryMatcher struct {
	Key  string
	Want fuzzy.Expectation
}

// Match checks if the query parameter is present and satisfies Want
func (m *QueryMatcher) Match(req *Request) bool {
	v, ok := req.Query[m.Key]
	if !ok {
		return false
	}
	matched, _ := m.Want.Match(v)
	return matched
}

// QueryRegexMatcher matches a query parameter against an unanchored regex
type QueryRegexMatcher struct {
	Key     string
	Pattern *regexp.Regexp
}

// Match checks if the query parameter is present and matches the pattern
func (m *QueryRegexMatcher) Match(req *Request) bool {
	v, ok := req.Query[m.Key]
	return ok && m.Pattern.MatchString(v)
}
