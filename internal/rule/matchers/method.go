package matchers

import (
	"strings"
)

// MethodMatcher matches requests based on HTTP method. Records without a
// method (bare URLs) never match.
type MethodMatcher struct {
	Methods []string
}

// Match checks if the request method matches any of the allowed methods
func (m *MethodMatcher) Match(req *Request) bool {
	for _, allowed := range m.Methods {
		if strings.EqualFold(allowed, req.Method) && req.Method != "" {
			return true
		}
	}
	return false
}
