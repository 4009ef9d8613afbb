// Package rule parses and evaluates filter expressions such as
// `Host{*.example.com} && PathPrefix{/collect} && !Query{debug=1}` against
// captured requests.
package rule

import "github.com/simman/go-hasrequest/internal/rule/matchers"

// Rule represents a matching rule interface
type Rule interface {
	Match(req *matchers.Request) bool
}

// AndRule combines two rules with AND logic
type AndRule struct {
	Left  Rule
	Right Rule
}

// Match returns true if both left and right rules match
func (r *AndRule) Match(req *matchers.Request) bool {
	return r.Left.Match(req) && r.Right.Match(req)
}

// OrRule combines two rules with OR logic
type OrRule struct {
	Left  Rule
	Right Rule
}

// Match returns true if either left or right rule matches
func (r *OrRule) Match(req *matchers.Request) bool {
	return r.Left.Match(req) || r.Right.Match(req)
}

// NotRule negates a rule
type NotRule struct {
	Inner Rule
}

// Match returns the opposite of the inner rule's match
func (r *NotRule) Match(req *matchers.Request) bool {
	return !r.Inner.Match(req)
}
