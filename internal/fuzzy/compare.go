// Package fuzzy compares URL query parameters against expected parameter
// sets, accepting exact values or regular expressions anchored at the start
// of the actual value.
package fuzzy

import (
	"sort"
)

// Reason explains the outcome for a single key.
type Reason string

const (
	ReasonMatched    Reason = "matched"
	ReasonKeyPresent Reason = "key present"
	ReasonMissing    Reason = "missing"
	ReasonUnexpected Reason = "unexpected"
	ReasonMismatch   Reason = "mismatch"
	ReasonBadPattern Reason = "bad pattern"
)

// Outcome is the result of checking one key.
type Outcome struct {
	Key      string
	Expected string
	Actual   string
	Reason   Reason
	Err      error
}

// OK reports whether the key passed.
func (o Outcome) OK() bool {
	return o.Reason == ReasonMatched || o.Reason == ReasonKeyPresent
}

// Comparison is the result of CompareAll. Outcomes stop at the first
// failing key.
type Comparison struct {
	Matched  bool
	Outcomes []Outcome
}

// Failure returns the failing outcome, if any.
func (c Comparison) Failure() (Outcome, bool) {
	if n := len(c.Outcomes); n > 0 && !c.Outcomes[n-1].OK() {
		return c.Outcomes[n-1], true
	}
	return Outcome{}, false
}

// CompareAll checks that actual has exactly the keys of expected and that
// every value satisfies its expectation. Keys are checked in expected's
// order and the scan stops at the first failure. With keysOnly set, values
// are not compared.
func CompareAll(actual QueryParams, expected ParameterSet, keysOnly bool) Comparison {
	if actual == nil || expected == nil {
		return Comparison{}
	}

	var c Comparison
	for _, p := range expected {
		if _, ok := actual[p.Key]; !ok {
			c.Outcomes = append(c.Outcomes, Outcome{
				Key:      p.Key,
				Expected: p.Want.String(),
				Reason:   ReasonMissing,
			})
			return c
		}
	}
	if extra, ok := firstUnexpected(actual, expected); ok {
		c.Outcomes = append(c.Outcomes, Outcome{
			Key:    extra,
			Actual: actual[extra],
			Reason: ReasonUnexpected,
		})
		return c
	}

	for _, p := range expected {
		got := actual[p.Key]
		o := Outcome{Key: p.Key, Expected: p.Want.String(), Actual: got}
		if keysOnly {
			o.Reason = ReasonKeyPresent
			c.Outcomes = append(c.Outcomes, o)
			continue
		}

		ok, err := p.Want.Match(got)
		switch {
		case ok:
			o.Reason = ReasonMatched
		case err != nil:
			o.Reason = ReasonBadPattern
			o.Err = err
		default:
			o.Reason = ReasonMismatch
		}
		c.Outcomes = append(c.Outcomes, o)
		if !ok {
			return c
		}
	}

	c.Matched = true
	return c
}

func firstUnexpected(actual QueryParams, expected ParameterSet) (string, bool) {
	var extra []string
	for key := range actual {
		if _, ok := expected.Get(key); !ok {
			extra = append(extra, key)
		}
	}
	if len(extra) == 0 {
		return "", false
	}
	sort.Strings(extra)
	return extra[0], true
}
