package fuzzy

import (
	"fmt"
	"regexp"
)

// Kind tells how an expected value is compared to an actual one.
type Kind int

const (
	// KindPattern accepts equality or a regexp match anchored at the start.
	KindPattern Kind = iota
	// KindLiteral accepts equality only.
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindLiteral:
		return "literal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Expectation is the expected value of a single query parameter.
type Expectation struct {
	Kind  Kind
	Value string
}

// Pattern returns an expectation that matches the value itself or any string
// the value matches as a prefix regular expression ("12" matches "123",
// "abc.*" matches "abcdef").
func Pattern(value string) Expectation {
	return Expectation{Kind: KindPattern, Value: value}
}

// Literal returns an expectation that only matches the exact value.
func Literal(value string) Expectation {
	return Expectation{Kind: KindLiteral, Value: value}
}

// Compile returns the anchored regexp for a pattern expectation.
// Literal expectations have no regexp and return nil.
func (e Expectation) Compile() (*regexp.Regexp, error) {
	if e.Kind != KindPattern {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + e.Value + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", e.Value, err)
	}
	return re, nil
}

// Match reports whether actual satisfies the expectation. Equality is checked
// first, so a malformed pattern still matches its own text; otherwise the
// compile error is returned alongside false.
func (e Expectation) Match(actual string) (bool, error) {
	if actual == e.Value {
		return true, nil
	}
	if e.Kind == KindLiteral {
		return false, nil
	}
	re, err := e.Compile()
	if err != nil {
		return false, err
	}
	return re.MatchString(actual), nil
}

func (e Expectation) String() string {
	if e.Kind == KindLiteral {
		return "==" + e.Value
	}
	return e.Value
}
