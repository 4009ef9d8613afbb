package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/internal/rule/matchers"
)

// Parse parses a rule string into a Rule
func Parse(ruleStr string) (Rule, error) {
	p := &parser{
		input: strings.TrimSpace(ruleStr),
		pos:   0,
	}
	if p.input == "" {
		return nil, fmt.Errorf("empty rule")
	}

	rule, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected %q at position %d", p.input[p.pos:], p.pos)
	}
	return rule, nil
}

type parser struct {
	input string
	pos   int
}

// parseOr handles OR operations (lowest precedence)
func (p *parser) parseOr() (Rule, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.matchString("||") {
			break
		}
		p.pos += 2
		p.skipWhitespace()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrRule{Left: left, Right: right}
	}

	return left, nil
}

// parseAnd handles AND operations
func (p *parser) parseAnd() (Rule, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.matchString("&&") {
			break
		}
		p.pos += 2
		p.skipWhitespace()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndRule{Left: left, Right: right}
	}

	return left, nil
}

// parseUnary handles NOT operations and parentheses
func (p *parser) parseUnary() (Rule, error) {
	p.skipWhitespace()

	if p.matchChar('!') {
		p.pos++
		p.skipWhitespace()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotRule{Inner: inner}, nil
	}

	if p.matchChar('(') {
		p.pos++
		p.skipWhitespace()
		rule, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if !p.matchChar(')') {
			return nil, fmt.Errorf("expected ')' at position %d", p.pos)
		}
		p.pos++
		return rule, nil
	}

	return p.parseMatcher()
}

// parseMatcher parses individual matchers like Host{example.com}
func (p *parser) parseMatcher() (Rule, error) {
	p.skipWhitespace()

	nameStart := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '{' && p.input[p.pos] != ' ' {
		p.pos++
	}

	if nameStart == p.pos {
		return nil, fmt.Errorf("expected matcher name at position %d", p.pos)
	}

	name := p.input[nameStart:p.pos]
	p.skipWhitespace()

	if !p.matchChar('{') {
		return nil, fmt.Errorf("expected '{' after matcher name at position %d", p.pos)
	}
	p.pos++

	// Braces may nest inside regex values, e.g. QueryRegex{id=\d{3}}
	valueStart := p.pos
	depth := 1
	for p.pos < len(p.input) && depth > 0 {
		if p.input[p.pos] == '{' {
			depth++
		} else if p.input[p.pos] == '}' {
			depth--
		}
		if depth > 0 {
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unmatched braces at position %d", p.pos)
	}

	value := p.input[valueStart:p.pos]
	p.pos++

	return createMatcher(name, value)
}

// createMatcher creates a matcher based on the name and value
func createMatcher(name, value string) (Rule, error) {
	switch name {
	case "Contains":
		if value == "" {
			return nil, fmt.Errorf("Contains matcher needs a value")
		}
		return &matchers.ContainsMatcher{Substring: value}, nil

	case "Host":
		return &matchers.HostMatcher{Pattern: strings.TrimSpace(value)}, nil

	case "Path":
		return &matchers.PathMatcher{Path: strings.TrimSpace(value)}, nil

	case "PathPrefix":
		return &matchers.PathPrefixMatcher{Prefix: strings.TrimSpace(value)}, nil

	case "Method":
		methods := strings.Split(value, ",")
		for i := range methods {
			methods[i] = strings.TrimSpace(methods[i])
		}
		return &matchers.MethodMatcher{Methods: methods}, nil

	case "Header":
		key, val, err := splitPair(name, value)
		if err != nil {
			return nil, err
		}
		return &matchers.HeaderMatcher{Key: key, Value: val}, nil

	case "HeaderRegex":
		key, val, err := splitPair(name, value)
		if err != nil {
			return nil, err
		}
		pattern, err := regexp.Compile(val)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return &matchers.HeaderRegexMatcher{Key: key, Pattern: pattern}, nil

	case "Query":
		key, want, err := fuzzy.ParseParam(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Query matcher: %w", err)
		}
		if _, err := want.Compile(); err != nil {
			return nil, err
		}
		return &matchers.QueryMatcher{Key: key, Want: want}, nil

	case "QueryRegex":
		key, val, err := splitPair(name, value)
		if err != nil {
			return nil, err
		}
		pattern, err := regexp.Compile(val)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return &matchers.QueryRegexMatcher{Key: key, Pattern: pattern}, nil

	default:
		return nil, fmt.Errorf("unknown matcher: %s", name)
	}
}

func splitPair(name, value string) (string, string, error) {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid %s matcher format, expected Key=Value", name)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// skipWhitespace skips whitespace characters
func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n' || p.input[p.pos] == '\r') {
		p.pos++
	}
}

// matchChar checks if the current character matches
func (p *parser) matchChar(ch byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == ch
}

// matchString checks if the current position matches the string
func (p *parser) matchString(s string) bool {
	return p.pos+len(s) <= len(p.input) && p.input[p.pos:p.pos+len(s)] == s
}
