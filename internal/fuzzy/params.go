package fuzzy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is one expected query parameter.
type Param struct {
	Key  string
	Want Expectation
}

// ParameterSet is an ordered set of expected query parameters. Keys are
// unique; the order is the order keys were first added.
type ParameterSet []Param

// Params builds a ParameterSet of pattern expectations from key, value pairs.
// It is meant for literal argument lists and, like strings.NewReplacer,
// panics on an odd number of arguments. Use Set or ParseParam for input
// that is not known at compile time.
func Params(kv ...string) ParameterSet {
	if len(kv)%2 != 0 {
		panic("fuzzy: Params needs key, value pairs")
	}
	ps := make(ParameterSet, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		ps = ps.Set(kv[i], Pattern(kv[i+1]))
	}
	return ps
}

// Set returns a set with key added, or with its expectation replaced at
// the same position. ps itself is never modified.
func (ps ParameterSet) Set(key string, want Expectation) ParameterSet {
	out := make(ParameterSet, len(ps), len(ps)+1)
	copy(out, ps)
	for i := range out {
		if out[i].Key == key {
			out[i].Want = want
			return out
		}
	}
	return append(out, Param{Key: key, Want: want})
}

// Get returns the expectation for key.
func (ps ParameterSet) Get(key string) (Expectation, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Want, true
		}
	}
	return Expectation{}, false
}

// Keys returns the keys in order.
func (ps ParameterSet) Keys() []string {
	keys := make([]string, len(ps))
	for i, p := range ps {
		keys[i] = p.Key
	}
	return keys
}

// ParseParam parses a command line parameter. "key=value" yields a pattern
// expectation, "key==value" a literal one.
func ParseParam(s string) (string, Expectation, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", Expectation{}, fmt.Errorf("invalid parameter %q, expected key=value or key==value", s)
	}
	if rest, literal := strings.CutPrefix(value, "="); literal {
		return key, Literal(rest), nil
	}
	return key, Pattern(value), nil
}

// MarshalJSON renders the set as a JSON object in key order. Literal values
// are rendered as {"literal": value}.
func (ps ParameterSet) MarshalJSON() ([]byte, error) {
	if ps == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if p.Want.Kind == KindLiteral {
			value, err = json.Marshal(map[string]string{"literal": p.Want.Value})
		} else {
			value, err = json.Marshal(p.Want.Value)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (ps ParameterSet) String() string {
	b, err := ps.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", []Param(ps))
	}
	return string(b)
}

// UnmarshalYAML decodes a mapping while keeping key order. Scalar values
// become patterns; a {literal: value} or {pattern: value} mapping selects
// the kind explicitly.
func (ps *ParameterSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}
	out := make(ParameterSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		want, err := decodeExpectation(valueNode)
		if err != nil {
			return fmt.Errorf("param %q: %w", keyNode.Value, err)
		}
		out = out.Set(keyNode.Value, want)
	}
	*ps = out
	return nil
}

func decodeExpectation(node *yaml.Node) (Expectation, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return Pattern(node.Value), nil
	case yaml.MappingNode:
		var tagged struct {
			Literal *string `yaml:"literal"`
			Pattern *string `yaml:"pattern"`
		}
		if err := node.Decode(&tagged); err != nil {
			return Expectation{}, err
		}
		switch {
		case tagged.Literal != nil && tagged.Pattern != nil:
			return Expectation{}, fmt.Errorf("line %d: literal and pattern are exclusive", node.Line)
		case tagged.Literal != nil:
			return Literal(*tagged.Literal), nil
		case tagged.Pattern != nil:
			return Pattern(*tagged.Pattern), nil
		}
		return Expectation{}, fmt.Errorf("line %d: expected literal or pattern", node.Line)
	default:
		return Expectation{}, fmt.Errorf("line %d: unsupported value", node.Line)
	}
}
