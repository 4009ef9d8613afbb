package fuzzy

import (
	"net/url"
	"strings"
)

// QueryParams holds the decoded query of a URL, one value per key.
type QueryParams map[string]string

// ParseQuery decodes a raw query string. For repeated keys the last value
// wins. Malformed percent escapes are kept as literal text.
func ParseQuery(rawQuery string) QueryParams {
	q := make(QueryParams)
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		q[unescape(key)] = unescape(value)
	}
	return q
}

// unescape decodes s like url.QueryUnescape, but leaves any '%' that does
// not start a valid escape untouched instead of failing.
func unescape(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// SplitURL returns the query string of raw. It never fails: if raw does
// not parse as a URL, the query is whatever follows the first '?' up to
// an optional '#'.
func SplitURL(raw string) (u *url.URL, rawQuery string) {
	if parsed, err := url.Parse(raw); err == nil {
		return parsed, parsed.RawQuery
	}
	_, after, ok := strings.Cut(raw, "?")
	if !ok {
		return nil, ""
	}
	after, _, _ = strings.Cut(after, "#")
	return nil, after
}
