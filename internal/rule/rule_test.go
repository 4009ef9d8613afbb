package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/rule/matchers"
)

func req(name string) *matchers.Request {
	return matchers.NewRequest(capture.Record{Name: name})
}

func TestParse_Matches(t *testing.T) {
	post := matchers.NewRequest(capture.Record{
		Name:    "https://track.example.com/collect?ev=click&id=123",
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "text/plain", "X-Trace": "abc-001"},
	})

	tests := []struct {
		rule string
		req  *matchers.Request
		want bool
	}{
		{rule: "Host{track.example.com}", req: post, want: true},
		{rule: "Host{*.example.com}", req: post, want: true},
		{rule: "Host{example.org}", req: post, want: false},
		{rule: "Path{/collect}", req: post, want: true},
		{rule: "PathPrefix{/col}", req: post, want: true},
		{rule: "Method{GET, post}", req: post, want: true},
		{rule: "Method{GET}", req: req("http://x.com/"), want: false},
		{rule: "Header{content-type=text/plain}", req: post, want: true},
		{rule: "HeaderRegex{X-Trace=^abc-\\d{3}$}", req: post, want: true},
		{rule: "Query{id=12}", req: post, want: true},
		{rule: "Query{id==12}", req: post, want: false},
		{rule: "Query{missing=1}", req: post, want: false},
		{rule: "QueryRegex{ev=li}", req: post, want: true},
		{rule: "Contains{ev=click}", req: post, want: true},
		{rule: "Host{*.example.com} && Query{ev=click}", req: post, want: true},
		{rule: "Host{example.org} || Query{ev=click}", req: post, want: true},
		{rule: "!Query{ev=click}", req: post, want: false},
		{rule: "(Host{a.com} || Host{*.example.com}) && !Method{GET}", req: post, want: true},
		{rule: "Contains{%zz}", req: req("http://x.com/%zz?a=1"), want: true},
		{rule: "Host{x.com}", req: req("http://x.com/%zz?a=1"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r, err := Parse(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Match(tt.req))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"",
		"Host",
		"Host{a.com",
		"(Host{a.com}",
		"Unknown{x}",
		"Header{novalue}",
		"HeaderRegex{k=(}",
		"Query{=1}",
		"Query{id=(}",
		"QueryRegex{k=[}",
		"Contains{}",
		"Host{a.com} extra",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	// && binds tighter than ||
	r, err := Parse("Host{a.com} || Host{b.com} && Path{/x}")
	require.NoError(t, err)

	or, ok := r.(*OrRule)
	require.True(t, ok)
	assert.IsType(t, &AndRule{}, or.Right)
	assert.True(t, r.Match(req("http://a.com/y")))
	assert.False(t, r.Match(req("http://b.com/y")))
}
