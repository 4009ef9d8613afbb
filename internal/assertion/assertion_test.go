package assertion

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/internal/rule"
)

func TestFindMatch(t *testing.T) {
	records := capture.Names(
		"http://x.com/home",
		"http://x.com/api?id=45",
		"http://x.com/api?id=12",
		"http://x.com/api?id=12&extra=1",
		"http://x.com/api?a=100%&b=x",
	)

	tests := []struct {
		name   string
		filter string
		params fuzzy.ParameterSet
		want   string
	}{
		{
			name:   "params select the record",
			filter: "api",
			params: fuzzy.Params("id", "12"),
			want:   "http://x.com/api?id=12",
		},
		{
			name:   "no params returns first filter match",
			filter: "api",
			want:   "http://x.com/api?id=45",
		},
		{
			name:   "filter matches nothing",
			filter: "collect",
			want:   NoMatchingRecords,
		},
		{
			name:   "filter matches nothing even with params",
			filter: "collect",
			params: fuzzy.Params("id", "12"),
			want:   NoMatchingRecords,
		},
		{
			name:   "prefix pattern",
			filter: "api",
			params: fuzzy.Params("id", "4"),
			want:   "http://x.com/api?id=45",
		},
		{
			name:   "extra key disqualifies",
			filter: "api",
			params: fuzzy.Params("id", "12", "extra", "2"),
			want:   NoMatchingRecords,
		},
		{
			name:   "stray percent is kept as text",
			filter: "api",
			params: fuzzy.Params("a", "100%", "b", "x"),
			want:   "http://x.com/api?a=100%&b=x",
		},
		{
			name:   "empty params need an empty query",
			filter: "x.com",
			params: fuzzy.ParameterSet{},
			want:   "http://x.com/home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindMatch(records, tt.filter, tt.params))
		})
	}
}

func TestFindMatch_EndToEnd(t *testing.T) {
	records := capture.Names("http://x.com/api?id=12", "http://x.com/api?id=45")
	got := FindMatch(records, "api", fuzzy.Params("id", "12"))
	assert.Equal(t, "http://x.com/api?id=12", got)
}

func TestFindMatch_MalformedURLIsSkippedNotFatal(t *testing.T) {
	records := capture.Names(
		"http://x.com/api%zz?id=99",
		"::::",
		"http://x.com/api?id=12",
	)
	assert.Equal(t, "http://x.com/api?id=12", FindMatch(records, "api", fuzzy.Params("id", "12")))

	// the malformed record's query is still readable
	assert.Equal(t, "http://x.com/api%zz?id=99", FindMatch(records, "api", fuzzy.Params("id", "99")))
}

func TestFindMatch_FilterSeesNormalizedURL(t *testing.T) {
	records := capture.Names("HTTP://X.COM/api?id=1")
	assert.Equal(t, "HTTP://X.COM/api?id=1", FindMatch(records, "http://x.com/api", fuzzy.Params("id", "1")))
	assert.Equal(t, "HTTP://X.COM/api?id=1", FindMatch(records, "X.COM", nil))
	assert.Equal(t, NoMatchingRecords, FindMatch(records, "y.com", nil))
}

func TestFindMatch_KeysOnly(t *testing.T) {
	records := capture.Names("http://x.com/api?id=12&ev=view")
	params := fuzzy.Params("ev", "click", "id", "0")

	assert.Equal(t, NoMatchingRecords, FindMatch(records, "api", params))
	assert.Equal(t, "http://x.com/api?id=12&ev=view", FindMatch(records, "api", params, KeysOnly(true)))
}

func TestFindMatch_Rule(t *testing.T) {
	records := []capture.Record{
		{Name: "http://x.com/api?id=12", Method: "GET"},
		{Name: "http://x.com/api?id=12", Method: "POST"},
	}
	r, err := rule.Parse("Method{POST}")
	require.NoError(t, err)

	got := FindMatch(records, "api", fuzzy.Params("id", "12"), WithRule(r))
	assert.Equal(t, "http://x.com/api?id=12", got)

	r, err = rule.Parse("Method{DELETE}")
	require.NoError(t, err)
	assert.Equal(t, NoMatchingRecords, FindMatch(records, "api", nil, WithRule(r)))
}

func TestFindMatch_Idempotent(t *testing.T) {
	records := capture.Names("http://x.com/api?id=12", "http://x.com/api?id=45")
	snapshot := append([]capture.Record(nil), records...)
	params := fuzzy.Params("id", "4")

	first := FindMatch(records, "api", params)
	second := FindMatch(records, "api", params)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, []capture.Record(records))
}

func TestFindMatch_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	records := capture.Names("http://x.com/api?id=34")

	got := FindMatch(records, "api", fuzzy.Params("id", "12"), WithLogger(logger))

	assert.Equal(t, NoMatchingRecords, got)
	out := buf.String()
	assert.Contains(t, out, `"url":"http://x.com/api?id=34"`)
	assert.Contains(t, out, `"param":"id"`)
	assert.Contains(t, out, `"result":"mismatch"`)
}

func TestAssertion_Expected(t *testing.T) {
	a := &Assertion{Filter: "collect"}
	assert.Equal(t, "A request matching 'collect' exists", a.Expected())
	assert.Equal(t, "Checking for request", a.Message())

	a.Params = fuzzy.Params("ev", "click", "id", "1.*")
	assert.Equal(t, `A request matching 'collect' with params {"ev":"click","id":"1.*"} exists`, a.Expected())
}

func TestAssertion_Pass(t *testing.T) {
	a := &Assertion{}
	assert.False(t, a.Pass(NoMatchingRecords))
	assert.True(t, a.Pass("http://x.com/"))
}

func TestAssertion_Validate(t *testing.T) {
	assert.NoError(t, (&Assertion{Filter: "api", Rule: "Host{x.com}", Params: fuzzy.Params("id", "1")}).Validate())

	err := (&Assertion{Rule: "Nope{", Params: fuzzy.Params("id", "(")}).Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestAssertion_ValueWithInvalidRule(t *testing.T) {
	a := &Assertion{Filter: "api", Rule: "Host{"}
	assert.Equal(t, NoMatchingRecords, a.Value(capture.Names("http://x.com/api"), zerolog.Nop()))
}

type failingProvider struct{}

func (failingProvider) GetRequests(context.Context) ([]capture.Record, error) {
	return nil, errors.New("driver gone")
}

func TestAssertion_Evaluate(t *testing.T) {
	provider := capture.Names("http://x.com/api?id=12")
	a := &Assertion{Name: "api call", Filter: "api", Params: fuzzy.Params("id", "12")}

	res, err := a.Evaluate(context.Background(), provider, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{
		Name:     "api call",
		Message:  Message,
		Expected: `A request matching 'api' with params {"id":"12"} exists`,
		Actual:   "http://x.com/api?id=12",
		Passed:   true,
	}, res)

	_, err = a.Evaluate(context.Background(), failingProvider{}, zerolog.Nop())
	assert.ErrorContains(t, err, "driver gone")
}

func TestEvaluateAll(t *testing.T) {
	provider := capture.Names("http://x.com/api?id=12", "http://x.com/collect?ev=view")
	assertions := []Assertion{
		{Name: "api", Filter: "api", Params: fuzzy.Params("id", "12")},
		{Name: "click", Filter: "collect", Params: fuzzy.Params("ev", "click")},
		{Filter: "missing"},
	}

	results, err := EvaluateAll(context.Background(), provider, assertions, zerolog.Nop())
	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.False(t, results[2].Passed)

	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "click")
	assert.Contains(t, errs[1].Error(), "assertion 2")

	_, err = EvaluateAll(context.Background(), failingProvider{}, assertions, zerolog.Nop())
	assert.Error(t, err)
}
