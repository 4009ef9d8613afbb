package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareAll(t *testing.T) {
	tests := []struct {
		name       string
		actual     QueryParams
		expected   ParameterSet
		keysOnly   bool
		wantMatch  bool
		wantReason Reason
		wantKey    string
	}{
		{
			name:      "identical params",
			actual:    QueryParams{"a": "5", "b": "xyz"},
			expected:  Params("a", "5", "b", "xyz"),
			wantMatch: true,
		},
		{
			name:      "prefix regex",
			actual:    QueryParams{"id": "123"},
			expected:  Params("id", "12"),
			wantMatch: true,
		},
		{
			name:      "wildcard regex",
			actual:    QueryParams{"ev": "abcdef"},
			expected:  Params("ev", "abc.*"),
			wantMatch: true,
		},
		{
			name:       "regex is anchored at the start",
			actual:     QueryParams{"id": "9123"},
			expected:   Params("id", "12"),
			wantReason: ReasonMismatch,
			wantKey:    "id",
		},
		{
			name:       "literal mismatch",
			actual:     QueryParams{"id": "34"},
			expected:   Params("id", "12"),
			wantReason: ReasonMismatch,
			wantKey:    "id",
		},
		{
			name:       "extra actual key",
			actual:     QueryParams{"a": "5", "b": "xyz"},
			expected:   Params("a", "5"),
			wantReason: ReasonUnexpected,
			wantKey:    "b",
		},
		{
			name:       "missing expected key",
			actual:     QueryParams{"a": "5"},
			expected:   Params("a", "5", "b", "xyz"),
			wantReason: ReasonMissing,
			wantKey:    "b",
		},
		{
			name:       "literal does not use regex",
			actual:     QueryParams{"id": "123"},
			expected:   ParameterSet{{Key: "id", Want: Literal("12")}},
			wantReason: ReasonMismatch,
			wantKey:    "id",
		},
		{
			name:      "literal equality",
			actual:    QueryParams{"v": "a.b"},
			expected:  ParameterSet{{Key: "v", Want: Literal("a.b")}},
			wantMatch: true,
		},
		{
			name:      "malformed pattern matches its own text",
			actual:    QueryParams{"v": "[abc"},
			expected:  Params("v", "[abc"),
			wantMatch: true,
		},
		{
			name:       "malformed pattern fails the key",
			actual:     QueryParams{"v": "abc"},
			expected:   Params("v", "[abc"),
			wantReason: ReasonBadPattern,
			wantKey:    "v",
		},
		{
			name:      "keys only ignores values",
			actual:    QueryParams{"a": "1", "b": "2"},
			expected:  Params("a", "x", "b", "y"),
			keysOnly:  true,
			wantMatch: true,
		},
		{
			name:       "keys only still needs every key",
			actual:     QueryParams{"a": "1"},
			expected:   Params("a", "x", "b", "y"),
			keysOnly:   true,
			wantReason: ReasonMissing,
			wantKey:    "b",
		},
		{
			name:      "both empty",
			actual:    QueryParams{},
			expected:  ParameterSet{},
			wantMatch: true,
		},
		{
			name:     "nil actual",
			actual:   nil,
			expected: Params("a", "1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CompareAll(tt.actual, tt.expected, tt.keysOnly)
			assert.Equal(t, tt.wantMatch, c.Matched)

			failure, failed := c.Failure()
			if tt.wantReason == "" {
				assert.False(t, failed)
				return
			}
			require.True(t, failed)
			assert.Equal(t, tt.wantReason, failure.Reason)
			assert.Equal(t, tt.wantKey, failure.Key)
		})
	}
}

func TestCompareAll_StopsAtFirstFailure(t *testing.T) {
	actual := QueryParams{"a": "1", "b": "2", "c": "3"}
	expected := Params("a", "1", "b", "nope", "c", "nope")

	c := CompareAll(actual, expected, false)

	assert.False(t, c.Matched)
	require.Len(t, c.Outcomes, 2)
	assert.Equal(t, ReasonMatched, c.Outcomes[0].Reason)
	assert.Equal(t, "b", c.Outcomes[1].Key)
}

func TestCompareAll_BadPatternCarriesError(t *testing.T) {
	c := CompareAll(QueryParams{"v": "x"}, Params("v", "(x"), false)

	failure, ok := c.Failure()
	require.True(t, ok)
	assert.Error(t, failure.Err)
}

func TestCompareAll_DoesNotMutateInputs(t *testing.T) {
	actual := QueryParams{"id": "123"}
	expected := Params("id", "12")

	first := CompareAll(actual, expected, false)
	second := CompareAll(actual, expected, false)

	assert.Equal(t, first, second)
	assert.Equal(t, QueryParams{"id": "123"}, actual)
	assert.Equal(t, Params("id", "12"), expected)
}
