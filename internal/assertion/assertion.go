// Package assertion checks that a captured browser session contains a
// request whose URL contains a filter string and whose query parameters
// fuzzily match an expected set.
package assertion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/internal/rule"
)

// Message labels every assertion in reports.
const Message = "Checking for request"

// Assertion expects at least one request matching Filter, Rule and Params.
type Assertion struct {
	Name     string             `yaml:"name"`
	Filter   string             `yaml:"filter"`
	Rule     string             `yaml:"rule,omitempty"`
	Params   fuzzy.ParameterSet `yaml:"params,omitempty"`
	KeysOnly bool               `yaml:"keys_only,omitempty"`
}

// Result is the outcome of evaluating one assertion.
type Result struct {
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// Message returns the report label.
func (a *Assertion) Message() string {
	return Message
}

// Expected describes what the assertion looks for.
func (a *Assertion) Expected() string {
	if a.Params == nil {
		return fmt.Sprintf("A request matching '%s' exists", a.Filter)
	}
	return fmt.Sprintf("A request matching '%s' with params %s exists", a.Filter, a.Params)
}

// Validate reports every problem that would make the assertion unusable.
func (a *Assertion) Validate() error {
	var err error
	if a.Filter == "" {
		err = multierr.Append(err, fmt.Errorf("filter is required"))
	}
	if a.Rule != "" {
		if _, rerr := rule.Parse(a.Rule); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("invalid rule: %w", rerr))
		}
	}
	for _, p := range a.Params {
		if p.Key == "" {
			err = multierr.Append(err, fmt.Errorf("param key is required"))
		}
		if _, perr := p.Want.Compile(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("param %q: %w", p.Key, perr))
		}
	}
	return err
}

// Value scans records and returns the first matching URL or
// NoMatchingRecords.
func (a *Assertion) Value(records []capture.Record, logger zerolog.Logger) string {
	opts := []Option{KeysOnly(a.KeysOnly), WithLogger(logger)}
	if a.Rule != "" {
		r, err := rule.Parse(a.Rule)
		if err != nil {
			logger.Error().Err(err).Str("rule", a.Rule).Msg("invalid rule, nothing can match")
			return NoMatchingRecords
		}
		opts = append(opts, WithRule(r))
	}
	return FindMatch(records, a.Filter, a.Params, opts...)
}

// Pass reports whether value names a matching request.
func (a *Assertion) Pass(value string) bool {
	return value != NoMatchingRecords
}

// Check evaluates the assertion against records already fetched.
func (a *Assertion) Check(records []capture.Record, logger zerolog.Logger) Result {
	value := a.Value(records, logger)
	return Result{
		Name:     a.Name,
		Message:  a.Message(),
		Expected: a.Expected(),
		Actual:   value,
		Passed:   a.Pass(value),
	}
}

// Evaluate fetches the records once and checks the assertion. An error
// means the records could not be fetched, not that the assertion failed.
func (a *Assertion) Evaluate(ctx context.Context, provider capture.Provider, logger zerolog.Logger) (Result, error) {
	records, err := provider.GetRequests(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get requests: %w", err)
	}
	return a.Check(records, logger), nil
}

// EvaluateAll fetches the records once and checks every assertion. The
// returned error combines one error per failed assertion.
func EvaluateAll(ctx context.Context, provider capture.Provider, assertions []Assertion, logger zerolog.Logger) ([]Result, error) {
	records, err := provider.GetRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}

	results := make([]Result, 0, len(assertions))
	var failed error
	for i := range assertions {
		a := &assertions[i]
		res := a.Check(records, logger.With().Str("assertion", a.Name).Logger())
		results = append(results, res)
		if !res.Passed {
			failed = multierr.Append(failed, fmt.Errorf("%s: expected %s", displayName(a, i), res.Expected))
		}
	}
	return results, failed
}

func displayName(a *Assertion, i int) string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("assertion %d", i)
}
