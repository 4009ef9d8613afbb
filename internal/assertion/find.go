package assertion

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/internal/rule"
	"github.com/simman/go-hasrequest/internal/rule/matchers"
)

// NoMatchingRecords is returned by FindMatch when no record qualifies.
const NoMatchingRecords = "no matching records"

type options struct {
	rule     rule.Rule
	keysOnly bool
	logger   zerolog.Logger
}

// Option tunes FindMatch.
type Option func(*options)

// WithRule narrows candidates to records the rule accepts.
func WithRule(r rule.Rule) Option {
	return func(o *options) { o.rule = r }
}

// KeysOnly compares parameter keys and ignores their values.
func KeysOnly(keysOnly bool) Option {
	return func(o *options) { o.keysOnly = keysOnly }
}

// WithLogger sends diagnostic trace lines to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// containsFilter tests the recorded name as captured and, when it parses,
// its normalized form with a lower-case scheme and host.
func containsFilter(req *matchers.Request, filter string) bool {
	if strings.Contains(req.Raw, filter) {
		return true
	}
	return req.URL != nil && strings.Contains(href(req.URL), filter)
}

func href(u *url.URL) string {
	n := *u
	n.Host = strings.ToLower(n.Host)
	return n.String()
}

// FindMatch returns the name of the first record whose URL contains filter
// and whose query parameters fuzzily equal params, or NoMatchingRecords.
// A nil params matches on the filter alone.
func FindMatch(records []capture.Record, filter string, params fuzzy.ParameterSet, opts ...Option) string {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	for _, rec := range records {
		req := matchers.NewRequest(rec)
		if !containsFilter(req, filter) {
			continue
		}
		traceCandidate(o.logger, req)

		if o.rule != nil && !o.rule.Match(req) {
			o.logger.Debug().Str("url", rec.Name).Msg("rule rejected request")
			continue
		}

		if params == nil {
			o.logger.Info().Str("url", rec.Name).Msg("found a matching request")
			return rec.Name
		}

		c := fuzzy.CompareAll(req.Query, params, o.keysOnly)
		traceComparison(o.logger, rec.Name, c)
		if c.Matched {
			o.logger.Info().Str("url", rec.Name).Msg("found a perfect (fuzzy) match")
			return rec.Name
		}
	}

	o.logger.Debug().Str("filter", filter).Int("records", len(records)).Msg(NoMatchingRecords)
	return NoMatchingRecords
}
