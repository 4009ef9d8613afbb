package assertion

import (
	"github.com/rs/zerolog"

	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/internal/rule/matchers"
)

func traceCandidate(l zerolog.Logger, req *matchers.Request) {
	l.Debug().
		Str("host", req.Host()).
		Str("path", req.Path()).
		Str("url", req.Raw).
		Msg("possible match on filter, checking parameters")
}

func traceComparison(l zerolog.Logger, url string, c fuzzy.Comparison) {
	for _, o := range c.Outcomes {
		var ev *zerolog.Event
		if o.OK() {
			ev = l.Debug()
		} else {
			ev = l.Warn()
		}
		ev = ev.
			Str("url", url).
			Str("param", o.Key).
			Str("expected", o.Expected).
			Str("actual", o.Actual).
			Str("result", string(o.Reason))
		if o.Err != nil {
			ev = ev.Err(o.Err)
		}
		ev.Msg("parameter compared")
	}
}
