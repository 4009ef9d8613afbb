package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/simman/go-hasrequest/internal/assertion"
	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/fuzzy"
)

type recordsResponse struct {
	Value []capture.Record `json:"value"`
}

type resultsResponse struct {
	Passed  bool               `json:"passed"`
	Results []assertion.Result `json:"results"`
}

// handleAdmin serves the proxy's own endpoints:
//
//	GET    /__hasrequest/requests    captured records
//	DELETE /__hasrequest/requests    drop captured records
//	GET    /__hasrequest/assertions  evaluate configured assertions
//	GET    /__hasrequest/assert      evaluate one assertion from query args
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, AdminPrefix) {
	case "requests":
		switch r.Method {
		case http.MethodGet:
			records, err := s.store.GetRequests(r.Context())
			if err != nil {
				s.handleError(w, r, http.StatusServiceUnavailable, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, recordsResponse{Value: records})
		case http.MethodDelete:
			s.store.Clear()
			log.Info().Msg("captured requests cleared")
			w.WriteHeader(http.StatusNoContent)
		default:
			s.handleError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		}

	case "assertions":
		if r.Method != http.MethodGet {
			s.handleError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		results, err := assertion.EvaluateAll(r.Context(), s.store, s.assertions(), log.Logger)
		if results == nil {
			s.handleError(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeResults(w, results)

	case "assert":
		if r.Method != http.MethodGet {
			s.handleError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		a, err := assertionFromQuery(r)
		if err != nil {
			s.handleError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		res, err := a.Evaluate(r.Context(), s.store, log.Logger)
		if err != nil {
			s.handleError(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeResults(w, []assertion.Result{res})

	default:
		s.handleError(w, r, http.StatusNotFound, "unknown endpoint")
	}
}

func writeResults(w http.ResponseWriter, results []assertion.Result) {
	passed := true
	for _, res := range results {
		passed = passed && res.Passed
	}
	status := http.StatusOK
	if !passed {
		status = http.StatusExpectationFailed
	}
	writeJSON(w, status, resultsResponse{Passed: passed, Results: results})
}

// assertionFromQuery reads filter, rule, keys_only and repeated
// param=key=value (or key==value) arguments. Without any param argument the
// assertion matches on the filter alone.
func assertionFromQuery(r *http.Request) (*assertion.Assertion, error) {
	q := r.URL.Query()
	a := &assertion.Assertion{
		Name:   q.Get("name"),
		Filter: q.Get("filter"),
		Rule:   q.Get("rule"),
	}
	if v := q.Get("keys_only"); v != "" {
		keysOnly, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		a.KeysOnly = keysOnly
	}
	if raw, ok := q["param"]; ok {
		a.Params = fuzzy.ParameterSet{}
		for _, p := range raw {
			key, want, err := fuzzy.ParseParam(p)
			if err != nil {
				return nil, err
			}
			a.Params = a.Params.Set(key, want)
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
