package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleHTTP records and forwards a plain HTTP request
func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	s.record(r.URL.String(), r)

	if err := s.forwarder.Forward(w, r, s.upstreamProxy()); err != nil {
		log.Error().
			Err(err).
			Str("url", r.URL.String()).
			Msg("failed to forward request")
		s.handleError(w, r, http.StatusBadGateway, "failed to forward request")
		return
	}
}

// handleError handles error responses
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error":  message,
		"host":   r.Host,
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
