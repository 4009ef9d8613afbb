package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/simman/go-hasrequest/internal/assertion"
	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/config"
	"github.com/simman/go-hasrequest/internal/forwarder"
)

// AdminPrefix is the path prefix of the capture proxy's own endpoints.
const AdminPrefix = "/__hasrequest/"

// Server is a forward proxy that records every request passing through it.
type Server struct {
	config    *config.Config
	store     *capture.Store
	forwarder *forwarder.Forwarder
	srv       *http.Server
	listener  net.Listener
	mu        sync.RWMutex
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) *Server {
	return &Server{
		config:    cfg,
		store:     capture.NewStore(cfg.Capture.MaxRecords),
		forwarder: forwarder.NewForwarder(),
	}
}

// Store returns the record store backing the proxy.
func (s *Server) Store() *capture.Store {
	return s.store
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return fmt.Errorf("server already started")
	}

	addr := s.config.Server.Addr
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	s.srv = srv
	s.listener = listener

	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("capture proxy started")
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("server error")
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	// Handlers take the read lock, so shut down without holding it.
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	log.Info().Msg("stopping capture proxy")

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.forwarder.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	log.Info().Int("records", s.store.Len()).Msg("capture proxy stopped")
	return nil
}

// ServeHTTP handles incoming HTTP requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Requests addressed to the proxy itself rather than through it
	if r.Method != http.MethodConnect && r.URL.Host == "" {
		if strings.HasPrefix(r.URL.Path, AdminPrefix) {
			s.handleAdmin(w, r)
			return
		}
		s.handleError(w, r, http.StatusBadRequest, "not a proxy request")
		return
	}

	if r.Method == http.MethodConnect {
		s.handleConnect(w, r)
		return
	}

	if websocket.IsWebSocketUpgrade(r) {
		s.handleWebSocket(w, r)
		return
	}

	s.handleHTTP(w, r)
}

// Reload applies a new configuration. The listener address and store size
// are fixed at start; assertions and the upstream proxy take effect at once.
func (s *Server) Reload(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Server.Addr != s.config.Server.Addr {
		log.Warn().
			Str("current", s.config.Server.Addr).
			Str("configured", cfg.Server.Addr).
			Msg("listen address change needs a restart")
	}

	s.config = cfg

	log.Info().Int("assertions", len(cfg.Assertions)).Msg("configuration reloaded")
	return nil
}

func (s *Server) upstreamProxy() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Capture.UpstreamProxy
}

func (s *Server) assertions() []assertion.Assertion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]assertion.Assertion, len(s.config.Assertions))
	copy(out, s.config.Assertions)
	return out
}

// record stores the request under name.
func (s *Server) record(name string, r *http.Request) {
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	s.store.Add(capture.Record{
		Name:    name,
		Method:  r.Method,
		Headers: headers,
	})
	log.Debug().Str("method", r.Method).Str("url", name).Msg("request captured")
}
