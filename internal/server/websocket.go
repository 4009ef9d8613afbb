package server

import (
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the browser under test may use any origin
	},
}

// handshakeHeaders are set by the dialer and must not be passed through.
var handshakeHeaders = []string{
	"Upgrade",
	"Connection",
	"Sec-Websocket-Key",
	"Sec-Websocket-Version",
	"Sec-Websocket-Extensions",
	"Sec-Websocket-Protocol",
	"Proxy-Connection",
	"Proxy-Authorization",
}

// handleWebSocket records a websocket upgrade and relays messages to the
// origin.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	scheme := "ws"
	if r.URL.Scheme == "https" || r.URL.Scheme == "wss" {
		scheme = "wss"
	}
	backendURL := (&url.URL{Scheme: scheme, Host: r.URL.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}).String()
	s.record(backendURL, r)

	dialer := websocket.Dialer{
		HandshakeTimeout: upgrader.HandshakeTimeout,
		Subprotocols:     websocket.Subprotocols(r),
	}

	if proxy := s.upstreamProxy(); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			log.Error().Err(err).Str("proxy", proxy).Msg("invalid proxy URL")
			http.Error(w, "Invalid upstream proxy", http.StatusBadGateway)
			return
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	header := r.Header.Clone()
	for _, k := range handshakeHeaders {
		header.Del(k)
	}

	backendConn, resp, err := dialer.Dial(backendURL, header)
	if err != nil {
		ev := log.Error().Err(err).Str("url", backendURL)
		if resp != nil {
			ev = ev.Int("status", resp.StatusCode)
		}
		ev.Msg("failed to connect to backend WebSocket")
		http.Error(w, "Failed to connect to backend", http.StatusBadGateway)
		return
	}
	defer backendConn.Close()

	respHeader := http.Header{}
	if p := backendConn.Subprotocol(); p != "" {
		respHeader.Set("Sec-Websocket-Protocol", p)
	}
	clientConn, err := upgrader.Upgrade(w, r, respHeader)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade client connection")
		return
	}
	defer clientConn.Close()

	log.Debug().Str("backend", backendURL).Msg("WebSocket connection established")

	errCh := make(chan error, 2)

	go func() {
		errCh <- copyWebSocket(backendConn, clientConn, "client->backend")
	}()

	go func() {
		errCh <- copyWebSocket(clientConn, backendConn, "backend->client")
	}()

	if err := <-errCh; err != nil {
		log.Debug().Err(err).Msg("WebSocket copy error")
	}

	log.Debug().Str("backend", backendURL).Msg("WebSocket connection closed")
}

// copyWebSocket copies messages from src to dst
func copyWebSocket(dst, src *websocket.Conn, direction string) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("direction", direction).Msg("unexpected WebSocket close")
			}
			return err
		}

		if err := dst.WriteMessage(messageType, message); err != nil {
			log.Debug().Err(err).Str("direction", direction).Msg("failed to write WebSocket message")
			return err
		}
	}
}
