package server

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const dialTimeout = 30 * time.Second

// handleConnect tunnels HTTPS traffic. Only the target host is visible, so
// the request is recorded as https://host.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	target := r.Host
	if _, _, err := net.SplitHostPort(target); err != nil {
		target = net.JoinHostPort(target, "443")
	}
	s.record("https://"+strings.TrimSuffix(target, ":443"), r)

	var targetConn net.Conn
	var err error

	if proxy := s.upstreamProxy(); proxy != "" {
		targetConn, err = connectThroughProxy(proxy, target)
	} else {
		targetConn, err = net.DialTimeout("tcp", target, dialTimeout)
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("host", target).
			Msg("failed to connect to target")
		http.Error(w, "Failed to connect to target", http.StatusBadGateway)
		return
	}
	defer targetConn.Close()

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		log.Error().Msg("ResponseWriter does not support hijacking")
		http.Error(w, "Hijacking not supported", http.StatusInternalServerError)
		return
	}

	clientConn, _, err := hijacker.Hijack()
	if err != nil {
		log.Error().Err(err).Msg("failed to hijack connection")
		http.Error(w, "Failed to hijack connection", http.StatusInternalServerError)
		return
	}
	defer clientConn.Close()

	if _, err := clientConn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n")); err != nil {
		log.Error().Err(err).Msg("failed to send connection established")
		return
	}

	log.Debug().Str("host", target).Msg("CONNECT tunnel established")

	errCh := make(chan error, 2)

	go func() {
		_, err := io.Copy(targetConn, clientConn)
		errCh <- err
	}()

	go func() {
		_, err := io.Copy(clientConn, targetConn)
		errCh <- err
	}()

	// Wait for one direction to finish
	if err := <-errCh; err != nil && err != io.EOF {
		log.Debug().Err(err).Msg("tunnel copy error")
	}

	log.Debug().Str("host", target).Msg("CONNECT tunnel closed")
}

// connectThroughProxy opens a tunnel to targetAddr through an HTTP proxy
func connectThroughProxy(proxyURL, targetAddr string) (net.Conn, error) {
	proxy, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	proxyConn, err := net.DialTimeout("tcp", proxy.Host, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to proxy: %w", err)
	}

	connectReq := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", targetAddr, targetAddr)
	if _, err := proxyConn.Write([]byte(connectReq)); err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to send CONNECT to proxy: %w", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(proxyConn), &http.Request{Method: http.MethodConnect})
	if err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to read proxy response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		proxyConn.Close()
		return nil, fmt.Errorf("proxy returned non-200 response: %s", resp.Status)
	}

	return proxyConn, nil
}
