package forwarder

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Proxy-Connection"))
		assert.Equal(t, "keep", r.Header.Get("X-Custom"))
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo", string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, r.URL.RawQuery)
	}))
	defer origin.Close()

	r := httptest.NewRequest(http.MethodPost, origin.URL+"/collect?ev=click", strings.NewReader("payload"))
	r.Header.Set("Proxy-Connection", "keep-alive")
	r.Header.Set("X-Custom", "keep")
	w := httptest.NewRecorder()

	f := NewForwarder()
	defer f.Close()
	require.NoError(t, f.Forward(w, r, ""))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "payload", w.Header().Get("X-Echo"))
	assert.Equal(t, "ev=click", w.Body.String())
}

func TestForward_DoesNotFollowRedirects(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer origin.Close()

	w := httptest.NewRecorder()
	require.NoError(t, NewForwarder().Forward(w, httptest.NewRequest(http.MethodGet, origin.URL+"/", nil), ""))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/elsewhere", w.Header().Get("Location"))
}

func TestForward_ThroughUpstreamProxy(t *testing.T) {
	var seen string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.String()
		fmt.Fprint(w, "via upstream")
	}))
	defer upstream.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://tracker.invalid/p?id=1", nil)
	require.NoError(t, NewForwarder().Forward(w, r, upstream.URL))

	assert.Equal(t, "http://tracker.invalid/p?id=1", seen)
	assert.Equal(t, "via upstream", w.Body.String())
}

func TestForward_Errors(t *testing.T) {
	f := NewForwarder()

	r := httptest.NewRequest(http.MethodGet, "/relative", nil)
	assert.Error(t, f.Forward(httptest.NewRecorder(), r, ""))

	r = httptest.NewRequest(http.MethodGet, "http://x.invalid/", nil)
	assert.Error(t, f.Forward(httptest.NewRecorder(), r, "://bad"))
}

func TestGetClient_Caches(t *testing.T) {
	f := NewForwarder()
	a, err := f.getClient("")
	require.NoError(t, err)
	b, err := f.getClient("")
	require.NoError(t, err)
	assert.Same(t, a, b)
}
