package logx

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-pkgz/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoggingRoundTripper(t *testing.T) {
	body := strings.Repeat("a", 2*trimBodyAt)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		w.Header().Set("X-Api-Key", "secret")
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.NewTextHandler(buf))

	rq := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{
		Level:         slog.LevelInfo,
		SecretHeaders: []string{"X-Api-Key"},
		SecretQuery:   []string{"apiKey"},
	}))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"?country=us&apiKey=secret", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Api-Key", "secret")

	resp, err := rq.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// body must stay intact for the caller
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	assert.Contains(t, buf.String(), "request sent")
	assert.Contains(t, buf.String(), "response received")
	assert.NotContains(t, buf.String(), "secret")
}

func TestLoggingRoundTripper_Disabled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.NewTextHandler(buf))

	rq := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{Level: slog.LevelDebug}))
	req, err := http.NewRequest(http.MethodGet, ts.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := rq.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, buf.String())
}
