package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	var gotReferer, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewDefaultClient(0)
	body, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Contains(t, gotReferer, "http://updater.checker/")
	assert.NotEmpty(t, gotUserAgent)
}

func TestGetNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewDefaultClient(0)
	_, err := client.Get(context.Background(), srv.URL)
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestGetInvalidURL(t *testing.T) {
	t.Parallel()

	client := NewDefaultClient(0)
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Error(t, err)
}

func TestUserAgentFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos     string
		contains string
	}{
		{goos: "windows", contains: "Windows NT"},
		{goos: "linux", contains: "Linux x86_64"},
		{goos: "darwin", contains: "Macintosh"},
		{goos: "freebsd", contains: "source-registry/"},
	}

	for _, tt := range tests {
		assert.Contains(t, userAgentFor(tt.goos), tt.contains, "goos %s", tt.goos)
	}
}
