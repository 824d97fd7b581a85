package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newPageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// TestHTTPFetcher_Render verifies a page is returned when the selector is
// present
func TestHTTPFetcher_Render(t *testing.T) {
	server := newPageServer(t, `<html><body><div class="news-box"><p>hi</p></div></body></html>`)
	f := NewHTTPFetcher(nil, "", quietLogger())

	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	html, err := Render(context.Background(), s, server.URL, ".news-box", 5*time.Second)

	require.NoError(t, err)
	assert.Contains(t, html, `<div class="news-box">`)
}

// TestHTTPFetcher_SendsUserAgent verifies the configured user agent is used
func TestHTTPFetcher_SendsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), "wechatfed-test", quietLogger())
	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(context.Background(), server.URL))
	assert.Equal(t, "wechatfed-test", got)
}

// TestHTTPFetcher_MissingSelector verifies an absent selector is reported
// as a timeout
func TestHTTPFetcher_MissingSelector(t *testing.T) {
	server := newPageServer(t, `<html><body><p>nothing here</p></body></html>`)
	f := NewHTTPFetcher(nil, "", quietLogger())

	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	_, err = Render(context.Background(), s, server.URL, "#activity-name", 7*time.Second)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "wait", te.Op)
	assert.Equal(t, "#activity-name", te.Selector)
	assert.Equal(t, 7*time.Second, te.After, "Render should record the budget")
}

// TestHTTPFetcher_BlockedPage verifies the verification page is recognised
func TestHTTPFetcher_BlockedPage(t *testing.T) {
	server := newPageServer(t, `<html><body><p>请输入验证码</p></body></html>`)
	f := NewHTTPFetcher(nil, "", quietLogger())

	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	_, err = Render(context.Background(), s, server.URL, ".news-box", time.Second)

	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "请输入验证码", be.Marker)
}

// TestHTTPFetcher_AntispiderRedirect verifies redirects to the antispider
// page are reported as blocked
func TestHTTPFetcher_AntispiderRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weixin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/antispider/?from=weixin", http.StatusFound)
	})
	mux.HandleFunc("/antispider/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>verify</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), "", quietLogger())
	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	err = s.Navigate(context.Background(), server.URL+"/weixin")

	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "antispider", be.Marker)
}

// TestHTTPFetcher_StatusError verifies error status codes are reported
func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewHTTPFetcher(nil, "", quietLogger())
	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	err = s.Navigate(context.Background(), server.URL)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadGateway, he.StatusCode)
}

// TestHTTPFetcher_SlowServer verifies a slow response becomes a timeout
func TestHTTPFetcher_SlowServer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewHTTPFetcher(nil, "", quietLogger())
	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	_, err = Render(context.Background(), s, server.URL, "body", 50*time.Millisecond)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "navigate", te.Op)
}

// TestHTTPFetcher_ContentBeforeNavigate verifies reading an empty session
// fails
func TestHTTPFetcher_ContentBeforeNavigate(t *testing.T) {
	f := NewHTTPFetcher(nil, "", quietLogger())
	s, err := f.Acquire(context.Background())
	require.NoError(t, err)

	_, err = s.Content(context.Background())
	assert.Error(t, err)
}

// TestFindBlockMarker verifies marker detection
func TestFindBlockMarker(t *testing.T) {
	marker, found := FindBlockMarker("<p>访问频率受限</p>")
	assert.True(t, found)
	assert.Equal(t, "访问频率受限", marker)

	_, found = FindBlockMarker("<p>正常页面</p>")
	assert.False(t, found)
}
