package fetcher

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireChrome skips the test when no Chrome or Chromium binary is on the
// PATH.
func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
		"headless-shell",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome binary found")
}

// TestChromeFetcher_SessionOutlivesAcquire verifies the browser started by
// Acquire keeps serving renders after Acquire's context is gone
func TestChromeFetcher_SessionOutlivesAcquire(t *testing.T) {
	requireChrome(t)
	server := newPageServer(t, `<html><body><div class="news-box"><p>你好</p></div></body></html>`)
	f := NewChromeFetcher(true, "", quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := f.Acquire(ctx)
	cancel()
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 2; i++ {
		html, err := Render(context.Background(), s, server.URL, ".news-box", 15*time.Second)
		require.NoError(t, err, "render %d", i+1)
		assert.Contains(t, html, "你好")
	}
}

// TestChromeFetcher_WaitTimeout verifies a missing selector is a timeout
func TestChromeFetcher_WaitTimeout(t *testing.T) {
	requireChrome(t)
	server := newPageServer(t, `<html><body><p>nothing here</p></body></html>`)
	f := NewChromeFetcher(true, "", quietLogger())

	s, err := f.Acquire(context.Background())
	require.NoError(t, err)
	defer s.Close()

	_, err = Render(context.Background(), s, server.URL, ".news-box", 2*time.Second)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "wait", te.Op)
	assert.Equal(t, 2*time.Second, te.After)
}
