package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BlockMarkers are fragments that appear on the rate-limit and CAPTCHA
// pages served instead of content.
var BlockMarkers = []string{"访问频率受限", "请输入验证码", "antispider"}

// FindBlockMarker reports the first block marker contained in text.
func FindBlockMarker(text string) (string, bool) {
	for _, m := range BlockMarkers {
		if strings.Contains(text, m) {
			return m, true
		}
	}
	return "", false
}

// TimeoutError is returned when navigation, waiting or reading exceeds the
// session deadline.
type TimeoutError struct {
	Op       string
	URL      string
	Selector string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timeout during %s of %s", e.Op, e.URL)
	if e.Selector != "" {
		msg += fmt.Sprintf(" waiting for %q", e.Selector)
	}
	if e.After > 0 {
		msg += fmt.Sprintf(" after %s", e.After)
	}
	return msg
}

// Timeout lets callers treat the error like a net.Error.
func (e *TimeoutError) Timeout() bool { return true }

// BrowserError wraps a failure reported by the browser engine: launch
// failures, navigation errors such as net::ERR_NAME_NOT_RESOLVED, and
// protocol errors.
type BrowserError struct {
	Op  string
	URL string
	Err error
}

func (e *BrowserError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("browser %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("browser %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *BrowserError) Unwrap() error { return e.Err }

// HTTPError is returned by the static fetcher for transport failures and
// error status codes.
type HTTPError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http get %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("http get %s: status %d", e.URL, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// BlockedError is returned when the site answers with its rate-limit or
// CAPTCHA page.
type BlockedError struct {
	URL    string
	Marker string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked while loading %s: page contains %q", e.URL, e.Marker)
}

// timeoutFrom returns a TimeoutError when err (or ctx) reports an expired
// deadline, and nil otherwise.
func timeoutFrom(ctx context.Context, err error, op, url, selector string) *TimeoutError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, URL: url, Selector: selector}
	}
	return nil
}
