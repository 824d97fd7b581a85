// Package fetcher renders pages for the extractors. A Fetcher hands out
// Sessions; each operation acquires one, renders what it needs and closes
// it.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// DefaultUserAgent is the desktop Chrome user agent sent with every
// request unless configured otherwise.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher opens page sessions.
type Fetcher interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is a single page that can be navigated, waited on and read.
// Close must be called once the caller is done with it.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string) error
	Content(ctx context.Context) (string, error)
	Close() error
}

// Render navigates to url, waits for selector to appear and returns the
// page HTML. The three steps share a single timeout.
func Render(ctx context.Context, s Session, url, selector string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := s.Navigate(ctx, url); err != nil {
		return "", withTimeout(err, timeout)
	}
	if err := s.WaitForSelector(ctx, selector); err != nil {
		return "", withTimeout(err, timeout)
	}

	html, err := s.Content(ctx)
	if err != nil {
		return "", withTimeout(err, timeout)
	}
	return html, nil
}

// withTimeout records the configured budget on timeout errors so the
// message tells the user what limit was hit.
func withTimeout(err error, timeout time.Duration) error {
	var te *TimeoutError
	if errors.As(err, &te) && te.After == 0 {
		te.After = timeout
	}
	return err
}
