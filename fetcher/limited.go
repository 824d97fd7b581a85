package fetcher

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited wraps a Fetcher so every navigation waits for a token from
// limiter. A nil limiter returns f unchanged.
func Limited(f Fetcher, limiter *rate.Limiter) Fetcher {
	if limiter == nil {
		return f
	}
	return &limitedFetcher{next: f, limiter: limiter}
}

// PerMinute builds a limiter allowing n navigations per minute with no
// burst beyond one. n <= 0 disables limiting.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
}

type limitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
}

func (f *limitedFetcher) Acquire(ctx context.Context) (Session, error) {
	s, err := f.next.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &limitedSession{Session: s, limiter: f.limiter}, nil
}

type limitedSession struct {
	Session
	limiter *rate.Limiter
}

func (s *limitedSession) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		// Wait refuses up front when the deadline cannot be met, before
		// ctx itself expires.
		if ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Op: "rate limit wait", URL: url}
		}
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return s.Session.Navigate(ctx, url)
}
