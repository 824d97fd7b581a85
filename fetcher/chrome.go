package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// snapshotTimeout bounds the page read taken after a wait times out.
const snapshotTimeout = 2 * time.Second

// ChromeFetcher drives a local Chrome through the DevTools protocol. Every
// session gets its own browser process and tab so sessions never share
// cookies or state.
type ChromeFetcher struct {
	headless  bool
	userAgent string
	log       logrus.FieldLogger
}

// NewChromeFetcher creates a fetcher that launches Chrome on Acquire.
func NewChromeFetcher(headless bool, userAgent string, log logrus.FieldLogger) *ChromeFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ChromeFetcher{headless: headless, userAgent: userAgent, log: log}
}

// Acquire launches a browser and opens a blank tab.
func (f *ChromeFetcher) Acquire(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.headless),
		chromedp.UserAgent(f.userAgent),
	)

	// The browser outlives individual navigations, so it hangs off a
	// context that only Close cancels.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		id:          uuid.NewString(),
		tab:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		log:         f.log,
	}

	if err := s.launch(ctx); err != nil {
		s.Close()
		return nil, err
	}

	f.log.WithField("session", s.id).Debug("browser session started")
	return s, nil
}

// launch starts the browser and attaches the tab. The first Run must use
// the tab context itself: chromedp ties the browser process to the context
// of that call, so a shorter-lived one would kill the browser when it ends.
// ctx only bounds how long Acquire waits.
func (s *chromeSession) launch(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(s.tab)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &BrowserError{Op: "launch", Err: err}
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Op: "launch"}
		}
		return ctx.Err()
	}
}

type chromeSession struct {
	id          string
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	url         string
	log         logrus.FieldLogger
}

// run executes actions on the tab, bounded by the deadline and
// cancellation of ctx.
func (s *chromeSession) run(ctx context.Context, op, selector string, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if te := timeoutFrom(runCtx, err, op, s.url, selector); te != nil {
		return te
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &BrowserError{Op: op, URL: s.url, Err: err}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	s.url = url
	s.log.WithFields(logrus.Fields{"session": s.id, "url": url}).Debug("navigating")
	return s.run(ctx, "navigate", "", chromedp.Navigate(url))
}

func (s *chromeSession) WaitForSelector(ctx context.Context, selector string) error {
	err := s.run(ctx, "wait", selector, chromedp.WaitReady(selector, chromedp.ByQuery))
	if _, ok := err.(*TimeoutError); !ok {
		return err
	}

	// A wait that never completes is usually the anti-bot page. Take a
	// short look before reporting a plain timeout.
	snapCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()
	var html string
	if snapErr := s.run(snapCtx, "snapshot", "", chromedp.OuterHTML("html", &html, chromedp.ByQuery)); snapErr == nil {
		if marker, found := FindBlockMarker(html); found {
			return &BlockedError{URL: s.url, Marker: marker}
		}
	}
	return err
}

func (s *chromeSession) Content(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, "read", "", chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab and the browser process.
func (s *chromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	s.log.WithField("session", s.id).Debug("browser session closed")
	return nil
}
