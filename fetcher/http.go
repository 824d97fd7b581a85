package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 << 20

// HTTPFetcher fetches pages with plain GET requests. Scripts are not run,
// so it only works for pages whose content is in the served HTML.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewHTTPFetcher creates a static fetcher. A nil client means
// http.DefaultClient.
func NewHTTPFetcher(client *http.Client, userAgent string, log logrus.FieldLogger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent, log: log}
}

// Acquire returns an empty session. No connection is made until Navigate.
func (f *HTTPFetcher) Acquire(ctx context.Context) (Session, error) {
	return &httpSession{fetcher: f}, nil
}

type httpSession struct {
	fetcher *HTTPFetcher
	url     string
	body    string
	doc     *goquery.Document
}

func (s *httpSession) Navigate(ctx context.Context, url string) error {
	s.url = url
	s.body = ""
	s.doc = nil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &HTTPError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", s.fetcher.userAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")

	s.fetcher.log.WithField("url", url).Debug("fetching")
	resp, err := s.fetcher.client.Do(req)
	if err != nil {
		if te := timeoutFrom(ctx, err, "navigate", url, ""); te != nil {
			return te
		}
		return &HTTPError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	// Redirects to the verification page end up on an antispider URL.
	if resp.Request != nil && resp.Request.URL != nil {
		if marker, found := FindBlockMarker(resp.Request.URL.String()); found {
			return &BlockedError{URL: url, Marker: marker}
		}
	}

	if resp.StatusCode >= 400 {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if te := timeoutFrom(ctx, err, "read", url, ""); te != nil {
			return te
		}
		return &HTTPError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return &HTTPError{URL: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	s.body = string(body)
	s.doc = doc
	return nil
}

// WaitForSelector checks the fetched document once. Nothing changes
// after the response arrives, so an absent selector is reported the same
// way a browser wait that never completes would be.
func (s *httpSession) WaitForSelector(ctx context.Context, selector string) error {
	if s.doc == nil {
		return &HTTPError{URL: s.url, Err: fmt.Errorf("no page loaded")}
	}
	if s.doc.Find(selector).Length() > 0 {
		return nil
	}
	if marker, found := FindBlockMarker(s.body); found {
		return &BlockedError{URL: s.url, Marker: marker}
	}
	return &TimeoutError{Op: "wait", URL: s.url, Selector: selector}
}

func (s *httpSession) Content(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", &HTTPError{URL: s.url, Err: fmt.Errorf("no page loaded")}
	}
	return s.body, nil
}

func (s *httpSession) Close() error {
	s.body = ""
	s.doc = nil
	return nil
}
