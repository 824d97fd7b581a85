package tools

import (
	"fmt"
	"net/http"

	"github.com/pevans/wechatfed/config"
	"github.com/pevans/wechatfed/extractor"
	"github.com/pevans/wechatfed/fetcher"
	"github.com/pevans/wechatfed/history"
	"github.com/sirupsen/logrus"
)

// FromConfig builds a Service with the fetcher, rate limit, layouts and
// history named by cfg. Close the service when done.
func FromConfig(cfg *config.Config, log logrus.FieldLogger) (*Service, error) {
	f := NewFetcher(cfg, log)

	opts := Options{
		Timeout:         cfg.Scraper.Timeout(),
		RetryCount:      cfg.Scraper.RetryCount,
		FeedURLTemplate: cfg.Account.FeedURLTemplate,
		FeedClient:      &http.Client{Timeout: cfg.Scraper.Timeout()},
		UserAgent:       cfg.Scraper.UserAgent,
	}

	var store *history.Store
	if cfg.History.DSN != "" {
		var err error
		store, err = history.NewStore(cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		opts.History = store
	}

	svc := NewService(opts, f, extractor.New(cfg.Layouts, log), log)
	if store != nil {
		svc.store = store
		svc.closers = append(svc.closers, store.Close)
	}

	log.WithFields(logrus.Fields{
		"fetcher":  cfg.Scraper.Fetcher,
		"timeout":  cfg.Scraper.Timeout(),
		"retries":  cfg.Scraper.RetryCount,
		"history":  store != nil,
		"headless": cfg.Scraper.Headless,
	}).Debug("tool service ready")

	return svc, nil
}

// NewFetcher builds the fetcher named by cfg, rate limited when a request
// budget is configured.
func NewFetcher(cfg *config.Config, log logrus.FieldLogger) fetcher.Fetcher {
	var f fetcher.Fetcher
	switch cfg.Scraper.Fetcher {
	case config.FetcherHTTP:
		client := &http.Client{Timeout: cfg.Scraper.Timeout()}
		f = fetcher.NewHTTPFetcher(client, cfg.Scraper.UserAgent, log)
	default:
		f = fetcher.NewChromeFetcher(cfg.Scraper.Headless, cfg.Scraper.UserAgent, log)
	}
	return fetcher.Limited(f, fetcher.PerMinute(cfg.Scraper.RequestsPerMinute))
}
