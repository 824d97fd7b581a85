// Package tools is the facade the hosts call: it decodes and validates
// arguments, drives a page session through the extractors and formats the
// result. Every failure it returns is a *failure.Error.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/wechatfed/article"
	"github.com/pevans/wechatfed/extractor"
	"github.com/pevans/wechatfed/failure"
	"github.com/pevans/wechatfed/fetcher"
	"github.com/pevans/wechatfed/formatter"
	"github.com/pevans/wechatfed/history"
	"github.com/sirupsen/logrus"
)

// Recorder stores call metadata. *history.Store implements it.
type Recorder interface {
	Record(call *history.Call) error
}

// Options tune a Service.
type Options struct {
	// Timeout bounds each page render.
	Timeout time.Duration
	// RetryCount is how many extra attempts a timeout or connectivity
	// failure gets.
	RetryCount int
	// FeedURLTemplate, when set, names a feed (with %s for the account
	// name) used when an account profile cannot be found.
	FeedURLTemplate string
	// FeedClient fetches account feeds. Nil means http.DefaultClient.
	FeedClient *http.Client
	// UserAgent is sent with feed requests.
	UserAgent string
	// History records every call when set.
	History Recorder
}

// Service runs the tools.
type Service struct {
	opts    Options
	fetcher fetcher.Fetcher
	extract *extractor.Extractor
	log     logrus.FieldLogger
	store   *history.Store
	closers []func() error
}

// NewService creates a Service.
func NewService(opts Options, f fetcher.Fetcher, x *extractor.Extractor, log logrus.FieldLogger) *Service {
	return &Service{opts: opts, fetcher: f, extract: x, log: log}
}

// History returns the call history store opened by FromConfig, or nil.
func (s *Service) History() *history.Store {
	return s.store
}

// Close releases resources owned by the service, such as the history
// database.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// operation carries the message and suggestion used when a tool fails
// outside of page fetching.
type operation struct {
	tool       string
	message    string
	suggestion string
}

var (
	searchOp = operation{SearchTool,
		"搜索文章时发生未预期的错误",
		"请检查网络连接并稍后重试，或报告此问题"}
	articleOp = operation{ArticleTool,
		"获取文章详情时发生未预期的错误",
		"请检查文章ID是否正确，网络连接是否正常，并稍后重试"}
	accountOp = operation{AccountTool,
		"获取公众号文章列表时发生未预期的错误",
		"请检查公众号名称是否正确，网络连接是否正常，并稍后重试"}
	trendingOp = operation{TrendingTool,
		"获取热门文章时发生未预期的错误",
		"请检查网络连接是否正常，并稍后重试"}
)

// Call runs the named tool with JSON arguments. Defaults are applied to
// missing arguments and unknown arguments are rejected.
func (s *Service) Call(ctx context.Context, name string, raw json.RawMessage) (string, error) {
	switch name {
	case SearchTool:
		in := DefaultSearchInput()
		if err := decode(raw, &in); err != nil {
			return "", s.rejected(name, raw, err)
		}
		return s.Search(ctx, in)
	case ArticleTool:
		in := DefaultArticleInput()
		if err := decode(raw, &in); err != nil {
			return "", s.rejected(name, raw, err)
		}
		return s.Article(ctx, in)
	case AccountTool:
		in := DefaultAccountInput()
		if err := decode(raw, &in); err != nil {
			return "", s.rejected(name, raw, err)
		}
		return s.Account(ctx, in)
	case TrendingTool:
		in := DefaultTrendingInput()
		if err := decode(raw, &in); err != nil {
			return "", s.rejected(name, raw, err)
		}
		return s.Trending(ctx, in)
	}

	return "", s.rejected(name, raw, failure.Validation("未知工具: %s", name))
}

// rejected logs and records a call that failed before it ran.
func (s *Service) rejected(tool string, raw json.RawMessage, err error) error {
	f := failure.Classify(err)
	s.finish(tool, uuid.New(), string(raw), time.Now(), 0, f)
	return f
}

// Search runs search_wechat_articles.
func (s *Service) Search(ctx context.Context, in SearchInput) (string, error) {
	return s.run(ctx, searchOp, in, func(sess fetcher.Session) (any, error) {
		layouts := s.extract.Layouts()
		page, err := fetcher.Render(ctx, sess, layouts.SearchURL(in.Query, in.Page), layouts.Search.WaitSelector, s.opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s.extract.Search(page, in.Query, in.Page, in.Limit)
	}, func(record any) string {
		return formatter.Format(record, in.Format, in.Detail)
	})
}

// Article runs get_wechat_article. Articles are always rendered in full
// detail.
func (s *Service) Article(ctx context.Context, in ArticleInput) (string, error) {
	return s.run(ctx, articleOp, in, func(sess fetcher.Session) (any, error) {
		layouts := s.extract.Layouts()
		articleURL := layouts.ArticleURL(in.ArticleID)
		page, err := fetcher.Render(ctx, sess, articleURL, layouts.Article.WaitSelector, s.opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s.extract.Article(page, in.ArticleID, articleURL, in.IncludeContent)
	}, func(record any) string {
		return formatter.Format(record, in.Format, formatter.DetailDetailed)
	})
}

// Account runs list_wechat_articles_by_account: find the profile through
// the account search, then list its articles. A missing account is a
// result, not a failure.
func (s *Service) Account(ctx context.Context, in AccountInput) (string, error) {
	return s.run(ctx, accountOp, in, func(sess fetcher.Session) (any, error) {
		layouts := s.extract.Layouts()
		page, err := fetcher.Render(ctx, sess, layouts.DirectoryURL(in.AccountName), layouts.Directory.WaitSelector, s.opts.Timeout)
		if err != nil {
			return nil, err
		}

		profileURL, found, err := s.extract.AccountDirectory(page)
		if err != nil {
			return nil, err
		}
		if !found {
			return s.accountFromFeed(ctx, in), nil
		}

		page, err = fetcher.Render(ctx, sess, profileURL, layouts.Profile.WaitSelector, s.opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s.extract.AccountArticles(page, in.AccountName, in.Limit)
	}, func(record any) string {
		return formatter.Format(record, in.Format, in.Detail)
	})
}

// accountFromFeed tries the configured account feed and falls back to the
// not-found result.
func (s *Service) accountFromFeed(ctx context.Context, in AccountInput) *article.AccountResult {
	if s.opts.FeedURLTemplate == "" {
		return extractor.AccountNotFound(in.AccountName)
	}

	feedURL := fmt.Sprintf(s.opts.FeedURLTemplate, url.PathEscape(in.AccountName))
	log := s.log.WithFields(logrus.Fields{"account": in.AccountName, "feed": feedURL})

	fp := gofeed.NewParser()
	fp.Client = s.opts.FeedClient
	fp.UserAgent = s.opts.UserAgent

	feedCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		feedCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	feed, err := fp.ParseURLWithContext(feedURL, feedCtx)
	if err != nil {
		log.WithError(err).Warn("account feed unavailable")
		return extractor.AccountNotFound(in.AccountName)
	}

	result := s.extract.AccountFeed(feed, in.AccountName, in.Limit)
	if len(result.Articles) == 0 {
		return extractor.AccountNotFound(in.AccountName)
	}

	log.WithField("articles", len(result.Articles)).Info("account listed from feed")
	return result
}

// Trending runs get_trending_wechat_articles.
func (s *Service) Trending(ctx context.Context, in TrendingInput) (string, error) {
	return s.run(ctx, trendingOp, in, func(sess fetcher.Session) (any, error) {
		layouts := s.extract.Layouts()
		page, err := fetcher.Render(ctx, sess, layouts.TrendingURL(in.Category), layouts.Trending.Layout.WaitSelector, s.opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s.extract.Trending(page, in.Category, in.Limit)
	}, func(record any) string {
		return formatter.Format(record, in.Format, in.Detail)
	})
}

// run validates in, acquires a session, runs scrape with retries, formats
// the record and logs the call. The session is closed on every path.
func (s *Service) run(
	ctx context.Context,
	op operation,
	in any,
	scrape func(fetcher.Session) (any, error),
	format func(any) string,
) (out string, err error) {
	callID := uuid.New()
	start := time.Now()
	args, _ := json.Marshal(in)
	attempts := 0

	defer func() {
		if r := recover(); r != nil {
			err = failure.Wrap(op.message, op.suggestion, fmt.Errorf("panic: %v", r))
		}
		var f *failure.Error
		if err != nil {
			f = failure.Wrap(op.message, op.suggestion, err)
			err = f
		}
		s.finish(op.tool, callID, string(args), start, attempts, f)
	}()

	if err := check(in); err != nil {
		return "", err
	}

	sess, err := s.fetcher.Acquire(ctx)
	if err != nil {
		return "", acquireFailure(err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.log.WithError(cerr).WithField("call_id", callID).Warn("failed to close session")
		}
	}()

	var record any
	for {
		attempts++
		record, err = scrape(sess)
		if err == nil {
			break
		}

		f := failure.Classify(err)
		if !f.Retryable() || attempts > s.opts.RetryCount || ctx.Err() != nil {
			return "", f
		}
		s.log.WithFields(logrus.Fields{
			"tool":    op.tool,
			"call_id": callID,
			"attempt": attempts,
		}).WithError(err).Warn("retrying after failure")
	}

	return format(record), nil
}

func acquireFailure(err error) *failure.Error {
	var be *fetcher.BrowserError
	if errors.As(err, &be) && be.Op == "launch" {
		return failure.BrowserInit(err)
	}
	return failure.Classify(err)
}

// finish logs a completed call and records it in the history.
func (s *Service) finish(tool string, callID uuid.UUID, args string, start time.Time, attempts int, f *failure.Error) {
	duration := time.Since(start)
	log := s.log.WithFields(logrus.Fields{
		"tool":        tool,
		"call_id":     callID,
		"attempts":    attempts,
		"duration_ms": duration.Milliseconds(),
	})

	call := &history.Call{
		CallID:    callID,
		Tool:      tool,
		Arguments: args,
		Attempts:  attempts,
		Duration:  duration.Milliseconds(),
		CreatedAt: start,
	}
	if f != nil {
		call.Kind = string(f.Kind)
		call.Message = f.Message
		log.WithField("kind", f.Kind).Warn(f.Message)
	} else {
		log.Info("call completed")
	}

	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.Record(call); err != nil {
		log.WithError(err).Error("failed to record call")
	}
}
