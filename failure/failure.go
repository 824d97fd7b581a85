// Package failure turns errors from the scraping pipeline into
// user-facing failures with a kind, a message and a suggestion.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pevans/wechatfed/fetcher"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindTimeout      Kind = "timeout"
	KindConnectivity Kind = "connectivity"
	KindBrowser      Kind = "browser"
	KindHTTP         Kind = "http"
	KindRateLimit    Kind = "rate_limit"
	KindUnknown      Kind = "unknown"
)

// DefaultSuggestion is used when a failure is created without one.
const DefaultSuggestion = "请稍后重试"

// Error is the failure returned to callers of the tools.
type Error struct {
	Kind       Kind   `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether trying again could plausibly succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindConnectivity
}

// New creates a failure. An empty suggestion becomes DefaultSuggestion.
func New(kind Kind, message, suggestion string) *Error {
	if suggestion == "" {
		suggestion = DefaultSuggestion
	}
	return &Error{Kind: kind, Message: message, Suggestion: suggestion}
}

// Validation creates a validation failure from a formatted message.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), "请检查输入参数是否符合要求")
}

// BrowserInit reports a browser that could not be started.
func BrowserInit(err error) *Error {
	return &Error{
		Kind:       KindBrowser,
		Message:    fmt.Sprintf("浏览器初始化失败: %v", err),
		Suggestion: installHint,
		Err:        err,
	}
}

const installHint = "请检查 Chrome 或 Chromium 是否正确安装，或设置 WECHAT_SCRAPER_FETCHER=http 使用静态抓取"

// Classify maps err to a failure. It never returns nil for a non-nil
// error; errors that are already failures are returned as they are.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	text := err.Error()
	lower := strings.ToLower(text)
	classified := func(kind Kind, message, suggestion string) *Error {
		return &Error{Kind: kind, Message: message, Suggestion: suggestion, Err: err}
	}

	if isTimeout(err) {
		return classified(KindTimeout,
			"请求超时，可能是网络问题或目标网站响应慢",
			"请检查网络连接并稍后重试，或增加超时时间 (WECHAT_SCRAPER_TIMEOUT 环境变量)")
	}

	switch {
	case strings.Contains(text, "ERR_CONNECTION_REFUSED") || strings.Contains(lower, "connection refused"):
		return classified(KindConnectivity,
			"连接被拒绝，无法访问目标网站",
			"请检查网络连接或目标网站是否可访问")
	case strings.Contains(text, "ERR_NAME_NOT_RESOLVED") || strings.Contains(lower, "no such host"):
		return classified(KindConnectivity,
			"无法解析域名",
			"请检查网络连接和DNS设置")
	case strings.Contains(text, "ERR_PROXY_CONNECTION_FAILED") || strings.Contains(lower, "proxyconnect"):
		return classified(KindConnectivity,
			"代理连接失败",
			"请检查代理设置或尝试不使用代理")
	}

	var be *fetcher.BrowserError
	if errors.As(err, &be) {
		return classified(KindBrowser, fmt.Sprintf("浏览器错误: %v", err), installHint)
	}

	var he *fetcher.HTTPError
	var ue *url.Error
	if errors.As(err, &he) || errors.As(err, &ue) {
		return classified(KindHTTP,
			fmt.Sprintf("HTTP 请求错误: %v", err),
			"请检查网络连接并稍后重试")
	}

	var blocked *fetcher.BlockedError
	if _, found := fetcher.FindBlockMarker(text); found || errors.As(err, &blocked) {
		return classified(KindRateLimit,
			"访问频率受限，可能触发了反爬虫机制",
			"请降低请求频率，稍后再试，或考虑使用代理")
	}

	return classified(KindUnknown,
		fmt.Sprintf("未知错误: %v", err),
		"请检查日志获取详细信息并报告此问题")
}

// Wrap returns err unchanged when it is already a failure, and otherwise
// wraps it under an operation-specific message.
func Wrap(message, suggestion string, err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	return &Error{
		Kind:       KindUnknown,
		Message:    fmt.Sprintf("%s: %v", message, err),
		Suggestion: suggestion,
		Err:        err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var te *fetcher.TimeoutError
	if errors.As(err, &te) {
		return true
	}

	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
