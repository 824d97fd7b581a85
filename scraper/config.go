package scraper

import (
	"fmt"
	"net/url"
	"strings"
)

// Layouts holds every selector and URL the extractors rely on, grouped by
// page type. Defaults match the live site; the config file may override any
// field.
type Layouts struct {
	Search    ListLayout      `json:"search" yaml:"search"`
	Article   ArticleLayout   `json:"article" yaml:"article"`
	Directory DirectoryLayout `json:"directory" yaml:"directory"`
	Profile   ProfileLayout   `json:"profile" yaml:"profile"`
	Trending  TrendingLayouts `json:"trending" yaml:"trending"`
}

// ListLayout describes a list of article cards, as found on the search
// results page and on the category index pages.
type ListLayout struct {
	URL             string `json:"url,omitempty" yaml:"url,omitempty"` // format string: query, page
	WaitSelector    string `json:"wait_selector" yaml:"wait_selector"`
	ItemSelector    string `json:"item_selector" yaml:"item_selector"`
	TitleSelector   string `json:"title_selector" yaml:"title_selector"`
	SummarySelector string `json:"summary_selector" yaml:"summary_selector"`
	AccountSelector string `json:"account_selector" yaml:"account_selector"`
	TimeSelector    string `json:"time_selector" yaml:"time_selector"`
	PagerSelector   string `json:"pager_selector,omitempty" yaml:"pager_selector,omitempty"`
	IDMarker        string `json:"id_marker" yaml:"id_marker"`
	LinkBase        string `json:"link_base" yaml:"link_base"`
}

// ArticleLayout describes a single article page.
type ArticleLayout struct {
	URL                 string `json:"url" yaml:"url"` // format string: bare article id
	WaitSelector        string `json:"wait_selector" yaml:"wait_selector"`
	TitleSelector       string `json:"title_selector" yaml:"title_selector"`
	AccountSelector     string `json:"account_selector" yaml:"account_selector"`
	TimeSelector        string `json:"time_selector" yaml:"time_selector"`
	ContentSelector     string `json:"content_selector" yaml:"content_selector"`
	ReadabilityFallback bool   `json:"readability_fallback" yaml:"readability_fallback"`
}

// DirectoryLayout describes the account search page used to locate a
// profile.
type DirectoryLayout struct {
	URL           string `json:"url" yaml:"url"` // format string: account name
	WaitSelector  string `json:"wait_selector" yaml:"wait_selector"`
	EntrySelector string `json:"entry_selector" yaml:"entry_selector"`
	LinkSelector  string `json:"link_selector" yaml:"link_selector"`
	LinkBase      string `json:"link_base" yaml:"link_base"`
}

// ProfileLayout describes an account profile page listing its articles.
type ProfileLayout struct {
	WaitSelector     string `json:"wait_selector" yaml:"wait_selector"`
	ItemSelector     string `json:"item_selector" yaml:"item_selector"`
	TitleSelector    string `json:"title_selector" yaml:"title_selector"`
	SummarySelector  string `json:"summary_selector" yaml:"summary_selector"`
	TimeSelector     string `json:"time_selector" yaml:"time_selector"`
	NicknameSelector string `json:"nickname_selector" yaml:"nickname_selector"`
	IDMarker         string `json:"id_marker" yaml:"id_marker"`
	LinkBase         string `json:"link_base" yaml:"link_base"`
}

// TrendingLayouts maps category codes to index page URLs. All index pages
// share one card layout.
type TrendingLayouts struct {
	URLs   map[string]string `json:"urls" yaml:"urls"`
	Layout ListLayout        `json:"layout" yaml:"layout"`
}

const sogouBase = "https://weixin.sogou.com"

// cardLayout is the article card markup shared by search and trending.
func cardLayout() ListLayout {
	return ListLayout{
		ItemSelector:    ".news-list li",
		TitleSelector:   "h3 a",
		SummarySelector: ".txt-info",
		AccountSelector: "div.txt-box > div > span.all-time-y2",
		TimeSelector:    ".s2",
		IDMarker:        "url=",
		LinkBase:        sogouBase,
	}
}

// DefaultLayouts returns the layouts of weixin.sogou.com and
// mp.weixin.qq.com.
func DefaultLayouts() Layouts {
	search := cardLayout()
	search.URL = sogouBase + "/weixin?type=2&query=%s&page=%d"
	search.WaitSelector = ".news-box"
	search.PagerSelector = "#pagebar_container"

	trending := cardLayout()
	trending.WaitSelector = ".news-list"

	return Layouts{
		Search: search,
		Article: ArticleLayout{
			URL:                 "https://mp.weixin.qq.com/s?__biz=%s",
			WaitSelector:        "#activity-name",
			TitleSelector:       "#activity-name",
			AccountSelector:     "#js_name",
			TimeSelector:        "#publish_time",
			ContentSelector:     "#js_content",
			ReadabilityFallback: true,
		},
		Directory: DirectoryLayout{
			URL:           sogouBase + "/weixin?type=1&query=%s",
			WaitSelector:  ".news-box",
			EntrySelector: ".news-list2 li",
			LinkSelector:  "a",
			LinkBase:      sogouBase,
		},
		Profile: ProfileLayout{
			WaitSelector:     ".weui_media_box",
			ItemSelector:     ".weui_media_box",
			TitleSelector:    "h4.weui_media_title",
			SummarySelector:  ".weui_media_desc",
			TimeSelector:     ".weui_media_extra_info",
			NicknameSelector: ".profile_nickname",
			IDMarker:         "?__biz=",
			LinkBase:         "https://mp.weixin.qq.com",
		},
		Trending: TrendingLayouts{
			URLs: map[string]string{
				"hot":           sogouBase + "/",
				"tech":          sogouBase + "/pcindex/pc/pc_1/1.html",
				"finance":       sogouBase + "/pcindex/pc/pc_2/1.html",
				"entertainment": sogouBase + "/pcindex/pc/pc_4/1.html",
			},
			Layout: trending,
		},
	}
}

// SearchURL builds the search results URL for a query and page number.
func (l Layouts) SearchURL(query string, page int) string {
	return fmt.Sprintf(l.Search.URL, url.QueryEscape(query), page)
}

// ArticleURL turns an article id into a URL. Values that already look like
// URLs are returned unchanged.
func (l Layouts) ArticleURL(articleID string) string {
	if strings.HasPrefix(articleID, "http") {
		return articleID
	}
	return fmt.Sprintf(l.Article.URL, articleID)
}

// DirectoryURL builds the account search URL for an account name.
func (l Layouts) DirectoryURL(accountName string) string {
	return fmt.Sprintf(l.Directory.URL, url.QueryEscape(accountName))
}

// TrendingURL returns the index page of a category, falling back to the
// "hot" page for unknown codes.
func (l Layouts) TrendingURL(category string) string {
	if u, ok := l.Trending.URLs[category]; ok {
		return u
	}
	return l.Trending.URLs["hot"]
}
