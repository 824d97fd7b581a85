package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultLayouts_SearchURL verifies query escaping and page number
func TestDefaultLayouts_SearchURL(t *testing.T) {
	layouts := DefaultLayouts()

	got := layouts.SearchURL("人工智能 医疗", 2)

	assert.Equal(t,
		"https://weixin.sogou.com/weixin?type=2&query=%E4%BA%BA%E5%B7%A5%E6%99%BA%E8%83%BD+%E5%8C%BB%E7%96%97&page=2",
		got)
}

// TestDefaultLayouts_ArticleURL verifies ids and URLs are both accepted
func TestDefaultLayouts_ArticleURL(t *testing.T) {
	layouts := DefaultLayouts()

	assert.Equal(t, "https://mp.weixin.qq.com/s?__biz=MzIwMzA5NTI3NQ==",
		layouts.ArticleURL("MzIwMzA5NTI3NQ=="))
	assert.Equal(t, "https://mp.weixin.qq.com/s/UjZAqvkfk8AzpOoK1KV0yw",
		layouts.ArticleURL("https://mp.weixin.qq.com/s/UjZAqvkfk8AzpOoK1KV0yw"),
		"URLs should pass through unchanged")
}

// TestDefaultLayouts_DirectoryURL verifies the account search URL
func TestDefaultLayouts_DirectoryURL(t *testing.T) {
	layouts := DefaultLayouts()

	assert.Equal(t, "https://weixin.sogou.com/weixin?type=1&query=%E4%BA%BA%E6%B0%91%E6%97%A5%E6%8A%A5",
		layouts.DirectoryURL("人民日报"))
}

// TestDefaultLayouts_TrendingURL verifies category lookup and fallback
func TestDefaultLayouts_TrendingURL(t *testing.T) {
	layouts := DefaultLayouts()

	assert.Equal(t, "https://weixin.sogou.com/pcindex/pc/pc_2/1.html", layouts.TrendingURL("finance"))
	assert.Equal(t, "https://weixin.sogou.com/", layouts.TrendingURL("hot"))
	assert.Equal(t, "https://weixin.sogou.com/", layouts.TrendingURL("sports"), "unknown categories fall back to hot")
}

// TestDefaultLayouts_SharedCards verifies search and trending share card selectors
func TestDefaultLayouts_SharedCards(t *testing.T) {
	layouts := DefaultLayouts()

	assert.Equal(t, layouts.Search.ItemSelector, layouts.Trending.Layout.ItemSelector)
	assert.Equal(t, ".news-box", layouts.Search.WaitSelector)
	assert.Equal(t, ".news-list", layouts.Trending.Layout.WaitSelector)
	assert.Empty(t, layouts.Trending.Layout.PagerSelector, "trending pages have no pager")
}
