package extractor

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/wechatfed/article"
)

// Search extracts the cards of a search results page. The number of
// pages comes from the pager and defaults to 1.
func (e *Extractor) Search(html, query string, page, limit int) (*article.SearchResult, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	layout := e.layouts.Search
	items := truncate(doc.Find(layout.ItemSelector), limit)
	articles := e.collect("search", items, e.card(layout))

	totalPages := 1
	if layout.PagerSelector != "" {
		totalPages = maxPage(doc.Find(layout.PagerSelector).Find("a"))
	}

	return &article.SearchResult{
		Articles: articles,
		Pagination: article.Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalResults: len(articles),
			HasMore:      page < totalPages,
		},
		Query: query,
	}, nil
}

// maxPage returns the largest page number among the pager links, or 1.
// Links such as "下一页" are ignored.
func maxPage(links *goquery.Selection) int {
	highest := 1
	links.Each(func(_ int, link *goquery.Selection) {
		text := strings.TrimSpace(link.Text())
		if text == "" || strings.IndexFunc(text, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return
		}
		if n, err := strconv.Atoi(text); err == nil && n > highest {
			highest = n
		}
	})
	return highest
}
