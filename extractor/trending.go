package extractor

import "github.com/pevans/wechatfed/article"

// Trending extracts the cards of a category index page.
func (e *Extractor) Trending(page, category string, limit int) (*article.TrendingResult, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	layout := e.layouts.Trending.Layout
	items := truncate(doc.Find(layout.ItemSelector), limit)
	articles := e.collect("trending", items, e.card(layout))

	return &article.TrendingResult{
		Category:     category,
		Articles:     articles,
		TotalResults: len(articles),
	}, nil
}
