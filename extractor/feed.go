package extractor

import (
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/wechatfed/article"
)

// AccountFeed maps the items of an account's RSS or Atom feed to an
// account result. Used when the profile page cannot be reached. As with
// AccountArticles, the result keeps the requested name and the feed title
// names the account on each article.
func (e *Extractor) AccountFeed(feed *gofeed.Feed, accountName string, limit int) *article.AccountResult {
	title := accountName
	if feed != nil && strings.TrimSpace(feed.Title) != "" {
		title = normalize(feed.Title)
	}

	articles := []article.Summary{}
	if feed != nil {
		for _, item := range feed.Items {
			if len(articles) >= limit {
				break
			}
			if item == nil {
				continue
			}
			articles = append(articles, feedSummary(item, title, e.layouts.Profile.IDMarker))
		}
	}

	return &article.AccountResult{
		AccountName:  accountName,
		Articles:     articles,
		TotalResults: len(articles),
	}
}

func feedSummary(item *gofeed.Item, accountName, idMarker string) article.Summary {
	s := article.NewSummary()
	s.AccountName = accountName

	if title := normalize(item.Title); title != "" {
		s.Title = title
	}
	if summary := normalize(stripTags(item.Description)); summary != "" {
		s.Summary = summary
	}

	s.URL = strings.TrimSpace(item.Link)
	s.ArticleID = idAfter(s.URL, idMarker)
	if s.ArticleID == "" {
		s.ArticleID = item.GUID
	}

	switch {
	case item.PublishedParsed != nil:
		s.PublishTime = item.PublishedParsed.Format("2006-01-02 15:04")
	case strings.TrimSpace(item.Published) != "":
		s.PublishTime = strings.TrimSpace(item.Published)
	}

	return s
}

// stripTags drops markup from feed descriptions, which are often HTML.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := parse(s)
	if err != nil {
		return s
	}
	return doc.Text()
}
