package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/wechatfed/article"
)

// NotFoundNote is attached to account results when the account could not
// be located.
const NotFoundNote = "未找到公众号或无法访问公众号页面"

// AccountDirectory finds the profile link of the first account in an
// account search results page. found is false when there is no entry or
// the entry has no link.
func (e *Extractor) AccountDirectory(page string) (profileURL string, found bool, err error) {
	doc, err := parse(page)
	if err != nil {
		return "", false, err
	}

	layout := e.layouts.Directory
	entry := doc.Find(layout.EntrySelector).First()
	if entry.Length() == 0 {
		return "", false, nil
	}

	href, ok := entry.Find(layout.LinkSelector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false, nil
	}

	return absolute(href, layout.LinkBase), true, nil
}

// AccountArticles extracts the article list of an account profile page.
// The result keeps the requested account name; the nickname shown on the
// page, when present, names the account on each article.
func (e *Extractor) AccountArticles(page, accountName string, limit int) (*article.AccountResult, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	layout := e.layouts.Profile
	nickname := textOr(doc.Selection, layout.NicknameSelector, accountName)

	items := truncate(doc.Find(layout.ItemSelector), limit)
	articles := e.collect("account", items, func(item *goquery.Selection) (article.Summary, error) {
		s := article.NewSummary()
		s.AccountName = nickname

		title := item.Find(layout.TitleSelector).First()
		s.Title = textOr(item, layout.TitleSelector, article.NoTitle)

		// Profile pages keep the link in "hrefs" and leave "href" empty.
		href := strings.TrimSpace(title.AttrOr("href", ""))
		if href == "" {
			href = strings.TrimSpace(title.AttrOr("hrefs", ""))
		}
		s.URL = absolute(href, layout.LinkBase)
		s.ArticleID = idAfter(s.URL, layout.IDMarker)

		s.Summary = textOr(item, layout.SummarySelector, article.NoSummary)
		s.PublishTime = textOr(item, layout.TimeSelector, article.NoTime)
		return s, nil
	})

	return &article.AccountResult{
		AccountName:  accountName,
		Articles:     articles,
		TotalResults: len(articles),
	}, nil
}

// AccountNotFound is the result returned when no profile could be found.
func AccountNotFound(accountName string) *article.AccountResult {
	return &article.AccountResult{
		AccountName:  accountName,
		Articles:     []article.Summary{},
		TotalResults: 0,
		Error:        NotFoundNote,
	}
}
