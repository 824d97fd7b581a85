// Package extractor turns rendered pages into article records. Every
// method is a pure function of the HTML it is given; fetching happens
// elsewhere.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/wechatfed/article"
	"github.com/pevans/wechatfed/scraper"
	"github.com/sirupsen/logrus"
)

// Extractor applies a set of selector layouts to rendered pages.
type Extractor struct {
	layouts scraper.Layouts
	log     logrus.FieldLogger
}

// New creates an extractor for the given layouts.
func New(layouts scraper.Layouts, log logrus.FieldLogger) *Extractor {
	return &Extractor{layouts: layouts, log: log}
}

// Layouts returns the layouts the extractor was built with.
func (e *Extractor) Layouts() scraper.Layouts {
	return e.layouts
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// textOr returns the whitespace-normalised text of the first match of
// selector under s, or fallback when nothing matches or the text is empty.
func textOr(s *goquery.Selection, selector, fallback string) string {
	if selector == "" {
		return fallback
	}
	text := normalize(s.Find(selector).First().Text())
	if text == "" {
		return fallback
	}
	return text
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// idAfter returns the text after the last occurrence of marker in raw, or
// "" when marker does not occur.
func idAfter(raw, marker string) string {
	if marker == "" {
		return ""
	}
	i := strings.LastIndex(raw, marker)
	if i < 0 {
		return ""
	}
	return raw[i+len(marker):]
}

// absolute prefixes relative links with base.
func absolute(href, base string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}

// truncate keeps at most limit candidates.
func truncate(items *goquery.Selection, limit int) *goquery.Selection {
	n := items.Length()
	if limit < n {
		n = max(limit, 0)
	}
	return items.Slice(0, n)
}

// collect runs build on every candidate and keeps the summaries that were
// built. A candidate whose build fails or panics is logged and skipped so
// one malformed node cannot sink the whole page.
func (e *Extractor) collect(page string, items *goquery.Selection, build func(*goquery.Selection) (article.Summary, error)) []article.Summary {
	summaries := make([]article.Summary, 0, items.Length())

	items.Each(func(i int, item *goquery.Selection) {
		summary, err := buildSafely(item, build)
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"page":  page,
				"index": i,
			}).WithError(err).Warn("skipping article that failed to parse")
			return
		}
		summaries = append(summaries, summary)
	})

	return summaries
}

func buildSafely(item *goquery.Selection, build func(*goquery.Selection) (article.Summary, error)) (summary article.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing article: %v", r)
		}
	}()
	return build(item)
}

// card extracts a search or trending card.
func (e *Extractor) card(layout scraper.ListLayout) func(*goquery.Selection) (article.Summary, error) {
	return func(item *goquery.Selection) (article.Summary, error) {
		s := article.NewSummary()

		link := item.Find(layout.TitleSelector).First()
		s.Title = textOr(item, layout.TitleSelector, article.NoTitle)
		href, _ := link.Attr("href")
		s.URL = absolute(strings.TrimSpace(href), layout.LinkBase)
		s.ArticleID = idAfter(s.URL, layout.IDMarker)
		s.Summary = textOr(item, layout.SummarySelector, article.NoSummary)
		s.AccountName = textOr(item, layout.AccountSelector, article.NoAccount)
		s.PublishTime = textOr(item, layout.TimeSelector, article.NoTime)

		return s, nil
	}
}
