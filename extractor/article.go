package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pevans/wechatfed/article"
	"golang.org/x/net/html"
)

// Article extracts a single article page. Content is only filled in when
// includeContent is set.
func (e *Extractor) Article(page, articleID, articleURL string, includeContent bool) (*article.Detail, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	layout := e.layouts.Article
	root := doc.Selection

	detail := &article.Detail{
		ArticleID:   articleID,
		Title:       textOr(root, layout.TitleSelector, article.NoTitle),
		AccountName: textOr(root, layout.AccountSelector, article.NoAccount),
		PublishTime: textOr(root, layout.TimeSelector, article.NoTime),
		URL:         articleURL,
		Stats: article.Stats{
			ReadCount: article.StatUnknown,
			LikeCount: article.StatUnknown,
		},
	}

	if includeContent {
		content := e.content(doc, page, articleURL)
		detail.Content = &content
	}

	return detail, nil
}

// content returns the text of the content node, one trimmed text node per
// line. Without a content node the readability extraction of the whole
// page is used when enabled.
func (e *Extractor) content(doc *goquery.Document, page, articleURL string) string {
	layout := e.layouts.Article

	node := doc.Find(layout.ContentSelector).First()
	if node.Length() > 0 {
		return nodeText(node)
	}

	if !layout.ReadabilityFallback {
		return ""
	}

	pageURL, err := url.Parse(articleURL)
	if err != nil {
		e.log.WithError(err).WithField("url", articleURL).Warn("cannot parse article URL for readability")
		return ""
	}

	extracted, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err != nil {
		e.log.WithError(err).WithField("url", articleURL).Warn("readability extraction failed")
		return ""
	}
	return strings.TrimSpace(extracted.TextContent)
}

// nodeText joins the trimmed, non-empty text nodes below s with newlines.
// Script and style bodies are skipped.
func nodeText(s *goquery.Selection) string {
	var lines []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return strings.Join(lines, "\n")
}
