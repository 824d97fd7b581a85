package extractor

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/wechatfed/article"
	"github.com/pevans/wechatfed/scraper"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(scraper.DefaultLayouts(), log)
}

func searchCard(i int) string {
	return fmt.Sprintf(`<li>
  <div class="txt-box">
    <h3><a href="/link?url=dn9a_-gY295K0Rci_xozVXfdMkSQTLW6cwJThYulHEtVjXrGTiVgS%d&amp;type=2">AI 在医疗中的应用 %d</a></h3>
    <p class="txt-info">人工智能正在改变  医疗行业</p>
    <div class="s-p"><span class="all-time-y2">医学前沿</span><span class="s2">2024-01-0%d</span></div>
  </div>
</li>`, i, i, i)
}

func searchPage(cards int, pager string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="news-box"><ul class="news-list">`)
	for i := 1; i <= cards; i++ {
		b.WriteString(searchCard(i))
	}
	b.WriteString(`</ul></div>`)
	b.WriteString(pager)
	b.WriteString(`</body></html>`)
	return b.String()
}

const pager = `<div id="pagebar_container">
  <span>1</span><a href="?page=2">2</a><a href="?page=3">3</a><a href="?page=7">7</a><a href="?page=2">下一页</a>
</div>`

// TestSearch_Fields verifies every card field is extracted
func TestSearch_Fields(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Search(searchPage(1, pager), "人工智能", 1, 10)

	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	a := result.Articles[0]
	assert.Equal(t, "AI 在医疗中的应用 1", a.Title)
	assert.Equal(t, "https://weixin.sogou.com/link?url=dn9a_-gY295K0Rci_xozVXfdMkSQTLW6cwJThYulHEtVjXrGTiVgS1&type=2", a.URL)
	assert.Equal(t, "dn9a_-gY295K0Rci_xozVXfdMkSQTLW6cwJThYulHEtVjXrGTiVgS1&type=2", a.ArticleID)
	assert.Equal(t, "人工智能正在改变 医疗行业", a.Summary, "whitespace should be collapsed")
	assert.Equal(t, "医学前沿", a.AccountName)
	assert.Equal(t, "2024-01-01", a.PublishTime)
	assert.Equal(t, "人工智能", result.Query)
}

// TestSearch_LimitTruncates verifies at most limit articles are returned
func TestSearch_LimitTruncates(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Search(searchPage(8, ""), "q", 1, 3)
	require.NoError(t, err)
	assert.Len(t, result.Articles, 3)
	assert.Equal(t, 3, result.Pagination.TotalResults)

	result, err = e.Search(searchPage(2, ""), "q", 1, 10)
	require.NoError(t, err)
	assert.Len(t, result.Articles, 2, "fewer candidates than limit")
}

// TestSearch_Pagination verifies the page count is the largest pager number
func TestSearch_Pagination(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Search(searchPage(1, pager), "q", 2, 10)

	require.NoError(t, err)
	assert.Equal(t, article.Pagination{
		CurrentPage:  2,
		TotalPages:   7,
		TotalResults: 1,
		HasMore:      true,
	}, result.Pagination)
}

// TestSearch_NoPager verifies a missing pager means a single page
func TestSearch_NoPager(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Search(searchPage(1, ""), "q", 1, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.TotalPages)
	assert.False(t, result.Pagination.HasMore)
}

// TestSearch_Empty verifies an empty page yields an empty list, not nil
func TestSearch_Empty(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Search(`<html><body><div class="news-box"></div></body></html>`, "q", 1, 10)

	require.NoError(t, err)
	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)
}

// TestSearch_Sentinels verifies missing or empty fields get placeholders
func TestSearch_Sentinels(t *testing.T) {
	e := newTestExtractor()
	page := `<html><body><ul class="news-list">
  <li><div class="txt-box"><h3><a href="https://mp.weixin.qq.com/s/abc">  </a></h3></div></li>
</ul></body></html>`

	result, err := e.Search(page, "q", 1, 10)

	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	a := result.Articles[0]
	assert.Equal(t, article.NoTitle, a.Title, "blank title")
	assert.Equal(t, article.NoSummary, a.Summary)
	assert.Equal(t, article.NoAccount, a.AccountName)
	assert.Equal(t, article.NoTime, a.PublishTime)
	assert.Equal(t, "https://mp.weixin.qq.com/s/abc", a.URL, "absolute links are kept")
	assert.Equal(t, "", a.ArticleID, "no marker means no id")
}

// TestIDAfter verifies the id is taken after the last marker
func TestIDAfter(t *testing.T) {
	assert.Equal(t, "b", idAfter("/link?url=a&url=b", "url="))
	assert.Equal(t, "", idAfter("/link?x=1", "url="))
	assert.Equal(t, "", idAfter("/link?url=a", ""))
}

// TestMaxPage verifies only numeric links count
func TestMaxPage(t *testing.T) {
	doc, err := parse(`<div><a>下一页</a><a> 4 </a><a>12a</a><a>2</a></div>`)
	require.NoError(t, err)

	assert.Equal(t, 4, maxPage(doc.Find("a")))
}

const articlePage = `<html><head><title>t</title></head><body>
<h1 id="activity-name">
  深度学习入门
</h1>
<a id="js_name"> 机器之心 </a>
<em id="publish_time">2024-03-01</em>
<div id="js_content">
  <p>第一段</p>
  <p>  </p>
  <section><span>第二段</span><script>var x = 1;</script></section>
</div>
</body></html>`

// TestArticle_Fields verifies article fields and content
func TestArticle_Fields(t *testing.T) {
	e := newTestExtractor()

	detail, err := e.Article(articlePage, "abc", "https://mp.weixin.qq.com/s?__biz=abc", true)

	require.NoError(t, err)
	assert.Equal(t, "abc", detail.ArticleID)
	assert.Equal(t, "深度学习入门", detail.Title)
	assert.Equal(t, "机器之心", detail.AccountName)
	assert.Equal(t, "2024-03-01", detail.PublishTime)
	assert.Equal(t, "https://mp.weixin.qq.com/s?__biz=abc", detail.URL)
	require.NotNil(t, detail.Content)
	assert.Equal(t, "第一段\n第二段", *detail.Content)
	assert.Equal(t, article.StatUnknown, detail.Stats.ReadCount)
	assert.Equal(t, article.StatUnknown, detail.Stats.LikeCount)
}

// TestArticle_NoContent verifies content is absent when not requested
func TestArticle_NoContent(t *testing.T) {
	e := newTestExtractor()

	detail, err := e.Article(articlePage, "abc", "https://mp.weixin.qq.com/s?__biz=abc", false)

	require.NoError(t, err)
	assert.Nil(t, detail.Content)
}

// TestArticle_Sentinels verifies placeholders on a bare page
func TestArticle_Sentinels(t *testing.T) {
	layouts := scraper.DefaultLayouts()
	layouts.Article.ReadabilityFallback = false
	log := logrus.New()
	log.SetOutput(io.Discard)
	e := New(layouts, log)

	detail, err := e.Article(`<html><body><p>x</p></body></html>`, "id", "https://mp.weixin.qq.com/s/id", true)

	require.NoError(t, err)
	assert.Equal(t, article.NoTitle, detail.Title)
	assert.Equal(t, article.NoAccount, detail.AccountName)
	assert.Equal(t, article.NoTime, detail.PublishTime)
	require.NotNil(t, detail.Content)
	assert.Equal(t, "", *detail.Content)
}

// TestArticle_ReadabilityFallback verifies the page body is used when the
// content node is missing
func TestArticle_ReadabilityFallback(t *testing.T) {
	e := newTestExtractor()
	paragraph := strings.Repeat("这是一段足够长的正文内容，用于测试可读性提取。", 10)
	page := `<html><head><title>回退</title></head><body><article><h1>回退</h1><p>` +
		paragraph + `</p><p>` + paragraph + `</p></article></body></html>`

	detail, err := e.Article(page, "id", "https://mp.weixin.qq.com/s/id", true)

	require.NoError(t, err)
	require.NotNil(t, detail.Content)
	assert.Contains(t, *detail.Content, "这是一段足够长的正文内容")
}

// TestAccountDirectory_Found verifies the profile link is resolved
func TestAccountDirectory_Found(t *testing.T) {
	e := newTestExtractor()
	page := `<html><body><div class="news-box"><ul class="news-list2">
  <li><div class="gzh-box2"><a href="/gzh?openid=oIWsFt1">人民日报</a></div></li>
  <li><a href="/gzh?openid=other">其他</a></li>
</ul></div></body></html>`

	link, found, err := e.AccountDirectory(page)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://weixin.sogou.com/gzh?openid=oIWsFt1", link)
}

// TestAccountDirectory_NotFound verifies empty results and entries
// without links
func TestAccountDirectory_NotFound(t *testing.T) {
	e := newTestExtractor()

	_, found, err := e.AccountDirectory(`<html><body><div class="news-box"></div></body></html>`)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = e.AccountDirectory(`<html><body><ul class="news-list2"><li><span>x</span></li></ul></body></html>`)
	require.NoError(t, err)
	assert.False(t, found)
}

const profilePage = `<html><body>
<strong class="profile_nickname">人民日报</strong>
<div class="weui_media_box">
  <h4 class="weui_media_title" hrefs="/s?__biz=MjM5MjAxNDM4MA==&amp;mid=1">今日要闻</h4>
  <p class="weui_media_desc">摘要一</p>
  <p class="weui_media_extra_info">2024年3月1日</p>
</div>
<div class="weui_media_box">
  <h4 class="weui_media_title" href="https://mp.weixin.qq.com/s?__biz=MjM5&amp;mid=2">第二篇</h4>
</div>
<div class="weui_media_box"><h4 class="weui_media_title">第三篇</h4></div>
</body></html>`

// TestAccountArticles verifies profile items are extracted
func TestAccountArticles(t *testing.T) {
	e := newTestExtractor()

	result, err := e.AccountArticles(profilePage, "rmrb", 2)

	require.NoError(t, err)
	assert.Equal(t, "rmrb", result.AccountName, "requested name is kept")
	assert.Equal(t, 2, result.TotalResults)
	require.Len(t, result.Articles, 2)

	first := result.Articles[0]
	assert.Equal(t, "今日要闻", first.Title)
	assert.Equal(t, "https://mp.weixin.qq.com/s?__biz=MjM5MjAxNDM4MA==&mid=1", first.URL)
	assert.Equal(t, "MjM5MjAxNDM4MA==&mid=1", first.ArticleID)
	assert.Equal(t, "摘要一", first.Summary)
	assert.Equal(t, "2024年3月1日", first.PublishTime)
	assert.Equal(t, "人民日报", first.AccountName)

	second := result.Articles[1]
	assert.Equal(t, "https://mp.weixin.qq.com/s?__biz=MjM5&mid=2", second.URL)
	assert.Equal(t, article.NoSummary, second.Summary)
	assert.Equal(t, article.NoTime, second.PublishTime)
}

// TestAccountNotFound verifies the not-found result
func TestAccountNotFound(t *testing.T) {
	result := AccountNotFound("no-such-account-xyz")

	assert.Equal(t, "no-such-account-xyz", result.AccountName)
	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)
	assert.Equal(t, 0, result.TotalResults)
	assert.Equal(t, NotFoundNote, result.Error)
}

// TestTrending verifies category pages use the card layout
func TestTrending(t *testing.T) {
	e := newTestExtractor()

	result, err := e.Trending(searchPage(5, ""), "finance", 4)

	require.NoError(t, err)
	assert.Equal(t, "finance", result.Category)
	assert.Equal(t, 4, result.TotalResults)
	assert.Len(t, result.Articles, 4)
	assert.Equal(t, "AI 在医疗中的应用 4", result.Articles[3].Title)
}

// TestAccountFeed verifies feed items map to summaries
func TestAccountFeed(t *testing.T) {
	e := newTestExtractor()
	published := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	feed := &gofeed.Feed{
		Title: "人民日报",
		Items: []*gofeed.Item{
			{
				Title:           "第一篇",
				Description:     "<p>摘要 <b>一</b></p>",
				Link:            "https://mp.weixin.qq.com/s?__biz=MjM5&mid=1",
				PublishedParsed: &published,
			},
			{Title: "", Link: "https://mp.weixin.qq.com/s/xyz", GUID: "guid-2", Published: "昨天"},
			{Title: "第三篇"},
		},
	}

	result := e.AccountFeed(feed, "rmrb", 2)

	assert.Equal(t, "rmrb", result.AccountName)
	assert.Equal(t, "人民日报", result.Articles[0].AccountName)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "第一篇", result.Articles[0].Title)
	assert.Equal(t, "摘要 一", result.Articles[0].Summary)
	assert.Equal(t, "MjM5&mid=1", result.Articles[0].ArticleID)
	assert.Equal(t, "2024-03-01 08:30", result.Articles[0].PublishTime)
	assert.Equal(t, article.NoTitle, result.Articles[1].Title)
	assert.Equal(t, "guid-2", result.Articles[1].ArticleID)
	assert.Equal(t, "昨天", result.Articles[1].PublishTime)
}

// TestCollect_SkipsFailingCandidates verifies a candidate whose build
// panics or errors is skipped and the rest are kept in order
func TestCollect_SkipsFailingCandidates(t *testing.T) {
	e := newTestExtractor()
	doc, err := parse(`<ul><li>a</li><li>b</li><li>c</li><li>d</li></ul>`)
	require.NoError(t, err)

	summaries := e.collect("test", doc.Find("li"), func(item *goquery.Selection) (article.Summary, error) {
		s := article.NewSummary()
		switch item.Text() {
		case "b":
			panic("malformed card")
		case "d":
			return s, fmt.Errorf("missing link")
		}
		s.Title = item.Text()
		return s, nil
	})

	require.Len(t, summaries, 2)
	assert.Equal(t, "a", summaries[0].Title)
	assert.Equal(t, "c", summaries[1].Title)
}

// TestSearch_SkipsPanickingCard verifies one bad card does not sink the
// page
func TestSearch_SkipsPanickingCard(t *testing.T) {
	e := newTestExtractor()
	calls := 0
	build := e.card(e.layouts.Search)
	doc, err := parse(searchPage(3, ""))
	require.NoError(t, err)

	summaries := e.collect("search", doc.Find(e.layouts.Search.ItemSelector), func(item *goquery.Selection) (article.Summary, error) {
		calls++
		if calls == 2 {
			var nilSelection *goquery.Selection
			return build(nilSelection)
		}
		return build(item)
	})

	assert.Equal(t, 3, calls)
	require.Len(t, summaries, 2)
	assert.Equal(t, "AI 在医疗中的应用 1", summaries[0].Title)
	assert.Equal(t, "AI 在医疗中的应用 3", summaries[1].Title)
}
