package formatter

import (
	"fmt"
	"strings"

	"github.com/pevans/wechatfed/article"
)

const markdownContentPreview = 300

// listView is what the list renderers need from any list-shaped record.
type listView struct {
	heading    string
	pagination *article.Pagination
	note       string
	articles   []article.Summary
}

func markdown(record any, detailed bool) string {
	switch r := record.(type) {
	case article.SearchResult:
		return markdownList(listView{
			heading:    "# 搜索结果: " + r.Query,
			pagination: &r.Pagination,
			articles:   r.Articles,
		}, detailed)
	case article.AccountResult:
		return markdownList(listView{
			heading:  fmt.Sprintf("# %s 的文章", r.AccountName),
			note:     r.Error,
			articles: r.Articles,
		}, detailed)
	case article.TrendingResult:
		return markdownList(listView{
			heading:  fmt.Sprintf("# %s文章", article.CategoryLabel(r.Category)),
			articles: r.Articles,
		}, detailed)
	case article.Detail:
		return markdownDetail(r, detailed)
	}
	return fencedJSON(record)
}

func markdownList(v listView, detailed bool) string {
	lines := []string{v.heading}

	if v.note != "" {
		lines = append(lines, "\n> "+v.note)
	}

	if v.pagination != nil {
		lines = append(lines, fmt.Sprintf("\n**页码**: %d/%d | **结果数**: %d",
			v.pagination.CurrentPage, v.pagination.TotalPages, v.pagination.TotalResults))
	}

	lines = append(lines, "\n## 文章\n")

	for i, a := range v.articles {
		lines = append(lines,
			fmt.Sprintf("### %d. %s", i+1, a.Title),
			fmt.Sprintf("**公众号**: %s | **发布时间**: %s", a.AccountName, a.PublishTime),
		)
		if detailed {
			lines = append(lines,
				"\n**链接**: "+a.URL,
				"\n**文章ID**: "+a.ArticleID,
				fmt.Sprintf("\n**摘要**:\n> %s\n", a.Summary),
			)
		} else {
			lines = append(lines, fmt.Sprintf("\n%s\n", a.Summary))
		}
		lines = append(lines, "---\n")
	}

	lines = append(lines, fmt.Sprintf("\n共 %d 篇文章", len(v.articles)))

	return strings.Join(lines, "\n")
}

func markdownDetail(d article.Detail, detailed bool) string {
	lines := []string{
		"# " + d.Title,
		fmt.Sprintf("**公众号**: %s | **发布时间**: %s", d.AccountName, d.PublishTime),
	}

	content := ""
	if d.Content != nil {
		content = *d.Content
	}

	if !detailed {
		if content != "" {
			lines = append(lines, fmt.Sprintf("\n## 内容预览\n\n%s\n", preview(content, markdownContentPreview)))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		"\n**链接**: "+d.URL,
		"\n**文章ID**: "+d.ArticleID,
		fmt.Sprintf("\n**阅读量**: %s | **点赞数**: %s", d.Stats.ReadCount, d.Stats.LikeCount),
	)
	if content != "" {
		lines = append(lines, fmt.Sprintf("\n## 内容\n\n%s\n", content))
	}

	return strings.Join(lines, "\n")
}
