package formatter

import "github.com/pevans/wechatfed/article"

const conciseContentPreview = 200

type conciseArticle struct {
	Title       string `json:"title"`
	ArticleID   string `json:"article_id"`
	AccountName string `json:"account_name"`
	PublishTime string `json:"publish_time"`
	Summary     string `json:"summary"`
}

type conciseList struct {
	Articles     []conciseArticle    `json:"articles"`
	TotalResults *int                `json:"total_results,omitempty"`
	Pagination   *article.Pagination `json:"pagination,omitempty"`
	Query        *string             `json:"query,omitempty"`
	Category     *string             `json:"category,omitempty"`
	AccountName  *string             `json:"account_name,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type conciseDetail struct {
	Title          string `json:"title"`
	ArticleID      string `json:"article_id"`
	AccountName    string `json:"account_name"`
	PublishTime    string `json:"publish_time"`
	ContentPreview string `json:"content_preview,omitempty"`
}

// concise projects a record onto the fields needed to pick an article.
// Unknown records are returned as they are.
func concise(record any) any {
	switch r := record.(type) {
	case article.SearchResult:
		// The count already sits in the pagination block.
		list := conciseArticles(r.Articles)
		list.Pagination = &r.Pagination
		list.Query = &r.Query
		return list
	case article.AccountResult:
		list := conciseArticles(r.Articles)
		list.TotalResults = &r.TotalResults
		list.AccountName = &r.AccountName
		list.Error = r.Error
		return list
	case article.TrendingResult:
		list := conciseArticles(r.Articles)
		list.TotalResults = &r.TotalResults
		list.Category = &r.Category
		return list
	case article.Detail:
		d := conciseDetail{
			Title:       r.Title,
			ArticleID:   r.ArticleID,
			AccountName: r.AccountName,
			PublishTime: r.PublishTime,
		}
		if r.Content != nil && *r.Content != "" {
			d.ContentPreview = preview(*r.Content, conciseContentPreview)
		}
		return d
	}
	return record
}

func conciseArticles(articles []article.Summary) conciseList {
	list := conciseList{
		Articles: make([]conciseArticle, 0, len(articles)),
	}
	for _, a := range articles {
		list.Articles = append(list.Articles, conciseArticle{
			Title:       a.Title,
			ArticleID:   a.ArticleID,
			AccountName: a.AccountName,
			PublishTime: a.PublishTime,
			Summary:     a.Summary,
		})
	}
	return list
}
