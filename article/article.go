package article

// Placeholder values substituted when a field cannot be extracted from the
// page. Fields are never left null.
const (
	NoTitle     = "无标题"
	NoSummary   = "无摘要"
	NoAccount   = "未知公众号"
	NoTime      = "未知时间"
	StatUnknown = "未知"
)

// Summary is one entry of an article list: a search hit, an account
// article or a trending article.
type Summary struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	AccountName string `json:"account_name"`
	PublishTime string `json:"publish_time"`
}

// NewSummary returns a Summary with every text field set to its
// placeholder. Extractors overwrite the fields they manage to find.
func NewSummary() Summary {
	return Summary{
		Title:       NoTitle,
		Summary:     NoSummary,
		AccountName: NoAccount,
		PublishTime: NoTime,
	}
}

// Stats holds engagement counters. The article page does not expose them
// to the scraper, so both are always StatUnknown.
type Stats struct {
	ReadCount string `json:"read_count"`
	LikeCount string `json:"like_count"`
}

// Detail is a single article fetched by id or URL.
type Detail struct {
	ArticleID   string  `json:"article_id"`
	Title       string  `json:"title"`
	AccountName string  `json:"account_name"`
	PublishTime string  `json:"publish_time"`
	Content     *string `json:"content,omitempty"`
	URL         string  `json:"url"`
	Stats       Stats   `json:"stats"`
}

// Pagination describes where a search result page sits.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasMore      bool `json:"has_more"`
}

// SearchResult is the record produced by a keyword search.
type SearchResult struct {
	Articles   []Summary  `json:"articles"`
	Pagination Pagination `json:"pagination"`
	Query      string     `json:"query"`
}

// AccountResult is the record produced by listing an account's articles.
// Error carries a note when the account could not be located; it is not a
// failure.
type AccountResult struct {
	AccountName  string    `json:"account_name"`
	Articles     []Summary `json:"articles"`
	TotalResults int       `json:"total_results"`
	Error        string    `json:"error,omitempty"`
}

// TrendingResult is the record produced by a category index page.
type TrendingResult struct {
	Category     string    `json:"category"`
	Articles     []Summary `json:"articles"`
	TotalResults int       `json:"total_results"`
}

// Categories recognised by the trending operation, with their display
// labels.
var Categories = map[string]string{
	"hot":           "热门",
	"tech":          "科技",
	"finance":       "财经",
	"entertainment": "娱乐",
}

// CategoryLabel returns the display label of a category, or the code itself
// when it is not one of Categories.
func CategoryLabel(code string) string {
	if label, ok := Categories[code]; ok {
		return label
	}
	return code
}
