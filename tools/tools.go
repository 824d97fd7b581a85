package tools

// Tool names.
const (
	SearchTool   = "search_wechat_articles"
	ArticleTool  = "get_wechat_article"
	AccountTool  = "list_wechat_articles_by_account"
	TrendingTool = "get_trending_wechat_articles"
)

// Param documents one tool argument.
type Param struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // "string", "integer" or "boolean"
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Min         *int     `json:"min,omitempty"`
	Max         *int     `json:"max,omitempty"`
}

// Tool describes a tool for hosts that register it.
type Tool struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	ReadOnly    bool    `json:"read_only"`
	Idempotent  bool    `json:"idempotent"`
	OpenWorld   bool    `json:"open_world"`
}

func bound(n int) *int { return &n }

var (
	formatParam = Param{
		Name:        "format",
		Type:        "string",
		Description: "响应格式：'json' 或 'markdown'",
		Default:     "json",
		Enum:        []string{"json", "markdown"},
	}
	detailParam = Param{
		Name:        "detail",
		Type:        "string",
		Description: "详细程度：'concise' 返回摘要信息，'detailed' 返回完整信息",
		Default:     "concise",
		Enum:        []string{"concise", "detailed"},
	}
	limitParam = Param{
		Name:        "limit",
		Type:        "integer",
		Description: "返回结果数量限制 (1-50)",
		Default:     10,
		Min:         bound(1),
		Max:         bound(50),
	}
)

var catalog = []Tool{
	{
		Name:  SearchTool,
		Title: "搜索微信文章",
		Description: "使用关键词搜索微信公众号文章，支持分页和格式化选项。" +
			"返回标题、摘要、公众号、发布时间等信息。",
		Params: []Param{
			{
				Name:        "query",
				Type:        "string",
				Description: "搜索关键词，例如：'人工智能'、'区块链金融'",
				Required:    true,
				Min:         bound(1),
				Max:         bound(100),
			},
			limitParam,
			{
				Name:        "page",
				Type:        "integer",
				Description: "页码，从1开始",
				Default:     1,
				Min:         bound(1),
				Max:         bound(100),
			},
			formatParam,
			detailParam,
		},
	},
	{
		Name:        ArticleTool,
		Title:       "获取微信文章详情",
		Description: "获取指定微信文章的详细信息，包括标题、公众号、发布时间、正文内容等。",
		Params: []Param{
			{
				Name:        "article_id",
				Type:        "string",
				Description: "文章ID或URL",
				Required:    true,
				Min:         bound(1),
			},
			{
				Name:        "include_content",
				Type:        "boolean",
				Description: "是否包含文章正文内容",
				Default:     true,
			},
			formatParam,
		},
	},
	{
		Name:        AccountTool,
		Title:       "按公众号获取文章列表",
		Description: "获取指定微信公众号的最新文章列表。找不到公众号时返回空列表和说明。",
		Params: []Param{
			{
				Name:        "account_name",
				Type:        "string",
				Description: "公众号名称，例如：'人民日报'、'腾讯科技'",
				Required:    true,
				Min:         bound(1),
			},
			limitParam,
			formatParam,
			detailParam,
		},
	},
	{
		Name:        TrendingTool,
		Title:       "获取热门微信文章",
		Description: "获取当前热门或特定分类的微信文章列表。",
		Params: []Param{
			{
				Name:        "category",
				Type:        "string",
				Description: "文章分类：'hot'(热门)、'tech'(科技)、'finance'(财经)、'entertainment'(娱乐)",
				Default:     "hot",
				Enum:        []string{"hot", "tech", "finance", "entertainment"},
			},
			limitParam,
			formatParam,
			detailParam,
		},
	},
}

// Tools lists the tools a Service can run. Every tool only reads from the
// web, so all of them are read-only, idempotent and open-world.
func Tools() []Tool {
	out := make([]Tool, len(catalog))
	for i, t := range catalog {
		t.ReadOnly, t.Idempotent, t.OpenWorld = true, true, true
		t.Params = append([]Param(nil), t.Params...)
		out[i] = t
	}
	return out
}

// Lookup returns the descriptor of the named tool.
func Lookup(name string) (Tool, bool) {
	for _, t := range Tools() {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
