package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pevans/wechatfed/failure"
)

// SearchInput holds the arguments of search_wechat_articles.
type SearchInput struct {
	Query  string `json:"query" validate:"required,min=1,max=100"`
	Limit  int    `json:"limit" validate:"min=1,max=50"`
	Page   int    `json:"page" validate:"min=1,max=100"`
	Format string `json:"format" validate:"oneof=json markdown"`
	Detail string `json:"detail" validate:"oneof=concise detailed"`
}

// ArticleInput holds the arguments of get_wechat_article.
type ArticleInput struct {
	ArticleID      string `json:"article_id" validate:"required,min=1"`
	IncludeContent bool   `json:"include_content"`
	Format         string `json:"format" validate:"oneof=json markdown"`
}

// AccountInput holds the arguments of list_wechat_articles_by_account.
type AccountInput struct {
	AccountName string `json:"account_name" validate:"required,min=1"`
	Limit       int    `json:"limit" validate:"min=1,max=50"`
	Format      string `json:"format" validate:"oneof=json markdown"`
	Detail      string `json:"detail" validate:"oneof=concise detailed"`
}

// TrendingInput holds the arguments of get_trending_wechat_articles.
type TrendingInput struct {
	Category string `json:"category" validate:"oneof=hot tech finance entertainment"`
	Limit    int    `json:"limit" validate:"min=1,max=50"`
	Format   string `json:"format" validate:"oneof=json markdown"`
	Detail   string `json:"detail" validate:"oneof=concise detailed"`
}

// DefaultSearchInput returns a SearchInput with every optional field at
// its default.
func DefaultSearchInput() SearchInput {
	return SearchInput{Limit: 10, Page: 1, Format: "json", Detail: "concise"}
}

// DefaultArticleInput returns an ArticleInput with every optional field at
// its default.
func DefaultArticleInput() ArticleInput {
	return ArticleInput{IncludeContent: true, Format: "json"}
}

// DefaultAccountInput returns an AccountInput with every optional field at
// its default.
func DefaultAccountInput() AccountInput {
	return AccountInput{Limit: 10, Format: "json", Detail: "concise"}
}

// DefaultTrendingInput returns a TrendingInput with every optional field
// at its default.
func DefaultTrendingInput() TrendingInput {
	return TrendingInput{Category: "hot", Limit: 10, Format: "json", Detail: "concise"}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by the names callers use.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads raw into in, which must already hold the defaults. Unknown
// fields and type mismatches are validation failures. Empty input means
// no arguments.
func decode(raw []byte, in any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return failure.Validation("参数格式错误: %v", err)
	}
	if dec.More() {
		return failure.Validation("参数格式错误: 参数后存在多余内容")
	}

	return nil
}

// check validates in against its struct tags.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return failure.Validation("参数校验失败: %v", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return failure.Validation("%s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("参数 %s 不能为空", fe.Field())
	case "min":
		if isString {
			return fmt.Sprintf("参数 %s 长度不能少于 %s 个字符", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("参数 %s 不能小于 %s", fe.Field(), fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("参数 %s 长度不能超过 %s 个字符", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("参数 %s 不能大于 %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("参数 %s 必须是以下值之一: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("参数 %s 无效 (%s)", fe.Field(), fe.Tag())
}
