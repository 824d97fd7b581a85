// Package formatter renders article records as JSON or Markdown in a
// concise or detailed form, and keeps responses under a size limit.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pevans/wechatfed/article"
)

// Output formats and detail levels.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"

	DetailConcise  = "concise"
	DetailDetailed = "detailed"
)

// CharacterLimit is the longest response returned, in characters.
const CharacterLimit = 100000

// TruncationNotice is appended to responses cut at CharacterLimit.
const TruncationNotice = "\n\n... [Response truncated due to length]\n\n" +
	"To get complete info:\n" +
	"1. Use more specific filters\n" +
	"2. Request smaller batches\n" +
	"3. Use 'concise' detail level"

// Format renders record. Unrecognised formats fall back to JSON and
// unrecognised detail levels to concise. Records that are not one of the
// article result types are rendered as pretty JSON.
func Format(record any, format, detail string) string {
	record = deref(record)

	var out string
	if format == FormatMarkdown {
		out = markdown(record, detail == DetailDetailed)
	} else if detail == DetailDetailed {
		out = toJSON(record)
	} else {
		out = toJSON(concise(record))
	}

	return Truncate(out, CharacterLimit)
}

// Truncate cuts text to limit characters and appends TruncationNotice. Text
// within the limit is returned unchanged.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + TruncationNotice
}

// deref turns pointers to the known record types into values so the rest
// of the package only deals with one form.
func deref(record any) any {
	switch r := record.(type) {
	case *article.SearchResult:
		if r != nil {
			return *r
		}
	case *article.AccountResult:
		if r != nil {
			return *r
		}
	case *article.TrendingResult:
		if r != nil {
			return *r
		}
	case *article.Detail:
		if r != nil {
			return *r
		}
	}
	return record
}

// toJSON renders v with two-space indentation and without escaping HTML
// characters or non-ASCII text.
func toJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func fencedJSON(v any) string {
	return "```json\n" + toJSON(v) + "\n```"
}

// preview returns the first n characters of text, marked with an ellipsis
// when something was cut.
func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
