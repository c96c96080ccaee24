// Package sanitize turns untrusted post content into something safe to show.
//
// Two modes exist: Excerpt, a plain-text preview used on listings, and Render,
// which keeps only basic inline formatting for the post page.
package sanitize

import (
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	ExcerptLength = 150
	Ellipsis      = "..."
)

var (
	stripPolicy  = bluemonday.StrictPolicy()
	renderPolicy = newRenderPolicy()
)

// RenderTags are the only elements Render lets through
var RenderTags = []string{"p", "strong", "b", "em", "i", "br"}

func newRenderPolicy() *bluemonday.Policy {
	pol := bluemonday.NewPolicy()
	pol.AllowElements(RenderTags...)
	return pol
}

// StripTags removes all markup and returns plain, unescaped text
func StripTags(content string) string {
	return html.UnescapeString(stripPolicy.Sanitize(content))
}

// Excerpt strips all markup and shortens the text to at most ExcerptLength runes.
// Longer text is cut back to the last space before the limit and gets an Ellipsis.
func Excerpt(content string) string {
	text := strings.TrimSpace(StripTags(content))
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	prefix := string([]rune(text)[:ExcerptLength])
	if idx := strings.LastIndexByte(prefix, ' '); idx >= 0 {
		prefix = prefix[:idx]
	}
	return prefix + Ellipsis
}

// Render keeps paragraphs, bold, italic and line breaks. Every attribute is dropped.
func Render(content string) template.HTML {
	return template.HTML(renderPolicy.Sanitize(content))
}

// ShareText is the short plain-text blurb handed to share targets
func ShareText(content string, limit int) string {
	text := strings.TrimSpace(StripTags(content))
	if utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	return text + Ellipsis
}
