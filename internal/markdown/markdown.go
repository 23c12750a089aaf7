// Package markdown renders user-authored markdown (bios, event descriptions) into
// HTML that is safe to inject into a page, and produces plain-text summaries for
// SEO descriptions.
package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	renderer = goldmark.New()
	// ugcPolicy keeps formatting, links and lists; scripts, iframes and event
	// handlers never survive it.
	ugcPolicy = bluemonday.UGCPolicy()
	// textPolicy strips every tag; used for plain-text summaries.
	textPolicy = bluemonday.StrictPolicy()
)

// SafeHTML converts markdown to sanitized HTML. Empty input yields empty output.
func SafeHTML(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		// Renderer failure means we have nothing safe to show; sanitize the raw
		// input instead of dropping the bio entirely.
		return ugcPolicy.Sanitize(md)
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(buf.String()))
}

// Strip converts markdown to plain text with markup removed and whitespace
// collapsed, suitable for meta descriptions.
func Strip(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	src := md
	if err := renderer.Convert([]byte(md), &buf); err == nil {
		src = buf.String()
	}
	text := html.UnescapeString(textPolicy.Sanitize(src))
	return strings.Join(strings.Fields(text), " ")
}
