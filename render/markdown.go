// ABOUTME: Markdown to HTML conversion using goldmark with GitHub-flavored extensions.
// ABOUTME: Raw HTML in the source is omitted from the output so previews cannot inject markup.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown converts src to HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// MarkdownFunc adapts Markdown to RenderFunc for use with Cache.
func MarkdownFunc(ctx context.Context, src string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Markdown(src)
}
