package service

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

// Renderer turns post markdown into HTML that is safe to embed in a page.
type Renderer struct {
	html *bluemonday.Policy
	text *bluemonday.Policy
}

func NewRenderer() *Renderer {
	html := bluemonday.UGCPolicy()
	html.RequireNoFollowOnFullyQualifiedLinks(true)
	html.AddTargetBlankToFullyQualifiedLinks(true)
	return &Renderer{
		html: html,
		text: bluemonday.StrictPolicy(),
	}
}

func (r *Renderer) Content(markdown string) string {
	extensions := blackfriday.EXTENSION_AUTOLINK |
		blackfriday.EXTENSION_FENCED_CODE |
		blackfriday.EXTENSION_HARD_LINE_BREAK |
		blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
		blackfriday.EXTENSION_SPACE_HEADERS |
		blackfriday.EXTENSION_STRIKETHROUGH |
		blackfriday.EXTENSION_TABLES

	renderer := blackfriday.HtmlRenderer(blackfriday.HTML_USE_XHTML|blackfriday.HTML_SAFELINK, "", "")
	raw := blackfriday.Markdown([]byte(markdown), renderer, extensions)
	return string(r.html.SanitizeBytes(raw))
}

// Subject strips all markup; subjects are plain text.
func (r *Renderer) Subject(subject string) string {
	return r.text.Sanitize(subject)
}
