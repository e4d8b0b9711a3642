// Package render turns article content into HTML for published views.
package render

import (
	"gitlab.com/golang-commonmark/markdown"
)

// Raw HTML in article content is escaped, never passed through.
var parser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(false), markdown.MaxNesting(10))

// Markdown renders CommonMark content to an HTML fragment.
func Markdown(content string) string {
	return parser.RenderToString([]byte(content))
}
