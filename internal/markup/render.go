package markup

import (
	"html"
	"strings"

	"github.com/chriserin/strparse/internal/parser"
)

// RenderHTML renders the tree under root. Text is escaped and then passed
// through post, except inside verbatim elements.
func RenderHTML(root *parser.Node, post func(string) string) string {
	var b strings.Builder
	renderChildren(&b, root, post)
	return b.String()
}

func renderChildren(b *strings.Builder, n *parser.Node, post func(string) string) {
	for _, c := range n.Children() {
		if c.IsText() {
			s := html.EscapeString(c.Content())
			if post != nil && !c.HasFlag("verbatim") {
				s = post(s)
			}
			b.WriteString(s)
			continue
		}
		el := elementOf(c)
		if el == nil {
			continue
		}
		b.WriteString("<" + el.Tag.Element + ">")
		renderChildren(b, c, post)
		b.WriteString("</" + el.Tag.Element + ">")
	}
}
