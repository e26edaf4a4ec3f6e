package markup

import (
	"fmt"
	"strings"

	"github.com/chriserin/strparse/internal/parser"
)

// KindElement is the node kind of every markup element.
const KindElement = parser.KindCustom

// Tag describes one markup tag, written [name]...[/name].
type Tag struct {
	Name     string `yaml:"name"`
	Element  string `yaml:"element"`  // HTML element rendered for the tag
	Verbatim bool   `yaml:"verbatim"` // content is not scanned for tags
	Block    bool   `yaml:"block"`    // block tags can't be nested in inline ones
}

// DefaultTags is the tag set used when none is configured.
var DefaultTags = []Tag{
	{Name: "b", Element: "strong"},
	{Name: "i", Element: "em"},
	{Name: "u", Element: "u"},
	{Name: "s", Element: "del"},
	{Name: "code", Element: "pre", Verbatim: true, Block: true},
	{Name: "quote", Element: "blockquote", Block: true},
}

func (t Tag) opener() string { return "[" + t.Name + "]" }
func (t Tag) closer() string { return "[/" + t.Name + "]" }

func (t Tag) validate() error {
	if t.Name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.ContainsAny(t.Name, "[]/ \t\n") {
		return fmt.Errorf("tag name %q contains a reserved character", t.Name)
	}
	if t.Element == "" {
		return fmt.Errorf("tag %q: element is required", t.Name)
	}
	return nil
}

// Element is the payload of an element node.
type Element struct {
	Tag Tag
}

// Matches supports the criteria "tag" (name), "block" and "verbatim" (bool).
func (el *Element) Matches(n *parser.Node, criterion string, value any) bool {
	switch criterion {
	case "tag":
		name, ok := value.(string)
		return ok && name == el.Tag.Name
	case "block":
		b, ok := value.(bool)
		return ok && b == el.Tag.Block
	case "verbatim":
		b, ok := value.(bool)
		return ok && b == el.Tag.Verbatim
	}
	return false
}

func (el *Element) Describe(n *parser.Node) string {
	return fmt.Sprintf("element [%s] at %d", el.Tag.Name, n.OccurredAt)
}

func (el *Element) Teardown(n *parser.Node) {}

// elementOf returns the element payload of n, or nil for roots and text.
func elementOf(n *parser.Node) *Element {
	if n == nil || n.Kind() != KindElement {
		return nil
	}
	el, _ := n.Data.(*Element)
	return el
}
