package parser

import (
	"fmt"
	"sort"
	"strings"
)

const describeTextLimit = 40

// NewText creates a text leaf holding s.
func NewText(s string, occurredAt int) *Node {
	n := &Node{id: nextNodeID(), kind: KindText, OccurredAt: occurredAt}
	n.content = append(n.content, s...)
	return n
}

// Content returns the literal text of a text node.
func (n *Node) Content() string {
	return string(n.content)
}

// AppendText adds s to the end of a text node.
func (n *Node) AppendText(s string) {
	n.content = append(n.content, s...)
}

// SetContent replaces the whole content of a text node.
func (n *Node) SetContent(s string) {
	n.content = append(n.content[:0], s...)
}

// SetFlag stores a grammar-defined value under name.
func (n *Node) SetFlag(name string, value any) {
	if n.flags == nil {
		n.flags = make(map[string]any)
	}
	n.flags[name] = value
}

// Flag returns the value stored under name.
func (n *Node) Flag(name string) (any, bool) {
	v, ok := n.flags[name]
	return v, ok
}

func (n *Node) HasFlag(name string) bool {
	_, ok := n.flags[name]
	return ok
}

func (n *Node) UnsetFlag(name string) {
	delete(n.flags, name)
}

// FlagNames returns the flag names in sorted order.
func (n *Node) FlagNames() []string {
	names := make([]string, 0, len(n.flags))
	for name := range n.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppendToLastText appends s to the last child of n when that child is a
// text node, and otherwise adds a new text child.
func (n *Node) AppendToLastText(s string, occurredAt int) error {
	if last := n.LastChild(); last != nil && last.IsText() {
		last.AppendText(s)
		return nil
	}
	return n.AppendChild(NewText(s, occurredAt))
}

func (n *Node) describeText() string {
	preview := strings.Join(strings.Fields(string(n.content)), " ")
	if len(preview) > describeTextLimit {
		preview = preview[:describeTextLimit] + "..."
	}
	desc := fmt.Sprintf("text %q", preview)
	if names := n.FlagNames(); len(names) > 0 {
		desc += " [" + strings.Join(names, ", ") + "]"
	}
	return desc
}
