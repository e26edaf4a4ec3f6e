package parser

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Kind identifies the variant of a Node. Codes below KindCustom are reserved
// for the engine; grammars define their own kinds starting at KindCustom.
type Kind int

const (
	KindRoot   Kind = 0
	KindText   Kind = 1
	KindCustom Kind = 32
)

// UnknownOffset marks a node whose source position was never recorded.
const UnknownOffset = -1

var lastNodeID atomic.Int64

func nextNodeID() int64 {
	return lastNodeID.Add(1)
}

// Behavior is the per-variant capability set of a custom node. Grammars
// attach one to every node they create with NewNode.
type Behavior interface {
	// Matches reports whether the node satisfies criterion=value.
	Matches(n *Node, criterion string, value any) bool
	// Describe returns a one-line description for Dump.
	Describe(n *Node) string
	// Teardown runs after all children of a destroyed node are gone.
	Teardown(n *Node)
}

// Node is an element of a parse tree. Structural edits must go through the
// methods below so that parent and children always agree.
type Node struct {
	id       int64
	kind     Kind
	parent   *Node
	children []*Node

	// OccurredAt is the byte offset in the filtered input where the node
	// was produced, or UnknownOffset.
	OccurredAt int

	// Data is the grammar payload of a custom node.
	Data Behavior

	// text variant
	content []byte
	flags   map[string]any

	destroyed bool
}

// NewRoot creates the sentinel node of a tree. A root can own children but
// can never become a child itself.
func NewRoot() *Node {
	return &Node{id: nextNodeID(), kind: KindRoot, OccurredAt: UnknownOffset}
}

// NewNode creates a grammar-defined node. kind must be at least KindCustom.
func NewNode(kind Kind, occurredAt int, data Behavior) (*Node, error) {
	if kind < KindCustom {
		return nil, fmt.Errorf("%w: kind %d is reserved", ErrMalformedTree, kind)
	}
	return &Node{id: nextNodeID(), kind: kind, OccurredAt: occurredAt, Data: data}, nil
}

func (n *Node) ID() int64 { return n.id }
func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) IsRoot() bool { return n.kind == KindRoot }
func (n *Node) IsText() bool { return n.kind == KindText }
func (n *Node) Destroyed() bool { return n.destroyed }
func (n *Node) ChildCount() int { return len(n.children) }
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the child list; editing it does not touch the tree.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// Equals compares identity, never content.
func (n *Node) Equals(other *Node) bool {
	return other != nil && n.id == other.id
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c.Equals(child) {
			return i
		}
	}
	return -1
}

// checkInsertable validates an insertion of child under n before anything
// is mutated.
func (n *Node) checkInsertable(child *Node) error {
	if child == nil {
		return fmt.Errorf("%w: nil node", ErrMalformedTree)
	}
	if child.IsRoot() {
		return fmt.Errorf("%w: root node %d cannot become a child", ErrMalformedTree, child.id)
	}
	if child.Equals(n) {
		return fmt.Errorf("%w: node %d cannot own itself", ErrMalformedTree, n.id)
	}
	for p := n.parent; p != nil; p = p.parent {
		if p.Equals(child) {
			return fmt.Errorf("%w: node %d is an ancestor of %d", ErrMalformedTree, child.id, n.id)
		}
	}
	if child.destroyed {
		return fmt.Errorf("%w: node %d was destroyed", ErrMalformedTree, child.id)
	}
	return nil
}

// detach removes child from its current parent, if any.
func detach(child *Node) error {
	if child.parent == nil {
		return nil
	}
	_, err := child.parent.RemoveChild(child, false)
	return err
}

func (n *Node) insertAt(i int, child *Node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// AppendChild adds child as the last child of n, moving it out of its
// previous parent first.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkInsertable(child); err != nil {
		return err
	}
	if err := detach(child); err != nil {
		return err
	}
	n.insertAt(len(n.children), child)
	return nil
}

// PrependChild adds child as the first child of n.
func (n *Node) PrependChild(child *Node) error {
	if err := n.checkInsertable(child); err != nil {
		return err
	}
	if err := detach(child); err != nil {
		return err
	}
	n.insertAt(0, child)
	return nil
}

// InsertBefore places child directly before ref, which must be a child of n.
func (n *Node) InsertBefore(child, ref *Node) error {
	return n.insertRelative(child, ref, 0)
}

// InsertAfter places child directly after ref, which must be a child of n.
func (n *Node) InsertAfter(child, ref *Node) error {
	return n.insertRelative(child, ref, 1)
}

func (n *Node) insertRelative(child, ref *Node, shift int) error {
	if err := n.checkInsertable(child); err != nil {
		return err
	}
	if ref == nil || n.indexOf(ref) < 0 {
		return fmt.Errorf("%w: reference node is not a child of %d", ErrMalformedTree, n.id)
	}
	if child.Equals(ref) {
		return nil
	}
	if err := detach(child); err != nil {
		return err
	}
	// ref may have shifted if child was a sibling before it.
	n.insertAt(n.indexOf(ref)+shift, child)
	return nil
}

// RemoveChild detaches child from n and, when destroy is set, destroys the
// detached subtree. It returns the detached node.
func (n *Node) RemoveChild(child *Node, destroy bool) (*Node, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: nil node", ErrMalformedTree)
	}
	i := n.indexOf(child)
	if i < 0 {
		return nil, fmt.Errorf("%w: node %d is not a child of %d", ErrMalformedTree, child.id, n.id)
	}
	return n.RemoveChildAt(i, destroy)
}

// RemoveChildAt is RemoveChild addressed by index.
func (n *Node) RemoveChildAt(i int, destroy bool) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrMalformedTree, i, len(n.children))
	}
	child := n.children[i]
	if child.parent == nil || !child.parent.Equals(n) {
		return nil, fmt.Errorf("%w: node %d does not record %d as its parent", ErrMalformedTree, child.id, n.id)
	}

	child.parent = nil
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]

	if destroy {
		if err := Destroy(child); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// Destroy tears down n and its whole subtree. An attached node is removed by
// its parent; a detached one loses its children first, innermost first, and
// then runs its teardown hook.
func Destroy(n *Node) error {
	if n == nil || n.destroyed {
		return nil
	}
	if n.parent != nil {
		_, err := n.parent.RemoveChild(n, true)
		return err
	}
	children := n.children
	n.children = nil
	for i, c := range children {
		if c.parent == nil || !c.parent.Equals(n) {
			n.children = children[i:]
			return fmt.Errorf("%w: node %d does not record %d as its parent", ErrMalformedTree, c.id, n.id)
		}
		c.parent = nil
		if err := Destroy(c); err != nil {
			n.children = children[i+1:]
			return err
		}
	}
	if n.Data != nil {
		n.Data.Teardown(n)
	}
	n.content = nil
	n.flags = nil
	n.destroyed = true
	return nil
}

// Matches reports whether n satisfies criterion=value. Only custom nodes
// with a Behavior can match anything.
func (n *Node) Matches(criterion string, value any) bool {
	if n.Data == nil {
		return false
	}
	return n.Data.Matches(n, criterion, value)
}

// FindMatching returns the descendants of n matching criterion=value in
// preorder. n itself is not tested.
func (n *Node) FindMatching(criterion string, value any) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c.Matches(criterion, value) {
			out = append(out, c)
		}
	})
	return out
}

// CountMatching is len(FindMatching) without building the slice.
func (n *Node) CountMatching(criterion string, value any) int {
	count := 0
	n.walk(func(c *Node) {
		if c.Matches(criterion, value) {
			count++
		}
	})
	return count
}

func (n *Node) walk(visit func(*Node)) {
	for _, c := range n.children {
		visit(c)
		c.walk(visit)
	}
}

// Dump renders the subtree as one line per node for debugging.
func (n *Node) Dump(indentUnit, lineSep string, startLevel int) string {
	var b strings.Builder
	n.dump(&b, indentUnit, lineSep, startLevel)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, indentUnit, lineSep string, level int) {
	b.WriteString(strings.Repeat(indentUnit, level))
	fmt.Fprintf(b, "[%d] %s%s", n.id, n.Describe(), lineSep)
	for _, c := range n.children {
		c.dump(b, indentUnit, lineSep, level+1)
	}
}

// Describe is the one-line, variant-specific description used by Dump.
func (n *Node) Describe() string {
	switch {
	case n.kind == KindRoot:
		return "root"
	case n.kind == KindText:
		return n.describeText()
	case n.Data != nil:
		return n.Data.Describe(n)
	default:
		return fmt.Sprintf("%d", int(n.kind))
	}
}
