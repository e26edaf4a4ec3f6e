package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kindTestElement = KindCustom

type testElement struct {
	name      string
	teardowns *int
}

func (el *testElement) Matches(n *Node, criterion string, value any) bool {
	return criterion == "tag" && value == el.name
}

func (el *testElement) Describe(n *Node) string {
	return "element " + el.name
}

func (el *testElement) Teardown(n *Node) {
	if el.teardowns != nil {
		*el.teardowns++
	}
}

func newElement(t *testing.T, name string) *Node {
	t.Helper()
	n, err := NewNode(kindTestElement, UnknownOffset, &testElement{name: name})
	require.NoError(t, err)
	return n
}

// checkTree walks the subtree under n and verifies that parent links and
// child lists agree, no root is nested and ids are unique.
func checkTree(t *testing.T, n *Node) {
	t.Helper()
	seen := map[int64]bool{n.ID(): true}
	var walk func(p *Node)
	walk = func(p *Node) {
		for _, c := range p.Children() {
			assert.False(t, c.IsRoot(), "root nested under %d", p.ID())
			require.NotNil(t, c.Parent())
			assert.True(t, c.Parent().Equals(p), "node %d has wrong parent", c.ID())
			count := 0
			for _, sibling := range p.Children() {
				if sibling.Equals(c) {
					count++
				}
			}
			assert.Equal(t, 1, count, "node %d listed %d times", c.ID(), count)
			assert.False(t, seen[c.ID()], "duplicate id %d", c.ID())
			seen[c.ID()] = true
			walk(c)
		}
	}
	walk(n)
}

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children() {
		if c.IsText() {
			names = append(names, c.Content())
		} else {
			names = append(names, c.Describe())
		}
	}
	return names
}

func TestNode_AppendChild(t *testing.T) {
	root := NewRoot()
	a := NewText("a", 0)
	b := NewText("b", 1)

	require.NoError(t, root.AppendChild(a))
	require.NoError(t, root.AppendChild(b))

	assert.Equal(t, []string{"a", "b"}, childNames(root))
	assert.True(t, root.FirstChild().Equals(a))
	assert.True(t, root.LastChild().Equals(b))
	checkTree(t, root)
}

func TestNode_RootCannotBeChild(t *testing.T) {
	root := NewRoot()
	other := NewRoot()
	el := newElement(t, "b")
	require.NoError(t, root.AppendChild(el))

	assert.ErrorIs(t, root.AppendChild(other), ErrMalformedTree)
	assert.ErrorIs(t, root.PrependChild(other), ErrMalformedTree)
	assert.ErrorIs(t, root.InsertBefore(other, el), ErrMalformedTree)
	assert.ErrorIs(t, root.InsertAfter(other, el), ErrMalformedTree)
	assert.Nil(t, other.Parent())
	assert.Equal(t, 1, root.ChildCount())
}

func TestNode_CustomKindMustNotBeReserved(t *testing.T) {
	_, err := NewNode(KindText, 0, nil)
	assert.ErrorIs(t, err, ErrMalformedTree)
}

func TestNode_PrependAndInsert(t *testing.T) {
	root := NewRoot()
	b := NewText("b", 0)
	require.NoError(t, root.AppendChild(b))
	require.NoError(t, root.PrependChild(NewText("a", 0)))
	require.NoError(t, root.InsertAfter(NewText("c", 0), b))
	require.NoError(t, root.InsertBefore(NewText("b-", 0), b))

	assert.Equal(t, []string{"a", "b-", "b", "c"}, childNames(root))
	checkTree(t, root)
}

func TestNode_InsertWithForeignReference(t *testing.T) {
	root := NewRoot()
	el := newElement(t, "b")
	stranger := NewText("x", 0)
	require.NoError(t, root.AppendChild(el))

	n := NewText("n", 0)
	assert.ErrorIs(t, root.InsertBefore(n, stranger), ErrMalformedTree)
	assert.ErrorIs(t, root.InsertAfter(n, nil), ErrMalformedTree)
	assert.Nil(t, n.Parent())
	assert.Equal(t, 1, root.ChildCount())
}

func TestNode_MoveWithinTree(t *testing.T) {
	root := NewRoot()
	left := newElement(t, "left")
	right := newElement(t, "right")
	moving := NewText("m", 0)
	require.NoError(t, root.AppendChild(left))
	require.NoError(t, root.AppendChild(right))
	require.NoError(t, left.AppendChild(moving))

	require.NoError(t, right.AppendChild(moving))

	assert.Equal(t, 0, left.ChildCount())
	assert.Equal(t, 1, right.ChildCount())
	assert.True(t, moving.Parent().Equals(right))
	checkTree(t, root)
}

func TestNode_InsertBeforeSiblingThatShifts(t *testing.T) {
	root := NewRoot()
	a := NewText("a", 0)
	b := NewText("b", 0)
	c := NewText("c", 0)
	for _, n := range []*Node{a, b, c} {
		require.NoError(t, root.AppendChild(n))
	}

	require.NoError(t, root.InsertBefore(a, c))
	assert.Equal(t, []string{"b", "a", "c"}, childNames(root))

	require.NoError(t, root.InsertAfter(c, b))
	assert.Equal(t, []string{"b", "c", "a"}, childNames(root))
	checkTree(t, root)
}

func TestNode_CannotOwnAncestor(t *testing.T) {
	root := NewRoot()
	outer := newElement(t, "outer")
	inner := newElement(t, "inner")
	require.NoError(t, root.AppendChild(outer))
	require.NoError(t, outer.AppendChild(inner))

	assert.ErrorIs(t, inner.AppendChild(outer), ErrMalformedTree)
	assert.ErrorIs(t, inner.AppendChild(inner), ErrMalformedTree)
	checkTree(t, root)
}

func TestNode_RemoveChild(t *testing.T) {
	root := NewRoot()
	a := NewText("a", 0)
	b := NewText("b", 0)
	c := NewText("c", 0)
	for _, n := range []*Node{a, b, c} {
		require.NoError(t, root.AppendChild(n))
	}

	removed, err := root.RemoveChild(b, false)
	require.NoError(t, err)
	assert.True(t, removed.Equals(b))
	assert.Nil(t, b.Parent())
	assert.False(t, b.Destroyed())
	assert.Equal(t, "b", b.Content())
	assert.Equal(t, []string{"a", "c"}, childNames(root))

	removed, err = root.RemoveChildAt(1, true)
	require.NoError(t, err)
	assert.True(t, removed.Destroyed())
	assert.Equal(t, []string{"a"}, childNames(root))
	checkTree(t, root)
}

func TestNode_RemoveChildErrors(t *testing.T) {
	root := NewRoot()
	a := NewText("a", 0)
	require.NoError(t, root.AppendChild(a))

	_, err := root.RemoveChildAt(1, false)
	assert.ErrorIs(t, err, ErrMalformedTree)
	_, err = root.RemoveChildAt(-1, false)
	assert.ErrorIs(t, err, ErrMalformedTree)
	_, err = root.RemoveChild(NewText("x", 0), false)
	assert.ErrorIs(t, err, ErrMalformedTree)
	assert.Equal(t, 1, root.ChildCount())
}

func TestNode_DestroySubtree(t *testing.T) {
	teardowns := 0
	root := NewRoot()
	outer, err := NewNode(kindTestElement, 0, &testElement{name: "outer", teardowns: &teardowns})
	require.NoError(t, err)
	inner, err := NewNode(kindTestElement, 0, &testElement{name: "inner", teardowns: &teardowns})
	require.NoError(t, err)
	leaf := NewText("leaf", 0)
	keep := NewText("keep", 0)

	require.NoError(t, root.AppendChild(outer))
	require.NoError(t, root.AppendChild(keep))
	require.NoError(t, outer.AppendChild(inner))
	require.NoError(t, inner.AppendChild(leaf))

	require.NoError(t, Destroy(outer))

	assert.Equal(t, 2, teardowns)
	assert.True(t, outer.Destroyed())
	assert.True(t, inner.Destroyed())
	assert.True(t, leaf.Destroyed())
	assert.Nil(t, outer.Parent())
	assert.Nil(t, leaf.Parent())
	assert.Equal(t, []string{"keep"}, childNames(root))
	assert.Zero(t, root.CountMatching("tag", "inner"))
	checkTree(t, root)

	assert.ErrorIs(t, root.AppendChild(outer), ErrMalformedTree)
}

func TestNode_DestroyRoot(t *testing.T) {
	root := NewRoot()
	el := newElement(t, "b")
	require.NoError(t, root.AppendChild(el))
	require.NoError(t, el.AppendChild(NewText("x", 0)))

	require.NoError(t, Destroy(root))
	assert.True(t, root.Destroyed())
	assert.True(t, el.Destroyed())
	assert.Zero(t, root.ChildCount())
}

func TestNode_DestroyWideNode(t *testing.T) {
	const width = 200000
	teardowns := 0
	root := NewRoot()
	children := make([]*Node, 0, width)
	for i := 0; i < width; i++ {
		el, err := NewNode(kindTestElement, i, &testElement{name: "e", teardowns: &teardowns})
		require.NoError(t, err)
		require.NoError(t, root.AppendChild(el))
		children = append(children, el)
	}

	start := time.Now()
	require.NoError(t, Destroy(root))
	elapsed := time.Since(start)

	assert.Equal(t, width, teardowns)
	assert.Zero(t, root.ChildCount())
	for _, c := range children {
		assert.True(t, c.Destroyed())
		assert.Nil(t, c.Parent())
	}
	assert.Less(t, elapsed, 2*time.Second)
}

func TestNode_Equals(t *testing.T) {
	a := NewText("same", 0)
	b := NewText("same", 0)
	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))
	assert.False(t, a.Equals(nil))
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNode_FindMatchingPreorder(t *testing.T) {
	root := NewRoot()
	first := newElement(t, "b")
	nested := newElement(t, "b")
	other := newElement(t, "i")
	last := newElement(t, "b")
	require.NoError(t, root.AppendChild(first))
	require.NoError(t, first.AppendChild(other))
	require.NoError(t, other.AppendChild(nested))
	require.NoError(t, root.AppendChild(last))
	require.NoError(t, root.AppendChild(NewText("b", 0)))

	found := root.FindMatching("tag", "b")
	require.Len(t, found, 3)
	assert.True(t, found[0].Equals(first))
	assert.True(t, found[1].Equals(nested))
	assert.True(t, found[2].Equals(last))
	assert.Equal(t, len(found), root.CountMatching("tag", "b"))

	assert.Empty(t, root.FindMatching("tag", "u"))
	assert.Zero(t, root.CountMatching("other", "b"))
	assert.Len(t, first.FindMatching("tag", "b"), 1)
}

func TestNode_TextFlags(t *testing.T) {
	n := NewText("x", 0)
	n.SetFlag("zeta", 1)
	n.SetFlag("alpha", true)
	v, ok := n.Flag("zeta")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"alpha", "zeta"}, n.FlagNames())

	n.UnsetFlag("zeta")
	assert.False(t, n.HasFlag("zeta"))
	assert.False(t, n.Matches("flag", "alpha"))
}

func TestNode_TextContent(t *testing.T) {
	n := NewText("ab", 0)
	n.AppendText("cd")
	assert.Equal(t, "abcd", n.Content())
	n.SetContent("z")
	assert.Equal(t, "z", n.Content())
}

func TestNode_Dump(t *testing.T) {
	root := NewRoot()
	el := newElement(t, "b")
	text := NewText("hello\n\n   world", 0)
	text.SetFlag("verbatim", true)
	text.SetFlag("blank", false)
	require.NoError(t, root.AppendChild(el))
	require.NoError(t, el.AppendChild(text))

	out := root.Dump("  ", "\n", 0)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, fmt.Sprintf("[%d] root", root.ID()), lines[0])
	assert.Equal(t, fmt.Sprintf("  [%d] element b", el.ID()), lines[1])
	assert.Equal(t, fmt.Sprintf(`    [%d] text "hello world" [blank, verbatim]`, text.ID()), lines[2])
}

func TestNode_DumpTruncatesLongText(t *testing.T) {
	n := NewText(strings.Repeat("x", 60), 0)
	out := n.Dump("", "", 1)
	assert.Contains(t, out, strings.Repeat("x", 40)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 41))
}

func TestNode_DumpCustomWithoutBehavior(t *testing.T) {
	n, err := NewNode(KindCustom+5, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("[%d] 37", n.ID()), n.Dump("", "", 0))
}
