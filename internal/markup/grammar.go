package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chriserin/strparse/internal/parser"
)

const (
	statusDefault  = 0
	statusElement  = 1
	statusVerbatim = 2
)

var (
	ErrTooDeep       = errors.New("elements nested too deeply")
	ErrBlockInInline = errors.New("block element inside inline element")
)

// Options configures a Grammar.
type Options struct {
	Tags     []Tag
	MaxDepth int  // 0 means unlimited
	Render   bool // produce HTML instead of returning the tree
}

// Grammar is a bracket tag markup: [b]bold[/b], [quote]...[/quote].
type Grammar struct {
	parser.BaseGrammar

	tags     []Tag
	openers  map[string]Tag
	closers  map[string]Tag
	maxDepth int
	render   bool

	nodes int
}

func New(opts Options) (*Grammar, error) {
	tags := opts.Tags
	if len(tags) == 0 {
		tags = DefaultTags
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", opts.MaxDepth)
	}

	g := &Grammar{
		openers:  make(map[string]Tag, len(tags)),
		closers:  make(map[string]Tag, len(tags)),
		maxDepth: opts.MaxDepth,
		render:   opts.Render,
	}
	for _, t := range tags {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := g.openers[t.opener()]; dup {
			return nil, fmt.Errorf("tag %q defined twice", t.Name)
		}
		g.tags = append(g.tags, t)
		g.openers[t.opener()] = t
		g.closers[t.closer()] = t
	}
	return g, nil
}

// NewEngine creates an engine for g with the standard filters installed.
func NewEngine(g *Grammar, opts ...parser.Option) (*parser.Engine, error) {
	e := parser.New(g, opts...)
	if err := e.AddFilter(parser.FilterPre, NormalizeNewlines); err != nil {
		return nil, err
	}
	if err := e.AddFilter(parser.FilterPost, NewlinesToBreaks); err != nil {
		return nil, err
	}
	return e, nil
}

func (g *Grammar) Tags() []Tag {
	out := make([]Tag, len(g.tags))
	copy(out, g.tags)
	return out
}

func (g *Grammar) Init(e *parser.Engine) error {
	g.nodes = 0
	return e.SetStatus(statusDefault)
}

// SetStatus derives the needles from the innermost open element. A recovery
// asks for status 0 while outer elements may still be open; the status of
// the innermost one is restored so it is recovered in turn if never closed.
func (g *Grammar) SetStatus(e *parser.Engine, status int) error {
	if want := statusFor(e.Top()); status != want {
		return e.SetStatus(want)
	}

	el := elementOf(e.Top())
	if el != nil && el.Tag.Verbatim {
		e.SetNeedles(el.Tag.closer())
		return nil
	}

	needles := make([]string, 0, len(g.tags)+1)
	if el != nil {
		needles = append(needles, el.Tag.closer())
	}
	for _, t := range g.tags {
		needles = append(needles, t.opener())
	}
	e.SetNeedles(needles...)
	return nil
}

func (g *Grammar) HandleStatus(e *parser.Engine, status int, needle string) error {
	if t, ok := g.closers[needle]; ok {
		return g.close(e, t)
	}
	if t, ok := g.openers[needle]; ok {
		return g.open(e, t)
	}
	return fmt.Errorf("unexpected needle %q", needle)
}

func (g *Grammar) open(e *parser.Engine, t Tag) error {
	if g.maxDepth > 0 && e.Depth()-1 >= g.maxDepth {
		return fmt.Errorf("%w: [%s] at depth %d", ErrTooDeep, t.Name, e.Depth())
	}
	if parent := elementOf(e.Top()); t.Block && parent != nil && !parent.Tag.Block {
		return fmt.Errorf("%w: [%s] inside [%s]", ErrBlockInInline, t.Name, parent.Tag.Name)
	}

	n, err := parser.NewNode(KindElement, e.Cursor(), &Element{Tag: t})
	if err != nil {
		return err
	}
	if err := e.Push(n); err != nil {
		return err
	}
	return e.SetStatus(statusFor(n))
}

func (g *Grammar) close(e *parser.Engine, t Tag) error {
	if el := elementOf(e.Top()); el == nil || el.Tag.Name != t.Name {
		return fmt.Errorf("[/%s] does not close the innermost element", t.Name)
	}
	if _, err := e.Pop(); err != nil {
		return err
	}
	return e.SetStatus(statusFor(e.Top()))
}

func statusFor(n *parser.Node) int {
	el := elementOf(n)
	switch {
	case el == nil:
		return statusDefault
	case el.Tag.Verbatim:
		return statusVerbatim
	default:
		return statusElement
	}
}

// ModifyTree drops empty elements, trims the newline that follows a block
// tag and flags text nodes for the renderer.
func (g *Grammar) ModifyTree(e *parser.Engine) error {
	if err := tidy(e.Root(), false); err != nil {
		return err
	}
	g.nodes = countNodes(e.Root())
	return nil
}

// NodeCount is the size of the last tree built, root included.
func (g *Grammar) NodeCount() int {
	return g.nodes
}

func countNodes(n *parser.Node) int {
	count := 1
	for _, c := range n.Children() {
		count += countNodes(c)
	}
	return count
}

func tidy(n *parser.Node, verbatim bool) error {
	block := false
	if el := elementOf(n); el != nil {
		verbatim = verbatim || el.Tag.Verbatim
		block = el.Tag.Block
	}

	for i := 0; i < n.ChildCount(); {
		c := n.Child(i)
		if c.IsText() {
			if afterBlock(n, i, block) && strings.HasPrefix(c.Content(), "\n") {
				c.SetContent(strings.TrimPrefix(c.Content(), "\n"))
				c.SetFlag("trimmed_newline", true)
			}
			if verbatim {
				c.SetFlag("verbatim", true)
			}
			if c.Content() == "" {
				if _, err := n.RemoveChildAt(i, true); err != nil {
					return err
				}
				continue
			}
			if strings.TrimSpace(c.Content()) == "" {
				c.SetFlag("blank", true)
			}
			i++
			continue
		}

		if err := tidy(c, verbatim); err != nil {
			return err
		}
		if c.ChildCount() == 0 {
			if err := parser.Destroy(c); err != nil {
				return err
			}
			continue
		}
		i++
	}
	return nil
}

// afterBlock reports whether the child at i directly follows a block opener
// or a block element.
func afterBlock(parent *parser.Node, i int, parentIsBlock bool) bool {
	if i == 0 {
		return parentIsBlock
	}
	el := elementOf(parent.Child(i - 1))
	return el != nil && el.Tag.Block
}

func (g *Grammar) OutputTree(e *parser.Engine) error {
	if !g.render {
		return nil
	}
	e.SetOutput(RenderHTML(e.Root(), e.ApplyPostfilters))
	return nil
}
