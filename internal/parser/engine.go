package parser

import (
	"errors"
	"fmt"
	"log/slog"
)

// Stats counts the lenient-mode repairs made during one parse.
type Stats struct {
	Recoveries   int // unmatched openers reinterpreted as text
	Downgrades   int // rejected needles kept as text
	ForcedCloses int // constructs still open at end of input
}

// Result is the outcome of a successful parse. Exactly one of Root and
// Output is set: Output when the grammar materialized the tree, Root
// otherwise. The caller owns Root.
type Result struct {
	Root   *Node
	Output any
	Stats  Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrict makes every recoverable condition fatal.
func WithStrict(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine scans text for the needles of its grammar and builds a tree of
// nodes. An engine can run any number of sequential parses but must not be
// shared between goroutines.
type Engine struct {
	grammar Grammar
	strict  bool
	logger  *slog.Logger

	text    string
	cursor  int
	stack   []*Node
	status  int
	needles []string
	matches map[string]match

	prefilters  []Filter
	postfilters []Filter

	parsing   bool
	recovered bool
	root      *Node
	discarded []*Node
	output    any
	hasOutput bool
	stats     Stats
}

// New creates an engine driven by g.
func New(g Grammar, opts ...Option) *Engine {
	e := &Engine{
		grammar: g,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse filters raw, scans it and returns the tree or the grammar's output.
// On error no tree is returned and all internal state is released.
func (e *Engine) Parse(raw string) (*Result, error) {
	if e.parsing {
		return nil, newParseError(UnknownOffset, ErrReentrant, "parse called from within a parse")
	}
	e.parsing = true
	defer func() { e.parsing = false }()

	e.reset(e.applyFilters(e.prefilters, raw))

	if err := e.grammar.Init(e); err != nil {
		return nil, e.abort(e.hookError("init", err))
	}
	if err := e.scan(); err != nil {
		return nil, e.abort(err)
	}
	if err := e.grammar.CloseRemainingBlocks(e); err != nil {
		return nil, e.abort(e.hookError("close remaining blocks", err))
	}
	if err := e.grammar.ModifyTree(e); err != nil {
		return nil, e.abort(e.hookError("modify tree", err))
	}
	if err := e.grammar.OutputTree(e); err != nil {
		return nil, e.abort(e.hookError("output tree", err))
	}

	res := &Result{Stats: e.stats}
	if e.hasOutput {
		res.Output = e.output
	} else {
		res.Root = e.root
		e.root = nil
	}
	e.release()
	return res, nil
}

func (e *Engine) reset(text string) {
	if e.root != nil {
		e.destroy(e.root)
	}
	e.text = text
	e.cursor = 0
	e.status = 0
	e.needles = nil
	e.matches = make(map[string]match)
	e.recovered = false
	e.discarded = nil
	e.output = nil
	e.hasOutput = false
	e.stats = Stats{}
	e.root = NewRoot()
	e.stack = []*Node{e.root}
}

// release destroys everything the engine still owns.
func (e *Engine) release() {
	for _, n := range e.discarded {
		e.destroy(n)
	}
	if e.root != nil {
		e.destroy(e.root)
	}
	e.root = nil
	e.discarded = nil
	e.stack = nil
	e.needles = nil
	e.matches = nil
	e.status = 0
	e.output = nil
	e.hasOutput = false
}

func (e *Engine) destroy(n *Node) {
	if err := Destroy(n); err != nil {
		e.logger.Debug("destroy failed", "node", n.ID(), "error", err)
	}
}

func (e *Engine) abort(err error) error {
	e.logger.Debug("parse aborted", "offset", e.cursor, "error", err)
	e.release()
	return err
}

// hookError keeps engine errors raised inside a hook intact and tags
// anything else as a hook failure.
func (e *Engine) hookError(hook string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return newParseError(e.cursor, fmt.Errorf("%w: %w", ErrHook, err), "%s", hook)
}

func (e *Engine) Strict() bool { return e.strict }
func (e *Engine) Logger() *slog.Logger { return e.logger }
func (e *Engine) Parsing() bool { return e.parsing }

// Text is the filtered input of the current parse.
func (e *Engine) Text() string { return e.text }

// Cursor is the current scan offset into Text.
func (e *Engine) Cursor() int { return e.cursor }

func (e *Engine) Status() int { return e.status }

// SetStatus switches the scan context. The needles are cleared and the
// grammar installs the ones for the new status.
func (e *Engine) SetStatus(status int) error {
	e.status = status
	e.needles = nil
	return e.grammar.SetStatus(e, status)
}

// Needles returns the strings searched for at the current status.
func (e *Engine) Needles() []string {
	out := make([]string, len(e.needles))
	copy(out, e.needles)
	return out
}

// SetNeedles replaces the needle list. Order is significant: when two
// needles match at the same offset the earlier one wins. Empty strings are
// ignored.
func (e *Engine) SetNeedles(needles ...string) {
	e.needles = e.needles[:0]
	for _, n := range needles {
		if n != "" {
			e.needles = append(e.needles, n)
		}
	}
}

// Root is the tree under construction.
func (e *Engine) Root() *Node { return e.root }

// Top is the innermost open node.
func (e *Engine) Top() *Node {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

// Depth is the number of open nodes, root included.
func (e *Engine) Depth() int { return len(e.stack) }

// Push appends n to the innermost open node and opens it.
func (e *Engine) Push(n *Node) error {
	top := e.Top()
	if top == nil {
		return fmt.Errorf("%w: no open node", ErrMalformedTree)
	}
	if err := top.AppendChild(n); err != nil {
		return err
	}
	e.stack = append(e.stack, n)
	return nil
}

// Pop closes the innermost open node. The root can't be popped.
func (e *Engine) Pop() (*Node, error) {
	if len(e.stack) < 2 {
		return nil, fmt.Errorf("%w: cannot close the root", ErrMalformedTree)
	}
	top := e.stack[len(e.stack)-1]
	e.stack[len(e.stack)-1] = nil
	e.stack = e.stack[:len(e.stack)-1]
	return top, nil
}

// AppendText adds literal text to the innermost open node.
func (e *Engine) AppendText(s string) error {
	return e.appendTextAt(s, e.cursor)
}

func (e *Engine) appendTextAt(s string, offset int) error {
	if s == "" {
		return nil
	}
	top := e.Top()
	if top == nil {
		return fmt.Errorf("%w: no open node", ErrMalformedTree)
	}
	return top.AppendToLastText(s, offset)
}

// Discarded returns the constructs detached by recovery during the current
// parse. They are destroyed when the parse ends.
func (e *Engine) Discarded() []*Node {
	out := make([]*Node, len(e.discarded))
	copy(out, e.discarded)
	return out
}

// SetOutput materializes the parse result. Called from OutputTree, it makes
// Parse return v and destroy the tree.
func (e *Engine) SetOutput(v any) {
	e.output = v
	e.hasOutput = true
}

// CloseRemaining is the default policy for constructs left open at the end
// of input: fatal in strict mode, otherwise they are simply closed.
func (e *Engine) CloseRemaining() error {
	open := len(e.stack) - 1
	if open <= 0 {
		return nil
	}
	if e.strict {
		return newParseError(e.cursor, ErrStrictMode, "%d construct(s) still open at end of input", open)
	}
	for len(e.stack) > 1 {
		n, _ := e.Pop()
		e.stats.ForcedCloses++
		e.logger.Debug("closed construct at end of input", "node", n.ID(), "occurred_at", n.OccurredAt)
	}
	return nil
}
