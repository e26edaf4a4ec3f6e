package parser

// Grammar is the set of hooks a concrete language implements on top of the
// engine. Every hook receives the engine so it can inspect and drive the scan.
type Grammar interface {
	// Init runs once per parse, before scanning. It must put the engine in
	// status 0 with the initial needles.
	Init(e *Engine) error
	// SetStatus is called by Engine.SetStatus after the needles have been
	// cleared, and installs the needles for status.
	SetStatus(e *Engine, status int) error
	// HandleStatus is the transition function, called with the cursor on
	// the matched needle.
	HandleStatus(e *Engine, status int, needle string) error
	// ModifyTree post-processes the completed tree.
	ModifyTree(e *Engine) error
	// OutputTree may materialize the tree with Engine.SetOutput.
	OutputTree(e *Engine) error
	// CloseRemainingBlocks decides what happens to constructs still open
	// at the end of input.
	CloseRemainingBlocks(e *Engine) error
}

// BaseGrammar provides the default behavior of the optional hooks. Grammars
// embed it and override what they need.
type BaseGrammar struct{}

func (BaseGrammar) Init(e *Engine) error {
	return e.SetStatus(0)
}

func (BaseGrammar) SetStatus(e *Engine, status int) error { return nil }

func (BaseGrammar) ModifyTree(e *Engine) error { return nil }

func (BaseGrammar) OutputTree(e *Engine) error { return nil }

func (BaseGrammar) CloseRemainingBlocks(e *Engine) error {
	return e.CloseRemaining()
}
