package parser

// ReparseAfterCurrentBlock gives up on the innermost open construct: it is
// detached from the tree, the byte that opened it is kept as literal text,
// and scanning resumes right after that byte in status 0.
//
// The scan loop calls it when the input ends inside a construct; a grammar
// may call it from HandleStatus. The detached node stays readable through
// Discarded until the parse ends.
func (e *Engine) ReparseAfterCurrentBlock() error {
	if len(e.stack) < 2 {
		return newParseError(e.cursor, ErrRecoveryImpossible, "no open construct to reparse")
	}
	top := e.stack[len(e.stack)-1]
	if parent := top.Parent(); parent != nil {
		if _, err := parent.RemoveChild(top, false); err != nil {
			return err
		}
	}
	e.discarded = append(e.discarded, top)
	if _, err := e.Pop(); err != nil {
		return err
	}

	start := top.OccurredAt
	if start < 0 || start >= len(e.text) {
		return newParseError(e.cursor, ErrRecoveryImpossible, "node %d has no source position", top.ID())
	}

	if err := e.SetStatus(0); err != nil {
		return err
	}
	if err := e.appendTextAt(e.text[start:start+1], start); err != nil {
		return err
	}

	e.logger.Debug("reparsing unmatched construct as text", "node", top.ID(), "occurred_at", start, "resume", start+1)
	e.cursor = start + 1
	e.recovered = true
	e.stats.Recoveries++
	return nil
}
