package parser

import (
	"fmt"
	"strings"
)

// scan runs the search loop until the input is consumed.
func (e *Engine) scan() error {
	for {
		e.recovered = false

		offset, needle, found := e.search()
		if !found {
			if e.status == 0 {
				if err := e.AppendText(e.text[e.cursor:]); err != nil {
					return err
				}
				e.cursor = len(e.text)
				return nil
			}
			if e.strict {
				return newParseError(e.cursor, ErrStrictMode, "end of input inside an open construct (status %d)", e.status)
			}
			if err := e.ReparseAfterCurrentBlock(); err != nil {
				return err
			}
			continue
		}

		if err := e.AppendText(e.text[e.cursor:offset]); err != nil {
			return err
		}
		e.cursor = offset

		if err := e.grammar.HandleStatus(e, e.status, needle); err != nil {
			if e.strict {
				return newParseError(offset, fmt.Errorf("%w: %w", ErrStrictMode, err), "needle %q rejected", needle)
			}
			e.stats.Downgrades++
			e.logger.Debug("needle kept as text", "offset", offset, "needle", needle, "reason", err)
			if err := e.appendTextAt(e.text[offset:offset+1], offset); err != nil {
				return err
			}
			e.cursor = offset + 1
			continue
		}
		if e.recovered {
			continue
		}
		e.cursor += len(needle)
	}
}

// match remembers where a needle next occurs: at is the first offset at or
// after from, or -1 when the needle does not occur there.
type match struct {
	from int
	at   int
}

// search finds the earliest needle at or after the cursor. Needles starting
// at the same offset are resolved in registration order.
func (e *Engine) search() (offset int, needle string, found bool) {
	best := -1
	for _, n := range e.needles {
		if i := e.nextMatch(n); i >= 0 && (best < 0 || i < best) {
			best = i
			needle = n
		}
	}
	if best < 0 {
		return 0, "", false
	}
	return best, needle, true
}

// nextMatch returns the offset of the first occurrence of n at or after the
// cursor. Results stay valid while the cursor moves forward without passing
// them, so each needle is searched for about once per occurrence.
func (e *Engine) nextMatch(n string) int {
	if m, ok := e.matches[n]; ok && e.cursor >= m.from && (m.at < 0 || m.at >= e.cursor) {
		return m.at
	}
	at := strings.Index(e.text[e.cursor:], n)
	if at >= 0 {
		at += e.cursor
	}
	e.matches[n] = match{from: e.cursor, at: at}
	return at
}
