package parser

import (
	"errors"
	"fmt"
)

// Filter transforms text before scanning (pre) or during output (post).
// A filter that returns ok=false leaves the text unchanged.
type Filter func(text string) (out string, ok bool)

type FilterKind int

const (
	FilterPre FilterKind = iota
	FilterPost
	FilterAll
)

var errNilFilter = errors.New("filter must not be nil")

// AddFilter registers f; filters run in registration order.
func (e *Engine) AddFilter(kind FilterKind, f Filter) error {
	if f == nil {
		return errNilFilter
	}
	switch kind {
	case FilterPre:
		e.prefilters = append(e.prefilters, f)
	case FilterPost:
		e.postfilters = append(e.postfilters, f)
	default:
		return fmt.Errorf("cannot add a filter of kind %d", kind)
	}
	return nil
}

// ClearFilters removes the filters of kind, or all of them for FilterAll.
func (e *Engine) ClearFilters(kind FilterKind) {
	if kind == FilterPre || kind == FilterAll {
		e.prefilters = nil
	}
	if kind == FilterPost || kind == FilterAll {
		e.postfilters = nil
	}
}

// ApplyPostfilters runs the postfilter pipeline over s. The engine never
// calls it; output hooks do.
func (e *Engine) ApplyPostfilters(s string) string {
	return e.applyFilters(e.postfilters, s)
}

func (e *Engine) applyFilters(filters []Filter, s string) string {
	for _, f := range filters {
		if out, ok := f(s); ok {
			s = out
		}
	}
	return s
}
