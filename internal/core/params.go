package core

import (
	"database/sql/driver"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/coregx/dbx/internal/dialects"
)

// Params represents named parameter values for statement binding.
// Named parameters are written in SQL as :name; positional markers as ?.
//
// Example:
//
//	db.NewCommand("SELECT * FROM {{user}} WHERE [[id]]=:id AND [[status]]=:status").
//	    BindAll(dbx.Params{"id": 1, "status": "active"})
type Params map[string]any

// paramSet is an ordered name-to-value mapping. Names are unique; insertion
// order is preserved for raw-SQL reconstruction and positional fallback.
type paramSet struct {
	names  []string
	values map[string]any
}

func newParamSet() *paramSet {
	return &paramSet{values: make(map[string]any)}
}

// bind adds or replaces a named value. A leading ':' is stripped. Rebinding
// an existing name keeps its original position.
func (p *paramSet) bind(name string, value any) {
	name = strings.TrimPrefix(name, ":")
	if _, exists := p.values[name]; !exists {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// merge combines another parameter map into this set, later values
// overriding earlier ones on name collision. Map iteration order is not
// deterministic, so keys are bound in sorted order.
func (p *paramSet) merge(other Params) {
	for _, name := range sortedKeys(other) {
		p.bind(name, other[name])
	}
}

func (p *paramSet) get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *paramSet) len() int {
	return len(p.names)
}

// snapshot returns a copy of the bound parameters for introspection.
func (p *paramSet) snapshot() Params {
	out := make(Params, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// sortedKeys returns map keys in sorted order for deterministic SQL generation.
func sortedKeys(m Params) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// paramSlot identifies one placeholder occurrence within a statement, in
// textual order. An empty name marks a positional '?' marker.
type paramSlot struct {
	name string
}

// rewritePlaceholders converts :name and ? markers into dialect placeholders
// and returns the rewritten SQL with the ordered slot list. Markers inside
// literals and comments, and PostgreSQL :: casts, are left alone.
func rewritePlaceholders(sql string, d dialects.Dialect) (string, []paramSlot) {
	var b strings.Builder
	b.Grow(len(sql))

	var slots []paramSlot
	s := newSQLScanner(sql)
	last := 0
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		switch sql[s.i] {
		case '?':
			b.WriteString(sql[last:s.i])
			slots = append(slots, paramSlot{})
			b.WriteString(d.Placeholder(len(slots)))
			s.i++
			last = s.i
			continue
		case ':':
			if s.peek(1) == ':' {
				s.i += 2
				continue
			}
			if isIdentStart(s.peek(1)) {
				j := s.i + 1
				for j < s.n && isIdentChar(sql[j]) {
					j++
				}
				b.WriteString(sql[last:s.i])
				slots = append(slots, paramSlot{name: sql[s.i+1 : j]})
				b.WriteString(d.Placeholder(len(slots)))
				s.i = j
				last = s.i
				continue
			}
		}
		s.i++
	}
	b.WriteString(sql[last:])
	return b.String(), slots
}

// posQueue feeds positional '?' markers from caller-supplied values, in
// order, across all statements of a script.
type posQueue struct {
	values []any
	next   int
}

func (q *posQueue) take() (any, bool) {
	if q.next >= len(q.values) {
		return nil, false
	}
	v := q.values[q.next]
	q.next++
	return v, true
}

// resolveParams produces the driver argument list for one statement's slots.
// Named slots draw from the set; positional slots consume the queue in order.
// A slot without a bound value, or a non-scalar value, is a binding error.
func resolveParams(slots []paramSlot, set *paramSet, pos *posQueue) ([]any, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(slots))
	for _, slot := range slots {
		var value any
		if slot.name == "" {
			v, ok := pos.take()
			if !ok {
				return nil, invalidArgf("missing value for positional parameter %d", len(args)+1)
			}
			value = v
		} else {
			v, ok := set.get(slot.name)
			if !ok {
				return nil, invalidArgf("missing parameter: %s", slot.name)
			}
			value = v
		}
		if err := checkScalar(value); err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	return args, nil
}

// checkScalar rejects values the driver cannot bind. Values pass through
// typed and uncoerced; arrays, slices and maps are binding errors
// ([]byte and driver.Valuer implementations excepted).
func checkScalar(v any) error {
	switch v.(type) {
	case nil, bool, string, []byte, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	}
	if _, ok := v.(driver.Valuer); ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		switch rv.Elem().Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return nil
		}
		return invalidArgf("cannot bind non-scalar value of type %T", v)
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return invalidArgf("cannot bind non-scalar value of type %T", v)
	default:
		return nil
	}
}

// expandQueryRefs inlines *Expr values bound by name as parenthesized
// sub-expressions and merges their embedded parameters into the set. The
// spliced SQL may reference further named parameters, so expansion repeats
// until stable, up to a fixed nesting depth.
func expandQueryRefs(sql string, set *paramSet) (string, error) {
	const maxDepth = 8

	for depth := 0; depth < maxDepth; depth++ {
		rewritten, changed, err := expandQueryRefsOnce(sql, set)
		if err != nil {
			return "", err
		}
		if !changed {
			return rewritten, nil
		}
		sql = rewritten
	}
	return "", invalidArgf("query expression nesting exceeds %d levels", maxDepth)
}

func expandQueryRefsOnce(sql string, set *paramSet) (string, bool, error) {
	var b strings.Builder
	b.Grow(len(sql))

	changed := false
	s := newSQLScanner(sql)
	last := 0
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		if sql[s.i] == ':' {
			if s.peek(1) == ':' {
				s.i += 2
				continue
			}
			if isIdentStart(s.peek(1)) {
				j := s.i + 1
				for j < s.n && isIdentChar(sql[j]) {
					j++
				}
				name := sql[s.i+1 : j]
				if expr, ok := set.values[name].(*Expr); ok {
					b.WriteString(sql[last:s.i])
					b.WriteString("(" + expr.SQL + ")")
					set.merge(expr.Params)
					delete(set.values, name)
					changed = true
					s.i = j
					last = s.i
					continue
				}
				s.i = j
				continue
			}
		}
		s.i++
	}
	b.WriteString(sql[last:])
	return b.String(), changed, nil
}

// interpolate substitutes parameter values as literals into sql for
// diagnostics only. Placeholders that cannot be resolved are left in
// template form.
func interpolate(sql string, set *paramSet, pos *posQueue, quoter *Quoter) string {
	var b strings.Builder
	b.Grow(len(sql))

	s := newSQLScanner(sql)
	last := 0
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		switch sql[s.i] {
		case '?':
			if v, ok := pos.take(); ok {
				if lit, err := quoter.QuoteValue(v); err == nil {
					b.WriteString(sql[last:s.i])
					b.WriteString(lit)
					s.i++
					last = s.i
					continue
				}
			}
			s.i++
			continue
		case ':':
			if s.peek(1) == ':' {
				s.i += 2
				continue
			}
			if isIdentStart(s.peek(1)) {
				j := s.i + 1
				for j < s.n && isIdentChar(sql[j]) {
					j++
				}
				if v, ok := set.get(sql[s.i+1 : j]); ok {
					if lit, err := quoter.QuoteValue(v); err == nil {
						b.WriteString(sql[last:s.i])
						b.WriteString(lit)
						s.i = j
						last = s.i
						continue
					}
				}
				s.i = j
				continue
			}
		}
		s.i++
	}
	b.WriteString(sql[last:])
	return b.String()
}

// containsPlaceholders reports whether sql has any :name or ? markers
// outside literals and comments.
func containsPlaceholders(sql string) (named, positional bool) {
	s := newSQLScanner(sql)
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		switch sql[s.i] {
		case '?':
			positional = true
		case ':':
			if s.peek(1) == ':' {
				s.i += 2
				continue
			}
			if isIdentStart(s.peek(1)) {
				named = true
			}
		}
		s.i++
	}
	return named, positional
}
