package fuzzy

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

type attrOp string

const (
	attrPresent  attrOp = ""
	attrEquals   attrOp = "="
	attrContains attrOp = "*="
)

type attrConstraint struct {
	name  string
	op    attrOp
	value string
}

// Query is a CSS selector under construction: one caller pattern (an element
// shape such as `input[type="button"]`) narrowed by attribute constraints.
// Constraint values are quoted and escaped when the selector is rendered, so
// label text never reaches the selector parser unescaped.
type Query struct {
	pattern string
	attrs   []attrConstraint
}

func NewQuery(pattern string) Query {
	return Query{pattern: strings.TrimSpace(pattern)}
}

func (q Query) AttrPresent(name string) Query {
	return q.with(attrConstraint{name: name, op: attrPresent})
}

func (q Query) AttrEquals(name, value string) Query {
	return q.with(attrConstraint{name: name, op: attrEquals, value: value})
}

func (q Query) AttrContains(name, value string) Query {
	return q.with(attrConstraint{name: name, op: attrContains, value: value})
}

func (q Query) with(c attrConstraint) Query {
	attrs := make([]attrConstraint, len(q.attrs), len(q.attrs)+1)
	copy(attrs, q.attrs)
	q.attrs = append(attrs, c)

	return q
}

func (q Query) String() string {
	var b strings.Builder

	if q.pattern == "" {
		b.WriteString("*")
	} else {
		b.WriteString(q.pattern)
	}

	for _, a := range q.attrs {
		b.WriteByte('[')
		b.WriteString(a.name)
		if a.op != attrPresent {
			b.WriteString(string(a.op))
			b.WriteString(quoteCSS(a.value))
		}
		b.WriteByte(']')
	}

	return b.String()
}

func (q Query) Compile() (cascadia.Selector, error) {
	if strings.Contains(q.pattern, ",") && len(q.attrs) > 0 {
		return nil, fmt.Errorf("pattern %q: selector groups cannot be narrowed", q.pattern)
	}

	for _, a := range q.attrs {
		if !isAttrName(a.name) {
			return nil, fmt.Errorf("invalid attribute name %q", a.name)
		}
	}

	sel, err := cascadia.Compile(q.String())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", q.String(), err)
	}

	return sel, nil
}

// quoteCSS renders s as a double-quoted CSS string.
func quoteCSS(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\a `)
		case '\r':
			b.WriteString(`\d `)
		case '\f':
			b.WriteString(`\c `)
		case 0:
			b.WriteString(`\fffd `)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')

	return b.String()
}

func isAttrName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}

	return true
}
