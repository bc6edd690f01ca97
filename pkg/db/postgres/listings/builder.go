package listings

import (
	"strconv"
	"strings"
)

// bound is a value that will be sent as a positional parameter.
type bound struct {
	value any
}

// Expr is a SQL fragment made of literal text and bound values. Placeholders
// are never written by hand: they are numbered when the statement is built,
// so fragments can be added or dropped without renumbering anything.
type Expr struct {
	parts []any // string or bound
}

// SQL is a literal fragment with no bound values.
func SQL(text string) Expr {
	return Expr{parts: []any{text}}
}

// Arg is a single bound value.
func Arg(v any) Expr {
	return Expr{parts: []any{bound{value: v}}}
}

// E concatenates strings and expressions.
func E(parts ...any) Expr {
	var out Expr
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			if v != "" {
				out.parts = append(out.parts, v)
			}
		case Expr:
			out.parts = append(out.parts, v.parts...)
		default:
			panic("listings.E: unsupported part, wrap values with Arg")
		}
	}
	return out
}

// Empty reports whether the expression renders to nothing.
func (e Expr) Empty() bool {
	return len(e.parts) == 0
}

// Params is the number of values the expression binds.
func (e Expr) Params() int {
	n := 0
	for _, p := range e.parts {
		if _, ok := p.(bound); ok {
			n++
		}
	}
	return n
}

// And joins the non-empty expressions, each parenthesized.
func And(exprs ...Expr) Expr {
	return join(" AND ", exprs)
}

// Or joins the non-empty expressions, each parenthesized.
func Or(exprs ...Expr) Expr {
	return join(" OR ", exprs)
}

func join(sep string, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e.Empty() {
			continue
		}
		if !out.Empty() {
			out.parts = append(out.parts, sep)
		}
		out.parts = append(out.parts, "(")
		out.parts = append(out.parts, e.parts...)
		out.parts = append(out.parts, ")")
	}
	return out
}

// Render writes the expression with placeholders starting at $offset+1. It
// returns the SQL, the bound values and the next offset, so callers composing
// raw SQL can continue numbering.
func Render(e Expr, offset int) (string, []any, int) {
	var sb strings.Builder
	args := make([]any, 0, e.Params())
	n := offset
	for _, p := range e.parts {
		switch v := p.(type) {
		case string:
			sb.WriteString(v)
		case bound:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			args = append(args, v.value)
		}
	}
	return sb.String(), args, n
}

// Builder accumulates a whole statement.
type Builder struct {
	expr Expr
}

func (b *Builder) SQL(text string) *Builder {
	b.expr = E(b.expr, text)
	return b
}

func (b *Builder) Arg(v any) *Builder {
	b.expr = E(b.expr, Arg(v))
	return b
}

func (b *Builder) Expr(e Expr) *Builder {
	b.expr = E(b.expr, e)
	return b
}

// Where appends " WHERE " and the conjunction of exprs, if any are non-empty.
func (b *Builder) Where(exprs ...Expr) *Builder {
	if cond := And(exprs...); !cond.Empty() {
		b.SQL(" WHERE ").Expr(cond)
	}
	return b
}

// Build renders the statement with $1..$N in a single pass.
func (b *Builder) Build() (string, []any) {
	sql, args, _ := Render(b.expr, 0)
	return sql, args
}
