package listquery

import (
	"strconv"
	"strings"
)

// Cond is one SQL predicate fragment plus its bind arguments. Fragments use
// `?` placeholders; Rebind converts the assembled query to Postgres $N form.
type Cond struct {
	Expr string
	Args []any
}

func True() Cond  { return Cond{Expr: "TRUE"} }
func False() Cond { return Cond{Expr: "FALSE"} }

func (c Cond) isTrivial() bool {
	return c.Expr == "" || c.Expr == "TRUE"
}

// And composes predicates with logical AND. Trivial fragments are dropped;
// composing nothing yields an always-true predicate.
func And(conds ...Cond) Cond {
	kept := make([]Cond, 0, len(conds))
	for _, c := range conds {
		if c.isTrivial() {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return True()
	}
	if len(kept) == 1 {
		return kept[0]
	}
	parts := make([]string, 0, len(kept))
	var args []any
	for _, c := range kept {
		parts = append(parts, "("+c.Expr+")")
		args = append(args, c.Args...)
	}
	return Cond{Expr: strings.Join(parts, " AND "), Args: args}
}

// or is only used by scope computation; user-supplied filters are AND-only.
func or(conds ...Cond) Cond {
	kept := make([]Cond, 0, len(conds))
	for _, c := range conds {
		if c.Expr == "" || c.Expr == "FALSE" {
			continue
		}
		if c.Expr == "TRUE" {
			return True()
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return False()
	}
	if len(kept) == 1 {
		return kept[0]
	}
	parts := make([]string, 0, len(kept))
	var args []any
	for _, c := range kept {
		parts = append(parts, "("+c.Expr+")")
		args = append(args, c.Args...)
	}
	return Cond{Expr: strings.Join(parts, " OR "), Args: args}
}

func Eq(column string, value any) Cond {
	return Cond{Expr: column + " = ?", Args: []any{value}}
}

// Contains matches a case-insensitive substring. The needle is escaped so
// user input cannot smuggle LIKE wildcards.
func Contains(column, needle string) Cond {
	return Cond{Expr: column + " ILIKE ?", Args: []any{"%" + escapeLike(needle) + "%"}}
}

// In matches set membership. An empty set matches nothing.
func In(column string, values []any) Cond {
	if len(values) == 0 {
		return False()
	}
	placeholders := strings.Repeat("?,", len(values))
	return Cond{
		Expr: column + " IN (" + placeholders[:len(placeholders)-1] + ")",
		Args: values,
	}
}

func GTE(column string, value any) Cond {
	return Cond{Expr: column + " >= ?", Args: []any{value}}
}

func LTE(column string, value any) Cond {
	return Cond{Expr: column + " <= ?", Args: []any{value}}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Rebind rewrites `?` placeholders into positional $1..$N for pgx.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
