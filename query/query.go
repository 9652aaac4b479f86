// Package query models listing filters as a conjunction of explicit
// predicates and translates them to gorm scopes.
package query

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate is one condition in a Filter. The set of predicates is closed:
// Equals, Range, InSet, TextMatch and AnyOf.
type Predicate interface {
	expression() clause.Expression
}

// Equals matches rows whose Field equals Value.
type Equals struct {
	Field string
	Value any
}

// Range matches rows whose Field lies within [Min, Max]. A nil bound is open.
type Range struct {
	Field string
	Min   any
	Max   any
}

// InSet matches rows whose Field is one of Values. An empty set matches nothing.
type InSet struct {
	Field  string
	Values []any
}

// TextMatch matches rows where any of Fields contains Text, case-insensitively.
type TextMatch struct {
	Fields []string
	Text   string
}

// AnyOf matches rows satisfying at least one of its predicates.
type AnyOf []Predicate

// In builds an InSet from a typed slice.
func In[T any](field string, values []T) InSet {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return InSet{Field: field, Values: vals}
}

var matchNothing = clause.Expr{SQL: "1 = 0"}

func (p Equals) expression() clause.Expression {
	return clause.Eq{Column: clause.Column{Name: p.Field}, Value: p.Value}
}

func (p Range) expression() clause.Expression {
	var exprs []clause.Expression
	if p.Min != nil {
		exprs = append(exprs, clause.Gte{Column: clause.Column{Name: p.Field}, Value: p.Min})
	}
	if p.Max != nil {
		exprs = append(exprs, clause.Lte{Column: clause.Column{Name: p.Field}, Value: p.Max})
	}
	if len(exprs) == 0 {
		return nil
	}
	return clause.And(exprs...)
}

func (p InSet) expression() clause.Expression {
	if len(p.Values) == 0 {
		return matchNothing
	}
	return clause.IN{Column: clause.Column{Name: p.Field}, Values: p.Values}
}

func (p TextMatch) expression() clause.Expression {
	text := strings.TrimSpace(p.Text)
	if text == "" || len(p.Fields) == 0 {
		return nil
	}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"

	exprs := make([]clause.Expression, 0, len(p.Fields))
	for _, f := range p.Fields {
		exprs = append(exprs, clause.Expr{
			SQL:  "LOWER(?) LIKE ? ESCAPE '\\'",
			Vars: []any{clause.Column{Name: f}, pattern},
		})
	}
	return or(exprs)
}

func (p AnyOf) expression() clause.Expression {
	exprs := make([]clause.Expression, 0, len(p))
	for _, pred := range p {
		if e := pred.expression(); e != nil {
			exprs = append(exprs, e)
		}
	}
	if len(exprs) == 0 {
		return matchNothing
	}
	return or(exprs)
}

// or avoids single-element OrConditions, which gorm joins to its
// neighbours with OR instead of AND.
func or(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.Or(exprs...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Filter is a conjunction of predicates. The zero value matches everything.
type Filter struct {
	preds []Predicate
}

// Where returns a filter over the given predicates.
func Where(preds ...Predicate) Filter {
	return Filter{}.And(preds...)
}

// And returns a copy of f with preds appended. Nil predicates are skipped.
func (f Filter) And(preds ...Predicate) Filter {
	out := make([]Predicate, 0, len(f.preds)+len(preds))
	out = append(out, f.preds...)
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return Filter{preds: out}
}

// Predicates returns the filter's predicates in the order they were added.
func (f Filter) Predicates() []Predicate {
	return f.preds
}

// Expressions compiles the filter to gorm clause expressions.
func (f Filter) Expressions() []clause.Expression {
	exprs := make([]clause.Expression, 0, len(f.preds))
	for _, p := range f.preds {
		if e := p.expression(); e != nil {
			exprs = append(exprs, e)
		}
	}
	return exprs
}

// Scope returns a gorm scope applying f.
func Scope(f Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		exprs := f.Expressions()
		if len(exprs) == 0 {
			return db
		}
		return db.Clauses(clause.Where{Exprs: exprs})
	}
}

// Sort orders results by Field.
type Sort struct {
	Field string
	Desc  bool
}

// SortScope returns a gorm scope applying the given sorts in order.
func SortScope(sorts ...Sort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, s := range sorts {
			if s.Field == "" {
				continue
			}
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
		}
		return db
	}
}
