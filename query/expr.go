// Package query implements spec.md §4.3's predicate-expression builder:
// a small runtime AST, built with chained method calls rather than a
// compile-time macro (Go has none), that compiles to a BSON filter
// document identical to the hand-written form.
package query

// Op is a comparison or membership operator.
type Op string

// Supported operators, named after their compiled $-operator.
const (
	OpEq   Op = "$eq"
	OpNe   Op = "$ne"
	OpGt   Op = "$gt"
	OpLt   Op = "$lt"
	OpGte  Op = "$gte"
	OpLte  Op = "$lte"
	OpIn   Op = "$in"
	OpNin  Op = "$nin"
	OpType Op = "$type"
	OpSize Op = "$size"
	OpAll  Op = "$all"
	OpAnd  Op = "$and"
	OpOr   Op = "$or"
	OpNor  Op = "$nor"
	OpNot  Op = "$not"
)

// An Expr is one node of the predicate tree: either a field comparison
// (Field set) or a logical combinator over child Exprs (Op one of
// $and/$or/$nor/$not, Children set).
type Expr struct {
	Field    string
	Op       Op
	Value    interface{}
	Children []Expr
}

// Eq builds a field == value comparison.
func Eq(field string, value interface{}) Expr { return Expr{Field: field, Op: OpEq, Value: value} }

// Ne builds a field != value comparison.
func Ne(field string, value interface{}) Expr { return Expr{Field: field, Op: OpNe, Value: value} }

// Gt builds a field > value comparison.
func Gt(field string, value interface{}) Expr { return Expr{Field: field, Op: OpGt, Value: value} }

// Lt builds a field < value comparison.
func Lt(field string, value interface{}) Expr { return Expr{Field: field, Op: OpLt, Value: value} }

// Gte builds a field >= value comparison.
func Gte(field string, value interface{}) Expr { return Expr{Field: field, Op: OpGte, Value: value} }

// Lte builds a field <= value comparison.
func Lte(field string, value interface{}) Expr { return Expr{Field: field, Op: OpLte, Value: value} }

// In builds a field-membership comparison.
func In(field string, values ...interface{}) Expr {
	return Expr{Field: field, Op: OpIn, Value: values}
}

// NotIn builds a field-exclusion comparison.
func NotIn(field string, values ...interface{}) Expr {
	return Expr{Field: field, Op: OpNin, Value: values}
}

// Is builds a $type comparison; a single kind or a list of kinds.
func Is(field string, kinds ...interface{}) Expr {
	if len(kinds) == 1 {
		return Expr{Field: field, Op: OpType, Value: kinds[0]}
	}
	return Expr{Field: field, Op: OpType, Value: kinds}
}

// Len builds a field.len == n comparison ($size).
func Len(field string, n int) Expr { return Expr{Field: field, Op: OpSize, Value: n} }

// All builds a field.all [v...] comparison.
func All(field string, values ...interface{}) Expr {
	return Expr{Field: field, Op: OpAll, Value: values}
}

// And combines expressions with $and.
func And(exprs ...Expr) Expr { return Expr{Op: OpAnd, Children: exprs} }

// Or combines expressions with $or.
func Or(exprs ...Expr) Expr { return Expr{Op: OpOr, Children: exprs} }

// Nor combines expressions with $nor.
func Nor(exprs ...Expr) Expr { return Expr{Op: OpNor, Children: exprs} }

// Not negates a single expression.
func Not(e Expr) Expr { return Expr{Op: OpNot, Children: []Expr{e}} }
