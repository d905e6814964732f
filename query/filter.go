package query

import (
	"fmt"

	"github.com/azyklus/mongo/bson"
)

// Compile converts a single Expr into a BSON filter document, per
// spec.md §4.3: comparisons become {field: {$op: value}}, logical
// combinators become {$op: [childFilter, ...]}.
func Compile(e Expr) (bson.Value, error) {
	switch e.Op {
	case OpAnd, OpOr, OpNor:
		items, err := compileChildren(e.Children)
		if err != nil {
			return bson.Value{}, err
		}
		doc := bson.Document()
		if err := doc.AddKV(string(e.Op), items); err != nil {
			return bson.Value{}, err
		}
		return doc, nil
	case OpNot:
		if len(e.Children) != 1 {
			return bson.Value{}, fmt.Errorf("query: $not requires exactly one child expression")
		}
		items, err := compileChildren(e.Children)
		if err != nil {
			return bson.Value{}, err
		}
		doc := bson.Document()
		if err := doc.AddKV(string(OpNot), items); err != nil {
			return bson.Value{}, err
		}
		return doc, nil
	case "":
		return bson.Value{}, fmt.Errorf("query: expression has neither a field comparison nor a combinator")
	default:
		return compileComparison(e)
	}
}

func compileChildren(children []Expr) (bson.Value, error) {
	arr, _ := bson.NewArray()
	for _, c := range children {
		v, err := Compile(c)
		if err != nil {
			return bson.Value{}, err
		}
		if err := arr.Add(v); err != nil {
			return bson.Value{}, err
		}
	}
	return arr, nil
}

func compileComparison(e Expr) (bson.Value, error) {
	val, err := bson.ToBson(e.Value)
	if err != nil {
		return bson.Value{}, fmt.Errorf("query: field %q: %w", e.Field, err)
	}
	inner := bson.Document()
	if err := inner.AddKV(string(e.Op), val); err != nil {
		return bson.Value{}, err
	}
	outer := bson.Document()
	if err := outer.AddKV(e.Field, inner); err != nil {
		return bson.Value{}, err
	}
	return outer, nil
}

// CompileAll compiles multiple top-level Exprs into sibling keys of one
// outer document, per spec.md §4.3 ("multiple top-level statements
// become sibling keys in the outer document, duplicates allowed,
// preserving order").
func CompileAll(exprs ...Expr) (bson.Value, error) {
	outer := bson.Document()
	for _, e := range exprs {
		compiled, err := Compile(e)
		if err != nil {
			return bson.Value{}, err
		}
		for _, k := range compiled.Keys() {
			v, _ := compiled.Get(k)
			if err := outer.AddKV(k, v); err != nil {
				return bson.Value{}, err
			}
		}
	}
	return outer, nil
}
