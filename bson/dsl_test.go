package bson

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToBsonLiteralSyntax(t *testing.T) {
	v, err := ToBson(primitive.D{{Key: "name", Value: "ruby"}, {Key: "legs", Value: int32(0)}})
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsDocument() {
		t.Fatal("expected a document")
	}
	if keys := v.Keys(); len(keys) != 2 || keys[0] != "name" || keys[1] != "legs" {
		t.Errorf("expected primitive.D to preserve order, got %v", keys)
	}

	m, err := ToBson(primitive.M{"name": "ruby"})
	if err != nil {
		t.Fatal(err)
	}
	name, err := m.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	s, _ := name.ToString()
	if s != "ruby" {
		t.Errorf("got %q, want ruby", s)
	}

	arr, err := ToBson(primitive.A{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !arr.IsArray() {
		t.Fatal("expected an array")
	}
	n, _ := arr.Len()
	if n != 3 {
		t.Errorf("got len %d, want 3", n)
	}
}

func TestToBsonNestedMap(t *testing.T) {
	v, err := ToBson(map[string]interface{}{"a": map[string]interface{}{"b": int32(1)}})
	if err != nil {
		t.Fatal(err)
	}
	a, err := v.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.Get("b")
	if err != nil {
		t.Fatal(err)
	}
	n, err := b.ToInt32()
	if err != nil || n != 1 {
		t.Errorf("got %d, %v; want 1, nil", n, err)
	}
}
