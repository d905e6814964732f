// Copyright 2018 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/binary"
	"fmt"
)

// Get returns the value stored under key, or the zero Value and nil if
// the key is absent. It fails with ErrKindMismatch if v is not a document.
// On duplicate keys (tolerated per spec.md's construction/round-trip
// invariant), the first occurrence wins.
func (v Value) Get(key string) (Value, error) {
	if !v.IsDocument() {
		return Value{}, ErrKindMismatch
	}
	for _, e := range v.doc.elems {
		if e.key == key {
			return e.val, nil
		}
	}
	return Value{}, nil
}

// Contains reports whether v is a document containing key. It never
// fails: a non-document v simply reports false.
func (v Value) Contains(key string) bool {
	if !v.IsDocument() {
		return false
	}
	for _, e := range v.doc.elems {
		if e.key == key {
			return true
		}
	}
	return false
}

// Set stores val under key, overwriting the first existing element with
// that key in place (preserving its position) or appending a new element
// if the key is absent. It fails with ErrKindMismatch if v is not a
// document. See DESIGN.md's Open Questions for why Set overwrites rather
// than appending a duplicate — use AddKV for literal duplicate-key
// construction.
func (v Value) Set(key string, val Value) error {
	if !v.IsDocument() {
		return ErrKindMismatch
	}
	for i, e := range v.doc.elems {
		if e.key == key {
			v.doc.elems[i].val = val
			return nil
		}
	}
	v.doc.elems = append(v.doc.elems, element{key: key, val: val})
	return nil
}

// AddKV appends val under key without checking for an existing element
// with the same key, deliberately allowing duplicate keys as spec.md's
// dynamic construction DSL requires. It fails with ErrKindMismatch if v
// is not a document.
func (v Value) AddKV(key string, val Value) error {
	if !v.IsDocument() {
		return ErrKindMismatch
	}
	v.doc.elems = append(v.doc.elems, element{key: key, val: val})
	return nil
}

// Keys returns the keys of a document in insertion order, including any
// duplicates. It returns nil if v is not a document.
func (v Value) Keys() []string {
	if !v.IsDocument() {
		return nil
	}
	keys := make([]string, len(v.doc.elems))
	for i, e := range v.doc.elems {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of elements in a document or array, failing
// with ErrKindMismatch for scalar values.
func (v Value) Len() (int, error) {
	switch v.t {
	case TypeEmbeddedDocument:
		return len(v.doc.elems), nil
	case TypeArray:
		return len(v.arr.items), nil
	}
	return 0, ErrKindMismatch
}

// Map returns a shallow map[string]Value snapshot of a document, for
// convenience when duplicate keys and order don't matter to the caller.
// It returns nil if v is not a document.
func (v Value) Map() map[string]Value {
	if !v.IsDocument() {
		return nil
	}
	m := make(map[string]Value, len(v.doc.elems))
	for _, e := range v.doc.elems {
		m[e.key] = e.val
	}
	return m
}

// Path navigates nested documents, returning the value at the end of the
// key chain and true, or the zero Value and false if any step misses or
// is not itself a document.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for i, k := range keys {
		if !cur.IsDocument() {
			return Value{}, false
		}
		next, err := cur.Get(k)
		if err != nil || next.IsNil() {
			if !cur.Contains(k) {
				return Value{}, false
			}
		}
		cur = next
		if i == len(keys)-1 {
			return cur, true
		}
	}
	return Value{}, false
}

// SetPath navigates keys[:len(keys)-1] from v, creating intermediate
// documents as needed, and sets the final key to val. It fails with
// ErrKindMismatch if any existing intermediate node is not a document.
func (v Value) SetPath(keys []string, val Value) error {
	if len(keys) == 0 {
		return fmt.Errorf("bson: SetPath requires at least one key")
	}
	if !v.IsDocument() {
		return ErrKindMismatch
	}
	cur := v
	for _, k := range keys[:len(keys)-1] {
		next, err := cur.Get(k)
		if err != nil {
			return err
		}
		if next.IsNil() {
			next = Document()
			if err := cur.Set(k, next); err != nil {
				return err
			}
		}
		if !next.IsDocument() {
			return ErrKindMismatch
		}
		cur = next
	}
	return cur.Set(keys[len(keys)-1], val)
}

// Merge returns a new document or array that deep-merges b into a: for
// each key in a also present in b, the values are recursively merged if
// both are documents or arrays, else a's value wins; keys present only in
// b are appended. For non-container a, Merge returns a unchanged. This is
// spec.md §4.1/§8's merge law.
func Merge(a, b Value) Value {
	switch {
	case a.IsDocument() && b.IsDocument():
		out := Document()
		for _, e := range a.doc.elems {
			bv, _ := b.Get(e.key)
			if b.Contains(e.key) && (e.val.IsDocument() || e.val.IsArray()) && (bv.IsDocument() == e.val.IsDocument()) && (bv.IsArray() == e.val.IsArray()) {
				_ = out.AddKV(e.key, Merge(e.val, bv))
			} else {
				_ = out.AddKV(e.key, e.val)
			}
		}
		for _, e := range b.doc.elems {
			if !a.Contains(e.key) {
				_ = out.AddKV(e.key, e.val)
			}
		}
		return out
	case a.IsArray() && b.IsArray():
		out, _ := NewArray()
		for i, it := range a.arr.items {
			if i < len(b.arr.items) && (it.IsDocument() || it.IsArray()) && it.Type() == b.arr.items[i].Type() {
				_ = out.Add(Merge(it, b.arr.items[i]))
			} else {
				_ = out.Add(it)
			}
		}
		for i := len(a.arr.items); i < len(b.arr.items); i++ {
			_ = out.Add(b.arr.items[i])
		}
		return out
	default:
		return a
	}
}

// Update merges b into a in place, by the same rule as Merge, mutating
// a's backing storage directly. It fails with ErrKindMismatch unless a
// and b are both documents or both arrays.
func (a Value) Update(b Value) error {
	switch {
	case a.IsDocument() && b.IsDocument():
		merged := Merge(a, b)
		a.doc.elems = merged.doc.elems
		return nil
	case a.IsArray() && b.IsArray():
		merged := Merge(a, b)
		a.arr.items = merged.arr.items
		return nil
	default:
		return ErrKindMismatch
	}
}

// Bytes serializes a document or array Value to its binary BSON
// encoding, failing with ErrKindMismatch for scalar values.
func (v Value) Bytes() ([]byte, error) {
	switch v.t {
	case TypeEmbeddedDocument:
		return encodeContainer(v.factoryOrDefault(), v.doc.elems)
	case TypeArray:
		return encodeContainer(v.factoryOrDefault(), arrayElements(v.arr.items))
	}
	return nil, ErrKindMismatch
}

// Parse decodes a serialized BSON document using the default factory.
func Parse(buf []byte) (Value, error) {
	return defaultFactory.ParseDoc(buf)
}

func arrayElements(items []Value) []element {
	elems := make([]element, len(items))
	for i, it := range items {
		elems[i] = element{key: itoa(i), val: it}
	}
	return elems
}

// parseContainer decodes buf (a framed BSON document or array) into a
// Value of the requested container type.
func (f *Factory) parseContainer(buf []byte, want Type) (Value, error) {
	if err := validateBSONFraming(buf); err != nil {
		return Value{}, err
	}
	elems, err := decodeContainer(f, buf)
	if err != nil {
		return Value{}, err
	}
	switch want {
	case TypeEmbeddedDocument:
		return Value{factory: f, t: TypeEmbeddedDocument, doc: &docBody{elems: elems}}, nil
	case TypeArray:
		items := make([]Value, len(elems))
		for i, e := range elems {
			items[i] = e.val
		}
		return Value{factory: f, t: TypeArray, arr: &arrBody{items: items}}, nil
	}
	return Value{}, fmt.Errorf("bson: unsupported container type %s", want)
}

// check length and null termination
func validateBSONFraming(buf []byte) error {
	length, err := readInt32(buf, 0)
	if err != nil {
		return err
	}
	if len(buf) != int(length) {
		return errInvalidLength
	}
	if buf[len(buf)-1] != 0 {
		return errMissingTerminator
	}
	return nil
}

// encodeContainer serializes elems (a document's fields, or an array's
// items under decimal-string keys) into the standard BSON container
// framing: int32 length, elements, trailing NUL. The growing destination
// buffer is drawn from f's pool, mirroring the teacher's Doc.grow.
func encodeContainer(f *Factory, elems []element) ([]byte, error) {
	buf := f.resize(f.get(), 5)
	binary.LittleEndian.PutUint32(buf[0:4], 5)
	buf[4] = 0

	for _, e := range elems {
		payload, err := encodeElement(f, e.key, e.val)
		if err != nil {
			return nil, err
		}
		offset := len(buf) - 1
		buf = f.resize(buf, offset+len(payload)+1)
		copy(buf[offset:], payload)
		f.release(payload)
		buf[len(buf)-1] = 0
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf, nil
}

// decodeContainer parses buf's elements (after the length prefix,
// stopping at the trailing NUL) into an ordered slice, recursing into
// nested documents/arrays.
func decodeContainer(f *Factory, buf []byte) ([]element, error) {
	var elems []element
	offset := 4
	for offset < len(buf)-1 {
		t, key, next, err := readTypeAndKeyAt(buf, offset)
		if err != nil {
			return nil, err
		}
		val, consumed, err := decodeElement(f, t, buf[next:])
		if err != nil {
			return nil, err
		}
		elems = append(elems, element{key: key, val: val})
		offset = next + consumed
	}
	return elems, nil
}

func readTypeAndKeyAt(buf []byte, offset int) (Type, string, int, error) {
	t, key, err := readTypeAndKey(buf, offset)
	if err != nil {
		return 0, "", 0, err
	}
	return t, key, offset + 2 + len(key), nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b [20]byte
	pos := len(b)
	for i > 0 {
		pos--
		b[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		b[pos] = '-'
	}
	return string(b[pos:])
}
