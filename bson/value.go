// Copyright 2018 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A Value is a tagged-union BSON value: exactly one of a document, an
// array, or one of the scalar BSON kinds is active, selected by Type().
// Values are plain owned trees — constructing, mutating, or cloning one
// never touches another Value's storage except through the explicit
// Merge/Update operations.
type Value struct {
	factory *Factory
	t       Type
	doc     *docBody
	arr     *arrBody
	native  interface{}
}

type element struct {
	key string
	val Value
}

// A docBody is the mutable, insertion-ordered backing store for a
// document Value. Duplicate keys are tolerated: elems is a plain slice,
// not a map, exactly as spec.md requires ("duplicate keys are permitted
// during construction and round-trip").
type docBody struct {
	elems []element
}

type arrBody struct {
	items []Value
}

var objectIDCounter uint32

func init() {
	var seed [4]byte
	_, _ = rand.Read(seed[:])
	objectIDCounter = binary.BigEndian.Uint32(seed[:])
}

// Document returns a new, empty BSON document value.
func Document() Value { return defaultFactory.NewDoc() }

// NewArray returns a new BSON array value; any arguments are converted via
// ToBson and appended.
func NewArray(xs ...interface{}) (Value, error) { return defaultFactory.NewArray(xs...) }

// Double returns a BSON double value.
func Double(f float64) Value { return Value{t: TypeDouble, native: f} }

// String returns a BSON UTF-8 string value.
func String(s string) Value { return Value{t: TypeString, native: s} }

// Bool returns a BSON boolean value.
func Bool(b bool) Value { return Value{t: TypeBoolean, native: b} }

// Int32 returns a BSON 32-bit integer value.
func Int32(i int32) Value { return Value{t: TypeInt32, native: i} }

// Int64 returns a BSON 64-bit integer value.
func Int64(i int64) Value { return Value{t: TypeInt64, native: i} }

// Null returns the BSON null value.
func Null() Value { return Value{t: TypeNull} }

// Undefined returns the BSON undefined value.
func Undefined() Value { return Value{t: TypeUndefined, native: primitive.Undefined{}} }

// MinKey returns the BSON min-key value.
func MinKey() Value { return Value{t: TypeMinKey, native: primitive.MinKey{}} }

// MaxKey returns the BSON max-key value.
func MaxKey() Value { return Value{t: TypeMaxKey, native: primitive.MaxKey{}} }

// ObjectIDVal returns a BSON ObjectId value wrapping an existing id.
func ObjectIDVal(id primitive.ObjectID) Value { return Value{t: TypeObjectID, native: id} }

// NewObjectID generates a fresh 12-byte ObjectId (4-byte timestamp,
// 5-byte random machine/process id, 3-byte monotonic counter) and returns
// it as a Value, the same shape used by command.go when an inserted
// document lacks an "_id".
func NewObjectID() Value { return ObjectIDVal(newObjectID()) }

func newObjectID() primitive.ObjectID {
	var id primitive.ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	_, _ = rand.Read(id[4:9])
	c := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// DateTime returns a BSON UTC datetime value. Per spec, the in-memory
// representation is second-resolution: any sub-second component of t is
// dropped so that encode(decode(x)) is lossless for every value this
// package itself produces.
func DateTime(t time.Time) Value {
	return Value{t: TypeDateTime, native: time.Unix(t.Unix(), 0).UTC()}
}

// BinaryVal returns a BSON binary value with the given subtype.
func BinaryVal(subtype byte, payload []byte) Value {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return Value{t: TypeBinary, native: primitive.Binary{Subtype: subtype, Data: buf}}
}

// RegexVal returns a BSON regular expression value.
func RegexVal(pattern, options string) Value {
	return Value{t: TypeRegex, native: primitive.Regex{Pattern: pattern, Options: options}}
}

// DBPointerVal returns a BSON DBPointer value.
func DBPointerVal(ns string, id primitive.ObjectID) Value {
	return Value{t: TypeDBPointer, native: primitive.DBPointer{DB: ns, Pointer: id}}
}

// JSCode returns a BSON JavaScript-code (no scope) value.
func JSCode(code string) Value { return Value{t: TypeJavaScript, native: code} }

// JSCodeWithScope returns a BSON JavaScript-code-with-scope value. scope
// must be a document Value.
func JSCodeWithScope(code string, scope Value) (Value, error) {
	if scope.t != TypeInvalid && !scope.IsDocument() {
		return Value{}, ErrKindMismatch
	}
	return Value{t: TypeCodeWithScope, native: CodeWithScope{Code: code, Scope: scope}}, nil
}

// TimestampVal returns a BSON internal timestamp value.
func TimestampVal(ts primitive.Timestamp) Value {
	return Value{t: TypeTimestamp, native: ts}
}

// Type returns the BSON type tag of v.
func (v Value) Type() Type { return v.t }

// IsDocument reports whether v is a document.
func (v Value) IsDocument() bool { return v.t == TypeEmbeddedDocument }

// IsArray reports whether v is an array.
func (v Value) IsArray() bool { return v.t == TypeArray }

// IsNil reports whether v is the zero Value (no type set at all), as
// distinct from an explicit BSON Null.
func (v Value) IsNil() bool {
	return v.t == TypeInvalid && v.doc == nil && v.arr == nil && v.native == nil
}

func (v Value) factoryOrDefault() *Factory {
	if v.factory != nil {
		return v.factory
	}
	return defaultFactory
}

// Native returns the decoded Go representation of a scalar value, or nil
// for documents, arrays, and null.
func (v Value) Native() interface{} { return v.native }

// ToInt returns an int32 or int64 value narrowed/widened to int, failing
// with ErrKindMismatch for any other type.
func (v Value) ToInt() (int, error) {
	switch v.t {
	case TypeInt32:
		return int(v.native.(int32)), nil
	case TypeInt64:
		return int(v.native.(int64)), nil
	}
	return 0, ErrKindMismatch
}

// ToInt32 returns the Int32 payload, failing with ErrKindMismatch otherwise.
func (v Value) ToInt32() (int32, error) {
	if v.t != TypeInt32 {
		return 0, ErrKindMismatch
	}
	return v.native.(int32), nil
}

// ToInt64 returns the Int32 or Int64 payload widened to int64.
func (v Value) ToInt64() (int64, error) {
	switch v.t {
	case TypeInt32:
		return int64(v.native.(int32)), nil
	case TypeInt64:
		return v.native.(int64), nil
	}
	return 0, ErrKindMismatch
}

// ToFloat returns the Double payload, failing with ErrKindMismatch otherwise.
func (v Value) ToFloat() (float64, error) {
	if v.t != TypeDouble {
		return 0, ErrKindMismatch
	}
	return v.native.(float64), nil
}

// ToBool returns the Boolean payload, failing with ErrKindMismatch otherwise.
func (v Value) ToBool() (bool, error) {
	if v.t != TypeBoolean {
		return false, ErrKindMismatch
	}
	return v.native.(bool), nil
}

// ToString returns the String payload, failing with ErrKindMismatch otherwise.
func (v Value) ToString() (string, error) {
	if v.t != TypeString {
		return "", ErrKindMismatch
	}
	return v.native.(string), nil
}

// ToObjectID returns the ObjectID payload, failing with ErrKindMismatch otherwise.
func (v Value) ToObjectID() (primitive.ObjectID, error) {
	if v.t != TypeObjectID {
		return primitive.ObjectID{}, ErrKindMismatch
	}
	return v.native.(primitive.ObjectID), nil
}

// ToTime returns the DateTime payload, failing with ErrKindMismatch otherwise.
func (v Value) ToTime() (time.Time, error) {
	if v.t != TypeDateTime {
		return time.Time{}, ErrKindMismatch
	}
	return v.native.(time.Time), nil
}

// ToBinary returns the Binary payload, failing with ErrKindMismatch otherwise.
func (v Value) ToBinary() (primitive.Binary, error) {
	if v.t != TypeBinary {
		return primitive.Binary{}, ErrKindMismatch
	}
	return v.native.(primitive.Binary), nil
}

// Clone returns a deep copy of v; mutating the clone never affects v.
func (v Value) Clone() Value {
	switch v.t {
	case TypeEmbeddedDocument:
		elems := make([]element, len(v.doc.elems))
		for i, e := range v.doc.elems {
			elems[i] = element{key: e.key, val: e.val.Clone()}
		}
		return Value{factory: v.factory, t: v.t, doc: &docBody{elems: elems}}
	case TypeArray:
		items := make([]Value, len(v.arr.items))
		for i, it := range v.arr.items {
			items[i] = it.Clone()
		}
		return Value{factory: v.factory, t: v.t, arr: &arrBody{items: items}}
	case TypeBinary:
		b := v.native.(primitive.Binary)
		buf := make([]byte, len(b.Data))
		copy(buf, b.Data)
		return Value{t: v.t, native: primitive.Binary{Subtype: b.Subtype, Data: buf}}
	case TypeCodeWithScope:
		c := v.native.(CodeWithScope)
		return Value{t: v.t, native: CodeWithScope{Code: c.Code, Scope: c.Scope.Clone()}}
	default:
		return Value{t: v.t, native: v.native}
	}
}
