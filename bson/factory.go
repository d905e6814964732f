// Copyright 2018 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// A Factory is a factory for encoding BSON documents and arrays to bytes.
// It owns a pool of scratch byte slices used while serializing a Value
// tree, amortizing allocation across repeated Bytes() calls the way the
// connection pool amortizes sockets. The in-memory Value/Doc/Array tree
// itself is plain owned Go data (slices of elements) — only the
// byte-encoding scratch space is pooled.
type Factory struct {
	pool ByteSlicePool
}

// defaultFactory is used by package-level constructors (Document, NewArray,
// Parse, ...) so callers who don't care about pool tuning don't need to
// thread a *Factory through every call.
var defaultFactory = New()

// New returns a new Factory based on a byte slice pool with minimum slice
// capacity of 256 bytes and no maximum slice capacity.
func New() *Factory {
	return NewFromPool(NewBytePool(256, -1))
}

// NewFromPool returns a new Factory from a provided ByteSlicePool.
func NewFromPool(pool ByteSlicePool) *Factory {
	return &Factory{pool: pool}
}

// NewDoc returns a new, empty BSON document value owned by f.
func (f *Factory) NewDoc() Value {
	return Value{t: TypeEmbeddedDocument, factory: f, doc: &docBody{}}
}

// NewArray returns a new, empty BSON array value owned by f. Any arguments
// are appended via ToBson.
func (f *Factory) NewArray(xs ...interface{}) (Value, error) {
	a := Value{t: TypeArray, factory: f, arr: &arrBody{}}
	for _, x := range xs {
		v, err := ToBson(x)
		if err != nil {
			return Value{}, err
		}
		if err := a.Add(v); err != nil {
			return Value{}, err
		}
	}
	return a, nil
}

// ParseDoc decodes a serialized BSON document owned by f.
func (f *Factory) ParseDoc(buf []byte) (Value, error) {
	return f.parseContainer(buf, TypeEmbeddedDocument)
}

// ParseArray decodes a serialized BSON array owned by f.
func (f *Factory) ParseArray(buf []byte) (Value, error) {
	return f.parseContainer(buf, TypeArray)
}

// get returns a scratch byte slice from the pool.
func (f *Factory) get() []byte {
	return f.pool.Get()
}

// release returns a byte slice to the pool.
func (f *Factory) release(bs []byte) {
	f.pool.Put(bs)
}

// resize changes the size of a byte slice via the pool.
func (f *Factory) resize(bs []byte, size int) []byte {
	return f.pool.Resize(bs, size)
}
