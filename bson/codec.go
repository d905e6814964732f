package bson

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// encodeElement serializes a single (type byte, cstring key, payload)
// element, drawing its scratch space from f's pool and releasing it
// once the caller has copied the bytes out.
func encodeElement(f *Factory, key string, v Value) ([]byte, error) {
	buf := f.resize(f.get(), 2+len(key))
	buf[0] = byte(v.t)
	writeCString(buf, 1, key)

	switch v.t {
	case TypeDouble:
		buf = f.resize(buf, len(buf)+8)
		writeFloat64(buf, 2+len(key), v.native.(float64))
	case TypeString:
		s := v.native.(string)
		buf = f.resize(buf, len(buf)+4+len(s)+1)
		writeString(buf, 2+len(key), s)
	case TypeEmbeddedDocument:
		payload, err := encodeContainer(f, v.doc.elems)
		if err != nil {
			return nil, err
		}
		buf = f.resize(buf, len(buf)+len(payload))
		copy(buf[2+len(key):], payload)
	case TypeArray:
		payload, err := encodeContainer(f, arrayElements(v.arr.items))
		if err != nil {
			return nil, err
		}
		buf = f.resize(buf, len(buf)+len(payload))
		copy(buf[2+len(key):], payload)
	case TypeBinary:
		b := v.native.(primitive.Binary)
		buf = f.resize(buf, len(buf)+4+1+len(b.Data))
		off := 2 + len(key)
		off = writeInt32(buf, off, int32(len(b.Data)))
		buf[off] = b.Subtype
		copy(buf[off+1:], b.Data)
	case TypeUndefined, TypeNull, TypeMinKey, TypeMaxKey:
		// no payload
	case TypeObjectID:
		id := v.native.(primitive.ObjectID)
		buf = f.resize(buf, len(buf)+12)
		copy(buf[2+len(key):], id[:])
	case TypeBoolean:
		buf = f.resize(buf, len(buf)+1)
		if v.native.(bool) {
			buf[2+len(key)] = 1
		} else {
			buf[2+len(key)] = 0
		}
	case TypeDateTime:
		t := v.native.(time.Time)
		buf = f.resize(buf, len(buf)+8)
		writeInt64(buf, 2+len(key), t.UnixNano()/int64(time.Millisecond))
	case TypeRegex:
		r := v.native.(primitive.Regex)
		off := 2 + len(key)
		buf = f.resize(buf, off+len(r.Pattern)+1+len(r.Options)+1)
		off = writeCString(buf, off, r.Pattern)
		writeCString(buf, off, r.Options)
	case TypeDBPointer:
		p := v.native.(primitive.DBPointer)
		off := 2 + len(key)
		buf = f.resize(buf, off+4+len(p.DB)+1+12)
		off = writeString(buf, off, p.DB)
		copy(buf[off:], p.Pointer[:])
	case TypeJavaScript:
		s := v.native.(string)
		buf = f.resize(buf, len(buf)+4+len(s)+1)
		writeString(buf, 2+len(key), s)
	case TypeSymbol:
		s := v.native.(string)
		buf = f.resize(buf, len(buf)+4+len(s)+1)
		writeString(buf, 2+len(key), s)
	case TypeCodeWithScope:
		c := v.native.(CodeWithScope)
		scopeBytes, err := c.Scope.Bytes()
		if err != nil {
			return nil, err
		}
		off := 2 + len(key)
		codeLen := 4 + len(c.Code) + 1
		total := 4 + codeLen + len(scopeBytes)
		buf = f.resize(buf, off+total)
		writeInt32(buf, off, int32(total))
		writeString(buf, off+4, c.Code)
		copy(buf[off+4+codeLen:], scopeBytes)
	case TypeInt32:
		buf = f.resize(buf, len(buf)+4)
		writeInt32(buf, 2+len(key), v.native.(int32))
	case TypeTimestamp:
		ts := v.native.(primitive.Timestamp)
		off := 2 + len(key)
		buf = f.resize(buf, off+8)
		writeUint32(buf, off, ts.I)
		writeUint32(buf, off+4, ts.T)
	case TypeInt64:
		buf = f.resize(buf, len(buf)+8)
		writeInt64(buf, 2+len(key), v.native.(int64))
	default:
		return nil, fmt.Errorf("bson: cannot encode type %s", v.t)
	}
	return buf, nil
}

// decodeElement decodes the payload of a single element of type t at the
// front of src, returning the decoded Value and the number of bytes
// consumed from src (not including the preceding type byte and key,
// already consumed by the caller).
func decodeElement(f *Factory, t Type, src []byte) (Value, int, error) {
	switch t {
	case TypeDouble:
		fl, err := readFloat64(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: fl}, 8, nil
	case TypeString, TypeJavaScript, TypeSymbol:
		n, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		s, err := readCString(src, 4)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: s}, 4 + int(n), nil
	case TypeEmbeddedDocument:
		length, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		if err := hasEnoughBytes(src, 0, int(length)); err != nil {
			return Value{}, 0, err
		}
		elems, err := decodeContainer(f, src[:length])
		if err != nil {
			return Value{}, 0, err
		}
		return Value{factory: f, t: t, doc: &docBody{elems: elems}}, int(length), nil
	case TypeArray:
		length, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		if err := hasEnoughBytes(src, 0, int(length)); err != nil {
			return Value{}, 0, err
		}
		elems, err := decodeContainer(f, src[:length])
		if err != nil {
			return Value{}, 0, err
		}
		items := make([]Value, len(elems))
		for i, e := range elems {
			items[i] = e.val
		}
		return Value{factory: f, t: t, arr: &arrBody{items: items}}, int(length), nil
	case TypeBinary:
		n, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		if err := hasEnoughBytes(src, 4, 1+int(n)); err != nil {
			return Value{}, 0, err
		}
		subtype := src[4]
		data := make([]byte, n)
		copy(data, src[5:5+n])
		return Value{t: t, native: primitive.Binary{Subtype: subtype, Data: data}}, 5 + int(n), nil
	case TypeUndefined:
		return Value{t: t, native: primitive.Undefined{}}, 0, nil
	case TypeObjectID:
		if err := hasEnoughBytes(src, 0, 12); err != nil {
			return Value{}, 0, err
		}
		var id primitive.ObjectID
		copy(id[:], src[:12])
		return Value{t: t, native: id}, 12, nil
	case TypeBoolean:
		if err := hasEnoughBytes(src, 0, 1); err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: src[0] != 0}, 1, nil
	case TypeDateTime:
		ms, err := readInt64(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: time.Unix(0, ms*int64(time.Millisecond)).UTC()}, 8, nil
	case TypeNull:
		return Value{t: t}, 0, nil
	case TypeRegex:
		pattern, err := readCString(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		optOff := len(pattern) + 1
		options, err := readCString(src, optOff)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: primitive.Regex{Pattern: pattern, Options: options}}, optOff + len(options) + 1, nil
	case TypeDBPointer:
		n, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		ns, err := readCString(src, 4)
		if err != nil {
			return Value{}, 0, err
		}
		idOff := 4 + int(n)
		if err := hasEnoughBytes(src, idOff, 12); err != nil {
			return Value{}, 0, err
		}
		var id primitive.ObjectID
		copy(id[:], src[idOff:idOff+12])
		return Value{t: t, native: primitive.DBPointer{DB: ns, Pointer: id}}, idOff + 12, nil
	case TypeCodeWithScope:
		total, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		codeLen, err := readInt32(src, 4)
		if err != nil {
			return Value{}, 0, err
		}
		code, err := readCString(src, 8)
		if err != nil {
			return Value{}, 0, err
		}
		scopeOff := 8 + int(codeLen)
		scopeLen, err := readInt32(src, scopeOff)
		if err != nil {
			return Value{}, 0, err
		}
		scope, err := f.parseContainer(src[scopeOff:scopeOff+int(scopeLen)], TypeEmbeddedDocument)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: CodeWithScope{Code: code, Scope: scope}}, int(total), nil
	case TypeInt32:
		n, err := readInt32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: n}, 4, nil
	case TypeTimestamp:
		i, err := readUint32(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		tt, err := readUint32(src, 4)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: primitive.Timestamp{I: i, T: tt}}, 8, nil
	case TypeInt64:
		n, err := readInt64(src, 0)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{t: t, native: n}, 8, nil
	case TypeMinKey:
		return Value{t: t, native: primitive.MinKey{}}, 0, nil
	case TypeMaxKey:
		return Value{t: t, native: primitive.MaxKey{}}, 0, nil
	}
	return Value{}, 0, fmt.Errorf("bson: cannot decode type %s", t)
}
