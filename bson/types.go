// Copyright (C) MongoDB, Inc. 2018-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "math"

// These constants uniquely refer to each BSON type.
const (
	TypeInvalid          Type = 0x00
	TypeDouble           Type = 0x01
	TypeString           Type = 0x02
	TypeEmbeddedDocument Type = 0x03
	TypeArray            Type = 0x04
	TypeBinary           Type = 0x05
	TypeUndefined        Type = 0x06
	TypeObjectID         Type = 0x07
	TypeBoolean          Type = 0x08
	TypeDateTime         Type = 0x09
	TypeNull             Type = 0x0A
	TypeRegex            Type = 0x0B
	TypeDBPointer        Type = 0x0C
	TypeJavaScript       Type = 0x0D
	TypeSymbol           Type = 0x0E
	TypeCodeWithScope    Type = 0x0F
	TypeInt32            Type = 0x10
	TypeTimestamp        Type = 0x11
	TypeInt64            Type = 0x12
	TypeMinKey           Type = 0xFF
	TypeMaxKey           Type = 0x7F
)

var maxDateTimeSec int64 = math.MaxInt64 / 1000
var minDateTimeSec int64 = math.MinInt64 / 1000

// Type represents a BSON type.
type Type byte

// String returns the string representation of the BSON type's name.
func (bt Type) String() string {
	switch bt {
	case TypeInvalid:
		return "invalid"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeEmbeddedDocument:
		return "embedded document"
	case TypeArray:
		return "array"
	case TypeBinary:
		return "binary"
	case TypeUndefined:
		return "undefined"
	case TypeObjectID:
		return "objectID"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "UTC datetime"
	case TypeNull:
		return "null"
	case TypeRegex:
		return "regex"
	case TypeDBPointer:
		return "dbPointer"
	case TypeJavaScript:
		return "javascript"
	case TypeSymbol:
		return "symbol"
	case TypeCodeWithScope:
		return "code with scope"
	case TypeInt32:
		return "32-bit integer"
	case TypeTimestamp:
		return "timestamp"
	case TypeInt64:
		return "64-bit integer"
	case TypeMinKey:
		return "min key"
	case TypeMaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// Binary subtype values, per the BSON binary subtype registry. Mirrors
// go.mongodb.org/mongo-driver/bson/primitive's subtype constants so callers
// can use either.
const (
	SubtypeGeneric     byte = 0x00
	SubtypeFunction    byte = 0x01
	SubtypeBinaryOld   byte = 0x02
	SubtypeUUIDOld     byte = 0x03
	SubtypeUUID        byte = 0x04
	SubtypeMD5         byte = 0x05
	SubtypeUserDefined byte = 0x80
)

// A CodeWithScope pairs a JavaScript code string with a BSON scope
// document. Unlike the official driver's primitive.CodeWithScope, the
// scope is a Value from this package (always a document).
type CodeWithScope struct {
	Code  string
	Scope Value
}
