package bson

import (
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToBson converts a native Go value into a Value, giving callers a
// literal-syntax construction DSL built on the real MongoDB driver's
// primitive.D/M/A/E aliases instead of a bespoke macro language:
//
//	bson.ToBson(primitive.D{{"name", "ruby"}, {"legs", 0}})
//	bson.ToBson(primitive.M{"name": "ruby"})
//	bson.ToBson(primitive.A{1, 2, 3})
//
// Existing Value, nil, bool, numeric, string, time.Time, []byte, and the
// primitive.ObjectID/Binary/Regex/DBPointer/Timestamp/MinKey/MaxKey/
// Undefined leaf types are also accepted directly. Structs are converted
// field-by-field via Marshal's tag rules.
func ToBson(x interface{}) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int64(int64(t)), nil
	case int32:
		return Int32(t), nil
	case int64:
		return Int64(t), nil
	case float32:
		return Double(float64(t)), nil
	case float64:
		return Double(t), nil
	case string:
		return String(t), nil
	case time.Time:
		return DateTime(t), nil
	case []byte:
		return BinaryVal(SubtypeGeneric, t), nil
	case primitive.ObjectID:
		return ObjectIDVal(t), nil
	case primitive.Binary:
		return BinaryVal(t.Subtype, t.Data), nil
	case primitive.Regex:
		return RegexVal(t.Pattern, t.Options), nil
	case primitive.DBPointer:
		return DBPointerVal(t.DB, t.Pointer), nil
	case primitive.Timestamp:
		return TimestampVal(t), nil
	case primitive.MinKey:
		return MinKey(), nil
	case primitive.MaxKey:
		return MaxKey(), nil
	case primitive.Undefined:
		return Undefined(), nil
	case primitive.D:
		doc := Document()
		for _, e := range t {
			v, err := ToBson(e.Value)
			if err != nil {
				return Value{}, err
			}
			if err := doc.AddKV(e.Key, v); err != nil {
				return Value{}, err
			}
		}
		return doc, nil
	case primitive.M:
		doc := Document()
		for k, val := range t {
			v, err := ToBson(val)
			if err != nil {
				return Value{}, err
			}
			if err := doc.AddKV(k, v); err != nil {
				return Value{}, err
			}
		}
		return doc, nil
	case primitive.A:
		arr, _ := NewArray()
		for _, item := range t {
			v, err := ToBson(item)
			if err != nil {
				return Value{}, err
			}
			if err := arr.Add(v); err != nil {
				return Value{}, err
			}
		}
		return arr, nil
	case primitive.E:
		doc := Document()
		v, err := ToBson(t.Value)
		if err != nil {
			return Value{}, err
		}
		if err := doc.AddKV(t.Key, v); err != nil {
			return Value{}, err
		}
		return doc, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		return ToBson(rv.Elem().Interface())
	case reflect.Map:
		doc := Document()
		iter := rv.MapRange()
		for iter.Next() {
			v, err := ToBson(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			if err := doc.AddKV(fmt.Sprint(iter.Key().Interface()), v); err != nil {
				return Value{}, err
			}
		}
		return doc, nil
	case reflect.Slice, reflect.Array:
		arr, _ := NewArray()
		for i := 0; i < rv.Len(); i++ {
			v, err := ToBson(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			if err := arr.Add(v); err != nil {
				return Value{}, err
			}
		}
		return arr, nil
	case reflect.Struct:
		return Marshal(x)
	}

	return Value{}, fmt.Errorf("bson: cannot convert %T to a Value", x)
}
