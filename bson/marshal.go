package bson

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fieldTag struct {
	name      string
	omitempty bool
	skip      bool
}

func parseTag(f reflect.StructField) fieldTag {
	raw, ok := f.Tag.Lookup("bson")
	if !ok {
		return fieldTag{name: f.Name}
	}
	if raw == "-" {
		return fieldTag{skip: true}
	}
	parts := strings.Split(raw, ",")
	ft := fieldTag{name: parts[0]}
	if ft.name == "" {
		ft.name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			ft.omitempty = true
		}
	}
	return ft
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Struct:
		if t, ok := rv.Interface().(time.Time); ok {
			return t.IsZero()
		}
	}
	return false
}

// Marshal converts a Go struct (or pointer to struct) into a document
// Value, using `bson:"name,omitempty"` struct tags exactly as the
// official driver does: the first tag segment renames the field, a
// trailing "omitempty" option drops zero-valued fields, and "-" skips
// the field entirely.
func Marshal(x interface{}) (Value, error) {
	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ToBson(x)
	}
	doc := Document()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := parseTag(f)
		if tag.skip {
			continue
		}
		fv := rv.Field(i)
		if tag.omitempty && isEmptyValue(fv) {
			continue
		}
		v, err := ToBson(fv.Interface())
		if err != nil {
			return Value{}, fmt.Errorf("bson: field %s: %w", f.Name, err)
		}
		if err := doc.AddKV(tag.name, v); err != nil {
			return Value{}, err
		}
	}
	return doc, nil
}

// Unmarshal decodes document Value v into the struct pointed to by out,
// following the same `bson:"name,omitempty"` tag rules as Marshal: an
// absent key on an `omitempty` field is permitted and leaves the field
// at its zero value; an absent key on a non-`omitempty` field fails
// with ErrMissingKey.
func Unmarshal(v Value, out interface{}) error {
	if !v.IsDocument() {
		return ErrKindMismatch
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bson: Unmarshal requires a non-nil pointer")
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := parseTag(f)
		if tag.skip {
			continue
		}
		fv := rv.Field(i)
		elemVal, err := v.Get(tag.name)
		if err != nil {
			return err
		}
		if !v.Contains(tag.name) || elemVal.IsNil() {
			if !tag.omitempty {
				return ErrMissingKey
			}
			continue
		}
		if err := assign(fv, elemVal); err != nil {
			return fmt.Errorf("bson: field %s: %w", f.Name, err)
		}
	}
	return nil
}

func assign(fv reflect.Value, v Value) error {
	switch fv.Kind() {
	case reflect.Ptr:
		if v.Type() == TypeNull {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return assign(fv.Elem(), v)
	case reflect.Struct:
		if t, ok := fv.Addr().Interface().(*time.Time); ok {
			tv, err := v.ToTime()
			if err != nil {
				return err
			}
			*t = tv
			return nil
		}
		if oid, ok := fv.Addr().Interface().(*primitive.ObjectID); ok {
			idv, err := v.ToObjectID()
			if err != nil {
				return err
			}
			*oid = idv
			return nil
		}
		if !v.IsDocument() {
			return ErrKindMismatch
		}
		return Unmarshal(v, fv.Addr().Interface())
	case reflect.Map:
		if !v.IsDocument() {
			return ErrKindMismatch
		}
		m := reflect.MakeMap(fv.Type())
		for _, e := range v.doc.elems {
			elemPtr := reflect.New(fv.Type().Elem())
			if err := assign(elemPtr.Elem(), e.val); err != nil {
				return err
			}
			m.SetMapIndex(reflect.ValueOf(e.key), elemPtr.Elem())
		}
		fv.Set(m)
		return nil
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			b, err := v.ToBinary()
			if err != nil {
				return err
			}
			fv.SetBytes(b.Data)
			return nil
		}
		if !v.IsArray() {
			return ErrKindMismatch
		}
		items := v.arr.items
		out := reflect.MakeSlice(fv.Type(), len(items), len(items))
		for i, it := range items {
			if err := assign(out.Index(i), it); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	case reflect.String:
		s, err := v.ToString()
		if err != nil {
			return err
		}
		fv.SetString(s)
		return nil
	case reflect.Bool:
		b, err := v.ToBool()
		if err != nil {
			return err
		}
		fv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := v.ToInt64()
		if err != nil {
			return err
		}
		fv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := v.ToInt64()
		if err != nil {
			return err
		}
		fv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := v.ToFloat()
		if err != nil {
			return err
		}
		fv.SetFloat(f)
		return nil
	case reflect.Interface:
		fv.Set(reflect.ValueOf(v.Native()))
		return nil
	}
	return fmt.Errorf("bson: unsupported field kind %s", fv.Kind())
}
