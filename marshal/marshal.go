// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package marshal converts between native Go data and the expression
// value model. It is a boundary helper: solver clients use it to read
// solutions into their own structs and to lift native data into
// literals, and the symbolic core itself never depends on it.
package marshal

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"karma.run/sym/err"
	"karma.run/sym/val"
)

func modeling(format string, args ...interface{}) err.Error {
	return err.ModelingError{Problem: fmt.Sprintf(format, args...)}
}

// Unmarshal writes the named values into the exported fields of the
// struct target points to. Names match fields case-insensitively. A
// name that matches no settable field, or that matches more than one,
// is a ModelingError. Fields without a matching name keep their zero
// value.
func Unmarshal(values map[string]val.Value, target interface{}) err.Error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return modeling(`unmarshal target must be a non-nil pointer to a struct, have %T`, target)
	}
	sv := rv.Elem()
	st := sv.Type()
	for name, v := range values {
		index := -1
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.IsExported() || !strings.EqualFold(f.Name, name) {
				continue
			}
			if index != -1 {
				return modeling(`name %q is ambiguous: matches fields %s and %s`, name, st.Field(index).Name, f.Name)
			}
			index = i
		}
		if index == -1 {
			return modeling(`name %q matches no field of %s`, name, st)
		}
		if e := assign(sv.Field(index), v); e != nil {
			return e
		}
	}
	return nil
}

// assign converts one expression value into the native field.
func assign(field reflect.Value, v val.Value) err.Error {
	switch v := v.(type) {
	case val.Bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(bool(v))
			return nil
		}
	case val.Char:
		if field.Kind() == reflect.Int32 {
			field.SetInt(int64(v))
			return nil
		}
	case val.String:
		if field.Kind() == reflect.String {
			field.SetString(string(v))
			return nil
		}
	case val.Int:
		if field.Type() == reflect.TypeOf((*big.Int)(nil)) {
			field.Set(reflect.ValueOf(new(big.Int).Set(v.Int)))
			return nil
		}
	case val.Int8, val.Int16, val.Int32, val.Int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i := reflect.ValueOf(v).Int()
			if field.OverflowInt(i) {
				return modeling(`value %v overflows field type %s`, v, field.Type())
			}
			field.SetInt(i)
			return nil
		}
	case val.Uint8, val.Uint16, val.Uint32, val.Uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := reflect.ValueOf(v).Uint()
			if field.OverflowUint(u) {
				return modeling(`value %v overflows field type %s`, v, field.Type())
			}
			field.SetUint(u)
			return nil
		}
	case val.List:
		if field.Kind() == reflect.Slice {
			out := reflect.MakeSlice(field.Type(), len(v), len(v))
			for i, w := range v {
				if e := assign(out.Index(i), w); e != nil {
					return e
				}
			}
			field.Set(out)
			return nil
		}
	case val.Tuple:
		if field.Kind() == reflect.Struct && field.NumField() == len(v) {
			for i, w := range v {
				if e := assign(field.Field(i), w); e != nil {
					return e
				}
			}
			return nil
		}
	case val.Struct:
		if field.Kind() == reflect.Struct {
			values := make(map[string]val.Value, v.Len())
			v.ForEach(func(k string, w val.Value) bool {
				values[k] = w
				return true
			})
			return Unmarshal(values, field.Addr().Interface())
		}
	case val.Option:
		if field.Kind() == reflect.Ptr {
			if !v.Present {
				field.Set(reflect.Zero(field.Type()))
				return nil
			}
			out := reflect.New(field.Type().Elem())
			if e := assign(out.Elem(), v.Value); e != nil {
				return e
			}
			field.Set(out)
			return nil
		}
	case val.Map:
		if field.Kind() == reflect.Map {
			out := reflect.MakeMapWithSize(field.Type(), v.Len())
			var le err.Error
			v.ForEach(func(k, w val.Value) bool {
				kv := reflect.New(field.Type().Key()).Elem()
				if le = assign(kv, k); le != nil {
					return false
				}
				wv := reflect.New(field.Type().Elem()).Elem()
				if le = assign(wv, w); le != nil {
					return false
				}
				out.SetMapIndex(kv, wv)
				return true
			})
			if le != nil {
				return le
			}
			field.Set(out)
			return nil
		}
	case val.DefaultMap:
		// only the effective non-default entries cross the boundary
		if field.Kind() == reflect.Map {
			keys := v.Keys()
			out := reflect.MakeMapWithSize(field.Type(), len(keys))
			for _, k := range keys {
				kv := reflect.New(field.Type().Key()).Elem()
				if e := assign(kv, k); e != nil {
					return e
				}
				wv := reflect.New(field.Type().Elem()).Elem()
				if e := assign(wv, v.Get(k)); e != nil {
					return e
				}
				out.SetMapIndex(kv, wv)
			}
			field.Set(out)
			return nil
		}
	}
	return modeling(`cannot assign %T to field type %s`, v, field.Type())
}

// Value lifts native Go data into the value model. Signed integer
// kinds map to their sized counterparts, int and rune included, so a
// Go rune becomes a Char only through an explicit val.Char.
func Value(native interface{}) (val.Value, err.Error) {
	if native == nil {
		return nil, modeling(`cannot marshal nil`)
	}
	if v, ok := native.(val.Value); ok {
		return v.Copy(), nil
	}
	if b, ok := native.(*big.Int); ok {
		return val.IntFromBig(new(big.Int).Set(b)), nil
	}
	rv := reflect.ValueOf(native)
	switch rv.Kind() {
	case reflect.Bool:
		return val.Bool(rv.Bool()), nil
	case reflect.String:
		return val.String(rv.String()), nil
	case reflect.Int8:
		return val.Int8(rv.Int()), nil
	case reflect.Int16:
		return val.Int16(rv.Int()), nil
	case reflect.Int32:
		return val.Int32(rv.Int()), nil
	case reflect.Int, reflect.Int64:
		return val.Int64(rv.Int()), nil
	case reflect.Uint8:
		return val.Uint8(rv.Uint()), nil
	case reflect.Uint16:
		return val.Uint16(rv.Uint()), nil
	case reflect.Uint32:
		return val.Uint32(rv.Uint()), nil
	case reflect.Uint, reflect.Uint64:
		return val.Uint64(rv.Uint()), nil
	case reflect.Slice, reflect.Array:
		out := make(val.List, rv.Len())
		for i := range out {
			w, e := Value(rv.Index(i).Interface())
			if e != nil {
				return nil, e
			}
			out[i] = w
		}
		return out, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return val.None, nil
		}
		w, e := Value(rv.Elem().Interface())
		if e != nil {
			return nil, e
		}
		return val.Some(w), nil
	case reflect.Map:
		out := val.NewMap(rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, e := Value(iter.Key().Interface())
			if e != nil {
				return nil, e
			}
			w, e := Value(iter.Value().Interface())
			if e != nil {
				return nil, e
			}
			out.Set(k, w)
		}
		return out, nil
	case reflect.Struct:
		rt := rv.Type()
		out := val.NewStruct(rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			w, e := Value(rv.Field(i).Interface())
			if e != nil {
				return nil, e
			}
			out.Set(f.Name, w)
		}
		return out, nil
	}
	return nil, modeling(`cannot marshal %T into the value model`, native)
}
