// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package typ

import (
	"sort"

	"karma.run/sym/val"
)

// Type represents a possibly nested data type.
type Type interface {

	// Copy copies a Type tree.
	Copy() Type

	// Transform traverses a Type tree and returns the result
	// of mapping each of its nodes through function f.
	Transform(f func(Type) Type) Type

	// Zero returns the zero value for the current type. It doubles as
	// the default value of default-valued maps over this value type.
	Zero() val.Value

	// Equals reports wether a Type tree equals another.
	Equals(Type) bool

	// ValueType returns the top-level val.Type of this type's values.
	ValueType() val.Type
}

func TransformIdentity(t Type) Type {
	return t
}

type Bool struct{}

func (Bool) Copy() Type                         { return Bool{} }
func (t Bool) Transform(f func(Type) Type) Type { return f(t) }
func (Bool) Zero() val.Value                    { return val.Bool(false) }
func (Bool) Equals(t Type) bool                 { _, ok := t.(Bool); return ok }
func (Bool) ValueType() val.Type                { return val.TypeBool }

type Char struct{}

func (Char) Copy() Type                         { return Char{} }
func (t Char) Transform(f func(Type) Type) Type { return f(t) }
func (Char) Zero() val.Value                    { return val.Char(0) }
func (Char) Equals(t Type) bool                 { _, ok := t.(Char); return ok }
func (Char) ValueType() val.Type                { return val.TypeChar }

type String struct{}

func (String) Copy() Type                         { return String{} }
func (t String) Transform(f func(Type) Type) Type { return f(t) }
func (String) Zero() val.Value                    { return val.String("") }
func (String) Equals(t Type) bool                 { _, ok := t.(String); return ok }
func (String) ValueType() val.Type                { return val.TypeString }

// Int is the arbitrary-precision integer type.
type Int struct{}

func (Int) Copy() Type                         { return Int{} }
func (t Int) Transform(f func(Type) Type) Type { return f(t) }
func (Int) Zero() val.Value                    { return val.NewInt(0) }
func (Int) Equals(t Type) bool                 { _, ok := t.(Int); return ok }
func (Int) ValueType() val.Type                { return val.TypeInt }

type Int8 struct{}

func (Int8) Copy() Type                         { return Int8{} }
func (t Int8) Transform(f func(Type) Type) Type { return f(t) }
func (Int8) Zero() val.Value                    { return val.Int8(0) }
func (Int8) Equals(t Type) bool                 { _, ok := t.(Int8); return ok }
func (Int8) ValueType() val.Type                { return val.TypeInt8 }

type Int16 struct{}

func (Int16) Copy() Type                         { return Int16{} }
func (t Int16) Transform(f func(Type) Type) Type { return f(t) }
func (Int16) Zero() val.Value                    { return val.Int16(0) }
func (Int16) Equals(t Type) bool                 { _, ok := t.(Int16); return ok }
func (Int16) ValueType() val.Type                { return val.TypeInt16 }

type Int32 struct{}

func (Int32) Copy() Type                         { return Int32{} }
func (t Int32) Transform(f func(Type) Type) Type { return f(t) }
func (Int32) Zero() val.Value                    { return val.Int32(0) }
func (Int32) Equals(t Type) bool                 { _, ok := t.(Int32); return ok }
func (Int32) ValueType() val.Type                { return val.TypeInt32 }

type Int64 struct{}

func (Int64) Copy() Type                         { return Int64{} }
func (t Int64) Transform(f func(Type) Type) Type { return f(t) }
func (Int64) Zero() val.Value                    { return val.Int64(0) }
func (Int64) Equals(t Type) bool                 { _, ok := t.(Int64); return ok }
func (Int64) ValueType() val.Type                { return val.TypeInt64 }

type Uint8 struct{}

func (Uint8) Copy() Type                         { return Uint8{} }
func (t Uint8) Transform(f func(Type) Type) Type { return f(t) }
func (Uint8) Zero() val.Value                    { return val.Uint8(0) }
func (Uint8) Equals(t Type) bool                 { _, ok := t.(Uint8); return ok }
func (Uint8) ValueType() val.Type                { return val.TypeUint8 }

type Uint16 struct{}

func (Uint16) Copy() Type                         { return Uint16{} }
func (t Uint16) Transform(f func(Type) Type) Type { return f(t) }
func (Uint16) Zero() val.Value                    { return val.Uint16(0) }
func (Uint16) Equals(t Type) bool                 { _, ok := t.(Uint16); return ok }
func (Uint16) ValueType() val.Type                { return val.TypeUint16 }

type Uint32 struct{}

func (Uint32) Copy() Type                         { return Uint32{} }
func (t Uint32) Transform(f func(Type) Type) Type { return f(t) }
func (Uint32) Zero() val.Value                    { return val.Uint32(0) }
func (Uint32) Equals(t Type) bool                 { _, ok := t.(Uint32); return ok }
func (Uint32) ValueType() val.Type                { return val.TypeUint32 }

type Uint64 struct{}

func (Uint64) Copy() Type                         { return Uint64{} }
func (t Uint64) Transform(f func(Type) Type) Type { return f(t) }
func (Uint64) Zero() val.Value                    { return val.Uint64(0) }
func (Uint64) Equals(t Type) bool                 { _, ok := t.(Uint64); return ok }
func (Uint64) ValueType() val.Type                { return val.TypeUint64 }

type List struct {
	Elements Type
}

func (t List) Copy() Type {
	return List{t.Elements.Copy()}
}
func (t List) Transform(f func(Type) Type) Type {
	return f(List{t.Elements.Transform(f)})
}
func (List) Zero() val.Value {
	return val.List{}
}
func (t List) Equals(u Type) bool {
	q, ok := u.(List)
	return ok && t.Elements.Equals(q.Elements)
}
func (List) ValueType() val.Type {
	return val.TypeList
}

type Tuple []Type

func (t Tuple) Copy() Type {
	c := make(Tuple, len(t), len(t))
	for i, u := range t {
		c[i] = u.Copy()
	}
	return c
}
func (t Tuple) Transform(f func(Type) Type) Type {
	c := make(Tuple, len(t), len(t))
	for i, u := range t {
		c[i] = u.Transform(f)
	}
	return f(c)
}
func (t Tuple) Zero() val.Value {
	z := make(val.Tuple, len(t), len(t))
	for i, u := range t {
		z[i] = u.Zero()
	}
	return z
}
func (t Tuple) Equals(u Type) bool {
	q, ok := u.(Tuple)
	if !ok || len(t) != len(q) {
		return false
	}
	for i := range t {
		if !t[i].Equals(q[i]) {
			return false
		}
	}
	return true
}
func (Tuple) ValueType() val.Type {
	return val.TypeTuple
}

// Struct is a record type with named fields. Fields are kept sorted
// by name.
type Struct struct {
	keys  []string
	types []Type
}

func NewStruct(fields map[string]Type) Struct {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	types := make([]Type, len(keys), len(keys))
	for i, k := range keys {
		types[i] = fields[k]
	}
	return Struct{keys, types}
}

func (t Struct) Len() int {
	return len(t.keys)
}

func (t Struct) Field(k string) (Type, bool) {
	i := sort.SearchStrings(t.keys, k)
	if i == len(t.keys) || t.keys[i] != k {
		return nil, false
	}
	return t.types[i], true
}

func (t Struct) Keys() []string {
	ks := make([]string, len(t.keys))
	copy(ks, t.keys)
	return ks
}

func (t Struct) ForEach(f func(string, Type) bool) {
	for i, k := range t.keys {
		if !f(k, t.types[i]) {
			break
		}
	}
}

func (t Struct) Copy() Type {
	c := Struct{make([]string, len(t.keys)), make([]Type, len(t.types))}
	copy(c.keys, t.keys)
	for i, u := range t.types {
		c.types[i] = u.Copy()
	}
	return c
}
func (t Struct) Transform(f func(Type) Type) Type {
	c := t.Copy().(Struct)
	for i, u := range c.types {
		c.types[i] = u.Transform(f)
	}
	return f(c)
}
func (t Struct) Zero() val.Value {
	z := val.NewStruct(len(t.keys))
	for i, k := range t.keys {
		z.Set(k, t.types[i].Zero())
	}
	return z
}
func (t Struct) Equals(u Type) bool {
	q, ok := u.(Struct)
	if !ok || len(t.keys) != len(q.keys) {
		return false
	}
	for i, k := range t.keys {
		if q.keys[i] != k || !t.types[i].Equals(q.types[i]) {
			return false
		}
	}
	return true
}
func (Struct) ValueType() val.Type {
	return val.TypeStruct
}

type Option struct {
	Elements Type
}

func (t Option) Copy() Type {
	return Option{t.Elements.Copy()}
}
func (t Option) Transform(f func(Type) Type) Type {
	return f(Option{t.Elements.Transform(f)})
}
func (Option) Zero() val.Value {
	return val.None
}
func (t Option) Equals(u Type) bool {
	q, ok := u.(Option)
	return ok && t.Elements.Equals(q.Elements)
}
func (Option) ValueType() val.Type {
	return val.TypeOption
}

type Map struct {
	Key   Type
	Value Type
}

func (t Map) Copy() Type {
	return Map{t.Key.Copy(), t.Value.Copy()}
}
func (t Map) Transform(f func(Type) Type) Type {
	return f(Map{t.Key.Transform(f), t.Value.Transform(f)})
}
func (Map) Zero() val.Value {
	return val.NewMap(0)
}
func (t Map) Equals(u Type) bool {
	q, ok := u.(Map)
	return ok && t.Key.Equals(q.Key) && t.Value.Equals(q.Value)
}
func (Map) ValueType() val.Type {
	return val.TypeMap
}

type DefaultMap struct {
	Key   Type
	Value Type
}

func (t DefaultMap) Copy() Type {
	return DefaultMap{t.Key.Copy(), t.Value.Copy()}
}
func (t DefaultMap) Transform(f func(Type) Type) Type {
	return f(DefaultMap{t.Key.Transform(f), t.Value.Transform(f)})
}
func (t DefaultMap) Zero() val.Value {
	return val.NewDefaultMap(t.Value.Zero())
}
func (t DefaultMap) Equals(u Type) bool {
	q, ok := u.(DefaultMap)
	return ok && t.Key.Equals(q.Key) && t.Value.Equals(q.Value)
}
func (DefaultMap) ValueType() val.Type {
	return val.TypeDefaultMap
}
