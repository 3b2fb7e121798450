// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

import (
	"math/big"
)

//go:generate go run ../generate/logmap/main.go --package val --key string --value Value --output logmap_generated.go

type Value interface {
	Copy() Value
	Equals(Value) bool
	Transform(func(Value) Value) Value
	Primitive() bool
	Type() Type
}

func TransformIdentity(v Value) Value {
	return v
}

type Bool bool

const (
	True  = Bool(true)
	False = Bool(false)
)

func (v Bool) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Bool) Copy() Value {
	return x
}

func (b Bool) Equals(v Value) bool {
	return b == v
}

func (v Bool) Primitive() bool {
	return true
}

type String string

func (v String) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x String) Copy() Value {
	return x
}

func (s String) Equals(v Value) bool {
	q, ok := v.(String)
	return ok && s == q
}

func (s String) String() string {
	return string(s)
}

func (v String) Primitive() bool {
	return true
}

type Char rune

func (v Char) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Char) Copy() Value {
	return x
}

func (c Char) Equals(v Value) bool {
	return c == v
}

func (Char) Primitive() bool {
	return true
}

// Int is an arbitrary-precision integer. The embedded big.Int is
// treated as immutable: operations always allocate a fresh one.
type Int struct {
	*big.Int
}

func NewInt(n int64) Int {
	return Int{big.NewInt(n)}
}

func IntFromBig(b *big.Int) Int {
	return Int{new(big.Int).Set(b)}
}

func (v Int) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Int) Copy() Value {
	return Int{new(big.Int).Set(x.Int)}
}

func (i Int) Equals(v Value) bool {
	q, ok := v.(Int)
	return ok && i.Int.Cmp(q.Int) == 0
}

func (Int) Primitive() bool {
	return true
}

type Tuple []Value

func (v Tuple) Transform(f func(Value) Value) Value {
	for i, w := range v {
		v[i] = w.Transform(f)
	}
	return f(v)
}

func (l Tuple) Equals(v Value) bool {
	q, ok := v.(Tuple)
	if !ok {
		return false
	}
	if len(l) != len(q) {
		return false
	}
	for i := 0; i < len(l); i++ {
		if !l[i].Equals(q[i]) {
			return false
		}
	}
	return true
}

func (v Tuple) Copy() Value {
	c := make(Tuple, len(v), len(v))
	for i, w := range v {
		c[i] = w.Copy()
	}
	return c
}

func (v Tuple) Primitive() bool {
	return false
}

type List []Value

func (v List) Transform(f func(Value) Value) Value {
	for i, w := range v {
		v[i] = w.Transform(f)
	}
	return f(v)
}

func (l List) Equals(v Value) bool {
	q, ok := v.(List)
	if !ok {
		return false
	}
	if len(l) != len(q) {
		return false
	}
	for i := 0; i < len(l); i++ {
		if !l[i].Equals(q[i]) {
			return false
		}
	}
	return true
}

func (v List) Copy() Value {
	c := make(List, len(v), len(v))
	for i, w := range v {
		c[i] = w.Copy()
	}
	return c
}

func (v List) Primitive() bool {
	return false
}

// Option is a value that may be absent. An absent Option carries a nil
// Value.
type Option struct {
	Present bool
	Value   Value
}

func Some(v Value) Option {
	return Option{true, v}
}

var None = Option{}

func (v Option) Transform(f func(Value) Value) Value {
	if !v.Present {
		return f(v)
	}
	return f(Option{true, v.Value.Transform(f)})
}

func (o Option) Copy() Value {
	if !o.Present {
		return o
	}
	return Option{true, o.Value.Copy()}
}

func (o Option) Equals(v Value) bool {
	q, ok := v.(Option)
	if !ok {
		return false
	}
	if !o.Present || !q.Present {
		return o.Present == q.Present
	}
	return o.Value.Equals(q.Value)
}

func (Option) Primitive() bool {
	return false
}

type Struct struct{ lm *logMapStringValue }

func NewStruct(capacity int) Struct {
	return Struct{newlogMapStringValue(capacity)}
}

func StructFromMap(m map[string]Value) Struct {
	v := NewStruct(len(m))
	for k, w := range m {
		v.Set(k, w)
	}
	return v
}

func (v Struct) Len() int {
	return v.lm.len()
}

func (v Struct) Field(k string) Value {
	w, ok := v.lm.get(k)
	if !ok {
		return nil
	}
	return w
}

func (v Struct) Get(k string) (Value, bool) {
	return v.lm.get(k)
}

func (v *Struct) Set(k string, w Value) {
	v.lm.set(k, w)
}

func (v Struct) Transform(f func(Value) Value) Value {
	v.lm.overMap(func(k string, v Value) Value {
		return v.Transform(f)
	})
	return f(v)
}

func (v Struct) ForEach(f func(string, Value) bool) {
	v.lm.forEach(f)
}

func (v Struct) Copy() Value {
	c := v.lm.copy()
	c.overMap(func(k string, v Value) Value {
		return v.Copy()
	})
	return Struct{c}
}

func (v Struct) Equals(w Value) bool {
	x, ok := w.(Struct)
	if !ok {
		return false
	}
	if !v.lm.sameKeys(x.lm) {
		return false
	}
	eq := true
	v.lm.forEach(func(k string, v Value) bool {
		w, _ := x.lm.get(k)
		eq = v.Equals(w)
		return eq
	})
	return eq
}

func (v Struct) Keys() []string {
	return v.lm.keys()
}

func (v Struct) Primitive() bool {
	return false
}

type Int8 int8

func (v Int8) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Int8) Copy() Value {
	return x
}

func (i Int8) Equals(v Value) bool {
	return i == v
}

func (Int8) Primitive() bool {
	return true
}

type Int16 int16

func (v Int16) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Int16) Copy() Value {
	return x
}

func (i Int16) Equals(v Value) bool {
	return i == v
}

func (Int16) Primitive() bool {
	return true
}

type Int32 int32

func (v Int32) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Int32) Copy() Value {
	return x
}

func (i Int32) Equals(v Value) bool {
	return i == v
}

func (Int32) Primitive() bool {
	return true
}

type Int64 int64

func (v Int64) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Int64) Copy() Value {
	return x
}

func (i Int64) Equals(v Value) bool {
	return i == v
}

func (Int64) Primitive() bool {
	return true
}

type Uint8 uint8

func (v Uint8) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Uint8) Copy() Value {
	return x
}

func (i Uint8) Equals(v Value) bool {
	return i == v
}

func (Uint8) Primitive() bool {
	return true
}

type Uint16 uint16

func (v Uint16) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Uint16) Copy() Value {
	return x
}

func (i Uint16) Equals(v Value) bool {
	return i == v
}

func (Uint16) Primitive() bool {
	return true
}

type Uint32 uint32

func (v Uint32) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Uint32) Copy() Value {
	return x
}

func (i Uint32) Equals(v Value) bool {
	return i == v
}

func (Uint32) Primitive() bool {
	return true
}

type Uint64 uint64

func (v Uint64) Transform(f func(Value) Value) Value {
	return f(v)
}

func (x Uint64) Copy() Value {
	return x
}

func (i Uint64) Equals(v Value) bool {
	return i == v
}

func (Uint64) Primitive() bool {
	return true
}
