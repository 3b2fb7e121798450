// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package typ

import (
	"testing"

	"karma.run/sym/val"
)

func TestConforms(t *testing.T) {
	{
		if !Conforms(Int64{}, val.Int64(1)) {
			t.Fatal("int64 value in int64 type")
		}
		if Conforms(Int64{}, val.Int32(1)) {
			t.Fatal("sized integers do not cross widths")
		}
		if Conforms(Int64{}, nil) {
			t.Fatal("nil conforms to nothing")
		}
	}
	{
		tt := Tuple{Int64{}, Bool{}}
		if !Conforms(tt, val.Tuple{val.Int64(1), val.Bool(true)}) {
			t.Fatal("matching tuple")
		}
		if Conforms(tt, val.Tuple{val.Int64(1)}) {
			t.Fatal("arity mismatch")
		}
	}
	{
		st := NewStruct(map[string]Type{"a": Int64{}, "b": Bool{}})
		v := val.NewStruct(2)
		v.Set("a", val.Int64(1))
		v.Set("b", val.Bool(false))
		if !Conforms(st, v) {
			t.Fatal("matching struct")
		}
		w := val.NewStruct(1)
		w.Set("a", val.Int64(1))
		if Conforms(st, w) {
			t.Fatal("missing field")
		}
	}
	{
		ot := Option{Elements: Int64{}}
		if !Conforms(ot, val.None) {
			t.Fatal("absent option conforms regardless of element type")
		}
		if !Conforms(ot, val.Some(val.Int64(1))) {
			t.Fatal("present option")
		}
		if Conforms(ot, val.Some(val.Bool(true))) {
			t.Fatal("present option of the wrong element type")
		}
	}
	{
		dt := DefaultMap{Key: Int64{}, Value: Bool{}}
		m := val.NewDefaultMap(val.Bool(false)).Set(val.Int64(1), val.Bool(true))
		if !Conforms(dt, m) {
			t.Fatal("matching default map")
		}
		if Conforms(dt, val.NewDefaultMap(val.Int64(0))) {
			t.Fatal("default of the wrong type")
		}
	}
}

func TestValidateNesting(t *testing.T) {
	{
		ok := Tuple{
			Map{Key: String{}, Value: Int64{}},
			DefaultMap{Key: Int64{}, Value: Bool{}},
		}
		if e := ValidateNesting(ok); e != nil {
			t.Fatalf("maps inside tuples are fine: %v", e)
		}
	}
	{
		bad := List{Elements: Map{Key: String{}, Value: Int64{}}}
		if e := ValidateNesting(bad); e == nil {
			t.Fatal("maps may not be sequence elements")
		}
	}
	{
		bad := Map{Key: String{}, Value: DefaultMap{Key: Int64{}, Value: Bool{}}}
		if e := ValidateNesting(bad); e == nil {
			t.Fatal("maps may not nest inside maps")
		}
	}
	{
		bad := DefaultMap{Key: Map{Key: String{}, Value: Bool{}}, Value: Int64{}}
		if e := ValidateNesting(bad); e == nil {
			t.Fatal("maps may not be map keys")
		}
	}
}

func TestTypeFromValue(t *testing.T) {
	{
		ty, ok := TypeFromValue(val.Uint32(1))
		if !ok || !ty.Equals(Uint32{}) {
			t.Fatalf("%#v %v", ty, ok)
		}
	}
	{
		ty, ok := TypeFromValue(val.Tuple{val.Int64(1), val.String("x")})
		if !ok || !ty.Equals(Tuple{Int64{}, String{}}) {
			t.Fatalf("%#v %v", ty, ok)
		}
	}
	{
		// empty composites cannot determine their element type
		if _, ok := TypeFromValue(val.List{}); ok {
			t.Fatal("empty list")
		}
		if _, ok := TypeFromValue(val.None); ok {
			t.Fatal("absent option")
		}
		if _, ok := TypeFromValue(val.NewDefaultMap(val.Int64(0))); ok {
			t.Fatal("untouched default map has no key type")
		}
	}
	{
		m := val.NewDefaultMap(val.Bool(false)).Set(val.Int64(1), val.Bool(true))
		ty, ok := TypeFromValue(m)
		if !ok || !ty.Equals(DefaultMap{Key: Int64{}, Value: Bool{}}) {
			t.Fatalf("%#v %v", ty, ok)
		}
	}
}

func TestZero(t *testing.T) {
	for _, c := range []struct {
		t Type
		z val.Value
	}{
		{Bool{}, val.Bool(false)},
		{Int64{}, val.Int64(0)},
		{String{}, val.String("")},
		{Option{Elements: Int64{}}, val.None},
		{Tuple{Int64{}, Bool{}}, val.Tuple{val.Int64(0), val.Bool(false)}},
		{List{Elements: Int64{}}, val.List{}},
	} {
		if z := c.t.Zero(); !z.Equals(c.z) {
			t.Fatalf("zero of %s: %#v", c.t.ValueType(), z)
		}
	}
	{
		z := DefaultMap{Key: Int64{}, Value: Int64{}}.Zero().(val.DefaultMap)
		if z.Len() != 0 || !z.Default().Equals(val.Int64(0)) {
			t.Fatalf("%#v", z)
		}
	}
}
