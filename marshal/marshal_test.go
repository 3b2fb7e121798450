// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package marshal

import (
	"math/big"
	"testing"

	"karma.run/sym/val"
)

func TestUnmarshal(t *testing.T) {
	{
		out := struct {
			Name  string
			Count int64
			Ready bool
		}{}
		e := Unmarshal(map[string]val.Value{
			"name":  val.String("widget"),
			"count": val.Int64(42),
		}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Name != "widget" || out.Count != 42 {
			t.Fatalf("%#v", out)
		}
		if out.Ready {
			t.Fatal("unmatched fields keep their zero value")
		}
	}
	{
		out := struct{ X int8 }{}
		if e := Unmarshal(map[string]val.Value{"x": val.Int64(1000)}, &out); e == nil {
			t.Fatal("overflowing assignment must be rejected")
		}
	}
	{
		out := struct{ X int64 }{}
		e := Unmarshal(map[string]val.Value{"y": val.Int64(1)}, &out)
		if e == nil {
			t.Fatal("unmatched name must be rejected")
		}
		if e.Kind() != "modelingError" {
			t.Fatalf("error kind: %s", e.Kind())
		}
	}
	{
		out := struct {
			Value int64
			VALUE int64
		}{}
		if e := Unmarshal(map[string]val.Value{"value": val.Int64(1)}, &out); e == nil {
			t.Fatal("ambiguous name must be rejected")
		}
	}
	{
		out := struct{ X int64 }{}
		if e := Unmarshal(nil, out); e == nil {
			t.Fatal("non-pointer target must be rejected")
		}
	}
}

func TestUnmarshalComposites(t *testing.T) {
	{
		out := struct {
			Point struct {
				X, Y int64
			}
			Tags []string
		}{}
		point := val.NewStruct(2)
		point.Set("x", val.Int64(3))
		point.Set("y", val.Int64(4))
		e := Unmarshal(map[string]val.Value{
			"point": point,
			"tags":  val.List{val.String("a"), val.String("b")},
		}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Point.X != 3 || out.Point.Y != 4 {
			t.Fatalf("%#v", out.Point)
		}
		if len(out.Tags) != 2 || out.Tags[1] != "b" {
			t.Fatalf("%#v", out.Tags)
		}
	}
	{
		out := struct{ Pair struct{ A, B int64 } }{}
		e := Unmarshal(map[string]val.Value{
			"pair": val.Tuple{val.Int64(1), val.Int64(2)},
		}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Pair.A != 1 || out.Pair.B != 2 {
			t.Fatalf("%#v", out.Pair)
		}
	}
	{
		out := struct{ Hint *int64 }{}
		e := Unmarshal(map[string]val.Value{"hint": val.Some(val.Int64(9))}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Hint == nil || *out.Hint != 9 {
			t.Fatalf("%#v", out.Hint)
		}
		e = Unmarshal(map[string]val.Value{"hint": val.None}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Hint != nil {
			t.Fatal("absent option must reset the pointer")
		}
	}
	{
		out := struct{ Big *big.Int }{}
		e := Unmarshal(map[string]val.Value{"big": val.IntFromBig(big.NewInt(1234))}, &out)
		if e != nil {
			t.Fatal(e)
		}
		if out.Big.Cmp(big.NewInt(1234)) != 0 {
			t.Fatalf("%v", out.Big)
		}
	}
}

func TestUnmarshalMaps(t *testing.T) {
	{
		out := struct{ Scores map[string]int64 }{}
		m := val.NewMap(2)
		m.Set(val.String("a"), val.Int64(1))
		m.Set(val.String("b"), val.Int64(2))
		if e := Unmarshal(map[string]val.Value{"scores": m}, &out); e != nil {
			t.Fatal(e)
		}
		if len(out.Scores) != 2 || out.Scores["b"] != 2 {
			t.Fatalf("%#v", out.Scores)
		}
	}
	{
		// a default-valued map lands as its non-default entries
		out := struct{ Credit map[int64]int64 }{}
		m := val.NewDefaultMap(val.Int64(0)).
			Set(val.Int64(1), val.Int64(10)).
			Set(val.Int64(2), val.Int64(0))
		if e := Unmarshal(map[string]val.Value{"credit": m}, &out); e != nil {
			t.Fatal(e)
		}
		if len(out.Credit) != 1 || out.Credit[1] != 10 {
			t.Fatalf("%#v", out.Credit)
		}
	}
}

func TestValue(t *testing.T) {
	{
		v, e := Value(int64(42))
		if e != nil || !v.Equals(val.Int64(42)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		// Go ints and runes are sized integers, not chars
		v, e := Value(rune('a'))
		if e != nil || !v.Equals(val.Int32('a')) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := Value([]string{"x", "y"})
		if e != nil || !v.Equals(val.List{val.String("x"), val.String("y")}) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		n := int64(5)
		v, e := Value(&n)
		if e != nil || !v.Equals(val.Some(val.Int64(5))) {
			t.Fatalf("%#v %v", v, e)
		}
		v, e = Value((*int64)(nil))
		if e != nil || !v.Equals(val.None) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := Value(struct {
			Name string
			Age  uint8
		}{"ada", 36})
		if e != nil {
			t.Fatal(e)
		}
		s := v.(val.Struct)
		name, _ := s.Get("Name")
		if !name.Equals(val.String("ada")) {
			t.Fatalf("%#v", v)
		}
	}
	{
		// values pass through as copies
		m := val.NewDefaultMap(val.Int64(0)).Set(val.Int64(1), val.Int64(10))
		v, e := Value(m)
		if e != nil || !v.Equals(m) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		if _, e := Value(make(chan int)); e == nil {
			t.Fatal("channels cannot be marshalled")
		}
	}
}

func TestValueUnmarshalRoundTrip(t *testing.T) {
	type record struct {
		Name   string
		Count  int64
		Tags   []string
		Weight *uint32
	}
	w := uint32(7)
	in := record{"thing", 3, []string{"a"}, &w}
	v, e := Value(in)
	if e != nil {
		t.Fatal(e)
	}
	values := make(map[string]val.Value, 4)
	v.(val.Struct).ForEach(func(k string, w val.Value) bool {
		values[k] = w
		return true
	})
	out := record{}
	if e := Unmarshal(values, &out); e != nil {
		t.Fatal(e)
	}
	if out.Name != in.Name || out.Count != in.Count || len(out.Tags) != 1 || *out.Weight != 7 {
		t.Fatalf("%#v", out)
	}
}
