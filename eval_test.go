// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"math/big"
	"testing"

	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

func mustConst(t *testing.T, v val.Value) *xpr.Node {
	t.Helper()
	n, e := xpr.Const(v)
	if e != nil {
		t.Fatal(e)
	}
	return n
}

func mustEval(t *testing.T, n *xpr.Node, bindings map[string]val.Value) val.Value {
	t.Helper()
	v, e := Eval(n, bindings)
	if e != nil {
		t.Fatal(e)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	{
		a := mustConst(t, val.Uint8(250))
		b := mustConst(t, val.Uint8(10))
		sum, _ := xpr.Add(a, b)
		if v := mustEval(t, sum, nil); !v.Equals(val.Uint8(4)) {
			t.Fatalf("uint8 addition must wrap: %#v", v)
		}
	}
	{
		a := mustConst(t, val.Int8(-128))
		b := mustConst(t, val.Int8(1))
		diff, _ := xpr.Sub(a, b)
		if v := mustEval(t, diff, nil); !v.Equals(val.Int8(127)) {
			t.Fatalf("int8 subtraction must wrap: %#v", v)
		}
	}
	{
		a := mustConst(t, val.Int64(1<<40))
		prod, _ := xpr.Mul(a, a)
		if v := mustEval(t, prod, nil); !v.Equals(val.Int64(0)) {
			t.Fatalf("int64 multiplication must wrap: %#v", v)
		}
	}
	{
		// arbitrary precision does not wrap
		a := mustConst(t, val.IntFromBig(big.NewInt(1<<62)))
		sum, _ := xpr.Add(a, a)
		expect := val.IntFromBig(new(big.Int).Lsh(big.NewInt(1), 63))
		if v := mustEval(t, sum, nil); !v.Equals(expect) {
			t.Fatalf("big integer addition: %#v", v)
		}
	}
	{
		a := mustConst(t, val.Int32(-5))
		b := mustConst(t, val.Int32(3))
		lt, _ := xpr.Lt(a, b)
		if v := mustEval(t, lt, nil); !v.Equals(val.Bool(true)) {
			t.Fatalf("signed comparison: %#v", v)
		}
		gt, _ := xpr.Gt(a, b)
		if v := mustEval(t, gt, nil); !v.Equals(val.Bool(false)) {
			t.Fatalf("signed comparison: %#v", v)
		}
	}
	{
		a := mustConst(t, val.Uint16(0xF0F0))
		b := mustConst(t, val.Uint16(0x0FF0))
		and, _ := xpr.BitAnd(a, b)
		if v := mustEval(t, and, nil); !v.Equals(val.Uint16(0x00F0)) {
			t.Fatalf("bitAnd: %#v", v)
		}
		xor, _ := xpr.BitXor(a, b)
		if v := mustEval(t, xor, nil); !v.Equals(val.Uint16(0xFF00)) {
			t.Fatalf("bitXor: %#v", v)
		}
	}
	{
		a := mustConst(t, val.Int8(-1))
		amt := mustConst(t, val.Uint8(1))
		shr, _ := xpr.Shr(a, amt)
		if v := mustEval(t, shr, nil); !v.Equals(val.Int8(-1)) {
			t.Fatalf("arithmetic right shift must sign-fill: %#v", v)
		}
		big := mustConst(t, val.Uint8(200))
		shr, _ = xpr.Shr(a, big)
		if v := mustEval(t, shr, nil); !v.Equals(val.Int8(-1)) {
			t.Fatalf("oversized signed right shift: %#v", v)
		}
		u := mustConst(t, val.Uint8(0x81))
		shl, _ := xpr.Shl(u, amt)
		if v := mustEval(t, shl, nil); !v.Equals(val.Uint8(0x02)) {
			t.Fatalf("left shift must truncate: %#v", v)
		}
	}
}

func TestEvalSequences(t *testing.T) {
	hello := mustConst(t, val.String("hello"))
	{
		n, _ := xpr.Length(hello)
		if v := mustEval(t, n, nil); !v.Equals(val.Int64(5)) {
			t.Fatalf("length: %#v", v)
		}
	}
	{
		// out-of-range slice saturates to empty
		n, _ := xpr.Slice(hello, mustConst(t, val.Int64(10)), mustConst(t, val.Int64(3)))
		if v := mustEval(t, n, nil); !v.Equals(val.String("")) {
			t.Fatalf("out-of-range slice: %#v", v)
		}
	}
	{
		n, _ := xpr.Slice(hello, mustConst(t, val.Int64(1)), mustConst(t, val.Int64(3)))
		if v := mustEval(t, n, nil); !v.Equals(val.String("ell")) {
			t.Fatalf("slice: %#v", v)
		}
	}
	{
		n, _ := xpr.CharAt(hello, mustConst(t, val.Int64(1)))
		if v := mustEval(t, n, nil); !v.Equals(val.String("e")) {
			t.Fatalf("charAt: %#v", v)
		}
		n, _ = xpr.CharAt(hello, mustConst(t, val.Int64(99)))
		if v := mustEval(t, n, nil); !v.Equals(val.String("")) {
			t.Fatalf("out-of-range charAt: %#v", v)
		}
	}
	{
		cow := mustConst(t, val.String("brown cow"))
		n, _ := xpr.StartsWith(cow, mustConst(t, val.String("bro")))
		if v := mustEval(t, n, nil); !v.Equals(val.Bool(true)) {
			t.Fatalf("startsWith: %#v", v)
		}
		fox := mustConst(t, val.String("quick fox"))
		n, _ = xpr.StartsWith(fox, mustConst(t, val.String("uick")))
		if v := mustEval(t, n, nil); !v.Equals(val.Bool(false)) {
			t.Fatalf("startsWith: %#v", v)
		}
	}
	{
		n, _ := xpr.IndexOf(hello, mustConst(t, val.String("ll")))
		if v := mustEval(t, n, nil); !v.Equals(val.Int64(2)) {
			t.Fatalf("indexOf: %#v", v)
		}
		n, _ = xpr.IndexOf(hello, mustConst(t, val.String("zz")))
		if v := mustEval(t, n, nil); !v.Equals(val.Int64(-1)) {
			t.Fatalf("indexOf sentinel: %#v", v)
		}
	}
	{
		n, _ := xpr.ReplaceFirst(hello, mustConst(t, val.String("l")), mustConst(t, val.String("L")))
		if v := mustEval(t, n, nil); !v.Equals(val.String("heLlo")) {
			t.Fatalf("replaceFirst: %#v", v)
		}
		// replacing the empty sequence is the identity
		n, _ = xpr.ReplaceFirst(hello, mustConst(t, val.String("")), mustConst(t, val.String("X")))
		if v := mustEval(t, n, nil); !v.Equals(val.String("hello")) {
			t.Fatalf("replaceFirst with empty needle: %#v", v)
		}
	}
	{
		n, _ := xpr.MatchRegex(mustConst(t, val.String("aab")), "a+b+")
		if v := mustEval(t, n, nil); !v.Equals(val.Bool(true)) {
			t.Fatalf("matchRegex: %#v", v)
		}
		n, _ = xpr.MatchRegex(mustConst(t, val.String("ba")), "a+b+")
		if v := mustEval(t, n, nil); !v.Equals(val.Bool(false)) {
			t.Fatalf("matchRegex: %#v", v)
		}
	}
	{
		items, _ := xpr.ListOf(typ.Int64{},
			mustConst(t, val.Int64(1)), mustConst(t, val.Int64(2)))
		n, _ := xpr.CharAt(items, mustConst(t, val.Int64(1)))
		if v := mustEval(t, n, nil); !v.Equals(val.Some(val.Int64(2))) {
			t.Fatalf("list at: %#v", v)
		}
		n, _ = xpr.CharAt(items, mustConst(t, val.Int64(5)))
		if v := mustEval(t, n, nil); !v.Equals(val.None) {
			t.Fatalf("out-of-range list at: %#v", v)
		}
	}
}

func TestEvalDefaultMap(t *testing.T) {
	empty, e := xpr.EmptyDefaultMap(typ.Int64{}, typ.Int64{})
	if e != nil {
		t.Fatal(e)
	}
	k1 := mustConst(t, val.Int64(1))
	k2 := mustConst(t, val.Int64(2))
	{
		// {}.Set(1,10).Set(1,0): count 0, every read 0
		m, _ := xpr.SetEntry(empty, k1, mustConst(t, val.Int64(10)))
		m, _ = xpr.SetEntry(m, k1, mustConst(t, val.Int64(0)))
		count, _ := xpr.EntryCount(m)
		if v := mustEval(t, count, nil); !v.Equals(val.Int64(0)) {
			t.Fatalf("count after restoring default: %#v", v)
		}
		read, _ := xpr.Entry(m, k1)
		if v := mustEval(t, read, nil); !v.Equals(val.Int64(0)) {
			t.Fatalf("read after restoring default: %#v", v)
		}
		read, _ = xpr.Entry(m, k2)
		if v := mustEval(t, read, nil); !v.Equals(val.Int64(0)) {
			t.Fatalf("untouched key: %#v", v)
		}
	}
	{
		m, _ := xpr.SetEntry(empty, k1, mustConst(t, val.Int64(10)))
		m, _ = xpr.SetEntry(m, k2, mustConst(t, val.Int64(20)))
		n, _ := xpr.SetEntry(empty, k2, mustConst(t, val.Int64(20)))
		n, _ = xpr.SetEntry(n, k1, mustConst(t, val.Int64(10)))
		eq, _ := xpr.Eq(m, n)
		if v := mustEval(t, eq, nil); !v.Equals(val.Bool(true)) {
			t.Fatalf("extensional equality: %#v", v)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	{
		x, _ := xpr.Var("x", typ.Int64{})
		if _, e := Eval(x, nil); e == nil {
			t.Fatal("unbound variable must be an execution error")
		} else if e.Kind() != "executionError" {
			t.Fatalf("unbound variable error kind: %s", e.Kind())
		}
	}
	{
		x, _ := xpr.Var("x", typ.Int64{})
		if _, e := Eval(x, map[string]val.Value{"x": val.Bool(true)}); e == nil {
			t.Fatal("binding of the wrong type must be rejected")
		}
	}
	{
		m, _ := xpr.ConstTyped(val.NewMap(0), typ.Map{Key: typ.String{}, Value: typ.Int64{}})
		read, _ := xpr.Key(m, mustConst(t, val.String("missing")))
		if _, e := Eval(read, nil); e == nil {
			t.Fatal("reading a missing general map key must fail")
		}
	}
	{
		none, _ := xpr.NoneOf(typ.Int64{})
		n, _ := xpr.AssertPresent(none)
		if _, e := Eval(n, nil); e == nil {
			t.Fatal("assertPresent on an absent option must fail")
		}
	}
}

func TestEvalOptions(t *testing.T) {
	{
		none, _ := xpr.NoneOf(typ.Int64{})
		n, _ := xpr.PresentOrZero(none)
		if v := mustEval(t, n, nil); !v.Equals(val.Int64(0)) {
			t.Fatalf("presentOrZero on absent option: %#v", v)
		}
	}
	{
		x, _ := xpr.Var("o", typ.Option{Elements: typ.Int64{}})
		n, _ := xpr.IsPresent(x)
		v := mustEval(t, n, map[string]val.Value{"o": val.Some(val.Int64(3))})
		if !v.Equals(val.Bool(true)) {
			t.Fatalf("isPresent: %#v", v)
		}
	}
}
