// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"sync"
	"testing"

	"karma.run/sym/typ"
	"karma.run/sym/val"
)

func TestHashConsing(t *testing.T) {
	{
		a, _ := Const(val.Int64(42))
		b, _ := Const(val.Int64(42))
		if a != b {
			t.Fatal("identical constants must share one node")
		}
		c, _ := Const(val.Int64(43))
		if a == c {
			t.Fatal("distinct constants must not share a node")
		}
	}
	{
		x1, _ := Var("x", typ.Int64{})
		x2, _ := Var("x", typ.Int64{})
		if x1 != x2 {
			t.Fatal("identical variables must share one node")
		}
		y, _ := Var("x", typ.Bool{})
		if x1 == y {
			t.Fatal("same name, different type must not share a node")
		}
	}
	{
		x, _ := Var("x", typ.Int64{})
		c, _ := Const(val.Int64(1))
		a, _ := Add(x, c)
		b, _ := Add(x, c)
		if a != b {
			t.Fatal("identical interior nodes must share one node")
		}
	}
}

func TestHashConsingConcurrent(t *testing.T) {
	const goroutines = 16
	out := make([]*Node, goroutines)
	wg := sync.WaitGroup{}
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, _ := Var("concurrent", typ.Uint32{})
			c, _ := Const(val.Uint32(7))
			lt, _ := Lt(x, c)
			gt, _ := Gt(x, c)
			n, _ := Or(lt, gt)
			out[i] = n
		}(i)
	}
	wg.Wait()
	for i := 1; i < goroutines; i++ {
		if out[i] != out[0] {
			t.Fatal("concurrent construction must converge to one node")
		}
	}
}

func TestSimplification(t *testing.T) {
	tru, _ := Const(val.Bool(true))
	fls, _ := Const(val.Bool(false))
	x, _ := Var("x", typ.Bool{})
	{
		n, _ := And(x, tru)
		if n != x {
			t.Fatalf("and with true must collapse: %v", n.Op())
		}
		n, _ = And(x, fls)
		if n != fls {
			t.Fatal("and with false must fold to false")
		}
		n, _ = Or(x, fls)
		if n != x {
			t.Fatal("or with false must collapse")
		}
		n, _ = Or(x, tru)
		if n != tru {
			t.Fatal("or with true must fold to true")
		}
	}
	{
		n, _ := Not(tru)
		if n != fls {
			t.Fatal("not(true) must fold")
		}
		nx, _ := Not(x)
		nnx, _ := Not(nx)
		if nnx != x {
			t.Fatal("double negation must cancel")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		b, _ := Const(val.Int64(2))
		n, _ := Eq(a, a)
		if n != tru {
			t.Fatal("equality of one node with itself must fold to true")
		}
		n, _ = Eq(a, b)
		if n != fls {
			t.Fatal("unequal constants must fold to false")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		b, _ := Const(val.Int64(2))
		n, _ := If(tru, a, b)
		if n != a {
			t.Fatal("if(true) must fold to the then branch")
		}
		n, _ = If(fls, a, b)
		if n != b {
			t.Fatal("if(false) must fold to the else branch")
		}
		n, _ = If(x, a, a)
		if n != a {
			t.Fatal("if with identical branches must collapse")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		b, _ := Const(val.Bool(true))
		tup, _ := TupleOf(a, b)
		n, _ := TupleAt(tup, 1)
		if n != b {
			t.Fatal("projection of a tuple literal must fold")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		st, _ := StructOf(map[string]*Node{"n": a})
		n, _ := Field(st, "n")
		if n != a {
			t.Fatal("projection of a struct literal must fold")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		s, _ := Some(a)
		n, _ := IsPresent(s)
		if n != tru {
			t.Fatal("isPresent(some(_)) must fold to true")
		}
		n, _ = AssertPresent(s)
		if n != a {
			t.Fatal("assertPresent(some(a)) must fold to a")
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	{
		if _, e := Const(nil); e == nil {
			t.Fatal("nil literal must be rejected")
		}
	}
	{
		if _, e := ConstTyped(val.Char(0x110000), typ.Char{}); e == nil {
			t.Fatal("out-of-range char literal must be rejected")
		}
	}
	{
		a, _ := Const(val.Int64(1))
		b, _ := Const(val.Int32(1))
		if _, e := Add(a, b); e == nil {
			t.Fatal("mixed-width arithmetic must be rejected")
		}
	}
	{
		a, _ := Const(val.String("a"))
		b, _ := Const(val.Int64(1))
		if _, e := Concat(a, b); e == nil {
			t.Fatal("concatenating a string with an integer must be rejected")
		}
	}
	{
		a, _ := Const(val.Bool(true))
		if _, e := Add(a, a); e == nil {
			t.Fatal("arithmetic over booleans must be rejected")
		}
	}
	{
		a, _ := Const(val.Int8(1))
		amt, _ := Const(val.Int8(1))
		if _, e := Shl(a, amt); e == nil {
			t.Fatal("signed shift amounts must be rejected")
		}
	}
	{
		a, _ := Const(val.String("x"))
		if _, e := MatchRegex(a, "("); e == nil {
			t.Fatal("invalid regex patterns must be rejected at construction")
		}
	}
	{
		// map-typed values may not nest inside sequences
		if _, e := ListOf(typ.DefaultMap{Key: typ.Int64{}, Value: typ.Int64{}}); e == nil {
			t.Fatal("default maps as sequence elements must be rejected")
		}
	}
	{
		if _, e := Var("m", typ.Map{Key: typ.String{}, Value: typ.Map{Key: typ.String{}, Value: typ.Bool{}}}); e == nil {
			t.Fatal("maps nested in maps must be rejected")
		}
	}
}

func TestVariables(t *testing.T) {
	{
		x, _ := Var("x", typ.Int64{})
		y, _ := Var("y", typ.Int64{})
		sum, _ := Add(x, y)
		lhs, _ := Add(sum, x)
		c, _ := Const(val.Int64(0))
		n, _ := Eq(lhs, c)
		vars, e := Variables(n)
		if e != nil {
			t.Fatal(e)
		}
		if len(vars) != 2 || vars["x"] != x || vars["y"] != y {
			t.Fatalf("variables: %#v", vars)
		}
	}
	{
		a, _ := Var("x", typ.Int64{})
		b, _ := Var("x", typ.Bool{})
		zero, _ := Const(val.Int64(0))
		cmp, _ := Eq(a, zero)
		n, _ := And(b, cmp)
		if _, e := Variables(n); e == nil {
			t.Fatal("conflicting variable types must be rejected")
		}
	}
}
