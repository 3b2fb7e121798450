// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package bdd

import (
	"math/big"
	"testing"

	"github.com/dalzilio/rudd"

	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

func constTranslator(t *testing.T) *translator {
	t.Helper()
	b, e := rudd.New(1)
	if e != nil {
		t.Fatal(e)
	}
	return newTranslator(b, 0)
}

// wordConst reads a word all of whose bits are constant.
func wordConst(t *testing.T, tr *translator, w word) uint64 {
	t.Helper()
	u := uint64(0)
	for i, bit := range w {
		if isFalse(tr.b, bit) {
			continue
		}
		if !isFalse(tr.b, tr.b.Not(bit)) {
			t.Fatalf("bit %d is not constant", i)
		}
		u |= 1 << uint(i)
	}
	return u
}

func boolConst(t *testing.T, tr *translator, n rudd.Node) bool {
	t.Helper()
	return wordConst(t, tr, word{n}) != 0
}

func TestAdderCircuits(t *testing.T) {
	tr := constTranslator(t)
	{
		sum := tr.addWord(tr.constWord(250, 8), tr.constWord(10, 8))
		if u := wordConst(t, tr, sum); u != 4 {
			t.Fatalf("250+10 must wrap to 4, have %d", u)
		}
	}
	{
		diff := tr.subWord(tr.constWord(3, 8), tr.constWord(5, 8))
		if u := wordConst(t, tr, diff); u != 254 {
			t.Fatalf("3-5 must wrap to 254, have %d", u)
		}
	}
	{
		prod := tr.mulWord(tr.constWord(20, 8), tr.constWord(13, 8))
		if u := wordConst(t, tr, prod); u != 260&0xFF {
			t.Fatalf("20*13 must truncate to %d, have %d", 260&0xFF, u)
		}
	}
}

func TestComparatorCircuit(t *testing.T) {
	tr := constTranslator(t)
	{
		if !boolConst(t, tr, tr.ltWord(tr.constWord(3, 8), tr.constWord(5, 8), false)) {
			t.Fatal("3 < 5 unsigned")
		}
		if boolConst(t, tr, tr.ltWord(tr.constWord(5, 8), tr.constWord(3, 8), false)) {
			t.Fatal("5 < 3 unsigned")
		}
		if boolConst(t, tr, tr.ltWord(tr.constWord(3, 8), tr.constWord(3, 8), false)) {
			t.Fatal("3 < 3")
		}
	}
	{
		// 0xFF is -1 signed, 255 unsigned
		if !boolConst(t, tr, tr.ltWord(tr.constWord(0xFF, 8), tr.constWord(1, 8), true)) {
			t.Fatal("-1 < 1 signed")
		}
		if boolConst(t, tr, tr.ltWord(tr.constWord(0xFF, 8), tr.constWord(1, 8), false)) {
			t.Fatal("255 < 1 unsigned")
		}
	}
}

func TestShifterCircuit(t *testing.T) {
	tr := constTranslator(t)
	{
		out := tr.shiftWord(tr.constWord(0xA5, 8), tr.constWord(1, 8), true, false)
		if u := wordConst(t, tr, out); u != 0x4A {
			t.Fatalf("0xA5 << 1: %#x", u)
		}
	}
	{
		// arithmetic right shift fills with the sign bit
		out := tr.shiftWord(tr.constWord(0x85, 8), tr.constWord(1, 8), false, true)
		if u := wordConst(t, tr, out); u != 0xC2 {
			t.Fatalf("0x85 >> 1 arithmetic: %#x", u)
		}
	}
	{
		// amounts beyond the width saturate
		out := tr.shiftWord(tr.constWord(0xA5, 8), tr.constWord(200, 8), true, false)
		if u := wordConst(t, tr, out); u != 0 {
			t.Fatalf("oversized left shift: %#x", u)
		}
		out = tr.shiftWord(tr.constWord(0x85, 8), tr.constWord(200, 8), false, true)
		if u := wordConst(t, tr, out); u != 0xFF {
			t.Fatalf("oversized arithmetic right shift: %#x", u)
		}
	}
}

func TestBitBudget(t *testing.T) {
	{
		x, _ := xpr.Var("x", typ.Uint8{})
		three, _ := xpr.Const(val.Uint8(3))
		problem, _ := xpr.Lt(x, three)
		n, e := bitBudget(problem)
		if e != nil {
			t.Fatal(e)
		}
		if n != 8 {
			t.Fatalf("budget of one uint8 variable: %d", n)
		}
	}
	{
		// each constant that could key the free map reserves one value slot
		m, _ := xpr.Var("m", typ.DefaultMap{Key: typ.Int64{}, Value: typ.Int64{}})
		empty, _ := xpr.EmptyDefaultMap(typ.Int64{}, typ.Int64{})
		one, _ := xpr.Const(val.Int64(1))
		ten, _ := xpr.Const(val.Int64(10))
		set, _ := xpr.SetEntry(m, one, ten)
		problem, _ := xpr.Eq(set, empty)
		n, e := bitBudget(problem)
		if e != nil {
			t.Fatal(e)
		}
		if n != 128 {
			t.Fatalf("budget of two int64 key slots: %d", n)
		}
	}
	{
		// keys buried in a literal map's override history reserve
		// slots too
		dm := typ.DefaultMap{Key: typ.Int64{}, Value: typ.Int64{}}
		m, _ := xpr.Var("m", dm)
		lit := val.NewDefaultMap(val.Int64(0)).Set(val.Int64(5), val.Int64(7))
		rhs, _ := xpr.ConstTyped(lit, dm)
		problem, _ := xpr.Eq(m, rhs)
		n, e := bitBudget(problem)
		if e != nil {
			t.Fatal(e)
		}
		if n != 64 {
			t.Fatalf("budget of one history key slot: %d", n)
		}
	}
}

func TestSolverEnumeration(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	five, _ := xpr.Const(val.Uint8(5))
	problem, _ := xpr.Eq(x, five)
	ctx, e := Solver{}.Open(problem)
	if e != nil {
		t.Fatal(e)
	}
	defer ctx.Close()
	sat, e := ctx.Check()
	if e != nil {
		t.Fatal(e)
	}
	if !sat {
		t.Fatal("x == 5 must be satisfiable")
	}
	m, e := ctx.Model()
	if e != nil {
		t.Fatal(e)
	}
	if !m["x"].Equals(val.Uint8(5)) {
		t.Fatalf("model: %#v", m["x"])
	}
	if e := ctx.Exclude(m); e != nil {
		t.Fatal(e)
	}
	sat, e = ctx.Check()
	if e != nil {
		t.Fatal(e)
	}
	if sat {
		t.Fatal("excluding the only model must exhaust the diagram")
	}
}

func TestCharRangeConstraint(t *testing.T) {
	c, _ := xpr.Var("c", typ.Char{})
	bound, _ := xpr.Const(val.Char(0x10FFFE))
	problem, _ := xpr.Gt(c, bound)
	ctx, e := Solver{}.Open(problem)
	if e != nil {
		t.Fatal(e)
	}
	defer ctx.Close()
	sat, e := ctx.Check()
	if e != nil {
		t.Fatal(e)
	}
	if !sat {
		t.Fatal("one code point remains above the bound")
	}
	m, e := ctx.Model()
	if e != nil {
		t.Fatal(e)
	}
	if !m["c"].Equals(val.Char(0x10FFFF)) {
		t.Fatalf("only 0x10FFFF lies between the bound and the code point limit: %#v", m["c"])
	}
}

func TestCapabilityErrors(t *testing.T) {
	mustReject := func(problem *xpr.Node) {
		t.Helper()
		_, e := Solver{}.Open(problem)
		if e == nil {
			t.Fatal("expected a capability error")
		}
		if e.Kind() != "capabilityError" {
			t.Fatalf("error kind: %s", e.Kind())
		}
	}
	{
		s, _ := xpr.Var("s", typ.String{})
		hello, _ := xpr.Const(val.String("hello"))
		problem, _ := xpr.Eq(s, hello)
		mustReject(problem)
	}
	{
		x, _ := xpr.Var("x", typ.Int{})
		zero, _ := xpr.Const(val.IntFromBig(big.NewInt(0)))
		problem, _ := xpr.Eq(x, zero)
		mustReject(problem)
	}
	{
		m, _ := xpr.Var("m", typ.Map{Key: typ.String{}, Value: typ.Bool{}})
		empty, _ := xpr.ConstTyped(val.NewMap(0), typ.Map{Key: typ.String{}, Value: typ.Bool{}})
		problem, _ := xpr.Eq(m, empty)
		mustReject(problem)
	}
	{
		// entry counts need a concrete base
		m, _ := xpr.Var("m", typ.DefaultMap{Key: typ.Int64{}, Value: typ.Int64{}})
		count, _ := xpr.EntryCount(m)
		zero, _ := xpr.Const(val.Int64(0))
		problem, _ := xpr.Eq(count, zero)
		mustReject(problem)
	}
}
