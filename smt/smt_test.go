// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"math/big"
	"strings"
	"testing"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

func TestParseSexp(t *testing.T) {
	{
		s, rest, e := parseSexp(`sat`)
		if e != nil {
			t.Fatal(e)
		}
		if !s.isAtom() || s.atom != `sat` || rest != `` {
			t.Fatalf("%#v %q", s, rest)
		}
	}
	{
		s, _, e := parseSexp(`(a (b c) d)`)
		if e != nil {
			t.Fatal(e)
		}
		if s.isAtom() || len(s.list) != 3 {
			t.Fatalf("%#v", s)
		}
		if s.String() != `(a (b c) d)` {
			t.Fatalf("render: %s", s)
		}
	}
	{
		// parens and doubled quotes inside string literals do not break framing
		s, _, e := parseSexp(`(v "a)""b")`)
		if e != nil {
			t.Fatal(e)
		}
		if len(s.list) != 2 || s.list[1].atom != `"a)""b"` {
			t.Fatalf("%#v", s)
		}
	}
	{
		s, rest, e := parseSexp(` x y`)
		if e != nil {
			t.Fatal(e)
		}
		if s.atom != `x` || strings.TrimSpace(rest) != `y` {
			t.Fatalf("%#v %q", s, rest)
		}
	}
	{
		if _, _, e := parseSexp(`(a b`); e == nil {
			t.Fatal("unbalanced parenthesis must be rejected")
		}
		if _, _, e := parseSexp(`"unterminated`); e == nil {
			t.Fatal("unterminated string must be rejected")
		}
	}
}

func TestStringTermRoundTrip(t *testing.T) {
	for _, s := range []string{
		``,
		`hello`,
		`he said "hi"`,
		`back\slash`,
		"line\nbreak",
		`snow ☃ man`,
	} {
		encoded := stringTerm(s)
		if decoded := decodeSmtString(encoded); decoded != s {
			t.Fatalf("%q encoded as %s, decoded as %q", s, encoded, decoded)
		}
	}
}

func TestBvLiteral(t *testing.T) {
	{
		s, ok := bvLiteral(val.Int8(-1))
		if !ok || s != `(_ bv255 8)` {
			t.Fatalf("%s %v", s, ok)
		}
	}
	{
		s, ok := bvLiteral(val.Int64(-1))
		if !ok || s != `(_ bv18446744073709551615 64)` {
			t.Fatalf("%s %v", s, ok)
		}
	}
	{
		s, ok := bvLiteral(val.Uint16(0xBEEF))
		if !ok || s != `(_ bv48879 16)` {
			t.Fatalf("%s %v", s, ok)
		}
	}
	{
		if _, ok := bvLiteral(val.Bool(true)); ok {
			t.Fatal("bool is not a bitvector")
		}
	}
}

func TestParseValue(t *testing.T) {
	{
		v, e := parseValue(typ.Bool{}, `true`)
		if e != nil || !v.Equals(val.Bool(true)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.Int{}, `(- 5)`)
		if e != nil || !v.Equals(val.IntFromBig(big.NewInt(-5))) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		// hex bitvectors reinterpret as signed
		v, e := parseValue(typ.Int8{}, `#xff`)
		if e != nil || !v.Equals(val.Int8(-1)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.Uint8{}, `#b101`)
		if e != nil || !v.Equals(val.Uint8(5)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.Int64{}, `(_ bv7 64)`)
		if e != nil || !v.Equals(val.Int64(7)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.Char{}, `97`)
		if e != nil || !v.Equals(val.Char('a')) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.String{}, `"a""b\u{2603}"`)
		if e != nil || !v.Equals(val.String(`a"b☃`)) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.List{Elements: typ.Int64{}}, `(seq.++ (seq.unit (_ bv1 64)) (seq.unit (_ bv2 64)))`)
		if e != nil || !v.Equals(val.List{val.Int64(1), val.Int64(2)}) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		v, e := parseValue(typ.List{Elements: typ.Int64{}}, `(as seq.empty (Seq (_ BitVec 64)))`)
		if e != nil || !v.Equals(val.List{}) {
			t.Fatalf("%#v %v", v, e)
		}
	}
	{
		if _, e := parseValue(typ.Int64{}, `garbage`); e == nil {
			t.Fatal("malformed bitvector must be rejected")
		}
	}
}

func TestRegexTerm(t *testing.T) {
	{
		// fully anchored patterns get no padding
		s, e := regexTerm(`^a$`)
		if e != nil {
			t.Fatal(e)
		}
		if s != `(str.to_re "a")` {
			t.Fatalf("%s", s)
		}
	}
	{
		// unanchored patterns search anywhere
		s, e := regexTerm(`a+b+`)
		if e != nil {
			t.Fatal(e)
		}
		if !strings.HasPrefix(s, `(re.++ `+reAny) || !strings.HasSuffix(s, reAny+`)`) {
			t.Fatalf("missing padding: %s", s)
		}
		if !strings.Contains(s, `re.+`) {
			t.Fatalf("%s", s)
		}
	}
	{
		s, e := regexTerm(`^[0-9]$`)
		if e != nil {
			t.Fatal(e)
		}
		if s != `(re.range "0" "9")` {
			t.Fatalf("%s", s)
		}
	}
	{
		// word boundaries have no SMT-LIB counterpart
		if _, e := regexTerm(`a\bb`); e == nil {
			t.Fatal("expected a capability error")
		}
	}
}

// fakeEngine scripts solver answers so the translator and context can
// run without a solver binary.
type fakeEngine struct {
	result   Result
	model    map[string]string
	declared map[string]string
	asserted []string
	closed   bool
}

func (f *fakeEngine) Declare(name, sort string) err.Error {
	if f.declared == nil {
		f.declared = map[string]string{}
	}
	f.declared[name] = sort
	return nil
}

func (f *fakeEngine) Assert(term string) err.Error {
	f.asserted = append(f.asserted, term)
	return nil
}

func (f *fakeEngine) Check() (Result, err.Error) {
	return f.result, nil
}

func (f *fakeEngine) Values(terms []string) ([]string, err.Error) {
	out := make([]string, len(terms))
	for i, term := range terms {
		v, ok := f.model[term]
		if !ok {
			return nil, engineError(`fake`, `no scripted value for %s`, term)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEngine) Close() err.Error {
	f.closed = true
	return nil
}

func fakeSolver(f *fakeEngine) Solver {
	return Solver{NewEngine: func() (Engine, err.Error) { return f, nil }}
}

func TestSolverContext(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	five, _ := xpr.Const(val.Uint8(5))
	problem, _ := xpr.Eq(x, five)

	f := &fakeEngine{result: ResultSat, model: map[string]string{"v!x": `#x05`}}
	ctx, e := fakeSolver(f).Open(problem)
	if e != nil {
		t.Fatal(e)
	}
	if sort := f.declared["v!x"]; sort != `(_ BitVec 8)` {
		t.Fatalf("declared sort: %s", sort)
	}
	sat, e := ctx.Check()
	if e != nil {
		t.Fatal(e)
	}
	if !sat {
		t.Fatal("scripted sat")
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
	last := f.asserted[len(f.asserted)-1]
	if !strings.HasPrefix(last, `(not `) || !strings.Contains(last, `v!x`) {
		t.Fatalf("exclusion: %s", last)
	}
	if e := ctx.Close(); e != nil {
		t.Fatal(e)
	}
	if !f.closed {
		t.Fatal("close must reach the engine")
	}
}

func TestSolverUnknownResult(t *testing.T) {
	p, _ := xpr.Var("p", typ.Bool{})
	f := &fakeEngine{result: ResultUnknown}
	ctx, e := fakeSolver(f).Open(p)
	if e != nil {
		t.Fatal(e)
	}
	defer ctx.Close()
	if _, e := ctx.Check(); e == nil {
		t.Fatal("unknown must surface as an error")
	} else if e.Kind() != "engineError" {
		t.Fatalf("error kind: %s", e.Kind())
	}
}

func TestOpenClosesEngineOnFailure(t *testing.T) {
	m, _ := xpr.Var("m", typ.Map{Key: typ.String{}, Value: typ.Bool{}})
	empty, _ := xpr.ConstTyped(val.NewMap(0), typ.Map{Key: typ.String{}, Value: typ.Bool{}})
	problem, _ := xpr.Eq(m, empty)
	f := &fakeEngine{}
	if _, e := fakeSolver(f).Open(problem); e == nil {
		t.Fatal("free map variables must be rejected")
	} else if e.Kind() != "capabilityError" {
		t.Fatalf("error kind: %s", e.Kind())
	}
	if !f.closed {
		t.Fatal("failed opens must release the engine")
	}
}
