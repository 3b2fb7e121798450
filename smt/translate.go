// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// shape mirrors an expression's type with one solver term per scalar
// component. Composite values have no SMT sort of their own here:
// tuples, structs and options are decomposed and reassembled at the
// model boundary.
type shape interface {
	_shape()
}

// leaf is a term of a directly SMT-sorted type.
type leaf string

// parts are tuple or struct components, in declared (sorted, for
// structs) order.
type parts []shape

type optionShape struct {
	present string // Bool term
	value   shape
}

// dmapShape is the unrolled form of a default-valued map expression:
// the base it bottoms out at plus the setEntry overrides applied over
// it, oldest first.
type dmapShape struct {
	lit       *val.DefaultMap // literal base, nil when the base is a free variable
	varName   string
	keyType   typ.Type
	valueType typ.Type
	overrides []dmapOverride
}

type dmapOverride struct {
	key    shape
	keyLit val.Value // non-nil when the key is a literal
	value  shape
}

func (leaf) _shape()        {}
func (parts) _shape()       {}
func (optionShape) _shape() {}
func (dmapShape) _shape()   {}

func term(s shape) string {
	return string(s.(leaf))
}

func conj(terms []string) string {
	switch len(terms) {
	case 0:
		return "true"
	case 1:
		return terms[0]
	}
	return "(and " + strings.Join(terms, " ") + ")"
}

// sortOf maps a type to its SMT sort. Composites without a direct sort
// report false and go through shape decomposition instead.
func sortOf(t typ.Type) (string, bool) {
	switch t := t.(type) {
	case typ.Bool:
		return `Bool`, true
	case typ.Int:
		return `Int`, true
	case typ.Char:
		return `Int`, true
	case typ.String:
		return `String`, true
	case typ.Int8:
		return `(_ BitVec 8)`, true
	case typ.Int16:
		return `(_ BitVec 16)`, true
	case typ.Int32:
		return `(_ BitVec 32)`, true
	case typ.Int64:
		return `(_ BitVec 64)`, true
	case typ.Uint8:
		return `(_ BitVec 8)`, true
	case typ.Uint16:
		return `(_ BitVec 16)`, true
	case typ.Uint32:
		return `(_ BitVec 32)`, true
	case typ.Uint64:
		return `(_ BitVec 64)`, true
	case typ.List:
		s, ok := sortOf(t.Elements)
		if !ok {
			return ``, false
		}
		return `(Seq ` + s + `)`, true
	case typ.Map:
		ks, kok := sortOf(t.Key)
		vs, vok := sortOf(t.Value)
		if !kok || !vok {
			return ``, false
		}
		return `(Array ` + ks + ` ` + vs + `)`, true
	}
	return ``, false
}

func intTerm(b *big.Int) string {
	if b.Sign() < 0 {
		return `(- ` + new(big.Int).Neg(b).String() + `)`
	}
	return b.String()
}

func bvTerm(unsigned uint64, width int) string {
	return fmt.Sprintf(`(_ bv%d %d)`, unsigned, width)
}

// bvLiteral renders fixed-width integer values as bitvector literals.
func bvLiteral(v val.Value) (string, bool) {
	switch v := v.(type) {
	case val.Int8:
		return bvTerm(uint64(uint8(v)), 8), true
	case val.Int16:
		return bvTerm(uint64(uint16(v)), 16), true
	case val.Int32:
		return bvTerm(uint64(uint32(v)), 32), true
	case val.Int64:
		return bvTerm(uint64(v), 64), true
	case val.Uint8:
		return bvTerm(uint64(v), 8), true
	case val.Uint16:
		return bvTerm(uint64(v), 16), true
	case val.Uint32:
		return bvTerm(uint64(v), 32), true
	case val.Uint64:
		return bvTerm(uint64(v), 64), true
	}
	return ``, false
}

// stringTerm renders a string literal in SMT-LIB syntax. Quotes double,
// non-printable and non-ASCII code points use unicode escapes.
func stringTerm(s string) string {
	buf := strings.Builder{}
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`""`)
		case r == '\\':
			buf.WriteString(`\u{5c}`)
		case r >= 0x20 && r < 0x7f:
			buf.WriteRune(r)
		default:
			buf.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

type dmapKeyEntry struct {
	key val.Value
	sh  shape
}

type varInfo struct {
	node *xpr.Node
	sh   shape
	keys []dmapKeyEntry // lazily declared per-key symbols (dmap vars)
}

type translator struct {
	engine Engine
	vars   map[string]*varInfo
	order  []string // var declaration order, for deterministic models
	memo   map[uint64]shape
	fresh  int
}

func newTranslator(engine Engine) *translator {
	return &translator{
		engine: engine,
		vars:   make(map[string]*varInfo, 8),
		memo:   make(map[uint64]shape, 32),
	}
}

func capability(format string, args ...interface{}) err.Error {
	return err.CapabilityError{Backend: `smt`, Problem: fmt.Sprintf(format, args...)}
}

func (tr *translator) freshSym(sort string) (string, err.Error) {
	tr.fresh++
	name := `k!` + strconv.Itoa(tr.fresh)
	if e := tr.engine.Declare(name, sort); e != nil {
		return ``, e
	}
	return name, nil
}

// declareShape declares one symbol per scalar component of t, derived
// from the given name prefix.
func (tr *translator) declareShape(prefix string, t typ.Type) (shape, err.Error) {
	if s, ok := sortOf(t); ok {
		if e := tr.engine.Declare(prefix, s); e != nil {
			return nil, e
		}
		if _, ok := t.(typ.Char); ok {
			// chars are Int-sorted, constrain to the code point range
			if e := tr.engine.Assert(`(and (>= ` + prefix + ` 0) (<= ` + prefix + ` 1114111))`); e != nil {
				return nil, e
			}
		}
		return leaf(prefix), nil
	}
	switch t := t.(type) {
	case typ.Tuple:
		ps := make(parts, len(t))
		for i, u := range t {
			p, e := tr.declareShape(prefix+`!`+strconv.Itoa(i), u)
			if e != nil {
				return nil, e
			}
			ps[i] = p
		}
		return ps, nil
	case typ.Struct:
		ps := make(parts, 0, t.Len())
		var e err.Error
		t.ForEach(func(k string, u typ.Type) bool {
			p, de := tr.declareShape(prefix+`!`+k, u)
			if de != nil {
				e = de
				return false
			}
			ps = append(ps, p)
			return true
		})
		if e != nil {
			return nil, e
		}
		return ps, nil
	case typ.Option:
		if e := tr.engine.Declare(prefix+`!p`, `Bool`); e != nil {
			return nil, e
		}
		v, e := tr.declareShape(prefix+`!v`, t.Elements)
		if e != nil {
			return nil, e
		}
		return optionShape{prefix + `!p`, v}, nil
	}
	return nil, capability(`cannot declare a free variable of type %s`, t.ValueType())
}

func (tr *translator) declareVar(n *xpr.Node) (shape, err.Error) {
	if vi, ok := tr.vars[n.Name()]; ok {
		return vi.sh, nil
	}
	t := n.Type()
	var sh shape
	switch t := t.(type) {
	case typ.DefaultMap:
		sh = dmapShape{varName: n.Name(), keyType: t.Key, valueType: t.Value}
	case typ.Map:
		return nil, capability(`free variables of map type are not supported, use a default-valued map`)
	default:
		s, e := tr.declareShape(`v!`+n.Name(), t)
		if e != nil {
			return nil, e
		}
		sh = s
	}
	tr.vars[n.Name()] = &varInfo{node: n, sh: sh}
	tr.order = append(tr.order, n.Name())
	return sh, nil
}

// dmapKeySymbol returns the lazily declared symbol shape standing for
// a free map variable's value at one literal key.
func (tr *translator) dmapKeySymbol(varName string, key val.Value, valueType typ.Type) (shape, err.Error) {
	vi := tr.vars[varName]
	for _, e := range vi.keys {
		if e.key.Equals(key) {
			return e.sh, nil
		}
	}
	sh, e := tr.declareShape(`v!`+varName+`!k`+strconv.Itoa(len(vi.keys)), valueType)
	if e != nil {
		return nil, e
	}
	vi.keys = append(vi.keys, dmapKeyEntry{key.Copy(), sh})
	return sh, nil
}

// literalShape renders a constant value.
func (tr *translator) literalShape(t typ.Type, v val.Value) (shape, err.Error) {
	switch t := t.(type) {
	case typ.Bool:
		if v.(val.Bool) {
			return leaf(`true`), nil
		}
		return leaf(`false`), nil
	case typ.Int:
		return leaf(intTerm(v.(val.Int).Int)), nil
	case typ.Char:
		return leaf(strconv.FormatInt(int64(v.(val.Char)), 10)), nil
	case typ.String:
		return leaf(stringTerm(string(v.(val.String)))), nil
	case typ.Int8, typ.Int16, typ.Int32, typ.Int64, typ.Uint8, typ.Uint16, typ.Uint32, typ.Uint64:
		s, _ := bvLiteral(v)
		return leaf(s), nil
	case typ.List:
		es, ok := sortOf(t.Elements)
		if !ok {
			return nil, capability(`list literals over %s elements are not supported`, t.Elements.ValueType())
		}
		l := v.(val.List)
		if len(l) == 0 {
			return leaf(`(as seq.empty (Seq ` + es + `))`), nil
		}
		units := make([]string, len(l))
		for i, w := range l {
			sh, e := tr.literalShape(t.Elements, w)
			if e != nil {
				return nil, e
			}
			units[i] = `(seq.unit ` + term(sh) + `)`
		}
		if len(units) == 1 {
			return leaf(units[0]), nil
		}
		return leaf(`(seq.++ ` + strings.Join(units, " ") + `)`), nil
	case typ.Tuple:
		w := v.(val.Tuple)
		ps := make(parts, len(t))
		for i, u := range t {
			p, e := tr.literalShape(u, w[i])
			if e != nil {
				return nil, e
			}
			ps[i] = p
		}
		return ps, nil
	case typ.Struct:
		w := v.(val.Struct)
		ps := make(parts, 0, t.Len())
		var e err.Error
		t.ForEach(func(k string, u typ.Type) bool {
			f, _ := w.Get(k)
			p, le := tr.literalShape(u, f)
			if le != nil {
				e = le
				return false
			}
			ps = append(ps, p)
			return true
		})
		if e != nil {
			return nil, e
		}
		return ps, nil
	case typ.Option:
		o := v.(val.Option)
		if !o.Present {
			z, e := tr.literalShape(t.Elements, t.Elements.Zero())
			if e != nil {
				return nil, e
			}
			return optionShape{`false`, z}, nil
		}
		w, e := tr.literalShape(t.Elements, o.Value)
		if e != nil {
			return nil, e
		}
		return optionShape{`true`, w}, nil
	case typ.Map:
		s, ok := sortOf(t)
		if !ok {
			return nil, capability(`map literals over %s/%s are not supported`, t.Key.ValueType(), t.Value.ValueType())
		}
		z, e := tr.literalShape(t.Value, t.Value.Zero())
		if e != nil {
			return nil, e
		}
		out := `((as const ` + s + `) ` + term(z) + `)`
		m := v.(val.Map)
		var le err.Error
		m.ForEach(func(k, w val.Value) bool {
			ks, e := tr.literalShape(t.Key, k)
			if e != nil {
				le = e
				return false
			}
			ws, e := tr.literalShape(t.Value, w)
			if e != nil {
				le = e
				return false
			}
			out = `(store ` + out + ` ` + term(ks) + ` ` + term(ws) + `)`
			return true
		})
		if le != nil {
			return nil, le
		}
		return leaf(out), nil
	case typ.DefaultMap:
		m := v.(val.DefaultMap)
		return dmapShape{lit: &m, keyType: t.Key, valueType: t.Value}, nil
	}
	panic(fmt.Sprintf(`literalShape: %T`, t))
}

// iteShape distributes a conditional over every leaf of two shapes of
// the same type.
func (tr *translator) iteShape(cond string, a, b shape) (shape, err.Error) {
	switch a := a.(type) {
	case leaf:
		return leaf(`(ite ` + cond + ` ` + string(a) + ` ` + term(b) + `)`), nil
	case parts:
		bp := b.(parts)
		out := make(parts, len(a))
		for i := range a {
			p, e := tr.iteShape(cond, a[i], bp[i])
			if e != nil {
				return nil, e
			}
			out[i] = p
		}
		return out, nil
	case optionShape:
		bo := b.(optionShape)
		v, e := tr.iteShape(cond, a.value, bo.value)
		if e != nil {
			return nil, e
		}
		return optionShape{`(ite ` + cond + ` ` + a.present + ` ` + bo.present + `)`, v}, nil
	case dmapShape:
		return nil, capability(`conditional default-valued map values are not supported`)
	}
	panic(fmt.Sprintf(`iteShape: %T`, a))
}

// eqShape builds the boolean term for structural equality of two
// shapes of type t. Option equality is extensional: absent options
// compare equal regardless of their value component.
func (tr *translator) eqShape(t typ.Type, a, b shape) (string, err.Error) {
	if _, ok := sortOf(t); ok {
		return `(= ` + term(a) + ` ` + term(b) + `)`, nil
	}
	switch t := t.(type) {
	case typ.Tuple:
		ap, bp := a.(parts), b.(parts)
		terms := make([]string, len(t))
		for i, u := range t {
			s, e := tr.eqShape(u, ap[i], bp[i])
			if e != nil {
				return ``, e
			}
			terms[i] = s
		}
		return conj(terms), nil
	case typ.Struct:
		ap, bp := a.(parts), b.(parts)
		terms := make([]string, 0, t.Len())
		i := 0
		var le err.Error
		t.ForEach(func(k string, u typ.Type) bool {
			s, e := tr.eqShape(u, ap[i], bp[i])
			if e != nil {
				le = e
				return false
			}
			terms = append(terms, s)
			i++
			return true
		})
		if le != nil {
			return ``, le
		}
		return conj(terms), nil
	case typ.Option:
		ao, bo := a.(optionShape), b.(optionShape)
		v, e := tr.eqShape(t.Elements, ao.value, bo.value)
		if e != nil {
			return ``, e
		}
		return `(and (= ` + ao.present + ` ` + bo.present + `) (=> ` + ao.present + ` ` + v + `))`, nil
	case typ.DefaultMap:
		return tr.dmapEqual(a.(dmapShape), b.(dmapShape))
	}
	return ``, capability(`equality over %s is not supported`, t.ValueType())
}

// readDMap encodes reading key k off an unrolled default-valued map:
// a nested conditional over the overrides, most recent first, bottoming
// out in the base.
//
// Free-variable bases are readable at literal keys only. Each such
// read gets a lazily declared symbol; nothing ties the symbols of
// distinct keys together, which exactly matches a map with unknown
// default and unknown overrides.
func (tr *translator) readDMap(m dmapShape, k shape, kLit val.Value) (shape, err.Error) {
	var out shape
	if m.lit != nil {
		base, e := tr.literalShape(m.valueType, m.lit.Default())
		if e != nil {
			return nil, e
		}
		out = base
		for _, h := range m.lit.History() {
			hk, e := tr.literalShape(m.keyType, h.Key)
			if e != nil {
				return nil, e
			}
			hv, e := tr.literalShape(m.valueType, h.Value)
			if e != nil {
				return nil, e
			}
			cond, e := tr.eqShape(m.keyType, k, hk)
			if e != nil {
				return nil, e
			}
			out, e = tr.iteShape(cond, hv, out)
			if e != nil {
				return nil, e
			}
		}
	} else {
		if kLit == nil {
			return nil, capability(`reading a free map variable at a computed key is not supported`)
		}
		sym, e := tr.dmapKeySymbol(m.varName, kLit, m.valueType)
		if e != nil {
			return nil, e
		}
		out = sym
	}
	for i := len(m.overrides) - 1; i > -1; i-- {
		ov := m.overrides[i]
		cond, e := tr.eqShape(m.keyType, k, ov.key)
		if e != nil {
			return nil, e
		}
		out, e = tr.iteShape(cond, ov.value, out)
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}

// touchedKeys collects the distinct literal keys observable on a map
// shape: its base history plus its overrides. Overrides with computed
// keys report an error.
func (m dmapShape) touchedKeys() ([]val.Value, err.Error) {
	ks := make([]val.Value, 0, len(m.overrides)+4)
	add := func(k val.Value) {
		for _, q := range ks {
			if q.Equals(k) {
				return
			}
		}
		ks = append(ks, k)
	}
	if m.lit != nil {
		for _, h := range m.lit.History() {
			add(h.Key)
		}
	}
	for _, ov := range m.overrides {
		if ov.keyLit == nil {
			return nil, capability(`this operation requires literal map keys`)
		}
		add(ov.keyLit)
	}
	return ks, nil
}

// dmapEqual encodes extensional map equality as agreement on every key
// either side ever touched. Keys outside both histories read back the
// default on both sides, so the conjunction over the combined history
// suffices; a free-variable base contributes its override keys and
// reads through its per-key symbols.
func (tr *translator) dmapEqual(a, b dmapShape) (string, err.Error) {
	if a.lit != nil && b.lit != nil && !a.lit.Default().Equals(b.lit.Default()) {
		return `false`, nil
	}
	ak, e := a.touchedKeys()
	if e != nil {
		return ``, e
	}
	bk, e := b.touchedKeys()
	if e != nil {
		return ``, e
	}
	keys := ak
	for _, k := range bk {
		seen := false
		for _, q := range keys {
			if q.Equals(k) {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, k)
		}
	}
	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		ks, e := tr.literalShape(a.keyType, k)
		if e != nil {
			return ``, e
		}
		av, e := tr.readDMap(a, ks, k)
		if e != nil {
			return ``, e
		}
		bv, e := tr.readDMap(b, ks, k)
		if e != nil {
			return ``, e
		}
		s, e := tr.eqShape(a.valueType, av, bv)
		if e != nil {
			return ``, e
		}
		terms = append(terms, s)
	}
	return conj(terms), nil
}

// dmapCount encodes entryCount as an indicator sum over the touched
// keys: reads that differ from the default contribute one each.
func (tr *translator) dmapCount(m dmapShape) (string, err.Error) {
	if m.lit == nil {
		return ``, capability(`entryCount over a free map variable is not supported`)
	}
	keys, e := m.touchedKeys()
	if e != nil {
		return ``, e
	}
	dflt, e := tr.literalShape(m.valueType, m.lit.Default())
	if e != nil {
		return ``, e
	}
	if len(keys) == 0 {
		return `(_ bv0 64)`, nil
	}
	terms := make([]string, len(keys))
	for i, k := range keys {
		ks, e := tr.literalShape(m.keyType, k)
		if e != nil {
			return ``, e
		}
		v, e := tr.readDMap(m, ks, k)
		if e != nil {
			return ``, e
		}
		same, e := tr.eqShape(m.valueType, v, dflt)
		if e != nil {
			return ``, e
		}
		terms[i] = `(ite ` + same + ` (_ bv0 64) (_ bv1 64))`
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return `(bvadd ` + strings.Join(terms, " ") + `)`, nil
}
