// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"fmt"
	"strings"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

func (tr *translator) translate(n *xpr.Node) (shape, err.Error) {
	if sh, ok := tr.memo[n.ID()]; ok {
		return sh, nil
	}
	sh, e := tr.translateNode(n)
	if e != nil {
		return nil, e
	}
	tr.memo[n.ID()] = sh
	return sh, nil
}

// leafKid translates child i down to a single term. Only valid for
// directly sorted operand types.
func (tr *translator) leafKid(n *xpr.Node, i int) (string, err.Error) {
	sh, e := tr.translate(n.Kid(i))
	if e != nil {
		return ``, e
	}
	return term(sh), nil
}

// bvToInt introduces an integer alias for a bitvector term. int2bv is
// modular, so constraining the alias to the signed (or unsigned) value
// range pins it to exactly one integer.
func (tr *translator) bvToInt(t string, width int, signed bool) (string, err.Error) {
	k, e := tr.freshSym(`Int`)
	if e != nil {
		return ``, e
	}
	if e := tr.engine.Assert(fmt.Sprintf(`(= ((_ int2bv %d) %s) %s)`, width, k, t)); e != nil {
		return ``, e
	}
	lo, hi := ``, ``
	if signed {
		half := fmt.Sprintf(`%d`, uint64(1)<<uint(width-1))
		lo, hi = `(- `+half+`)`, half
	} else {
		lo = `0`
		if width == 64 {
			hi = `18446744073709551616`
		} else {
			hi = fmt.Sprintf(`%d`, uint64(1)<<uint(width))
		}
	}
	if e := tr.engine.Assert(`(and (>= ` + k + ` ` + lo + `) (< ` + k + ` ` + hi + `))`); e != nil {
		return ``, e
	}
	return k, nil
}

// seqKind distinguishes the string from the list flavor of a sequence
// operator and yields the prefix of the SMT-LIB function family.
func seqKind(t typ.Type) (prefix string, isString bool, e err.Error) {
	switch t.(type) {
	case typ.String:
		return `str.`, true, nil
	case typ.List:
		if _, ok := sortOf(t); !ok {
			return ``, false, capability(`sequence operations over %s are not supported`, t.ValueType())
		}
		return `seq.`, false, nil
	}
	panic(fmt.Sprintf(`seqKind: %T`, t))
}

func emptySeqTerm(t typ.Type) string {
	if _, ok := t.(typ.String); ok {
		return `""`
	}
	s, _ := sortOf(t)
	return `(as seq.empty ` + s + `)`
}

func (tr *translator) zeroShape(t typ.Type) (shape, err.Error) {
	return tr.literalShape(t, t.Zero())
}

func (tr *translator) translateNode(n *xpr.Node) (shape, err.Error) {

	switch n.Op() {

	case xpr.OpConst:
		return tr.literalShape(n.Type(), n.Literal())

	case xpr.OpVar:
		return tr.declareVar(n)

	case xpr.OpAnd, xpr.OpOr:
		op := `and`
		if n.Op() == xpr.OpOr {
			op = `or`
		}
		terms := make([]string, n.Len())
		for i := range terms {
			t, e := tr.leafKid(n, i)
			if e != nil {
				return nil, e
			}
			terms[i] = t
		}
		return leaf(`(` + op + ` ` + strings.Join(terms, " ") + `)`), nil

	case xpr.OpNot:
		t, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		return leaf(`(not ` + t + `)`), nil

	case xpr.OpEq:
		a, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		b, e := tr.translate(n.Kid(1))
		if e != nil {
			return nil, e
		}
		s, e := tr.eqShape(n.Kid(0).Type(), a, b)
		if e != nil {
			return nil, e
		}
		return leaf(s), nil

	case xpr.OpLt, xpr.OpGt:
		a, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		if n.Op() == xpr.OpGt {
			a, b = b, a
		}
		t := n.Kid(0).Type()
		if _, signed, ok := typ.IsSizedInteger(t); ok {
			if signed {
				return leaf(`(bvslt ` + a + ` ` + b + `)`), nil
			}
			return leaf(`(bvult ` + a + ` ` + b + `)`), nil
		}
		return leaf(`(< ` + a + ` ` + b + `)`), nil

	case xpr.OpAdd, xpr.OpSub, xpr.OpMul:
		a, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		ops := map[xpr.Op][2]string{
			xpr.OpAdd: {`+`, `bvadd`},
			xpr.OpSub: {`-`, `bvsub`},
			xpr.OpMul: {`*`, `bvmul`},
		}[n.Op()]
		if _, _, ok := typ.IsSizedInteger(n.Type()); ok {
			return leaf(`(` + ops[1] + ` ` + a + ` ` + b + `)`), nil
		}
		return leaf(`(` + ops[0] + ` ` + a + ` ` + b + `)`), nil

	case xpr.OpBitAnd, xpr.OpBitOr, xpr.OpBitXor:
		a, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		op := map[xpr.Op]string{
			xpr.OpBitAnd: `bvand`,
			xpr.OpBitOr:  `bvor`,
			xpr.OpBitXor: `bvxor`,
		}[n.Op()]
		return leaf(`(` + op + ` ` + a + ` ` + b + `)`), nil

	case xpr.OpShl, xpr.OpShr:
		return tr.translateShift(n)

	case xpr.OpIf:
		if _, ok := n.Type().(typ.DefaultMap); ok {
			return nil, capability(`conditional default-valued map values are not supported`)
		}
		c, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		a, e := tr.translate(n.Kid(1))
		if e != nil {
			return nil, e
		}
		b, e := tr.translate(n.Kid(2))
		if e != nil {
			return nil, e
		}
		return tr.iteShape(c, a, b)

	case xpr.OpTuple, xpr.OpStruct:
		ps := make(parts, n.Len())
		for i := range ps {
			p, e := tr.translate(n.Kid(i))
			if e != nil {
				return nil, e
			}
			ps[i] = p
		}
		return ps, nil

	case xpr.OpTupleAt:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return sh.(parts)[n.Index()], nil

	case xpr.OpField:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		st := n.Kid(0).Type().(typ.Struct)
		index, i := -1, 0
		st.ForEach(func(k string, _ typ.Type) bool {
			if k == n.Name() {
				index = i
				return false
			}
			i++
			return true
		})
		return sh.(parts)[index], nil

	case xpr.OpSome:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return optionShape{`true`, sh}, nil

	case xpr.OpIsPresent:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return leaf(sh.(optionShape).present), nil

	case xpr.OpAssertPresent:
		// the asserted presence becomes a global side constraint:
		// solutions where the option is absent are ruled out rather
		// than reported as runtime errors
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		o := sh.(optionShape)
		if e := tr.engine.Assert(o.present); e != nil {
			return nil, e
		}
		return o.value, nil

	case xpr.OpPresentOrZero:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		o := sh.(optionShape)
		z, e := tr.zeroShape(n.Type())
		if e != nil {
			return nil, e
		}
		return tr.iteShape(o.present, o.value, z)

	case xpr.OpList:
		lt := n.Type().(typ.List)
		es, ok := sortOf(lt.Elements)
		if !ok {
			return nil, capability(`lists over %s are not supported`, lt.Elements.ValueType())
		}
		if n.Len() == 0 {
			return leaf(`(as seq.empty (Seq ` + es + `))`), nil
		}
		units := make([]string, n.Len())
		for i := range units {
			t, e := tr.leafKid(n, i)
			if e != nil {
				return nil, e
			}
			units[i] = `(seq.unit ` + t + `)`
		}
		if len(units) == 1 {
			return leaf(units[0]), nil
		}
		return leaf(`(seq.++ ` + strings.Join(units, " ") + `)`), nil

	case xpr.OpConcat:
		prefix, _, e := seqKind(n.Type())
		if e != nil {
			return nil, e
		}
		a, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		return leaf(`(` + prefix + `++ ` + a + ` ` + b + `)`), nil

	case xpr.OpLength:
		prefix, _, e := seqKind(n.Kid(0).Type())
		if e != nil {
			return nil, e
		}
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		return leaf(`((_ int2bv 64) (` + prefix + `len ` + s + `))`), nil

	case xpr.OpSlice:
		return tr.translateSlice(n)

	case xpr.OpCharAt:
		return tr.translateCharAt(n)

	case xpr.OpIndexOf:
		prefix, _, e := seqKind(n.Kid(0).Type())
		if e != nil {
			return nil, e
		}
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		sub, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		return leaf(`((_ int2bv 64) (` + prefix + `indexof ` + s + ` ` + sub + ` 0))`), nil

	case xpr.OpContains:
		prefix, _, e := seqKind(n.Kid(0).Type())
		if e != nil {
			return nil, e
		}
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		sub, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		return leaf(`(` + prefix + `contains ` + s + ` ` + sub + `)`), nil

	case xpr.OpStartsWith, xpr.OpEndsWith:
		prefix, _, e := seqKind(n.Kid(0).Type())
		if e != nil {
			return nil, e
		}
		fn := prefix + `prefixof`
		if n.Op() == xpr.OpEndsWith {
			fn = prefix + `suffixof`
		}
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		sub, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		return leaf(`(` + fn + ` ` + sub + ` ` + s + `)`), nil

	case xpr.OpReplaceFirst:
		prefix, _, e := seqKind(n.Kid(0).Type())
		if e != nil {
			return nil, e
		}
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		old, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		nw, e := tr.leafKid(n, 2)
		if e != nil {
			return nil, e
		}
		// replacing the empty sequence is the identity here, while
		// SMT-LIB's replace prepends: guard it
		empty := emptySeqTerm(n.Type())
		return leaf(`(ite (= ` + old + ` ` + empty + `) ` + s + ` (` + prefix + `replace ` + s + ` ` + old + ` ` + nw + `))`), nil

	case xpr.OpMatchRegex:
		s, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		re, e := regexTerm(n.Name())
		if e != nil {
			return nil, e
		}
		return leaf(`(str.in_re ` + s + ` ` + re + `)`), nil

	case xpr.OpKey:
		// array semantics are total: reads at absent keys yield
		// arbitrary values instead of the interpreter's error
		mt := n.Kid(0).Type().(typ.Map)
		if _, ok := sortOf(mt); !ok {
			return nil, capability(`maps over %s/%s are not supported`, mt.Key.ValueType(), mt.Value.ValueType())
		}
		m, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		k, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		return leaf(`(select ` + m + ` ` + k + `)`), nil

	case xpr.OpSetKey:
		mt := n.Type().(typ.Map)
		if _, ok := sortOf(mt); !ok {
			return nil, capability(`maps over %s/%s are not supported`, mt.Key.ValueType(), mt.Value.ValueType())
		}
		m, e := tr.leafKid(n, 0)
		if e != nil {
			return nil, e
		}
		k, e := tr.leafKid(n, 1)
		if e != nil {
			return nil, e
		}
		v, e := tr.leafKid(n, 2)
		if e != nil {
			return nil, e
		}
		return leaf(`(store ` + m + ` ` + k + ` ` + v + `)`), nil

	case xpr.OpEntry:
		m, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		k, e := tr.translate(n.Kid(1))
		if e != nil {
			return nil, e
		}
		var kLit val.Value
		if n.Kid(1).Op() == xpr.OpConst {
			kLit = n.Kid(1).Literal()
		}
		return tr.readDMap(m.(dmapShape), k, kLit)

	case xpr.OpSetEntry:
		m, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		k, e := tr.translate(n.Kid(1))
		if e != nil {
			return nil, e
		}
		v, e := tr.translate(n.Kid(2))
		if e != nil {
			return nil, e
		}
		base := m.(dmapShape)
		var kLit val.Value
		if n.Kid(1).Op() == xpr.OpConst {
			kLit = n.Kid(1).Literal()
		}
		ovs := make([]dmapOverride, len(base.overrides)+1)
		copy(ovs, base.overrides)
		ovs[len(ovs)-1] = dmapOverride{k, kLit, v}
		out := base
		out.overrides = ovs
		return out, nil

	case xpr.OpEntryCount:
		m, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		s, e := tr.dmapCount(m.(dmapShape))
		if e != nil {
			return nil, e
		}
		return leaf(s), nil

	}
	panic(fmt.Sprintf(`unhandled op: %s`, n.Op()))
}

func (tr *translator) translateShift(n *xpr.Node) (shape, err.Error) {
	x, e := tr.leafKid(n, 0)
	if e != nil {
		return nil, e
	}
	amt, e := tr.leafKid(n, 1)
	if e != nil {
		return nil, e
	}
	w, signed, _ := typ.IsSizedInteger(n.Type())
	aw, _, _ := typ.IsSizedInteger(n.Kid(1).Type())

	op := `bvshl`
	if n.Op() == xpr.OpShr {
		if signed {
			op = `bvashr`
		} else {
			op = `bvlshr`
		}
	}

	switch {
	case aw == w:
		return leaf(`(` + op + ` ` + x + ` ` + amt + `)`), nil
	case aw < w:
		ext := fmt.Sprintf(`((_ zero_extend %d) %s)`, w-aw, amt)
		return leaf(`(` + op + ` ` + x + ` ` + ext + `)`), nil
	}
	// wider amount: extract the low bits, but amounts at or above 2^w
	// must saturate, not truncate
	low := fmt.Sprintf(`((_ extract %d 0) %s)`, w-1, amt)
	guard := `(bvult ` + amt + ` ` + bvTerm(uint64(1)<<uint(w), aw) + `)`
	oor := bvTerm(0, w)
	if op == `bvashr` {
		oor = `(bvashr ` + x + ` ` + bvTerm(uint64(w), w) + `)`
	}
	return leaf(`(ite ` + guard + ` (` + op + ` ` + x + ` ` + low + `) ` + oor + `)`), nil
}

func (tr *translator) translateSlice(n *xpr.Node) (shape, err.Error) {
	prefix, isString, e := seqKind(n.Type())
	if e != nil {
		return nil, e
	}
	s, e := tr.leafKid(n, 0)
	if e != nil {
		return nil, e
	}
	offBv, e := tr.leafKid(n, 1)
	if e != nil {
		return nil, e
	}
	lenBv, e := tr.leafKid(n, 2)
	if e != nil {
		return nil, e
	}
	off, e := tr.bvToInt(offBv, 64, true)
	if e != nil {
		return nil, e
	}
	length, e := tr.bvToInt(lenBv, 64, true)
	if e != nil {
		return nil, e
	}
	// negative offsets shrink the window instead of emptying it, the
	// extract primitive handles the remaining out-of-range cases
	lo := `(ite (< ` + off + ` 0) 0 ` + off + `)`
	ln := `(ite (< ` + off + ` 0) (+ ` + length + ` ` + off + `) ` + length + `)`
	fn := prefix + `extract`
	if isString {
		fn = `str.substr`
	}
	return leaf(`(` + fn + ` ` + s + ` ` + lo + ` ` + ln + `)`), nil
}

func (tr *translator) translateCharAt(n *xpr.Node) (shape, err.Error) {
	_, isString, e := seqKind(n.Kid(0).Type())
	if e != nil {
		return nil, e
	}
	s, e := tr.leafKid(n, 0)
	if e != nil {
		return nil, e
	}
	idxBv, e := tr.leafKid(n, 1)
	if e != nil {
		return nil, e
	}
	i, e := tr.bvToInt(idxBv, 64, true)
	if e != nil {
		return nil, e
	}
	if isString {
		return leaf(`(str.at ` + s + ` ` + i + `)`), nil
	}
	present := `(and (>= ` + i + ` 0) (< ` + i + ` (seq.len ` + s + `)))`
	return optionShape{present, leaf(`(seq.nth ` + s + ` ` + i + `)`)}, nil
}
