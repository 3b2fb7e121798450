// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package bdd

import (
	"fmt"

	"github.com/dalzilio/rudd"

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

// bitKid translates child i down to a single boolean node.
func (tr *translator) bitKid(n *xpr.Node, i int) (rudd.Node, err.Error) {
	sh, e := tr.translate(n.Kid(i))
	if e != nil {
		return nil, e
	}
	return sh.(word)[0], nil
}

func (tr *translator) wordKid(n *xpr.Node, i int) (word, err.Error) {
	sh, e := tr.translate(n.Kid(i))
	if e != nil {
		return nil, e
	}
	return sh.(word), nil
}

func boolWord(n rudd.Node) word {
	return word{n}
}

func (tr *translator) translateNode(n *xpr.Node) (shape, err.Error) {

	switch n.Op() {

	case xpr.OpConst:
		return tr.literalShape(n.Type(), n.Literal())

	case xpr.OpVar:
		return tr.declareVar(n)

	case xpr.OpAnd, xpr.OpOr:
		op := tr.b.And
		if n.Op() == xpr.OpOr {
			op = tr.b.Or
		}
		bits := make([]rudd.Node, n.Len())
		for i := range bits {
			b, e := tr.bitKid(n, i)
			if e != nil {
				return nil, e
			}
			bits[i] = b
		}
		return boolWord(op(bits...)), nil

	case xpr.OpNot:
		b, e := tr.bitKid(n, 0)
		if e != nil {
			return nil, e
		}
		return boolWord(tr.b.Not(b)), nil

	case xpr.OpEq:
		a, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		b, e := tr.translate(n.Kid(1))
		if e != nil {
			return nil, e
		}
		same, e := tr.eqShape(n.Kid(0).Type(), a, b)
		if e != nil {
			return nil, e
		}
		return boolWord(same), nil

	case xpr.OpLt, xpr.OpGt:
		t := n.Kid(0).Type()
		_, signed, sized := typ.IsSizedInteger(t)
		if _, isChar := t.(typ.Char); !sized && !isChar {
			return nil, capability(`ordering over %s has no finite encoding`, t.ValueType())
		}
		a, e := tr.wordKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.wordKid(n, 1)
		if e != nil {
			return nil, e
		}
		if n.Op() == xpr.OpGt {
			a, b = b, a
		}
		return boolWord(tr.ltWord(a, b, signed)), nil

	case xpr.OpAdd, xpr.OpSub, xpr.OpMul:
		if _, _, ok := typ.IsSizedInteger(n.Type()); !ok {
			return nil, capability(`arithmetic over %s has no finite encoding`, n.Type().ValueType())
		}
		a, e := tr.wordKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.wordKid(n, 1)
		if e != nil {
			return nil, e
		}
		switch n.Op() {
		case xpr.OpAdd:
			return tr.addWord(a, b), nil
		case xpr.OpSub:
			return tr.subWord(a, b), nil
		}
		return tr.mulWord(a, b), nil

	case xpr.OpBitAnd, xpr.OpBitOr, xpr.OpBitXor:
		a, e := tr.wordKid(n, 0)
		if e != nil {
			return nil, e
		}
		b, e := tr.wordKid(n, 1)
		if e != nil {
			return nil, e
		}
		switch n.Op() {
		case xpr.OpBitAnd:
			return tr.bitwiseWord(tr.b.And, a, b), nil
		case xpr.OpBitOr:
			return tr.bitwiseWord(tr.b.Or, a, b), nil
		}
		return tr.xorWord(a, b), nil

	case xpr.OpShl, xpr.OpShr:
		v, e := tr.wordKid(n, 0)
		if e != nil {
			return nil, e
		}
		amount, e := tr.wordKid(n, 1)
		if e != nil {
			return nil, e
		}
		_, signed, _ := typ.IsSizedInteger(n.Type())
		left := n.Op() == xpr.OpShl
		return tr.shiftWord(v, amount, left, !left && signed), nil

	case xpr.OpIf:
		switch n.Type().(type) {
		case typ.DefaultMap:
			return nil, capability(`conditional default-valued map values are not supported`)
		case typ.Map:
			return nil, capability(`conditional map values are not supported`)
		}
		c, e := tr.bitKid(n, 0)
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
		return optionShape{tr.b.True(), sh}, nil

	case xpr.OpIsPresent:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return boolWord(sh.(optionShape).present), nil

	case xpr.OpAssertPresent:
		// the asserted presence becomes a global side constraint:
		// solutions where the option is absent are ruled out rather
		// than reported as runtime errors
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		o := sh.(optionShape)
		tr.side = append(tr.side, o.present)
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

	case xpr.OpList, xpr.OpConcat, xpr.OpLength, xpr.OpSlice, xpr.OpCharAt,
		xpr.OpIndexOf, xpr.OpContains, xpr.OpStartsWith, xpr.OpEndsWith,
		xpr.OpReplaceFirst, xpr.OpMatchRegex:
		return nil, capability(`sequence operation %s has no finite encoding`, n.Op())

	case xpr.OpKey:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		m := sh.(mapShape)
		if n.Kid(1).Op() != xpr.OpConst {
			return nil, capability(`maps are readable at constant keys only`)
		}
		k := n.Kid(1).Literal()
		for _, entry := range m.entries {
			if entry.key.Equals(k) {
				return entry.value, nil
			}
		}
		return nil, err.ExecutionError{Problem: fmt.Sprintf(`key not present in map: %v`, k)}

	case xpr.OpSetKey:
		sh, e := tr.translate(n.Kid(0))
		if e != nil {
			return nil, e
		}
		m := sh.(mapShape)
		if n.Kid(1).Op() != xpr.OpConst {
			return nil, capability(`maps are writable at constant keys only`)
		}
		k := n.Kid(1).Literal()
		v, e := tr.translate(n.Kid(2))
		if e != nil {
			return nil, e
		}
		out := mapShape{valueType: m.valueType, entries: make([]mapEntry, 0, len(m.entries)+1)}
		replaced := false
		for _, entry := range m.entries {
			if entry.key.Equals(k) {
				out.entries = append(out.entries, mapEntry{k.Copy(), v})
				replaced = true
				continue
			}
			out.entries = append(out.entries, entry)
		}
		if !replaced {
			out.entries = append(out.entries, mapEntry{k.Copy(), v})
		}
		return out, nil

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
		return tr.dmapCount(m.(dmapShape))

	}
	panic(fmt.Sprintf(`unhandled op: %s`, n.Op()))
}
