// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package bdd translates expressions over finite domains into binary
// decision diagrams. Booleans, sized integers and chars are bit-blasted
// into two's-complement circuits; strings, sequences and big integers
// have no finite encoding and are rejected with a capability error
// before any solving happens.
package bdd

import (
	"fmt"

	"github.com/dalzilio/rudd"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// charBits covers the unicode code point range, 0 to 0x10FFFF.
const charBits = 21

// shape mirrors an expression's type, one word per scalar component.
type shape interface {
	_shape()
}

type parts []shape

type optionShape struct {
	present rudd.Node
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

// mapShape is a general map with fully concrete keys. The diagram has
// no array theory, so symbolic keys and free map variables are
// capability errors.
type mapShape struct {
	valueType typ.Type
	entries   []mapEntry
}

type mapEntry struct {
	key   val.Value
	value shape
}

func (word) _shape()        {}
func (parts) _shape()       {}
func (optionShape) _shape() {}
func (dmapShape) _shape()   {}
func (mapShape) _shape()    {}

// layout records which input bit levels a free variable's leaves
// occupy, mirroring its shape. Model extraction reads values back off
// a flat level assignment through it.
type layout interface {
	_layout()
}

type span struct {
	lo, n int
}

type layoutParts []layout

type optionLayout struct {
	present int
	value   layout
}

func (span) _layout()         {}
func (layoutParts) _layout()  {}
func (optionLayout) _layout() {}

type dmapKeyEntry struct {
	key val.Value
	sh  shape
	lay layout
}

type varInfo struct {
	node *xpr.Node
	sh   shape
	lay  layout
	keys []dmapKeyEntry // lazily declared per-key bits (dmap vars)
}

type translator struct {
	b     *rudd.BDD
	vars  map[string]*varInfo
	order []string
	memo  map[uint64]shape
	side  []rudd.Node // constraints anded into the problem
	next  int         // next free input bit level
	limit int
}

func capability(format string, args ...interface{}) err.Error {
	return err.CapabilityError{Backend: `bdd`, Problem: fmt.Sprintf(format, args...)}
}

func engineError(format string, args ...interface{}) err.Error {
	return err.EngineError{Backend: `bdd`, Problem: fmt.Sprintf(format, args...)}
}

// scalarBits reports the bit width of a directly encodable type.
func scalarBits(t typ.Type) (width int, signed bool, ok bool) {
	switch t.(type) {
	case typ.Bool:
		return 1, false, true
	case typ.Char:
		return charBits, false, true
	case typ.Int8:
		return 8, true, true
	case typ.Int16:
		return 16, true, true
	case typ.Int32:
		return 32, true, true
	case typ.Int64:
		return 64, true, true
	case typ.Uint8:
		return 8, false, true
	case typ.Uint16:
		return 16, false, true
	case typ.Uint32:
		return 32, false, true
	case typ.Uint64:
		return 64, false, true
	}
	return 0, false, false
}

// shapeBits is the total input bit count of a free variable of type t.
func shapeBits(t typ.Type) (int, err.Error) {
	if w, _, ok := scalarBits(t); ok {
		return w, nil
	}
	switch t := t.(type) {
	case typ.Tuple:
		total := 0
		for _, u := range t {
			w, e := shapeBits(u)
			if e != nil {
				return 0, e
			}
			total += w
		}
		return total, nil
	case typ.Struct:
		total := 0
		var le err.Error
		t.ForEach(func(_ string, u typ.Type) bool {
			w, e := shapeBits(u)
			if e != nil {
				le = e
				return false
			}
			total += w
			return true
		})
		if le != nil {
			return 0, le
		}
		return total, nil
	case typ.Option:
		w, e := shapeBits(t.Elements)
		if e != nil {
			return 0, e
		}
		return w + 1, nil
	}
	return 0, capability(`free variables of type %s have no finite encoding`, t.ValueType())
}

// bitBudget walks the problem and bounds the number of input bits the
// translation can allocate: the sum over free variables of their
// widths, plus one value slot per constant that could serve as a read
// key of a free default-valued map. Constants nested inside composite
// literals count too: equality against a literal map reads the keys of
// its override history. The bound lets the diagram be sized before
// translation starts.
func bitBudget(problem *xpr.Node) (int, err.Error) {
	vars := make(map[string]typ.Type, 8)
	consts := []val.Value(nil)
	addConst := func(v val.Value) {
		for _, seen := range consts {
			if seen.Equals(v) {
				return
			}
		}
		consts = append(consts, v)
	}
	var collect func(v val.Value)
	collect = func(v val.Value) {
		addConst(v)
		switch v := v.(type) {
		case val.Tuple:
			for _, w := range v {
				collect(w)
			}
		case val.List:
			for _, w := range v {
				collect(w)
			}
		case val.Struct:
			v.ForEach(func(_ string, w val.Value) bool {
				collect(w)
				return true
			})
		case val.Option:
			if v.Present {
				collect(v.Value)
			}
		case val.Map:
			v.ForEach(func(k, w val.Value) bool {
				collect(k)
				collect(w)
				return true
			})
		case val.DefaultMap:
			// equality against this literal reads its history keys
			for _, entry := range v.History() {
				collect(entry.Key)
			}
		}
	}
	problem.Walk(func(n *xpr.Node) bool {
		switch n.Op() {
		case xpr.OpVar:
			vars[n.Name()] = n.Type()
		case xpr.OpConst:
			collect(n.Literal())
		}
		return true
	})
	total := 0
	for _, t := range vars {
		if d, ok := t.(typ.DefaultMap); ok {
			vw, e := shapeBits(d.Value)
			if e != nil {
				return 0, capability(`free variables of type %s have no finite encoding`, t.ValueType())
			}
			for _, c := range consts {
				if typ.Conforms(d.Key, c) {
					total += vw
				}
			}
			continue
		}
		w, e := shapeBits(t)
		if e != nil {
			return 0, e
		}
		total += w
	}
	return total, nil
}

func newTranslator(b *rudd.BDD, limit int) *translator {
	return &translator{
		b:     b,
		vars:  make(map[string]*varInfo, 8),
		memo:  make(map[uint64]shape, 32),
		limit: limit,
	}
}

// alloc reserves n consecutive input bit levels.
func (tr *translator) alloc(n int) (int, err.Error) {
	if tr.next+n > tr.limit {
		return 0, engineError(`input bit budget exceeded`)
	}
	lo := tr.next
	tr.next += n
	return lo, nil
}

func (tr *translator) inputWord(width int) (word, span, err.Error) {
	lo, e := tr.alloc(width)
	if e != nil {
		return nil, span{}, e
	}
	out := make(word, width)
	for i := range out {
		out[i] = tr.b.Ithvar(lo + i)
	}
	return out, span{lo, width}, nil
}

// declareShape allocates input bits for every scalar component of t.
func (tr *translator) declareShape(t typ.Type) (shape, layout, err.Error) {
	if w, _, ok := scalarBits(t); ok {
		out, sp, e := tr.inputWord(w)
		if e != nil {
			return nil, nil, e
		}
		if _, ok := t.(typ.Char); ok {
			// constrain to the code point range
			tr.side = append(tr.side, tr.ltWord(out, tr.constWord(0x110000, charBits), false))
		}
		return out, sp, nil
	}
	switch t := t.(type) {
	case typ.Tuple:
		ps := make(parts, len(t))
		ls := make(layoutParts, len(t))
		for i, u := range t {
			p, l, e := tr.declareShape(u)
			if e != nil {
				return nil, nil, e
			}
			ps[i], ls[i] = p, l
		}
		return ps, ls, nil
	case typ.Struct:
		ps := make(parts, 0, t.Len())
		ls := make(layoutParts, 0, t.Len())
		var e err.Error
		t.ForEach(func(_ string, u typ.Type) bool {
			p, l, de := tr.declareShape(u)
			if de != nil {
				e = de
				return false
			}
			ps, ls = append(ps, p), append(ls, l)
			return true
		})
		if e != nil {
			return nil, nil, e
		}
		return ps, ls, nil
	case typ.Option:
		p, sp, e := tr.inputWord(1)
		if e != nil {
			return nil, nil, e
		}
		v, l, e := tr.declareShape(t.Elements)
		if e != nil {
			return nil, nil, e
		}
		return optionShape{p[0], v}, optionLayout{sp.lo, l}, nil
	}
	return nil, nil, capability(`free variables of type %s have no finite encoding`, t.ValueType())
}

func (tr *translator) declareVar(n *xpr.Node) (shape, err.Error) {
	if vi, ok := tr.vars[n.Name()]; ok {
		return vi.sh, nil
	}
	t := n.Type()
	vi := &varInfo{node: n}
	switch t := t.(type) {
	case typ.DefaultMap:
		vi.sh = dmapShape{varName: n.Name(), keyType: t.Key, valueType: t.Value}
	case typ.Map:
		return nil, capability(`free variables of map type are not supported, use a default-valued map`)
	default:
		sh, lay, e := tr.declareShape(t)
		if e != nil {
			return nil, e
		}
		vi.sh, vi.lay = sh, lay
	}
	tr.vars[n.Name()] = vi
	tr.order = append(tr.order, n.Name())
	return vi.sh, nil
}

// dmapKeySymbol returns the lazily declared bits standing for a free
// map variable's value at one literal key.
func (tr *translator) dmapKeySymbol(varName string, key val.Value, valueType typ.Type) (shape, err.Error) {
	vi := tr.vars[varName]
	for _, e := range vi.keys {
		if e.key.Equals(key) {
			return e.sh, nil
		}
	}
	sh, lay, e := tr.declareShape(valueType)
	if e != nil {
		return nil, e
	}
	vi.keys = append(vi.keys, dmapKeyEntry{key.Copy(), sh, lay})
	return sh, nil
}

// valueBits packs a scalar constant into its two's-complement bits.
func valueBits(v val.Value) (uint64, bool) {
	switch v := v.(type) {
	case val.Bool:
		if v {
			return 1, true
		}
		return 0, true
	case val.Char:
		return uint64(uint32(v)), true
	case val.Int8:
		return uint64(uint8(v)), true
	case val.Int16:
		return uint64(uint16(v)), true
	case val.Int32:
		return uint64(uint32(v)), true
	case val.Int64:
		return uint64(v), true
	case val.Uint8:
		return uint64(v), true
	case val.Uint16:
		return uint64(v), true
	case val.Uint32:
		return uint64(v), true
	case val.Uint64:
		return uint64(v), true
	}
	return 0, false
}

// literalShape renders a constant value.
func (tr *translator) literalShape(t typ.Type, v val.Value) (shape, err.Error) {
	if w, _, ok := scalarBits(t); ok {
		u, ok := valueBits(v)
		if !ok {
			panic(fmt.Sprintf(`literalShape: %T as %T`, v, t))
		}
		return tr.constWord(u, w), nil
	}
	switch t := t.(type) {
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
			return optionShape{tr.b.False(), z}, nil
		}
		w, e := tr.literalShape(t.Elements, o.Value)
		if e != nil {
			return nil, e
		}
		return optionShape{tr.b.True(), w}, nil
	case typ.Map:
		m := v.(val.Map)
		out := mapShape{valueType: t.Value}
		var le err.Error
		m.ForEach(func(k, w val.Value) bool {
			ws, e := tr.literalShape(t.Value, w)
			if e != nil {
				le = e
				return false
			}
			out.entries = append(out.entries, mapEntry{k.Copy(), ws})
			return true
		})
		if le != nil {
			return nil, le
		}
		return out, nil
	case typ.DefaultMap:
		m := v.(val.DefaultMap)
		return dmapShape{lit: &m, keyType: t.Key, valueType: t.Value}, nil
	case typ.Int:
		return nil, capability(`arbitrary-precision integers have no finite encoding`)
	case typ.String, typ.List:
		return nil, capability(`values of type %s have no finite encoding`, t.ValueType())
	}
	panic(fmt.Sprintf(`literalShape: %T`, t))
}

func (tr *translator) zeroShape(t typ.Type) (shape, err.Error) {
	return tr.literalShape(t, t.Zero())
}

// iteShape distributes a conditional over every bit of two shapes of
// the same type.
func (tr *translator) iteShape(cond rudd.Node, a, b shape) (shape, err.Error) {
	switch a := a.(type) {
	case word:
		return tr.iteWord(cond, a, b.(word)), nil
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
		return optionShape{tr.b.Ite(cond, a.present, bo.present), v}, nil
	case dmapShape:
		return nil, capability(`conditional default-valued map values are not supported`)
	case mapShape:
		return nil, capability(`conditional map values are not supported`)
	}
	panic(fmt.Sprintf(`iteShape: %T`, a))
}

// eqShape builds the node for structural equality of two shapes of
// type t. Option equality is extensional: absent options compare equal
// regardless of their value component.
func (tr *translator) eqShape(t typ.Type, a, b shape) (rudd.Node, err.Error) {
	if _, _, ok := scalarBits(t); ok {
		return tr.eqWord(a.(word), b.(word)), nil
	}
	switch t := t.(type) {
	case typ.Tuple:
		ap, bp := a.(parts), b.(parts)
		out := tr.b.True()
		for i, u := range t {
			n, e := tr.eqShape(u, ap[i], bp[i])
			if e != nil {
				return nil, e
			}
			out = tr.b.And(out, n)
		}
		return out, nil
	case typ.Struct:
		ap, bp := a.(parts), b.(parts)
		out := tr.b.True()
		i := 0
		var le err.Error
		t.ForEach(func(_ string, u typ.Type) bool {
			n, e := tr.eqShape(u, ap[i], bp[i])
			if e != nil {
				le = e
				return false
			}
			out = tr.b.And(out, n)
			i++
			return true
		})
		if le != nil {
			return nil, le
		}
		return out, nil
	case typ.Option:
		ao, bo := a.(optionShape), b.(optionShape)
		v, e := tr.eqShape(t.Elements, ao.value, bo.value)
		if e != nil {
			return nil, e
		}
		same := tr.eqBit(ao.present, bo.present)
		return tr.b.And(same, tr.b.Or(tr.b.Not(ao.present), v)), nil
	case typ.DefaultMap:
		return tr.dmapEqual(a.(dmapShape), b.(dmapShape))
	case typ.Map:
		return tr.mapEqual(t, a.(mapShape), b.(mapShape))
	}
	return nil, capability(`equality over %s is not supported`, t.ValueType())
}

// mapEqual compares two concrete-keyed maps: same key sets, equal
// values per key.
func (tr *translator) mapEqual(t typ.Map, a, b mapShape) (rudd.Node, err.Error) {
	if len(a.entries) != len(b.entries) {
		return tr.b.False(), nil
	}
	out := tr.b.True()
	for _, ae := range a.entries {
		found := false
		for _, be := range b.entries {
			if !ae.key.Equals(be.key) {
				continue
			}
			n, e := tr.eqShape(t.Value, ae.value, be.value)
			if e != nil {
				return nil, e
			}
			out = tr.b.And(out, n)
			found = true
			break
		}
		if !found {
			return tr.b.False(), nil
		}
	}
	return out, nil
}

// readDMap encodes reading key k off an unrolled default-valued map:
// a conditional chain over the overrides where the most recent write
// wins, bottoming out in the base.
//
// Free-variable bases are readable at literal keys only. Each such
// read gets lazily declared bits; nothing ties the bits of distinct
// keys together, which exactly matches a map with unknown default and
// unknown overrides.
func (tr *translator) readDMap(m dmapShape, k shape, kLit val.Value) (shape, err.Error) {
	var out shape
	if m.lit != nil {
		base, e := tr.literalShape(m.valueType, m.lit.Default())
		if e != nil {
			return nil, e
		}
		out = base
		for _, entry := range m.lit.History() {
			ks, e := tr.literalShape(m.keyType, entry.Key)
			if e != nil {
				return nil, e
			}
			same, e := tr.eqShape(m.keyType, k, ks)
			if e != nil {
				return nil, e
			}
			vs, e := tr.literalShape(m.valueType, entry.Value)
			if e != nil {
				return nil, e
			}
			out, e = tr.iteShape(same, vs, out)
			if e != nil {
				return nil, e
			}
		}
	} else {
		if kLit == nil {
			return nil, capability(`free default-valued map variables are readable at constant keys only`)
		}
		sym, e := tr.dmapKeySymbol(m.varName, kLit, m.valueType)
		if e != nil {
			return nil, e
		}
		out = sym
	}
	for _, ov := range m.overrides {
		same, e := tr.eqShape(m.keyType, k, ov.key)
		if e != nil {
			return nil, e
		}
		out, e = tr.iteShape(same, ov.value, out)
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}

// touchedKeys collects the distinct literal keys the map's history and
// overrides mention. Symbolic override keys defeat the enumeration.
func (m dmapShape) touchedKeys() ([]val.Value, err.Error) {
	keys := []val.Value(nil)
	add := func(k val.Value) {
		for _, seen := range keys {
			if seen.Equals(k) {
				return
			}
		}
		keys = append(keys, k)
	}
	if m.lit != nil {
		for _, entry := range m.lit.History() {
			add(entry.Key)
		}
	}
	for _, ov := range m.overrides {
		if ov.keyLit == nil {
			return nil, capability(`this operation requires constant override keys`)
		}
		add(ov.keyLit)
	}
	return keys, nil
}

// dmapEqual is extensional equality as agreement on every key either
// side ever touched. Keys outside both histories read back the default
// on both sides, so the conjunction over the combined history
// suffices; a free-variable base contributes its override keys and
// reads through its per-key bits.
func (tr *translator) dmapEqual(a, b dmapShape) (rudd.Node, err.Error) {
	if a.lit != nil && b.lit != nil && !a.lit.Default().Equals(b.lit.Default()) {
		return tr.b.False(), nil
	}
	ak, e := a.touchedKeys()
	if e != nil {
		return nil, e
	}
	bk, e := b.touchedKeys()
	if e != nil {
		return nil, e
	}
	keys := ak
	for _, k := range bk {
		seen := false
		for _, other := range keys {
			if other.Equals(k) {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, k)
		}
	}
	out := tr.b.True()
	for _, k := range keys {
		ks, e := tr.literalShape(a.keyType, k)
		if e != nil {
			return nil, e
		}
		av, e := tr.readDMap(a, ks, k)
		if e != nil {
			return nil, e
		}
		bv, e := tr.readDMap(b, ks, k)
		if e != nil {
			return nil, e
		}
		same, e := tr.eqShape(a.valueType, av, bv)
		if e != nil {
			return nil, e
		}
		out = tr.b.And(out, same)
	}
	return out, nil
}

// dmapCount counts the keys whose effective value differs from the
// default, as a 64-bit word.
func (tr *translator) dmapCount(m dmapShape) (word, err.Error) {
	if m.lit == nil {
		return nil, capability(`entry counts over free default-valued map variables are not supported`)
	}
	keys, e := m.touchedKeys()
	if e != nil {
		return nil, e
	}
	dflt, e := tr.literalShape(m.valueType, m.lit.Default())
	if e != nil {
		return nil, e
	}
	count := tr.zeroWord(64)
	for _, k := range keys {
		ks, e := tr.literalShape(m.keyType, k)
		if e != nil {
			return nil, e
		}
		v, e := tr.readDMap(m, ks, k)
		if e != nil {
			return nil, e
		}
		same, e := tr.eqShape(m.valueType, v, dflt)
		if e != nil {
			return nil, e
		}
		indicator := tr.zeroWord(64)
		indicator[0] = tr.b.Not(same)
		count = tr.addWord(count, indicator)
	}
	return count, nil
}
