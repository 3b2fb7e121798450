// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package bdd

import (
	"github.com/dalzilio/rudd"

	sym "karma.run/sym"
	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// Solver translates each problem into one in-process decision diagram.
// The zero value is ready to use.
type Solver struct{}

func (s Solver) Name() string {
	return `bdd`
}

func (s Solver) Open(problem *xpr.Node) (sym.Context, err.Error) {
	budget, e := bitBudget(problem)
	if e != nil {
		return nil, e
	}
	varnum := budget
	if varnum == 0 {
		varnum = 1 // the diagram needs at least one level
	}
	b, ne := rudd.New(varnum)
	if ne != nil {
		return nil, engineError(`allocating diagram: %s`, ne)
	}
	tr := newTranslator(b, budget)
	sh, e := tr.translate(problem)
	if e != nil {
		return nil, e
	}
	root := sh.(word)[0]
	for _, side := range tr.side {
		root = b.And(root, side)
	}
	return &context{b, tr, root}, nil
}

type context struct {
	b    *rudd.BDD
	tr   *translator
	root rudd.Node
}

func (c *context) Check() (bool, err.Error) {
	return !isFalse(c.b, c.root), nil
}

func (c *context) Close() err.Error {
	return nil // the diagram is garbage collected with the context
}

// Model extracts one satisfying assignment by cofactoring the root on
// each input bit in turn, keeping whichever branch stays satisfiable.
func (c *context) Model() (sym.Solution, err.Error) {
	if isFalse(c.b, c.root) {
		return nil, engineError(`no model: diagram is unsatisfiable`)
	}
	assign := make([]bool, c.tr.next)
	cur := c.root
	for lvl := 0; lvl < c.tr.next; lvl++ {
		low := c.b.And(cur, c.b.NIthvar(lvl))
		if isFalse(c.b, low) {
			assign[lvl] = true
			cur = c.b.And(cur, c.b.Ithvar(lvl))
			continue
		}
		cur = low
	}
	out := make(sym.Solution, len(c.tr.order))
	for _, name := range c.tr.order {
		vi := c.tr.vars[name]
		if d, ok := vi.sh.(dmapShape); ok {
			m := val.NewDefaultMap(d.valueType.Zero())
			for _, ke := range vi.keys {
				m = m.Set(ke.key.Copy(), readValue(d.valueType, ke.lay, assign))
			}
			out[name] = m
			continue
		}
		out[name] = readValue(vi.node.Type(), vi.lay, assign)
	}
	return out, nil
}

// Exclude conjoins the negation of the given assignment over every
// input bit, so the next Check yields a different model. With no free
// variables the root collapses to false, ending the enumeration after
// the one empty solution.
func (c *context) Exclude(sol sym.Solution) err.Error {
	cube := c.b.True()
	for _, name := range c.tr.order {
		vi := c.tr.vars[name]
		v, ok := sol[name]
		if !ok {
			continue
		}
		if d, ok := vi.sh.(dmapShape); ok {
			m := v.(val.DefaultMap)
			for _, ke := range vi.keys {
				lit, e := c.tr.literalShape(d.valueType, m.Get(ke.key))
				if e != nil {
					return e
				}
				same, e := c.tr.eqShape(d.valueType, ke.sh, lit)
				if e != nil {
					return e
				}
				cube = c.b.And(cube, same)
			}
			continue
		}
		lit, e := c.tr.literalShape(vi.node.Type(), v)
		if e != nil {
			return e
		}
		same, e := c.tr.eqShape(vi.node.Type(), vi.sh, lit)
		if e != nil {
			return e
		}
		cube = c.b.And(cube, same)
	}
	c.root = c.b.And(c.root, c.b.Not(cube))
	return nil
}

// readValue reconstructs a concrete value from the bit assignment
// through the variable's layout.
func readValue(t typ.Type, lay layout, assign []bool) val.Value {
	switch lay := lay.(type) {
	case span:
		u := uint64(0)
		for i := 0; i < lay.n; i++ {
			if assign[lay.lo+i] {
				u |= 1 << uint(i)
			}
		}
		return scalarValue(t, u)
	case layoutParts:
		switch t := t.(type) {
		case typ.Tuple:
			out := make(val.Tuple, len(t), len(t))
			for i, u := range t {
				out[i] = readValue(u, lay[i], assign)
			}
			return out
		case typ.Struct:
			out := val.NewStruct(t.Len())
			i := 0
			t.ForEach(func(k string, u typ.Type) bool {
				out.Set(k, readValue(u, lay[i], assign))
				i++
				return true
			})
			return out
		}
	case optionLayout:
		if !assign[lay.present] {
			return val.None
		}
		return val.Some(readValue(t.(typ.Option).Elements, lay.value, assign))
	}
	panic(`readValue: unexpected layout`)
}

func scalarValue(t typ.Type, u uint64) val.Value {
	switch t.(type) {
	case typ.Bool:
		return val.Bool(u != 0)
	case typ.Char:
		return val.Char(rune(u))
	case typ.Int8:
		return val.Int8(int8(uint8(u)))
	case typ.Int16:
		return val.Int16(int16(uint16(u)))
	case typ.Int32:
		return val.Int32(int32(uint32(u)))
	case typ.Int64:
		return val.Int64(int64(u))
	case typ.Uint8:
		return val.Uint8(uint8(u))
	case typ.Uint16:
		return val.Uint16(uint16(u))
	case typ.Uint32:
		return val.Uint32(uint32(u))
	case typ.Uint64:
		return val.Uint64(u)
	}
	panic(`scalarValue: unexpected type`)
}
