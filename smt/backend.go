// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"math/big"
	"strconv"
	"strings"

	sym "karma.run/sym"
	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// Solver runs each problem on a fresh solver engine. The zero value
// launches z3 from PATH.
type Solver struct {
	Path string
	Args []string

	// NewEngine overrides process launching, mainly for tests.
	NewEngine func() (Engine, err.Error)
}

func (s Solver) Name() string {
	return `smt`
}

func (s Solver) engine() (Engine, err.Error) {
	if s.NewEngine != nil {
		return s.NewEngine()
	}
	return NewProcessEngine(s.Path, s.Args...)
}

func (s Solver) Open(problem *xpr.Node) (sym.Context, err.Error) {
	engine, e := s.engine()
	if e != nil {
		return nil, e
	}
	tr := newTranslator(engine)
	sh, e := tr.translate(problem)
	if e != nil {
		engine.Close()
		return nil, e
	}
	if e := engine.Assert(term(sh)); e != nil {
		engine.Close()
		return nil, e
	}
	return &context{engine, tr}, nil
}

type context struct {
	engine Engine
	tr     *translator
}

func (c *context) Check() (bool, err.Error) {
	r, e := c.engine.Check()
	if e != nil {
		return false, e
	}
	switch r {
	case ResultSat:
		return true, nil
	case ResultUnsat:
		return false, nil
	}
	return false, err.EngineError{Backend: `smt`, Problem: `solver answered unknown`}
}

func (c *context) Close() err.Error {
	return c.engine.Close()
}

// shapeTerms flattens a shape into its leaf terms, in deterministic
// order. Map-variable shapes flatten to their lazily declared per-key
// symbols.
func shapeTerms(sh shape, out []string) []string {
	switch sh := sh.(type) {
	case leaf:
		return append(out, string(sh))
	case parts:
		for _, p := range sh {
			out = shapeTerms(p, out)
		}
		return out
	case optionShape:
		out = append(out, sh.present)
		return shapeTerms(sh.value, out)
	}
	panic(`shapeTerms: unexpected shape`)
}

func (c *context) varTerms(vi *varInfo) []string {
	if _, ok := vi.sh.(dmapShape); ok {
		out := []string(nil)
		for _, ke := range vi.keys {
			out = shapeTerms(ke.sh, out)
		}
		return out
	}
	return shapeTerms(vi.sh, nil)
}

func (c *context) Model() (sym.Solution, err.Error) {
	terms := []string(nil)
	for _, name := range c.tr.order {
		terms = append(terms, c.varTerms(c.tr.vars[name])...)
	}
	values, e := c.engine.Values(terms)
	if e != nil {
		return nil, e
	}
	r := &valueReader{values, 0}
	out := make(sym.Solution, len(c.tr.order))
	for _, name := range c.tr.order {
		vi := c.tr.vars[name]
		if d, ok := vi.sh.(dmapShape); ok {
			m := val.NewDefaultMap(d.valueType.Zero())
			for _, ke := range vi.keys {
				v, e := readValue(d.valueType, ke.sh, r)
				if e != nil {
					return nil, e
				}
				m = m.Set(ke.key.Copy(), v)
			}
			out[name] = m
			continue
		}
		v, e := readValue(vi.node.Type(), vi.sh, r)
		if e != nil {
			return nil, e
		}
		out[name] = v
	}
	return out, nil
}

// Exclude asserts the negation of the given assignment over every leaf
// symbol, so the next Check yields a different model. With no free
// variables this asserts false, ending the enumeration after the one
// empty solution.
func (c *context) Exclude(sol sym.Solution) err.Error {
	terms := []string(nil)
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
				s, e := c.tr.eqShape(d.valueType, ke.sh, lit)
				if e != nil {
					return e
				}
				terms = append(terms, s)
			}
			continue
		}
		lit, e := c.tr.literalShape(vi.node.Type(), v)
		if e != nil {
			return e
		}
		s, e := c.tr.eqShape(vi.node.Type(), vi.sh, lit)
		if e != nil {
			return e
		}
		terms = append(terms, s)
	}
	return c.engine.Assert(`(not ` + conj(terms) + `)`)
}

// valueReader walks the flat get-value answer in shape order.
type valueReader struct {
	vals []string
	pos  int
}

func (r *valueReader) next() (string, err.Error) {
	if r.pos >= len(r.vals) {
		return ``, err.EngineError{Backend: `smt`, Problem: `model value count mismatch`}
	}
	v := r.vals[r.pos]
	r.pos++
	return v, nil
}

// readValue reconstructs a concrete value of type t from the model
// values of sh's leaves.
func readValue(t typ.Type, sh shape, r *valueReader) (val.Value, err.Error) {
	switch sh := sh.(type) {
	case leaf:
		raw, e := r.next()
		if e != nil {
			return nil, e
		}
		return parseValue(t, raw)
	case parts:
		switch t := t.(type) {
		case typ.Tuple:
			out := make(val.Tuple, len(t), len(t))
			for i, u := range t {
				v, e := readValue(u, sh[i], r)
				if e != nil {
					return nil, e
				}
				out[i] = v
			}
			return out, nil
		case typ.Struct:
			out := val.NewStruct(t.Len())
			i := 0
			var le err.Error
			t.ForEach(func(k string, u typ.Type) bool {
				v, e := readValue(u, sh[i], r)
				if e != nil {
					le = e
					return false
				}
				out.Set(k, v)
				i++
				return true
			})
			if le != nil {
				return nil, le
			}
			return out, nil
		}
	case optionShape:
		raw, e := r.next()
		if e != nil {
			return nil, e
		}
		present, e := parseValue(typ.Bool{}, raw)
		if e != nil {
			return nil, e
		}
		v, e := readValue(t.(typ.Option).Elements, sh.value, r)
		if e != nil {
			return nil, e
		}
		if !present.(val.Bool) {
			return val.None, nil
		}
		return val.Some(v), nil
	}
	return nil, err.EngineError{Backend: `smt`, Problem: `unexpected model shape`}
}

func modelError(format string, args ...interface{}) err.Error {
	return engineError(`smt`, format, args...)
}

// parseValue parses one rendered solver value of a directly sorted
// type.
func parseValue(t typ.Type, raw string) (val.Value, err.Error) {
	s, _, e := parseSexp(raw)
	if e != nil {
		return nil, e
	}
	return parseSexpValue(t, s)
}

func parseSexpValue(t typ.Type, s sexp) (val.Value, err.Error) {
	switch t := t.(type) {
	case typ.Bool:
		if s.isAtom() {
			return val.Bool(s.atom == `true`), nil
		}
	case typ.Int:
		b, e := parseIntSexp(s)
		if e != nil {
			return nil, e
		}
		return val.IntFromBig(b), nil
	case typ.Char:
		b, e := parseIntSexp(s)
		if e != nil {
			return nil, e
		}
		return val.Char(rune(b.Int64())), nil
	case typ.String:
		if s.isAtom() && strings.HasPrefix(s.atom, `"`) {
			return val.String(decodeSmtString(s.atom)), nil
		}
	case typ.Int8:
		u, e := parseBvSexp(s)
		return val.Int8(int8(uint8(u))), e
	case typ.Int16:
		u, e := parseBvSexp(s)
		return val.Int16(int16(uint16(u))), e
	case typ.Int32:
		u, e := parseBvSexp(s)
		return val.Int32(int32(uint32(u))), e
	case typ.Int64:
		u, e := parseBvSexp(s)
		return val.Int64(int64(u)), e
	case typ.Uint8:
		u, e := parseBvSexp(s)
		return val.Uint8(uint8(u)), e
	case typ.Uint16:
		u, e := parseBvSexp(s)
		return val.Uint16(uint16(u)), e
	case typ.Uint32:
		u, e := parseBvSexp(s)
		return val.Uint32(uint32(u)), e
	case typ.Uint64:
		u, e := parseBvSexp(s)
		return val.Uint64(u), e
	case typ.List:
		return parseSeqSexp(t.Elements, s)
	}
	return nil, modelError(`cannot parse %s as %s`, s, t.ValueType())
}

func parseIntSexp(s sexp) (*big.Int, err.Error) {
	if s.isAtom() {
		b, ok := new(big.Int).SetString(s.atom, 10)
		if !ok {
			return nil, modelError(`malformed integer: %s`, s)
		}
		return b, nil
	}
	if len(s.list) == 2 && s.list[0].isAtom() && s.list[0].atom == `-` {
		b, e := parseIntSexp(s.list[1])
		if e != nil {
			return nil, e
		}
		return b.Neg(b), nil
	}
	return nil, modelError(`malformed integer: %s`, s)
}

func parseBvSexp(s sexp) (uint64, err.Error) {
	if s.isAtom() {
		if strings.HasPrefix(s.atom, `#x`) {
			u, e := strconv.ParseUint(s.atom[2:], 16, 64)
			if e != nil {
				return 0, modelError(`malformed bitvector: %s`, s)
			}
			return u, nil
		}
		if strings.HasPrefix(s.atom, `#b`) {
			u, e := strconv.ParseUint(s.atom[2:], 2, 64)
			if e != nil {
				return 0, modelError(`malformed bitvector: %s`, s)
			}
			return u, nil
		}
	}
	if !s.isAtom() && len(s.list) == 3 && s.list[0].isAtom() && s.list[0].atom == `_` && strings.HasPrefix(s.list[1].atom, `bv`) {
		u, e := strconv.ParseUint(s.list[1].atom[2:], 10, 64)
		if e != nil {
			return 0, modelError(`malformed bitvector: %s`, s)
		}
		return u, nil
	}
	return 0, modelError(`malformed bitvector: %s`, s)
}

func parseSeqSexp(elements typ.Type, s sexp) (val.Value, err.Error) {
	if s.isAtom() {
		return nil, modelError(`malformed sequence: %s`, s)
	}
	if len(s.list) > 0 && s.list[0].isAtom() {
		switch s.list[0].atom {
		case `as`: // (as seq.empty (Seq T))
			return val.List{}, nil
		case `seq.unit`:
			v, e := parseSexpValue(elements, s.list[1])
			if e != nil {
				return nil, e
			}
			return val.List{v}, nil
		case `seq.++`:
			out := make(val.List, 0, len(s.list)-1)
			for _, sub := range s.list[1:] {
				v, e := parseSeqSexp(elements, sub)
				if e != nil {
					return nil, e
				}
				out = append(out, v.(val.List)...)
			}
			return out, nil
		}
	}
	return nil, modelError(`malformed sequence: %s`, s)
}

// decodeSmtString undoes SMT-LIB string literal syntax: surrounding
// quotes, doubled inner quotes and \u{...} escapes.
func decodeSmtString(atom string) string {
	s := strings.TrimPrefix(strings.TrimSuffix(atom, `"`), `"`)
	s = strings.ReplaceAll(s, `""`, `"`)
	buf := strings.Builder{}
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], `\u{`) {
			end := strings.IndexByte(s[i:], '}')
			if end > 0 {
				n, e := strconv.ParseInt(s[i+3:i+end], 16, 32)
				if e == nil {
					buf.WriteRune(rune(n))
					i += end + 1
					continue
				}
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	return buf.String()
}
