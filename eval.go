// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"fmt"
	"regexp"
	"sync"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

var (
	regexMutex sync.Mutex
	regexCache = make(map[string]*regexp.Regexp, 16)
)

// compiledRegex returns the compiled form of a pattern that was already
// validated at expression construction time.
func compiledRegex(pattern string) *regexp.Regexp {
	regexMutex.Lock()
	defer regexMutex.Unlock()
	re, ok := regexCache[pattern]
	if !ok {
		re = regexp.MustCompile(pattern)
		regexCache[pattern] = re
	}
	return re
}

// checkBindings validates that every free variable of n is bound to a
// value of its declared type.
func checkBindings(n *xpr.Node, bindings map[string]val.Value) err.Error {
	vars, e := xpr.Variables(n)
	if e != nil {
		return e
	}
	for name, v := range vars {
		b, ok := bindings[name]
		if !ok {
			return execError(`unbound variable: %s`, name)
		}
		if !typ.Conforms(v.Type(), b) {
			return err.ModelingError{Problem: fmt.Sprintf(`binding for variable %s has type %s, want %s`, name, b.Type(), v.Type().ValueType())}
		}
	}
	return nil
}

// Eval interprets an expression under the given variable bindings.
// Every free variable must be bound. Shared subterms are evaluated
// once: results are memoized by node identity for the duration of the
// call.
func Eval(n *xpr.Node, bindings map[string]val.Value) (val.Value, err.Error) {
	if n == nil {
		return nil, err.ModelingError{Problem: `nil expression`}
	}
	if e := checkBindings(n, bindings); e != nil {
		return nil, e
	}
	ev := evaluator{bindings, make(map[uint64]val.Value, 32)}
	v, e := ev.eval(n)
	if e != nil {
		return nil, e
	}
	return v.Copy(), nil
}

type evaluator struct {
	bindings map[string]val.Value
	memo     map[uint64]val.Value
}

func (ev evaluator) eval(n *xpr.Node) (val.Value, err.Error) {
	if v, ok := ev.memo[n.ID()]; ok {
		return v, nil
	}
	v, e := ev.evalNode(n)
	if e != nil {
		return nil, e
	}
	ev.memo[n.ID()] = v
	return v, nil
}

func (ev evaluator) kids(n *xpr.Node) ([]val.Value, err.Error) {
	vs := make([]val.Value, n.Len())
	for i := range vs {
		v, e := ev.eval(n.Kid(i))
		if e != nil {
			return nil, e
		}
		vs[i] = v
	}
	return vs, nil
}

func (ev evaluator) evalNode(n *xpr.Node) (val.Value, err.Error) {

	switch n.Op() {

	case xpr.OpConst:
		return n.Literal(), nil

	case xpr.OpVar:
		return ev.bindings[n.Name()], nil

	case xpr.OpAnd:
		for i, l := 0, n.Len(); i < l; i++ {
			v, e := ev.eval(n.Kid(i))
			if e != nil {
				return nil, e
			}
			if !v.(val.Bool) {
				return val.False, nil
			}
		}
		return val.True, nil

	case xpr.OpOr:
		for i, l := 0, n.Len(); i < l; i++ {
			v, e := ev.eval(n.Kid(i))
			if e != nil {
				return nil, e
			}
			if v.(val.Bool) {
				return val.True, nil
			}
		}
		return val.False, nil

	case xpr.OpNot:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return !v.(val.Bool), nil

	case xpr.OpEq:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return val.Bool(vs[0].Equals(vs[1])), nil

	case xpr.OpLt:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return val.Bool(lessValues(vs[0], vs[1])), nil

	case xpr.OpGt:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return val.Bool(lessValues(vs[1], vs[0])), nil

	case xpr.OpAdd, xpr.OpSub, xpr.OpMul, xpr.OpBitAnd, xpr.OpBitOr, xpr.OpBitXor:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		switch n.Op() {
		case xpr.OpAdd:
			return addValues(vs[0], vs[1]), nil
		case xpr.OpSub:
			return subtractValues(vs[0], vs[1]), nil
		case xpr.OpMul:
			return multiplyValues(vs[0], vs[1]), nil
		case xpr.OpBitAnd:
			return bitAndValues(vs[0], vs[1]), nil
		case xpr.OpBitOr:
			return bitOrValues(vs[0], vs[1]), nil
		}
		return bitXorValues(vs[0], vs[1]), nil

	case xpr.OpShl, xpr.OpShr:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		by := shiftAmount(vs[1])
		if n.Op() == xpr.OpShl {
			return shiftLeftValue(vs[0], by), nil
		}
		return shiftRightValue(vs[0], by), nil

	case xpr.OpIf:
		c, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		if c.(val.Bool) {
			return ev.eval(n.Kid(1))
		}
		return ev.eval(n.Kid(2))

	case xpr.OpTuple:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return val.Tuple(vs), nil

	case xpr.OpTupleAt:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return v.(val.Tuple)[n.Index()], nil

	case xpr.OpStruct:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		s := val.NewStruct(len(vs))
		for i, k := range n.FieldNames() {
			s.Set(k, vs[i])
		}
		return s, nil

	case xpr.OpField:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return v.(val.Struct).Field(n.Name()), nil

	case xpr.OpSome:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return val.Some(v), nil

	case xpr.OpIsPresent:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return val.Bool(v.(val.Option).Present), nil

	case xpr.OpAssertPresent:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		o := v.(val.Option)
		if !o.Present {
			return nil, execError(`assertPresent: option is absent`)
		}
		return o.Value, nil

	case xpr.OpPresentOrZero:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		o := v.(val.Option)
		if !o.Present {
			return n.Type().Zero(), nil
		}
		return o.Value, nil

	case xpr.OpList:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return val.List(vs), nil

	case xpr.OpConcat:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceConcat(vs[0], vs[1]), nil

	case xpr.OpLength:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return sequenceLength(v), nil

	case xpr.OpSlice:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceSlice(vs[0], int64(vs[1].(val.Int64)), int64(vs[2].(val.Int64))), nil

	case xpr.OpCharAt:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceAt(vs[0], int64(vs[1].(val.Int64))), nil

	case xpr.OpIndexOf:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceIndexOf(vs[0], vs[1]), nil

	case xpr.OpContains:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceContains(vs[0], vs[1]), nil

	case xpr.OpStartsWith:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceStartsWith(vs[0], vs[1]), nil

	case xpr.OpEndsWith:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceEndsWith(vs[0], vs[1]), nil

	case xpr.OpReplaceFirst:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return sequenceReplaceFirst(vs[0], vs[1], vs[2]), nil

	case xpr.OpMatchRegex:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return val.Bool(compiledRegex(n.Name()).MatchString(string(v.(val.String)))), nil

	case xpr.OpKey:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		v, ok := vs[0].(val.Map).Get(vs[1])
		if !ok {
			return nil, execError(`key: no entry for key in map`)
		}
		return v, nil

	case xpr.OpSetKey:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		m := vs[0].Copy().(val.Map)
		m.Set(vs[1], vs[2])
		return m, nil

	case xpr.OpEntry:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return vs[0].(val.DefaultMap).Get(vs[1]), nil

	case xpr.OpSetEntry:
		vs, e := ev.kids(n)
		if e != nil {
			return nil, e
		}
		return vs[0].(val.DefaultMap).Set(vs[1], vs[2]), nil

	case xpr.OpEntryCount:
		v, e := ev.eval(n.Kid(0))
		if e != nil {
			return nil, e
		}
		return val.Int64(v.(val.DefaultMap).Len()), nil

	}
	panic(fmt.Sprintf("unhandled op: %s", n.Op()))
}
