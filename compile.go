// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"fmt"

	"karma.run/sym/err"
	"karma.run/sym/inst"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// Program is an expression lowered to a linear instruction sequence.
// Programs are immutable and safe for concurrent Run calls.
type Program struct {
	sequence inst.Sequence
	vars     map[string]*xpr.Node
}

// Instructions exposes the lowered sequence, mostly for debugging.
func (p Program) Instructions() inst.Sequence {
	return p.sequence
}

// Compile lowers an expression to stack-machine instructions. The
// expression DAG is flattened in post-order: operands execute before
// their consumers and leave their results on the stack.
//
// Node-level memoization does not carry over: shared subterms are
// re-executed per occurrence. Construction-time folding keeps programs
// small enough that this has not mattered in practice.
func Compile(n *xpr.Node) (Program, err.Error) {
	if n == nil {
		return Program{}, err.ModelingError{Problem: `nil expression`}
	}
	vars, e := xpr.Variables(n)
	if e != nil {
		return Program{}, e
	}
	return Program{compileInto(make(inst.Sequence, 0, 32), n), vars}, nil
}

func compileInto(seq inst.Sequence, n *xpr.Node) inst.Sequence {

	// operators with out-of-line operands
	switch n.Op() {

	case xpr.OpConst:
		return append(seq, inst.Constant{Value: n.Literal()})

	case xpr.OpVar:
		return append(seq, inst.Input{Name: n.Name()})

	case xpr.OpIf:
		seq = compileInto(seq, n.Kid(0))
		return append(seq, inst.If{
			Then: compileInto(nil, n.Kid(1)),
			Else: compileInto(nil, n.Kid(2)),
		})

	case xpr.OpAnd:
		return append(seq, compileAnd(n, 0)...)

	case xpr.OpOr:
		return append(seq, compileOr(n, 0)...)
	}

	for i, l := 0, n.Len(); i < l; i++ {
		seq = compileInto(seq, n.Kid(i))
	}

	switch n.Op() {

	case xpr.OpNot:
		return append(seq, inst.Not{})

	case xpr.OpEq:
		return append(seq, inst.Equal{})

	case xpr.OpLt:
		return append(seq, inst.Less{})

	case xpr.OpGt:
		return append(seq, inst.Greater{})

	case xpr.OpAdd:
		return append(seq, inst.Add{})

	case xpr.OpSub:
		return append(seq, inst.Subtract{})

	case xpr.OpMul:
		return append(seq, inst.Multiply{})

	case xpr.OpBitAnd:
		return append(seq, inst.BitAnd{})

	case xpr.OpBitOr:
		return append(seq, inst.BitOr{})

	case xpr.OpBitXor:
		return append(seq, inst.BitXor{})

	case xpr.OpShl:
		return append(seq, inst.ShiftLeft{})

	case xpr.OpShr:
		return append(seq, inst.ShiftRight{})

	case xpr.OpTuple:
		return append(seq, inst.BuildTuple{Length: n.Len()})

	case xpr.OpTupleAt:
		return append(seq, inst.IndexTuple{Number: n.Index()})

	case xpr.OpStruct:
		return append(seq, inst.BuildStruct{Keys: n.FieldNames()})

	case xpr.OpField:
		return append(seq, inst.Field{Key: n.Name()})

	case xpr.OpSome:
		return append(seq, inst.BuildSome{})

	case xpr.OpIsPresent:
		return append(seq, inst.IsPresent{})

	case xpr.OpAssertPresent:
		return append(seq, inst.AssertPresent{})

	case xpr.OpPresentOrZero:
		return append(seq, inst.PresentOrZero{Zero: n.Type().Zero()})

	case xpr.OpList:
		return append(seq, inst.BuildList{Length: n.Len()})

	case xpr.OpConcat:
		return append(seq, inst.Concat{})

	case xpr.OpLength:
		return append(seq, inst.Length{})

	case xpr.OpSlice:
		return append(seq, inst.Slice{})

	case xpr.OpCharAt:
		return append(seq, inst.CharAt{})

	case xpr.OpIndexOf:
		return append(seq, inst.IndexOf{})

	case xpr.OpContains:
		return append(seq, inst.Contains{})

	case xpr.OpStartsWith:
		return append(seq, inst.StartsWith{})

	case xpr.OpEndsWith:
		return append(seq, inst.EndsWith{})

	case xpr.OpReplaceFirst:
		return append(seq, inst.ReplaceFirst{})

	case xpr.OpMatchRegex:
		return append(seq, inst.MatchRegex{Regex: compiledRegex(n.Name())})

	case xpr.OpKey:
		return append(seq, inst.Key{})

	case xpr.OpSetKey:
		return append(seq, inst.SetKey{})

	case xpr.OpEntry:
		return append(seq, inst.Entry{})

	case xpr.OpSetEntry:
		return append(seq, inst.SetEntry{})

	case xpr.OpEntryCount:
		return append(seq, inst.EntryCount{})

	}
	panic("unhandled op: " + n.Op().String())
}

// And and Or lower like If: each operand guards the rest, so later
// operands never execute once the result is decided. Run short-circuits
// exactly where Eval does.
func compileAnd(n *xpr.Node, i int) inst.Sequence {
	seq := compileInto(nil, n.Kid(i))
	if i+1 == n.Len() {
		return seq
	}
	return append(seq, inst.If{
		Then: compileAnd(n, i+1),
		Else: inst.Sequence{inst.Constant{Value: val.False}},
	})
}

func compileOr(n *xpr.Node, i int) inst.Sequence {
	seq := compileInto(nil, n.Kid(i))
	if i+1 == n.Len() {
		return seq
	}
	return append(seq, inst.If{
		Then: inst.Sequence{inst.Constant{Value: val.True}},
		Else: compileOr(n, i+1),
	})
}

// check binding conformance against the variables recorded at compile
// time, same contract as Eval.
func (p Program) checkBindings(bindings map[string]val.Value) err.Error {
	for name, v := range p.vars {
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
