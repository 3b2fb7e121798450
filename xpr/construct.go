// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"fmt"
	"regexp"

	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
)

func modeling(format string, args ...interface{}) err.Error {
	return err.ModelingError{Problem: fmt.Sprintf(format, args...)}
}

var (
	nodeTrue  = intern(&Node{op: OpConst, typ: typ.Bool{}, lit: val.Bool(true)})
	nodeFalse = intern(&Node{op: OpConst, typ: typ.Bool{}, lit: val.Bool(false)})
)

func boolConst(b bool) *Node {
	if b {
		return nodeTrue
	}
	return nodeFalse
}

func operandCheck(op string, ns ...*Node) err.Error {
	for i, n := range ns {
		if n == nil {
			return modeling(`%s: operand %d is nil`, op, i)
		}
	}
	return nil
}

func validateLiteral(v val.Value) err.Error {
	var e err.Error
	v.Transform(func(w val.Value) val.Value {
		if e != nil {
			return w
		}
		if w == nil {
			e = modeling(`nil value inside literal`)
			return w
		}
		if c, ok := w.(val.Char); ok && (c < 0 || c > 0x10FFFF) {
			e = modeling(`char literal out of range: %d`, c)
		}
		return w
	})
	return e
}

// Const builds a literal constant node, deriving its type from the
// value. Empty composite literals cannot determine their type; use
// ConstTyped for those.
func Const(v val.Value) (*Node, err.Error) {
	if v == nil {
		return nil, modeling(`nil literal`)
	}
	t, ok := typ.TypeFromValue(v)
	if !ok {
		return nil, modeling(`cannot derive type of %s literal, use ConstTyped`, v.Type())
	}
	return ConstTyped(v, t)
}

func ConstTyped(v val.Value, t typ.Type) (*Node, err.Error) {
	if v == nil {
		return nil, modeling(`nil literal`)
	}
	if t == nil {
		return nil, modeling(`nil literal type`)
	}
	if e := typ.ValidateNesting(t); e != nil {
		return nil, e
	}
	if e := validateLiteral(v); e != nil {
		return nil, e
	}
	if !typ.Conforms(t, v) {
		return nil, modeling(`literal of type %s does not conform to declared type %s`, v.Type(), t.ValueType())
	}
	return intern(&Node{op: OpConst, typ: t, lit: v.Copy()}), nil
}

// Var builds a free variable node. Variables are bound at evaluation
// time or act as solver symbols.
func Var(name string, t typ.Type) (*Node, err.Error) {
	if name == "" {
		return nil, modeling(`empty variable name`)
	}
	if t == nil {
		return nil, modeling(`variable %s: nil type`, name)
	}
	if e := typ.ValidateNesting(t); e != nil {
		return nil, e
	}
	return intern(&Node{op: OpVar, typ: t, name: name}), nil
}

// EmptyDefaultMap builds the empty default-valued map literal: every
// key reads back the value type's zero.
func EmptyDefaultMap(key, value typ.Type) (*Node, err.Error) {
	if key == nil || value == nil {
		return nil, modeling(`nil default map component type`)
	}
	return ConstTyped(val.NewDefaultMap(value.Zero()), typ.DefaultMap{Key: key, Value: value})
}

func And(operands ...*Node) (*Node, err.Error) {
	if len(operands) == 0 {
		return nil, modeling(`and: no operands`)
	}
	if e := operandCheck(`and`, operands...); e != nil {
		return nil, e
	}
	kids := make([]*Node, 0, len(operands))
	for _, n := range operands {
		if !n.typ.Equals(typ.Bool{}) {
			return nil, modeling(`and: operand of type %s, want bool`, n.typ.ValueType())
		}
		if n == nodeFalse {
			return nodeFalse, nil
		}
		if n == nodeTrue {
			continue
		}
		kids = append(kids, n)
	}
	if len(kids) == 0 {
		return nodeTrue, nil
	}
	if len(kids) == 1 {
		return kids[0], nil
	}
	return intern(&Node{op: OpAnd, typ: typ.Bool{}, kids: kids}), nil
}

func Or(operands ...*Node) (*Node, err.Error) {
	if len(operands) == 0 {
		return nil, modeling(`or: no operands`)
	}
	if e := operandCheck(`or`, operands...); e != nil {
		return nil, e
	}
	kids := make([]*Node, 0, len(operands))
	for _, n := range operands {
		if !n.typ.Equals(typ.Bool{}) {
			return nil, modeling(`or: operand of type %s, want bool`, n.typ.ValueType())
		}
		if n == nodeTrue {
			return nodeTrue, nil
		}
		if n == nodeFalse {
			continue
		}
		kids = append(kids, n)
	}
	if len(kids) == 0 {
		return nodeFalse, nil
	}
	if len(kids) == 1 {
		return kids[0], nil
	}
	return intern(&Node{op: OpOr, typ: typ.Bool{}, kids: kids}), nil
}

func Not(operand *Node) (*Node, err.Error) {
	if e := operandCheck(`not`, operand); e != nil {
		return nil, e
	}
	if !operand.typ.Equals(typ.Bool{}) {
		return nil, modeling(`not: operand of type %s, want bool`, operand.typ.ValueType())
	}
	if operand == nodeTrue {
		return nodeFalse, nil
	}
	if operand == nodeFalse {
		return nodeTrue, nil
	}
	if operand.op == OpNot {
		return operand.kids[0], nil
	}
	return intern(&Node{op: OpNot, typ: typ.Bool{}, kids: []*Node{operand}}), nil
}

func Eq(left, right *Node) (*Node, err.Error) {
	if e := operandCheck(`equal`, left, right); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`equal: mismatched operand types %s and %s`, left.typ.ValueType(), right.typ.ValueType())
	}
	if left == right {
		return nodeTrue, nil
	}
	if left.op == OpConst && right.op == OpConst {
		return boolConst(left.lit.Equals(right.lit)), nil
	}
	return intern(&Node{op: OpEq, typ: typ.Bool{}, kids: []*Node{left, right}}), nil
}

func comparison(op Op, name string, left, right *Node) (*Node, err.Error) {
	if e := operandCheck(name, left, right); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`%s: mismatched operand types %s and %s`, name, left.typ.ValueType(), right.typ.ValueType())
	}
	if !typ.IsNumeric(left.typ) {
		return nil, modeling(`%s: operands of type %s are not ordered`, name, left.typ.ValueType())
	}
	return intern(&Node{op: op, typ: typ.Bool{}, kids: []*Node{left, right}}), nil
}

func Lt(left, right *Node) (*Node, err.Error) {
	return comparison(OpLt, `less`, left, right)
}

func Gt(left, right *Node) (*Node, err.Error) {
	return comparison(OpGt, `greater`, left, right)
}

func isArithmetic(t typ.Type) bool {
	if _, _, ok := typ.IsSizedInteger(t); ok {
		return true
	}
	_, ok := t.(typ.Int)
	return ok
}

func arithmetic(op Op, name string, left, right *Node) (*Node, err.Error) {
	if e := operandCheck(name, left, right); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`%s: mismatched operand types %s and %s`, name, left.typ.ValueType(), right.typ.ValueType())
	}
	if !isArithmetic(left.typ) {
		return nil, modeling(`%s: operands of type %s do not support arithmetic`, name, left.typ.ValueType())
	}
	return intern(&Node{op: op, typ: left.typ, kids: []*Node{left, right}}), nil
}

func Add(left, right *Node) (*Node, err.Error) {
	return arithmetic(OpAdd, `add`, left, right)
}

func Sub(left, right *Node) (*Node, err.Error) {
	return arithmetic(OpSub, `subtract`, left, right)
}

func Mul(left, right *Node) (*Node, err.Error) {
	return arithmetic(OpMul, `multiply`, left, right)
}

func bitwise(op Op, name string, left, right *Node) (*Node, err.Error) {
	if e := operandCheck(name, left, right); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`%s: mismatched operand types %s and %s`, name, left.typ.ValueType(), right.typ.ValueType())
	}
	if _, _, ok := typ.IsSizedInteger(left.typ); !ok {
		return nil, modeling(`%s: operands of type %s are not fixed-width integers`, name, left.typ.ValueType())
	}
	return intern(&Node{op: op, typ: left.typ, kids: []*Node{left, right}}), nil
}

func BitAnd(left, right *Node) (*Node, err.Error) {
	return bitwise(OpBitAnd, `bitAnd`, left, right)
}

func BitOr(left, right *Node) (*Node, err.Error) {
	return bitwise(OpBitOr, `bitOr`, left, right)
}

func BitXor(left, right *Node) (*Node, err.Error) {
	return bitwise(OpBitXor, `bitXor`, left, right)
}

func shift(op Op, name string, operand, amount *Node) (*Node, err.Error) {
	if e := operandCheck(name, operand, amount); e != nil {
		return nil, e
	}
	if _, _, ok := typ.IsSizedInteger(operand.typ); !ok {
		return nil, modeling(`%s: operand of type %s is not a fixed-width integer`, name, operand.typ.ValueType())
	}
	if _, signed, ok := typ.IsSizedInteger(amount.typ); !ok || signed {
		return nil, modeling(`%s: shift amount of type %s, want unsigned integer`, name, amount.typ.ValueType())
	}
	return intern(&Node{op: op, typ: operand.typ, kids: []*Node{operand, amount}}), nil
}

func Shl(operand, amount *Node) (*Node, err.Error) {
	return shift(OpShl, `shiftLeft`, operand, amount)
}

func Shr(operand, amount *Node) (*Node, err.Error) {
	return shift(OpShr, `shiftRight`, operand, amount)
}

func If(condition, then, els *Node) (*Node, err.Error) {
	if e := operandCheck(`if`, condition, then, els); e != nil {
		return nil, e
	}
	if !condition.typ.Equals(typ.Bool{}) {
		return nil, modeling(`if: condition of type %s, want bool`, condition.typ.ValueType())
	}
	if !then.typ.Equals(els.typ) {
		return nil, modeling(`if: mismatched branch types %s and %s`, then.typ.ValueType(), els.typ.ValueType())
	}
	if condition == nodeTrue {
		return then, nil
	}
	if condition == nodeFalse {
		return els, nil
	}
	if then == els {
		return then, nil
	}
	return intern(&Node{op: OpIf, typ: then.typ, kids: []*Node{condition, then, els}}), nil
}

func TupleOf(components ...*Node) (*Node, err.Error) {
	if len(components) == 0 {
		return nil, modeling(`tuple: no components`)
	}
	if e := operandCheck(`tuple`, components...); e != nil {
		return nil, e
	}
	ts := make(typ.Tuple, len(components), len(components))
	kids := make([]*Node, len(components))
	for i, n := range components {
		ts[i] = n.typ
		kids[i] = n
	}
	return intern(&Node{op: OpTuple, typ: ts, kids: kids}), nil
}

func TupleAt(tuple *Node, index int) (*Node, err.Error) {
	if e := operandCheck(`tupleAt`, tuple); e != nil {
		return nil, e
	}
	ts, ok := tuple.typ.(typ.Tuple)
	if !ok {
		return nil, modeling(`tupleAt: operand of type %s, want tuple`, tuple.typ.ValueType())
	}
	if index < 0 || index >= len(ts) {
		return nil, modeling(`tupleAt: index %d out of range for %d-tuple`, index, len(ts))
	}
	if tuple.op == OpTuple {
		return tuple.kids[index], nil
	}
	return intern(&Node{op: OpTupleAt, typ: ts[index], kids: []*Node{tuple}, index: index}), nil
}

func StructOf(fields map[string]*Node) (*Node, err.Error) {
	if len(fields) == 0 {
		return nil, modeling(`struct: no fields`)
	}
	ts := make(map[string]typ.Type, len(fields))
	for k, n := range fields {
		if n == nil {
			return nil, modeling(`struct: field %s is nil`, k)
		}
		ts[k] = n.typ
	}
	st := typ.NewStruct(ts)
	keys := st.Keys()
	kids := make([]*Node, len(keys))
	for i, k := range keys {
		kids[i] = fields[k]
	}
	return intern(&Node{op: OpStruct, typ: st, kids: kids, keys: keys}), nil
}

func Field(strct *Node, name string) (*Node, err.Error) {
	if e := operandCheck(`field`, strct); e != nil {
		return nil, e
	}
	st, ok := strct.typ.(typ.Struct)
	if !ok {
		return nil, modeling(`field: operand of type %s, want struct`, strct.typ.ValueType())
	}
	ft, ok := st.Field(name)
	if !ok {
		return nil, modeling(`field: no field named %s`, name)
	}
	if strct.op == OpStruct {
		for i, k := range strct.keys {
			if k == name {
				return strct.kids[i], nil
			}
		}
	}
	return intern(&Node{op: OpField, typ: ft, kids: []*Node{strct}, name: name}), nil
}

func Some(operand *Node) (*Node, err.Error) {
	if e := operandCheck(`some`, operand); e != nil {
		return nil, e
	}
	return intern(&Node{op: OpSome, typ: typ.Option{Elements: operand.typ}, kids: []*Node{operand}}), nil
}

func NoneOf(elements typ.Type) (*Node, err.Error) {
	if elements == nil {
		return nil, modeling(`none: nil element type`)
	}
	return ConstTyped(val.None, typ.Option{Elements: elements})
}

func IsPresent(operand *Node) (*Node, err.Error) {
	if e := operandCheck(`isPresent`, operand); e != nil {
		return nil, e
	}
	if _, ok := operand.typ.(typ.Option); !ok {
		return nil, modeling(`isPresent: operand of type %s, want option`, operand.typ.ValueType())
	}
	if operand.op == OpSome {
		return nodeTrue, nil
	}
	if operand.op == OpConst {
		return boolConst(operand.lit.(val.Option).Present), nil
	}
	return intern(&Node{op: OpIsPresent, typ: typ.Bool{}, kids: []*Node{operand}}), nil
}

func AssertPresent(operand *Node) (*Node, err.Error) {
	if e := operandCheck(`assertPresent`, operand); e != nil {
		return nil, e
	}
	ot, ok := operand.typ.(typ.Option)
	if !ok {
		return nil, modeling(`assertPresent: operand of type %s, want option`, operand.typ.ValueType())
	}
	if operand.op == OpSome {
		return operand.kids[0], nil
	}
	return intern(&Node{op: OpAssertPresent, typ: ot.Elements, kids: []*Node{operand}}), nil
}

func PresentOrZero(operand *Node) (*Node, err.Error) {
	if e := operandCheck(`presentOrZero`, operand); e != nil {
		return nil, e
	}
	ot, ok := operand.typ.(typ.Option)
	if !ok {
		return nil, modeling(`presentOrZero: operand of type %s, want option`, operand.typ.ValueType())
	}
	if operand.op == OpSome {
		return operand.kids[0], nil
	}
	return intern(&Node{op: OpPresentOrZero, typ: ot.Elements, kids: []*Node{operand}}), nil
}

func ListOf(elements typ.Type, items ...*Node) (*Node, err.Error) {
	if elements == nil {
		return nil, modeling(`list: nil element type`)
	}
	lt := typ.List{Elements: elements}
	if e := typ.ValidateNesting(lt); e != nil {
		return nil, e
	}
	if e := operandCheck(`list`, items...); e != nil {
		return nil, e
	}
	for i, n := range items {
		if !n.typ.Equals(elements) {
			return nil, modeling(`list: item %d of type %s, want %s`, i, n.typ.ValueType(), elements.ValueType())
		}
	}
	kids := make([]*Node, len(items))
	copy(kids, items)
	return intern(&Node{op: OpList, typ: lt, kids: kids}), nil
}

func sequenceCheck(name string, n *Node) err.Error {
	if !typ.IsSequence(n.typ) {
		return modeling(`%s: operand of type %s, want string or list`, name, n.typ.ValueType())
	}
	return nil
}

func Concat(left, right *Node) (*Node, err.Error) {
	if e := operandCheck(`concat`, left, right); e != nil {
		return nil, e
	}
	if e := sequenceCheck(`concat`, left); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`concat: mismatched operand types %s and %s`, left.typ.ValueType(), right.typ.ValueType())
	}
	return intern(&Node{op: OpConcat, typ: left.typ, kids: []*Node{left, right}}), nil
}

func Length(sequence *Node) (*Node, err.Error) {
	if e := operandCheck(`length`, sequence); e != nil {
		return nil, e
	}
	if e := sequenceCheck(`length`, sequence); e != nil {
		return nil, e
	}
	return intern(&Node{op: OpLength, typ: typ.Int64{}, kids: []*Node{sequence}}), nil
}

// Slice extracts the subsequence [offset, offset+length). Out-of-range
// offsets saturate to the empty sequence, mirroring the evaluator.
func Slice(sequence, offset, length *Node) (*Node, err.Error) {
	if e := operandCheck(`slice`, sequence, offset, length); e != nil {
		return nil, e
	}
	if e := sequenceCheck(`slice`, sequence); e != nil {
		return nil, e
	}
	if !offset.typ.Equals(typ.Int64{}) || !length.typ.Equals(typ.Int64{}) {
		return nil, modeling(`slice: offset and length must be int64`)
	}
	return intern(&Node{op: OpSlice, typ: sequence.typ, kids: []*Node{sequence, offset, length}}), nil
}

// CharAt yields the one-element subsequence at the given index, or the
// empty string for out-of-range indices on strings. On lists it yields
// an option.
func CharAt(sequence, index *Node) (*Node, err.Error) {
	if e := operandCheck(`charAt`, sequence, index); e != nil {
		return nil, e
	}
	if e := sequenceCheck(`charAt`, sequence); e != nil {
		return nil, e
	}
	if !index.typ.Equals(typ.Int64{}) {
		return nil, modeling(`charAt: index must be int64`)
	}
	if lt, ok := sequence.typ.(typ.List); ok {
		return intern(&Node{op: OpCharAt, typ: typ.Option{Elements: lt.Elements}, kids: []*Node{sequence, index}}), nil
	}
	return intern(&Node{op: OpCharAt, typ: typ.String{}, kids: []*Node{sequence, index}}), nil
}

func sequencePair(op Op, name string, result typ.Type, left, right *Node) (*Node, err.Error) {
	if e := operandCheck(name, left, right); e != nil {
		return nil, e
	}
	if e := sequenceCheck(name, left); e != nil {
		return nil, e
	}
	if !left.typ.Equals(right.typ) {
		return nil, modeling(`%s: mismatched operand types %s and %s`, name, left.typ.ValueType(), right.typ.ValueType())
	}
	return intern(&Node{op: op, typ: result, kids: []*Node{left, right}}), nil
}

// IndexOf yields the 0-based index of the first occurrence of the
// subsequence, or -1 when absent.
func IndexOf(sequence, sub *Node) (*Node, err.Error) {
	return sequencePair(OpIndexOf, `indexOf`, typ.Int64{}, sequence, sub)
}

func Contains(sequence, sub *Node) (*Node, err.Error) {
	return sequencePair(OpContains, `contains`, typ.Bool{}, sequence, sub)
}

func StartsWith(sequence, prefix *Node) (*Node, err.Error) {
	return sequencePair(OpStartsWith, `startsWith`, typ.Bool{}, sequence, prefix)
}

func EndsWith(sequence, suffix *Node) (*Node, err.Error) {
	return sequencePair(OpEndsWith, `endsWith`, typ.Bool{}, sequence, suffix)
}

func ReplaceFirst(sequence, old, new *Node) (*Node, err.Error) {
	if e := operandCheck(`replaceFirst`, sequence, old, new); e != nil {
		return nil, e
	}
	if e := sequenceCheck(`replaceFirst`, sequence); e != nil {
		return nil, e
	}
	if !sequence.typ.Equals(old.typ) || !sequence.typ.Equals(new.typ) {
		return nil, modeling(`replaceFirst: mismatched operand types`)
	}
	return intern(&Node{op: OpReplaceFirst, typ: sequence.typ, kids: []*Node{sequence, old, new}}), nil
}

// MatchRegex tests a string against a pattern. The pattern is parsed at
// construction time; invalid patterns are modeling errors.
func MatchRegex(operand *Node, pattern string) (*Node, err.Error) {
	if e := operandCheck(`matchRegex`, operand); e != nil {
		return nil, e
	}
	if !operand.typ.Equals(typ.String{}) {
		return nil, modeling(`matchRegex: operand of type %s, want string`, operand.typ.ValueType())
	}
	if _, e := regexp.Compile(pattern); e != nil {
		return nil, modeling(`matchRegex: invalid pattern: %s`, e)
	}
	return intern(&Node{op: OpMatchRegex, typ: typ.Bool{}, kids: []*Node{operand}, name: pattern}), nil
}

func Key(m, key *Node) (*Node, err.Error) {
	if e := operandCheck(`key`, m, key); e != nil {
		return nil, e
	}
	mt, ok := m.typ.(typ.Map)
	if !ok {
		return nil, modeling(`key: operand of type %s, want map`, m.typ.ValueType())
	}
	if !key.typ.Equals(mt.Key) {
		return nil, modeling(`key: key of type %s, want %s`, key.typ.ValueType(), mt.Key.ValueType())
	}
	return intern(&Node{op: OpKey, typ: mt.Value, kids: []*Node{m, key}}), nil
}

func SetKey(m, key, value *Node) (*Node, err.Error) {
	if e := operandCheck(`setKey`, m, key, value); e != nil {
		return nil, e
	}
	mt, ok := m.typ.(typ.Map)
	if !ok {
		return nil, modeling(`setKey: operand of type %s, want map`, m.typ.ValueType())
	}
	if !key.typ.Equals(mt.Key) {
		return nil, modeling(`setKey: key of type %s, want %s`, key.typ.ValueType(), mt.Key.ValueType())
	}
	if !value.typ.Equals(mt.Value) {
		return nil, modeling(`setKey: value of type %s, want %s`, value.typ.ValueType(), mt.Value.ValueType())
	}
	return intern(&Node{op: OpSetKey, typ: mt, kids: []*Node{m, key, value}}), nil
}

func Entry(m, key *Node) (*Node, err.Error) {
	if e := operandCheck(`entry`, m, key); e != nil {
		return nil, e
	}
	mt, ok := m.typ.(typ.DefaultMap)
	if !ok {
		return nil, modeling(`entry: operand of type %s, want default map`, m.typ.ValueType())
	}
	if !key.typ.Equals(mt.Key) {
		return nil, modeling(`entry: key of type %s, want %s`, key.typ.ValueType(), mt.Key.ValueType())
	}
	return intern(&Node{op: OpEntry, typ: mt.Value, kids: []*Node{m, key}}), nil
}

func SetEntry(m, key, value *Node) (*Node, err.Error) {
	if e := operandCheck(`setEntry`, m, key, value); e != nil {
		return nil, e
	}
	mt, ok := m.typ.(typ.DefaultMap)
	if !ok {
		return nil, modeling(`setEntry: operand of type %s, want default map`, m.typ.ValueType())
	}
	if !key.typ.Equals(mt.Key) {
		return nil, modeling(`setEntry: key of type %s, want %s`, key.typ.ValueType(), mt.Key.ValueType())
	}
	if !value.typ.Equals(mt.Value) {
		return nil, modeling(`setEntry: value of type %s, want %s`, value.typ.ValueType(), mt.Value.ValueType())
	}
	return intern(&Node{op: OpSetEntry, typ: mt, kids: []*Node{m, key, value}}), nil
}

// EntryCount reports the number of keys whose effective value differs
// from the map's default.
func EntryCount(m *Node) (*Node, err.Error) {
	if e := operandCheck(`entryCount`, m); e != nil {
		return nil, e
	}
	if _, ok := m.typ.(typ.DefaultMap); !ok {
		return nil, modeling(`entryCount: operand of type %s, want default map`, m.typ.ValueType())
	}
	return intern(&Node{op: OpEntryCount, typ: typ.Int64{}, kids: []*Node{m}}), nil
}

// Variables collects the free variables of the DAG rooted at n, keyed
// by name. Two distinct variables sharing a name is a modeling error.
func Variables(n *Node) (map[string]*Node, err.Error) {
	vars := make(map[string]*Node, 8)
	var e err.Error
	n.Walk(func(m *Node) bool {
		if m.op != OpVar {
			return true
		}
		if prev, ok := vars[m.name]; ok && prev != m {
			e = modeling(`variable %s declared with conflicting types %s and %s`, m.name, prev.typ.ValueType(), m.typ.ValueType())
			return false
		}
		vars[m.name] = m
		return true
	})
	if e != nil {
		return nil, e
	}
	return vars, nil
}
