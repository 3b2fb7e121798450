// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"sync"

	"github.com/kr/pretty"
	"karma.run/sym/err"
	"karma.run/sym/inst"
	"karma.run/sym/val"
)

type Stack []val.Value

func (s *Stack) Push(v val.Value) {
	*s = append(*s, v)
}

func (s *Stack) Pop() val.Value {
	q := *s
	v := q[len(q)-1]
	q[len(q)-1] = nil
	*s = q[:len(q)-1]
	return v
}

var stackPool = &sync.Pool{
	New: func() interface{} {
		s := make(Stack, 0, 32)
		return &s
	},
}

// Run executes the program under the given variable bindings. The
// result always equals what Eval computes on the source expression.
func (p Program) Run(bindings map[string]val.Value) (val.Value, err.Error) {

	if len(p.sequence) == 0 {
		panic("empty program")
	}

	if e := p.checkBindings(bindings); e != nil {
		return nil, e
	}

	if ct, ok := p.sequence[0].(inst.Constant); ok && len(p.sequence) == 1 {
		return ct.Value.Copy(), nil
	}

	v, e := execute(p.sequence, bindings)
	if e != nil {
		return nil, e
	}
	return v.Copy(), nil
}

func execute(program inst.Sequence, bindings map[string]val.Value) (val.Value, err.Error) {

	stack := stackPool.Get().(*Stack)

	defer func() {
		s := *stack
		for i := range s {
			s[i] = nil
		}
		s = s[:0]
		stackPool.Put(&s)
	}()

	for pc, pl := 0, len(program); pc < pl; pc++ {

		switch it := program[pc].(type) {

		case inst.Sequence:
			panic("nested inst.Sequence in program")

		case inst.DebugPrintStack:
			pretty.Println("stack:", *stack)

		case inst.Constant:
			stack.Push(it.Value)

		case inst.Input:
			stack.Push(bindings[it.Name])

		case inst.If:
			cont := inst.Sequence(nil)
			if stack.Pop().(val.Bool) {
				cont = it.Then
			} else {
				cont = it.Else
			}
			v, e := execute(cont, bindings)
			if e != nil {
				return nil, e
			}
			stack.Push(v)

		case inst.Not:
			stack.Push(!stack.Pop().(val.Bool))

		case inst.Equal:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(val.Bool(l.Equals(r)))

		case inst.Less:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(val.Bool(lessValues(l, r)))

		case inst.Greater:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(val.Bool(lessValues(r, l)))

		case inst.Add:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(addValues(l, r))

		case inst.Subtract:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(subtractValues(l, r))

		case inst.Multiply:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(multiplyValues(l, r))

		case inst.BitAnd:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(bitAndValues(l, r))

		case inst.BitOr:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(bitOrValues(l, r))

		case inst.BitXor:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(bitXorValues(l, r))

		case inst.ShiftLeft:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(shiftLeftValue(l, shiftAmount(r)))

		case inst.ShiftRight:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(shiftRightValue(l, shiftAmount(r)))

		case inst.BuildTuple:
			tp := make(val.Tuple, it.Length, it.Length)
			for i := it.Length - 1; i > -1; i-- {
				tp[i] = stack.Pop()
			}
			stack.Push(tp)

		case inst.IndexTuple:
			stack.Push(stack.Pop().(val.Tuple)[it.Number])

		case inst.BuildStruct:
			v := val.NewStruct(len(it.Keys))
			for i := len(it.Keys) - 1; i > -1; i-- {
				v.Set(it.Keys[i], stack.Pop())
			}
			stack.Push(v)

		case inst.Field:
			stack.Push(stack.Pop().(val.Struct).Field(it.Key))

		case inst.BuildSome:
			stack.Push(val.Some(stack.Pop()))

		case inst.IsPresent:
			stack.Push(val.Bool(stack.Pop().(val.Option).Present))

		case inst.AssertPresent:
			o := stack.Pop().(val.Option)
			if !o.Present {
				return nil, execError(`assertPresent: option is absent`)
			}
			stack.Push(o.Value)

		case inst.PresentOrZero:
			o := stack.Pop().(val.Option)
			if !o.Present {
				stack.Push(it.Zero)
			} else {
				stack.Push(o.Value)
			}

		case inst.BuildList:
			ls := make(val.List, it.Length, it.Length)
			for i := it.Length - 1; i > -1; i-- {
				ls[i] = stack.Pop()
			}
			stack.Push(ls)

		case inst.Concat:
			r, l := stack.Pop(), stack.Pop()
			stack.Push(sequenceConcat(l, r))

		case inst.Length:
			stack.Push(sequenceLength(stack.Pop()))

		case inst.Slice:
			length := int64(stack.Pop().(val.Int64))
			offset := int64(stack.Pop().(val.Int64))
			stack.Push(sequenceSlice(stack.Pop(), offset, length))

		case inst.CharAt:
			index := int64(stack.Pop().(val.Int64))
			stack.Push(sequenceAt(stack.Pop(), index))

		case inst.IndexOf:
			sub, s := stack.Pop(), stack.Pop()
			stack.Push(sequenceIndexOf(s, sub))

		case inst.Contains:
			sub, s := stack.Pop(), stack.Pop()
			stack.Push(sequenceContains(s, sub))

		case inst.StartsWith:
			sub, s := stack.Pop(), stack.Pop()
			stack.Push(sequenceStartsWith(s, sub))

		case inst.EndsWith:
			sub, s := stack.Pop(), stack.Pop()
			stack.Push(sequenceEndsWith(s, sub))

		case inst.ReplaceFirst:
			nw := stack.Pop()
			old := stack.Pop()
			stack.Push(sequenceReplaceFirst(stack.Pop(), old, nw))

		case inst.MatchRegex:
			stack.Push(val.Bool(it.Regex.MatchString(string(stack.Pop().(val.String)))))

		case inst.Key:
			k, m := stack.Pop(), stack.Pop()
			v, ok := m.(val.Map).Get(k)
			if !ok {
				return nil, execError(`key: no entry for key in map`)
			}
			stack.Push(v)

		case inst.SetKey:
			v, k := stack.Pop(), stack.Pop()
			m := stack.Pop().Copy().(val.Map)
			m.Set(k, v)
			stack.Push(m)

		case inst.Entry:
			k, m := stack.Pop(), stack.Pop()
			stack.Push(m.(val.DefaultMap).Get(k))

		case inst.SetEntry:
			v, k := stack.Pop(), stack.Pop()
			stack.Push(stack.Pop().(val.DefaultMap).Set(k, v))

		case inst.EntryCount:
			stack.Push(val.Int64(stack.Pop().(val.DefaultMap).Len()))

		default:
			panic(pretty.Sprintf("unhandled instruction: %v", it))
		}
	}

	return stack.Pop(), nil
}
