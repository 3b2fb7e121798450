// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	sym "karma.run/sym"
	"karma.run/sym/bdd"
	"karma.run/sym/err"
	"karma.run/sym/smt"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// backends under test; smt only when a solver binary is installed.
func backends(t *testing.T) []sym.Backend {
	t.Helper()
	bs := []sym.Backend{bdd.Solver{}}
	if smt.SolverAvailable("") {
		bs = append(bs, smt.Solver{})
	}
	return bs
}

// requireSatisfies checks the core cross-consistency property: a model
// substituted into the problem interprets to true.
func requireSatisfies(t *testing.T, problem *xpr.Node, sol sym.Solution) {
	t.Helper()
	v, e := sym.Eval(problem, sol)
	require.Nil(t, e)
	require.Equal(t, val.Bool(true), v)
}

func TestFindFirst(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	one, _ := xpr.Const(val.Uint8(1))
	seven, _ := xpr.Const(val.Uint8(7))
	sum, _ := xpr.Add(x, one)
	problem, _ := xpr.Eq(sum, seven)
	for _, backend := range backends(t) {
		sol, found, e := sym.FindFirst(problem, backend)
		require.Nil(t, e, backend.Name())
		require.True(t, found, backend.Name())
		require.Equal(t, val.Uint8(6), sol["x"], backend.Name())
		requireSatisfies(t, problem, sol)
	}
}

func TestFindFirstUnsatisfiable(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	zero, _ := xpr.Const(val.Uint8(0))
	problem, _ := xpr.Lt(x, zero)
	for _, backend := range backends(t) {
		_, found, e := sym.FindFirst(problem, backend)
		require.Nil(t, e, backend.Name())
		require.False(t, found, backend.Name())
	}
}

func TestFindAll(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	three, _ := xpr.Const(val.Uint8(3))
	problem, _ := xpr.Lt(x, three)
	for _, backend := range backends(t) {
		sols, e := sym.FindAll(problem, backend, -1)
		require.Nil(t, e, backend.Name())
		require.Len(t, sols, 3, backend.Name())
		seen := map[val.Uint8]bool{}
		for _, sol := range sols {
			requireSatisfies(t, problem, sol)
			seen[sol["x"].(val.Uint8)] = true
		}
		require.Len(t, seen, 3, "solutions must be distinct")

		limited, e := sym.FindAll(problem, backend, 2)
		require.Nil(t, e, backend.Name())
		require.Len(t, limited, 2, backend.Name())
	}
}

func TestSolutionsRestartable(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	two, _ := xpr.Const(val.Uint8(2))
	problem, _ := xpr.Lt(x, two)
	sols, e := sym.Solve(problem, bdd.Solver{})
	require.Nil(t, e)
	for round := 0; round < 2; round++ {
		count := 0
		e := sols.ForEach(func(sym.Solution) err.Error {
			count++
			return nil
		})
		require.Nil(t, e)
		require.Equal(t, 2, count, "every ForEach starts over")
	}
}

func TestForEachEarlyStop(t *testing.T) {
	x, _ := xpr.Var("x", typ.Uint8{})
	hundred, _ := xpr.Const(val.Uint8(100))
	problem, _ := xpr.Lt(x, hundred)
	sols, e := sym.Solve(problem, bdd.Solver{})
	require.Nil(t, e)
	count := 0
	fe := sols.ForEach(func(sym.Solution) err.Error {
		count++
		if count == 3 {
			return sym.ErrStop
		}
		return nil
	})
	require.Nil(t, fe)
	require.Equal(t, 3, count)
}

func TestValid(t *testing.T) {
	p, _ := xpr.Var("p", typ.Bool{})
	notP, _ := xpr.Not(p)
	tautology, _ := xpr.Or(p, notP)
	for _, backend := range backends(t) {
		ok, _, e := sym.Valid(tautology, backend)
		require.Nil(t, e, backend.Name())
		require.True(t, ok, backend.Name())

		ok, counter, e := sym.Valid(p, backend)
		require.Nil(t, e, backend.Name())
		require.False(t, ok, backend.Name())
		v, ee := sym.Eval(p, counter)
		require.Nil(t, ee)
		require.Equal(t, val.Bool(false), v, "counterexample must falsify the formula")
	}
}

func TestConstantProblems(t *testing.T) {
	tru, _ := xpr.Const(val.Bool(true))
	fls, _ := xpr.Const(val.Bool(false))
	for _, backend := range backends(t) {
		sols, e := sym.FindAll(tru, backend, -1)
		require.Nil(t, e, backend.Name())
		require.Len(t, sols, 1, "a variable-free tautology has the one empty solution")

		sols, e = sym.FindAll(fls, backend, -1)
		require.Nil(t, e, backend.Name())
		require.Len(t, sols, 0, backend.Name())
	}
}

func TestSolveDefaultMapScenarios(t *testing.T) {
	dmapType := typ.DefaultMap{Key: typ.Int64{}, Value: typ.Int64{}}
	empty, _ := xpr.EmptyDefaultMap(typ.Int64{}, typ.Int64{})
	one, _ := xpr.Const(val.Int64(1))
	two, _ := xpr.Const(val.Int64(2))
	ten, _ := xpr.Const(val.Int64(10))
	twenty, _ := xpr.Const(val.Int64(20))

	for _, backend := range backends(t) {
		{
			// m.Set(1,10) == {} is unsatisfiable
			m, _ := xpr.Var("m", dmapType)
			set, _ := xpr.SetEntry(m, one, ten)
			problem, _ := xpr.Eq(set, empty)
			_, found, e := sym.FindFirst(problem, backend)
			require.Nil(t, e, backend.Name())
			require.False(t, found, backend.Name())
		}
		{
			// m.Set(1,10) == {}.Set(1,10).Set(2,20) pins m.Get(2) to 20
			m, _ := xpr.Var("m", dmapType)
			lhs, _ := xpr.SetEntry(m, one, ten)
			rhs, _ := xpr.SetEntry(empty, one, ten)
			rhs, _ = xpr.SetEntry(rhs, two, twenty)
			problem, _ := xpr.Eq(lhs, rhs)
			sol, found, e := sym.FindFirst(problem, backend)
			require.Nil(t, e, backend.Name())
			require.True(t, found, backend.Name())
			model := sol["m"].(val.DefaultMap)
			require.Equal(t, val.Int64(20), model.Get(val.Int64(2)), backend.Name())
		}
		{
			// m == {}.Set(5,7) as one literal: the override history is
			// inside the constant, not spelled out as setEntry nodes
			m, _ := xpr.Var("m", dmapType)
			lit := val.NewDefaultMap(val.Int64(0)).Set(val.Int64(5), val.Int64(7))
			rhs, _ := xpr.ConstTyped(lit, dmapType)
			problem, _ := xpr.Eq(m, rhs)
			sol, found, e := sym.FindFirst(problem, backend)
			require.Nil(t, e, backend.Name())
			require.True(t, found, backend.Name())
			model := sol["m"].(val.DefaultMap)
			require.Equal(t, val.Int64(7), model.Get(val.Int64(5)), backend.Name())
		}
	}
}

func TestBackendRejection(t *testing.T) {
	{
		// string variables have no finite-domain encoding
		s, _ := xpr.Var("s", typ.String{})
		hello, _ := xpr.Const(val.String("hello"))
		problem, _ := xpr.Eq(s, hello)
		_, _, e := sym.FindFirst(problem, bdd.Solver{})
		require.NotNil(t, e)
		require.Equal(t, "capabilityError", e.Kind())
	}
	{
		x, _ := xpr.Var("x", typ.Int64{})
		zero, _ := xpr.Const(val.Int64(0))
		problem, _ := xpr.Eq(x, zero)
		_, e := sym.Solve(x, bdd.Solver{})
		require.NotNil(t, e, "non-boolean problems are modeling errors")
		require.Equal(t, "modelingError", e.Kind())
		_, e = sym.Solve(problem, nil)
		require.NotNil(t, e)
	}
}

func TestSolveStringScenarios(t *testing.T) {
	if !smt.SolverAvailable("") {
		t.Skip("no SMT solver binary installed")
	}
	backend := smt.Solver{}
	{
		s, _ := xpr.Var("s", typ.String{})
		pre, _ := xpr.Const(val.String("bro"))
		starts, _ := xpr.StartsWith(s, pre)
		five, _ := xpr.Const(val.Int64(5))
		length, _ := xpr.Length(s)
		bounded, _ := xpr.Eq(length, five)
		problem, _ := xpr.And(starts, bounded)
		sol, found, e := sym.FindFirst(problem, backend)
		require.Nil(t, e)
		require.True(t, found)
		requireSatisfies(t, problem, sol)
	}
	{
		s, _ := xpr.Var("s", typ.String{})
		problem, _ := xpr.MatchRegex(s, "a+b+")
		sols, e := sym.FindAll(problem, backend, 3)
		require.Nil(t, e)
		require.Len(t, sols, 3)
		for _, sol := range sols {
			requireSatisfies(t, problem, sol)
		}
	}
}
