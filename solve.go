// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"karma.run/sym/err"
	"karma.run/sym/typ"
	"karma.run/sym/val"
	"karma.run/sym/xpr"
)

// Solution maps free variable names to concrete values. Every solution
// handed out by this package is complete: variables the backend left
// unconstrained are filled in with their type's zero value.
type Solution map[string]val.Value

// Backend turns boolean problems into live solving contexts. The two
// implementations ship in the smt and bdd packages.
type Backend interface {

	// Name identifies the backend in capability and engine errors.
	Name() string

	// Open translates the problem and returns a solving context.
	// Translation failures surface here: modeling errors for malformed
	// problems, capability errors for constructs the backend cannot
	// encode. Callers own the context and must Close it.
	Open(problem *xpr.Node) (Context, err.Error)
}

// Context is one solving session. Unsatisfiability is an ordinary
// Check result, never an error.
type Context interface {

	// Check reports wether the constraints are currently satisfiable.
	Check() (bool, err.Error)

	// Model extracts a satisfying assignment. Only valid after Check
	// returned true.
	Model() (Solution, err.Error)

	// Exclude bars a previously returned solution from subsequent
	// Checks, driving the enumeration forward.
	Exclude(Solution) err.Error

	Close() err.Error
}

// Solutions is a lazy, restartable enumeration of the satisfying
// assignments of a problem. Nothing is solved until ForEach is called;
// every ForEach call opens a fresh backend context and starts over.
type Solutions struct {
	problem *xpr.Node
	backend Backend
	vars    map[string]*xpr.Node
}

// Solve prepares the enumeration of all solutions of problem on the
// given backend. The problem must be a boolean expression.
func Solve(problem *xpr.Node, backend Backend) (*Solutions, err.Error) {
	if problem == nil {
		return nil, err.ModelingError{Problem: `nil problem`}
	}
	if backend == nil {
		return nil, err.ModelingError{Problem: `nil backend`}
	}
	if !problem.Type().Equals(typ.Bool{}) {
		return nil, err.ModelingError{Problem: `problem must be a boolean expression, have ` + problem.Type().ValueType().String()}
	}
	vars, e := xpr.Variables(problem)
	if e != nil {
		return nil, e
	}
	return &Solutions{problem, backend, vars}, nil
}

// complete fills variables absent from s with their type's zero value.
func (s *Solutions) complete(sol Solution) (Solution, err.Error) {
	for name, v := range s.vars {
		if _, ok := sol[name]; !ok {
			sol[name] = v.Type().Zero()
		}
	}
	return sol, nil
}

// ForEach enumerates solutions until exhaustion, an error, or f
// returning a non-nil error. Returning ErrStop from f ends the
// enumeration early without error. The backend context is released on
// every exit path.
func (s *Solutions) ForEach(f func(Solution) err.Error) err.Error {
	return s.forEachThrough(nil, f)
}

// forEachThrough opens a fresh context, threads the raw enumeration
// through completion and an optional extra pipeline stage, and always
// releases the context.
func (s *Solutions) forEachThrough(wrap func(solutionIterator) solutionIterator, f func(Solution) err.Error) err.Error {
	ctx, e := s.backend.Open(s.problem)
	if e != nil {
		return e
	}
	it := solutionIterator(newMappingIterator(newContextIterator(ctx), s.complete))
	if wrap != nil {
		it = wrap(it)
	}
	e = it.forEach(f)
	if ce := ctx.Close(); ce != nil && e == nil {
		e = ce
	}
	if e == ErrStop {
		e = nil
	}
	return e
}

// FindFirst returns one solution of problem, or found=false when the
// problem is unsatisfiable.
func FindFirst(problem *xpr.Node, backend Backend) (solution Solution, found bool, e err.Error) {
	sols, e := Solve(problem, backend)
	if e != nil {
		return nil, false, e
	}
	e = sols.ForEach(func(s Solution) err.Error {
		solution, found = s, true
		return ErrStop
	})
	if e != nil {
		return nil, false, e
	}
	return solution, found, nil
}

// FindAll collects up to limit solutions, all of them when limit is
// negative. An unsatisfiable problem yields an empty, non-nil slice.
func FindAll(problem *xpr.Node, backend Backend, limit int) ([]Solution, err.Error) {
	sols, e := Solve(problem, backend)
	if e != nil {
		return nil, e
	}
	wrap := func(it solutionIterator) solutionIterator { return it }
	if limit >= 0 {
		wrap = func(it solutionIterator) solutionIterator { return newLimitIterator(it, limit) }
	}
	out := make([]Solution, 0, 8)
	e = sols.forEachThrough(wrap, func(s Solution) err.Error {
		out = append(out, s)
		return nil
	})
	if e != nil {
		return nil, e
	}
	return out, nil
}

// Valid reports wether formula holds under every assignment, by
// checking its negation for satisfiability. When it does not hold, the
// returned solution is a counterexample.
func Valid(formula *xpr.Node, backend Backend) (bool, Solution, err.Error) {
	if formula == nil {
		return false, nil, err.ModelingError{Problem: `nil formula`}
	}
	negated, e := xpr.Not(formula)
	if e != nil {
		return false, nil, e
	}
	counter, found, e := FindFirst(negated, backend)
	if e != nil {
		return false, nil, e
	}
	return !found, counter, nil
}
