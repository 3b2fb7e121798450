// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"karma.run/sym/err"
)

// ErrStop ends an enumeration early when returned from a ForEach
// callback. It is swallowed: the enumeration reports success.
var ErrStop err.Error = &err.ExecutionError{Problem: `enumeration stopped`}

type solutionIterator interface {

	// if f returns a non-nil error, forEach stops and returns it
	forEach(f func(Solution) err.Error) err.Error
}

// contextIterator pulls solutions out of a backend context one Check
// at a time, excluding each model before asking for the next.
type contextIterator struct {
	ctx Context
}

func newContextIterator(ctx Context) contextIterator {
	return contextIterator{ctx}
}

func (i contextIterator) forEach(f func(Solution) err.Error) err.Error {
	for {
		sat, e := i.ctx.Check()
		if e != nil {
			return e
		}
		if !sat {
			return nil
		}
		m, e := i.ctx.Model()
		if e != nil {
			return e
		}
		if e := f(m); e != nil {
			return e
		}
		if e := i.ctx.Exclude(m); e != nil {
			return e
		}
	}
}

type limitIterator struct {
	sub  solutionIterator
	pass int
}

func newLimitIterator(sub solutionIterator, pass int) limitIterator {
	return limitIterator{sub, pass}
}

func (i limitIterator) forEach(f func(Solution) err.Error) err.Error {
	passed := 0
	e := i.sub.forEach(func(s Solution) err.Error {
		if passed >= i.pass {
			return ErrStop
		}
		if e := f(s); e != nil {
			return e
		}
		passed++
		return nil
	})
	if e == ErrStop {
		e = nil
	}
	return e
}

// mappingIterator transforms solutions as they stream by. Chained
// mappings fuse into one.
type mappingIterator struct {
	sub solutionIterator
	fnc func(Solution) (Solution, err.Error)
}

func newMappingIterator(sub solutionIterator, f func(Solution) (Solution, err.Error)) mappingIterator {
	if mi, ok := sub.(mappingIterator); ok {
		return mappingIterator{mi.sub, func(s Solution) (Solution, err.Error) {
			s, e := mi.fnc(s)
			if e != nil {
				return nil, e
			}
			return f(s)
		}}
	}
	return mappingIterator{sub, f}
}

func (i mappingIterator) forEach(f func(Solution) err.Error) err.Error {
	return i.sub.forEach(func(s Solution) err.Error {
		m, e := i.fnc(s)
		if e != nil {
			return e
		}
		return f(m)
	})
}
