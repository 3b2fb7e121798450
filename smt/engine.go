// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package smt solves boolean problems by translating them to SMT-LIB 2
// and driving an external solver process such as z3 or cvc5.
package smt

import (
	"fmt"
	"strings"

	"karma.run/sym/err"
)

// Result of a satisfiability check. Solvers may legitimately answer
// unknown, which surfaces as an engine error upstream.
type Result uint8

const (
	ResultUnsat Result = iota
	ResultSat
	ResultUnknown
)

// Engine is the minimal solver surface the translator drives. The only
// implementation in this package speaks SMT-LIB 2 over a pipe, but the
// interface keeps the translator testable without a solver binary.
type Engine interface {

	// Declare introduces a constant of the given sort.
	Declare(name, sort string) err.Error

	// Assert adds a boolean term to the constraint set.
	Assert(term string) err.Error

	// Check reports satisfiability of the asserted terms.
	Check() (Result, err.Error)

	// Values queries the current model for the given terms. Only valid
	// after a sat Check. The result holds one rendered value per term,
	// in order.
	Values(terms []string) ([]string, err.Error)

	Close() err.Error
}

// sexp is a parsed s-expression: either an atom or a list.
type sexp struct {
	atom string
	list []sexp
}

func (s sexp) isAtom() bool {
	return s.list == nil
}

// String renders the sexp back to SMT-LIB concrete syntax.
func (s sexp) String() string {
	if s.isAtom() {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i, c := range s.list {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// parseSexp reads one s-expression off the front of input.
func parseSexp(input string) (sexp, string, err.Error) {
	input = strings.TrimLeft(input, " \t\r\n")
	if input == "" {
		return sexp{}, "", err.EngineError{Backend: `smt`, Problem: `unexpected end of solver output`}
	}
	if input[0] == '(' {
		rest := input[1:]
		out := sexp{list: make([]sexp, 0, 4)}
		for {
			rest = strings.TrimLeft(rest, " \t\r\n")
			if rest == "" {
				return sexp{}, "", err.EngineError{Backend: `smt`, Problem: `unbalanced parenthesis in solver output`}
			}
			if rest[0] == ')' {
				return out, rest[1:], nil
			}
			child, r, e := parseSexp(rest)
			if e != nil {
				return sexp{}, "", e
			}
			out.list = append(out.list, child)
			rest = r
		}
	}
	if input[0] == '"' {
		// string literal, "" escapes a quote
		for i := 1; i < len(input); i++ {
			if input[i] != '"' {
				continue
			}
			if i+1 < len(input) && input[i+1] == '"' {
				i++
				continue
			}
			return sexp{atom: input[:i+1]}, input[i+1:], nil
		}
		return sexp{}, "", err.EngineError{Backend: `smt`, Problem: `unterminated string literal in solver output`}
	}
	i := strings.IndexAny(input, " \t\r\n()")
	if i < 0 {
		i = len(input)
	}
	return sexp{atom: input[:i]}, input[i:], nil
}

func engineError(backend, format string, args ...interface{}) err.Error {
	return err.EngineError{Backend: backend, Problem: fmt.Sprintf(format, args...)}
}
