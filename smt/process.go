// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"bufio"
	"io"
	"os/exec"
	"strings"

	"karma.run/sym/err"
)

// ProcessEngine drives an SMT-LIB 2 solver over its stdin/stdout pipe.
// Every command is sent with :print-success enabled, so each write has
// a deterministic acknowledgment and errors surface at the command
// that caused them.
type ProcessEngine struct {
	path string
	cmd  *exec.Cmd
	in   io.WriteCloser
	out  *bufio.Reader
}

// DefaultSolverPath is the binary NewProcessEngine falls back to.
const DefaultSolverPath = "z3"

// SolverAvailable reports wether the solver binary is on PATH. Tests
// use it to skip when no solver is installed.
func SolverAvailable(path string) bool {
	if path == "" {
		path = DefaultSolverPath
	}
	_, e := exec.LookPath(path)
	return e == nil
}

// NewProcessEngine launches the solver at path, or z3 when path is
// empty. The args default to reading SMT-LIB from stdin.
func NewProcessEngine(path string, args ...string) (*ProcessEngine, err.Error) {
	if path == "" {
		path = DefaultSolverPath
	}
	if len(args) == 0 {
		args = []string{"-in"}
	}
	cmd := exec.Command(path, args...)
	in, e := cmd.StdinPipe()
	if e != nil {
		return nil, engineError(path, `stdin pipe: %s`, e)
	}
	out, e := cmd.StdoutPipe()
	if e != nil {
		return nil, engineError(path, `stdout pipe: %s`, e)
	}
	cmd.Stderr = cmd.Stdout
	if e := cmd.Start(); e != nil {
		return nil, engineError(path, `starting solver: %s`, e)
	}
	pe := &ProcessEngine{path, cmd, in, bufio.NewReader(out)}
	if e := pe.command(`(set-option :print-success true)`); e != nil {
		pe.Close()
		return nil, e
	}
	if e := pe.command(`(set-option :produce-models true)`); e != nil {
		pe.Close()
		return nil, e
	}
	return pe, nil
}

// read returns the next s-expression or bare atom from the solver.
// Parenthesis depth is tracked outside of string literals, so quoted
// values containing parens do not break the framing.
func (pe *ProcessEngine) read() (sexp, err.Error) {
	buf := strings.Builder{}
	depth, inString := 0, false
	for {
		line, e := pe.out.ReadString('\n')
		if e != nil && line == "" {
			return sexp{}, engineError(pe.path, `reading solver output: %s`, e)
		}
		buf.WriteString(line)
		for _, c := range line {
			switch {
			case c == '"':
				inString = !inString
			case inString:
				// skip
			case c == '(':
				depth++
			case c == ')':
				depth--
			}
		}
		if depth <= 0 && !inString && strings.TrimSpace(buf.String()) != "" {
			break
		}
	}
	s, _, parseErr := parseSexp(buf.String())
	return s, parseErr
}

func (pe *ProcessEngine) send(command string) err.Error {
	if _, e := io.WriteString(pe.in, command+"\n"); e != nil {
		return engineError(pe.path, `writing to solver: %s`, e)
	}
	return nil
}

// command sends one command and consumes its success acknowledgment.
func (pe *ProcessEngine) command(command string) err.Error {
	if e := pe.send(command); e != nil {
		return e
	}
	s, e := pe.read()
	if e != nil {
		return e
	}
	if s.isAtom() && s.atom == "success" {
		return nil
	}
	return engineError(pe.path, `solver rejected %s: %s`, command, s)
}

func (pe *ProcessEngine) Declare(name, sort string) err.Error {
	return pe.command(`(declare-const ` + name + ` ` + sort + `)`)
}

func (pe *ProcessEngine) Assert(term string) err.Error {
	return pe.command(`(assert ` + term + `)`)
}

func (pe *ProcessEngine) Check() (Result, err.Error) {
	if e := pe.send(`(check-sat)`); e != nil {
		return ResultUnknown, e
	}
	s, e := pe.read()
	if e != nil {
		return ResultUnknown, e
	}
	switch {
	case s.isAtom() && s.atom == "sat":
		return ResultSat, nil
	case s.isAtom() && s.atom == "unsat":
		return ResultUnsat, nil
	case s.isAtom() && s.atom == "unknown":
		return ResultUnknown, nil
	}
	return ResultUnknown, engineError(pe.path, `unexpected check-sat answer: %s`, s)
}

func (pe *ProcessEngine) Values(terms []string) ([]string, err.Error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if e := pe.send(`(get-value (` + strings.Join(terms, " ") + `))`); e != nil {
		return nil, e
	}
	s, e := pe.read()
	if e != nil {
		return nil, e
	}
	if s.isAtom() || len(s.list) != len(terms) {
		return nil, engineError(pe.path, `unexpected get-value answer: %s`, s)
	}
	out := make([]string, len(terms))
	for i, pair := range s.list {
		if pair.isAtom() || len(pair.list) != 2 {
			return nil, engineError(pe.path, `unexpected get-value pair: %s`, pair)
		}
		out[i] = pair.list[1].String()
	}
	return out, nil
}

func (pe *ProcessEngine) Close() err.Error {
	pe.send(`(exit)`)
	pe.in.Close()
	if e := pe.cmd.Wait(); e != nil {
		return engineError(pe.path, `solver exit: %s`, e)
	}
	return nil
}
