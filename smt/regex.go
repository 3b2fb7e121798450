// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package smt

import (
	"regexp/syntax"
	"strconv"
	"strings"
	"unicode"

	"karma.run/sym/err"
)

const reAny = `(re.* re.allchar)`

// regexTerm translates a Go regular expression into an SMT-LIB regular
// expression term with search (not full-match) semantics: unless the
// pattern is anchored, it is padded with .* on both sides.
func regexTerm(pattern string) (string, err.Error) {
	re, e := syntax.Parse(pattern, syntax.Perl)
	if e != nil {
		// construction already validated the pattern
		return ``, err.ModelingError{Problem: `invalid regex pattern: ` + e.Error()}
	}
	re = re.Simplify()

	subs := []*syntax.Regexp{re}
	if re.Op == syntax.OpConcat {
		subs = re.Sub
	}
	left, right := reAny, reAny
	if len(subs) > 0 && anchorsStart(subs[0]) {
		left, subs = ``, subs[1:]
	}
	if len(subs) > 0 && anchorsEnd(subs[len(subs)-1]) {
		right, subs = ``, subs[:len(subs)-1]
	}
	body := make([]string, 0, len(subs)+2)
	if left != `` {
		body = append(body, left)
	}
	for _, sub := range subs {
		t, e := reTerm(sub)
		if e != nil {
			return ``, e
		}
		body = append(body, t)
	}
	if right != `` {
		body = append(body, right)
	}
	switch len(body) {
	case 0:
		return `(str.to_re "")`, nil
	case 1:
		return body[0], nil
	}
	return `(re.++ ` + strings.Join(body, " ") + `)`, nil
}

func anchorsStart(re *syntax.Regexp) bool {
	return re.Op == syntax.OpBeginText || re.Op == syntax.OpBeginLine
}

func anchorsEnd(re *syntax.Regexp) bool {
	return re.Op == syntax.OpEndText || re.Op == syntax.OpEndLine
}

// foldedRune yields the alternation of a rune's simple case folds.
func foldedRune(r rune) string {
	alts := []string{`(str.to_re ` + stringTerm(string(r)) + `)`}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		alts = append(alts, `(str.to_re `+stringTerm(string(f))+`)`)
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return `(re.union ` + strings.Join(alts, " ") + `)`
}

func reTerm(re *syntax.Regexp) (string, err.Error) {
	switch re.Op {

	case syntax.OpNoMatch:
		return `re.none`, nil

	case syntax.OpEmptyMatch:
		return `(str.to_re "")`, nil

	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			ps := make([]string, len(re.Rune))
			for i, r := range re.Rune {
				ps[i] = foldedRune(r)
			}
			if len(ps) == 1 {
				return ps[0], nil
			}
			return `(re.++ ` + strings.Join(ps, " ") + `)`, nil
		}
		return `(str.to_re ` + stringTerm(string(re.Rune)) + `)`, nil

	case syntax.OpCharClass:
		// rune pairs, inclusive ranges
		ranges := make([]string, 0, len(re.Rune)/2)
		for i := 0; i+1 < len(re.Rune); i += 2 {
			lo, hi := re.Rune[i], re.Rune[i+1]
			if lo == hi {
				ranges = append(ranges, `(str.to_re `+stringTerm(string(lo))+`)`)
				continue
			}
			ranges = append(ranges, `(re.range `+stringTerm(string(lo))+` `+stringTerm(string(hi))+`)`)
		}
		if len(ranges) == 0 {
			return `re.none`, nil
		}
		if len(ranges) == 1 {
			return ranges[0], nil
		}
		return `(re.union ` + strings.Join(ranges, " ") + `)`, nil

	case syntax.OpAnyCharNotNL:
		return `(re.diff re.allchar (str.to_re "\u{a}"))`, nil

	case syntax.OpAnyChar:
		return `re.allchar`, nil

	case syntax.OpCapture:
		return reTerm(re.Sub[0])

	case syntax.OpStar:
		t, e := reTerm(re.Sub[0])
		if e != nil {
			return ``, e
		}
		return `(re.* ` + t + `)`, nil

	case syntax.OpPlus:
		t, e := reTerm(re.Sub[0])
		if e != nil {
			return ``, e
		}
		return `(re.+ ` + t + `)`, nil

	case syntax.OpQuest:
		t, e := reTerm(re.Sub[0])
		if e != nil {
			return ``, e
		}
		return `(re.opt ` + t + `)`, nil

	case syntax.OpRepeat:
		t, e := reTerm(re.Sub[0])
		if e != nil {
			return ``, e
		}
		if re.Max >= 0 {
			return `((_ re.loop ` + strconv.Itoa(re.Min) + ` ` + strconv.Itoa(re.Max) + `) ` + t + `)`, nil
		}
		if re.Min == 0 {
			return `(re.* ` + t + `)`, nil
		}
		return `(re.++ ((_ re.loop ` + strconv.Itoa(re.Min) + ` ` + strconv.Itoa(re.Min) + `) ` + t + `) (re.* ` + t + `))`, nil

	case syntax.OpConcat:
		ps := make([]string, 0, len(re.Sub))
		for _, sub := range re.Sub {
			t, e := reTerm(sub)
			if e != nil {
				return ``, e
			}
			ps = append(ps, t)
		}
		switch len(ps) {
		case 0:
			return `(str.to_re "")`, nil
		case 1:
			return ps[0], nil
		}
		return `(re.++ ` + strings.Join(ps, " ") + `)`, nil

	case syntax.OpAlternate:
		ps := make([]string, 0, len(re.Sub))
		for _, sub := range re.Sub {
			t, e := reTerm(sub)
			if e != nil {
				return ``, e
			}
			ps = append(ps, t)
		}
		if len(ps) == 1 {
			return ps[0], nil
		}
		return `(re.union ` + strings.Join(ps, " ") + `)`, nil
	}

	// anchors and boundaries inside the pattern body
	return ``, capability(`regex construct %s is not supported`, re.Op)
}
