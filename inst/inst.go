// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package inst

import (
	"regexp"

	"karma.run/sym/val"
)

type Instruction interface {
	_inst() // private interface
}

type Sequence []Instruction

// Constant pushes a literal value.
type Constant struct {
	val.Value
}

// Input pushes the binding of the named variable.
type Input struct {
	Name string
}

type Not struct{}

type Equal struct{}

type Less struct{}

type Greater struct{}

type Add struct{}

type Subtract struct{}

type Multiply struct{}

type BitAnd struct{}

type BitOr struct{}

type BitXor struct{}

type ShiftLeft struct{}

type ShiftRight struct{}

type If struct {
	Then, Else Sequence
}

type BuildTuple struct {
	Length int
}

type IndexTuple struct {
	Number int
}

type BuildStruct struct {
	Keys []string
}

type Field struct {
	Key string
}

type BuildSome struct{}

type IsPresent struct{}

type AssertPresent struct{}

// PresentOrZero carries the absent-case substitute at compile time.
type PresentOrZero struct {
	Zero val.Value
}

type BuildList struct {
	Length int
}

type Concat struct{}

type Length struct{}

type Slice struct{}

type CharAt struct{}

type IndexOf struct{}

type Contains struct{}

type StartsWith struct{}

type EndsWith struct{}

type ReplaceFirst struct{}

type MatchRegex struct {
	Regex *regexp.Regexp
}

type Key struct{}

type SetKey struct{}

type Entry struct{}

type SetEntry struct{}

type EntryCount struct{}

type DebugPrintStack struct{}

func (Sequence) _inst()        {}
func (Constant) _inst()        {}
func (Input) _inst()           {}
func (Not) _inst()             {}
func (Equal) _inst()           {}
func (Less) _inst()            {}
func (Greater) _inst()         {}
func (Add) _inst()             {}
func (Subtract) _inst()        {}
func (Multiply) _inst()        {}
func (BitAnd) _inst()          {}
func (BitOr) _inst()           {}
func (BitXor) _inst()          {}
func (ShiftLeft) _inst()       {}
func (ShiftRight) _inst()      {}
func (If) _inst()              {}
func (BuildTuple) _inst()      {}
func (IndexTuple) _inst()      {}
func (BuildStruct) _inst()     {}
func (Field) _inst()           {}
func (BuildSome) _inst()       {}
func (IsPresent) _inst()       {}
func (AssertPresent) _inst()   {}
func (PresentOrZero) _inst()   {}
func (BuildList) _inst()       {}
func (Concat) _inst()          {}
func (Length) _inst()          {}
func (Slice) _inst()           {}
func (CharAt) _inst()          {}
func (IndexOf) _inst()         {}
func (Contains) _inst()        {}
func (StartsWith) _inst()      {}
func (EndsWith) _inst()        {}
func (ReplaceFirst) _inst()    {}
func (MatchRegex) _inst()      {}
func (Key) _inst()             {}
func (SetKey) _inst()          {}
func (Entry) _inst()           {}
func (SetEntry) _inst()        {}
func (EntryCount) _inst()      {}
func (DebugPrintStack) _inst() {}
