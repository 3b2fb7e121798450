// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"fmt"
)

// Op is the closed operator set. Backends dispatch over it and must
// fail explicitly on (operator, type) pairs they cannot encode.
type Op uint8

const (
	OpConst Op = iota
	OpVar

	OpAnd
	OpOr
	OpNot

	OpEq
	OpLt
	OpGt

	OpAdd
	OpSub
	OpMul
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	OpIf

	OpTuple
	OpTupleAt
	OpStruct
	OpField

	OpSome
	OpIsPresent
	OpAssertPresent
	OpPresentOrZero

	OpList
	OpConcat
	OpLength
	OpSlice
	OpCharAt
	OpIndexOf
	OpContains
	OpStartsWith
	OpEndsWith
	OpReplaceFirst
	OpMatchRegex

	OpKey
	OpSetKey

	OpEntry
	OpSetEntry
	OpEntryCount

	lastOp // internal marker
)

func (o Op) String() string {
	switch o {
	case OpConst:
		return "const"
	case OpVar:
		return "var"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	case OpEq:
		return "equal"
	case OpLt:
		return "less"
	case OpGt:
		return "greater"
	case OpAdd:
		return "add"
	case OpSub:
		return "subtract"
	case OpMul:
		return "multiply"
	case OpBitAnd:
		return "bitAnd"
	case OpBitOr:
		return "bitOr"
	case OpBitXor:
		return "bitXor"
	case OpShl:
		return "shiftLeft"
	case OpShr:
		return "shiftRight"
	case OpIf:
		return "if"
	case OpTuple:
		return "tuple"
	case OpTupleAt:
		return "tupleAt"
	case OpStruct:
		return "struct"
	case OpField:
		return "field"
	case OpSome:
		return "some"
	case OpIsPresent:
		return "isPresent"
	case OpAssertPresent:
		return "assertPresent"
	case OpPresentOrZero:
		return "presentOrZero"
	case OpList:
		return "list"
	case OpConcat:
		return "concat"
	case OpLength:
		return "length"
	case OpSlice:
		return "slice"
	case OpCharAt:
		return "charAt"
	case OpIndexOf:
		return "indexOf"
	case OpContains:
		return "contains"
	case OpStartsWith:
		return "startsWith"
	case OpEndsWith:
		return "endsWith"
	case OpReplaceFirst:
		return "replaceFirst"
	case OpMatchRegex:
		return "matchRegex"
	case OpKey:
		return "key"
	case OpSetKey:
		return "setKey"
	case OpEntry:
		return "entry"
	case OpSetEntry:
		return "setEntry"
	case OpEntryCount:
		return "entryCount"
	}
	panic(fmt.Sprintf("unhandled Op: %d", uint8(o)))
}
