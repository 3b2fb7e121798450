// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"fmt"
	"math/big"

	"karma.run/sym/err"
	"karma.run/sym/val"
)

func execError(format string, args ...interface{}) err.Error {
	return err.ExecutionError{Problem: fmt.Sprintf(format, args...)}
}

// Fixed-width arithmetic wraps around two's-complement style, exactly
// like the corresponding Go operations. Arbitrary-precision arithmetic
// is exact.

func addValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a + b.(val.Int8)
	case val.Int16:
		return a + b.(val.Int16)
	case val.Int32:
		return a + b.(val.Int32)
	case val.Int64:
		return a + b.(val.Int64)
	case val.Uint8:
		return a + b.(val.Uint8)
	case val.Uint16:
		return a + b.(val.Uint16)
	case val.Uint32:
		return a + b.(val.Uint32)
	case val.Uint64:
		return a + b.(val.Uint64)
	case val.Int:
		return val.IntFromBig(new(big.Int).Add(a.Int, b.(val.Int).Int))
	}
	panic(fmt.Sprintf("addValues: %T", a))
}

func subtractValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a - b.(val.Int8)
	case val.Int16:
		return a - b.(val.Int16)
	case val.Int32:
		return a - b.(val.Int32)
	case val.Int64:
		return a - b.(val.Int64)
	case val.Uint8:
		return a - b.(val.Uint8)
	case val.Uint16:
		return a - b.(val.Uint16)
	case val.Uint32:
		return a - b.(val.Uint32)
	case val.Uint64:
		return a - b.(val.Uint64)
	case val.Int:
		return val.IntFromBig(new(big.Int).Sub(a.Int, b.(val.Int).Int))
	}
	panic(fmt.Sprintf("subtractValues: %T", a))
}

func multiplyValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a * b.(val.Int8)
	case val.Int16:
		return a * b.(val.Int16)
	case val.Int32:
		return a * b.(val.Int32)
	case val.Int64:
		return a * b.(val.Int64)
	case val.Uint8:
		return a * b.(val.Uint8)
	case val.Uint16:
		return a * b.(val.Uint16)
	case val.Uint32:
		return a * b.(val.Uint32)
	case val.Uint64:
		return a * b.(val.Uint64)
	case val.Int:
		return val.IntFromBig(new(big.Int).Mul(a.Int, b.(val.Int).Int))
	}
	panic(fmt.Sprintf("multiplyValues: %T", a))
}

// lessValues implements the strict ordering shared by less and greater.
func lessValues(a, b val.Value) bool {
	switch a := a.(type) {
	case val.Int8:
		return a < b.(val.Int8)
	case val.Int16:
		return a < b.(val.Int16)
	case val.Int32:
		return a < b.(val.Int32)
	case val.Int64:
		return a < b.(val.Int64)
	case val.Uint8:
		return a < b.(val.Uint8)
	case val.Uint16:
		return a < b.(val.Uint16)
	case val.Uint32:
		return a < b.(val.Uint32)
	case val.Uint64:
		return a < b.(val.Uint64)
	case val.Char:
		return a < b.(val.Char)
	case val.Int:
		return a.Int.Cmp(b.(val.Int).Int) < 0
	}
	panic(fmt.Sprintf("lessValues: %T", a))
}

func bitAndValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a & b.(val.Int8)
	case val.Int16:
		return a & b.(val.Int16)
	case val.Int32:
		return a & b.(val.Int32)
	case val.Int64:
		return a & b.(val.Int64)
	case val.Uint8:
		return a & b.(val.Uint8)
	case val.Uint16:
		return a & b.(val.Uint16)
	case val.Uint32:
		return a & b.(val.Uint32)
	case val.Uint64:
		return a & b.(val.Uint64)
	}
	panic(fmt.Sprintf("bitAndValues: %T", a))
}

func bitOrValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a | b.(val.Int8)
	case val.Int16:
		return a | b.(val.Int16)
	case val.Int32:
		return a | b.(val.Int32)
	case val.Int64:
		return a | b.(val.Int64)
	case val.Uint8:
		return a | b.(val.Uint8)
	case val.Uint16:
		return a | b.(val.Uint16)
	case val.Uint32:
		return a | b.(val.Uint32)
	case val.Uint64:
		return a | b.(val.Uint64)
	}
	panic(fmt.Sprintf("bitOrValues: %T", a))
}

func bitXorValues(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a ^ b.(val.Int8)
	case val.Int16:
		return a ^ b.(val.Int16)
	case val.Int32:
		return a ^ b.(val.Int32)
	case val.Int64:
		return a ^ b.(val.Int64)
	case val.Uint8:
		return a ^ b.(val.Uint8)
	case val.Uint16:
		return a ^ b.(val.Uint16)
	case val.Uint32:
		return a ^ b.(val.Uint32)
	case val.Uint64:
		return a ^ b.(val.Uint64)
	}
	panic(fmt.Sprintf("bitXorValues: %T", a))
}

// shiftAmount widens any unsigned fixed-width value to uint64.
func shiftAmount(v val.Value) uint64 {
	switch v := v.(type) {
	case val.Uint8:
		return uint64(v)
	case val.Uint16:
		return uint64(v)
	case val.Uint32:
		return uint64(v)
	case val.Uint64:
		return uint64(v)
	}
	panic(fmt.Sprintf("shiftAmount: %T", v))
}

// Shifts by the full width or more yield zero (or all sign bits for
// arithmetic right shifts), matching Go's shift semantics on variable
// amounts.
func shiftLeftValue(a val.Value, by uint64) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a << by
	case val.Int16:
		return a << by
	case val.Int32:
		return a << by
	case val.Int64:
		return a << by
	case val.Uint8:
		return a << by
	case val.Uint16:
		return a << by
	case val.Uint32:
		return a << by
	case val.Uint64:
		return a << by
	}
	panic(fmt.Sprintf("shiftLeftValue: %T", a))
}

func shiftRightValue(a val.Value, by uint64) val.Value {
	switch a := a.(type) {
	case val.Int8:
		return a >> by
	case val.Int16:
		return a >> by
	case val.Int32:
		return a >> by
	case val.Int64:
		return a >> by
	case val.Uint8:
		return a >> by
	case val.Uint16:
		return a >> by
	case val.Uint32:
		return a >> by
	case val.Uint64:
		return a >> by
	}
	panic(fmt.Sprintf("shiftRightValue: %T", a))
}
