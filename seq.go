// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sym

import (
	"fmt"
	"strings"

	"karma.run/sym/val"
)

// Sequence operations treat strings as sequences of unicode code
// points, not bytes. Out-of-range accesses saturate: they yield empty
// or absent results instead of failing.

func sequenceLength(v val.Value) val.Int64 {
	switch v := v.(type) {
	case val.String:
		return val.Int64(len([]rune(string(v))))
	case val.List:
		return val.Int64(len(v))
	}
	panic(fmt.Sprintf("sequenceLength: %T", v))
}

// clampRange intersects [offset, offset+length) with [0, size).
func clampRange(offset, length, size int64) (int64, int64) {
	if length < 0 {
		length = 0
	}
	if offset < 0 {
		length += offset // shrink by the underflow
		offset = 0
	}
	if offset > size {
		offset = size
	}
	if length > size-offset {
		length = size - offset
	}
	if length < 0 {
		length = 0
	}
	return offset, offset + length
}

func sequenceSlice(v val.Value, offset, length int64) val.Value {
	switch v := v.(type) {
	case val.String:
		rs := []rune(string(v))
		lo, hi := clampRange(offset, length, int64(len(rs)))
		return val.String(rs[lo:hi])
	case val.List:
		lo, hi := clampRange(offset, length, int64(len(v)))
		out := make(val.List, hi-lo, hi-lo)
		copy(out, v[lo:hi])
		return out
	}
	panic(fmt.Sprintf("sequenceSlice: %T", v))
}

// sequenceAt yields the one-rune substring at index for strings (empty
// when out of range) and an option for lists (absent when out of
// range).
func sequenceAt(v val.Value, index int64) val.Value {
	switch v := v.(type) {
	case val.String:
		rs := []rune(string(v))
		if index < 0 || index >= int64(len(rs)) {
			return val.String("")
		}
		return val.String(rs[index : index+1])
	case val.List:
		if index < 0 || index >= int64(len(v)) {
			return val.None
		}
		return val.Some(v[index])
	}
	panic(fmt.Sprintf("sequenceAt: %T", v))
}

func runeIndex(haystack, needle []rune) int64 {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return int64(i)
		}
	}
	return -1
}

func listIndex(haystack, needle val.List) int64 {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if !haystack[i+j].Equals(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return int64(i)
		}
	}
	return -1
}

// sequenceIndexOf yields the index of the first occurrence of sub, or
// -1 when absent. The empty subsequence occurs at index 0.
func sequenceIndexOf(v, sub val.Value) val.Int64 {
	switch v := v.(type) {
	case val.String:
		return val.Int64(runeIndex([]rune(string(v)), []rune(string(sub.(val.String)))))
	case val.List:
		return val.Int64(listIndex(v, sub.(val.List)))
	}
	panic(fmt.Sprintf("sequenceIndexOf: %T", v))
}

func sequenceContains(v, sub val.Value) val.Bool {
	return sequenceIndexOf(v, sub) >= 0
}

func sequenceStartsWith(v, prefix val.Value) val.Bool {
	switch v := v.(type) {
	case val.String:
		return val.Bool(strings.HasPrefix(string(v), string(prefix.(val.String))))
	case val.List:
		p := prefix.(val.List)
		if len(p) > len(v) {
			return false
		}
		return val.Bool(listIndex(v[:len(p)], p) == 0)
	}
	panic(fmt.Sprintf("sequenceStartsWith: %T", v))
}

func sequenceEndsWith(v, suffix val.Value) val.Bool {
	switch v := v.(type) {
	case val.String:
		return val.Bool(strings.HasSuffix(string(v), string(suffix.(val.String))))
	case val.List:
		s := suffix.(val.List)
		if len(s) > len(v) {
			return false
		}
		return val.Bool(listIndex(v[len(v)-len(s):], s) == 0)
	}
	panic(fmt.Sprintf("sequenceEndsWith: %T", v))
}

// sequenceReplaceFirst replaces the first occurrence of old with new.
// When old does not occur, the sequence is returned unchanged.
func sequenceReplaceFirst(v, old, new val.Value) val.Value {
	switch v := v.(type) {
	case val.String:
		o := string(old.(val.String))
		if o == "" {
			return v
		}
		return val.String(strings.Replace(string(v), o, string(new.(val.String)), 1))
	case val.List:
		o, n := old.(val.List), new.(val.List)
		if len(o) == 0 {
			return v
		}
		i := listIndex(v, o)
		if i < 0 {
			return v
		}
		out := make(val.List, 0, len(v)-len(o)+len(n))
		out = append(out, v[:i]...)
		out = append(out, n...)
		out = append(out, v[int(i)+len(o):]...)
		return out
	}
	panic(fmt.Sprintf("sequenceReplaceFirst: %T", v))
}

func sequenceConcat(a, b val.Value) val.Value {
	switch a := a.(type) {
	case val.String:
		return a + b.(val.String)
	case val.List:
		r := b.(val.List)
		out := make(val.List, 0, len(a)+len(r))
		out = append(out, a...)
		out = append(out, r...)
		return out
	}
	panic(fmt.Sprintf("sequenceConcat: %T", a))
}
