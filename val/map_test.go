// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

import (
	"testing"
)

func TestDefaultMapGet(t *testing.T) {
	m := NewDefaultMap(Int64(0))
	if v := m.Get(Int64(42)); !v.Equals(Int64(0)) {
		t.Fatalf("empty map read: %#v", v)
	}
	m = m.Set(Int64(1), Int64(10))
	if v := m.Get(Int64(1)); !v.Equals(Int64(10)) {
		t.Fatalf("read after set: %#v", v)
	}
	if v := m.Get(Int64(2)); !v.Equals(Int64(0)) {
		t.Fatalf("untouched key read: %#v", v)
	}
	m = m.Set(Int64(1), Int64(20))
	if v := m.Get(Int64(1)); !v.Equals(Int64(20)) {
		t.Fatalf("last write must win: %#v", v)
	}
}

func TestDefaultMapLen(t *testing.T) {
	m := NewDefaultMap(Int64(0))
	if m.Len() != 0 {
		t.Fatalf("empty map length: %d", m.Len())
	}
	m = m.Set(Int64(1), Int64(10))
	if m.Len() != 1 {
		t.Fatalf("length after one override: %d", m.Len())
	}
	// writing the default back removes the key from the observable set
	m = m.Set(Int64(1), Int64(0))
	if m.Len() != 0 {
		t.Fatalf("length after restoring default: %d", m.Len())
	}
	if v := m.Get(Int64(1)); !v.Equals(Int64(0)) {
		t.Fatalf("read after restoring default: %#v", v)
	}
}

func TestDefaultMapImmutability(t *testing.T) {
	m := NewDefaultMap(Bool(false))
	n := m.Set(Char('a'), Bool(true))
	if m.Len() != 0 {
		t.Fatalf("set must not mutate the receiver, length %d", m.Len())
	}
	if n.Len() != 1 {
		t.Fatalf("derived map length: %d", n.Len())
	}
}

func TestDefaultMapEquals(t *testing.T) {
	{
		a := NewDefaultMap(Int64(0))
		b := NewDefaultMap(Int64(0))
		if !a.Equals(b) {
			t.Fatal("empty maps with equal defaults must be equal")
		}
	}
	{
		// different override orders settling to the same function
		a := NewDefaultMap(Int64(0)).Set(Int64(1), Int64(10)).Set(Int64(2), Int64(20))
		b := NewDefaultMap(Int64(0)).Set(Int64(2), Int64(20)).Set(Int64(1), Int64(10))
		if !a.Equals(b) {
			t.Fatal("extensionally equal maps must compare equal")
		}
	}
	{
		// overridden then restored equals never touched
		a := NewDefaultMap(Int64(0)).Set(Int64(1), Int64(10)).Set(Int64(1), Int64(0))
		b := NewDefaultMap(Int64(0))
		if !a.Equals(b) {
			t.Fatal("restoring the default must restore equality")
		}
	}
	{
		a := NewDefaultMap(Int64(0)).Set(Int64(1), Int64(10))
		b := NewDefaultMap(Int64(0))
		if a.Equals(b) {
			t.Fatal("non-default override must break equality")
		}
	}
	{
		a := NewDefaultMap(Int64(0))
		b := NewDefaultMap(Int64(1))
		if a.Equals(b) {
			t.Fatal("different defaults must not compare equal")
		}
	}
}

func TestDefaultMapKeys(t *testing.T) {
	m := NewDefaultMap(Int64(0)).
		Set(Int64(1), Int64(10)).
		Set(Int64(2), Int64(0)). // default, not observable
		Set(Int64(1), Int64(30))
	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("touched keys: %#v", keys)
	}
	if m.Len() != 1 {
		t.Fatalf("observable length: %d", m.Len())
	}
}

func TestMap(t *testing.T) {
	m := NewMap(0)
	m.Set(String("a"), Int64(1))
	m.Set(String("b"), Int64(2))
	m.Set(String("a"), Int64(3))
	if m.Len() != 2 {
		t.Fatalf("map length: %d", m.Len())
	}
	v, ok := m.Get(String("a"))
	if !ok || !v.Equals(Int64(3)) {
		t.Fatalf("map read: %#v %v", v, ok)
	}
	if _, ok := m.Get(String("c")); ok {
		t.Fatal("absent key must not be found")
	}
}
