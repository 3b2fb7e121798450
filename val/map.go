// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

// Map is a general association with arbitrary key values.
// Keys are identified by their Hash.
type Map struct {
	es map[uint64]MapEntry
}

type MapEntry struct {
	Key   Value
	Value Value
}

func NewMap(capacity int) Map {
	return Map{make(map[uint64]MapEntry, capacity)}
}

func (m Map) Len() int {
	return len(m.es)
}

func (m Map) Get(k Value) (Value, bool) {
	e, ok := m.es[Hash(k, nil).Sum64()]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (m *Map) Set(k, v Value) {
	if m.es == nil {
		m.es = make(map[uint64]MapEntry, 1)
	}
	m.es[Hash(k, nil).Sum64()] = MapEntry{k, v}
}

func (m Map) ForEach(f func(k, v Value) bool) {
	for _, e := range m.es {
		if !f(e.Key, e.Value) {
			break
		}
	}
}

func (m Map) Keys() []Value {
	ks := make([]Value, 0, len(m.es))
	for _, e := range m.es {
		ks = append(ks, e.Key)
	}
	return ks
}

func (m Map) Transform(f func(Value) Value) Value {
	for h, e := range m.es {
		m.es[h] = MapEntry{e.Key, e.Value.Transform(f)}
	}
	return f(m)
}

func (m Map) Copy() Value {
	c := NewMap(len(m.es))
	for h, e := range m.es {
		c.es[h] = MapEntry{e.Key.Copy(), e.Value.Copy()}
	}
	return c
}

func (m Map) Equals(v Value) bool {
	q, ok := v.(Map)
	if !ok {
		return false
	}
	if len(m.es) != len(q.es) {
		return false
	}
	for h, e := range m.es {
		w, ok := q.es[h]
		if !ok || !e.Value.Equals(w.Value) {
			return false
		}
	}
	return true
}

func (Map) Primitive() bool {
	return false
}

// DefaultMap is a map whose absent keys read back a fixed default value.
// It is represented as an ordered list of (key, value) overrides applied
// most-recent-first over that default. The history is never mutated in
// place: Set returns a new map.
type DefaultMap struct {
	dflt    Value
	history []DefaultMapEntry // oldest first
}

type DefaultMapEntry struct {
	Key   Value
	Value Value
}

func NewDefaultMap(dflt Value) DefaultMap {
	return DefaultMap{dflt: dflt}
}

func (m DefaultMap) Default() Value {
	return m.dflt
}

func (m DefaultMap) Set(k, v Value) DefaultMap {
	h := make([]DefaultMapEntry, len(m.history)+1)
	copy(h, m.history)
	h[len(h)-1] = DefaultMapEntry{k, v}
	return DefaultMap{m.dflt, h}
}

func (m DefaultMap) Get(k Value) Value {
	for i := len(m.history) - 1; i > -1; i-- {
		if m.history[i].Key.Equals(k) {
			return m.history[i].Value
		}
	}
	return m.dflt
}

// History returns the raw override list, oldest first.
func (m DefaultMap) History() []DefaultMapEntry {
	h := make([]DefaultMapEntry, len(m.history))
	copy(h, m.history)
	return h
}

// Keys returns the distinct keys ever touched by Set, in first-touched
// order. Keys whose effective value settled back to the default are
// included.
func (m DefaultMap) Keys() []Value {
	ks := make([]Value, 0, len(m.history))
	for _, e := range m.history {
		seen := false
		for _, k := range ks {
			if k.Equals(e.Key) {
				seen = true
				break
			}
		}
		if !seen {
			ks = append(ks, e.Key)
		}
	}
	return ks
}

// Overrides returns the effective entries: one per distinct key whose
// current value differs from the default.
func (m DefaultMap) Overrides() []DefaultMapEntry {
	es := make([]DefaultMapEntry, 0, len(m.history))
	for _, k := range m.Keys() {
		v := m.Get(k)
		if !v.Equals(m.dflt) {
			es = append(es, DefaultMapEntry{k, v})
		}
	}
	return es
}

// Len reports the number of keys whose effective value differs from the
// default. Overwriting a key with the default removes it from the
// observable key set.
func (m DefaultMap) Len() int {
	return len(m.Overrides())
}

func (m DefaultMap) Transform(f func(Value) Value) Value {
	h := make([]DefaultMapEntry, len(m.history))
	for i, e := range m.history {
		h[i] = DefaultMapEntry{e.Key, e.Value.Transform(f)}
	}
	return f(DefaultMap{m.dflt.Transform(f), h})
}

func (m DefaultMap) Copy() Value {
	h := make([]DefaultMapEntry, len(m.history))
	for i, e := range m.history {
		h[i] = DefaultMapEntry{e.Key.Copy(), e.Value.Copy()}
	}
	return DefaultMap{m.dflt.Copy(), h}
}

// Equals is extensional: two maps are equal when every key touched by
// either history reads back the same value on both sides and the defaults
// agree. Override order is irrelevant.
func (m DefaultMap) Equals(v Value) bool {
	q, ok := v.(DefaultMap)
	if !ok {
		return false
	}
	if !m.dflt.Equals(q.dflt) {
		return false
	}
	for _, k := range m.Keys() {
		if !m.Get(k).Equals(q.Get(k)) {
			return false
		}
	}
	for _, k := range q.Keys() {
		if !m.Get(k).Equals(q.Get(k)) {
			return false
		}
	}
	return true
}

func (DefaultMap) Primitive() bool {
	return false
}
