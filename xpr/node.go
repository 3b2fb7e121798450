// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"karma.run/sym/typ"
	"karma.run/sym/val"
)

// Node is an immutable, typed, hash-consed expression term.
// Structurally identical construction yields pointer-identical nodes
// within a process, so pointer equality implies semantic equality and
// downstream passes may memoize by node identity.
type Node struct {
	id    uint64
	hash  uint64
	op    Op
	typ   typ.Type
	kids  []*Node
	lit   val.Value // OpConst payload
	name  string    // OpVar, OpField, OpMatchRegex payload
	index int       // OpTupleAt payload
	keys  []string  // OpStruct payload, sorted
}

func (n *Node) Op() Op {
	return n.op
}

func (n *Node) Type() typ.Type {
	return n.typ
}

// ID is a process-unique, stable identity assigned at interning time.
func (n *Node) ID() uint64 {
	return n.id
}

func (n *Node) Len() int {
	return len(n.kids)
}

func (n *Node) Kid(i int) *Node {
	return n.kids[i]
}

func (n *Node) Kids() []*Node {
	ks := make([]*Node, len(n.kids))
	copy(ks, n.kids)
	return ks
}

// Literal returns the OpConst payload, nil otherwise.
func (n *Node) Literal() val.Value {
	return n.lit
}

// Name returns the OpVar name, OpField field name or OpMatchRegex
// pattern.
func (n *Node) Name() string {
	return n.name
}

// Index returns the static OpTupleAt index.
func (n *Node) Index() int {
	return n.index
}

// FieldNames returns the OpStruct field names, sorted.
func (n *Node) FieldNames() []string {
	ks := make([]string, len(n.keys))
	copy(ks, n.keys)
	return ks
}

// Walk traverses the DAG pre-order, visiting every distinct node once.
// It stops early when f returns false.
func (n *Node) Walk(f func(*Node) bool) {
	seen := make(map[uint64]struct{}, 32)
	var rec func(*Node) bool
	rec = func(m *Node) bool {
		if _, ok := seen[m.id]; ok {
			return true
		}
		seen[m.id] = struct{}{}
		if !f(m) {
			return false
		}
		for _, k := range m.kids {
			if !rec(k) {
				return false
			}
		}
		return true
	}
	rec(n)
}

// process-wide interning table. Nodes are never evicted: they are
// immutable and expressions are typically short-lived relative to the
// process.
var (
	internMutex sync.Mutex
	internTable = make(map[uint64][]*Node, 1024)
	internNext  uint64
)

func structuralHash(n *Node) uint64 {
	d := xxhash.New()
	var buf [8]byte
	buf[0] = byte(n.op)
	d.Write(buf[:1])
	for _, k := range n.kids {
		binary.BigEndian.PutUint64(buf[:], k.id)
		d.Write(buf[:])
	}
	if n.lit != nil {
		binary.BigEndian.PutUint64(buf[:], val.Hash(n.lit, nil).Sum64())
		d.Write(buf[:])
	}
	if n.name != "" {
		d.WriteString(n.name)
	}
	binary.BigEndian.PutUint64(buf[:], uint64(n.index))
	d.Write(buf[:])
	for _, k := range n.keys {
		d.WriteString(k)
	}
	return d.Sum64()
}

func structurallyEqual(a, b *Node) bool {
	if a.op != b.op || len(a.kids) != len(b.kids) || a.name != b.name || a.index != b.index || len(a.keys) != len(b.keys) {
		return false
	}
	for i := range a.kids {
		if a.kids[i] != b.kids[i] {
			return false
		}
	}
	for i := range a.keys {
		if a.keys[i] != b.keys[i] {
			return false
		}
	}
	if (a.lit == nil) != (b.lit == nil) {
		return false
	}
	if a.lit != nil && !a.lit.Equals(b.lit) {
		return false
	}
	if (a.typ == nil) != (b.typ == nil) {
		return false
	}
	if a.typ != nil && !a.typ.Equals(b.typ) {
		return false
	}
	return true
}

// intern canonicalizes n: if a structurally identical node was interned
// before, that shared instance is returned. Safe for concurrent
// construction; two callers building the same sub-expression converge
// on one node.
func intern(n *Node) *Node {
	h := structuralHash(n)
	internMutex.Lock()
	defer internMutex.Unlock()
	for _, m := range internTable[h] {
		if structurallyEqual(n, m) {
			return m
		}
	}
	internNext++
	n.id, n.hash = internNext, h
	internTable[h] = append(internTable[h], n)
	return n
}
