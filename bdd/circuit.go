// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package bdd

import (
	"github.com/dalzilio/rudd"
)

// word is a bit-blasted value, least significant bit first. Booleans
// are one-bit words. All arithmetic below is two's-complement with
// wrap-around, matching the interpreter's native integer semantics.
type word []rudd.Node

func isFalse(b *rudd.BDD, n rudd.Node) bool {
	return *n == *b.False()
}

func (tr *translator) xorBit(a, b rudd.Node) rudd.Node {
	return tr.b.Ite(a, tr.b.Not(b), b)
}

func (tr *translator) eqBit(a, b rudd.Node) rudd.Node {
	return tr.b.Ite(a, b, tr.b.Not(b))
}

// majority of three, the carry function of a full adder
func (tr *translator) majBit(a, b, c rudd.Node) rudd.Node {
	return tr.b.Ite(a, tr.b.Or(b, c), tr.b.And(b, c))
}

func (tr *translator) constWord(u uint64, width int) word {
	out := make(word, width)
	for i := range out {
		if u&(1<<uint(i)) != 0 {
			out[i] = tr.b.True()
		} else {
			out[i] = tr.b.False()
		}
	}
	return out
}

func (tr *translator) zeroWord(width int) word {
	return tr.constWord(0, width)
}

func (tr *translator) notWord(a word) word {
	out := make(word, len(a))
	for i := range a {
		out[i] = tr.b.Not(a[i])
	}
	return out
}

func (tr *translator) bitwiseWord(op func(...rudd.Node) rudd.Node, a, b word) word {
	out := make(word, len(a))
	for i := range a {
		out[i] = op(a[i], b[i])
	}
	return out
}

func (tr *translator) xorWord(a, b word) word {
	out := make(word, len(a))
	for i := range a {
		out[i] = tr.xorBit(a[i], b[i])
	}
	return out
}

func (tr *translator) eqWord(a, b word) rudd.Node {
	out := tr.b.True()
	for i := range a {
		out = tr.b.And(out, tr.eqBit(a[i], b[i]))
	}
	return out
}

func (tr *translator) iteWord(cond rudd.Node, a, b word) word {
	out := make(word, len(a))
	for i := range a {
		out[i] = tr.b.Ite(cond, a[i], b[i])
	}
	return out
}

// addCarry is a ripple-carry adder with explicit carry-in.
func (tr *translator) addCarry(a, b word, carry rudd.Node) word {
	out := make(word, len(a))
	for i := range a {
		ab := tr.xorBit(a[i], b[i])
		out[i] = tr.xorBit(ab, carry)
		carry = tr.majBit(a[i], b[i], carry)
	}
	return out
}

func (tr *translator) addWord(a, b word) word {
	return tr.addCarry(a, b, tr.b.False())
}

// subWord computes a - b as a + ^b + 1.
func (tr *translator) subWord(a, b word) word {
	return tr.addCarry(a, tr.notWord(b), tr.b.True())
}

// mulWord is a shift-and-add multiplier, truncated to the operand
// width.
func (tr *translator) mulWord(a, b word) word {
	out := tr.zeroWord(len(a))
	for i := range a {
		addend := make(word, len(a))
		for j := range addend {
			if j < i {
				addend[j] = tr.b.False()
				continue
			}
			addend[j] = tr.b.And(b[j-i], a[i])
		}
		out = tr.addWord(out, addend)
	}
	return out
}

// ltWord compares a < b, scanning from the least significant bit so
// that the most significant difference decides. For signed operands
// the sign bit inverts the decision: a negative a is the smaller one.
func (tr *translator) ltWord(a, b word, signed bool) rudd.Node {
	lt := tr.b.False()
	last := len(a) - 1
	for i := range a {
		deciding := b[i]
		if signed && i == last {
			deciding = a[i]
		}
		lt = tr.b.Ite(tr.eqBit(a[i], b[i]), lt, deciding)
	}
	return lt
}

// shiftWord is a barrel shifter over a symbolic unsigned amount.
// Amounts at or beyond the word width yield zero, or the sign fill
// for arithmetic right shifts.
func (tr *translator) shiftWord(v, amount word, left, arithmetic bool) word {
	fill := tr.b.False()
	if arithmetic {
		fill = v[len(v)-1]
	}
	width := len(v)
	overflow := tr.b.False()
	for k := range amount {
		if k < 64 && 1<<uint(k) < width {
			continue
		}
		overflow = tr.b.Or(overflow, amount[k])
	}
	out := v
	for k := range amount {
		if k >= 64 || 1<<uint(k) >= width {
			break
		}
		step := 1 << uint(k)
		shifted := make(word, width)
		for i := range shifted {
			src := i - step
			if !left {
				src = i + step
			}
			if src < 0 || src >= width {
				if left {
					shifted[i] = tr.b.False()
				} else {
					shifted[i] = fill
				}
				continue
			}
			shifted[i] = out[src]
		}
		out = tr.iteWord(amount[k], shifted, out)
	}
	saturated := make(word, width)
	for i := range saturated {
		if left {
			saturated[i] = tr.b.False()
		} else {
			saturated[i] = fill
		}
	}
	return tr.iteWord(overflow, saturated, out)
}
