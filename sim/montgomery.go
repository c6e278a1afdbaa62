// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/big"

	"github.com/luxfi/mme/regmap"
)

// ToInt interprets words as a little endian multi-precision integer.
func ToInt(words []uint32) *big.Int {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		o := len(buf) - 4*(i+1)
		buf[o] = byte(w >> 24)
		buf[o+1] = byte(w >> 16)
		buf[o+2] = byte(w >> 8)
		buf[o+3] = byte(w)
	}
	return new(big.Int).SetBytes(buf)
}

// FromInt returns the [n] least significant words of x, least significant
// word first.
func FromInt(x *big.Int, n int) []uint32 {
	words := make([]uint32, n)
	buf := x.Bytes()
	for i := 0; i < n; i++ {
		var w uint32
		for b := 0; b < 4; b++ {
			idx := len(buf) - 1 - (4*i + b)
			if idx < 0 {
				break
			}
			w |= uint32(buf[idx]) << (8 * b)
		}
		words[i] = w
	}
	return words
}

// montgomery evaluates a*b*R^-1 mod m for R = 2^bits.
type montgomery struct {
	m    *big.Int
	rInv *big.Int
}

func newMontgomery(m *big.Int, bits int) (*montgomery, bool) {
	if m.Sign() <= 0 {
		return nil, false
	}
	r := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	rInv := new(big.Int).ModInverse(r, m)
	if rInv == nil {
		return nil, false
	}
	return &montgomery{m: m, rInv: rInv}, true
}

func (g *montgomery) mul(a, b *big.Int) *big.Int {
	z := new(big.Int).Mul(a, b)
	z.Mul(z, g.rInv)
	return z.Mod(z, g.m)
}

// slice returns the words of slot used by part.
func slice(slot *[regmap.WordsTotal]uint32, part regmap.Part) []uint32 {
	first := part.FirstWord()
	return slot[first : first+part.Words()]
}
