// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"fmt"
	"math/big"

	"github.com/luxfi/mme/regmap"
)

var two = big.NewInt(2)

// ComputeR2 returns 2^(2n) mod m as n/32 words, least significant first.
// m must be odd and n/32 words long.
func ComputeR2(m []uint32, n int) ([]uint32, error) {
	part, ok := regmap.PartFor(n)
	if !ok {
		return nil, fmt.Errorf("%w: modulus width %d", ErrInvalidArgument, n)
	}
	if len(m) != part.Words() {
		return nil, fmt.Errorf("%w: %d modulus words for width %d", ErrInvalidArgument, len(m), n)
	}
	if m[0]&1 == 0 {
		return nil, fmt.Errorf("%w: modulus must be odd", ErrInvalidArgument)
	}

	mod := wordsToInt(m)
	r2 := new(big.Int).Exp(two, big.NewInt(int64(2*n)), mod)
	return intToWords(r2, part.Words()), nil
}

// r2Key identifies a one-off modulus in the R2 cache.
type r2Key struct {
	bits    int
	modulus [regmap.WordsTotal]uint32
}

// r2For returns R2 for m, computing it on a cache miss.
func (s *Session) r2For(m []uint32, n int) ([]uint32, error) {
	key := r2Key{bits: n}
	copy(key.modulus[:], m)
	if v, ok := s.r2Cache.Get(key); ok {
		return v.([]uint32), nil
	}
	r2, err := ComputeR2(m, n)
	if err != nil {
		return nil, err
	}
	s.r2Cache.Add(key, r2)
	return r2, nil
}

func wordsToInt(words []uint32) *big.Int {
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

func intToWords(x *big.Int, n int) []uint32 {
	buf := x.FillBytes(make([]byte, 4*n))
	words := make([]uint32, n)
	for i := range words {
		o := len(buf) - 4*(i+1)
		words[i] = uint32(buf[o])<<24 | uint32(buf[o+1])<<16 | uint32(buf[o+2])<<8 | uint32(buf[o+3])
	}
	return words
}
