// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bench

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/mme/regmap"
	"github.com/luxfi/mme/sim"
)

// Vector is one random input together with its software reference result.
type Vector struct {
	M        []uint32
	G0       []uint32
	G1       []uint32
	E0       []uint32
	E1       []uint32
	Expected []uint32
}

// NewVector draws an odd modulus with its top bit set, two bases below it
// and two exponents.
func NewVector(rng *rand.Rand, bits, expBits int) Vector {
	words := bits / regmap.WordBits
	m := randomWords(rng, words)
	m[0] |= 1
	m[words-1] |= 1 << 31

	mod := sim.ToInt(m)
	below := func() []uint32 {
		x := sim.ToInt(randomWords(rng, words))
		return sim.FromInt(x.Mod(x, mod), words)
	}
	v := Vector{
		M:  m,
		G0: below(),
		G1: below(),
		E0: randomWords(rng, expBits/regmap.WordBits),
		E1: randomWords(rng, expBits/regmap.WordBits),
	}
	expected := sim.Reference(sim.ToInt(v.G0), sim.ToInt(v.G1), sim.ToInt(v.E0), sim.ToInt(v.E1), mod)
	v.Expected = sim.FromInt(expected, words)
	return v
}

// NewVectors generates [rounds] vectors concurrently. Vector i only depends
// on seed and i.
func NewVectors(ctx context.Context, seed int64, rounds, bits, expBits int) ([]Vector, error) {
	vectors := make([]Vector, rounds)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range vectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed + int64(i))) //#nosec G404
			vectors[i] = NewVector(rng, bits, expBits)
			return nil
		})
	}
	return vectors, g.Wait()
}

func randomWords(rng *rand.Rand, n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = rng.Uint32()
	}
	return words
}
