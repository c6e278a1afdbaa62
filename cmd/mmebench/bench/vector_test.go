// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bench

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/mme/sim"
)

func TestNewVector(t *testing.T) {
	require := require.New(t)

	rng := rand.New(rand.NewSource(7)) //#nosec G404
	v := NewVector(rng, 1024, 64)
	require.Len(v.M, 32)
	require.Len(v.G0, 32)
	require.Len(v.G1, 32)
	require.Len(v.E0, 2)
	require.Len(v.E1, 2)
	require.Len(v.Expected, 32)

	m := sim.ToInt(v.M)
	require.Equal(1024, m.BitLen())
	require.Equal(uint(1), m.Bit(0))
	require.Negative(sim.ToInt(v.G0).Cmp(m))
	require.Negative(sim.ToInt(v.G1).Cmp(m))

	want := new(big.Int).Exp(sim.ToInt(v.G0), sim.ToInt(v.E0), m)
	want.Mul(want, new(big.Int).Exp(sim.ToInt(v.G1), sim.ToInt(v.E1), m))
	want.Mod(want, m)
	require.Zero(want.Cmp(sim.ToInt(v.Expected)))
}

func TestNewVectorsDeterministic(t *testing.T) {
	require := require.New(t)

	a, err := NewVectors(context.Background(), 3, 4, 512, 32)
	require.NoError(err)
	b, err := NewVectors(context.Background(), 3, 4, 512, 32)
	require.NoError(err)
	require.Equal(a, b)

	c, err := NewVectors(context.Background(), 4, 4, 512, 32)
	require.NoError(err)
	require.NotEqual(a[0], c[0])
	// Vector i of seed 3 is vector i-1 of seed 4.
	require.Equal(a[1], c[0])
}

func TestNewVectorsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVectors(ctx, 1, 4, 512, 32)
	require.ErrorIs(t, err, context.Canceled)
}
