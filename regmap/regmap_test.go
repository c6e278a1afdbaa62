// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package regmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutConstants(t *testing.T) {
	require := require.New(t)

	require.Equal(16, WordsLow)
	require.Equal(32, WordsHigh)
	require.Equal(48, WordsTotal)
	require.Equal(0x40, HighOffset)
	require.Equal(0x6000, DataSize)
	require.Equal(0x21C, IntrDGIEROffset)
	require.Equal(0x220, IntrIPISROffset)
	require.Equal(0x228, IntrIPIEROffset)
	require.Equal(uint32(0x003fffff), ^FieldMask)
}

func TestPartFor(t *testing.T) {
	tests := []struct {
		bits  int
		part  Part
		ok    bool
		first int
	}{
		{bits: 512, part: PartLow, ok: true, first: 0},
		{bits: 1024, part: PartHigh, ok: true, first: 16},
		{bits: 1536, part: PartTotal, ok: true, first: 0},
		{bits: 2048, part: PartNone, ok: false},
		{bits: 0, part: PartNone, ok: false},
	}
	for _, test := range tests {
		part, ok := PartFor(test.bits)
		require.Equal(t, test.ok, ok, "bits %d", test.bits)
		require.Equal(t, test.part, part, "bits %d", test.bits)
		if ok {
			require.Equal(t, test.bits, part.Bits())
			require.Equal(t, test.bits/32, part.Words())
			require.Equal(t, test.first, part.FirstWord())
		}
	}
}

func TestSlotOffset(t *testing.T) {
	require := require.New(t)

	expected := map[Slot]uint32{
		Operand0: 0x1000,
		Operand1: 0x2000,
		Operand2: 0x3000,
		Operand3: 0x4000,
		Modulus:  0x0000,
	}
	for slot, offset := range expected {
		got, ok := slot.Offset()
		require.True(ok)
		require.Equal(offset, got, slot.String())
	}

	_, ok := Slot(5).Offset()
	require.False(ok)
	require.False(Modulus.Working())
	require.True(Operand3.Working())
}

func TestSingleWord(t *testing.T) {
	require := require.New(t)

	// low bits of the current value survive, the start fields are replaced
	w := SingleWord(0xffffffff, PartHigh, Operand3, Operand0, Operand1)
	require.Equal(uint32(0x80000000|0x30000000|0x00000000|0x01000000|0x00800000|0x003fffff), w)

	d := Decode(w)
	require.Equal(PartHigh, d.Part)
	require.Equal(Operand3, d.Dest)
	require.Equal(Operand0, d.X)
	require.Equal(Operand1, d.Y)
	require.True(d.Start)
	require.False(d.AutoRun)
}

func TestAutoWord(t *testing.T) {
	require := require.New(t)

	require.Equal(uint32(0x00c00000|1<<30), AutoWord(PartLow))
	require.Equal(uint32(0x00c00000|3<<30), AutoWord(PartTotal))

	d := Decode(AutoWord(PartTotal))
	require.True(d.Start)
	require.True(d.AutoRun)
	require.Equal(PartTotal, d.Part)
}

func TestReadSelectWord(t *testing.T) {
	require.Equal(t, uint32(0x20000000), ReadSelectWord(Operand2))
	require.Equal(t, Operand2, Decode(ReadSelectWord(Operand2)).Dest)
}
