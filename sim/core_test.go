// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/mme/mmio"
	"github.com/luxfi/mme/regmap"
)

type windows struct {
	data    mmio.Region
	control mmio.Region
	irq     mmio.Interrupts
}

func open(t *testing.T, c *Core) windows {
	t.Helper()
	require := require.New(t)

	data, err := c.MapData(regmap.DefaultDataBase, regmap.DataSize)
	require.NoError(err)
	irq, err := c.OpenInterrupts("/dev/uio6")
	require.NoError(err)
	control, err := c.MapControl(irq, regmap.ControlSize)
	require.NoError(err)

	control.Write32(regmap.IntrIPIEROffset, regmap.IPIEREnableAll)
	control.Write32(regmap.IntrDGIEROffset, regmap.IntrGIEMask)
	return windows{data: data, control: control, irq: irq}
}

func write(r mmio.Region, offset uint32, words []uint32) {
	for i, w := range words {
		r.Write32(offset+uint32(i)*regmap.AddrStep, w)
	}
}

func TestWordConversion(t *testing.T) {
	require := require.New(t)

	words := []uint32{0x89abcdef, 0x01234567, 0}
	x := ToInt(words)
	require.Equal("123456789abcdef", x.Text(16))
	require.Equal(words, FromInt(x, 3))
	require.Equal(words[:1], FromInt(x, 1))
}

func TestInterruptArmAndPending(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)

	// completion while not armed stays pending
	w.control.Write32(regmap.ControlOffset, regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1))
	count, err := w.irq.Count(0)
	require.NoError(err)
	require.Zero(count)

	require.NoError(w.irq.Arm())
	count, err = w.irq.Count(0)
	require.NoError(err)
	require.Equal(uint32(1), count)

	// armed completion is counted immediately
	require.NoError(w.irq.Arm())
	w.control.Write32(regmap.ControlOffset, 0)
	w.control.Write32(regmap.ControlOffset, regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1))
	count, err = w.irq.Count(0)
	require.NoError(err)
	require.Equal(uint32(2), count)
}

func TestInterruptStatus(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)
	require.Zero(w.control.Read32(regmap.IntrIPISROffset))

	w.control.Write32(regmap.ControlOffset, regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1))
	require.Equal(regmap.IPISRUserIntr, w.control.Read32(regmap.IntrIPISROffset))

	// status bits clear when written back
	w.control.Write32(regmap.IntrIPISROffset, regmap.IPISRUserIntr)
	require.Zero(w.control.Read32(regmap.IntrIPISROffset))
}

func TestInterruptsDisabled(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)
	w.control.Write32(regmap.IntrDGIEROffset, 0)

	require.NoError(w.irq.Arm())
	w.control.Write32(regmap.ControlOffset, regmap.AutoWord(regmap.PartLow))
	require.Zero(c.InterruptCount())
}

func TestStartNeedsRisingEdge(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)
	require.NoError(w.irq.Arm())

	word := regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1)
	w.control.Write32(regmap.ControlOffset, word)
	w.control.Write32(regmap.ControlOffset, word)
	require.Len(c.Starts(), 1)
}

func TestReadPortFollowsDestination(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)

	w.data.Write32(regmap.Operand1Offset, 11)
	w.data.Write32(regmap.Operand2Offset, 22)

	w.control.Write32(regmap.ControlOffset, regmap.ReadSelectWord(regmap.Operand2))
	require.Equal(uint32(22), w.data.Read32(regmap.Operand1Offset))
	w.control.Write32(regmap.ControlOffset, regmap.ReadSelectWord(regmap.Operand1))
	require.Equal(uint32(11), w.data.Read32(regmap.Operand1Offset))
}

func TestSingleStep(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)

	m := []uint32{0xffffffc5, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}
	x := make([]uint32, 16)
	x[0] = 7
	y := make([]uint32, 16)
	y[0] = 9
	write(w.data, regmap.ModulusOffset, m)
	write(w.data, regmap.Operand0Offset, x)
	write(w.data, regmap.Operand1Offset, y)

	w.control.Write32(regmap.ControlOffset, regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1))

	mod := ToInt(m)
	r := new(big.Int).Lsh(big.NewInt(1), 512)
	want := new(big.Int).ModInverse(r, mod)
	want.Mul(want, big.NewInt(63))
	want.Mod(want, mod)

	op3 := c.Slot(regmap.Operand3)
	require.Equal(FromInt(want, 16), op3[:16])
	require.Empty(c.Faults())
}

func TestLadder(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)

	m := make([]uint32, 16)
	m[0] = 0x0000e3b5
	m[15] = 0x80000000
	mod := ToInt(m)
	r := new(big.Int).Lsh(big.NewInt(1), 512)
	toMont := func(v int64) []uint32 {
		x := new(big.Int).Mul(big.NewInt(v), r)
		return FromInt(x.Mod(x, mod), 16)
	}

	write(w.data, regmap.ModulusOffset, m)
	write(w.data, regmap.Operand0Offset, toMont(3))
	write(w.data, regmap.Operand1Offset, toMont(5))
	write(w.data, regmap.Operand2Offset, toMont(15))
	write(w.data, regmap.Operand3Offset, toMont(1))

	// e0 = 0x0000000b, e1 = 0x00000006
	w.data.Write32(regmap.FIFOOffset, 0)
	w.data.Write32(regmap.FIFOOffset, 0x0006000b)
	require.Equal(2, c.Queued())

	w.control.Write32(regmap.ControlOffset, regmap.AutoWord(regmap.PartLow))
	require.Zero(c.Queued())

	want := Reference(big.NewInt(3), big.NewInt(5), big.NewInt(11), big.NewInt(6), mod)
	want.Mul(want, r)
	want.Mod(want, mod)
	op3 := c.Slot(regmap.Operand3)
	require.Equal(FromInt(want, 16), op3[:16])
}

func TestFIFODepth(t *testing.T) {
	require := require.New(t)

	c := New()
	c.FIFODepth = 2
	w := open(t, c)

	for i := range 3 {
		w.data.Write32(regmap.FIFOOffset, uint32(i))
	}
	require.Equal([]uint32{0, 1}, c.Fed())
	require.ErrorIs(c.Faults()[0], ErrFIFOOverflow)
}

func TestEvenModulusFaults(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)
	require.NoError(w.irq.Arm())

	w.data.Write32(regmap.ModulusOffset, 4)
	w.control.Write32(regmap.ControlOffset, regmap.SingleWord(0, regmap.PartLow, regmap.Operand3, regmap.Operand0, regmap.Operand1))
	require.Len(c.Faults(), 1)
	require.Equal(uint32(1), c.InterruptCount())
}

func TestUsage(t *testing.T) {
	require := require.New(t)

	c := New()
	w := open(t, c)
	require.True(c.Usage().Held())

	require.NoError(w.control.Close())
	require.NoError(w.irq.Close())
	require.NoError(w.data.Close())
	require.False(c.Usage().Held())

	require.ErrorIs(w.data.Close(), ErrClosed)
	require.ErrorIs(w.irq.Arm(), ErrClosed)
	_, err := w.irq.Count(0)
	require.ErrorIs(err, ErrClosed)
	require.Panics(func() {
		w.data.Read32(0)
	})
}

func TestMapValidation(t *testing.T) {
	require := require.New(t)

	c := New()
	_, err := c.MapData(0, regmap.PageSize)
	require.ErrorIs(err, ErrWrongSize)

	other := New()
	irq, err := other.OpenInterrupts("/dev/uio0")
	require.NoError(err)
	_, err = c.MapControl(irq, regmap.ControlSize)
	require.ErrorIs(err, ErrUnknownIRQ)
}
