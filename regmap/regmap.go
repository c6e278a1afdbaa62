// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package regmap describes the register and memory layout of the
// Montgomery multiplier / simultaneous exponentiation core.
//
// The core exposes two windows:
//   - a data window of six pages holding the modulus, four working operands
//     and the exponent FIFO port
//   - a control window of one page holding the control register and an
//     interrupt controller sub-block
//
// Nothing in this package touches hardware.
package regmap

import "fmt"

// Page and window sizes.
const (
	PageSize    = 0x1000
	DataPages   = 6
	DataSize    = DataPages * PageSize
	ControlSize = PageSize
)

// DefaultDataBase is the physical address of the data window.
const DefaultDataBase = 0xA0000000

// Pipeline widths in bits.
const (
	BitsLow   = 512
	BitsHigh  = 1024
	BitsTotal = BitsLow + BitsHigh
)

// Pipeline widths in 32-bit words.
const (
	WordBits   = 32
	WordsLow   = BitsLow / WordBits
	WordsHigh  = BitsHigh / WordBits
	WordsTotal = BitsTotal / WordBits
)

// AddrStep is the byte stride between consecutive words of a slot. A
// differently banked revision of the core needs a different value here.
const AddrStep = 0x4

// HighOffset biases reads of a high-part operand to the second half of
// its slot.
const HighOffset = WordsLow * AddrStep

// Data window offsets.
const (
	ModulusOffset  = 0x0000
	Operand0Offset = 0x1000
	Operand1Offset = 0x2000
	Operand2Offset = 0x3000
	Operand3Offset = 0x4000
	FIFOOffset     = 0x5000
)

// Control register bit fields.
const (
	PartShift = 30
	DestShift = 28
	XShift    = 26
	YShift    = 24

	StartBit   uint32 = 1 << 23
	AutoRunBit uint32 = 1 << 22

	// FieldMask covers bits 31..22, everything a start word sets.
	FieldMask uint32 = 0xffc00000
	// selectMask covers a 2-bit selector field before shifting.
	selectMask uint32 = 0x3
)

// Control window offsets.
const (
	ControlOffset = 0x000

	IntrSpaceOffset = 0x200
	IntrDGIEROffset = IntrSpaceOffset + 0x1C
	IntrIPISROffset = IntrSpaceOffset + 0x20
	IntrIPIEROffset = IntrSpaceOffset + 0x28
)

// Interrupt controller masks.
const (
	// IntrGIEMask is the global interrupt enable bit of DGIER.
	IntrGIEMask uint32 = 0x80000000

	// IPISRUserIntr is the IPISR status bit raised by the core's
	// completion interrupt. Writing it back clears it.
	IPISRUserIntr uint32 = 0x00000001

	// IPIEREnableAll enables every interrupt source from user logic.
	IPIEREnableAll uint32 = 0x00000001
)

// Part is the pipeline part selector written to bits 31..30.
type Part uint8

const (
	PartNone  Part = 0
	PartLow   Part = 1
	PartHigh  Part = 2
	PartTotal Part = 3
)

func (p Part) String() string {
	switch p {
	case PartLow:
		return "low"
	case PartHigh:
		return "high"
	case PartTotal:
		return "total"
	default:
		return fmt.Sprintf("part(%d)", uint8(p))
	}
}

// Bits returns the operand width served by p, or 0.
func (p Part) Bits() int {
	switch p {
	case PartLow:
		return BitsLow
	case PartHigh:
		return BitsHigh
	case PartTotal:
		return BitsTotal
	default:
		return 0
	}
}

// Words returns the operand width served by p in words.
func (p Part) Words() int {
	return p.Bits() / WordBits
}

// FirstWord is the index, within a full slot, of the first word used by p.
func (p Part) FirstWord() int {
	if p == PartHigh {
		return WordsLow
	}
	return 0
}

// PartFor maps an operand width to its pipeline part.
func PartFor(bits int) (Part, bool) {
	switch bits {
	case BitsLow:
		return PartLow, true
	case BitsHigh:
		return PartHigh, true
	case BitsTotal:
		return PartTotal, true
	default:
		return PartNone, false
	}
}

// Slot identifies an operand location in the data window.
type Slot uint8

const (
	Operand0 Slot = 0
	Operand1 Slot = 1
	Operand2 Slot = 2
	Operand3 Slot = 3
	Modulus  Slot = 4
)

func (s Slot) String() string {
	switch s {
	case Operand0, Operand1, Operand2, Operand3:
		return fmt.Sprintf("op%d", uint8(s))
	case Modulus:
		return "m"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// Offset returns the data window offset of s.
func (s Slot) Offset() (uint32, bool) {
	switch s {
	case Operand0:
		return Operand0Offset, true
	case Operand1:
		return Operand1Offset, true
	case Operand2:
		return Operand2Offset, true
	case Operand3:
		return Operand3Offset, true
	case Modulus:
		return ModulusOffset, true
	default:
		return 0, false
	}
}

// Working reports whether s is one of the four selectable operand slots.
// Only working slots fit the 2-bit selector fields.
func (s Slot) Working() bool {
	return s <= Operand3
}

// SingleWord encodes a single-step multiplication dest = x*y*R^-1 on top
// of the current control register value. Bits 21..0 of current survive.
func SingleWord(current uint32, part Part, dest, x, y Slot) uint32 {
	w := current &^ FieldMask
	w |= (uint32(part)&selectMask)<<PartShift |
		(uint32(dest)&selectMask)<<DestShift |
		(uint32(x)&selectMask)<<XShift |
		(uint32(y)&selectMask)<<YShift |
		StartBit
	return w
}

// AutoWord encodes an auto-run start of the exponentiation ladder.
func AutoWord(part Part) uint32 {
	return StartBit | AutoRunBit | (uint32(part)&selectMask)<<PartShift
}

// ReadSelectWord selects which operand the data window read port returns.
func ReadSelectWord(slot Slot) uint32 {
	return (uint32(slot) & selectMask) << DestShift
}

// Decoded is a control word split into its fields.
type Decoded struct {
	Part    Part
	Dest    Slot
	X       Slot
	Y       Slot
	Start   bool
	AutoRun bool
}

// Decode splits a control word into its fields.
func Decode(w uint32) Decoded {
	return Decoded{
		Part:    Part((w >> PartShift) & selectMask),
		Dest:    Slot((w >> DestShift) & selectMask),
		X:       Slot((w >> XShift) & selectMask),
		Y:       Slot((w >> YShift) & selectMask),
		Start:   w&StartBit != 0,
		AutoRun: w&AutoRunBit != 0,
	}
}
