// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/mme/regmap"
)

// Width selects the width used by an operand transfer.
type Width int

// SessionWidth takes the width of the installed modulus.
const SessionWidth Width = 0

// Bits is an explicit operand width of 512, 1024 or 1536 bits.
func Bits(n int) Width {
	return Width(n)
}

// one is the constant 1 at full width. Shorter parts use a prefix.
var one = [regmap.WordsTotal]uint32{1}

func oneFor(part regmap.Part) []uint32 {
	return one[:part.Words()]
}

func (s *Session) partOf(w Width) (regmap.Part, error) {
	if w == SessionWidth {
		if !s.installed {
			return regmap.PartNone, ErrNoModulus
		}
		return s.part, nil
	}
	part, ok := regmap.PartFor(int(w))
	if !ok {
		s.log.Error("unsupported operand width",
			log.Int("bits", int(w)),
		)
		return regmap.PartNone, fmt.Errorf("%w: operand width %d", ErrInvalidArgument, int(w))
	}
	return part, nil
}

// SetOperand writes data into slot. The whole slot is written, with the
// words outside the selected part forced to zero.
func (s *Session) SetOperand(data []uint32, slot regmap.Slot, w Width) error {
	if err := s.usable(); err != nil {
		return err
	}
	part, err := s.partOf(w)
	if err != nil {
		return err
	}
	if err := s.setOperand(data, slot, part); err != nil {
		return err
	}
	if slot == regmap.Modulus {
		s.resident = false
	}
	return nil
}

// GetOperand reads the selected part of a working slot.
func (s *Session) GetOperand(slot regmap.Slot, w Width) ([]uint32, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	part, err := s.partOf(w)
	if err != nil {
		return nil, err
	}
	return s.getOperand(slot, part)
}

func (s *Session) setOperand(data []uint32, slot regmap.Slot, part regmap.Part) error {
	offset, ok := slot.Offset()
	if !ok {
		s.log.Error("unknown operand slot",
			log.Stringer("slot", slot),
		)
		return fmt.Errorf("%w: slot %s", ErrInvalidArgument, slot)
	}
	if len(data) != part.Words() {
		s.log.Error("operand length does not match width",
			log.Stringer("slot", slot),
			log.Int("words", len(data)),
			log.Int("bits", part.Bits()),
		)
		return fmt.Errorf("%w: %d words for a %d bit operand", ErrInvalidArgument, len(data), part.Bits())
	}

	var buf [regmap.WordsTotal]uint32
	copy(buf[part.FirstWord():], data)
	s.writeWords(offset, buf[:])
	return nil
}

func (s *Session) getOperand(slot regmap.Slot, part regmap.Part) ([]uint32, error) {
	if !slot.Working() {
		s.log.Error("slot is not readable",
			log.Stringer("slot", slot),
		)
		return nil, fmt.Errorf("%w: slot %s is not readable", ErrInvalidArgument, slot)
	}
	offset, _ := slot.Offset()
	if part == regmap.PartHigh {
		offset += regmap.HighOffset
	}

	// the read port is muxed by the destination field
	s.writeControl(regmap.ReadSelectWord(slot))
	data := make([]uint32, part.Words())
	s.readWords(offset, data)
	return data, nil
}

// DumpOperands reads every working slot at full width.
func (s *Session) DumpOperands() ([regmap.Operand3 + 1][regmap.WordsTotal]uint32, error) {
	var dump [regmap.Operand3 + 1][regmap.WordsTotal]uint32
	if err := s.usable(); err != nil {
		return dump, err
	}
	for slot := regmap.Operand0; slot <= regmap.Operand3; slot++ {
		offset, _ := slot.Offset()
		s.writeControl(regmap.ReadSelectWord(slot))
		s.readWords(offset, dump[slot][:])
	}
	return dump, nil
}
