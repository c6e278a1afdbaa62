// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/mme/regmap"
)

const halfMask = 0xffff

// EncodeExponent returns the exponent FIFO entries for e0 and the optional
// e1, both [bits] long.
//
// Words are streamed most significant first. Each word produces two
// entries, the upper halves and then the lower halves, with the e1 half in
// bits 31..16 and the e0 half in bits 15..0.
func EncodeExponent(e0, e1 []uint32, bits int) ([]uint32, error) {
	if bits <= 0 || bits%regmap.WordBits != 0 {
		return nil, fmt.Errorf("%w: exponent length %d is not a positive multiple of %d", ErrInvalidArgument, bits, regmap.WordBits)
	}
	words := bits / regmap.WordBits
	if len(e0) != words {
		return nil, fmt.Errorf("%w: e0 has %d words, want %d", ErrInvalidArgument, len(e0), words)
	}
	if e1 != nil && len(e1) != words {
		return nil, fmt.Errorf("%w: e1 has %d words, want %d", ErrInvalidArgument, len(e1), words)
	}

	entries := make([]uint32, 0, 2*words)
	for i := words - 1; i >= 0; i-- {
		upper := e0[i] >> 16
		lower := e0[i] & halfMask
		if e1 != nil {
			upper |= e1[i] &^ halfMask
			lower |= (e1[i] & halfMask) << 16
		}
		entries = append(entries, upper, lower)
	}
	return entries, nil
}

// FeedExponent pushes e0 and the optional e1 to the exponent FIFO.
func (s *Session) FeedExponent(e0, e1 []uint32, bits int) error {
	if err := s.usable(); err != nil {
		return err
	}
	entries, err := s.encodeExponent(e0, e1, bits)
	if err != nil {
		return err
	}
	s.feed(entries)
	return nil
}

// encodeExponent encodes and checks the result against the FIFO capacity.
func (s *Session) encodeExponent(e0, e1 []uint32, bits int) ([]uint32, error) {
	entries, err := EncodeExponent(e0, e1, bits)
	if err != nil {
		s.log.Error("invalid exponent",
			log.Int("bits", bits),
			log.Err(err),
		)
		return nil, err
	}
	if depth := s.config.ExponentFIFODepth; depth > 0 && len(entries) > depth {
		s.log.Error("exponent does not fit the fifo",
			log.Int("entries", len(entries)),
			log.Int("depth", depth),
		)
		return nil, fmt.Errorf("%w: %d exponent entries exceed fifo depth %d", ErrInvalidArgument, len(entries), depth)
	}
	return entries, nil
}

func (s *Session) feed(entries []uint32) {
	for _, e := range entries {
		s.data.Write32(regmap.FIFOOffset, e)
	}
	s.metrics.exponentFed.Add(float64(len(entries)))
}
