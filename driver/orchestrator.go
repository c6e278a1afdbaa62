// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"fmt"

	"github.com/luxfi/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/luxfi/mme/regmap"

	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	opUpdateModulus            = "UpdateModulus"
	opMultiply                 = "Multiply"
	opExponentiate             = "Exponentiate"
	opSimultaneousExponentiate = "SimultaneousExponentiate"
	opModExp                   = "ModExp"
)

// run wraps one orchestrated operation. The context is only consulted
// before the operation touches the hardware.
func (s *Session) run(ctx context.Context, op string, bits int, fn func() error) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "Session."+op, oteltrace.WithAttributes(
		attribute.Int("bits", bits),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.metrics.started(op)
	if err := fn(); err != nil {
		s.metrics.failed(op)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// step starts dest = x*y*R^-1 and waits for it to complete.
func (s *Session) step(part regmap.Part, dest, x, y regmap.Slot) error {
	w := regmap.SingleWord(s.readControl(), part, dest, x, y)
	s.log.Debug("starting single step",
		log.Stringer("part", part),
		log.Stringer("dest", dest),
		log.Stringer("x", x),
		log.Stringer("y", y),
	)
	s.pulse(w)
	return s.waitUntilReady(s.config.Timeout)
}

// autoRun starts the exponentiation ladder over the fed exponent and waits
// for it to complete.
func (s *Session) autoRun(part regmap.Part) error {
	s.log.Debug("starting auto run",
		log.Stringer("part", part),
	)
	s.pulse(regmap.AutoWord(part))
	return s.waitUntilReady(s.config.Timeout)
}

// UpdateModulus installs m as the modulus of the modulus-derived
// operations and precomputes its R2. n must be 512, 1024 or 1536.
func (s *Session) UpdateModulus(ctx context.Context, m []uint32, n int) error {
	return s.run(ctx, opUpdateModulus, n, func() error {
		part, ok := regmap.PartFor(n)
		if !ok {
			s.log.Error("unsupported modulus width",
				log.Int("bits", n),
			)
			return fmt.Errorf("%w: modulus width %d", ErrInvalidArgument, n)
		}
		r2, err := ComputeR2(m, n)
		if err != nil {
			s.log.Error("couldn't compute R2",
				log.Int("bits", n),
				log.Err(err),
			)
			return err
		}

		s.installed = false
		s.n = n
		s.words = part.Words()
		s.part = part
		s.r2 = [regmap.WordsTotal]uint32{}
		copy(s.r2[:], r2)
		s.modulus = [regmap.WordsTotal]uint32{}
		copy(s.modulus[:], m)

		if err := s.setOperand(m, regmap.Modulus, part); err != nil {
			return err
		}
		s.installed = true
		s.resident = true
		return nil
	})
}

// R2 returns a copy of the precomputed constant of the installed modulus.
func (s *Session) R2() ([]uint32, error) {
	if !s.installed {
		return nil, ErrNoModulus
	}
	return append([]uint32(nil), s.r2[:s.words]...), nil
}

// prepare checks that a modulus is installed and rewrites it if ModExp
// replaced it in the meantime.
func (s *Session) prepare() error {
	if !s.installed {
		s.log.Error("no modulus installed")
		return ErrNoModulus
	}
	if s.resident {
		return nil
	}
	if err := s.setOperand(s.modulus[:s.words], regmap.Modulus, s.part); err != nil {
		return err
	}
	s.resident = true
	return nil
}

// Multiply returns x*y mod m for the installed modulus.
func (s *Session) Multiply(ctx context.Context, x, y []uint32) ([]uint32, error) {
	var result []uint32
	err := s.run(ctx, opMultiply, s.n, func() error {
		if err := s.prepare(); err != nil {
			return err
		}
		part := s.part
		if err := s.load(part,
			operand{regmap.Operand0, x},
			operand{regmap.Operand1, y},
			operand{regmap.Operand2, s.r2[:s.words]},
		); err != nil {
			return err
		}
		if err := s.steps(part,
			[3]regmap.Slot{regmap.Operand3, regmap.Operand0, regmap.Operand1},
			[3]regmap.Slot{regmap.Operand3, regmap.Operand2, regmap.Operand3},
		); err != nil {
			return err
		}
		var err error
		result, err = s.getOperand(regmap.Operand3, part)
		return err
	})
	return result, err
}

// Exponentiate returns g^e mod m for the installed modulus. e is t bits
// long.
func (s *Session) Exponentiate(ctx context.Context, g, e []uint32, t int) ([]uint32, error) {
	var result []uint32
	err := s.run(ctx, opExponentiate, s.n, func() error {
		if err := s.prepare(); err != nil {
			return err
		}
		entries, err := s.encodeExponent(e, nil, t)
		if err != nil {
			return err
		}
		part := s.part
		if err := s.load(part,
			operand{regmap.Operand0, g},
			operand{regmap.Operand1, s.r2[:s.words]},
			operand{regmap.Operand2, oneFor(part)},
		); err != nil {
			return err
		}
		// g and 1 into Montgomery form
		if err := s.steps(part,
			[3]regmap.Slot{regmap.Operand0, regmap.Operand0, regmap.Operand1},
			[3]regmap.Slot{regmap.Operand3, regmap.Operand2, regmap.Operand1},
		); err != nil {
			return err
		}
		s.feed(entries)
		if err := s.autoRun(part); err != nil {
			return err
		}
		if err := s.step(part, regmap.Operand3, regmap.Operand2, regmap.Operand3); err != nil {
			return err
		}
		result, err = s.getOperand(regmap.Operand3, part)
		return err
	})
	return result, err
}

// SimultaneousExponentiate returns g0^e0 * g1^e1 mod m for the installed
// modulus. e0 and e1 are t bits long.
func (s *Session) SimultaneousExponentiate(ctx context.Context, g0, g1, e0, e1 []uint32, t int) ([]uint32, error) {
	var result []uint32
	err := s.run(ctx, opSimultaneousExponentiate, s.n, func() error {
		if err := s.prepare(); err != nil {
			return err
		}
		if e1 == nil {
			return fmt.Errorf("%w: missing second exponent", ErrInvalidArgument)
		}
		entries, err := s.encodeExponent(e0, e1, t)
		if err != nil {
			return err
		}
		result, err = s.simultaneous(s.part, g0, g1, s.r2[:s.words], entries)
		return err
	})
	return result, err
}

// ModExp returns g0^e0 * g1^e1 mod m without installing m. g1 and e1 may
// both be nil for a single exponentiation. The installed modulus, its R2
// and width are left untouched; the modulus slot is rewritten by the next
// modulus-derived operation.
func (s *Session) ModExp(ctx context.Context, g0, g1, m, e0, e1 []uint32, n, t int) ([]uint32, error) {
	var result []uint32
	err := s.run(ctx, opModExp, n, func() error {
		part, ok := regmap.PartFor(n)
		if !ok {
			s.log.Error("unsupported modulus width",
				log.Int("bits", n),
			)
			return fmt.Errorf("%w: modulus width %d", ErrInvalidArgument, n)
		}
		if (g1 == nil) != (e1 == nil) {
			return fmt.Errorf("%w: second base and exponent must be given together", ErrInvalidArgument)
		}
		if g1 == nil {
			g1 = oneFor(part)
		}
		r2, err := s.r2For(m, n)
		if err != nil {
			s.log.Error("couldn't compute R2",
				log.Int("bits", n),
				log.Err(err),
			)
			return err
		}
		entries, err := s.encodeExponent(e0, e1, t)
		if err != nil {
			return err
		}

		s.resident = false
		if err := s.setOperand(m, regmap.Modulus, part); err != nil {
			return err
		}
		result, err = s.simultaneous(part, g0, g1, r2, entries)
		return err
	})
	return result, err
}

// simultaneous runs the dual base ladder with the modulus already in place.
func (s *Session) simultaneous(part regmap.Part, g0, g1, r2, entries []uint32) ([]uint32, error) {
	if err := s.load(part,
		operand{regmap.Operand0, g0},
		operand{regmap.Operand1, g1},
		operand{regmap.Operand2, oneFor(part)},
		operand{regmap.Operand3, r2},
	); err != nil {
		return nil, err
	}
	// g0, g1 and 1 into Montgomery form, then g0*g1
	if err := s.steps(part,
		[3]regmap.Slot{regmap.Operand0, regmap.Operand0, regmap.Operand3},
		[3]regmap.Slot{regmap.Operand1, regmap.Operand1, regmap.Operand3},
		[3]regmap.Slot{regmap.Operand3, regmap.Operand2, regmap.Operand3},
		[3]regmap.Slot{regmap.Operand2, regmap.Operand0, regmap.Operand1},
	); err != nil {
		return nil, err
	}
	s.feed(entries)
	if err := s.autoRun(part); err != nil {
		return nil, err
	}
	if err := s.setOperand(oneFor(part), regmap.Operand2, part); err != nil {
		return nil, err
	}
	if err := s.step(part, regmap.Operand3, regmap.Operand2, regmap.Operand3); err != nil {
		return nil, err
	}
	return s.getOperand(regmap.Operand3, part)
}

type operand struct {
	slot regmap.Slot
	data []uint32
}

func (s *Session) load(part regmap.Part, operands ...operand) error {
	for _, o := range operands {
		if err := s.setOperand(o.data, o.slot, part); err != nil {
			return err
		}
	}
	return nil
}

// steps runs single steps in order. Each step is {dest, x, y}.
func (s *Session) steps(part regmap.Part, steps ...[3]regmap.Slot) error {
	for _, st := range steps {
		if err := s.step(part, st[0], st[1], st[2]); err != nil {
			return err
		}
	}
	return nil
}
