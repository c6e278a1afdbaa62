// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package driver controls the Montgomery multiplier / simultaneous
// exponentiation core.
//
// A [Session] owns the data window, the control window and the interrupt
// descriptor of one core. It is not safe for concurrent use: callers must
// serialize every operation on a session.
package driver

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"go.opentelemetry.io/otel"

	"github.com/luxfi/mme/mmio"
	"github.com/luxfi/mme/regmap"
	"github.com/luxfi/mme/utils/timer/mockable"
	"github.com/luxfi/mme/utils/wrappers"

	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/luxfi/mme/driver"

// Session is an open handle to the core.
type Session struct {
	log     log.Logger
	config  Config
	clock   mockable.Clock
	tracer  oteltrace.Tracer
	metrics *metrics

	data    mmio.Region
	control mmio.Region
	irq     mmio.Interrupts
	lastIRQ uint32

	// Installed modulus. installed is false until UpdateModulus succeeds.
	installed bool
	n         int
	words     int
	part      regmap.Part
	modulus   [regmap.WordsTotal]uint32
	r2        [regmap.WordsTotal]uint32
	// resident is false once ModExp has overwritten the modulus slot.
	resident bool

	// R2 values of one-off moduli, keyed by r2Key.
	r2Cache *lru.Cache

	closed   bool
	poisoned bool
}

// Open maps the data window, opens the interrupt device, maps the control
// window and enables completion interrupts. On failure every acquired
// resource is released before returning.
func Open(
	platform mmio.Platform,
	config Config,
	logger log.Logger,
	registry metric.Registry,
) (*Session, error) {
	if config.UIODevice == "" {
		logger.Info("taking default UIO device",
			log.String("device", DefaultUIODevice),
		)
		config.UIODevice = DefaultUIODevice
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	m, err := newMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("couldn't register metrics: %w", err)
	}
	cache, err := lru.New(config.R2CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	s := &Session{
		log:     logger,
		config:  config,
		tracer:  otel.Tracer(tracerName),
		metrics: m,
		r2Cache: cache,
	}
	if err := s.acquire(platform); err != nil {
		return nil, err
	}

	logger.Info("opened session",
		log.String("uioDevice", config.UIODevice),
		log.String("memDevice", config.MemDevice),
		log.Uint64("dataBase", uint64(config.DataBaseAddr)),
		log.Uint32("interrupts", s.lastIRQ),
	)
	return s, nil
}

func (s *Session) acquire(platform mmio.Platform) error {
	data, err := platform.MapData(s.config.DataBaseAddr, regmap.DataSize)
	if err != nil {
		s.log.Error("couldn't map data window",
			log.String("device", s.config.MemDevice),
			log.Err(err),
		)
		return fmt.Errorf("%w: data window: %w", ErrResourceUnavailable, err)
	}
	s.data = data

	irq, err := platform.OpenInterrupts(s.config.UIODevice)
	if err != nil {
		s.log.Error("couldn't open interrupt device",
			log.String("device", s.config.UIODevice),
			log.Err(err),
		)
		_ = s.release()
		return fmt.Errorf("%w: interrupt device %s: %w", ErrResourceUnavailable, s.config.UIODevice, err)
	}
	s.irq = irq

	control, err := platform.MapControl(irq, regmap.ControlSize)
	if err != nil {
		s.log.Error("couldn't map control window",
			log.String("device", s.config.UIODevice),
			log.Err(err),
		)
		_ = s.release()
		return fmt.Errorf("%w: control window: %w", ErrResourceUnavailable, err)
	}
	s.control = control

	s.control.Write32(regmap.IntrIPIEROffset, regmap.IPIEREnableAll)
	s.control.Write32(regmap.IntrDGIEROffset, regmap.IntrGIEMask)

	if err := s.irq.Arm(); err != nil {
		_ = s.release()
		return fmt.Errorf("%w: couldn't enable interrupts on %s: %w", ErrResourceUnavailable, s.config.UIODevice, err)
	}
	count, err := s.irq.Count(0)
	if err != nil {
		_ = s.release()
		return fmt.Errorf("%w: couldn't read interrupt count of %s: %w", ErrResourceUnavailable, s.config.UIODevice, err)
	}
	s.lastIRQ = count
	return nil
}

// release closes every acquired resource in reverse acquisition order.
func (s *Session) release() error {
	errs := wrappers.Errs{}
	if s.control != nil {
		errs.Add(s.control.Close())
		s.control = nil
	}
	if s.irq != nil {
		errs.Add(s.irq.Close())
		s.irq = nil
	}
	if s.data != nil {
		errs.Add(s.data.Close())
		s.data = nil
	}
	if errs.Errored() {
		s.log.Warn("failed to release resources",
			log.Err(errs.Err),
		)
	}
	return errs.Err
}

// Close releases the control window, the interrupt device and the data
// window. The session must not be used afterwards.
func (s *Session) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	err := s.release()
	s.log.Info("closed session",
		log.String("uioDevice", s.config.UIODevice),
	)
	return err
}

func (s *Session) usable() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.poisoned:
		return ErrPoisoned
	default:
		return nil
	}
}

// Config returns the configuration the session was opened with.
func (s *Session) Config() Config {
	return s.config
}

func (s *Session) readWords(offset uint32, dst []uint32) {
	for i := range dst {
		dst[i] = s.data.Read32(offset)
		offset += regmap.AddrStep
	}
}

func (s *Session) writeWords(offset uint32, words []uint32) {
	for _, w := range words {
		s.data.Write32(offset, w)
		offset += regmap.AddrStep
	}
}

func (s *Session) readControl() uint32 {
	return s.control.Read32(regmap.ControlOffset)
}

func (s *Session) writeControl(w uint32) {
	s.control.Write32(regmap.ControlOffset, w)
}

// pulse holds a start word for the configured minimum delay.
func (s *Session) pulse(w uint32) {
	s.writeControl(w)
	time.Sleep(s.config.StartPulseDelay)
	s.writeControl(w &^ regmap.StartBit)
}

// Info describes the address map of the core.
type Info struct {
	UIODevice  string `json:"uioDevice"`
	DataBase   int64  `json:"dataBase"`
	Operand0   int64  `json:"operand0"`
	Operand1   int64  `json:"operand1"`
	Operand2   int64  `json:"operand2"`
	Operand3   int64  `json:"operand3"`
	Modulus    int64  `json:"modulus"`
	FIFO       int64  `json:"fifo"`
	WordsTotal int    `json:"wordsTotal"`
	WordsLow   int    `json:"wordsLow"`
	WordsHigh  int    `json:"wordsHigh"`
	HighOffset int    `json:"highOffset"`
	// ModulusBits is zero until a modulus has been installed.
	ModulusBits int `json:"modulusBits"`
}

func (i Info) String() string {
	return fmt.Sprintf(
		"address map:\n  op0: 0x%08x\n  op1: 0x%08x\n  op2: 0x%08x\n  op3: 0x%08x\n  m:   0x%08x\n  exp: 0x%08x\n"+
			"pipeline:\n  total words: %d\n  low part words: %d\n  high part words: %d\n  upper part offset: 0x%08x\n",
		i.Operand0, i.Operand1, i.Operand2, i.Operand3, i.Modulus, i.FIFO,
		i.WordsTotal, i.WordsLow, i.WordsHigh, i.HighOffset,
	)
}

// Info returns the address map of the core.
func (s *Session) Info() Info {
	base := s.config.DataBaseAddr
	info := Info{
		UIODevice:  s.config.UIODevice,
		DataBase:   base,
		Operand0:   base + regmap.Operand0Offset,
		Operand1:   base + regmap.Operand1Offset,
		Operand2:   base + regmap.Operand2Offset,
		Operand3:   base + regmap.Operand3Offset,
		Modulus:    base + regmap.ModulusOffset,
		FIFO:       base + regmap.FIFOOffset,
		WordsTotal: regmap.WordsTotal,
		WordsLow:   regmap.WordsLow,
		WordsHigh:  regmap.WordsHigh,
		HighOffset: regmap.HighOffset,
	}
	if s.installed {
		info.ModulusBits = s.n
	}
	return info
}
