// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sim is a behavioural model of the multiplier core. It implements
// [mmio.Platform] so the driver can run against it without hardware.
//
// Every start pulse is executed synchronously when the start bit rises, so
// completion interrupts are already counted when the driver begins to wait.
package sim

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/luxfi/mme/mmio"
	"github.com/luxfi/mme/regmap"
)

var (
	_ mmio.Platform   = (*Core)(nil)
	_ mmio.Region     = (*region)(nil)
	_ mmio.Interrupts = (*interrupts)(nil)

	ErrClosed       = errors.New("closed")
	ErrUnknownIRQ   = errors.New("interrupt descriptor was not opened by this core")
	ErrWrongSize    = errors.New("unexpected window size")
	ErrFIFOOverflow = errors.New("exponent fifo overflow")
)

// ControlWrite is one store to the control register.
type ControlWrite struct {
	Value uint32
	At    time.Time
}

// Usage counts resource acquisitions and releases.
type Usage struct {
	DataMaps          int
	DataReleases      int
	InterruptOpens    int
	InterruptReleases int
	ControlMaps       int
	ControlReleases   int
}

// Held reports whether any acquired resource has not been released.
func (u Usage) Held() bool {
	return u.DataMaps != u.DataReleases ||
		u.InterruptOpens != u.InterruptReleases ||
		u.ControlMaps != u.ControlReleases
}

// Core is a simulated multiplier core.
//
// The exported fields configure failure injection and must be set before
// the core is handed to a driver.
type Core struct {
	// FIFODepth bounds the number of queued exponent entries. Zero means
	// unbounded.
	FIFODepth int

	MapDataErr        error
	OpenInterruptsErr error
	MapControlErr     error
	ArmErr            error
	CountErr          error
	// DropCompletions suppresses every completion interrupt.
	DropCompletions bool

	lock sync.Mutex

	control uint32
	dgier   uint32
	ipier   uint32
	ipisr   uint32

	operands [regmap.Modulus + 1][regmap.WordsTotal]uint32
	fifo     []uint32
	fed      []uint32
	writes   []ControlWrite
	faults   []error

	irqCount uint32
	armed    bool
	pending  bool

	usage Usage
	base  int64
}

// New returns an idle core with empty memories.
func New() *Core {
	return &Core{}
}

func (c *Core) MapData(base int64, size int) (mmio.Region, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.MapDataErr != nil {
		return nil, c.MapDataErr
	}
	if size != regmap.DataSize {
		return nil, fmt.Errorf("%w: data window of %d bytes", ErrWrongSize, size)
	}
	c.base = base
	c.usage.DataMaps++
	return &region{core: c, data: true, size: size}, nil
}

func (c *Core) OpenInterrupts(string) (mmio.Interrupts, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.OpenInterruptsErr != nil {
		return nil, c.OpenInterruptsErr
	}
	c.usage.InterruptOpens++
	return &interrupts{core: c}, nil
}

func (c *Core) MapControl(irq mmio.Interrupts, size int) (mmio.Region, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.MapControlErr != nil {
		return nil, c.MapControlErr
	}
	i, ok := irq.(*interrupts)
	if !ok || i.core != c {
		return nil, ErrUnknownIRQ
	}
	if size != regmap.ControlSize {
		return nil, fmt.Errorf("%w: control window of %d bytes", ErrWrongSize, size)
	}
	c.usage.ControlMaps++
	return &region{core: c, size: size}, nil
}

// Usage returns the acquisition counters.
func (c *Core) Usage() Usage {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.usage
}

// Base returns the physical address passed to the last MapData.
func (c *Core) Base() int64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.base
}

// Fed returns every entry pushed to the exponent FIFO, in push order.
func (c *Core) Fed() []uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]uint32(nil), c.fed...)
}

// Queued returns the number of exponent entries not yet consumed.
func (c *Core) Queued() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.fifo)
}

// ControlWrites returns every store to the control register.
func (c *Core) ControlWrites() []ControlWrite {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]ControlWrite(nil), c.writes...)
}

// Starts returns the decoded start words in issue order.
func (c *Core) Starts() []regmap.Decoded {
	c.lock.Lock()
	defer c.lock.Unlock()

	var (
		starts []regmap.Decoded
		prev   uint32
	)
	for _, w := range c.writes {
		if w.Value&regmap.StartBit != 0 && prev&regmap.StartBit == 0 {
			starts = append(starts, regmap.Decode(w.Value))
		}
		prev = w.Value
	}
	return starts
}

// Faults returns the protocol violations the core observed.
func (c *Core) Faults() []error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]error(nil), c.faults...)
}

// Slot returns a copy of the full contents of slot.
func (c *Core) Slot(slot regmap.Slot) [regmap.WordsTotal]uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.operands[slot]
}

// InterruptCount returns the cumulative number of delivered interrupts.
func (c *Core) InterruptCount() uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.irqCount
}

func (c *Core) readData(offset uint32) uint32 {
	page := offset / regmap.PageSize
	word := (offset % regmap.PageSize) / regmap.AddrStep
	if word >= regmap.WordsTotal {
		return 0
	}
	switch offset &^ (regmap.PageSize - 1) {
	case regmap.ModulusOffset:
		return c.operands[regmap.Modulus][word]
	case regmap.FIFOOffset:
		return 0
	default:
		if page > uint32(regmap.Operand3)+1 {
			return 0
		}
		// operand pages share one read port, steered by the dest field
		return c.operands[regmap.Decode(c.control).Dest][word]
	}
}

func (c *Core) writeData(offset, value uint32) {
	word := (offset % regmap.PageSize) / regmap.AddrStep
	switch offset &^ (regmap.PageSize - 1) {
	case regmap.ModulusOffset:
		if word < regmap.WordsTotal {
			c.operands[regmap.Modulus][word] = value
		}
	case regmap.Operand0Offset, regmap.Operand1Offset, regmap.Operand2Offset, regmap.Operand3Offset:
		if word < regmap.WordsTotal {
			slot := regmap.Slot(offset/regmap.PageSize - 1)
			c.operands[slot][word] = value
		}
	case regmap.FIFOOffset:
		if c.FIFODepth > 0 && len(c.fifo) >= c.FIFODepth {
			c.faults = append(c.faults, ErrFIFOOverflow)
			return
		}
		c.fifo = append(c.fifo, value)
		c.fed = append(c.fed, value)
	}
}

func (c *Core) readControl(offset uint32) uint32 {
	switch offset {
	case regmap.ControlOffset:
		return c.control
	case regmap.IntrDGIEROffset:
		return c.dgier
	case regmap.IntrIPIEROffset:
		return c.ipier
	case regmap.IntrIPISROffset:
		return c.ipisr
	default:
		return 0
	}
}

func (c *Core) writeControl(offset, value uint32) {
	switch offset {
	case regmap.ControlOffset:
		prev := c.control
		c.control = value
		c.writes = append(c.writes, ControlWrite{Value: value, At: time.Now()})
		if value&regmap.StartBit != 0 && prev&regmap.StartBit == 0 {
			c.execute(regmap.Decode(value))
		}
	case regmap.IntrDGIEROffset:
		c.dgier = value
	case regmap.IntrIPIEROffset:
		c.ipier = value
	case regmap.IntrIPISROffset:
		// toggle on write
		c.ipisr &^= value
	}
}

func (c *Core) execute(d regmap.Decoded) {
	words := d.Part.Words()
	if words == 0 {
		c.faults = append(c.faults, fmt.Errorf("start with %s", d.Part))
		return
	}
	m := ToInt(slice(&c.operands[regmap.Modulus], d.Part))
	mont, ok := newMontgomery(m, d.Part.Bits())
	if !ok {
		c.faults = append(c.faults, fmt.Errorf("modulus %s has no inverse of R", m))
	} else if d.AutoRun {
		c.ladder(mont, d.Part)
	} else {
		x := ToInt(slice(&c.operands[d.X], d.Part))
		y := ToInt(slice(&c.operands[d.Y], d.Part))
		copy(slice(&c.operands[d.Dest], d.Part), FromInt(mont.mul(x, y), words))
	}
	c.complete()
}

// ladder runs the square and multiply loop over the queued exponent
// entries, accumulating into operand 3.
func (c *Core) ladder(mont *montgomery, part regmap.Part) {
	var (
		acc = ToInt(slice(&c.operands[regmap.Operand3], part))
		g0  = ToInt(slice(&c.operands[regmap.Operand0], part))
		g1  = ToInt(slice(&c.operands[regmap.Operand1], part))
		g01 = ToInt(slice(&c.operands[regmap.Operand2], part))
	)
	for _, entry := range c.fifo {
		for j := 15; j >= 0; j-- {
			acc = mont.mul(acc, acc)
			b0 := (entry >> j) & 1
			b1 := (entry >> (16 + j)) & 1
			switch {
			case b1 == 0 && b0 == 1:
				acc = mont.mul(acc, g0)
			case b1 == 1 && b0 == 0:
				acc = mont.mul(acc, g1)
			case b1 == 1 && b0 == 1:
				acc = mont.mul(acc, g01)
			}
		}
	}
	c.fifo = c.fifo[:0]
	copy(slice(&c.operands[regmap.Operand3], part), FromInt(acc, part.Words()))
}

func (c *Core) complete() {
	if c.DropCompletions {
		return
	}
	c.ipisr |= regmap.IPISRUserIntr
	if c.ipier&regmap.IPIEREnableAll == 0 || c.dgier&regmap.IntrGIEMask == 0 {
		return
	}
	if c.armed {
		c.armed = false
		c.irqCount++
		return
	}
	c.pending = true
}

func (c *Core) arm() {
	if c.pending {
		c.pending = false
		c.irqCount++
		return
	}
	c.armed = true
}

type region struct {
	core   *Core
	data   bool
	size   int
	closed bool
}

func (r *region) Read32(offset uint32) uint32 {
	r.core.lock.Lock()
	defer r.core.lock.Unlock()

	r.check(offset)
	if r.data {
		return r.core.readData(offset)
	}
	return r.core.readControl(offset)
}

func (r *region) Write32(offset, value uint32) {
	r.core.lock.Lock()
	defer r.core.lock.Unlock()

	r.check(offset)
	if r.data {
		r.core.writeData(offset, value)
		return
	}
	r.core.writeControl(offset, value)
}

func (r *region) check(offset uint32) {
	if r.closed {
		panic("access to released window")
	}
	if offset%4 != 0 || int(offset)+4 > r.size {
		panic(fmt.Sprintf("%v: 0x%x", mmio.ErrOutOfRange, offset))
	}
}

func (r *region) Size() int {
	return r.size
}

func (r *region) Close() error {
	r.core.lock.Lock()
	defer r.core.lock.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.closed = true
	if r.data {
		r.core.usage.DataReleases++
	} else {
		r.core.usage.ControlReleases++
	}
	return nil
}

type interrupts struct {
	core     *Core
	reported uint32
	closed   bool
}

func (i *interrupts) Count(wait time.Duration) (uint32, error) {
	c := i.core
	c.lock.Lock()
	defer c.lock.Unlock()

	if i.closed {
		return 0, ErrClosed
	}
	if c.CountErr != nil {
		return i.reported, c.CountErr
	}
	if c.irqCount == i.reported && wait > 0 {
		c.lock.Unlock()
		time.Sleep(min(wait, time.Millisecond))
		c.lock.Lock()
	}
	i.reported = c.irqCount
	return i.reported, nil
}

func (i *interrupts) Arm() error {
	c := i.core
	c.lock.Lock()
	defer c.lock.Unlock()

	if i.closed {
		return ErrClosed
	}
	if c.ArmErr != nil {
		return c.ArmErr
	}
	c.arm()
	return nil
}

func (i *interrupts) Close() error {
	c := i.core
	c.lock.Lock()
	defer c.lock.Unlock()

	if i.closed {
		return ErrClosed
	}
	i.closed = true
	c.usage.InterruptReleases++
	return nil
}

// Reference computes (g0^e0 * g1^e1) mod m with math/big. g1 and e1 may be
// nil.
func Reference(g0, g1, e0, e1, m *big.Int) *big.Int {
	z := new(big.Int).Exp(g0, e0, m)
	if g1 != nil && e1 != nil {
		z.Mul(z, new(big.Int).Exp(g1, e1, m))
		z.Mod(z, m)
	}
	return z
}
