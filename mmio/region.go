// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mmio provides access to memory mapped device windows and the
// interrupt descriptor of a userspace I/O device.
package mmio

//go:generate go run go.uber.org/mock/mockgen -package=mmiomock -destination=mmiomock/mmio.go -mock_names=Region=Region,Interrupts=Interrupts,Platform=Platform . Region,Interrupts,Platform

import (
	"errors"
	"time"
)

var (
	ErrUnsupported  = errors.New("memory mapped I/O is not supported on this platform")
	ErrOutOfRange   = errors.New("offset out of range")
	ErrNoInterrupts = errors.New("device does not support interrupts")
	ErrHangup       = errors.New("interrupt device hung up")
)

// Region is a mapped window of 32-bit device registers.
//
// Every access is a single 32-bit volatile load or store. Accesses are never
// cached, coalesced or reordered with respect to each other.
type Region interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
	// Size is the mapped length in bytes.
	Size() int
	Close() error
}

// Interrupts is the interrupt descriptor of a userspace I/O device.
type Interrupts interface {
	// Count blocks for at most [wait] until an interrupt is pending and
	// returns the cumulative interrupt count. If nothing is pending when
	// [wait] elapses, the last observed count is returned.
	Count(wait time.Duration) (uint32, error)
	// Arm re-enables delivery of the next interrupt.
	Arm() error
	Close() error
}

// Platform acquires the device resources.
type Platform interface {
	// MapData maps [size] bytes of physical memory starting at [base].
	MapData(base int64, size int) (Region, error)
	// OpenInterrupts opens the named interrupt device.
	OpenInterrupts(device string) (Interrupts, error)
	// MapControl maps the register window exposed by the interrupt device.
	MapControl(irq Interrupts, size int) (Region, error)
}
