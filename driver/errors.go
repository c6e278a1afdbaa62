// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import "errors"

var (
	// ErrResourceUnavailable is returned when a window cannot be mapped or
	// the interrupt device cannot be opened.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrInvalidArgument is returned for unsupported widths, exponent
	// lengths, slots and operand lengths. The hardware state is undefined
	// afterwards.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTimeout is returned by a strict session when no completion was
	// observed before the deadline.
	ErrTimeout = errors.New("timed out waiting for completion")
	// ErrHardwareProtocol is returned when the interrupt descriptor cannot
	// be read or re-armed.
	ErrHardwareProtocol = errors.New("hardware protocol error")
	ErrClosed           = errors.New("session closed")
	ErrPoisoned         = errors.New("session poisoned by an earlier timeout")
	ErrNoModulus        = errors.New("no modulus installed")
)
