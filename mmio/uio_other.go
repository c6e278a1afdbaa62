// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build !linux

package mmio

import "fmt"

var _ Platform = unsupportedPlatform{}

// NewPlatform returns a platform whose every acquisition fails with
// [ErrUnsupported].
func NewPlatform(memDevice string) Platform {
	return unsupportedPlatform{memDevice: memDevice}
}

type unsupportedPlatform struct {
	memDevice string
}

func (p unsupportedPlatform) MapData(int64, int) (Region, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.memDevice)
}

func (unsupportedPlatform) OpenInterrupts(device string) (Interrupts, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, device)
}

func (unsupportedPlatform) MapControl(Interrupts, int) (Region, error) {
	return nil, ErrUnsupported
}
