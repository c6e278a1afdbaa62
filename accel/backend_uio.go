// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build linux

package accel

import (
	"github.com/luxfi/mme/driver"
	"github.com/luxfi/mme/mmio"
)

func init() {
	Register(BackendUIO, 100, func(config driver.Config) (mmio.Platform, error) {
		return mmio.NewPlatform(config.MemDevice), nil
	})
}
