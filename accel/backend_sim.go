// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accel

import (
	"github.com/luxfi/mme/driver"
	"github.com/luxfi/mme/mmio"
	"github.com/luxfi/mme/sim"
)

// BackendSim is the simulated core.
const BackendSim = "sim"

func init() {
	Register(BackendSim, 0, func(config driver.Config) (mmio.Platform, error) {
		core := sim.New()
		core.FIFODepth = config.ExponentFIFODepth
		return core, nil
	})
}
