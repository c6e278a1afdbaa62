// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/mme/regmap"
)

const (
	DefaultUIODevice       = "/dev/uio6"
	DefaultMemDevice       = "/dev/mem"
	DefaultTimeout         = 140 * time.Millisecond
	DefaultStartPulseDelay = time.Microsecond
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultR2CacheSize     = 16
)

var (
	ErrInvalidTimeout      = errors.New("invalid timeout configuration")
	ErrInvalidPulseDelay   = errors.New("invalid start pulse delay configuration")
	ErrInvalidPollInterval = errors.New("invalid poll interval configuration")
	ErrInvalidFIFODepth    = errors.New("invalid exponent fifo depth configuration")
	ErrInvalidCacheSize    = errors.New("invalid R2 cache size configuration")
	ErrInvalidBaseAddr     = errors.New("invalid data window base address")
)

// Config holds the session configuration.
type Config struct {
	// Devices
	UIODevice    string `json:"uioDevice"`    // Default: /dev/uio6
	MemDevice    string `json:"memDevice"`    // Default: /dev/mem
	DataBaseAddr int64  `json:"dataBaseAddr"` // Default: 0xA0000000

	// Interrupt wait
	Timeout       time.Duration `json:"timeout"`       // Default: 140ms
	PollInterval  time.Duration `json:"pollInterval"`  // Longest single descriptor read
	StrictTimeout bool          `json:"strictTimeout"` // Timeout poisons the session

	// StartPulseDelay is the minimum time between a start write and the
	// following start-clear write. The core does not latch shorter pulses.
	StartPulseDelay time.Duration `json:"startPulseDelay"`

	// ExponentFIFODepth is the exponent FIFO capacity in entries. Zero
	// disables the capacity check.
	ExponentFIFODepth int `json:"exponentFifoDepth"`

	// R2CacheSize bounds the number of (modulus, width) pairs whose R2 is
	// kept for ModExp.
	R2CacheSize int `json:"r2CacheSize"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() Config {
	return Config{
		UIODevice:       DefaultUIODevice,
		MemDevice:       DefaultMemDevice,
		DataBaseAddr:    regmap.DefaultDataBase,
		Timeout:         DefaultTimeout,
		PollInterval:    DefaultPollInterval,
		StartPulseDelay: DefaultStartPulseDelay,
		R2CacheSize:     DefaultR2CacheSize,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: %s", ErrInvalidPollInterval, c.PollInterval)
	case c.StartPulseDelay < DefaultStartPulseDelay:
		return fmt.Errorf("%w: %s is below %s", ErrInvalidPulseDelay, c.StartPulseDelay, DefaultStartPulseDelay)
	case c.ExponentFIFODepth < 0:
		return fmt.Errorf("%w: %d", ErrInvalidFIFODepth, c.ExponentFIFODepth)
	case c.R2CacheSize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.R2CacheSize)
	case c.DataBaseAddr < 0 || c.DataBaseAddr%regmap.PageSize != 0:
		return fmt.Errorf("%w: 0x%x", ErrInvalidBaseAddr, c.DataBaseAddr)
	default:
		return nil
	}
}
