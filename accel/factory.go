// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package accel selects the platform a driver session runs on.
//
// Backend selection uses a priority-based registry:
//   - Simulator (priority 0): Always available, no hardware required
//   - UIO (priority 100): Linux only, /dev/mem plus a UIO device
//
// LUX_MME_BACKEND forces a backend by name.
package accel

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/mme/driver"
	"github.com/luxfi/mme/mmio"
)

// EnvBackend names the environment variable that forces a backend.
const EnvBackend = "LUX_MME_BACKEND"

var (
	ErrNoBackend      = errors.New("no platform backend registered")
	ErrUnknownBackend = errors.New("backend not available")
)

// backendCtor holds a platform constructor with its priority
type backendCtor struct {
	name     string
	priority int
	new      func(driver.Config) (mmio.Platform, error)
}

var (
	ctors   []backendCtor
	ctorsMu sync.RWMutex
)

// Register adds a backend constructor with the given priority.
// Higher priority backends are preferred. Called from init() in backend files.
func Register(name string, priority int, ctor func(driver.Config) (mmio.Platform, error)) {
	ctorsMu.Lock()
	defer ctorsMu.Unlock()
	ctors = append(ctors, backendCtor{name: name, priority: priority, new: ctor})
}

func sorted() []backendCtor {
	s := make([]backendCtor, len(ctors))
	copy(s, ctors)
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].priority > s[j].priority
	})
	return s
}

// NewPlatform creates a platform from the named backend. An empty name
// takes LUX_MME_BACKEND, or else the highest priority backend.
func NewPlatform(name string, config driver.Config) (string, mmio.Platform, error) {
	ctorsMu.RLock()
	defer ctorsMu.RUnlock()

	if len(ctors) == 0 {
		return "", nil, ErrNoBackend
	}

	if name == "" {
		name = os.Getenv(EnvBackend)
	}
	backends := sorted()
	if name == "" {
		b := backends[0]
		p, err := b.new(config)
		return b.name, p, err
	}

	name = strings.ToLower(name)
	for _, b := range backends {
		if strings.ToLower(b.name) == name {
			p, err := b.new(config)
			return b.name, p, err
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// NewSession opens a driver session on the selected backend.
func NewSession(
	name string,
	config driver.Config,
	logger log.Logger,
	registry metric.Registry,
) (*driver.Session, error) {
	backend, platform, err := NewPlatform(name, config)
	if err != nil {
		return nil, err
	}
	logger.Info("selected platform backend",
		log.String("backend", backend),
	)
	return driver.Open(platform, config, logger, registry)
}

// GetAvailableBackends returns names of all registered backends, sorted by priority
func GetAvailableBackends() []string {
	ctorsMu.RLock()
	defer ctorsMu.RUnlock()

	backends := sorted()
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.name
	}
	return names
}

// BackendInfo returns description of a backend
func BackendInfo(name string) string {
	switch strings.ToLower(name) {
	case BackendSim:
		return "Simulator - behavioural model of the core, no hardware required"
	case BackendUIO:
		return "UIO - core mapped through /dev/mem with a UIO interrupt device"
	default:
		return "Unknown backend"
	}
}
