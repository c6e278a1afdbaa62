// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"fmt"
	"time"

	"github.com/luxfi/log"
)

// WaitUntilReady blocks until the core reports a completion that was not
// observed before, or until the configured timeout elapses.
//
// A timeout is only logged unless the session is strict, in which case
// ErrTimeout is returned and the session is poisoned. Either way the
// interrupt is re-armed before returning.
func (s *Session) WaitUntilReady() error {
	if err := s.usable(); err != nil {
		return err
	}
	return s.waitUntilReady(s.config.Timeout)
}

func (s *Session) waitUntilReady(timeout time.Duration) error {
	var (
		start    = s.clock.Time()
		deadline = start.Add(timeout)
		last     = s.lastIRQ
		observed = last
		timedOut bool
		err      error
	)
	for {
		remaining := max(deadline.Sub(s.clock.Time()), 0)
		count, readErr := s.irq.Count(min(remaining, s.config.PollInterval))
		if readErr != nil {
			err = fmt.Errorf("%w: couldn't read interrupt count: %w", ErrHardwareProtocol, readErr)
			break
		}
		observed = count
		// the counter wraps, so compare the distance
		if int32(count-last) > 0 {
			break
		}
		if !s.clock.Time().Before(deadline) {
			timedOut = true
			break
		}
	}
	s.lastIRQ = observed

	if armErr := s.irq.Arm(); armErr != nil && err == nil {
		err = fmt.Errorf("%w: couldn't re-arm interrupts: %w", ErrHardwareProtocol, armErr)
	}

	elapsed := s.clock.Since(start)
	s.metrics.waits.Inc()
	s.metrics.waitDuration.Observe(elapsed)

	if err != nil {
		s.log.Error("interrupt wait failed",
			log.Err(err),
		)
		return err
	}
	if !timedOut {
		return nil
	}

	s.metrics.timeouts.Inc()
	s.log.Warn("timed out waiting for completion",
		log.Duration("timeout", timeout),
		log.Uint32("interrupts", observed),
		log.Bool("strict", s.config.StrictTimeout),
	)
	if s.config.StrictTimeout {
		s.poisoned = true
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return nil
}
