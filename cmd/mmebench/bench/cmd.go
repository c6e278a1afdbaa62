// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bench

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/luxfi/mme/accel"
	"github.com/luxfi/mme/driver"
	"github.com/luxfi/mme/utils/profiler"
)

var errMismatch = errors.New("hardware result differs from the reference")

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "mmebench",
		Short: "Checks the exponentiation core against a software reference",
		RunE:  benchFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func benchFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	logger := log.NewLogger("mmebench")
	s, err := accel.NewSession(config.Backend, config.Driver, logger, metric.NewRegistry())
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close session",
				log.Err(err),
			)
		}
	}()

	out := c.OutOrStdout()
	fmt.Fprintln(out, s.Info())

	ctx := c.Context()
	genStart := time.Now()
	vectors, err := NewVectors(ctx, config.Seed, config.Rounds, config.Bits, config.ExpBits)
	if err != nil {
		return err
	}
	logger.Info("generated test vectors",
		log.Int("rounds", config.Rounds),
		log.Duration("duration", time.Since(genStart)),
	)

	report, err := profiled(config.ProfileDir, func() (*Report, error) {
		return Run(ctx, s, config, vectors)
	})
	if err != nil {
		return err
	}
	report.Print(out)

	if config.ReportPath != "" {
		if err := report.Write(config.ReportPath); err != nil {
			return fmt.Errorf("couldn't write report %s: %w", config.ReportPath, err)
		}
	}
	if report.Mismatches > 0 {
		return fmt.Errorf("%w: %d of %d rounds", errMismatch, report.Mismatches, report.Rounds)
	}
	return nil
}

// profiled runs fn under the CPU profiler and takes a heap profile after it
// when dir is set.
func profiled(dir string, fn func() (*Report, error)) (*Report, error) {
	if dir == "" {
		return fn()
	}
	p := profiler.New(dir)
	if err := p.StartCPUProfiler(); err != nil {
		return nil, fmt.Errorf("couldn't start cpu profiler: %w", err)
	}
	report, err := fn()
	if stopErr := p.StopCPUProfiler(); err == nil && stopErr != nil {
		return nil, stopErr
	}
	if err != nil {
		return nil, err
	}
	return report, p.MemoryProfile()
}

// Run executes every vector on s and compares each result with its
// reference.
func Run(ctx context.Context, s *driver.Session, config *Config, vectors []Vector) (*Report, error) {
	report := &Report{
		Host:      describeHost(),
		Backend:   config.Backend,
		Operation: "ModExp",
		Bits:      config.Bits,
		ExpBits:   config.ExpBits,
		Rounds:    len(vectors),
		Info:      s.Info(),
	}
	if config.Installed {
		report.Operation = "SimultaneousExponentiate"
	}

	latencies := make([]time.Duration, 0, len(vectors))
	for i, v := range vectors {
		start := time.Now()
		var (
			got []uint32
			err error
		)
		if config.Installed {
			if err = s.UpdateModulus(ctx, v.M, config.Bits); err == nil {
				got, err = s.SimultaneousExponentiate(ctx, v.G0, v.G1, v.E0, v.E1, config.ExpBits)
			}
		} else {
			got, err = s.ModExp(ctx, v.G0, v.G1, v.M, v.E0, v.E1, config.Bits, config.ExpBits)
		}
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		latencies = append(latencies, time.Since(start))

		if !slices.Equal(got, v.Expected) {
			report.addMismatch(i, v, got)
		}
	}
	report.summarize(latencies)
	return report, nil
}
