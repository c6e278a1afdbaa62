// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"errors"
	"strings"
	"sync"
	"time"

	metric "github.com/luxfi/metric"

	"github.com/luxfi/mme/utils/wrappers"
)

var ErrFailedRegistering = errors.New("failed registering metric")

// DurationAverager records how long something took. Exported series are
// <name>_count, <name>_sum and <name>_max, all in nanoseconds.
type DurationAverager interface {
	Observe(time.Duration)
}

type durationAverager struct {
	count metric.Counter
	sum   metric.Gauge
	max   metric.Gauge

	lock    sync.Mutex
	longest time.Duration
}

func NewDurationAverager(name, desc string, registry metric.Registry) (DurationAverager, error) {
	errs := wrappers.Errs{}
	a := NewDurationAveragerWithErrs(name, desc, registry, &errs)
	return a, errs.Err
}

func NewDurationAveragerWithErrs(name, desc string, registry metric.Registry, errs *wrappers.Errs) DurationAverager {
	if registry == nil {
		errs.Add(ErrFailedRegistering)
		return NoDurationAverager{}
	}
	metricsInstance := metric.NewWithRegistry("", registry)
	return &durationAverager{
		count: metricsInstance.NewCounter(
			AppendNamespace(name, "count"),
			"Total # of observations of "+desc,
		),
		sum: metricsInstance.NewGauge(
			AppendNamespace(name, "sum"),
			"Sum (in ns) of "+desc,
		),
		max: metricsInstance.NewGauge(
			AppendNamespace(name, "max"),
			"Longest (in ns) "+desc,
		),
	}
}

func (a *durationAverager) Observe(d time.Duration) {
	a.count.Inc()
	a.sum.Add(float64(d))

	a.lock.Lock()
	defer a.lock.Unlock()
	if d > a.longest {
		a.longest = d
		a.max.Set(float64(d))
	}
}

// NoDurationAverager drops every observation.
type NoDurationAverager struct{}

func (NoDurationAverager) Observe(time.Duration) {}

// AppendNamespace joins non-empty name parts with an underscore.
func AppendNamespace(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "_")
}
