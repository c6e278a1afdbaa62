// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/mme/utils/wrappers"

	utilmetric "github.com/luxfi/mme/utils/metric"
)

const (
	opLabel   = "op"
	namespace = "mme"
)

type metrics struct {
	operations      metric.CounterVec
	operationErrors metric.CounterVec
	waits           metric.Counter
	timeouts        metric.Counter
	waitDuration    utilmetric.DurationAverager
	exponentFed     metric.Counter
}

func newMetrics(registry metric.Registry) (*metrics, error) {
	if registry == nil {
		registry = metric.NewRegistry()
	}
	metricsInstance := metric.NewWithRegistry(namespace, registry)

	errs := wrappers.Errs{}
	m := &metrics{
		operations: metricsInstance.NewCounterVec(
			"operations",
			"Number of orchestrated operations started",
			[]string{opLabel},
		),
		operationErrors: metricsInstance.NewCounterVec(
			"operation_errors",
			"Number of orchestrated operations that failed",
			[]string{opLabel},
		),
		waits: metricsInstance.NewCounter(
			"interrupt_waits",
			"Number of completion waits",
		),
		timeouts: metricsInstance.NewCounter(
			"interrupt_timeouts",
			"Number of completion waits that reached their deadline",
		),
		waitDuration: utilmetric.NewDurationAveragerWithErrs(
			utilmetric.AppendNamespace(namespace, "interrupt_wait"),
			"completion waits",
			registry,
			&errs,
		),
		exponentFed: metricsInstance.NewCounter(
			"exponent_words_fed",
			"Number of 32-bit entries pushed to the exponent fifo",
		),
	}
	return m, errs.Err
}

func (m *metrics) started(op string) {
	m.operations.With(metric.Labels{opLabel: op}).Inc()
}

func (m *metrics) failed(op string) {
	m.operationErrors.With(metric.Labels{opLabel: op}).Inc()
}
