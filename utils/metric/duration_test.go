// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"testing"
	"time"

	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
)

func TestAppendNamespace(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{
			parts:    []string{"mme", "interrupt_wait"},
			expected: "mme_interrupt_wait",
		},
		{
			parts:    []string{"", "interrupt_wait"},
			expected: "interrupt_wait",
		},
		{
			parts:    []string{"mme", ""},
			expected: "mme",
		},
		{
			parts:    nil,
			expected: "",
		},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require.Equal(t, test.expected, AppendNamespace(test.parts...))
		})
	}
}

func TestNewDurationAverager(t *testing.T) {
	require := require.New(t)

	a, err := NewDurationAverager("wait", "waits", metric.NewRegistry())
	require.NoError(err)
	a.Observe(time.Millisecond)
	a.Observe(time.Microsecond)

	d := a.(*durationAverager)
	require.Equal(time.Millisecond, d.longest)
}

func TestNewDurationAveragerNilRegistry(t *testing.T) {
	require := require.New(t)

	a, err := NewDurationAverager("wait", "waits", nil)
	require.ErrorIs(err, ErrFailedRegistering)
	require.IsType(NoDurationAverager{}, a)
	a.Observe(time.Second)
}
