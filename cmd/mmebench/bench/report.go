// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/renameio/v2"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"gonum.org/v1/gonum/stat"

	"github.com/luxfi/mme/driver"

	utiljson "github.com/luxfi/mme/utils/json"
)

const maxReportedMismatches = 8

// Host describes the machine the benchmark ran on.
type Host struct {
	OS       string          `json:"os"`
	Arch     string          `json:"arch"`
	CPUModel string          `json:"cpuModel,omitempty"`
	Cores    int             `json:"cores,omitempty"`
	MemTotal utiljson.Uint64 `json:"memTotal,omitempty"`
}

// Mismatch is a vector whose hardware result differs from the reference.
type Mismatch struct {
	Round    int            `json:"round"`
	M        utiljson.Words `json:"m"`
	G0       utiljson.Words `json:"g0"`
	G1       utiljson.Words `json:"g1"`
	E0       utiljson.Words `json:"e0"`
	E1       utiljson.Words `json:"e1"`
	Expected utiljson.Words `json:"expected"`
	Got      utiljson.Words `json:"got"`
}

// Report summarizes one benchmark run.
type Report struct {
	Host       Host             `json:"host"`
	Backend    string           `json:"backend"`
	Operation  string           `json:"operation"`
	Bits       int              `json:"bits"`
	ExpBits    int              `json:"expBits"`
	Rounds     int              `json:"rounds"`
	Mismatches int              `json:"mismatches"`
	MeanMicros utiljson.Float64 `json:"meanMicros"`
	StdMicros  utiljson.Float64 `json:"stdMicros"`
	Info       driver.Info      `json:"info"`
	Failures   []Mismatch       `json:"failures,omitempty"`
}

// describeHost collects what gopsutil can tell about the machine. Missing
// values are left empty.
func describeHost() Host {
	h := Host{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.CPUModel = infos[0].ModelName
	}
	if cores, err := cpu.Counts(true); err == nil {
		h.Cores = cores
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemTotal = utiljson.Uint64(vm.Total)
	}
	return h
}

// summarize sets the latency statistics of r.
func (r *Report) summarize(latencies []time.Duration) {
	micros := make([]float64, len(latencies))
	for i, l := range latencies {
		micros[i] = float64(l) / float64(time.Microsecond)
	}
	mean, std := stat.MeanStdDev(micros, nil)
	if len(micros) < 2 {
		std = 0
	}
	r.MeanMicros = utiljson.Float64(mean)
	r.StdMicros = utiljson.Float64(std)
}

func (r *Report) addMismatch(round int, v Vector, got []uint32) {
	r.Mismatches++
	if len(r.Failures) >= maxReportedMismatches {
		return
	}
	r.Failures = append(r.Failures, Mismatch{
		Round:    round,
		M:        v.M,
		G0:       v.G0,
		G1:       v.G1,
		E0:       v.E0,
		E1:       v.E1,
		Expected: v.Expected,
		Got:      got,
	})
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "backend %s, %s, %d bit modulus, %d bit exponents\n", r.Backend, r.Operation, r.Bits, r.ExpBits)
	fmt.Fprintf(w, "host %s/%s %s (%d cores)\n", r.Host.OS, r.Host.Arch, r.Host.CPUModel, r.Host.Cores)
	fmt.Fprintf(w, "%d rounds, %d mismatches\n", r.Rounds, r.Mismatches)
	fmt.Fprintf(w, "latency %.1f us (std %.1f us)\n", float64(r.MeanMicros), float64(r.StdMicros))
	for _, m := range r.Failures {
		fmt.Fprintf(w, "round %d: mismatch\n", m.Round)
	}
}

// Write stores the report as JSON. The file is replaced atomically.
func (r *Report) Write(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, b, 0o644)
}
