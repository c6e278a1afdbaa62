// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build linux

package mmio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newAnonRegion(t *testing.T, size int) *mappedRegion {
	t.Helper()

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)
	r := &mappedRegion{mem: mem, fd: -1}
	t.Cleanup(func() {
		_ = r.Close()
	})
	return r
}

// pipeInterrupts reads completion counts from the read end of a pipe.
type pipeInterrupts struct {
	*uioInterrupts
	writer int
}

func newPipeInterrupts(t *testing.T) *pipeInterrupts {
	t.Helper()

	fds := make([]int, 2)
	require.NoError(t, unix.Pipe2(fds, unix.O_NONBLOCK|unix.O_CLOEXEC))
	p := &pipeInterrupts{
		uioInterrupts: &uioInterrupts{fd: fds[0], device: "pipe"},
		writer:        fds[1],
	}
	t.Cleanup(func() {
		_ = p.Close()
		p.closeWriter()
	})
	return p
}

func (p *pipeInterrupts) send(t *testing.T, b []byte) {
	t.Helper()

	n, err := unix.Write(p.writer, b)
	require.NoError(t, err)
	require.Len(t, b, n)
}

func (p *pipeInterrupts) sendCount(t *testing.T, count uint32) {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], count)
	p.send(t, buf[:])
}

func (p *pipeInterrupts) closeWriter() {
	if p.writer >= 0 {
		_ = unix.Close(p.writer)
		p.writer = -1
	}
}

func isClosed(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == unix.EBADF
}

func TestMappedRegionReadWrite(t *testing.T) {
	require := require.New(t)

	size := unix.Getpagesize()
	r := newAnonRegion(t, size)
	require.Equal(size, r.Size())

	r.Write32(0, 0x01234567)
	r.Write32(uint32(size-4), 0x89abcdef)
	require.Equal(uint32(0x01234567), r.Read32(0))
	require.Equal(uint32(0x89abcdef), r.Read32(uint32(size-4)))
	require.Equal(uint32(0x01234567), binary.NativeEndian.Uint32(r.mem[0:4]))
}

func TestMappedRegionOutOfRange(t *testing.T) {
	size := unix.Getpagesize()
	tests := []struct {
		name   string
		offset uint32
	}{
		{
			name:   "unaligned",
			offset: 2,
		},
		{
			name:   "last partial word",
			offset: uint32(size - 2),
		},
		{
			name:   "past the end",
			offset: uint32(size),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			r := newAnonRegion(t, size)
			require.Panics(func() {
				r.Read32(test.offset)
			})
			require.Panics(func() {
				r.Write32(test.offset, 1)
			})
		})
	}
}

func TestMappedRegionCloseOwnsDescriptor(t *testing.T) {
	require := require.New(t)

	fds := make([]int, 2)
	require.NoError(unix.Pipe2(fds, unix.O_CLOEXEC))
	defer unix.Close(fds[1])

	size := unix.Getpagesize()
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(err)
	r := &mappedRegion{mem: mem, fd: fds[0]}

	require.NoError(r.Close())
	require.True(isClosed(fds[0]))
	require.Zero(r.Size())
	require.ErrorIs(r.Close(), unix.EBADF)
}

func TestMappedRegionCloseWithoutDescriptor(t *testing.T) {
	require := require.New(t)

	r := newAnonRegion(t, unix.Getpagesize())
	require.NoError(r.Close())
	require.ErrorIs(r.Close(), unix.EBADF)
}

func TestCountReadsDescriptor(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)

	count, err := irq.Count(0)
	require.NoError(err)
	require.Zero(count)

	irq.sendCount(t, 7)
	count, err = irq.Count(0)
	require.NoError(err)
	require.Equal(uint32(7), count)

	// nothing new keeps the last count
	count, err = irq.Count(0)
	require.NoError(err)
	require.Equal(uint32(7), count)

	irq.sendCount(t, 9)
	count, err = irq.Count(time.Second)
	require.NoError(err)
	require.Equal(uint32(9), count)
}

func TestCountWaitIsBounded(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)
	irq.sendCount(t, 3)
	_, err := irq.Count(0)
	require.NoError(err)

	start := time.Now()
	count, err := irq.Count(20 * time.Millisecond)
	require.NoError(err)
	require.Equal(uint32(3), count)
	require.GreaterOrEqual(time.Since(start), 15*time.Millisecond)
	require.Less(time.Since(start), 5*time.Second)
}

func TestCountShortRead(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)
	irq.sendCount(t, 4)
	_, err := irq.Count(0)
	require.NoError(err)

	irq.send(t, []byte{1, 2})
	count, err := irq.Count(0)
	require.ErrorContains(err, "short read")
	require.Equal(uint32(4), count)
}

func TestCountHangup(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)
	irq.closeWriter()

	for range 3 {
		count, err := irq.Count(0)
		require.ErrorIs(err, ErrHangup)
		require.Zero(count)
	}
}

func TestCountHangupAfterPendingCount(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)
	irq.sendCount(t, 5)
	irq.closeWriter()

	// a count already queued is still delivered
	count, err := irq.Count(0)
	require.NoError(err)
	require.Equal(uint32(5), count)

	count, err = irq.Count(0)
	require.ErrorIs(err, ErrHangup)
	require.Equal(uint32(5), count)
}

func TestArmWritesOne(t *testing.T) {
	require := require.New(t)

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(err)
	defer unix.Close(fds[1])

	irq := &uioInterrupts{fd: fds[0], device: "socket"}
	defer irq.Close()

	require.NoError(irq.Arm())

	var buf [4]byte
	n, err := unix.Read(fds[1], buf[:])
	require.NoError(err)
	require.Equal(len(buf), n)
	require.Equal(uint32(1), binary.NativeEndian.Uint32(buf[:]))
}

func TestArmError(t *testing.T) {
	irq := newPipeInterrupts(t)

	// the read end of a pipe can't be written to
	require.ErrorIs(t, irq.Arm(), unix.EBADF)
}

func TestInterruptsClose(t *testing.T) {
	require := require.New(t)

	irq := newPipeInterrupts(t)
	fd := irq.fd

	require.NoError(irq.Close())
	require.True(isClosed(fd))

	require.ErrorIs(irq.Close(), unix.EBADF)
	_, err := irq.Count(0)
	require.ErrorIs(err, unix.EBADF)
	require.ErrorIs(irq.Arm(), unix.EBADF)
}

func newDeviceFile(t *testing.T, size int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mem")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestMapData(t *testing.T) {
	require := require.New(t)

	size := unix.Getpagesize()
	path := newDeviceFile(t, 2*size)

	r, err := NewPlatform(path).MapData(int64(size), size)
	require.NoError(err)
	require.Equal(size, r.Size())

	r.Write32(8, 0xdeadbeef)
	require.Equal(uint32(0xdeadbeef), r.Read32(8))
	require.NoError(r.Close())
	require.ErrorIs(r.Close(), unix.EBADF)

	b, err := os.ReadFile(path)
	require.NoError(err)
	require.Equal(uint32(0xdeadbeef), binary.NativeEndian.Uint32(b[size+8:]))
}

func TestMapDataMissingDevice(t *testing.T) {
	_, err := NewPlatform(filepath.Join(t.TempDir(), "missing")).MapData(0, unix.Getpagesize())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenInterruptsMissingDevice(t *testing.T) {
	_, err := NewPlatform("").OpenInterrupts(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapControl(t *testing.T) {
	require := require.New(t)

	size := unix.Getpagesize()
	path := newDeviceFile(t, size)
	platform := NewPlatform("")

	irq, err := platform.OpenInterrupts(path)
	require.NoError(err)

	control, err := platform.MapControl(irq, size)
	require.NoError(err)
	control.Write32(0, 0x00c00000)
	require.Equal(uint32(0x00c00000), control.Read32(0))

	// the control window does not own the interrupt descriptor
	require.NoError(control.Close())
	require.NoError(irq.Close())
}

func TestMapControlNeedsUIODescriptor(t *testing.T) {
	_, err := NewPlatform("").MapControl(nil, unix.Getpagesize())
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestMapControlClosedDescriptor(t *testing.T) {
	require := require.New(t)

	platform := NewPlatform("")
	irq, err := platform.OpenInterrupts(newDeviceFile(t, unix.Getpagesize()))
	require.NoError(err)
	require.NoError(irq.Close())

	_, err = platform.MapControl(irq, unix.Getpagesize())
	require.ErrorIs(err, unix.EBADF)
}
