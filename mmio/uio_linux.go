// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build linux

package mmio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	_ Platform   = (*devicePlatform)(nil)
	_ Region     = (*mappedRegion)(nil)
	_ Interrupts = (*uioInterrupts)(nil)
)

// NewPlatform returns the platform backed by [memDevice] for physical
// memory and UIO character devices for interrupts.
func NewPlatform(memDevice string) Platform {
	return &devicePlatform{memDevice: memDevice}
}

type devicePlatform struct {
	memDevice string
}

func (p *devicePlatform) MapData(base int64, size int) (Region, error) {
	fd, err := unix.Open(p.memDevice, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %w", p.memDevice, err)
	}
	mem, err := unix.Mmap(fd, base, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("couldn't map %s at 0x%x: %w", p.memDevice, base, err)
	}
	return &mappedRegion{mem: mem, fd: fd}, nil
}

func (*devicePlatform) OpenInterrupts(device string) (Interrupts, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %w", device, err)
	}
	return &uioInterrupts{fd: fd, device: device}, nil
}

func (*devicePlatform) MapControl(irq Interrupts, size int) (Region, error) {
	u, ok := irq.(*uioInterrupts)
	if !ok {
		return nil, fmt.Errorf("%w: control window needs a UIO descriptor, got %T", ErrUnsupported, irq)
	}
	u.lock.Lock()
	fd := u.fd
	u.lock.Unlock()
	if fd < 0 {
		return nil, fmt.Errorf("couldn't map %s: %w", u.device, unix.EBADF)
	}
	// map0 of a UIO device lives at offset 0.
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("couldn't map %s: %w", u.device, err)
	}
	return &mappedRegion{mem: mem, fd: -1}, nil
}

type mappedRegion struct {
	lock sync.Mutex
	mem  []byte
	// fd is closed together with the mapping when it is not negative.
	fd int
}

func (r *mappedRegion) word(offset uint32) *uint32 {
	if offset%4 != 0 || int(offset)+4 > len(r.mem) {
		panic(fmt.Sprintf("%v: 0x%x", ErrOutOfRange, offset))
	}
	return (*uint32)(unsafe.Pointer(&r.mem[offset]))
}

func (r *mappedRegion) Read32(offset uint32) uint32 {
	return atomic.LoadUint32(r.word(offset))
}

func (r *mappedRegion) Write32(offset uint32, value uint32) {
	atomic.StoreUint32(r.word(offset), value)
}

func (r *mappedRegion) Size() int {
	return len(r.mem)
}

func (r *mappedRegion) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.mem == nil {
		return unix.EBADF
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	if r.fd >= 0 {
		err = errors.Join(err, unix.Close(r.fd))
		r.fd = -1
	}
	return err
}

type uioInterrupts struct {
	lock   sync.Mutex
	fd     int
	device string
	last   uint32
}

func (u *uioInterrupts) Count(wait time.Duration) (uint32, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.fd < 0 {
		return 0, unix.EBADF
	}

	timeout := 0
	if wait > 0 {
		timeout = int((wait + time.Millisecond - 1) / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(u.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeout)
	switch {
	case errors.Is(err, unix.EINTR):
		return u.last, nil
	case err != nil:
		return u.last, fmt.Errorf("couldn't poll %s: %w", u.device, err)
	case n == 0:
		return u.last, nil
	case fds[0].Revents&unix.POLLIN == 0:
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return u.last, fmt.Errorf("%w: %s reported events 0x%x", ErrHangup, u.device, fds[0].Revents)
		}
		return u.last, nil
	}

	var buf [4]byte
	read, err := unix.Read(u.fd, buf[:])
	switch {
	case errors.Is(err, unix.EAGAIN):
		return u.last, nil
	case err != nil:
		return u.last, fmt.Errorf("couldn't read %s: %w", u.device, err)
	case read != len(buf):
		return u.last, fmt.Errorf("short read of %d bytes from %s", read, u.device)
	}
	u.last = binary.NativeEndian.Uint32(buf[:])
	return u.last, nil
}

func (u *uioInterrupts) Arm() error {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.fd < 0 {
		return unix.EBADF
	}
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 1)
	written, err := unix.Write(u.fd, buf[:])
	switch {
	case errors.Is(err, unix.ENOSYS):
		return fmt.Errorf("%w: %s", ErrNoInterrupts, u.device)
	case err != nil:
		return fmt.Errorf("couldn't arm %s: %w", u.device, err)
	case written != len(buf):
		return fmt.Errorf("short write of %d bytes to %s", written, u.device)
	}
	return nil
}

func (u *uioInterrupts) Close() error {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.fd < 0 {
		return unix.EBADF
	}
	err := unix.Close(u.fd)
	u.fd = -1
	return err
}
