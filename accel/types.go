// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accel

// BackendUIO is the hardware core behind /dev/mem and a UIO device. It is
// only registered on Linux.
const BackendUIO = "uio"
