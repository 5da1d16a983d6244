// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"sync"
)

// Buffer size classes for different packet sizes.
const (
	SmallBufferSize  = 256   // small packets (PINGREQ, PUBACK, ...)
	MediumBufferSize = 4096  // typical PUBLISH, SUBSCRIBE, CONNECT
	LargeBufferSize  = 65536 // bulk payloads
)

var (
	smallBufferPool = sync.Pool{
		New: func() any {
			b := make([]byte, 0, SmallBufferSize)
			return &b
		},
	}

	mediumBufferPool = sync.Pool{
		New: func() any {
			b := make([]byte, 0, MediumBufferSize)
			return &b
		},
	}

	largeBufferPool = sync.Pool{
		New: func() any {
			b := make([]byte, 0, LargeBufferSize)
			return &b
		},
	}
)

// AcquireBuffer gets a zero-length buffer whose capacity is at least the
// smallest size class covering sizeHint. Hints above LargeBufferSize get
// an exact-capacity buffer that will not return to a pool.
func AcquireBuffer(sizeHint int) *[]byte {
	switch {
	case sizeHint <= SmallBufferSize:
		return smallBufferPool.Get().(*[]byte)
	case sizeHint <= MediumBufferSize:
		return mediumBufferPool.Get().(*[]byte)
	case sizeHint <= LargeBufferSize:
		return largeBufferPool.Get().(*[]byte)
	default:
		b := make([]byte, 0, sizeHint)
		return &b
	}
}

// ReleaseBuffer returns a buffer to the pool matching its capacity.
// Buffers larger than the biggest size class are dropped for the GC.
func ReleaseBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	c := cap(*buf)
	*buf = (*buf)[:0]
	switch {
	case c < SmallBufferSize:
	case c < MediumBufferSize:
		smallBufferPool.Put(buf)
	case c < LargeBufferSize:
		mediumBufferPool.Put(buf)
	case c == LargeBufferSize:
		largeBufferPool.Put(buf)
	}
}
