// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

// Package stream adapts the packet codec to byte streams: a resumable
// decoder over an io.Reader, an encoder over an io.Writer and a reader
// adapter for MQTT-over-WebSocket connections. The decoder buffers input
// and re-runs the bounded sync decoder as bytes arrive, so a short or
// interrupted read never loses or duplicates stream bytes.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets"
	"github.com/akasamq/mqtt-proto/packets/codec"
	"github.com/akasamq/mqtt-proto/packets/pool"
)

// DefaultMaxPacketSize bounds accepted packets to the largest frame MQTT
// can express: a 5-byte fixed header plus the maximum Remaining Length.
const DefaultMaxPacketSize = 5 + codec.MaxVBI

// idleCapacity is the largest buffer the decoder keeps between packets.
const idleCapacity = pool.MediumBufferSize

// readChunk is the granularity of reads when the packet size is not yet
// known.
const readChunk = 512

// Decoder reads MQTT packets from an io.Reader. It is not safe for
// concurrent use. Partial packet state survives transient read errors,
// so a Next call after an error resumes exactly where the stream left
// off.
type Decoder struct {
	r       io.Reader
	version byte
	max     int
	buf     *[]byte
	start   int
	err     error
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxPacketSize caps the total packet size (fixed header included)
// the decoder accepts. Larger packets fail with ErrPacketTooLarge before
// their body is buffered.
func WithMaxPacketSize(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 && n <= DefaultMaxPacketSize {
			d.max = n
		}
	}
}

// NewDecoder creates a Decoder for the given protocol version. Use
// packets.VersionAuto when only the leading CONNECT is expected and the
// version is not yet known, then switch with SetVersion.
func NewDecoder(r io.Reader, version byte, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:       r,
		version: version,
		max:     DefaultMaxPacketSize,
		buf:     pool.AcquireBuffer(readChunk),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetVersion switches the body grammar for subsequent packets, typically
// after the CONNECT/CONNACK exchange settles the revision.
func (d *Decoder) SetVersion(version byte) {
	d.version = version
}

// Version returns the protocol version packets are decoded under.
func (d *Decoder) Version() byte {
	return d.version
}

// Buffered returns the number of stream bytes held for the next packet.
func (d *Decoder) Buffered() int {
	return len(*d.buf) - d.start
}

// Next returns the next packet from the stream. It blocks on the
// underlying reader. Errors from the reader are returned as-is and leave
// the decoder resumable, with two exceptions: a read that returns no bytes
// and no error yields io.ErrNoProgress, and end of stream inside a
// buffered packet yields io.ErrUnexpectedEOF, which is terminal. Decode
// errors are terminal for the stream since the frame boundary is lost.
func (d *Decoder) Next() (packets.ControlPacket, error) {
	if d.err != nil {
		return nil, d.err
	}
	for {
		pending := (*d.buf)[d.start:]
		if len(pending) > 0 {
			pkt, n, err := packets.Decode(d.version, pending)
			if err == nil {
				d.start += n
				d.release()
				return pkt, nil
			}
			if _, incomplete := packets.NeedsMore(err); !incomplete {
				d.err = err
				return nil, err
			}
			if err := d.checkLimit(pending); err != nil {
				d.err = err
				return nil, err
			}
		}
		if err := d.fill(); err != nil {
			return nil, err
		}
	}
}

// checkLimit fails fast once the fixed header announces a packet larger
// than the configured maximum.
func (d *Decoder) checkLimit(pending []byte) error {
	total, err := packets.TotalLength(pending)
	if _, incomplete := packets.NeedsMore(err); incomplete {
		return nil // header not complete yet, nothing to judge
	}
	if err != nil {
		return err
	}
	if total > d.max {
		return fmt.Errorf("%w: %d bytes exceeds limit %d", packets.ErrPacketTooLarge, total, d.max)
	}
	return nil
}

// fill reads more bytes from the underlying reader into the buffer,
// compacting consumed prefix first.
func (d *Decoder) fill() error {
	buf := *d.buf
	if d.start > 0 {
		n := copy(buf, buf[d.start:])
		buf = buf[:n]
		d.start = 0
	}

	want := readChunk
	if total, err := packets.TotalLength(buf); err == nil && total > len(buf) {
		want = total - len(buf)
	}
	if len(buf)+want > d.max {
		want = d.max - len(buf)
		if want <= 0 {
			want = 1 // let the limit check produce the error
		}
	}

	if cap(buf)-len(buf) < want {
		grown := pool.AcquireBuffer(len(buf) + want)
		*grown = append(*grown, buf...)
		old := d.buf
		d.buf = grown
		pool.ReleaseBuffer(old)
		buf = *d.buf
	}

	n, err := d.r.Read(buf[len(buf) : len(buf)+want])
	*d.buf = buf[:len(buf)+n]
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	if errors.Is(err, io.EOF) && d.Buffered() > 0 {
		err = io.ErrUnexpectedEOF
		d.err = err
	}
	return err
}

// release shrinks the buffer back to idle capacity once no partial
// packet remains buffered.
func (d *Decoder) release() {
	if d.Buffered() > 0 || cap(*d.buf) <= idleCapacity {
		return
	}
	old := d.buf
	d.buf = pool.AcquireBuffer(readChunk)
	d.start = 0
	pool.ReleaseBuffer(old)
}

// Close releases the decoder's buffer. The decoder must not be used
// afterwards.
func (d *Decoder) Close() {
	if d.buf != nil {
		pool.ReleaseBuffer(d.buf)
		d.buf = nil
		d.err = errors.New("stream: decoder closed")
	}
}
