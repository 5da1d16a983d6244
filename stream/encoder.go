// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"io"

	"github.com/akasamq/mqtt-proto/packets"
)

// Encoder writes MQTT packets to an io.Writer. It is not safe for
// concurrent use.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes the packet and writes it out in a single Write call,
// so packets interleave correctly when the writer is shared through
// external locking.
func (e *Encoder) Encode(pkt packets.ControlPacket) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}
