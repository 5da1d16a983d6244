// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// PingResp is an internal representation of the fields of the PINGRESP
// MQTT packet. The body is empty in every revision.
type PingResp struct {
	FixedHeader
}

func (pkt *PingResp) String() string {
	return pkt.FixedHeader.String()
}

// Type returns the packet type.
func (pkt *PingResp) Type() byte {
	return PingRespType
}

// Encode serializes the packet to bytes.
func (pkt *PingResp) Encode() ([]byte, error) {
	pkt.RemainingLength = 0
	return pkt.FixedHeader.Encode(), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *PingResp) EncodedLen() int {
	return 2
}

// Pack writes the encoded packet to the writer.
func (pkt *PingResp) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *PingResp) Unpack(r *codec.Reader, _ byte) error {
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: pingresp body must be empty", ErrMalformedPacket)
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *PingResp) Details() Details {
	return Details{Type: PingRespType}
}

// Reset clears the packet for pool reuse.
func (pkt *PingResp) Reset() {
	*pkt = PingResp{FixedHeader: FixedHeader{PacketType: PingRespType}}
}
