// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// PingReq is an internal representation of the fields of the PINGREQ
// MQTT packet. The body is empty in every revision.
type PingReq struct {
	FixedHeader
}

func (pkt *PingReq) String() string {
	return pkt.FixedHeader.String()
}

// Type returns the packet type.
func (pkt *PingReq) Type() byte {
	return PingReqType
}

// Encode serializes the packet to bytes.
func (pkt *PingReq) Encode() ([]byte, error) {
	pkt.RemainingLength = 0
	return pkt.FixedHeader.Encode(), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *PingReq) EncodedLen() int {
	return 2
}

// Pack writes the encoded packet to the writer.
func (pkt *PingReq) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *PingReq) Unpack(r *codec.Reader, _ byte) error {
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: pingreq body must be empty", ErrMalformedPacket)
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *PingReq) Details() Details {
	return Details{Type: PingReqType}
}

// Reset clears the packet for pool reuse.
func (pkt *PingReq) Reset() {
	*pkt = PingReq{FixedHeader: FixedHeader{PacketType: PingReqType}}
}
