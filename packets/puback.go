// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// PubAck is an internal representation of the fields of the PUBACK MQTT
// packet, the response to a QoS 1 publish.
type PubAck struct {
	FixedHeader
	Version byte
	ackBody
}

func (pkt *PubAck) String() string {
	return ackString(pkt.FixedHeader, &pkt.ackBody)
}

// Type returns the packet type.
func (pkt *PubAck) Type() byte {
	return PubAckType
}

// Encode serializes the packet to bytes.
func (pkt *PubAck) Encode() ([]byte, error) {
	body, err := pkt.encode(pkt.Version)
	if err != nil {
		return nil, err
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *PubAck) EncodedLen() int {
	n := pkt.encodedLen(pkt.Version)
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *PubAck) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *PubAck) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	return pkt.unpack(r, version)
}

// Details returns packet metadata for QoS handling.
func (pkt *PubAck) Details() Details {
	return Details{Type: PubAckType, ID: pkt.ID, QoS: QoSAtLeastOnce}
}

// Reset clears the packet for pool reuse.
func (pkt *PubAck) Reset() {
	*pkt = PubAck{FixedHeader: FixedHeader{PacketType: PubAckType}}
}
