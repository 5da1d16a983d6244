// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// PubRel is an internal representation of the fields of the PUBREL MQTT
// packet, the second step of the QoS 2 exchange. Its fixed header carries
// the fixed flag nibble 0b0010.
type PubRel struct {
	FixedHeader
	Version byte
	ackBody
}

func (pkt *PubRel) String() string {
	return ackString(pkt.FixedHeader, &pkt.ackBody)
}

// Type returns the packet type.
func (pkt *PubRel) Type() byte {
	return PubRelType
}

// Encode serializes the packet to bytes.
func (pkt *PubRel) Encode() ([]byte, error) {
	body, err := pkt.encode(pkt.Version)
	if err != nil {
		return nil, err
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *PubRel) EncodedLen() int {
	n := pkt.encodedLen(pkt.Version)
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *PubRel) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *PubRel) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	return pkt.unpack(r, version)
}

// Details returns packet metadata for QoS handling.
func (pkt *PubRel) Details() Details {
	return Details{Type: PubRelType, ID: pkt.ID, QoS: QoSAtLeastOnce}
}

// Reset clears the packet for pool reuse.
func (pkt *PubRel) Reset() {
	*pkt = PubRel{FixedHeader: FixedHeader{PacketType: PubRelType}}
}
