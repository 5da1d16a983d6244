// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// PubRec is an internal representation of the fields of the PUBREC MQTT
// packet, the first response to a QoS 2 publish.
type PubRec struct {
	FixedHeader
	Version byte
	ackBody
}

func (pkt *PubRec) String() string {
	return ackString(pkt.FixedHeader, &pkt.ackBody)
}

// Type returns the packet type.
func (pkt *PubRec) Type() byte {
	return PubRecType
}

// Encode serializes the packet to bytes.
func (pkt *PubRec) Encode() ([]byte, error) {
	body, err := pkt.encode(pkt.Version)
	if err != nil {
		return nil, err
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *PubRec) EncodedLen() int {
	n := pkt.encodedLen(pkt.Version)
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *PubRec) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *PubRec) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	return pkt.unpack(r, version)
}

// Details returns packet metadata for QoS handling.
func (pkt *PubRec) Details() Details {
	return Details{Type: PubRecType, ID: pkt.ID, QoS: QoSExactlyOnce}
}

// Reset clears the packet for pool reuse.
func (pkt *PubRec) Reset() {
	*pkt = PubRec{FixedHeader: FixedHeader{PacketType: PubRecType}}
}
