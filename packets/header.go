// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// FixedHeader represents the MQTT fixed header present in all packets.
// Dup, QoS and Retain are meaningful for PUBLISH only; every other type
// carries a fixed flag nibble that is validated on decode.
type FixedHeader struct {
	PacketType      byte
	Dup             bool
	QoS             byte
	Retain          bool
	RemainingLength int
}

const headerFormat = "type: %s dup: %t qos: %d retain: %t remaining_length: %d"

func (fh FixedHeader) String() string {
	return fmt.Sprintf(headerFormat, PacketNames[fh.PacketType], fh.Dup, fh.QoS, fh.Retain, fh.RemainingLength)
}

// flags returns the flag nibble for the header's packet type. PUBLISH
// derives it from Dup/QoS/Retain; PUBREL, SUBSCRIBE and UNSUBSCRIBE carry
// the fixed value 0b0010, everything else 0b0000.
func (fh FixedHeader) flags() byte {
	switch fh.PacketType {
	case PublishType:
		return codec.EncodeBool(fh.Dup)<<3 | fh.QoS<<1 | codec.EncodeBool(fh.Retain)
	case PubRelType, SubscribeType, UnsubscribeType:
		return 0x02
	default:
		return 0x00
	}
}

// Encode serializes the fixed header: control byte plus Remaining Length.
func (fh FixedHeader) Encode() []byte {
	ret := []byte{fh.PacketType<<4 | fh.flags()}
	return append(ret, codec.EncodeVBI(fh.RemainingLength)...)
}

// EncodedLen returns the serialized size of the fixed header.
func (fh FixedHeader) EncodedLen() int {
	return 1 + codec.VBILen(fh.RemainingLength)
}

// decodeFixedHeader parses a fixed header from the front of data and
// returns the number of bytes consumed. A short input yields an
// IncompleteError, but only after the available prefix has been checked:
// a forbidden type or flag nibble is reported even from a single byte.
func decodeFixedHeader(data []byte) (FixedHeader, int, error) {
	var fh FixedHeader
	if len(data) == 0 {
		return fh, 0, &IncompleteError{Need: 2}
	}

	b0 := data[0]
	fh.PacketType = b0 >> 4
	flags := b0 & 0x0F

	switch fh.PacketType {
	case 0:
		return fh, 0, fmt.Errorf("%w: packet type 0", ErrInvalidFixedHeader)
	case PublishType:
		fh.Dup = flags&0x08 > 0
		fh.QoS = (flags >> 1) & 0x03
		fh.Retain = flags&0x01 > 0
		if fh.QoS == 3 {
			return fh, 0, fmt.Errorf("%w: publish QoS 3", ErrMalformedPacket)
		}
		if fh.QoS == 0 && fh.Dup {
			return fh, 0, fmt.Errorf("%w: DUP set on QoS 0 publish", ErrMalformedPacket)
		}
	case PubRelType, SubscribeType, UnsubscribeType:
		if flags != 0x02 {
			return fh, 0, fmt.Errorf("%w: flags 0x%x for %s", ErrInvalidFixedHeader, flags, PacketNames[fh.PacketType])
		}
	default:
		if flags != 0x00 {
			return fh, 0, fmt.Errorf("%w: flags 0x%x for %s", ErrInvalidFixedHeader, flags, PacketNames[fh.PacketType])
		}
	}

	// Remaining Length (VBI), at most 4 bytes.
	var vbi uint32
	var shift uint
	offset := 1
	for i := 0; i < 4; i++ {
		if offset >= len(data) {
			return fh, 0, &IncompleteError{Need: 1}
		}
		b := data[offset]
		offset++
		vbi |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			fh.RemainingLength = int(vbi)
			return fh, offset, nil
		}
		shift += 7
	}
	return fh, 0, ErrMalformedVarInt
}

// TotalLength returns the full on-wire size of the packet starting at
// data (fixed header included) once enough bytes are present to know it.
// A short input yields an IncompleteError; a corrupt prefix yields the
// decode error the full decode would produce.
func TotalLength(data []byte) (int, error) {
	fh, n, err := decodeFixedHeader(data)
	if err != nil {
		return 0, err
	}
	return n + fh.RemainingLength, nil
}
