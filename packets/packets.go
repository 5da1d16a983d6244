// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

// Package packets implements encoding and decoding for every MQTT control
// packet across protocol revisions 3.1, 3.1.1 and 5.0. A single struct per
// packet type carries the fields of all three revisions; the version passed
// to decode (or stored on the packet for encode) selects which fields are
// read and written.
package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Protocol version constants. The value is the protocol level byte carried
// in the CONNECT variable header.
const (
	V31  byte = 0x03 // MQTT 3.1, protocol name "MQIsdp"
	V311 byte = 0x04 // MQTT 3.1.1, protocol name "MQTT"
	V5   byte = 0x05 // MQTT 5.0, protocol name "MQTT"
)

// Packet type constants.
const (
	ConnectType = iota + 1 // 0 value is forbidden
	ConnAckType
	PublishType
	PubAckType
	PubRecType
	PubRelType
	PubCompType
	SubscribeType
	SubAckType
	UnsubscribeType
	UnsubAckType
	PingReqType
	PingRespType
	DisconnectType
	AuthType // MQTT 5.0 only
)

// QoS levels.
const (
	QoSAtMostOnce  byte = 0
	QoSAtLeastOnce byte = 1
	QoSExactlyOnce byte = 2
)

// PacketNames maps packet type constants to string names.
var PacketNames = map[byte]string{
	ConnectType:     "CONNECT",
	ConnAckType:     "CONNACK",
	PublishType:     "PUBLISH",
	PubAckType:      "PUBACK",
	PubRecType:      "PUBREC",
	PubRelType:      "PUBREL",
	PubCompType:     "PUBCOMP",
	SubscribeType:   "SUBSCRIBE",
	SubAckType:      "SUBACK",
	UnsubscribeType: "UNSUBSCRIBE",
	UnsubAckType:    "UNSUBACK",
	PingReqType:     "PINGREQ",
	PingRespType:    "PINGRESP",
	DisconnectType:  "DISCONNECT",
	AuthType:        "AUTH",
}

// ControlPacket is the interface for all MQTT control packets. One
// implementation per packet type covers every protocol revision; the
// Version field on each struct selects the wire form on encode.
type ControlPacket interface {
	// Encode serializes the whole packet, fixed header included. It
	// fails with ErrEncode if the packet violates a protocol invariant
	// (for example a v5-only field under a v3 version).
	Encode() ([]byte, error)

	// EncodedLen returns the exact length Encode would produce, without
	// encoding. The result is meaningful only for encodable packets.
	EncodedLen() int

	// Pack encodes the packet and writes it to the writer.
	Pack(w io.Writer) error

	// Unpack deserializes the packet body from a reader bounded by the
	// Remaining Length. The version selects revision-specific fields;
	// CONNECT detects the version from the body and, unless VersionAuto is
	// passed, fails with ErrInvalidProtocolLevel when the two differ.
	Unpack(r *codec.Reader, version byte) error

	// Type returns the packet type constant.
	Type() byte

	// String returns a human-readable representation.
	String() string
}

// Detailer is an optional interface for packets that provide QoS details.
type Detailer interface {
	Details() Details
}

// Details contains packet metadata useful for QoS handling.
type Details struct {
	Type byte
	ID   uint16
	QoS  byte
}

// Resetter is an optional interface for packets that support pooling.
type Resetter interface {
	Reset()
}

// NewControlPacket creates a new packet of the specified type for the
// given protocol version. Returns nil for unknown types.
func NewControlPacket(packetType, version byte) ControlPacket {
	cp, err := NewControlPacketWithHeader(FixedHeader{PacketType: packetType}, version)
	if err != nil {
		return nil
	}
	return cp
}

// NewControlPacketWithHeader creates a new packet with the given fixed header.
func NewControlPacketWithHeader(fh FixedHeader, version byte) (ControlPacket, error) {
	switch fh.PacketType {
	case ConnectType:
		return &Connect{FixedHeader: fh, Version: version}, nil
	case ConnAckType:
		return &ConnAck{FixedHeader: fh, Version: version}, nil
	case PublishType:
		return &Publish{FixedHeader: fh, Version: version}, nil
	case PubAckType:
		return &PubAck{FixedHeader: fh, Version: version}, nil
	case PubRecType:
		return &PubRec{FixedHeader: fh, Version: version}, nil
	case PubRelType:
		return &PubRel{FixedHeader: fh, Version: version}, nil
	case PubCompType:
		return &PubComp{FixedHeader: fh, Version: version}, nil
	case SubscribeType:
		return &Subscribe{FixedHeader: fh, Version: version}, nil
	case SubAckType:
		return &SubAck{FixedHeader: fh, Version: version}, nil
	case UnsubscribeType:
		return &Unsubscribe{FixedHeader: fh, Version: version}, nil
	case UnsubAckType:
		return &UnsubAck{FixedHeader: fh, Version: version}, nil
	case PingReqType:
		return &PingReq{FixedHeader: fh}, nil
	case PingRespType:
		return &PingResp{FixedHeader: fh}, nil
	case DisconnectType:
		return &Disconnect{FixedHeader: fh, Version: version}, nil
	case AuthType:
		return &Auth{FixedHeader: fh, Version: version}, nil
	}
	return nil, fmt.Errorf("%w: unsupported packet type 0x%x", ErrInvalidFixedHeader, fh.PacketType)
}
