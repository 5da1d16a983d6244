// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"errors"
	"fmt"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Decode and encode failures form a closed taxonomy. Apart from the
// *IncompleteError of a short input and the reader errors that ReadPacket
// passes through, every error returned by this package wraps exactly one
// of the sentinels below, so callers can select a DISCONNECT reason code
// with ReasonCode without string matching.
var (
	// ErrMalformedVarInt indicates a Variable Byte Integer whose fourth
	// byte still has the continuation bit set.
	ErrMalformedVarInt = codec.ErrMalformedVBI

	// ErrInvalidProtocolName indicates a CONNECT protocol name other than
	// "MQTT" or "MQIsdp".
	ErrInvalidProtocolName = errors.New("invalid protocol name")

	// ErrInvalidProtocolLevel indicates a protocol level that does not
	// match the protocol name (or is unknown entirely).
	ErrInvalidProtocolLevel = errors.New("invalid protocol level")

	// ErrInvalidFixedHeader indicates packet type 0 or a reserved flag
	// nibble that does not match the fixed value for the packet type.
	ErrInvalidFixedHeader = errors.New("invalid fixed header")

	// ErrMalformedPacket indicates a structural violation inside the
	// packet body: QoS 3, reserved bits set, trailing bytes, a wildcard
	// in a topic name and similar.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrProtocolError indicates a violation that is structurally
	// representable but forbidden by MQTT: a duplicate non-repeatable
	// property, a zero packet identifier, an empty SUBSCRIBE filter list.
	ErrProtocolError = errors.New("protocol error")

	// ErrInvalidUTF8 indicates a string field that is not well-formed
	// UTF-8 (including over-long encodings and surrogates).
	ErrInvalidUTF8 = codec.ErrInvalidUTF8

	// ErrMalformedUTF8 indicates a well-formed string carrying a
	// forbidden code point (U+0000).
	ErrMalformedUTF8 = codec.ErrMalformedUTF8

	// ErrPacketTooLarge indicates a packet whose total size, fixed header
	// included, exceeds the limit the caller configured on the stream
	// decoder.
	ErrPacketTooLarge = errors.New("packet too large")

	// ErrEncode indicates a packet value that violates a protocol
	// invariant and therefore cannot be serialised.
	ErrEncode = errors.New("encode error")
)

// IncompleteError is returned by Decode when the input holds only a prefix
// of a packet. Need is a lower bound on the number of additional bytes
// required; once the Remaining Length has been parsed it is exact.
type IncompleteError struct {
	Need int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete packet: need at least %d more bytes", e.Need)
}

// NeedsMore reports whether err indicates a short input rather than a
// malformed one, returning the byte count when it does.
func NeedsMore(err error) (int, bool) {
	var inc *IncompleteError
	if errors.As(err, &inc) {
		return inc.Need, true
	}
	return 0, false
}

// ReasonCode maps a decode error to the MQTT 5.0 reason code a server or
// client would put in the DISCONNECT it sends before closing the network
// connection.
func ReasonCode(err error) byte {
	switch {
	case errors.Is(err, ErrInvalidProtocolName), errors.Is(err, ErrInvalidProtocolLevel):
		return RCUnsupportedProtocolVersion
	case errors.Is(err, ErrPacketTooLarge):
		return RCPacketTooLarge
	case errors.Is(err, ErrProtocolError):
		return RCProtocolError
	case errors.Is(err, ErrMalformedVarInt),
		errors.Is(err, ErrInvalidFixedHeader),
		errors.Is(err, ErrMalformedPacket),
		errors.Is(err, ErrInvalidUTF8),
		errors.Is(err, ErrMalformedUTF8):
		return RCMalformedPacket
	default:
		return RCUnspecifiedError
	}
}

// bodyErr normalises errors bubbling out of a body parser. A short read
// inside a bounded body means the Remaining Length promised more content
// than the frame carried, which is a malformed packet, not a short input.
func bodyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, codec.ErrBufferTooShort) {
		return fmt.Errorf("%w: field exceeds remaining length", ErrMalformedPacket)
	}
	return err
}
