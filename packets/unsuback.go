// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// UnsubAck is an internal representation of the fields of the UNSUBACK
// MQTT packet. The v3 body is just the packet identifier; v5 adds
// properties and one reason code per requested filter.
type UnsubAck struct {
	FixedHeader
	Version     byte
	ID          uint16
	Properties  *BasicProperties
	ReasonCodes []byte
}

func (pkt *UnsubAck) String() string {
	return fmt.Sprintf("%s packet_id: %d reason_codes: %v", pkt.FixedHeader, pkt.ID, pkt.ReasonCodes)
}

// Type returns the packet type.
func (pkt *UnsubAck) Type() byte {
	return UnsubAckType
}

// Encode serializes the packet to bytes.
func (pkt *UnsubAck) Encode() ([]byte, error) {
	if pkt.ID == 0 {
		return nil, fmt.Errorf("%w: packet id 0", ErrEncode)
	}
	if pkt.Version != V5 {
		if pkt.Properties != nil || len(pkt.ReasonCodes) > 0 {
			return nil, fmt.Errorf("%w: reason codes and properties require MQTT 5.0", ErrEncode)
		}
		body := codec.EncodeUint16(pkt.ID)
		pkt.RemainingLength = len(body)
		return append(pkt.FixedHeader.Encode(), body...), nil
	}

	if len(pkt.ReasonCodes) == 0 {
		return nil, fmt.Errorf("%w: no reason codes", ErrEncode)
	}
	body := codec.EncodeUint16(pkt.ID)
	if pkt.Properties != nil {
		body = append(body, wrapProps(pkt.Properties.Encode())...)
	} else {
		body = append(body, 0)
	}
	body = append(body, pkt.ReasonCodes...)
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *UnsubAck) EncodedLen() int {
	n := 2
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
		n += len(pkt.ReasonCodes)
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *UnsubAck) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *UnsubAck) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	var err error
	if pkt.ID, err = r.ReadUint16(); err != nil {
		return err
	}
	if pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrProtocolError)
	}
	if version != V5 {
		return nil
	}
	p := &BasicProperties{}
	if err := p.Unpack(r); err != nil {
		return err
	}
	pkt.Properties = p
	if r.Remaining() == 0 {
		return fmt.Errorf("%w: unsuback without reason codes", ErrProtocolError)
	}
	pkt.ReasonCodes = append([]byte(nil), r.ReadRemaining()...)
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *UnsubAck) Details() Details {
	return Details{Type: UnsubAckType, ID: pkt.ID}
}

// Reset clears the packet for pool reuse.
func (pkt *UnsubAck) Reset() {
	*pkt = UnsubAck{FixedHeader: FixedHeader{PacketType: UnsubAckType}}
}
