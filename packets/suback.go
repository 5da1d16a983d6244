// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// SubAck is an internal representation of the fields of the SUBACK MQTT
// packet. ReasonCodes carries one return code per requested filter, in
// request order.
type SubAck struct {
	FixedHeader
	Version     byte
	ID          uint16
	Properties  *BasicProperties
	ReasonCodes []byte
}

func (pkt *SubAck) String() string {
	return fmt.Sprintf("%s packet_id: %d reason_codes: %v", pkt.FixedHeader, pkt.ID, pkt.ReasonCodes)
}

// Type returns the packet type.
func (pkt *SubAck) Type() byte {
	return SubAckType
}

// v3SubAckCode reports whether rc is a valid v3 SUBACK return code:
// granted QoS 0/1/2 or failure (0x80).
func v3SubAckCode(rc byte) bool {
	return rc <= QoSExactlyOnce || rc == RCUnspecifiedError
}

// Encode serializes the packet to bytes.
func (pkt *SubAck) Encode() ([]byte, error) {
	if pkt.ID == 0 {
		return nil, fmt.Errorf("%w: packet id 0", ErrEncode)
	}
	if len(pkt.ReasonCodes) == 0 {
		return nil, fmt.Errorf("%w: no reason codes", ErrEncode)
	}
	if pkt.Version != V5 {
		if pkt.Properties != nil {
			return nil, fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
		}
		for _, rc := range pkt.ReasonCodes {
			if !v3SubAckCode(rc) {
				return nil, fmt.Errorf("%w: v3 suback return code 0x%x", ErrEncode, rc)
			}
		}
	}

	body := codec.EncodeUint16(pkt.ID)
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		} else {
			body = append(body, 0)
		}
	}
	body = append(body, pkt.ReasonCodes...)
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *SubAck) EncodedLen() int {
	n := 2 + len(pkt.ReasonCodes)
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *SubAck) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *SubAck) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	var err error
	if pkt.ID, err = r.ReadUint16(); err != nil {
		return err
	}
	if pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrProtocolError)
	}
	if version == V5 {
		p := &BasicProperties{}
		if err := p.Unpack(r); err != nil {
			return err
		}
		pkt.Properties = p
	}
	if r.Remaining() == 0 {
		return fmt.Errorf("%w: suback without reason codes", ErrProtocolError)
	}
	codes := r.ReadRemaining()
	pkt.ReasonCodes = append([]byte(nil), codes...)
	if version != V5 {
		for _, rc := range pkt.ReasonCodes {
			if !v3SubAckCode(rc) {
				return fmt.Errorf("%w: v3 suback return code 0x%x", ErrMalformedPacket, rc)
			}
		}
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *SubAck) Details() Details {
	return Details{Type: SubAckType, ID: pkt.ID}
}

// Reset clears the packet for pool reuse.
func (pkt *SubAck) Reset() {
	*pkt = SubAck{FixedHeader: FixedHeader{PacketType: SubAckType}}
}
