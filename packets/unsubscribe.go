// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Unsubscribe is an internal representation of the fields of the
// UNSUBSCRIBE MQTT packet. Its fixed header carries the fixed flag
// nibble 0b0010.
type Unsubscribe struct {
	FixedHeader
	Version    byte
	ID         uint16
	Properties *UnsubscribeProperties
	Topics     []string
}

// UnsubscribeProperties is the property set of the UNSUBSCRIBE variable
// header: user properties only.
type UnsubscribeProperties struct {
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *UnsubscribeProperties) Unpack(r *codec.Reader) error {
	pr, err := readProps(r)
	if err != nil {
		return err
	}
	for pr.Remaining() > 0 {
		prop, err := pr.ReadByte()
		if err != nil {
			return err
		}
		switch prop {
		case UserProp:
			k, v, err := pr.ReadStringPair()
			if err != nil {
				return err
			}
			p.User = append(p.User, User{k, v})
		default:
			return propErr(prop)
		}
	}
	return nil
}

// Encode serializes the property content without the length prefix.
func (p *UnsubscribeProperties) Encode() []byte {
	var ret []byte
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *UnsubscribeProperties) encodedLen() int {
	return userLen(p.User)
}

func (pkt *Unsubscribe) String() string {
	return fmt.Sprintf("%s packet_id: %d topics: %v", pkt.FixedHeader, pkt.ID, pkt.Topics)
}

// Type returns the packet type.
func (pkt *Unsubscribe) Type() byte {
	return UnsubscribeType
}

// Encode serializes the packet to bytes.
func (pkt *Unsubscribe) Encode() ([]byte, error) {
	if pkt.ID == 0 {
		return nil, fmt.Errorf("%w: packet id 0", ErrEncode)
	}
	if len(pkt.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topic filters", ErrEncode)
	}
	if pkt.Version != V5 && pkt.Properties != nil {
		return nil, fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
	}
	for _, topic := range pkt.Topics {
		if err := ValidateTopicFilter(topic); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
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
	for _, topic := range pkt.Topics {
		body = append(body, codec.EncodeString(topic)...)
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *Unsubscribe) EncodedLen() int {
	n := 2
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
	}
	for _, topic := range pkt.Topics {
		n += codec.StringLen(topic)
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Unsubscribe) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *Unsubscribe) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	var err error
	if pkt.ID, err = r.ReadUint16(); err != nil {
		return err
	}
	if pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrProtocolError)
	}
	if version == V5 {
		p := &UnsubscribeProperties{}
		if err := p.Unpack(r); err != nil {
			return err
		}
		pkt.Properties = p
	}
	for r.Remaining() > 0 {
		topic, err := r.ReadString()
		if err != nil {
			return err
		}
		if err := ValidateTopicFilter(topic); err != nil {
			return err
		}
		pkt.Topics = append(pkt.Topics, topic)
	}
	if len(pkt.Topics) == 0 {
		return fmt.Errorf("%w: unsubscribe without topic filters", ErrProtocolError)
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *Unsubscribe) Details() Details {
	return Details{Type: UnsubscribeType, ID: pkt.ID, QoS: QoSAtLeastOnce}
}

// Reset clears the packet for pool reuse.
func (pkt *Unsubscribe) Reset() {
	*pkt = Unsubscribe{FixedHeader: FixedHeader{PacketType: UnsubscribeType}}
}
