// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Retain handling options for v5 subscriptions.
const (
	RetainSendAlways     byte = 0 // send retained messages at subscribe time
	RetainSendIfNew      byte = 1 // send only if the subscription is new
	RetainDoNotSend      byte = 2 // do not send retained messages
	retainHandlingBounds byte = 3
)

// SubOption is one topic filter with its subscription options. NoLocal,
// RetainAsPublished and RetainHandling exist in MQTT 5.0 only.
type SubOption struct {
	Topic             string
	QoS               byte
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    byte
}

func (o SubOption) flags(version byte) byte {
	if version != V5 {
		return o.QoS
	}
	return o.QoS |
		codec.EncodeBool(o.NoLocal)<<2 |
		codec.EncodeBool(o.RetainAsPublished)<<3 |
		o.RetainHandling<<4
}

// Subscribe is an internal representation of the fields of the SUBSCRIBE
// MQTT packet. Its fixed header carries the fixed flag nibble 0b0010.
type Subscribe struct {
	FixedHeader
	Version    byte
	ID         uint16
	Properties *SubscribeProperties
	Options    []SubOption
}

// SubscribeProperties is the property set of the SUBSCRIBE variable header.
type SubscribeProperties struct {
	// SubscriptionIdentifier is attached to matching publishes delivered
	// on this subscription.
	SubscriptionIdentifier *int
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *SubscribeProperties) Unpack(r *codec.Reader) error {
	pr, err := readProps(r)
	if err != nil {
		return err
	}
	var seen propSet
	for pr.Remaining() > 0 {
		prop, err := pr.ReadByte()
		if err != nil {
			return err
		}
		if err := seen.mark(prop); err != nil {
			return err
		}
		switch prop {
		case SubscriptionIdentifierProp:
			si, err := pr.ReadVBI()
			if err != nil {
				return err
			}
			if si == 0 {
				return fmt.Errorf("%w: subscription identifier 0", ErrProtocolError)
			}
			p.SubscriptionIdentifier = &si
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
func (p *SubscribeProperties) Encode() []byte {
	var ret []byte
	if p.SubscriptionIdentifier != nil {
		ret = append(ret, SubscriptionIdentifierProp)
		ret = append(ret, codec.EncodeVBI(*p.SubscriptionIdentifier)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *SubscribeProperties) encodedLen() int {
	var n int
	if p.SubscriptionIdentifier != nil {
		n += 1 + codec.VBILen(*p.SubscriptionIdentifier)
	}
	return n + userLen(p.User)
}

func (pkt *Subscribe) String() string {
	topics := make([]string, 0, len(pkt.Options))
	for _, o := range pkt.Options {
		topics = append(topics, o.Topic)
	}
	return fmt.Sprintf("%s packet_id: %d topics: %v", pkt.FixedHeader, pkt.ID, topics)
}

// Type returns the packet type.
func (pkt *Subscribe) Type() byte {
	return SubscribeType
}

func (pkt *Subscribe) validate() error {
	if pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrEncode)
	}
	if len(pkt.Options) == 0 {
		return fmt.Errorf("%w: no topic filters", ErrEncode)
	}
	if pkt.Version != V5 && pkt.Properties != nil {
		return fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
	}
	for _, o := range pkt.Options {
		if err := ValidateTopicFilter(o.Topic); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if o.QoS > QoSExactlyOnce {
			return fmt.Errorf("%w: subscription QoS %d", ErrEncode, o.QoS)
		}
		if pkt.Version != V5 {
			if o.NoLocal || o.RetainAsPublished || o.RetainHandling != 0 {
				return fmt.Errorf("%w: v5 subscription options require MQTT 5.0", ErrEncode)
			}
			continue
		}
		if o.RetainHandling >= retainHandlingBounds {
			return fmt.Errorf("%w: retain handling %d", ErrEncode, o.RetainHandling)
		}
	}
	return nil
}

// Encode serializes the packet to bytes.
func (pkt *Subscribe) Encode() ([]byte, error) {
	if err := pkt.validate(); err != nil {
		return nil, err
	}
	body := codec.EncodeUint16(pkt.ID)
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		} else {
			body = append(body, 0)
		}
	}
	for _, o := range pkt.Options {
		body = append(body, codec.EncodeString(o.Topic)...)
		body = append(body, o.flags(pkt.Version))
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *Subscribe) EncodedLen() int {
	n := 2
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
	}
	for _, o := range pkt.Options {
		n += codec.StringLen(o.Topic) + 1
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Subscribe) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *Subscribe) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	var err error
	if pkt.ID, err = r.ReadUint16(); err != nil {
		return err
	}
	if pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrProtocolError)
	}
	if version == V5 {
		p := &SubscribeProperties{}
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
		flags, err := r.ReadByte()
		if err != nil {
			return err
		}
		opt := SubOption{Topic: topic, QoS: flags & 0x03}
		if opt.QoS == 3 {
			return fmt.Errorf("%w: subscription QoS 3", ErrMalformedPacket)
		}
		if version != V5 {
			if flags&0xFC != 0 {
				return fmt.Errorf("%w: reserved subscription option bits 0x%x", ErrMalformedPacket, flags)
			}
		} else {
			if flags&0xC0 != 0 {
				return fmt.Errorf("%w: reserved subscription option bits 0x%x", ErrMalformedPacket, flags)
			}
			opt.NoLocal = flags&0x04 > 0
			opt.RetainAsPublished = flags&0x08 > 0
			opt.RetainHandling = (flags >> 4) & 0x03
			if opt.RetainHandling >= retainHandlingBounds {
				return fmt.Errorf("%w: retain handling 3", ErrMalformedPacket)
			}
		}
		pkt.Options = append(pkt.Options, opt)
	}
	if len(pkt.Options) == 0 {
		return fmt.Errorf("%w: subscribe without topic filters", ErrProtocolError)
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *Subscribe) Details() Details {
	return Details{Type: SubscribeType, ID: pkt.ID, QoS: QoSAtLeastOnce}
}

// Reset clears the packet for pool reuse.
func (pkt *Subscribe) Reset() {
	*pkt = Subscribe{FixedHeader: FixedHeader{PacketType: SubscribeType}}
}
