// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Publish is an internal representation of the fields of the PUBLISH
// MQTT packet. DUP, QoS and Retain live on the embedded FixedHeader.
type Publish struct {
	FixedHeader
	Version    byte
	TopicName  string
	ID         uint16
	Properties *PublishProperties
	Payload    []byte
}

// PublishProperties is the property set of the PUBLISH variable header.
type PublishProperties struct {
	// PayloadFormat indicates the format of the payload: 0 for
	// unspecified bytes, 1 for UTF-8 character data.
	PayloadFormat *byte
	// MessageExpiry is the lifetime of the message in seconds.
	MessageExpiry *uint32
	// TopicAlias substitutes a numeric alias for the topic name on this
	// connection.
	TopicAlias *uint16
	// ResponseTopic is the topic name for a response message.
	ResponseTopic string
	// CorrelationData associates a future response with this request.
	CorrelationData []byte
	// SubscriptionIdentifier is the identifier of the subscription this
	// publish matched.
	SubscriptionIdentifier *int
	// ContentType is a UTF8 string describing the content of the message,
	// for example a MIME type.
	ContentType string
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *PublishProperties) Unpack(r *codec.Reader) error {
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
		case PayloadFormatProp:
			pf, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.PayloadFormat = &pf
		case MessageExpiryProp:
			me, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			p.MessageExpiry = &me
		case TopicAliasProp:
			ta, err := pr.ReadUint16()
			if err != nil {
				return err
			}
			if ta == 0 {
				return fmt.Errorf("%w: topic alias 0", ErrProtocolError)
			}
			p.TopicAlias = &ta
		case ResponseTopicProp:
			if p.ResponseTopic, err = pr.ReadString(); err != nil {
				return err
			}
		case CorrelationDataProp:
			if p.CorrelationData, err = pr.ReadBytes(); err != nil {
				return err
			}
		case SubscriptionIdentifierProp:
			si, err := pr.ReadVBI()
			if err != nil {
				return err
			}
			if si == 0 {
				return fmt.Errorf("%w: subscription identifier 0", ErrProtocolError)
			}
			p.SubscriptionIdentifier = &si
		case ContentTypeProp:
			if p.ContentType, err = pr.ReadString(); err != nil {
				return err
			}
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
func (p *PublishProperties) Encode() []byte {
	var ret []byte
	if p.PayloadFormat != nil {
		ret = append(ret, PayloadFormatProp, *p.PayloadFormat)
	}
	if p.MessageExpiry != nil {
		ret = append(ret, MessageExpiryProp)
		ret = append(ret, codec.EncodeUint32(*p.MessageExpiry)...)
	}
	if p.ContentType != "" {
		ret = append(ret, ContentTypeProp)
		ret = append(ret, codec.EncodeString(p.ContentType)...)
	}
	if p.ResponseTopic != "" {
		ret = append(ret, ResponseTopicProp)
		ret = append(ret, codec.EncodeString(p.ResponseTopic)...)
	}
	if len(p.CorrelationData) > 0 {
		ret = append(ret, CorrelationDataProp)
		ret = append(ret, codec.EncodeBytes(p.CorrelationData)...)
	}
	if p.SubscriptionIdentifier != nil {
		ret = append(ret, SubscriptionIdentifierProp)
		ret = append(ret, codec.EncodeVBI(*p.SubscriptionIdentifier)...)
	}
	if p.TopicAlias != nil {
		ret = append(ret, TopicAliasProp)
		ret = append(ret, codec.EncodeUint16(*p.TopicAlias)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *PublishProperties) encodedLen() int {
	var n int
	if p.PayloadFormat != nil {
		n += 2
	}
	if p.MessageExpiry != nil {
		n += 5
	}
	if p.ContentType != "" {
		n += 1 + codec.StringLen(p.ContentType)
	}
	if p.ResponseTopic != "" {
		n += 1 + codec.StringLen(p.ResponseTopic)
	}
	if len(p.CorrelationData) > 0 {
		n += 1 + codec.BytesLen(p.CorrelationData)
	}
	if p.SubscriptionIdentifier != nil {
		n += 1 + codec.VBILen(*p.SubscriptionIdentifier)
	}
	if p.TopicAlias != nil {
		n += 3
	}
	return n + userLen(p.User)
}

func (pkt *Publish) String() string {
	return fmt.Sprintf("%s topic_name: %s packet_id: %d payload: %s", pkt.FixedHeader, pkt.TopicName, pkt.ID, pkt.Payload)
}

// Type returns the packet type.
func (pkt *Publish) Type() byte {
	return PublishType
}

func (pkt *Publish) validate() error {
	if pkt.QoS > QoSExactlyOnce {
		return fmt.Errorf("%w: QoS %d", ErrEncode, pkt.QoS)
	}
	if pkt.QoS == 0 && pkt.Dup {
		return fmt.Errorf("%w: DUP set on QoS 0 publish", ErrEncode)
	}
	if pkt.QoS > 0 && pkt.ID == 0 {
		return fmt.Errorf("%w: packet id 0 on QoS %d publish", ErrEncode, pkt.QoS)
	}
	if pkt.Version != V5 && pkt.Properties != nil {
		return fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
	}
	aliased := pkt.Version == V5 && pkt.Properties != nil && pkt.Properties.TopicAlias != nil
	if pkt.TopicName == "" && !aliased {
		return fmt.Errorf("%w: empty topic name without topic alias", ErrEncode)
	}
	if pkt.TopicName != "" {
		if err := ValidateTopicName(pkt.TopicName); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}
	return nil
}

// Encode serializes the packet to bytes.
func (pkt *Publish) Encode() ([]byte, error) {
	if err := pkt.validate(); err != nil {
		return nil, err
	}

	var body []byte
	body = append(body, codec.EncodeString(pkt.TopicName)...)
	if pkt.QoS > 0 {
		body = append(body, codec.EncodeUint16(pkt.ID)...)
	}
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		} else {
			body = append(body, 0)
		}
	}
	body = append(body, pkt.Payload...)
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *Publish) EncodedLen() int {
	n := codec.StringLen(pkt.TopicName)
	if pkt.QoS > 0 {
		n += 2
	}
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
	}
	n += len(pkt.Payload)
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Publish) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
// The payload is copied out of the reader's buffer.
func (pkt *Publish) Unpack(r *codec.Reader, version byte) error {
	if err := pkt.unpackBorrowed(r, version); err != nil {
		return err
	}
	pkt.Payload = append([]byte(nil), pkt.Payload...)
	return nil
}

// unpackBorrowed decodes the body leaving Payload aliasing the input
// buffer. ReadPacketBytes exposes this as the zero-copy decode mode.
func (pkt *Publish) unpackBorrowed(r *codec.Reader, version byte) error {
	pkt.Version = version
	var err error
	if pkt.TopicName, err = r.ReadString(); err != nil {
		return err
	}
	if pkt.TopicName != "" {
		if err := ValidateTopicName(pkt.TopicName); err != nil {
			return err
		}
	}
	if pkt.QoS > 0 {
		if pkt.ID, err = r.ReadUint16(); err != nil {
			return err
		}
		if pkt.ID == 0 {
			return fmt.Errorf("%w: packet id 0 on QoS %d publish", ErrProtocolError, pkt.QoS)
		}
	}
	if version == V5 {
		p := &PublishProperties{}
		if err := p.Unpack(r); err != nil {
			return err
		}
		pkt.Properties = p
	}
	if pkt.TopicName == "" {
		if version != V5 || pkt.Properties == nil || pkt.Properties.TopicAlias == nil {
			return fmt.Errorf("%w: empty topic name without topic alias", ErrMalformedPacket)
		}
	}
	pkt.Payload = r.ReadRemaining()
	return nil
}

// Copy creates a new Publish with the same topic, payload and properties
// but a fresh fixed header, useful for redelivery with different QoS.
func (pkt *Publish) Copy() *Publish {
	return &Publish{
		FixedHeader: FixedHeader{PacketType: PublishType},
		Version:     pkt.Version,
		TopicName:   pkt.TopicName,
		Properties:  pkt.Properties,
		Payload:     pkt.Payload,
	}
}

// Details returns packet metadata for QoS handling.
func (pkt *Publish) Details() Details {
	return Details{Type: PublishType, ID: pkt.ID, QoS: pkt.QoS}
}

// Reset clears the packet for pool reuse.
func (pkt *Publish) Reset() {
	*pkt = Publish{FixedHeader: FixedHeader{PacketType: PublishType}}
}
