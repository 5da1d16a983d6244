// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Disconnect is an internal representation of the fields of the
// DISCONNECT MQTT packet. The v3 body is empty; v5 adds an optional
// reason code (0x00 Normal Disconnection when the body is empty) and
// optional properties.
type Disconnect struct {
	FixedHeader
	Version    byte
	ReasonCode byte
	Properties *DisconnectProperties
}

// DisconnectProperties is the property set of the DISCONNECT variable
// header.
type DisconnectProperties struct {
	// SessionExpiryInterval overrides the interval agreed at connect
	// time. Only a client may send it.
	SessionExpiryInterval *uint32
	// ReasonString is a human readable reason for diagnostics.
	ReasonString string
	// ServerReference indicates another server the client can use.
	ServerReference string
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *DisconnectProperties) Unpack(r *codec.Reader) error {
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
		case SessionExpiryIntervalProp:
			sei, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			p.SessionExpiryInterval = &sei
		case ReasonStringProp:
			if p.ReasonString, err = pr.ReadString(); err != nil {
				return err
			}
		case ServerReferenceProp:
			if p.ServerReference, err = pr.ReadString(); err != nil {
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
func (p *DisconnectProperties) Encode() []byte {
	var ret []byte
	if p.SessionExpiryInterval != nil {
		ret = append(ret, SessionExpiryIntervalProp)
		ret = append(ret, codec.EncodeUint32(*p.SessionExpiryInterval)...)
	}
	if p.ServerReference != "" {
		ret = append(ret, ServerReferenceProp)
		ret = append(ret, codec.EncodeString(p.ServerReference)...)
	}
	if p.ReasonString != "" {
		ret = append(ret, ReasonStringProp)
		ret = append(ret, codec.EncodeString(p.ReasonString)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *DisconnectProperties) encodedLen() int {
	var n int
	if p.SessionExpiryInterval != nil {
		n += 5
	}
	if p.ServerReference != "" {
		n += 1 + codec.StringLen(p.ServerReference)
	}
	if p.ReasonString != "" {
		n += 1 + codec.StringLen(p.ReasonString)
	}
	return n + userLen(p.User)
}

func (p *DisconnectProperties) empty() bool {
	return p == nil || p.encodedLen() == 0
}

func (pkt *Disconnect) String() string {
	return fmt.Sprintf("%s reason_code: %d (%s)", pkt.FixedHeader, pkt.ReasonCode, ReasonCodeName(pkt.ReasonCode))
}

// Type returns the packet type.
func (pkt *Disconnect) Type() byte {
	return DisconnectType
}

// Encode serializes the packet to bytes.
func (pkt *Disconnect) Encode() ([]byte, error) {
	if pkt.Version != V5 {
		if pkt.ReasonCode != 0 || pkt.Properties != nil {
			return nil, fmt.Errorf("%w: reason code and properties require MQTT 5.0", ErrEncode)
		}
		pkt.RemainingLength = 0
		return pkt.FixedHeader.Encode(), nil
	}

	var body []byte
	if pkt.ReasonCode != RCSuccess || !pkt.Properties.empty() {
		body = append(body, pkt.ReasonCode)
		if !pkt.Properties.empty() {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		}
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *Disconnect) EncodedLen() int {
	var n int
	if pkt.Version == V5 && (pkt.ReasonCode != RCSuccess || !pkt.Properties.empty()) {
		n = 1
		if !pkt.Properties.empty() {
			n += propsLen(pkt.Properties.encodedLen())
		}
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Disconnect) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *Disconnect) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	if version != V5 {
		if r.Remaining() != 0 {
			return fmt.Errorf("%w: v3 disconnect body must be empty", ErrMalformedPacket)
		}
		return nil
	}
	if r.Remaining() == 0 {
		pkt.ReasonCode = RCSuccess
		return nil
	}
	var err error
	if pkt.ReasonCode, err = r.ReadByte(); err != nil {
		return err
	}
	if r.Remaining() == 0 {
		return nil
	}
	p := &DisconnectProperties{}
	if err := p.Unpack(r); err != nil {
		return err
	}
	pkt.Properties = p
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *Disconnect) Details() Details {
	return Details{Type: DisconnectType}
}

// Reset clears the packet for pool reuse.
func (pkt *Disconnect) Reset() {
	*pkt = Disconnect{FixedHeader: FixedHeader{PacketType: DisconnectType}}
}
