// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Auth is an internal representation of the fields of the AUTH MQTT
// packet, used for extended authentication exchanges. MQTT 5.0 only.
type Auth struct {
	FixedHeader
	Version    byte
	ReasonCode byte
	Properties *AuthProperties
}

// AuthProperties is the property set of the AUTH variable header.
type AuthProperties struct {
	// AuthMethod is the name of the extended authentication method. It
	// must match the method of the original CONNECT.
	AuthMethod string
	// AuthData is binary data for the chosen authentication method.
	AuthData []byte
	// ReasonString is a human readable reason for diagnostics.
	ReasonString string
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *AuthProperties) Unpack(r *codec.Reader) error {
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
		case AuthMethodProp:
			if p.AuthMethod, err = pr.ReadString(); err != nil {
				return err
			}
		case AuthDataProp:
			if p.AuthData, err = pr.ReadBytes(); err != nil {
				return err
			}
		case ReasonStringProp:
			if p.ReasonString, err = pr.ReadString(); err != nil {
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
func (p *AuthProperties) Encode() []byte {
	var ret []byte
	if p.AuthMethod != "" {
		ret = append(ret, AuthMethodProp)
		ret = append(ret, codec.EncodeString(p.AuthMethod)...)
	}
	if len(p.AuthData) > 0 {
		ret = append(ret, AuthDataProp)
		ret = append(ret, codec.EncodeBytes(p.AuthData)...)
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

func (p *AuthProperties) encodedLen() int {
	var n int
	if p.AuthMethod != "" {
		n += 1 + codec.StringLen(p.AuthMethod)
	}
	if len(p.AuthData) > 0 {
		n += 1 + codec.BytesLen(p.AuthData)
	}
	if p.ReasonString != "" {
		n += 1 + codec.StringLen(p.ReasonString)
	}
	return n + userLen(p.User)
}

func (p *AuthProperties) empty() bool {
	return p == nil || p.encodedLen() == 0
}

func (pkt *Auth) String() string {
	return fmt.Sprintf("%s reason_code: %d (%s)", pkt.FixedHeader, pkt.ReasonCode, ReasonCodeName(pkt.ReasonCode))
}

// Type returns the packet type.
func (pkt *Auth) Type() byte {
	return AuthType
}

// Encode serializes the packet to bytes.
func (pkt *Auth) Encode() ([]byte, error) {
	if pkt.Version != V5 {
		return nil, fmt.Errorf("%w: auth requires MQTT 5.0", ErrEncode)
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
func (pkt *Auth) EncodedLen() int {
	var n int
	if pkt.ReasonCode != RCSuccess || !pkt.Properties.empty() {
		n = 1
		if !pkt.Properties.empty() {
			n += propsLen(pkt.Properties.encodedLen())
		}
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Auth) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *Auth) Unpack(r *codec.Reader, version byte) error {
	if version != V5 {
		return fmt.Errorf("%w: auth requires MQTT 5.0", ErrProtocolError)
	}
	pkt.Version = version
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
	p := &AuthProperties{}
	if err := p.Unpack(r); err != nil {
		return err
	}
	pkt.Properties = p
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *Auth) Details() Details {
	return Details{Type: AuthType}
}

// Reset clears the packet for pool reuse.
func (pkt *Auth) Reset() {
	*pkt = Auth{FixedHeader: FixedHeader{PacketType: AuthType}}
}
