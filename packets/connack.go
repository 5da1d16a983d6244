// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// ConnAck is an internal representation of the fields of the CONNACK
// MQTT packet. Under v3 the ReasonCode field carries the connect return
// code (0..5); under v5 it carries a reason code.
type ConnAck struct {
	FixedHeader
	Version        byte
	SessionPresent bool
	ReasonCode     byte
	Properties     *ConnAckProperties
}

// ConnAckProperties is the property set of the CONNACK variable header.
type ConnAckProperties struct {
	// SessionExpiryInterval overrides the interval requested in CONNECT.
	SessionExpiryInterval *uint32
	// ReceiveMaximum is the maximum number of QoS 1 and 2 messages the
	// server is willing to process concurrently.
	ReceiveMaximum *uint16
	// MaxQoS is the highest QoS level the server supports for a publish.
	MaxQoS *byte
	// RetainAvailable indicates whether the server supports retained
	// messages.
	RetainAvailable *byte
	// MaximumPacketSize is the largest packet the server accepts.
	MaximumPacketSize *uint32
	// AssignedClientID is returned when the client connected with an
	// empty client identifier.
	AssignedClientID string
	// TopicAliasMaximum is the highest topic alias the server accepts.
	TopicAliasMaximum *uint16
	// ReasonString is a human readable reason for diagnostics.
	ReasonString string
	// User is a slice of user provided properties (key and value).
	User []User
	// WildcardSubAvailable indicates whether wildcard subscriptions are
	// permitted.
	WildcardSubAvailable *byte
	// SubIDAvailable indicates whether subscription identifiers are
	// supported.
	SubIDAvailable *byte
	// SharedSubAvailable indicates whether shared subscriptions are
	// supported.
	SharedSubAvailable *byte
	// ServerKeepAlive overrides the keep alive requested in CONNECT.
	ServerKeepAlive *uint16
	// ResponseInfo is the basis the client uses to build a response topic.
	ResponseInfo string
	// ServerReference indicates another server the client can use.
	ServerReference string
	// AuthMethod is the name of the extended authentication method.
	AuthMethod string
	// AuthData is binary data for the chosen authentication method.
	AuthData []byte
}

// Unpack parses the property section, length prefix included.
func (p *ConnAckProperties) Unpack(r *codec.Reader) error {
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
		case ReceiveMaximumProp:
			rm, err := pr.ReadUint16()
			if err != nil {
				return err
			}
			p.ReceiveMaximum = &rm
		case MaximumQOSProp:
			mq, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.MaxQoS = &mq
		case RetainAvailableProp:
			ra, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.RetainAvailable = &ra
		case MaximumPacketSizeProp:
			mps, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			p.MaximumPacketSize = &mps
		case AssignedClientIDProp:
			if p.AssignedClientID, err = pr.ReadString(); err != nil {
				return err
			}
		case TopicAliasMaximumProp:
			tam, err := pr.ReadUint16()
			if err != nil {
				return err
			}
			p.TopicAliasMaximum = &tam
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
		case WildcardSubAvailableProp:
			wsa, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.WildcardSubAvailable = &wsa
		case SubIDAvailableProp:
			sia, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.SubIDAvailable = &sia
		case SharedSubAvailableProp:
			ssa, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.SharedSubAvailable = &ssa
		case ServerKeepAliveProp:
			ska, err := pr.ReadUint16()
			if err != nil {
				return err
			}
			p.ServerKeepAlive = &ska
		case ResponseInfoProp:
			if p.ResponseInfo, err = pr.ReadString(); err != nil {
				return err
			}
		case ServerReferenceProp:
			if p.ServerReference, err = pr.ReadString(); err != nil {
				return err
			}
		case AuthMethodProp:
			if p.AuthMethod, err = pr.ReadString(); err != nil {
				return err
			}
		case AuthDataProp:
			if p.AuthData, err = pr.ReadBytes(); err != nil {
				return err
			}
		default:
			return propErr(prop)
		}
	}
	return nil
}

// Encode serializes the property content without the length prefix.
func (p *ConnAckProperties) Encode() []byte {
	var ret []byte
	if p.SessionExpiryInterval != nil {
		ret = append(ret, SessionExpiryIntervalProp)
		ret = append(ret, codec.EncodeUint32(*p.SessionExpiryInterval)...)
	}
	if p.AssignedClientID != "" {
		ret = append(ret, AssignedClientIDProp)
		ret = append(ret, codec.EncodeString(p.AssignedClientID)...)
	}
	if p.ServerKeepAlive != nil {
		ret = append(ret, ServerKeepAliveProp)
		ret = append(ret, codec.EncodeUint16(*p.ServerKeepAlive)...)
	}
	if p.AuthMethod != "" {
		ret = append(ret, AuthMethodProp)
		ret = append(ret, codec.EncodeString(p.AuthMethod)...)
	}
	if len(p.AuthData) > 0 {
		ret = append(ret, AuthDataProp)
		ret = append(ret, codec.EncodeBytes(p.AuthData)...)
	}
	if p.ResponseInfo != "" {
		ret = append(ret, ResponseInfoProp)
		ret = append(ret, codec.EncodeString(p.ResponseInfo)...)
	}
	if p.ServerReference != "" {
		ret = append(ret, ServerReferenceProp)
		ret = append(ret, codec.EncodeString(p.ServerReference)...)
	}
	if p.ReasonString != "" {
		ret = append(ret, ReasonStringProp)
		ret = append(ret, codec.EncodeString(p.ReasonString)...)
	}
	if p.ReceiveMaximum != nil {
		ret = append(ret, ReceiveMaximumProp)
		ret = append(ret, codec.EncodeUint16(*p.ReceiveMaximum)...)
	}
	if p.TopicAliasMaximum != nil {
		ret = append(ret, TopicAliasMaximumProp)
		ret = append(ret, codec.EncodeUint16(*p.TopicAliasMaximum)...)
	}
	if p.MaxQoS != nil {
		ret = append(ret, MaximumQOSProp, *p.MaxQoS)
	}
	if p.RetainAvailable != nil {
		ret = append(ret, RetainAvailableProp, *p.RetainAvailable)
	}
	if p.MaximumPacketSize != nil {
		ret = append(ret, MaximumPacketSizeProp)
		ret = append(ret, codec.EncodeUint32(*p.MaximumPacketSize)...)
	}
	if p.WildcardSubAvailable != nil {
		ret = append(ret, WildcardSubAvailableProp, *p.WildcardSubAvailable)
	}
	if p.SubIDAvailable != nil {
		ret = append(ret, SubIDAvailableProp, *p.SubIDAvailable)
	}
	if p.SharedSubAvailable != nil {
		ret = append(ret, SharedSubAvailableProp, *p.SharedSubAvailable)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *ConnAckProperties) encodedLen() int {
	var n int
	if p.SessionExpiryInterval != nil {
		n += 5
	}
	if p.AssignedClientID != "" {
		n += 1 + codec.StringLen(p.AssignedClientID)
	}
	if p.ServerKeepAlive != nil {
		n += 3
	}
	if p.AuthMethod != "" {
		n += 1 + codec.StringLen(p.AuthMethod)
	}
	if len(p.AuthData) > 0 {
		n += 1 + codec.BytesLen(p.AuthData)
	}
	if p.ResponseInfo != "" {
		n += 1 + codec.StringLen(p.ResponseInfo)
	}
	if p.ServerReference != "" {
		n += 1 + codec.StringLen(p.ServerReference)
	}
	if p.ReasonString != "" {
		n += 1 + codec.StringLen(p.ReasonString)
	}
	if p.ReceiveMaximum != nil {
		n += 3
	}
	if p.TopicAliasMaximum != nil {
		n += 3
	}
	if p.MaxQoS != nil {
		n += 2
	}
	if p.RetainAvailable != nil {
		n += 2
	}
	if p.MaximumPacketSize != nil {
		n += 5
	}
	if p.WildcardSubAvailable != nil {
		n += 2
	}
	if p.SubIDAvailable != nil {
		n += 2
	}
	if p.SharedSubAvailable != nil {
		n += 2
	}
	return n + userLen(p.User)
}

func (pkt *ConnAck) String() string {
	name := ReasonCodeName(pkt.ReasonCode)
	if pkt.Version != V5 {
		name = ConnackReturnCodeName(pkt.ReasonCode)
	}
	return fmt.Sprintf("%s session_present: %t reason_code: %d (%s)", pkt.FixedHeader, pkt.SessionPresent, pkt.ReasonCode, name)
}

// Type returns the packet type.
func (pkt *ConnAck) Type() byte {
	return ConnAckType
}

// Encode serializes the packet to bytes.
func (pkt *ConnAck) Encode() ([]byte, error) {
	if pkt.Version != V5 && pkt.Properties != nil {
		return nil, fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
	}
	if pkt.Version != V5 && pkt.ReasonCode > ErrRefusedNotAuthorized {
		return nil, fmt.Errorf("%w: v3 connack return code %d", ErrEncode, pkt.ReasonCode)
	}

	body := []byte{codec.EncodeBool(pkt.SessionPresent), pkt.ReasonCode}
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		} else {
			body = append(body, 0)
		}
	}
	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *ConnAck) EncodedLen() int {
	n := 2
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
func (pkt *ConnAck) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
func (pkt *ConnAck) Unpack(r *codec.Reader, version byte) error {
	pkt.Version = version
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if flags&0xFE != 0 {
		return fmt.Errorf("%w: reserved connack flags 0x%x", ErrMalformedPacket, flags)
	}
	pkt.SessionPresent = flags&0x01 > 0

	if pkt.ReasonCode, err = r.ReadByte(); err != nil {
		return err
	}
	if version != V5 {
		if pkt.ReasonCode > ErrRefusedNotAuthorized {
			return fmt.Errorf("%w: v3 connack return code %d", ErrMalformedPacket, pkt.ReasonCode)
		}
		return nil
	}

	p := &ConnAckProperties{}
	if err := p.Unpack(r); err != nil {
		return err
	}
	pkt.Properties = p
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *ConnAck) Details() Details {
	return Details{Type: ConnAckType}
}

// Reset clears the packet for pool reuse.
func (pkt *ConnAck) Reset() {
	*pkt = ConnAck{FixedHeader: FixedHeader{PacketType: ConnAckType}}
}
