// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Protocol names carried in the CONNECT variable header.
const (
	ProtocolNameV3  = "MQIsdp" // MQTT 3.1
	ProtocolName    = "MQTT"   // MQTT 3.1.1 and 5.0
	maxClientIDSize = 65535
)

// VersionAuto makes Decode accept a CONNECT of any supported revision,
// reporting the detected version on the packet. With a concrete version a
// CONNECT whose protocol level disagrees fails with
// ErrInvalidProtocolLevel. VersionAuto is meaningful for CONNECT only;
// every other packet type decoded under it uses the v3 grammar.
const VersionAuto byte = 0

// Connect is an internal representation of the fields of the CONNECT
// MQTT packet.
type Connect struct {
	FixedHeader
	Version      byte
	CleanStart   bool // named CleanSession before MQTT 5.0
	WillFlag     bool
	WillQoS      byte
	WillRetain   bool
	UsernameFlag bool
	PasswordFlag bool
	KeepAlive    uint16

	Properties     *ConnectProperties
	ClientID       string
	WillProperties *WillProperties
	WillTopic      string
	WillPayload    []byte
	Username       string
	Password       []byte
}

// ConnectProperties is the property set of the CONNECT variable header.
type ConnectProperties struct {
	// SessionExpiryInterval is the time in seconds the server keeps the
	// session after the client disconnects.
	SessionExpiryInterval *uint32
	// ReceiveMaximum is the maximum number of QoS 1 and 2 messages the
	// client is willing to process concurrently.
	ReceiveMaximum *uint16
	// MaximumPacketSize is the largest packet the client accepts.
	MaximumPacketSize *uint32
	// TopicAliasMaximum is the highest topic alias the client accepts.
	TopicAliasMaximum *uint16
	// RequestResponseInfo asks the server to return Response Information
	// in the CONNACK.
	RequestResponseInfo *byte
	// RequestProblemInfo asks the server to include the Reason String and
	// User Properties on failures.
	RequestProblemInfo *byte
	// AuthMethod is the name of the extended authentication method.
	AuthMethod string
	// AuthData is binary data for the chosen authentication method.
	AuthData []byte
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *ConnectProperties) Unpack(r *codec.Reader) error {
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
		case MaximumPacketSizeProp:
			mps, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			p.MaximumPacketSize = &mps
		case TopicAliasMaximumProp:
			tam, err := pr.ReadUint16()
			if err != nil {
				return err
			}
			p.TopicAliasMaximum = &tam
		case RequestResponseInfoProp:
			rri, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.RequestResponseInfo = &rri
		case RequestProblemInfoProp:
			rpi, err := pr.ReadByte()
			if err != nil {
				return err
			}
			p.RequestProblemInfo = &rpi
		case AuthMethodProp:
			if p.AuthMethod, err = pr.ReadString(); err != nil {
				return err
			}
		case AuthDataProp:
			if p.AuthData, err = pr.ReadBytes(); err != nil {
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

// Encode serializes the property content without the length prefix,
// ascending id order with user properties last.
func (p *ConnectProperties) Encode() []byte {
	var ret []byte
	if p.SessionExpiryInterval != nil {
		ret = append(ret, SessionExpiryIntervalProp)
		ret = append(ret, codec.EncodeUint32(*p.SessionExpiryInterval)...)
	}
	if p.AuthMethod != "" {
		ret = append(ret, AuthMethodProp)
		ret = append(ret, codec.EncodeString(p.AuthMethod)...)
	}
	if len(p.AuthData) > 0 {
		ret = append(ret, AuthDataProp)
		ret = append(ret, codec.EncodeBytes(p.AuthData)...)
	}
	if p.RequestProblemInfo != nil {
		ret = append(ret, RequestProblemInfoProp, *p.RequestProblemInfo)
	}
	if p.RequestResponseInfo != nil {
		ret = append(ret, RequestResponseInfoProp, *p.RequestResponseInfo)
	}
	if p.ReceiveMaximum != nil {
		ret = append(ret, ReceiveMaximumProp)
		ret = append(ret, codec.EncodeUint16(*p.ReceiveMaximum)...)
	}
	if p.TopicAliasMaximum != nil {
		ret = append(ret, TopicAliasMaximumProp)
		ret = append(ret, codec.EncodeUint16(*p.TopicAliasMaximum)...)
	}
	if p.MaximumPacketSize != nil {
		ret = append(ret, MaximumPacketSizeProp)
		ret = append(ret, codec.EncodeUint32(*p.MaximumPacketSize)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *ConnectProperties) encodedLen() int {
	var n int
	if p.SessionExpiryInterval != nil {
		n += 5
	}
	if p.AuthMethod != "" {
		n += 1 + codec.StringLen(p.AuthMethod)
	}
	if len(p.AuthData) > 0 {
		n += 1 + codec.BytesLen(p.AuthData)
	}
	if p.RequestProblemInfo != nil {
		n += 2
	}
	if p.RequestResponseInfo != nil {
		n += 2
	}
	if p.ReceiveMaximum != nil {
		n += 3
	}
	if p.TopicAliasMaximum != nil {
		n += 3
	}
	if p.MaximumPacketSize != nil {
		n += 5
	}
	return n + userLen(p.User)
}

// WillProperties is the property set of the will message inside CONNECT.
type WillProperties struct {
	// WillDelayInterval is the number of seconds the server waits before
	// publishing the will message.
	WillDelayInterval *uint32
	// PayloadFormat indicates the format of the will payload: 0 for
	// unspecified bytes, 1 for UTF-8 character data.
	PayloadFormat *byte
	// MessageExpiry is the lifetime of the will message in seconds.
	MessageExpiry *uint32
	// ContentType is a UTF8 string describing the content of the message,
	// for example a MIME type.
	ContentType string
	// ResponseTopic is the topic name for a response message.
	ResponseTopic string
	// CorrelationData associates a future response with this request.
	CorrelationData []byte
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *WillProperties) Unpack(r *codec.Reader) error {
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
		case WillDelayIntervalProp:
			wdi, err := pr.ReadUint32()
			if err != nil {
				return err
			}
			p.WillDelayInterval = &wdi
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
		case ContentTypeProp:
			if p.ContentType, err = pr.ReadString(); err != nil {
				return err
			}
		case ResponseTopicProp:
			if p.ResponseTopic, err = pr.ReadString(); err != nil {
				return err
			}
		case CorrelationDataProp:
			if p.CorrelationData, err = pr.ReadBytes(); err != nil {
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
func (p *WillProperties) Encode() []byte {
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
	if p.WillDelayInterval != nil {
		ret = append(ret, WillDelayIntervalProp)
		ret = append(ret, codec.EncodeUint32(*p.WillDelayInterval)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *WillProperties) encodedLen() int {
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
	if p.WillDelayInterval != nil {
		n += 5
	}
	return n + userLen(p.User)
}

const connectFormat = `version: %d
clean_start: %t
will: %t
will_qos: %d
will_retain: %t
username_flag: %t
password_flag: %t
keepalive: %d
client_id: %s`

func (pkt *Connect) String() string {
	return pkt.FixedHeader.String() + " " + fmt.Sprintf(connectFormat, pkt.Version,
		pkt.CleanStart, pkt.WillFlag, pkt.WillQoS, pkt.WillRetain,
		pkt.UsernameFlag, pkt.PasswordFlag, pkt.KeepAlive, pkt.ClientID)
}

// Type returns the packet type.
func (pkt *Connect) Type() byte {
	return ConnectType
}

func (pkt *Connect) protocolName() (string, error) {
	switch pkt.Version {
	case V31:
		return ProtocolNameV3, nil
	case V311, V5:
		return ProtocolName, nil
	}
	return "", fmt.Errorf("%w: cannot encode CONNECT for version 0x%x", ErrEncode, pkt.Version)
}

func (pkt *Connect) validate() error {
	if pkt.WillQoS > QoSExactlyOnce {
		return fmt.Errorf("%w: will QoS %d", ErrEncode, pkt.WillQoS)
	}
	if !pkt.WillFlag && (pkt.WillQoS != 0 || pkt.WillRetain) {
		return fmt.Errorf("%w: will QoS/retain without will flag", ErrEncode)
	}
	if pkt.WillFlag {
		if err := ValidateTopicName(pkt.WillTopic); err != nil {
			return fmt.Errorf("%w: will topic: %v", ErrEncode, err)
		}
	}
	if pkt.PasswordFlag && !pkt.UsernameFlag && pkt.Version != V5 {
		return fmt.Errorf("%w: password without username before MQTT 5.0", ErrEncode)
	}
	if pkt.Version != V5 && (pkt.Properties != nil || pkt.WillProperties != nil) {
		return fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
	}
	if len(pkt.ClientID) > maxClientIDSize {
		return fmt.Errorf("%w: client id exceeds %d bytes", ErrEncode, maxClientIDSize)
	}
	if err := codec.ValidateUTF8String(pkt.ClientID); err != nil {
		return fmt.Errorf("%w: client id: %v", ErrEncode, err)
	}
	return nil
}

func (pkt *Connect) connectFlags() byte {
	return codec.EncodeBool(pkt.CleanStart)<<1 |
		codec.EncodeBool(pkt.WillFlag)<<2 |
		pkt.WillQoS<<3 |
		codec.EncodeBool(pkt.WillRetain)<<5 |
		codec.EncodeBool(pkt.PasswordFlag)<<6 |
		codec.EncodeBool(pkt.UsernameFlag)<<7
}

// Encode serializes the packet to bytes.
func (pkt *Connect) Encode() ([]byte, error) {
	if err := pkt.validate(); err != nil {
		return nil, err
	}
	name, err := pkt.protocolName()
	if err != nil {
		return nil, err
	}

	var body []byte
	body = append(body, codec.EncodeString(name)...)
	body = append(body, pkt.Version, pkt.connectFlags())
	body = append(body, codec.EncodeUint16(pkt.KeepAlive)...)
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			body = append(body, wrapProps(pkt.Properties.Encode())...)
		} else {
			body = append(body, 0)
		}
	}
	body = append(body, codec.EncodeString(pkt.ClientID)...)
	if pkt.WillFlag {
		if pkt.Version == V5 {
			if pkt.WillProperties != nil {
				body = append(body, wrapProps(pkt.WillProperties.Encode())...)
			} else {
				body = append(body, 0)
			}
		}
		body = append(body, codec.EncodeString(pkt.WillTopic)...)
		body = append(body, codec.EncodeBytes(pkt.WillPayload)...)
	}
	if pkt.UsernameFlag {
		body = append(body, codec.EncodeString(pkt.Username)...)
	}
	if pkt.PasswordFlag {
		body = append(body, codec.EncodeBytes(pkt.Password)...)
	}

	pkt.RemainingLength = len(body)
	return append(pkt.FixedHeader.Encode(), body...), nil
}

// EncodedLen returns the exact encoded size without encoding.
func (pkt *Connect) EncodedLen() int {
	name := ProtocolName
	if pkt.Version == V31 {
		name = ProtocolNameV3
	}
	n := codec.StringLen(name) + 1 + 1 + 2
	if pkt.Version == V5 {
		if pkt.Properties != nil {
			n += propsLen(pkt.Properties.encodedLen())
		} else {
			n++
		}
	}
	n += codec.StringLen(pkt.ClientID)
	if pkt.WillFlag {
		if pkt.Version == V5 {
			if pkt.WillProperties != nil {
				n += propsLen(pkt.WillProperties.encodedLen())
			} else {
				n++
			}
		}
		n += codec.StringLen(pkt.WillTopic) + codec.BytesLen(pkt.WillPayload)
	}
	if pkt.UsernameFlag {
		n += codec.StringLen(pkt.Username)
	}
	if pkt.PasswordFlag {
		n += codec.BytesLen(pkt.Password)
	}
	return 1 + codec.VBILen(n) + n
}

// Pack writes the encoded packet to the writer.
func (pkt *Connect) Pack(w io.Writer) error {
	b, err := pkt.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Unpack decodes the packet body after the fixed header has been read.
// The protocol name and level identify the revision; expected restricts
// which revision is acceptable, with VersionAuto accepting any.
func (pkt *Connect) Unpack(r *codec.Reader, expected byte) error {
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	level, err := r.ReadByte()
	if err != nil {
		return err
	}

	switch {
	case name == ProtocolName && level == V311:
		pkt.Version = V311
	case name == ProtocolName && level == V5:
		pkt.Version = V5
	case name == ProtocolNameV3 && level == V31:
		pkt.Version = V31
	case name == ProtocolName || name == ProtocolNameV3:
		return fmt.Errorf("%w: level %d for protocol name %q", ErrInvalidProtocolLevel, level, name)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProtocolName, name)
	}
	if expected != VersionAuto && expected != pkt.Version {
		return fmt.Errorf("%w: got level %d, expected %d", ErrInvalidProtocolLevel, pkt.Version, expected)
	}

	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if flags&0x01 != 0 {
		return fmt.Errorf("%w: reserved connect flag set", ErrMalformedPacket)
	}
	pkt.CleanStart = flags&0x02 > 0
	pkt.WillFlag = flags&0x04 > 0
	pkt.WillQoS = (flags >> 3) & 0x03
	pkt.WillRetain = flags&0x20 > 0
	pkt.PasswordFlag = flags&0x40 > 0
	pkt.UsernameFlag = flags&0x80 > 0

	if pkt.WillQoS == 3 {
		return fmt.Errorf("%w: will QoS 3", ErrMalformedPacket)
	}
	if !pkt.WillFlag && (pkt.WillQoS != 0 || pkt.WillRetain) {
		return fmt.Errorf("%w: will QoS/retain without will flag", ErrMalformedPacket)
	}
	if pkt.PasswordFlag && !pkt.UsernameFlag && pkt.Version != V5 {
		return fmt.Errorf("%w: password without username", ErrMalformedPacket)
	}

	if pkt.KeepAlive, err = r.ReadUint16(); err != nil {
		return err
	}
	if pkt.Version == V5 {
		p := &ConnectProperties{}
		if err := p.Unpack(r); err != nil {
			return err
		}
		pkt.Properties = p
	}
	if pkt.ClientID, err = r.ReadString(); err != nil {
		return err
	}
	if pkt.WillFlag {
		if pkt.Version == V5 {
			wp := &WillProperties{}
			if err := wp.Unpack(r); err != nil {
				return err
			}
			pkt.WillProperties = wp
		}
		if pkt.WillTopic, err = r.ReadString(); err != nil {
			return err
		}
		if err := ValidateTopicName(pkt.WillTopic); err != nil {
			return err
		}
		if pkt.WillPayload, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	if pkt.UsernameFlag {
		if pkt.Username, err = r.ReadString(); err != nil {
			return err
		}
	}
	if pkt.PasswordFlag {
		if pkt.Password, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	return nil
}

// Details returns packet metadata for QoS handling.
func (pkt *Connect) Details() Details {
	return Details{Type: ConnectType}
}

// Reset clears the packet for pool reuse.
func (pkt *Connect) Reset() {
	*pkt = Connect{FixedHeader: FixedHeader{PacketType: ConnectType}}
}
