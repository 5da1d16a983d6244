// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Property identifier constants from the MQTT 5.0 property table.
const (
	PayloadFormatProp          byte = 1
	MessageExpiryProp          byte = 2
	ContentTypeProp            byte = 3
	ResponseTopicProp          byte = 8
	CorrelationDataProp        byte = 9
	SubscriptionIdentifierProp byte = 11
	SessionExpiryIntervalProp  byte = 17
	AssignedClientIDProp       byte = 18
	ServerKeepAliveProp        byte = 19
	AuthMethodProp             byte = 21
	AuthDataProp               byte = 22
	RequestProblemInfoProp     byte = 23
	WillDelayIntervalProp      byte = 24
	RequestResponseInfoProp    byte = 25
	ResponseInfoProp           byte = 26
	ServerReferenceProp        byte = 28
	ReasonStringProp           byte = 31
	ReceiveMaximumProp         byte = 33
	TopicAliasMaximumProp      byte = 34
	TopicAliasProp             byte = 35
	MaximumQOSProp             byte = 36
	RetainAvailableProp        byte = 37
	UserProp                   byte = 38
	MaximumPacketSizeProp      byte = 39
	WildcardSubAvailableProp   byte = 40
	SubIDAvailableProp         byte = 41
	SharedSubAvailableProp     byte = 42
)

// User represents a user property key-value pair (MQTT 5.0). User
// properties are the only property that may repeat within a property set.
type User struct {
	Key, Value string
}

func encodeUser(u User) []byte {
	ret := []byte{UserProp}
	ret = append(ret, codec.EncodeString(u.Key)...)
	ret = append(ret, codec.EncodeString(u.Value)...)
	return ret
}

func userLen(user []User) int {
	var n int
	for _, u := range user {
		n += 1 + codec.StringLen(u.Key) + codec.StringLen(u.Value)
	}
	return n
}

// knownProp reports whether id appears in the v5 property table at all.
func knownProp(id byte) bool {
	switch id {
	case PayloadFormatProp, MessageExpiryProp, ContentTypeProp,
		ResponseTopicProp, CorrelationDataProp, SubscriptionIdentifierProp,
		SessionExpiryIntervalProp, AssignedClientIDProp, ServerKeepAliveProp,
		AuthMethodProp, AuthDataProp, RequestProblemInfoProp,
		WillDelayIntervalProp, RequestResponseInfoProp, ResponseInfoProp,
		ServerReferenceProp, ReasonStringProp, ReceiveMaximumProp,
		TopicAliasMaximumProp, TopicAliasProp, MaximumQOSProp,
		RetainAvailableProp, UserProp, MaximumPacketSizeProp,
		WildcardSubAvailableProp, SubIDAvailableProp, SharedSubAvailableProp:
		return true
	}
	return false
}

// propErr classifies a property id that a packet's parser did not accept:
// ids outside the table are malformed, ids from the table that simply do
// not belong to this packet are a protocol error.
func propErr(id byte) error {
	if !knownProp(id) {
		return fmt.Errorf("%w: unknown property 0x%x", ErrMalformedPacket, id)
	}
	return fmt.Errorf("%w: property 0x%x not allowed here", ErrProtocolError, id)
}

// propSet tracks which non-repeatable property ids have been seen while
// parsing one property section.
type propSet [43]bool

// mark records id, failing with a protocol error on a duplicate of any
// property other than User Property.
func (s *propSet) mark(id byte) error {
	if !knownProp(id) {
		return propErr(id)
	}
	if id == UserProp {
		return nil
	}
	if s[id] {
		return fmt.Errorf("%w: duplicate property 0x%x", ErrProtocolError, id)
	}
	s[id] = true
	return nil
}

// readProps reads the VBI property-section length and returns a reader
// bounded to exactly that many bytes.
func readProps(r *codec.Reader) (*codec.Reader, error) {
	length, err := r.ReadVBI()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadN(length)
	if err != nil {
		return nil, err
	}
	return codec.NewReader(data), nil
}

// wrapProps prefixes encoded property content with its VBI length.
func wrapProps(content []byte) []byte {
	return append(codec.EncodeVBI(len(content)), content...)
}

// propsLen returns the wire length of a property section whose content is
// n bytes: the VBI length prefix plus the content.
func propsLen(n int) int {
	return codec.VBILen(n) + n
}

// BasicProperties is the property set of the acknowledgement family
// (PUBACK, PUBREC, PUBREL, PUBCOMP, SUBACK, UNSUBACK): a reason string
// plus user properties.
type BasicProperties struct {
	// ReasonString is a UTF8 string representing the reason associated with
	// this response, intended to be human readable for diagnostic purposes.
	ReasonString string
	// User is a slice of user provided properties (key and value).
	User []User
}

// Unpack parses the property section, length prefix included.
func (p *BasicProperties) Unpack(r *codec.Reader) error {
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
func (p *BasicProperties) Encode() []byte {
	var ret []byte
	if p.ReasonString != "" {
		ret = append(ret, ReasonStringProp)
		ret = append(ret, codec.EncodeString(p.ReasonString)...)
	}
	for _, u := range p.User {
		ret = append(ret, encodeUser(u)...)
	}
	return ret
}

func (p *BasicProperties) encodedLen() int {
	var n int
	if p.ReasonString != "" {
		n += 1 + codec.StringLen(p.ReasonString)
	}
	return n + userLen(p.User)
}

// empty reports whether encoding would produce no content, which permits
// the short form of the acknowledgement packets.
func (p *BasicProperties) empty() bool {
	return p == nil || (p.ReasonString == "" && len(p.User) == 0)
}
