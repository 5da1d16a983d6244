// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

func TestPropertiesDuplicateRejected(t *testing.T) {
	// PUBLISH with Payload Format Indicator twice.
	data := mustHex(t, "30 08 00 01 74 04 01 01 01 00")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestPropertiesDuplicateUserAllowed(t *testing.T) {
	pkt := &Publish{
		FixedHeader: FixedHeader{PacketType: PublishType},
		Version:     V5,
		TopicName:   "t",
		Properties:  &PublishProperties{User: []User{{"k", "1"}, {"k", "2"}}},
	}
	encoded, err := pkt.Encode()
	require.NoError(t, err)

	decoded, _, err := Decode(V5, encoded)
	require.NoError(t, err)
	assert.Equal(t, []User{{"k", "1"}, {"k", "2"}}, decoded.(*Publish).Properties.User)
}

func TestPropertiesUnknownID(t *testing.T) {
	// Property id 0x7F is not in the v5 table.
	data := mustHex(t, "30 06 00 01 74 02 7F 00")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestPropertiesMisplacedID(t *testing.T) {
	// Maximum QoS (0x24) belongs to CONNACK, not PUBLISH.
	data := mustHex(t, "30 06 00 01 74 02 24 01")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestPropertiesLengthMismatch(t *testing.T) {
	// Property length claims 4 bytes but the section holds a property
	// needing 5 (message expiry u32).
	data := mustHex(t, "30 08 00 01 74 04 02 00 00 00")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestPropertiesCanonicalOrder(t *testing.T) {
	p := &PublishProperties{
		TopicAlias:    u16(2),
		PayloadFormat: u8(1),
		User:          []User{{"k", "v"}},
		ContentType:   "x",
	}
	content := p.Encode()

	// Ascending identifier order with user properties last.
	assert.Equal(t, byte(PayloadFormatProp), content[0])
	assert.Equal(t, byte(ContentTypeProp), content[2])
	assert.Equal(t, byte(TopicAliasProp), content[6])
	assert.Equal(t, byte(UserProp), content[9])
	assert.Equal(t, p.encodedLen(), len(content))
}

func TestPropertiesEncodedLen(t *testing.T) {
	props := []interface {
		Encode() []byte
	}{
		&ConnectProperties{SessionExpiryInterval: u32(9), AuthMethod: "m", AuthData: []byte{1}, User: []User{{"a", "b"}}},
		&WillProperties{WillDelayInterval: u32(1), ContentType: "c"},
		&ConnAckProperties{MaxQoS: u8(1), AssignedClientID: "id", SharedSubAvailable: u8(0)},
		&PublishProperties{SubscriptionIdentifier: vi(300), CorrelationData: []byte{1, 2}},
		&SubscribeProperties{SubscriptionIdentifier: vi(1)},
		&UnsubscribeProperties{User: []User{{"x", "y"}}},
		&DisconnectProperties{ServerReference: "other", SessionExpiryInterval: u32(0)},
		&AuthProperties{AuthMethod: "m", ReasonString: "r"},
		&BasicProperties{ReasonString: "why", User: []User{{"u", "v"}}},
	}
	type sized interface{ encodedLen() int }
	for _, p := range props {
		assert.Equal(t, p.(sized).encodedLen(), len(p.Encode()), "%T", p)
	}
}

func TestReadPropsBounded(t *testing.T) {
	// The section reader must not see bytes past the declared length.
	var raw []byte
	raw = append(raw, codec.EncodeVBI(2)...)
	raw = append(raw, PayloadFormatProp, 1)
	raw = append(raw, 0xAA, 0xBB)

	r := codec.NewReader(raw)
	pr, err := readProps(r)
	require.NoError(t, err)
	assert.Equal(t, 2, pr.Remaining())
	assert.Equal(t, 2, r.Remaining())
}
