// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishTopicWildcardRejected(t *testing.T) {
	// Topic "a/+" in a publish.
	data := mustHex(t, "30 05 00 03 61 2F 2B")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestPublishEmptyTopicV3(t *testing.T) {
	data := mustHex(t, "30 02 00 00")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestPublishEmptyTopicV5RequiresAlias(t *testing.T) {
	// Empty topic, empty properties.
	data := mustHex(t, "30 03 00 00 00")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	// Empty topic with Topic Alias 4.
	data = mustHex(t, "30 06 00 00 03 23 00 04")
	pkt, _, err := Decode(V5, data)
	require.NoError(t, err)
	p := pkt.(*Publish)
	assert.Equal(t, "", p.TopicName)
	require.NotNil(t, p.Properties.TopicAlias)
	assert.Equal(t, uint16(4), *p.Properties.TopicAlias)
}

func TestPublishZeroPacketID(t *testing.T) {
	data := mustHex(t, "32 05 00 01 74 00 00")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestPublishTopicAliasZero(t *testing.T) {
	data := mustHex(t, "30 07 00 01 74 03 23 00 00")
	_, _, err := Decode(V5, data)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestPublishEmptyPayload(t *testing.T) {
	pkt := &Publish{
		FixedHeader: FixedHeader{PacketType: PublishType},
		Version:     V311,
		TopicName:   "t",
	}
	encoded, err := pkt.Encode()
	require.NoError(t, err)

	decoded, _, err := Decode(V311, encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded.(*Publish).Payload)
}

func TestPublishPayloadOwned(t *testing.T) {
	data := mustHex(t, "30 08 00 04 74 65 73 74 68 69")

	pkt, _, err := Decode(V311, data)
	require.NoError(t, err)

	data[len(data)-1] = 'o'
	assert.Equal(t, []byte("hi"), pkt.(*Publish).Payload)
}

func TestPublishEncodeRejectsInvariantViolations(t *testing.T) {
	tests := map[string]*Publish{
		"qos3": {
			FixedHeader: FixedHeader{PacketType: PublishType, QoS: 3},
			Version:     V311, TopicName: "t", ID: 1,
		},
		"dup-on-qos0": {
			FixedHeader: FixedHeader{PacketType: PublishType, Dup: true},
			Version:     V311, TopicName: "t",
		},
		"zero-id": {
			FixedHeader: FixedHeader{PacketType: PublishType, QoS: 1},
			Version:     V311, TopicName: "t",
		},
		"wildcard-topic": {
			FixedHeader: FixedHeader{PacketType: PublishType},
			Version:     V311, TopicName: "t/#",
		},
		"null-topic": {
			FixedHeader: FixedHeader{PacketType: PublishType},
			Version:     V311, TopicName: "t\x00t",
		},
		"props-under-v3": {
			FixedHeader: FixedHeader{PacketType: PublishType},
			Version:     V311, TopicName: "t",
			Properties: &PublishProperties{PayloadFormat: u8(1)},
		},
	}
	for name, pkt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pkt.Encode()
			assert.ErrorIs(t, err, ErrEncode)
		})
	}
}

func TestAckShortAndLongForms(t *testing.T) {
	// Long form: reason code + empty properties.
	long := mustHex(t, "50 04 00 09 10 00")
	pkt, _, err := Decode(V5, long)
	require.NoError(t, err)
	rec := pkt.(*PubRec)
	assert.Equal(t, uint16(9), rec.ID)
	require.NotNil(t, rec.ReasonCode)
	assert.Equal(t, RCNoMatchingSubscribers, *rec.ReasonCode)

	// Short form emitted for success with no properties.
	ack := &PubAck{
		FixedHeader: FixedHeader{PacketType: PubAckType},
		Version:     V5,
		ackBody:     ackBody{ID: 9},
	}
	encoded, err := ack.Encode()
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "40 02 00 09"), encoded)
}

func TestAckZeroPacketID(t *testing.T) {
	for _, data := range [][]byte{
		mustHex(t, "40 02 00 00"),
		mustHex(t, "62 02 00 00"),
	} {
		_, _, err := Decode(V311, data)
		assert.ErrorIs(t, err, ErrProtocolError)
	}
}

func TestPubRelRoundTripFlags(t *testing.T) {
	pkt := &PubRel{
		FixedHeader: FixedHeader{PacketType: PubRelType},
		Version:     V5,
		ackBody:     ackBody{ID: 2},
	}
	encoded, err := pkt.Encode()
	require.NoError(t, err)
	assert.Equal(t, byte(0x62), encoded[0])
}

func TestDisconnectV5DefaultReason(t *testing.T) {
	pkt, _, err := Decode(V5, mustHex(t, "E0 00"))
	require.NoError(t, err)
	assert.Equal(t, RCSuccess, pkt.(*Disconnect).ReasonCode)

	pkt, _, err = Decode(V5, mustHex(t, "E0 01 8B"))
	require.NoError(t, err)
	assert.Equal(t, RCServerShuttingDown, pkt.(*Disconnect).ReasonCode)
}

func TestDisconnectV3BodyMustBeEmpty(t *testing.T) {
	_, _, err := Decode(V311, mustHex(t, "E0 01 00"))
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestAuthRequiresV5(t *testing.T) {
	data := mustHex(t, "F0 01 18")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrProtocolError)

	pkt, _, err := Decode(V5, data)
	require.NoError(t, err)
	assert.Equal(t, RCContinueAuthentication, pkt.(*Auth).ReasonCode)
}
