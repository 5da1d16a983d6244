// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectV31ProtocolName(t *testing.T) {
	pkt := &Connect{
		FixedHeader: FixedHeader{PacketType: ConnectType},
		Version:     V31,
		CleanStart:  true,
		KeepAlive:   15,
		ClientID:    "c31",
	}
	encoded, err := pkt.Encode()
	require.NoError(t, err)

	// "MQIsdp" with level 3.
	assert.Equal(t, []byte{0x00, 0x06, 'M', 'Q', 'I', 's', 'd', 'p', 0x03}, encoded[2:11])

	decoded, _, err := Decode(VersionAuto, encoded)
	require.NoError(t, err)
	assert.Equal(t, V31, decoded.(*Connect).Version)
}

func TestConnectBadProtocolName(t *testing.T) {
	data := mustHex(t, "10 0C 00 04 4D 51 54 51 04 02 00 3C 00 00") // "MQTQ"
	_, _, err := Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrInvalidProtocolName)
}

func TestConnectBadProtocolLevel(t *testing.T) {
	data := mustHex(t, "10 0C 00 04 4D 51 54 54 06 02 00 3C 00 00") // "MQTT" level 6
	_, _, err := Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrInvalidProtocolLevel)

	data = mustHex(t, "10 0E 00 06 4D 51 49 73 64 70 04 02 00 3C 00 00") // "MQIsdp" level 4
	_, _, err = Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrInvalidProtocolLevel)
}

func TestConnectReservedFlagBit(t *testing.T) {
	data := mustHex(t, "10 0C 00 04 4D 51 54 54 04 03 00 3C 00 00")
	_, _, err := Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestConnectWillQoS3(t *testing.T) {
	// Will flag set, will QoS bits = 3.
	data := mustHex(t, "10 0C 00 04 4D 51 54 54 04 1E 00 3C 00 00")
	_, _, err := Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestConnectWillFlagsWithoutWill(t *testing.T) {
	// Will retain without will flag.
	data := mustHex(t, "10 0C 00 04 4D 51 54 54 04 22 00 3C 00 00")
	_, _, err := Decode(VersionAuto, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestConnectPasswordWithoutUsername(t *testing.T) {
	// Password flag only: rejected before v5, decodable in v5.
	v311 := mustHex(t, "10 12 00 04 4D 51 54 54 04 42 00 3C 00 00 00 04 70 61 73 73")
	_, _, err := Decode(VersionAuto, v311)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	v5 := mustHex(t, "10 13 00 04 4D 51 54 54 05 42 00 3C 00 00 00 00 04 70 61 73 73")
	pkt, _, err := Decode(VersionAuto, v5)
	require.NoError(t, err)
	c := pkt.(*Connect)
	assert.True(t, c.PasswordFlag)
	assert.False(t, c.UsernameFlag)
	assert.Equal(t, []byte("pass"), c.Password)
}

func TestConnectEncodeRejectsV5FieldsUnderV3(t *testing.T) {
	pkt := &Connect{
		FixedHeader: FixedHeader{PacketType: ConnectType},
		Version:     V311,
		ClientID:    "c",
		Properties:  &ConnectProperties{SessionExpiryInterval: u32(1)},
	}
	_, err := pkt.Encode()
	assert.ErrorIs(t, err, ErrEncode)
}

func TestConnectEncodeRejectsBadWill(t *testing.T) {
	pkt := &Connect{
		FixedHeader: FixedHeader{PacketType: ConnectType},
		Version:     V311,
		ClientID:    "c",
		WillFlag:    true,
		WillTopic:   "bad/+/topic",
		WillQoS:     1,
	}
	_, err := pkt.Encode()
	assert.ErrorIs(t, err, ErrEncode)
}

func TestConnectEmptyClientIDWithoutCleanSession(t *testing.T) {
	// MQTT 3.1 leaves acceptance to the server; the codec must decode it.
	pkt := &Connect{
		FixedHeader: FixedHeader{PacketType: ConnectType},
		Version:     V311,
		CleanStart:  false,
		KeepAlive:   5,
	}
	encoded, err := pkt.Encode()
	require.NoError(t, err)

	decoded, _, err := Decode(VersionAuto, encoded)
	require.NoError(t, err)
	c := decoded.(*Connect)
	assert.Equal(t, "", c.ClientID)
	assert.False(t, c.CleanStart)
}

func TestConnAckBadReturnCodeV3(t *testing.T) {
	data := mustHex(t, "20 02 00 06")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestConnAckReservedFlags(t *testing.T) {
	data := mustHex(t, "20 02 02 00")
	_, _, err := Decode(V311, data)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}
