// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

// Package pool provides sync.Pool-based allocators for MQTT packets and
// decode buffers. Use it in high-throughput scenarios (brokers, bridges)
// to reduce GC pressure.
//
// Usage:
//
//	pkt := pool.AcquirePublish()
//	defer pool.Release(pkt)
//	// use pkt...
//
// Important: Never use a packet after releasing it back to the pool.
package pool

import (
	"sync"

	"github.com/akasamq/mqtt-proto/packets"
)

var packetPools = map[byte]*sync.Pool{
	packets.ConnectType: {New: func() any {
		return &packets.Connect{FixedHeader: packets.FixedHeader{PacketType: packets.ConnectType}}
	}},
	packets.ConnAckType: {New: func() any {
		return &packets.ConnAck{FixedHeader: packets.FixedHeader{PacketType: packets.ConnAckType}}
	}},
	packets.PublishType: {New: func() any {
		return &packets.Publish{FixedHeader: packets.FixedHeader{PacketType: packets.PublishType}}
	}},
	packets.PubAckType: {New: func() any {
		return &packets.PubAck{FixedHeader: packets.FixedHeader{PacketType: packets.PubAckType}}
	}},
	packets.PubRecType: {New: func() any {
		return &packets.PubRec{FixedHeader: packets.FixedHeader{PacketType: packets.PubRecType}}
	}},
	packets.PubRelType: {New: func() any {
		return &packets.PubRel{FixedHeader: packets.FixedHeader{PacketType: packets.PubRelType}}
	}},
	packets.PubCompType: {New: func() any {
		return &packets.PubComp{FixedHeader: packets.FixedHeader{PacketType: packets.PubCompType}}
	}},
	packets.SubscribeType: {New: func() any {
		return &packets.Subscribe{FixedHeader: packets.FixedHeader{PacketType: packets.SubscribeType}}
	}},
	packets.SubAckType: {New: func() any {
		return &packets.SubAck{FixedHeader: packets.FixedHeader{PacketType: packets.SubAckType}}
	}},
	packets.UnsubscribeType: {New: func() any {
		return &packets.Unsubscribe{FixedHeader: packets.FixedHeader{PacketType: packets.UnsubscribeType}}
	}},
	packets.UnsubAckType: {New: func() any {
		return &packets.UnsubAck{FixedHeader: packets.FixedHeader{PacketType: packets.UnsubAckType}}
	}},
	packets.PingReqType: {New: func() any {
		return &packets.PingReq{FixedHeader: packets.FixedHeader{PacketType: packets.PingReqType}}
	}},
	packets.PingRespType: {New: func() any {
		return &packets.PingResp{FixedHeader: packets.FixedHeader{PacketType: packets.PingRespType}}
	}},
	packets.DisconnectType: {New: func() any {
		return &packets.Disconnect{FixedHeader: packets.FixedHeader{PacketType: packets.DisconnectType}}
	}},
	packets.AuthType: {New: func() any {
		return &packets.Auth{FixedHeader: packets.FixedHeader{PacketType: packets.AuthType}}
	}},
}

// AcquireByType gets a packet of the specified type from the appropriate
// pool. Returns nil for unknown packet types.
func AcquireByType(packetType byte) packets.ControlPacket {
	p, ok := packetPools[packetType]
	if !ok {
		return nil
	}
	return p.Get().(packets.ControlPacket)
}

// Release resets a packet and returns it to its pool. The packet must not
// be used after calling this function.
func Release(pkt packets.ControlPacket) {
	p, ok := packetPools[pkt.Type()]
	if !ok {
		return
	}
	if r, ok := pkt.(packets.Resetter); ok {
		r.Reset()
	}
	p.Put(pkt)
}

// AcquireConnect gets a Connect packet from the pool.
func AcquireConnect() *packets.Connect {
	return AcquireByType(packets.ConnectType).(*packets.Connect)
}

// AcquireConnAck gets a ConnAck packet from the pool.
func AcquireConnAck() *packets.ConnAck {
	return AcquireByType(packets.ConnAckType).(*packets.ConnAck)
}

// AcquirePublish gets a Publish packet from the pool.
func AcquirePublish() *packets.Publish {
	return AcquireByType(packets.PublishType).(*packets.Publish)
}

// AcquireSubscribe gets a Subscribe packet from the pool.
func AcquireSubscribe() *packets.Subscribe {
	return AcquireByType(packets.SubscribeType).(*packets.Subscribe)
}
