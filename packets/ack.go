// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// The PUBACK, PUBREC, PUBREL and PUBCOMP bodies share one grammar:
// a packet identifier, then under v5 an optional reason code and optional
// properties. A v5 body of just the identifier is the short form and
// means reason code 0x00 with no properties; it is accepted on decode and
// emitted on encode whenever permissible.

type ackBody struct {
	ID         uint16
	ReasonCode *byte
	Properties *BasicProperties
}

func (a *ackBody) unpack(r *codec.Reader, version byte) error {
	var err error
	if a.ID, err = r.ReadUint16(); err != nil {
		return err
	}
	if a.ID == 0 {
		return fmt.Errorf("%w: packet id 0", ErrProtocolError)
	}
	if version != V5 {
		if r.Remaining() != 0 {
			return fmt.Errorf("%w: %d trailing bytes in v3 acknowledgement", ErrMalformedPacket, r.Remaining())
		}
		return nil
	}
	if r.Remaining() == 0 {
		return nil // short form
	}
	rc, err := r.ReadByte()
	if err != nil {
		return err
	}
	a.ReasonCode = &rc
	if r.Remaining() == 0 {
		return nil
	}
	p := &BasicProperties{}
	if err := p.Unpack(r); err != nil {
		return err
	}
	a.Properties = p
	return nil
}

func (a *ackBody) encode(version byte) ([]byte, error) {
	if a.ID == 0 {
		return nil, fmt.Errorf("%w: packet id 0", ErrEncode)
	}
	if version != V5 {
		if a.ReasonCode != nil && *a.ReasonCode != RCSuccess {
			return nil, fmt.Errorf("%w: reason code requires MQTT 5.0", ErrEncode)
		}
		if a.Properties != nil {
			return nil, fmt.Errorf("%w: properties require MQTT 5.0", ErrEncode)
		}
		return codec.EncodeUint16(a.ID), nil
	}
	body := codec.EncodeUint16(a.ID)
	if (a.ReasonCode == nil || *a.ReasonCode == RCSuccess) && a.Properties.empty() {
		return body, nil // short form
	}
	rc := RCSuccess
	if a.ReasonCode != nil {
		rc = *a.ReasonCode
	}
	body = append(body, rc)
	if !a.Properties.empty() {
		body = append(body, wrapProps(a.Properties.Encode())...)
	}
	return body, nil
}

func (a *ackBody) encodedLen(version byte) int {
	if version != V5 {
		return 2
	}
	if (a.ReasonCode == nil || *a.ReasonCode == RCSuccess) && a.Properties.empty() {
		return 2
	}
	n := 3
	if !a.Properties.empty() {
		n += propsLen(a.Properties.encodedLen())
	}
	return n
}

func (a *ackBody) reason() byte {
	if a.ReasonCode == nil {
		return RCSuccess
	}
	return *a.ReasonCode
}

func ackString(fh FixedHeader, a *ackBody) string {
	return fmt.Sprintf("%s packet_id: %d reason_code: %d (%s)", fh, a.ID, a.reason(), ReasonCodeName(a.reason()))
}
