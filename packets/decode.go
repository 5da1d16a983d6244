// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"bytes"
	"fmt"
	"io"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// Decode parses one packet from the front of data and returns it together
// with the number of bytes consumed. A short input yields an
// IncompleteError whose Need field is a lower bound on the missing bytes
// (exact once the Remaining Length has been parsed); the function never
// reads past the Remaining Length. The version selects the body grammar
// for every type except CONNECT, which identifies its own version.
func Decode(version byte, data []byte) (ControlPacket, int, error) {
	fh, hdrLen, err := decodeFixedHeader(data)
	if err != nil {
		return nil, 0, err
	}

	total := hdrLen + fh.RemainingLength
	if len(data) < total {
		return nil, 0, &IncompleteError{Need: total - len(data)}
	}

	cp, err := NewControlPacketWithHeader(fh, version)
	if err != nil {
		return nil, 0, err
	}

	r := codec.NewReader(data[hdrLen:total])
	if err := cp.Unpack(r, version); err != nil {
		return nil, 0, bodyErr(err)
	}
	if r.Remaining() != 0 {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes after %s body",
			ErrMalformedPacket, r.Remaining(), PacketNames[fh.PacketType])
	}
	return cp, total, nil
}

// ReadPacket reads one packet from a blocking reader. It reads exactly the
// fixed header plus Remaining Length bytes, so consecutive packets on the
// same stream are framed correctly.
func ReadPacket(r io.Reader, version byte) (ControlPacket, error) {
	hdr := make([]byte, 1, 5)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	// Remaining Length, one byte at a time until the continuation bit clears.
	for i := 0; i < 4; i++ {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		hdr = append(hdr, b[0])
		if b[0]&0x80 == 0 {
			break
		}
	}

	fh, hdrLen, err := decodeFixedHeader(hdr)
	if err != nil {
		if _, incomplete := NeedsMore(err); incomplete {
			return nil, ErrMalformedVarInt
		}
		return nil, err
	}

	buf := make([]byte, hdrLen+fh.RemainingLength)
	copy(buf, hdr)
	if _, err := io.ReadFull(r, buf[hdrLen:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	cp, _, err := Decode(version, buf)
	return cp, err
}

// ReadPacketBytes parses one packet from data without copying the PUBLISH
// payload: the returned packet's Payload points into data and is only
// valid as long as data is not modified or reused. Everything else,
// including error semantics, matches Decode.
func ReadPacketBytes(version byte, data []byte) (ControlPacket, int, error) {
	fh, hdrLen, err := decodeFixedHeader(data)
	if err != nil {
		return nil, 0, err
	}

	total := hdrLen + fh.RemainingLength
	if len(data) < total {
		return nil, 0, &IncompleteError{Need: total - len(data)}
	}

	if fh.PacketType != PublishType {
		return Decode(version, data)
	}

	pkt := &Publish{FixedHeader: fh, Version: version}
	r := codec.NewReader(data[hdrLen:total])
	if err := pkt.unpackBorrowed(r, version); err != nil {
		return nil, 0, bodyErr(err)
	}
	return pkt, total, nil
}

// Write encodes a packet and appends it to out, returning the extended
// slice. It is a convenience over ControlPacket.Encode for callers that
// batch several packets into one buffer.
func Write(out []byte, cp ControlPacket) ([]byte, error) {
	b, err := cp.Encode()
	if err != nil {
		return out, err
	}
	return append(out, b...), nil
}

// WriteTo encodes a packet into a bytes.Buffer.
func WriteTo(buf *bytes.Buffer, cp ControlPacket) error {
	b, err := cp.Encode()
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
