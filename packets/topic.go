// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"strings"

	"github.com/akasamq/mqtt-proto/packets/codec"
)

// ValidateTopicName checks a topic name as carried by PUBLISH and will
// messages: 1..65535 bytes, valid UTF-8 without U+0000, and no wildcard
// characters.
func ValidateTopicName(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic name", ErrMalformedPacket)
	}
	if len(topic) > 65535 {
		return fmt.Errorf("%w: topic name exceeds 65535 bytes", ErrMalformedPacket)
	}
	if err := codec.ValidateUTF8String(topic); err != nil {
		return err
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcard in topic name %q", ErrMalformedPacket, topic)
	}
	return nil
}

// ValidateTopicFilter checks a subscription topic filter: 1..65535 bytes,
// valid UTF-8 without U+0000, "#" only as the final level and "+" only as
// a whole level.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("%w: empty topic filter", ErrMalformedPacket)
	}
	if len(filter) > 65535 {
		return fmt.Errorf("%w: topic filter exceeds 65535 bytes", ErrMalformedPacket)
	}
	if err := codec.ValidateUTF8String(filter); err != nil {
		return err
	}
	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return fmt.Errorf("%w: multi-level wildcard not last in %q", ErrMalformedPacket, filter)
			}
		case level == "+":
			// single-level wildcard occupies the whole level
		case strings.ContainsAny(level, "+#"):
			return fmt.Errorf("%w: wildcard mixed into level %q of %q", ErrMalformedPacket, level, filter)
		}
	}
	return nil
}
