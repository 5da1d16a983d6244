// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTopicName(t *testing.T) {
	valid := []string{"a", "a/b", "a/b/c", "/", "sport/tennis/player1", "日本/テニス"}
	for _, topic := range valid {
		assert.NoError(t, ValidateTopicName(topic), "topic %q", topic)
	}

	invalid := []string{"", "a/+", "#", "sport/#", "+", "a#b", "a\x00b"}
	for _, topic := range invalid {
		assert.Error(t, ValidateTopicName(topic), "topic %q", topic)
	}
}

func TestValidateTopicFilter(t *testing.T) {
	valid := []string{
		"a", "a/b", "#", "+", "a/#", "a/+/c", "+/+/+", "/",
		"sport/tennis/player1/#", "$SYS/#",
	}
	for _, filter := range valid {
		assert.NoError(t, ValidateTopicFilter(filter), "filter %q", filter)
	}

	invalid := []string{
		"", "a/#/b", "#/a", "a+", "+a", "a/b+", "sport/+#", "a\x00b",
	}
	for _, filter := range invalid {
		assert.Error(t, ValidateTopicFilter(filter), "filter %q", filter)
	}
}
