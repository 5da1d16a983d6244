// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasamq/mqtt-proto/packets"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mqttdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	v, err := cfg.ProtocolVersion()
	require.NoError(t, err)
	assert.Equal(t, packets.VersionAuto, v)
	assert.Equal(t, "-", cfg.Input.Path)
	assert.Equal(t, "binary", cfg.Input.Format)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input:
  path: capture.bin
  format: hex
decode:
  version: "5.0"
  max_packet_size: 65536
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "capture.bin", cfg.Input.Path)
	assert.Equal(t, "hex", cfg.Input.Format)
	assert.Equal(t, 65536, cfg.Decode.MaxPacketSize)
	assert.Equal(t, "debug", cfg.Log.Level)

	v, err := cfg.ProtocolVersion()
	require.NoError(t, err)
	assert.Equal(t, packets.V5, v)
}

func TestLoadInvalidFormat(t *testing.T) {
	path := writeConfig(t, "input:\n  format: base64\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidVersion(t *testing.T) {
	path := writeConfig(t, "decode:\n  version: \"6.0\"\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestProtocolVersions(t *testing.T) {
	tests := map[string]byte{
		"auto":  packets.VersionAuto,
		"":      packets.VersionAuto,
		"3.1":   packets.V31,
		"3.1.1": packets.V311,
		"4":     packets.V311,
		"5":     packets.V5,
		"5.0":   packets.V5,
	}
	for in, want := range tests {
		cfg := Default()
		cfg.Decode.Version = in
		v, err := cfg.ProtocolVersion()
		require.NoError(t, err, "version %q", in)
		assert.Equal(t, want, v, "version %q", in)
	}
}
