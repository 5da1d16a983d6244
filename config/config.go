// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

// Package config holds the configuration for the mqttdump tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akasamq/mqtt-proto/packets"
	"github.com/akasamq/mqtt-proto/stream"
)

// Config holds all configuration for mqttdump.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Decode DecodeConfig `yaml:"decode"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig selects where packets are read from and how they are
// framed on disk.
type InputConfig struct {
	// Path is the input file; "-" or empty reads stdin.
	Path string `yaml:"path"`
	// Format is "binary" for raw packet bytes or "hex" for hex text
	// (whitespace ignored).
	Format string `yaml:"format"`
}

// DecodeConfig controls the packet decoder.
type DecodeConfig struct {
	// Version is "3.1", "3.1.1", "5.0" or "auto". With "auto" the stream
	// must start with a CONNECT, whose protocol level then drives the
	// rest of the stream.
	Version string `yaml:"version"`
	// MaxPacketSize caps the accepted packet size in bytes; 0 means the
	// protocol maximum.
	MaxPacketSize int `yaml:"max_packet_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input:  InputConfig{Path: "-", Format: "binary"},
		Decode: DecodeConfig{Version: "auto", MaxPacketSize: stream.DefaultMaxPacketSize},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the YAML configuration file at path, applying defaults for
// absent fields.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Input.Format {
	case "", "binary", "hex":
	default:
		return fmt.Errorf("invalid input format %q", c.Input.Format)
	}
	if _, err := c.ProtocolVersion(); err != nil {
		return err
	}
	if c.Decode.MaxPacketSize < 0 || c.Decode.MaxPacketSize > stream.DefaultMaxPacketSize {
		return fmt.Errorf("invalid max_packet_size %d", c.Decode.MaxPacketSize)
	}
	return nil
}

// ProtocolVersion maps the configured version string to the protocol
// level constant.
func (c *Config) ProtocolVersion() (byte, error) {
	switch c.Decode.Version {
	case "", "auto":
		return packets.VersionAuto, nil
	case "3.1":
		return packets.V31, nil
	case "3.1.1", "4":
		return packets.V311, nil
	case "5", "5.0":
		return packets.V5, nil
	}
	return 0, fmt.Errorf("invalid protocol version %q", c.Decode.Version)
}
