// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

// Command mqttdump decodes a stream of MQTT control packets from a file
// or stdin and prints one line per packet. It understands raw binary
// captures and hex dumps, all three protocol revisions, and reports the
// precise decode error (with the matching DISCONNECT reason code) when a
// stream is malformed.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akasamq/mqtt-proto/config"
	"github.com/akasamq/mqtt-proto/packets"
	"github.com/akasamq/mqtt-proto/stream"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	version := flag.String("version", "", "Protocol version: 3.1, 3.1.1, 5.0 or auto")
	format := flag.String("format", "", "Input format: binary or hex")
	maxSize := flag.Int("max-packet-size", 0, "Reject packets larger than this many bytes")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mqttdump: %v\n", err)
			os.Exit(2)
		}
	}
	if *version != "" {
		cfg.Decode.Version = *version
	}
	if *format != "" {
		cfg.Input.Format = *format
	}
	if *maxSize != 0 {
		cfg.Decode.MaxPacketSize = *maxSize
	}
	if args := flag.Args(); len(args) == 1 {
		cfg.Input.Path = args[0]
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "mqttdump: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Log.Level)
	if err := run(cfg, logger); err != nil {
		logger.Error("dump_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	in, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	version, err := cfg.ProtocolVersion()
	if err != nil {
		return err
	}

	dec := stream.NewDecoder(in, version, stream.WithMaxPacketSize(cfg.Decode.MaxPacketSize))
	defer dec.Close()

	var count int
	for {
		pkt, err := dec.Next()
		if errors.Is(err, io.EOF) {
			logger.Info("stream_complete", slog.Int("packets", count))
			return nil
		}
		if err != nil {
			rc := packets.ReasonCode(err)
			return fmt.Errorf("packet %d: %w (reason code 0x%02x %s)", count+1, err, rc, packets.ReasonCodeName(rc))
		}
		count++
		fmt.Println(pkt.String())

		// A leading CONNECT fixes the version for the rest of the stream.
		if c, ok := pkt.(*packets.Connect); ok && dec.Version() == packets.VersionAuto {
			dec.SetVersion(c.Version)
			logger.Debug("version_detected", slog.Int("level", int(c.Version)))
		}
	}
}

func openInput(in config.InputConfig) (io.ReadCloser, error) {
	var r io.ReadCloser = os.Stdin
	if in.Path != "" && in.Path != "-" {
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, err
		}
		r = f
	}
	if in.Format == "hex" {
		return &hexReadCloser{src: r}, nil
	}
	return r, nil
}

// hexReadCloser decodes whitespace-separated hex text into raw bytes.
type hexReadCloser struct {
	src     io.ReadCloser
	decoded []byte
	done    bool
}

func (h *hexReadCloser) Read(p []byte) (int, error) {
	if !h.done {
		raw, err := io.ReadAll(h.src)
		if err != nil {
			return 0, err
		}
		clean := strings.Join(strings.Fields(string(raw)), "")
		h.decoded, err = hex.DecodeString(clean)
		if err != nil {
			return 0, fmt.Errorf("hex input: %w", err)
		}
		h.done = true
	}
	if len(h.decoded) == 0 {
		return 0, io.EOF
	}
	n := copy(p, h.decoded)
	h.decoded = h.decoded[n:]
	return n, nil
}

func (h *hexReadCloser) Close() error {
	return h.src.Close()
}
