// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// WebSocketReader adapts a WebSocket connection carrying binary MQTT
// frames into an io.Reader, so a Decoder can run over it. MQTT packets
// may span or share WebSocket messages; the adapter flattens message
// boundaries into a plain byte stream.
type WebSocketReader struct {
	conn *websocket.Conn
	buf  []byte
}

// NewWebSocketReader creates a reader over an established connection.
// The caller keeps ownership of the connection and its close handling.
func NewWebSocketReader(conn *websocket.Conn) *WebSocketReader {
	return &WebSocketReader{conn: conn}
}

// Read implements io.Reader. Text frames are a protocol violation for
// MQTT over WebSocket and surface as an error.
func (r *WebSocketReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		messageType, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return 0, io.EOF
			}
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			return 0, fmt.Errorf("stream: unexpected websocket message type %d", messageType)
		}
		r.buf = data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
