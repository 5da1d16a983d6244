// Copyright (c) akasamq
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasamq/mqtt-proto/packets"
)

func wsServer(t *testing.T, send func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		send(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketReaderDecodesPackets(t *testing.T) {
	want := samplePackets()
	raw := encodeAll(t, want...)

	// Split the byte stream across websocket messages without regard for
	// packet boundaries.
	url := wsServer(t, func(conn *websocket.Conn) {
		mid := len(raw) / 2
		_ = conn.WriteMessage(websocket.BinaryMessage, raw[:mid])
		_ = conn.WriteMessage(websocket.BinaryMessage, raw[mid:])
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	dec := NewDecoder(NewWebSocketReader(conn), packets.V311)
	defer dec.Close()

	for i := range want {
		pkt, err := dec.Next()
		require.NoError(t, err, "packet %d", i)
		assert.Equal(t, want[i], pkt)
	}
}

func TestWebSocketReaderRejectsTextFrames(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not mqtt"))
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	r := NewWebSocketReader(conn)
	buf := make([]byte, 16)
	_, err = r.Read(buf)
	assert.Error(t, err)
}
