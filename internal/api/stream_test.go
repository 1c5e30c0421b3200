package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestStreamWebSocket(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(http.HandlerFunc(s.StreamHandler))
	defer srv.Close()

	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_test")
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "connection_init"}))
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "connection_ack", msg.Type)

	require.NoError(t, conn.WriteJSON(wsMessage{
		Type:    "subscribe",
		ID:      "1",
		Payload: json.RawMessage(`{"events":["evaluation.completed"]}`),
	}))
	time.Sleep(50 * time.Millisecond)

	// A filtered-out type must not reach the client.
	s.Broker.Publish("t_test", Event{Type: "scenario.analyzed", Data: map[string]any{}})
	s.Broker.Publish("t_test", Event{Type: "evaluation.completed", Data: map[string]any{"routeId": "RT-9"}})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "next", msg.Type)
	require.Equal(t, "1", msg.ID)
	var evt Event
	require.NoError(t, json.Unmarshal(msg.Payload, &evt))
	require.Equal(t, "evaluation.completed", evt.Type)
	require.Equal(t, "RT-9", evt.Data["routeId"])

	// complete tears the subscription down; the fan-out acknowledges it.
	require.NoError(t, conn.WriteJSON(wsMessage{Type: "complete", ID: "1"}))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "complete", msg.Type)
	require.Equal(t, "1", msg.ID)
}
