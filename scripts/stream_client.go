// Package main runs a demo WebSocket client for planning events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/stream"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	pl, _ := json.Marshal(map[string]any{"events": []string{}})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger an evaluation so an event lands on the stream.
	time.Sleep(500 * time.Millisecond)
	body := []byte(`{
	  "tenantId": "t_demo",
	  "route": {
	    "id": "RT-demo",
	    "vehicle": {"type": "cargo_van", "maxVolumeFt3": 450, "maxWeightLb": 3500, "maxPallets": 0},
	    "stops": [
	      {"id": "s1", "serviceType": "residential", "items": [{"sizeCategory": "medium", "quantity": 2}]},
	      {"id": "s2", "serviceType": "commercial", "items": [{"sizeCategory": "large", "quantity": 1}]}
	    ],
	    "drivingTimeMin": 95
	  }
	}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var ev struct {
		Feasible bool `json:"feasible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		log.Fatal(err)
	}
	log.Printf("evaluation feasible=%v", ev.Feasible)

	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
