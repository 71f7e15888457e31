package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// wsTransport holds the Feishu event-subscription long connection: it
// discovers the endpoint, dials, answers pings, and hands event frames to
// onEvent synchronously so the read loop provides ordering and
// backpressure.
type wsTransport struct {
	client  *Client
	onEvent func(json.RawMessage)
}

func newWSTransport(client *Client, onEvent func(json.RawMessage)) *wsTransport {
	return &wsTransport{client: client, onEvent: onEvent}
}

// Run blocks for the lifetime of the connection. ready is called exactly
// once, after the dial succeeds. The read loop does not observe ctx once
// established; shutdown is cooperative and the connection ends with the
// process or a transport error.
func (t *wsTransport) Run(ctx context.Context, ready func()) error {
	wsURL, err := t.client.WebSocketURL(ctx)
	if err != nil {
		return fmt.Errorf("feishu: get ws endpoint: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("feishu: dial: %w", err)
	}
	defer conn.Close()

	ready()
	slog.Info("feishu: connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		switch frame.Type {
		case "ping":
			pong, _ := json.Marshal(map[string]any{"type": "pong"})
			_ = conn.WriteMessage(websocket.TextMessage, pong)
		case "event":
			t.onEvent(frame.Data)
		}
	}
}
