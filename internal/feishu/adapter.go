// Package feishu implements the Feishu/Lark channel adapter: a websocket
// long connection for inbound push events and the Open Platform message
// API for outbound sends.
package feishu

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tasknexus/tasknexus-feishu/internal/bus"
	"github.com/tasknexus/tasknexus-feishu/internal/config"
)

const (
	channelID    = "feishu"
	channelLabel = "飞书"
)

// Channel bridges Feishu push events to the host's generic message shape.
// It implements channel.Plugin.
//
// The API client is built in Start on the caller's side and shared with
// Send; only the websocket transport lives on the connection goroutine.
type Channel struct {
	cfg    *config.FeishuConfig
	sup    *supervisor
	window *Window

	mu       sync.Mutex
	client   *Client
	callback func(bus.ChannelMessage)

	// newTransport is swapped in tests to avoid real network dials.
	newTransport func(*Client, func(json.RawMessage)) transport
}

func NewChannel(cfg *config.FeishuConfig) *Channel {
	return &Channel{
		cfg:    cfg,
		sup:    newSupervisor(),
		window: NewWindow(cfg.MessageCacheSize),
		newTransport: func(c *Client, onEvent func(json.RawMessage)) transport {
			return newWSTransport(c, onEvent)
		},
	}
}

func (c *Channel) ID() string    { return channelID }
func (c *Channel) Label() string { return channelLabel }

// State reports the current connection lifecycle state.
func (c *Channel) State() State { return c.sup.State() }

// OnMessage registers the consumer callback; the last registration wins.
// The callback runs on the connection goroutine, see channel.Plugin.
func (c *Channel) OnMessage(fn func(bus.ChannelMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = fn
}

// Start validates credentials, builds the API client, and runs the event
// connection under the supervisor. It blocks until the adapter is stopped,
// ctx is cancelled, or the connection dies; a startup failure is returned
// without any connection attempt left behind.
func (c *Channel) Start(ctx context.Context) error {
	if c.cfg.AppID == "" || c.cfg.AppSecret == "" {
		return ErrMissingCredentials
	}

	client := NewClient(c.cfg.AppID, c.cfg.AppSecret)
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	slog.Info("feishu: starting event connection", "app_id", c.cfg.AppID)
	return c.sup.Run(ctx, c.newTransport(client, c.handleEvent))
}

// Stop requests a cooperative shutdown. The websocket connection has no
// graceful close in this design; the read loop may keep running until
// process exit.
func (c *Channel) Stop() {
	c.sup.Stop()
	slog.Info("feishu: channel stopped")
}

// Send delivers a text message to the payload's chat. It reports false on
// any failure; errors are logged, never propagated.
func (c *Channel) Send(ctx context.Context, p bus.MessagePayload) bool {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		slog.Error("feishu: client not initialized")
		return false
	}

	if err := client.SendText(ctx, p.ChatID, p.Content); err != nil {
		slog.Error("feishu: send failed", "chat_id", p.ChatID, "err", err)
		return false
	}
	slog.Info("feishu: message sent", "chat_id", p.ChatID)
	return true
}

// handleEvent runs on the connection goroutine for every pushed event
// frame: dedup by message ID, normalize, hand to the consumer callback.
// Nothing may unwind into the transport's read loop.
func (c *Channel) handleEvent(data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("feishu: panic while handling event", "panic", r)
		}
	}()

	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Warn("feishu: undecodable event frame", "err", err)
		return
	}
	if ev.Header.EventType != eventMessageReceive {
		return
	}

	msgID := ev.Event.Message.MessageID
	if !c.window.Admit(msgID) {
		slog.Debug("feishu: duplicate message skipped", "message_id", msgID)
		return
	}

	msg, ok := normalizeEvent(ev, c.ID())
	if !ok {
		return
	}

	c.mu.Lock()
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}
