package feishu

import (
	"encoding/json"
	"log/slog"

	"github.com/tasknexus/tasknexus-feishu/internal/bus"
)

const eventMessageReceive = "im.message.receive_v1"

// inboundEvent mirrors the im.message.receive_v1 push event envelope.
type inboundEvent struct {
	Schema string `json:"schema"`
	Header struct {
		EventType string `json:"event_type"`
	} `json:"header"`
	Event struct {
		Message struct {
			MessageID   string `json:"message_id"`
			ChatID      string `json:"chat_id"`
			MessageType string `json:"message_type"`
			Content     string `json:"content"`
			CreateTime  string `json:"create_time"`
		} `json:"message"`
		Sender struct {
			SenderID struct {
				OpenID string `json:"open_id"`
			} `json:"sender_id"`
		} `json:"sender"`
	} `json:"event"`
}

// normalizeEvent projects a vendor event into the host's generic message
// shape. Only text payloads are decoded; other message types keep an empty
// Content so the envelope still reaches the consumer. The second return is
// false when the event must be dropped because its text payload is
// undecodable.
func normalizeEvent(ev inboundEvent, channelID string) (bus.ChannelMessage, bool) {
	m := ev.Event.Message

	content := ""
	if m.MessageType == "text" {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(m.Content), &body); err != nil {
			slog.Warn("feishu: undecodable text payload, dropping event",
				"message_id", m.MessageID, "err", err)
			return bus.ChannelMessage{}, false
		}
		content = body.Text
	}

	msg := bus.NewChannelMessage(channelID, m.ChatID, ev.Event.Sender.SenderID.OpenID, content)
	msg.Raw = map[string]any{
		"message_id":   m.MessageID,
		"message_type": m.MessageType,
		"create_time":  m.CreateTime,
	}
	return msg, true
}
