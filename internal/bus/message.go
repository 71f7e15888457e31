// Package bus defines the host-facing message shapes and the in-process
// bus that carries inbound chat messages from channel adapters to the host.
package bus

import "time"

// ChannelMessage is a platform-agnostic inbound chat message produced by a
// channel adapter. Once handed to the consumer it is owned by the caller;
// the adapter retains no reference.
type ChannelMessage struct {
	ChannelID  string         // adapter identifier, e.g. "feishu"
	ChatID     string         // chat / group / DM identifier within the platform
	SenderID   string         // sender identifier within the platform
	SenderName string         // display name; defaults to SenderID when no lookup is available
	Content    string         // decoded text content; empty for non-text messages
	Raw        map[string]any // platform-specific fields kept for downstream auditing
	Timestamp  time.Time      // when the adapter received the message
}

// NewChannelMessage creates a ChannelMessage with Timestamp set to now and
// SenderName defaulted to senderID.
func NewChannelMessage(channelID, chatID, senderID, content string) ChannelMessage {
	return ChannelMessage{
		ChannelID:  channelID,
		ChatID:     chatID,
		SenderID:   senderID,
		SenderName: senderID,
		Content:    content,
		Timestamp:  time.Now(),
	}
}

// Preview returns a short snippet of the message content for logging.
func (m ChannelMessage) Preview() string {
	preview := m.Content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}

// MessagePayload is an outbound message the host asks an adapter to deliver.
// It is owned by the caller of Send and read-only to the adapter.
type MessagePayload struct {
	ChatID  string // destination chat identifier
	Content string // text to send
}
