package feishu

import "testing"

func makeEvent(msgType, content string) inboundEvent {
	var ev inboundEvent
	ev.Header.EventType = eventMessageReceive
	ev.Event.Message.MessageID = "om_abc123"
	ev.Event.Message.ChatID = "oc_chat1"
	ev.Event.Message.MessageType = msgType
	ev.Event.Message.Content = content
	ev.Event.Message.CreateTime = "1700000000000"
	ev.Event.Sender.SenderID.OpenID = "ou_sender1"
	return ev
}

func TestNormalizeEvent_Text(t *testing.T) {
	msg, ok := normalizeEvent(makeEvent("text", `{"text":"hello"}`), "feishu")
	if !ok {
		t.Fatal("expected a normalized message")
	}
	if msg.Content != "hello" {
		t.Errorf("expected content %q, got %q", "hello", msg.Content)
	}
	if msg.ChannelID != "feishu" {
		t.Errorf("expected channel %q, got %q", "feishu", msg.ChannelID)
	}
	if msg.ChatID != "oc_chat1" {
		t.Errorf("expected chat id %q, got %q", "oc_chat1", msg.ChatID)
	}
	if msg.SenderID != "ou_sender1" || msg.SenderName != "ou_sender1" {
		t.Errorf("sender name should default to sender id, got %q/%q", msg.SenderID, msg.SenderName)
	}
	if msg.Raw["message_type"] != "text" {
		t.Errorf("expected raw message_type %q, got %v", "text", msg.Raw["message_type"])
	}
	if msg.Raw["message_id"] != "om_abc123" {
		t.Errorf("expected raw message_id %q, got %v", "om_abc123", msg.Raw["message_id"])
	}
	if msg.Raw["create_time"] != "1700000000000" {
		t.Errorf("expected raw create_time preserved, got %v", msg.Raw["create_time"])
	}
}

func TestNormalizeEvent_NonTextKeepsEnvelope(t *testing.T) {
	msg, ok := normalizeEvent(makeEvent("image", `{"image_key":"img_v2_x"}`), "feishu")
	if !ok {
		t.Fatal("non-text events still produce a record")
	}
	if msg.Content != "" {
		t.Errorf("expected empty content for non-text message, got %q", msg.Content)
	}
	if msg.Raw["message_type"] != "image" {
		t.Errorf("expected raw message_type %q, got %v", "image", msg.Raw["message_type"])
	}
}

func TestNormalizeEvent_MalformedTextDropped(t *testing.T) {
	_, ok := normalizeEvent(makeEvent("text", `{not valid json`), "feishu")
	if ok {
		t.Error("malformed text payload must be dropped")
	}
}

func TestNormalizeEvent_EmptyTextField(t *testing.T) {
	msg, ok := normalizeEvent(makeEvent("text", `{}`), "feishu")
	if !ok {
		t.Fatal("valid JSON without a text field is still a record")
	}
	if msg.Content != "" {
		t.Errorf("expected empty content, got %q", msg.Content)
	}
}
