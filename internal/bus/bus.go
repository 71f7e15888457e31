package bus

// MessageBus decouples channel adapters from the host core.
//
// Adapters push ChannelMessages; the host consumes them from InboundChan.
// The channel is buffered so adapters never block on a slow consumer as
// long as the buffer has room.
type MessageBus struct {
	inbound chan ChannelMessage
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{inbound: make(chan ChannelMessage, bufSize)}
}

// PublishInbound delivers a message from an adapter to the host.
func (b *MessageBus) PublishInbound(msg ChannelMessage) {
	b.inbound <- msg
}

// InboundChan returns a receive-only view of the inbound channel.
func (b *MessageBus) InboundChan() <-chan ChannelMessage {
	return b.inbound
}

// InboundSize reports how many messages are currently queued.
func (b *MessageBus) InboundSize() int { return len(b.inbound) }
