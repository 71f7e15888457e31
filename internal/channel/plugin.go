// Package channel defines the contract between the host and its chat
// channel adapters, plus the registry the host uses for discovery.
package channel

import (
	"context"

	"github.com/tasknexus/tasknexus-feishu/internal/bus"
)

// Plugin is the interface every chat-platform adapter must implement.
//
// Start blocks for the lifetime of the connection and returns when the
// adapter is stopped, the context is cancelled, or the connection dies.
// The callback registered via OnMessage is invoked from the adapter's own
// connection goroutine: it must either be safe to call concurrently with
// the host's work or re-dispatch onto the host's own execution context.
type Plugin interface {
	// ID returns the unique channel identifier (e.g. "feishu").
	ID() string
	// Label returns the human-readable channel name.
	Label() string
	// Start begins listening for incoming messages; it blocks until the
	// adapter is stopped or the connection is lost.
	Start(ctx context.Context) error
	// Stop requests a cooperative shutdown. It is advisory: the underlying
	// connection may keep running until process exit.
	Stop()
	// Send delivers an outbound message to the platform. It reports success
	// as a boolean and never panics; failures are logged by the adapter.
	Send(ctx context.Context, p bus.MessagePayload) bool
	// OnMessage registers the consumer callback for inbound messages.
	// Exactly one callback is active; the last registration wins.
	OnMessage(fn func(bus.ChannelMessage))
}
