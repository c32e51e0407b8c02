package core

import (
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

// Notifier delivers events to connections. Delivery is best effort: a
// connection that is gone or too slow simply misses the message.
type Notifier interface {
	// Emit sends to one connection and reports whether it was queued.
	Emit(to domain.UserID, event protocol.Event, payload any) bool
	// EmitMany sends the same message to every listed connection and returns
	// how many were queued. Payload is encoded once.
	EmitMany(to []domain.UserID, event protocol.Event, payload any) int
	// Broadcast sends to every bound connection.
	Broadcast(event protocol.Event, payload any) int
}
