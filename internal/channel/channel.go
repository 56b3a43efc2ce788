// Package channel provides generic channel interfaces for decoupled
// cross-agent messaging, e.g. the charging-station reservation handshake.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)
	// TrySend delivers without blocking and reports whether the value was
	// accepted. Fire-and-forget senders use this so that a slow or absent
	// receiver can never stall the caller.
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
