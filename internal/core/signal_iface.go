package core

// Frame is a raw text payload as it travels over a signaling connection.
type Frame []byte

// SignalConnection abstracts the outbound side of a client transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
