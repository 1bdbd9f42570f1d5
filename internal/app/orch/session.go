package orch

import (
	"github.com/dkeye/CamRelay/internal/core"
	"github.com/google/uuid"
)

type State int

const (
	StateUnauthenticated State = iota
	StateRegistered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the relay-side state of one transport connection. It is driven
// by a single read loop, so its fields need no locking.
type Session struct {
	ID string
	// Remote is the peer address; it keys the registration failure limit.
	Remote string
	signal core.SignalConnection
	state  State
	client *core.ClientConnection
}

func NewSession(sc core.SignalConnection) *Session {
	return &Session{ID: uuid.NewString(), signal: sc}
}

func (s *Session) State() State { return s.state }

// Client is the registered identity bound to the session, nil before
// registration.
func (s *Session) Client() *core.ClientConnection { return s.client }

// Close forces the session into StateClosed and closes the transport.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.signal.Close()
}
