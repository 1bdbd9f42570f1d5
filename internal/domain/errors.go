package domain

import "errors"

// Failure classes of the relay. Handlers wrap these with context and the
// orchestrator decides close / drop / reply with errors.Is.
var (
	// ErrAuthentication closes the connection without a reply.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization drops the message; the connection stays open.
	ErrAuthorization = errors.New("not authorized")
	// ErrTargetNotFound is reported back to the sender.
	ErrTargetNotFound = errors.New("target not connected")
	// ErrProtocol closes the connection.
	ErrProtocol = errors.New("protocol violation")
	// ErrCapability is a failed call to the account system; treated as a deny.
	ErrCapability = errors.New("capability call failed")
)
