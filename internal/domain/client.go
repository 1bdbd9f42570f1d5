// Package domain contains entities and wire types without logic.
package domain

import "errors"

const MaxClientIDLen = 64

var (
	ErrClientIDEmpty   = errors.New("client id empty")
	ErrClientIDTooLong = errors.New("client id too long")
)

// ClientID is the identity a viewer or camera registers under.
// It is unique within its role's namespace only.
type ClientID string

// ServerID is the sender of every message the relay builds itself.
const ServerID ClientID = "server"

func (id ClientID) Validate() error {
	if len(id) == 0 {
		return ErrClientIDEmpty
	}
	if len(id) > MaxClientIDLen {
		return ErrClientIDTooLong
	}
	return nil
}

type Role string

const (
	RoleViewer Role = "viewer"
	RoleCamera Role = "camera"
)

// ParseRole maps a wire clientType to a Role. Older viewer clients announce
// themselves as "user".
func ParseRole(s string) (Role, bool) {
	switch s {
	case "viewer", "user":
		return RoleViewer, true
	case "camera":
		return RoleCamera, true
	}
	return "", false
}
