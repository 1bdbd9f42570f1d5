package core

import "context"

//go:generate mockgen -source=auth_iface.go -destination=mocks/authority_mock.go -package=mocks

// Authority is the account system as seen by the relay. Implementations may
// block on remote lookups; an error is always treated as a deny.
type Authority interface {
	// AuthenticateViewerToken checks a short-lived message token.
	AuthenticateViewerToken(ctx context.Context, viewer, token string) (bool, error)
	// IsViewerAuthorizedForCamera reports camera ownership / ACL.
	IsViewerAuthorizedForCamera(ctx context.Context, viewer, camera string) (bool, error)
}
