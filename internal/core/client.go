package core

import (
	"slices"

	"github.com/dkeye/CamRelay/internal/domain"
)

// ClientConnection is a registered viewer or camera. Identity and role never
// change after construction; a new registration builds a new value.
type ClientConnection struct {
	Identity domain.ClientID
	Role     domain.Role
	// Verified is false while a viewer is still pairing its first camera.
	Verified bool
	// ClaimedCameras is self-reported by the viewer and only drives the
	// disconnect cascade.
	ClaimedCameras []domain.ClientID

	signal SignalConnection
}

func NewViewer(id domain.ClientID, verified bool, claimed []domain.ClientID, sc SignalConnection) *ClientConnection {
	return &ClientConnection{
		Identity:       id,
		Role:           domain.RoleViewer,
		Verified:       verified,
		ClaimedCameras: dedupe(claimed),
		signal:         sc,
	}
}

func NewCamera(id domain.ClientID, sc SignalConnection) *ClientConnection {
	return &ClientConnection{
		Identity: id,
		Role:     domain.RoleCamera,
		signal:   sc,
	}
}

func (c *ClientConnection) Signal() SignalConnection { return c.signal }

func dedupe(ids []domain.ClientID) []domain.ClientID {
	out := make([]domain.ClientID, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
