package orch

import (
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// OnDisconnect runs once the transport of s is gone. A viewer's claimed
// cameras are told to drop their peer connection; a camera leaving notifies
// nobody. An orphaned connection closing leaves the registry and the
// replacement's cameras alone.
func (o *Orchestrator) OnDisconnect(s *Session) {
	s.state = StateClosed
	c := s.client
	if c == nil {
		log.Info().Str("module", "orch").Str("conn", s.ID).Msg("unregistered connection closed")
		return
	}

	if !o.Registry.UnregisterConn(c) {
		log.Info().Str("module", "orch").Str("conn", s.ID).Str("id", string(c.Identity)).Msg("orphaned connection closed")
		return
	}
	if c.Role != domain.RoleViewer {
		return
	}

	for _, camID := range c.ClaimedCameras {
		cam, ok := o.Registry.Lookup(camID, domain.RoleCamera)
		if !ok {
			continue
		}
		log.Info().Str("module", "orch").Str("viewer", string(c.Identity)).Str("camera", string(camID)).Msg("close-webrtc")
		o.sendTo(cam.Signal(), cam, domain.Reply(domain.TypeCloseWebRTC, camID))
	}
}
