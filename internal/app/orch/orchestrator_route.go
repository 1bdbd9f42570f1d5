package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// checkSender binds an authorization-gated message to the registered
// identity of its connection.
func checkSender(s *Session, env *domain.Envelope) error {
	if env.Sender != s.client.Identity {
		return fmt.Errorf("%w: sender %q on connection of %q", domain.ErrAuthorization, env.Sender, s.client.Identity)
	}
	return nil
}

func (o *Orchestrator) probe(ctx context.Context, s *Session, env *domain.Envelope) error {
	if s.client.Role != domain.RoleViewer {
		return fmt.Errorf("%w: camera-setup from %s", domain.ErrProtocol, s.client.Role)
	}
	var p domain.CameraProbe
	if err := env.DecodeData(&p); err != nil {
		return err
	}
	if env.Sender != s.client.Identity {
		return fmt.Errorf("%w: probe sender %q on connection of %q", domain.ErrAuthentication, env.Sender, s.client.Identity)
	}
	if err := o.Gate.AuthenticateViewer(ctx, env.Sender, p.Token); err != nil {
		return err
	}

	reply := domain.TypeProbeError
	if o.Registry.IsCameraConnected(p.CameraID) {
		reply = domain.TypeProbeSuccess
	}
	log.Info().Str("module", "orch").Str("viewer", string(env.Sender)).Str("camera", string(p.CameraID)).Str("result", string(reply)).Msg("camera probe")
	o.sendTo(s.signal, s.client, domain.Reply(reply, env.Sender))
	return nil
}

func (o *Orchestrator) routeOffer(ctx context.Context, s *Session, env *domain.Envelope, raw []byte) error {
	if s.client.Role != domain.RoleViewer {
		return fmt.Errorf("%w: offer from %s", domain.ErrAuthorization, s.client.Role)
	}
	return o.viewerToCamera(ctx, s, env, raw)
}

func (o *Orchestrator) routeAnswer(ctx context.Context, s *Session, env *domain.Envelope, raw []byte) error {
	if s.client.Role != domain.RoleCamera {
		return fmt.Errorf("%w: answer from %s", domain.ErrAuthorization, s.client.Role)
	}
	if err := checkSender(s, env); err != nil {
		return err
	}
	// The target is the viewer here, so the arguments swap.
	if err := o.Gate.Authorize(ctx, env.Target, env.Sender); err != nil {
		return err
	}
	return o.forward(env, domain.RoleViewer, raw)
}

// routeCandidate is checked from the viewer side only. A registered camera may
// send candidates to any connected viewer.
func (o *Orchestrator) routeCandidate(ctx context.Context, s *Session, env *domain.Envelope, raw []byte) error {
	if s.client.Role == domain.RoleViewer {
		return o.viewerToCamera(ctx, s, env, raw)
	}
	if err := checkSender(s, env); err != nil {
		return err
	}
	return o.forward(env, domain.RoleViewer, raw)
}

func (o *Orchestrator) viewerToCamera(ctx context.Context, s *Session, env *domain.Envelope, raw []byte) error {
	if err := checkSender(s, env); err != nil {
		return err
	}
	if err := o.Gate.Authorize(ctx, env.Sender, env.Target); err != nil {
		return err
	}
	return o.forward(env, domain.RoleCamera, raw)
}

// forward relays the original frame unchanged to the target's channel.
func (o *Orchestrator) forward(env *domain.Envelope, role domain.Role, raw []byte) error {
	target, ok := o.Registry.Lookup(env.Target, role)
	if !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrTargetNotFound, role, env.Target)
	}
	log.Debug().Str("module", "orch").Str("type", string(env.Type)).Str("sender", string(env.Sender)).Str("target", string(env.Target)).Msg("forward")
	o.deliver(target.Signal(), target, core.Frame(raw))
	return nil
}
