package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) register(ctx context.Context, s *Session, env *domain.Envelope) error {
	if err := env.Sender.Validate(); err != nil {
		return fmt.Errorf("%w: register: %w", domain.ErrProtocol, err)
	}
	role, ok := env.ClaimedRole()
	if !ok {
		return fmt.Errorf("%w: register with unknown role %q", domain.ErrProtocol, env.ClientType+env.Role)
	}
	// Identity and role are fixed once bound; a repeated register may only
	// refresh the same binding.
	if bound := s.client; bound != nil && (bound.Identity != env.Sender || bound.Role != role) {
		return fmt.Errorf("%w: re-register as %s/%s on connection bound to %s/%s",
			domain.ErrProtocol, role, env.Sender, bound.Role, bound.Identity)
	}
	if !o.Limiter.Allow(s.Remote) {
		return fmt.Errorf("%w: too many failed register attempts from %s", domain.ErrAuthentication, s.Remote)
	}

	var err error
	switch role {
	case domain.RoleViewer:
		err = o.registerViewer(ctx, s, env)
	default:
		err = o.registerCamera(s, env)
	}
	if errors.Is(err, domain.ErrAuthentication) {
		o.Limiter.Fail(s.Remote)
	}
	return err
}

func (o *Orchestrator) registerViewer(ctx context.Context, s *Session, env *domain.Envelope) error {
	var p domain.ViewerRegistration
	if err := env.DecodeData(&p); err != nil {
		return err
	}
	if err := o.Gate.AuthenticateViewer(ctx, env.Sender, p.Token); err != nil {
		return err
	}

	c := core.NewViewer(env.Sender, !p.InRegistrationProcess, p.RegisteredCameras, s.signal)
	o.bind(s, c)
	log.Info().
		Str("module", "orch").
		Str("conn", s.ID).
		Str("viewer", string(c.Identity)).
		Bool("verified", c.Verified).
		Int("claimed_cameras", len(c.ClaimedCameras)).
		Msg("viewer registered")
	return nil
}

func (o *Orchestrator) registerCamera(s *Session, env *domain.Envelope) error {
	var p domain.CameraRegistration
	if err := env.DecodeData(&p); err != nil {
		return err
	}
	if !o.Gate.ValidateCameraToken(env.Sender, p.Token) {
		return fmt.Errorf("%w: camera %s token mismatch", domain.ErrAuthentication, env.Sender)
	}

	c := core.NewCamera(env.Sender, s.signal)
	o.bind(s, c)
	log.Info().Str("module", "orch").Str("conn", s.ID).Str("camera", string(c.Identity)).Msg("camera registered")
	o.sendTo(s.signal, c, domain.Reply(domain.TypeCameraRegisterAck, c.Identity))
	return nil
}

func (o *Orchestrator) bind(s *Session, c *core.ClientConnection) {
	if s.client != nil {
		o.Registry.UnregisterConn(s.client)
	}
	if prev := o.Registry.Register(c); prev != nil {
		log.Info().Str("module", "orch").Str("conn", s.ID).Str("id", string(c.Identity)).Str("role", string(c.Role)).Msg("previous connection orphaned")
	}
	s.client = c
	s.state = StateRegistered
}
