package orch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/CamRelay/internal/app"
	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator drives sessions through registration and routes their
// messages. Registry is its only shared state.
type Orchestrator struct {
	Registry *app.Registry
	Gate     *app.Gate
	Policy   app.Policy
	// Limiter bounds failed register attempts per remote address; nil
	// disables it.
	Limiter *app.RateLimiter
}

// HandleMessage processes one inbound frame. Calls for the same session must
// not overlap.
func (o *Orchestrator) HandleMessage(ctx context.Context, s *Session, raw []byte) {
	if s.state == StateClosed {
		return
	}
	env, err := domain.DecodeEnvelope(raw)
	if err != nil {
		o.fail(s, nil, err)
		return
	}

	kind := env.Type.Kind()
	if kind == domain.KindRegister {
		o.fail(s, env, o.register(ctx, s, env))
		return
	}
	if s.state != StateRegistered {
		o.fail(s, env, fmt.Errorf("%w: %s before register", domain.ErrProtocol, env.Type))
		return
	}

	switch kind {
	case domain.KindCameraSetup:
		err = o.probe(ctx, s, env)
	case domain.KindOffer:
		err = o.routeOffer(ctx, s, env, raw)
	case domain.KindAnswer:
		err = o.routeAnswer(ctx, s, env, raw)
	case domain.KindICECandidate:
		err = o.routeCandidate(ctx, s, env, raw)
	default:
		err = fmt.Errorf("%w: unknown message type %q", domain.ErrProtocol, env.Type)
	}
	o.fail(s, env, err)
}

// fail applies the error taxonomy: authentication and protocol failures close
// the session, a missing target is reported to the sender, authorization
// failures are only logged.
func (o *Orchestrator) fail(s *Session, env *domain.Envelope, err error) {
	if err == nil {
		return
	}
	ev := log.Warn().Err(err).Str("module", "orch").Str("conn", s.ID)
	if env != nil {
		ev = ev.Str("type", string(env.Type)).Str("sender", string(env.Sender)).Str("target", string(env.Target))
	}

	switch {
	case errors.Is(err, domain.ErrAuthentication), errors.Is(err, domain.ErrProtocol):
		ev.Msg("closing connection")
		s.Close()
	case errors.Is(err, domain.ErrTargetNotFound):
		ev.Msg("target not found")
		o.sendTo(s.signal, nil, domain.ErrorReply(env.Sender, err.Error()))
	case errors.Is(err, domain.ErrAuthorization):
		ev.Msg("message dropped")
	default:
		ev.Msg("message failed")
	}
}

// sendTo marshals and queues msg. target, when known, feeds the backpressure
// policy.
func (o *Orchestrator) sendTo(sc core.SignalConnection, target *core.ClientConnection, msg domain.Envelope) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal reply")
		return
	}
	o.deliver(sc, target, b)
}

func (o *Orchestrator) deliver(sc core.SignalConnection, target *core.ClientConnection, f core.Frame) {
	err := sc.TrySend(f)
	if err == nil {
		return
	}
	ev := log.Warn().Err(err).Str("module", "orch")
	if target == nil {
		ev.Msg("send failed")
		return
	}
	ev = ev.Str("target", string(target.Identity)).Str("role", string(target.Role))
	if o.Policy != nil && o.Policy.OnBackPressure(target) == app.KickConnection {
		ev.Msg("send failed, kicking target")
		sc.Close()
		return
	}
	ev.Msg("send failed, message dropped")
}
