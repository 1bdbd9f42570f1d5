package app

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Gate is the credential gate in front of every registration and every
// authorization-gated message. It holds no state besides the shared secret;
// every answer is recomputed and every failure is a deny.
type Gate struct {
	secret  []byte
	auth    core.Authority
	timeout time.Duration
}

func NewGate(sharedSecret string, auth core.Authority, timeout time.Duration) *Gate {
	return &Gate{secret: []byte(sharedSecret), auth: auth, timeout: timeout}
}

// CameraToken is hex(HMAC-SHA256(secret, cameraID)), the credential a camera
// presents on registration.
func CameraToken(secret string, cameraID domain.ClientID) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(cameraID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *Gate) ValidateCameraToken(cameraID domain.ClientID, token string) bool {
	if len(g.secret) == 0 || token == "" {
		return false
	}
	expected := CameraToken(string(g.secret), cameraID)
	return hmac.Equal([]byte(expected), []byte(token))
}

// AuthenticateViewer returns nil only when the account system positively
// confirms the token.
func (g *Gate) AuthenticateViewer(ctx context.Context, viewer domain.ClientID, token string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	ok, err := g.auth.AuthenticateViewerToken(ctx, string(viewer), token)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gate").Str("viewer", string(viewer)).Msg("authenticate viewer token")
		return fmt.Errorf("%w: %w: %v", domain.ErrAuthentication, domain.ErrCapability, err)
	}
	if !ok {
		return fmt.Errorf("%w: viewer %s", domain.ErrAuthentication, viewer)
	}
	return nil
}

// Authorize returns nil only when viewer is allowed to use camera.
func (g *Gate) Authorize(ctx context.Context, viewer, camera domain.ClientID) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	ok, err := g.auth.IsViewerAuthorizedForCamera(ctx, string(viewer), string(camera))
	if err != nil {
		log.Error().Err(err).Str("module", "app.gate").Str("viewer", string(viewer)).Str("camera", string(camera)).Msg("authorize viewer")
		return fmt.Errorf("%w: %w: %v", domain.ErrAuthorization, domain.ErrCapability, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s for %s", domain.ErrAuthorization, viewer, camera)
	}
	return nil
}

func (g *Gate) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
