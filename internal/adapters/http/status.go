package http

import (
	"net/http"

	"github.com/dkeye/CamRelay/internal/app/orch"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionViewerKey = "viewer"

type statusHandler struct {
	orch   *orch.Orchestrator
	secure bool
}

// cookieOptions keeps the session cookie off plain HTTP when secure is set.
func cookieOptions(secure bool, maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type cameraStatusRequest struct {
	Viewer  string `json:"viewer"`
	Token   string `json:"token"`
	Cameras []struct {
		ID string `json:"id"`
	} `json:"cameras"`
}

type CameraStatus struct {
	ID          string `json:"id"`
	IsConnected bool   `json:"isConnected"`
}

// viewer resolves the caller from the cookie session, or from a viewer token
// in the body, which then logs the session in.
func (h *statusHandler) viewer(c *gin.Context, req *cameraStatusRequest) (domain.ClientID, bool) {
	sess := sessions.Default(c)
	if v, ok := sess.Get(sessionViewerKey).(string); ok && v != "" {
		return domain.ClientID(v), true
	}
	if req.Viewer == "" || req.Token == "" {
		return "", false
	}
	id := domain.ClientID(req.Viewer)
	if err := h.orch.Gate.AuthenticateViewer(c.Request.Context(), id, req.Token); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("viewer", req.Viewer).Msg("camera-status auth")
		return "", false
	}
	sess.Set(sessionViewerKey, req.Viewer)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	return id, true
}

func (h *statusHandler) cameraStatus(c *gin.Context) {
	var req cameraStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	viewer, ok := h.viewer(c, &req)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	out := make([]CameraStatus, 0, len(req.Cameras))
	for _, cam := range req.Cameras {
		out = append(out, CameraStatus{
			ID:          cam.ID,
			IsConnected: h.orch.Registry.IsCameraConnected(domain.ClientID(cam.ID)),
		})
	}
	log.Debug().Str("module", "adapters.http").Str("viewer", string(viewer)).Int("cameras", len(out)).Msg("camera status")
	c.JSON(http.StatusOK, out)
}

func (h *statusHandler) logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(cookieOptions(h.secure, -1))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.Status(http.StatusNoContent)
}
