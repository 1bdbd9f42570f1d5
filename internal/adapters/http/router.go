package http

import (
	"context"
	"net/http"

	"github.com/dkeye/CamRelay/internal/adapters/rtc"
	"github.com/dkeye/CamRelay/internal/adapters/signal"
	"github.com/dkeye/CamRelay/internal/app/orch"
	"github.com/dkeye/CamRelay/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	secure := cfg.Mode == "release"
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(cookieOptions(secure, 24*60*60))
	r.Use(sessions.Sessions("CamRelaySession", store))

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
		log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("serving static files")
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
		PingPeriod: cfg.PingPeriod,
	})
	r.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	status := &statusHandler{orch: o, secure: secure}
	api.POST("/camera-status", status.cameraStatus)
	api.POST("/logout", status.logout)

	iceServers := rtc.ICEServers(cfg.ICEServers)
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
	})

	api.GET("/connections", func(c *gin.Context) {
		c.JSON(http.StatusOK, o.Registry.Counts())
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
