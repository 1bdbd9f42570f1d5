package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/CamRelay/internal/accounts"
	router "github.com/dkeye/CamRelay/internal/adapters/http"
	"github.com/dkeye/CamRelay/internal/app"
	"github.com/dkeye/CamRelay/internal/app/orch"
	"github.com/dkeye/CamRelay/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString() + uuid.NewString()
		log.Warn().Msg("no session secret configured, sessions will not survive a restart")
	}

	store, err := seedAccounts(cfg.Accounts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed accounts")
	}

	policy, err := app.ParsePolicy(cfg.Backpressure)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backpressure policy")
	}

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Gate:     app.NewGate(cfg.SharedSecret, store, cfg.AuthTimeout),
		Policy:   policy,
		Limiter:  app.NewRateLimiter(cfg.RegisterLimit, cfg.RegisterInterval),
	}
	go sweepLimiter(ctx, o.Limiter, cfg.RegisterInterval)

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("CamRelay signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// seedAccounts loads the configured viewers into the in-memory authority.
// Accounts without a fixed token get a fresh one, logged once.
func seedAccounts(list []config.AccountConfig) (*accounts.Store, error) {
	store := accounts.NewStore()
	for _, a := range list {
		if err := store.AddAccount(a.Username, a.Cameras...); err != nil {
			return nil, err
		}
		cameras := store.Cameras(a.Username)
		if a.Token != "" {
			if err := store.SetToken(a.Username, a.Token); err != nil {
				return nil, err
			}
			log.Info().Str("username", a.Username).Strs("cameras", cameras).Msg("account seeded")
			continue
		}
		token, err := store.IssueToken(a.Username)
		if err != nil {
			return nil, err
		}
		log.Info().Str("username", a.Username).Strs("cameras", cameras).Str("token", token).Msg("account seeded, issued message token")
	}
	return store, nil
}

func sweepLimiter(ctx context.Context, rl *app.RateLimiter, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.Sweep()
		}
	}
}
