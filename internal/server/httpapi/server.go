// Package httpapi exposes the authorization core over HTTP: session
// endpoints under /api/auth, account lifecycle under /api/accounts and
// the pad access resolver under /api/pads.
// The API is deliberately thin; every decision is made in the services
// layer and only translated to statuses and JSON here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dsmirnov/padkeeper/internal/logging"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/services"
)

type Server struct {
	address  string
	logger   logging.Logger
	sessions *services.SessionService
	access   *services.AccessService
	accounts *services.AccountService
	limiter  *loginLimiter
}

func NewServer(cfg *config.Config, l logging.Logger, sessions *services.SessionService, access *services.AccessService, accounts *services.AccountService) *Server {
	return &Server{
		address:  cfg.EndpointAddr,
		logger:   l.With("module", "http_server"),
		sessions: sessions,
		access:   access,
		accounts: accounts,
		limiter:  newLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/whoami", s.handleWhoAmI)
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleRegister)
			r.Post("/confirm", s.handleConfirm)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/password", s.handleChangePassword)
			r.Delete("/", s.handleDeleteAccount)
			r.Post("/recovery", s.handleRecoveryStart)
			r.Post("/recovery/complete", s.handleRecoveryComplete)
		})
		r.Get("/pads/{id}/access", s.handleAccess)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
