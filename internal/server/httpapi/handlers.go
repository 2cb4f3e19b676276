package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/services"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Admin    bool   `json:"admin,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type whoamiResponse struct {
	Login     string `json:"login"`
	Namespace string `json:"namespace"`
	Email     string `json:"email,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

type accessResponse struct {
	Decision     string           `json:"decision"`
	Reason       string           `json:"reason,omitempty"`
	SecretTarget string           `json:"secret_target,omitempty"`
	ReadOnly     bool             `json:"readonly"`
	Display      *displayResponse `json:"display,omitempty"`
}

type displayResponse struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// errorResponse carries a stable reason code when one applies; throttling
// and internal failures have no code of their own and send an empty body.
type errorResponse struct {
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Reason: common.ReasonNotFound})
		return
	}

	if !s.limiter.Allow(req.Login) {
		w.Header().Set("Retry-After", "10")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{})
		return
	}

	var (
		token string
		err   error
	)
	if req.Admin {
		token, err = s.sessions.AdminLogin(r.Context(), req.Login, req.Password)
	} else {
		token, err = s.sessions.Login(r.Context(), req.Login, req.Password)
	}
	if err != nil {
		status, reason := loginFailure(err)
		if status == http.StatusInternalServerError {
			s.logger.Error(r.Context(), "login failed", "error", err.Error())
		}
		writeJSON(w, status, errorResponse{Reason: reason})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// loginFailure maps a credential error to the HTTP status and stable reason
// code the routing layer branches on.
func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusUnauthorized, common.ReasonNotFound
	case errors.Is(err, common.ErrorBadSecret):
		return http.StatusUnauthorized, common.ReasonPasswordIncorrect
	case errors.Is(err, common.ErrorActivationNeeded):
		return http.StatusForbidden, common.ReasonActivationNeeded
	case errors.Is(err, common.ErrorDirectoryUnavailable):
		return http.StatusServiceUnavailable, common.ReasonDirectoryUnavailable
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Idempotent: logging out an already-dead token is still a success.
	s.sessions.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	rec, ns, ok := s.sessions.WhoAmI(bearerToken(r))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: common.ReasonMustBeAuthenticated})
		return
	}
	writeJSON(w, http.StatusOK, whoamiResponse{
		Login:     rec.Login,
		Namespace: string(ns),
		Email:     rec.Email,
		Firstname: rec.Firstname,
		Lastname:  rec.Lastname,
	})
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	padID := chi.URLParam(r, "id")
	caller := s.sessions.Caller(bearerToken(r))

	var secret *string
	if r.URL.Query().Has("secret") {
		v := r.URL.Query().Get("secret")
		secret = &v
	}
	forEdit := boolParam(r, "edit")

	d, err := s.access.Resolve(r.Context(), padID, caller, secret, forEdit)
	if err != nil {
		s.logger.Error(r.Context(), "access resolution failed", "pad", padID, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{})
		return
	}

	resp := accessResponse{
		Decision:     string(d.Outcome),
		Reason:       d.Reason,
		SecretTarget: string(d.SecretTarget),
		ReadOnly:     d.ReadOnly,
	}
	if d.Display != nil {
		resp.Display = &displayResponse{Name: d.Display.Name, Color: d.Display.Color}
	}

	writeJSON(w, decisionStatus(d), resp)
}

// decisionStatus maps a resolution outcome to its HTTP status: the routing
// layer in front of the pad platform keys off these.
func decisionStatus(d *services.Decision) int {
	switch d.Outcome {
	case services.OutcomeAllow:
		return http.StatusOK
	case services.OutcomeNeedSecret:
		return http.StatusUnauthorized
	case services.OutcomeDeny:
		if d.Reason == common.ReasonMustBeAuthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case services.OutcomePassThrough:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// boolParam reads a boolean query parameter. A bare `?edit` counts as
// true; an explicit value is parsed, so `?edit=false` is not an edit
// request. Unparseable values count as false.
func boolParam(r *http.Request, name string) bool {
	if !r.URL.Query().Has(name) {
		return false
	}
	v := r.URL.Query().Get(name)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
