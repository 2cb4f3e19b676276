package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/services"
	"github.com/dsmirnov/padkeeper/internal/server/session"
)

type registerRequest struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

// ConfirmToken is only set when signup confirmation is enabled; the
// platform around this core mails it to the new account, the core never
// sends mail itself.
type registerResponse struct {
	Login        string `json:"login"`
	Active       bool   `json:"active"`
	ConfirmToken string `json:"confirm_token,omitempty"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

type profileRequest struct {
	Email            *string `json:"email,omitempty"`
	Firstname        *string `json:"firstname,omitempty"`
	Lastname         *string `json:"lastname,omitempty"`
	UseLoginAndColor *bool   `json:"use_login_and_color,omitempty"`
	PadNickname      *string `json:"pad_nickname,omitempty"`
	Color            *string `json:"color,omitempty"`
}

type profileResponse struct {
	Login       string `json:"login"`
	Email       string `json:"email"`
	Firstname   string `json:"firstname,omitempty"`
	Lastname    string `json:"lastname,omitempty"`
	PadNickname string `json:"pad_nickname,omitempty"`
	Color       string `json:"color,omitempty"`
}

type passwordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

type recoveryStartRequest struct {
	Ref string `json:"ref"`
}

type recoveryStartResponse struct {
	Token string `json:"token"`
}

type recoveryCompleteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	identity, token, err := s.accounts.Register(r.Context(), req.Login, req.Email, req.Password, req.Firstname, req.Lastname)
	if err != nil {
		s.writeAccountError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Login:        identity.Login,
		Active:       identity.Active,
		ConfirmToken: token,
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	if err := s.accounts.Confirm(r.Context(), req.Token); err != nil {
		s.writeAccountError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.userSession(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	identity, err := s.accounts.UpdateProfile(r.Context(), rec.Login, services.ProfileUpdate{
		Email:            req.Email,
		Firstname:        req.Firstname,
		Lastname:         req.Lastname,
		UseLoginAndColor: req.UseLoginAndColor,
		PadNickname:      req.PadNickname,
		Color:            req.Color,
	})
	if err != nil {
		s.writeAccountError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Login:       identity.Login,
		Email:       identity.Email,
		Firstname:   identity.Firstname,
		Lastname:    identity.Lastname,
		PadNickname: identity.PadNickname,
		Color:       identity.Color,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.userSession(w, r)
	if !ok {
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), rec.Login, req.Current, req.New); err != nil {
		s.writeAccountError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.userSession(w, r)
	if !ok {
		return
	}

	if err := s.accounts.Delete(r.Context(), rec.Login); err != nil {
		s.writeAccountError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecoveryStart(w http.ResponseWriter, r *http.Request) {
	var req recoveryStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ref == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	token, err := s.accounts.StartPasswordRecovery(r.Context(), req.Ref)
	if err != nil {
		s.writeAccountError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recoveryStartResponse{Token: token})
}

func (s *Server) handleRecoveryComplete(w http.ResponseWriter, r *http.Request) {
	var req recoveryCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{})
		return
	}

	if err := s.accounts.CompletePasswordRecovery(r.Context(), req.Token, req.Password); err != nil {
		s.writeAccountError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userSession resolves the bearer token to a regular-user session or writes
// a 401. Admin sessions have no account behind them and do not qualify.
func (s *Server) userSession(w http.ResponseWriter, r *http.Request) (session.Record, bool) {
	rec, ns, ok := s.sessions.WhoAmI(bearerToken(r))
	if !ok || ns != auth.NamespaceUser {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: common.ReasonMustBeAuthenticated})
		return session.Record{}, false
	}
	return rec, true
}

// writeAccountError maps account-service errors to statuses, attaching a
// stable reason code where one exists.
func (s *Server) writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Reason: common.ReasonNotFound})
	case errors.Is(err, common.ErrorBadSecret):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Reason: common.ReasonPasswordIncorrect})
	case errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{})
	default:
		s.logger.Error(r.Context(), "account operation failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{})
	}
}
