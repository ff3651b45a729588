package handlers

import (
	"net/http"
	"time"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/middleware"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// Login godoc
// @Summary Log in through the remote catalog and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "email and password"
// @Success 200 {object} LoginResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse "Remote catalog rejected the login"
// @Router /login [post]
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	session, err := s.catalog.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	token, expires, err := s.issuer.Issue(session)
	if err != nil {
		logFrom(r).Error().Err(err).Msg("failed to issue access token")
		response.Error(w, appErrors.InternalError("failed to issue access token").WithError(err))
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      session.User,
	})
}

// Register godoc
// @Summary Register a new account on the remote catalog
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body RegisterRequest true "email and password"
// @Success 201 {object} RegisterResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse "Remote catalog rejected the registration"
// @Router /register [post]
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg, err := s.catalog.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	if msg == "" {
		msg = "user registered"
	}

	_ = response.WriteJSON(w, http.StatusCreated, RegisterResult{Message: msg})
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.ErrorResponse
// @Router /logout [post]
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, appErrors.UnauthorizedError("missing access token"))
		return
	}

	until := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(r.Context(), claims.ID, until); err != nil {
		logFrom(r).Error().Err(err).Str("token_id", claims.ID).Msg("failed to revoke token")
		response.Error(w, appErrors.InternalError("failed to revoke token").WithError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /me [get]
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, appErrors.UnauthorizedError("missing access token"))
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, models.User{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	})
}
