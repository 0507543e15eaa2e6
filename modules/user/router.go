package user

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authkit/pkg/hmacsig"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/passreset"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// Handle builds the module router. Refresh sits behind HMAC request
// authentication; the password reset endpoints are public by nature, the
// requester has no session yet.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Group(func(signed chi.Router) {
		signed.Use(hmacsig.MiddlewareWithConfig(hmacsig.MiddlewareConfig{
			Resolver:   NewSessionResolver(s.sessions),
			DateWindow: s.dateWindow,
		}))
		signed.Post("/refresh", s.refresh)
	})

	r.Post("/password/reset-init", s.resetInit)
	r.Post("/password/reset", s.resetPassword)

	return r
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenBundle is the refresh result: a fully rotated set of session secrets.
type tokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IKM          string `json:"ikm"`
	ExpiresAt    int64  `json:"expires_at"`
}

// refresh rotates the caller's session. A refresh token that does not match a
// live session answers data:false rather than 401: the request itself proved
// possession of valid signing material, only the payload token is bad.
func (s *Service) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	fresh, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			respondData(w, false)
			return
		}
		s.internalError(w, "refresh", err)
		return
	}

	respondData(w, tokenBundle{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		IKM:          fresh.EncodedIKM(),
		ExpiresAt:    fresh.ExpiresAt.Unix(),
	})
}

type resetInitRequest struct {
	Email string `json:"email"`
}

func (s *Service) resetInit(w http.ResponseWriter, r *http.Request) {
	var req resetInitRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	intent, err := s.reset.ValidateInit(r.Context(), passreset.InitRequest{Email: req.Email})
	if err != nil {
		if errs := validator.ExtractValidationErrors(err); errs != nil {
			respondInvalid(w, errs.Map())
			return
		}
		s.internalError(w, "password reset init", err)
		return
	}

	if _, err := s.reset.ExecuteInit(r.Context(), intent); err != nil {
		s.internalError(w, "password reset init", err)
		return
	}

	respondData(w, true)
}

type resetPasswordRequest struct {
	ResetToken     string `json:"reset_token"`
	Password       string `json:"password"`
	PasswordVerify string `json:"password_verify"`
	OTP            string `json:"otp"`
}

func (s *Service) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	intent, err := s.reset.ValidateReset(r.Context(), passreset.ResetRequest{
		ResetToken:     req.ResetToken,
		Password:       req.Password,
		PasswordVerify: req.PasswordVerify,
		OTP:            req.OTP,
	})
	if err != nil {
		if errs := validator.ExtractValidationErrors(err); errs != nil {
			respondInvalid(w, errs.Map())
			return
		}
		s.internalError(w, "password reset", err)
		return
	}

	if err := s.reset.ExecuteReset(r.Context(), intent); err != nil {
		// Losing the redemption race after validation is a user-visible
		// outcome, not a server fault.
		if errors.Is(err, passreset.ErrCodeAlreadyUsed) {
			respondInvalid(w, map[string][]string{
				"reset_token": {"Invalid or already used reset token"},
			})
			return
		}
		s.internalError(w, "password reset", err)
		return
	}

	respondData(w, true)
}

// decodeBody parses a JSON request body into dst. An empty body is not an
// error; the zero request fails validation with proper field messages instead.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Service) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("account api operation failed",
		slog.String("operation", op),
		logger.Error(err),
		logger.Component("user"),
	)
	respondInternalError(w)
}
