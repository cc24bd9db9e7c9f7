package server

import (
	"encoding/json"
	"net/http"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/token"
	"github.com/pkg/errors"
)

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"app":    s.config.GetAppName(),
		})
	}
}

type createSessionRequest struct {
	Password string `json:"password"`
}

type createSessionResponse struct {
	SessionToken string `json:"session_token"`
}

// CreateSessionHandler verifies the user's password and opens a session for
// the calling client. Unknown users and wrong passwords are indistinguishable.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		userPID := r.PathValue(pathUserPID)
		ok, err := s.auth.VerifyPassword(r.Context(), userPID, req.Password)
		if errors.Is(err, autherr.ErrUserNotFound) {
			ok, err = false, nil
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			s.writeError(w, r, autherr.ErrInvalidCredentials)
			return
		}

		sessionPID, err := s.auth.CreateSession(r.Context(), userPID, ClientKeyFromContext(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set(HeaderSessionToken, sessionPID)
		writeJSON(w, http.StatusCreated, createSessionResponse{SessionToken: sessionPID})
	}
}

// CurrentSessionHandler answers once RequireSession has validated and refreshed the session.
func (s *Server) CurrentSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// RevokeSessionHandler logs the current session out.
func (s *Server) RevokeSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.RevokeSession(r.Context(), r.Header.Get(HeaderSessionToken)); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type tokenRequest struct {
	Type string `json:"type"`
}

type createTokenResponse struct {
	Token string     `json:"token"`
	Type  token.Type `json:"type"`
}

// CreateTokenHandler issues an email verification or password reset token.
func (s *Server) CreateTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ, err := decodeTokenType(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		tokenPID, err := s.auth.CreateToken(r.Context(), r.PathValue(pathUserPID), ClientKeyFromContext(r.Context()), typ)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, createTokenResponse{Token: tokenPID, Type: typ})
	}
}

type consumeTokenRequest struct {
	Type     string `json:"type"`
	Password string `json:"password,omitempty"` // new password, PASSWORD_RESET only
}

type consumeTokenResponse struct {
	Code            token.Code `json:"code"`
	SessionsRevoked int64      `json:"sessions_revoked,omitempty"`
}

// ConsumeTokenHandler redeems a token. A password reset token must carry the
// new password; redeeming it stores the password and logs the user out of
// every session.
func (s *Server) ConsumeTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req consumeTokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		typ, err := token.ParseType(req.Type)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var resp consumeTokenResponse
		userPID, tokenPID := r.PathValue(pathUserPID), r.PathValue(pathTokenPID)
		switch {
		case typ == token.PasswordReset && req.Password == "":
			err = autherr.Wrapf(autherr.ErrInvalidRequest, "password is required for %s", typ)
		case typ == token.PasswordReset:
			resp.Code, resp.SessionsRevoked, err = s.auth.ResetPassword(r.Context(), tokenPID, userPID, req.Password)
		case req.Password != "":
			err = autherr.Wrapf(autherr.ErrInvalidRequest, "password is not accepted for %s", typ)
		default:
			resp.Code, err = s.auth.ConsumeToken(r.Context(), tokenPID, userPID, typ)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		switch resp.Code {
		case token.Expired:
			s.writeError(w, r, autherr.ErrTokenExpired)
			return
		case token.Invalid:
			s.writeError(w, r, autherr.ErrInvalidToken)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SweepHandler runs the expiry sweep immediately.
func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sweeper == nil {
			writeJSONError(w, "sweeper_unavailable", "no sweeper is configured", http.StatusServiceUnavailable)
			return
		}
		res, err := s.sweeper.Run(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return autherr.Wrapf(autherr.ErrInvalidRequest, "decode body: %v", err)
	}
	return nil
}

func decodeTokenType(w http.ResponseWriter, r *http.Request) (token.Type, error) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	return token.ParseType(req.Type)
}
