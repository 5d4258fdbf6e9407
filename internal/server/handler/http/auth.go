// Package http provides HTTP handlers for sign-up, sign-in, sign-out
// and the locations table of the marker service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/MapKeeper/internal/auth"
	"github.com/atinyakov/MapKeeper/internal/middleware"
	"github.com/atinyakov/MapKeeper/internal/models"
)

// AuthService defines the authentication operations required by the HTTP handlers.
type AuthService interface {
	// SignUp creates an account and returns it with a fresh access token.
	SignUp(ctx context.Context, email, password string) (*models.AuthUser, error)
	// SignIn checks credentials and returns the user with a fresh access token.
	SignIn(ctx context.Context, email, password string) (*models.AuthUser, error)
	// SignOut revokes the session of the given token.
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles HTTP requests for user registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// SignUp handles POST /api/auth/signup.
// It expects a JSON body with "email" and "password" and answers 201 with the
// signed-in user, so a fresh registration needs no separate login.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err, "invalid request")
		return
	}

	user, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err, "invalid request")
		return
	}

	user, err := h.AuthService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SignOut handles POST /api/auth/signout. The bearer token's session is revoked.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.AuthService.SignOut(r.Context(), token); err != nil {
		writeAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrEmailExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeDecodeError(w http.ResponseWriter, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
