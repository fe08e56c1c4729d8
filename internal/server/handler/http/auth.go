// Package http provides the HTTP handlers of the marketplace: the server
// rendered pages, the auth forms and the JSON listing API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/middleware"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/render"
	"github.com/atinyakov/GolfClubAuctions/internal/session"
	"go.uber.org/zap"
)

// AuthService defines the authentication operations required by the
// handlers.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (string, *models.Identity, error)
	SignIn(ctx context.Context, email, password string) (string, *models.Identity, error)
	SignOut(ctx context.Context, token string) error
	SessionTTL() time.Duration
}

// AuthHandler handles sign up, sign in and sign out.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Credentials is the sign up / sign in payload.
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// AuthResponse is returned to JSON clients.
type AuthResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

func readCredentials(r *http.Request) (Credentials, error) {
	var c Credentials
	if isJSONBody(r) {
		err := json.NewDecoder(r.Body).Decode(&c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, err
	}
	c.Email = r.PostFormValue("email")
	c.Password = r.PostFormValue("password")
	c.DisplayName = r.PostFormValue("display_name")
	return c, nil
}

type authFunc func(ctx context.Context, c Credentials) (string, *models.Identity, error)

func (h *AuthHandler) handle(w http.ResponseWriter, r *http.Request, verb string, status int, fn authFunc) {
	c, err := readCredentials(r)
	if err != nil {
		if wantsJSON(r) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		redirectWithNotice(w, r, "/", render.NoticeError, verb+" failed: invalid request")
		return
	}

	token, id, err := fn(r.Context(), c)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.Log.Error(verb+" failed", zap.Error(err))
		}
		if wantsJSON(r) {
			writeError(w, err)
			return
		}
		redirectWithNotice(w, r, "/", render.NoticeError, verb+" failed: "+err.Error())
		return
	}

	if holder := session.FromContext(r.Context()); holder != nil {
		holder.Set(*id)
	}
	middleware.SetSessionCookie(w, token, int(h.AuthService.SessionTTL().Seconds()), h.SecureCookies)

	if wantsJSON(r) {
		writeJSON(w, status, AuthResponse{Token: token, Identity: *id})
		return
	}
	redirectWithNotice(w, r, "/?view=browse", render.NoticeSuccess, "Welcome, "+id.Name()+"!")
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "Sign up", http.StatusCreated, func(ctx context.Context, c Credentials) (string, *models.Identity, error) {
		return h.AuthService.SignUp(ctx, c.Email, c.Password, c.DisplayName)
	})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "Sign in", http.StatusOK, func(ctx context.Context, c Credentials) (string, *models.Identity, error) {
		return h.AuthService.SignIn(ctx, c.Email, c.Password)
	})
}

// SignOut handles POST /auth/signout. It always clears the cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token != "" {
		if err := h.AuthService.SignOut(r.Context(), token); err != nil {
			h.Log.Warn("sign out failed", zap.Error(err))
		}
	}
	if holder := session.FromContext(r.Context()); holder != nil {
		holder.Clear()
	}
	middleware.ClearSessionCookie(w)

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectWithNotice(w, r, "/", render.NoticeInfo, "Signed out successfully")
}
