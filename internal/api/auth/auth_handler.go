package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/andrecf/recipebox/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetCreateAccount(w http.ResponseWriter, r *http.Request)
	PostCreateAccount(w http.ResponseWriter, r *http.Request)
	GetLogin(w http.ResponseWriter, r *http.Request)
	PostLogin(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService Service
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// GetCreateAccount serves the create-account view state.
func (h *HandlerImpl) GetCreateAccount(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"title":  "Create Account",
		"header": "Create Account",
	})
}

// PostCreateAccount handles the create-account form submit.
func (h *HandlerImpl) PostCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "PostCreateAccount"))

	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	err := h.authService.Register(ctx,
		api.FormValue(r, "username"),
		api.FormValue(r, "email"),
		r.PostFormValue("password"),
		r.PostFormValue("confirm_password"),
	)
	switch {
	case errors.Is(err, api.ErrUsernameTaken):
		api.ErrorResponse(w, r, http.StatusConflict, "This username is taken")
		return
	case errors.Is(err, api.ErrPasswordMismatch):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Your passwords didn't match")
		return
	case errors.Is(err, api.ErrMissingCredentials):
		api.ErrorResponse(w, r, http.StatusBadRequest, "A username and password are required")
		return
	case err != nil:
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create account")
		return
	}

	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

// GetLogin serves the login view state, echoing the return-to URL.
func (h *HandlerImpl) GetLogin(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"title":  "Login",
		"header": "Login",
		"next":   r.URL.Query().Get("next"),
	})
}

// PostLogin handles the login form submit. On success the session cookie is
// set and the client is sent back to the URL it originally asked for.
func (h *HandlerImpl) PostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "PostLogin"))

	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	token, err := h.authService.Login(ctx, api.FormValue(r, "username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, api.ErrUserNotFound):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "The username you entered does not exist")
		return
	case errors.Is(err, api.ErrBadCredentials):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Incorrect password")
		return
	case err != nil:
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	next := r.PostFormValue("next")
	if !strings.HasPrefix(next, "/") {
		next = "/get_recipes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout clears the session cookie and sends the client home.
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
