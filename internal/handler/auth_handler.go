package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merraine/merraine-api/internal/auth"
	"github.com/merraine/merraine-api/internal/dto"
	"github.com/merraine/merraine-api/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
}

// NewAuthHandler constructs an AuthHandler. secureCookie marks the session
// cookie Secure and should be set behind TLS.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "username and password are required")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrMissingCredentials):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAuthNotConfigured):
			return Error(c, http.StatusInternalServerError, "authentication not configured")
		default:
			return Error(c, http.StatusInternalServerError, "unable to authenticate")
		}
	}

	ttl := h.authService.TokenTTL()
	c.SetCookie(h.sessionCookie(token, ttl))
	return Success(c, http.StatusOK, "login successful", dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(ttl / time.Second),
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := h.sessionCookie("", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
	return Success(c, http.StatusOK, "logged out", nil)
}

// ChangePassword handles POST /api/auth/change-password requests.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	err := h.authService.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case service.IsValidation(err), errors.Is(err, service.ErrPasswordTooShort):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCurrentPasswordIncorrect):
			return Error(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPasswordChangeUnavailable):
			return Error(c, http.StatusServiceUnavailable, service.ErrPasswordChangeUnavailable.Error())
		default:
			return Error(c, http.StatusInternalServerError, "unable to change password")
		}
	}
	return Success(c, http.StatusOK, "password changed", nil)
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
