package handler

import (
	"net/http"
	"time"

	"campushire/internal/model"
	"campushire/internal/service"
	"campushire/pkg/logger"
	"campushire/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// refreshCookieName holds the refresh token between calls; the access token
// travels only in the Authorization header.
const refreshCookieName = "refresh_token"

// AuthHandler exposes registration and the session lifecycle.
type AuthHandler struct {
	auth *service.Auth
}

func NewAuthHandler(auth *service.Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name         string `json:"name" validate:"required"`
		Email        string `json:"email" validate:"required,email"`
		CollegeEmail string `json:"college_email" validate:"omitempty,email"`
		Password     string `json:"password" validate:"required,min=8"`
		Role         string `json:"role" validate:"required"`
		CollegeID    uint   `json:"college_id" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		CollegeEmail: req.CollegeEmail,
		Password:     req.Password,
		Role:         model.Role(req.Role),
		CollegeID:    req.CollegeID,
	})
	if err != nil {
		log.Warn("Registration failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	return created(c, echo.Map{
		"message": "registration successful, please verify your email",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return respondError(c, err)
	}

	h.setRefreshCookie(c, result.RefreshToken)
	prometheus.ActiveSessionsGauge.Inc()

	return ok(c, echo.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Refresh rotates the refresh token from the cookie (or body, for non-browser
// clients) and returns a fresh access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.TokenRefreshCounter.Inc()

	presented := h.refreshTokenFrom(c)
	if presented == "" {
		prometheus.RecordAuthError("missing_refresh_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token required"})
	}

	result, err := h.auth.Refresh(c.Request().Context(), presented)
	if err != nil {
		log.Warn("Token refresh failed", zap.Error(err))
		prometheus.RecordAuthError("refresh_failure")
		h.clearRefreshCookie(c)
		return respondError(c, err)
	}

	h.setRefreshCookie(c, result.RefreshToken)

	return ok(c, echo.Map{"access_token": result.AccessToken})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	removed, err := h.auth.Logout(c.Request().Context(), h.refreshTokenFrom(c))
	if err != nil {
		log.Error("Logout failed", zap.Error(err))
		return respondError(c, err)
	}

	h.clearRefreshCookie(c)
	// Only a real session row leaving the store moves the gauge; a logout
	// without a token, or with a stale one, changes nothing.
	if removed {
		prometheus.ActiveSessionsGauge.Dec()
	}

	return ok(c, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"message": "email verified, you can now log in"})
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	// Same response whether or not the account exists.
	return ok(c, echo.Map{"message": "if the account exists, a verification email has been sent"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"message": "if the account exists, a password reset email has been sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"message": "password updated, please log in again"})
}

// Me returns the caller's resolved identity and scope.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := callerPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	body := echo.Map{
		"id":    p.UserID,
		"name":  p.Name,
		"email": p.Email,
		"role":  p.Role,
	}
	if student, okp := p.StudentProfile(); okp {
		body["profile"] = echo.Map{
			"student_id":   student.StudentID,
			"college_id":   student.CollegeID,
			"college_name": student.CollegeName,
		}
	}
	if admin, okp := p.AdminProfile(); okp {
		body["profile"] = echo.Map{
			"admin_id":        admin.AdminID,
			"college_id":      admin.CollegeID,
			"college_name":    admin.CollegeName,
			"is_system_admin": admin.IsSystemAdmin,
		}
	}
	if p.IsSuperAdmin() {
		body["profile"] = echo.Map{"scope": "system"}
	}
	return ok(c, body)
}

func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
