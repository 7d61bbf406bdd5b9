package middleware

import (
	"net/http"
	"strings"

	"campushire/internal/auth"
	"campushire/internal/principal"
	"campushire/pkg/logger"
	"campushire/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PrincipalKey is where Authenticate stores the resolved principal in the
// echo context.
const PrincipalKey = "principal"

// Authenticator verifies bearer tokens and resolves the caller into a
// principal on every request; nothing beyond the user id is trusted from
// the token itself.
type Authenticator struct {
	jwt      *auth.JWTUtil
	resolver *principal.Resolver
}

func NewAuthenticator(jwt *auth.JWTUtil, resolver *principal.Resolver) *Authenticator {
	return &Authenticator{jwt: jwt, resolver: resolver}
}

// Authenticate validates the Authorization header and loads the principal
func (a *Authenticator) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing access token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access token required"})
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warn("Invalid token scheme", zap.String("scheme", strings.Split(authHeader, " ")[0]))
			prometheus.RecordAuthError("invalid_scheme")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token must use Bearer scheme"})
		}

		userID, err := a.jwt.VerifyAccessToken(authHeader[7:])
		if err != nil {
			log.Warn("Invalid access token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired access token"})
		}

		p, err := a.resolver.Resolve(c.Request().Context(), userID)
		if err != nil {
			log.Warn("Failed to resolve principal", zap.Uint("user_id", userID), zap.Error(err))
			prometheus.RecordAuthError("principal_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired access token"})
		}

		c.Set(PrincipalKey, p)

		log = log.With(zap.Uint("user_id", p.UserID), zap.String("role", string(p.Role)))
		c.Set("logger", log)

		return next(c)
	}
}

// Principal retrieves the resolved principal set by Authenticate. The
// second return is false on routes that skipped authentication.
func Principal(c echo.Context) (principal.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(principal.Principal)
	return p, ok
}
