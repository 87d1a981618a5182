// Package auth identifies the subject behind a request. It verifies tokens
// issued elsewhere; it never issues them.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SubjectIDKey contextKey = "subject_id"
	UserRolesKey contextKey = "user_roles"
)

// Development-mode headers.
const (
	DevSubjectHeader = "X-Subject-ID"
	DevRolesHeader   = "X-Dev-Roles"
)

// Claims carries the patient id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

type JWTConfig struct {
	Issuer     string
	Audience   string
	SigningKey []byte
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, keyFunc, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			subjectID, err := parseSubject(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
			}

			c.SetRequest(c.Request().WithContext(WithSubject(c.Request().Context(), subjectID, claims.Roles)))
			return next(c)
		}
	}
}

// DevAuthMiddleware trusts the X-Subject-ID header, falling back to
// defaultSubject. Roles come from X-Dev-Roles (comma separated) and default
// to "patient". Development only.
func DevAuthMiddleware(defaultSubject int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subjectID := defaultSubject
			if raw := c.Request().Header.Get(DevSubjectHeader); raw != "" {
				id, err := parseSubject(raw)
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "invalid "+DevSubjectHeader)
				}
				subjectID = id
			}
			roles := []string{"patient"}
			if raw := c.Request().Header.Get(DevRolesHeader); raw != "" {
				roles = strings.Split(raw, ",")
				for i := range roles {
					roles[i] = strings.TrimSpace(roles[i])
				}
			}
			c.SetRequest(c.Request().WithContext(WithSubject(c.Request().Context(), subjectID, roles)))
			return next(c)
		}
	}
}

func parseSubject(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// WithSubject attaches an authenticated subject and its roles to ctx.
func WithSubject(ctx context.Context, subjectID int64, roles []string) context.Context {
	ctx = context.WithValue(ctx, SubjectIDKey, subjectID)
	return context.WithValue(ctx, UserRolesKey, roles)
}

func SubjectFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(SubjectIDKey).(int64)
	return id, ok && id > 0
}

func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}
