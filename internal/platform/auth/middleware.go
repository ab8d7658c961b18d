// Package auth identifies the actor behind each console request so that EHR
// changes and notices can be attributed. It does not authorize anything.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const ActorKey contextKey = "actor"

// DefaultDevActor is assigned to unauthenticated requests in development.
const DefaultDevActor = "dev-user"

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Actor returns the display identity carried by the token: the name claim
// when present, otherwise the subject.
func (c *Claims) Actor() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

type Config struct {
	SigningKey []byte
	Issuer     string
	// DevMode lets requests without an Authorization header through as
	// DefaultDevActor. Tokens that are present are still verified.
	DevMode bool
	Skipper func(echo.Context) bool
}

// Middleware verifies HS256 bearer tokens and stores the actor on both the
// echo context ("actor") and the request context.
func Middleware(cfg Config) echo.MiddlewareFunc {
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = AuthSkipper
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if cfg.DevMode {
					return next(withActor(c, DefaultDevActor))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			}, opts...)
			if err != nil || !token.Valid || claims.Actor() == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			return next(withActor(c, claims.Actor()))
		}
	}
}

func withActor(c echo.Context, actor string) echo.Context {
	c.Set(string(ActorKey), actor)
	ctx := context.WithValue(c.Request().Context(), ActorKey, actor)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

// ActorFromContext returns the request actor, or "" outside a request.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

// ContextWithActor is used by background jobs and tests that act outside an
// HTTP request.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// IssueToken signs an HS256 token for subject, valid for ttl.
func IssueToken(key []byte, issuer, subject, name string, ttl time.Duration, now time.Time) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("signing key is required")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
