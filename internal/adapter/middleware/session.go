package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor_id"

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the HS256 session payload; Subject carries the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// IssueSession signs a session token for userID.
func IssueSession(secret []byte, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSession verifies the token and returns the user id it names.
func ParseSession(secret []byte, token string) (uint64, error) {
	var claims SessionClaims
	t, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !t.Valid {
		return 0, ErrInvalidSession
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidSession
	}
	return id, nil
}

// Session requires "Authorization: Bearer <token>" and stores the actor id
// on the echo context.
func Session(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			id, err := ParseSession(secret, strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			c.Set(actorKey, id)
			return next(c)
		}
	}
}

// ActorID returns the user id set by Session.
func ActorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(actorKey).(uint64)
	return id, ok && id != 0
}

// WithActor sets the actor id directly; handlers tests use it in place of a token.
func WithActor(c echo.Context, id uint64) { c.Set(actorKey, id) }
