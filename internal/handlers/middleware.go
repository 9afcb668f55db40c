package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hackerforce/platform/internal/model"
	"github.com/hackerforce/platform/internal/service/auth"
)

const userContextKey = "user"

type UserLoader interface {
	UserByID(id model.UserID) (*model.User, error)
}

// Authenticate verifies the Bearer token and loads the account into the
// request context.
func Authenticate(secret []byte, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				return sendError(c, http.StatusUnauthorized, "no token provided")
			}

			userID, err := auth.UserIDFromToken(token, secret)
			if err != nil {
				return sendError(c, http.StatusUnauthorized, "invalid token")
			}

			user, err := users.UserByID(userID)
			if err != nil {
				return sendError(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the account set by Authenticate.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

type Limiter interface {
	Allow(key string, now time.Time) (bool, error)
}

// RateLimit consumes one point per request keyed by client IP and answers 429
// once the window budget is spent. A limiter failure lets the request through
// rather than taking the API down with the side-store.
func RateLimit(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if key == "" {
				key = "anonymous"
			}

			allowed, err := limiter.Allow(key, time.Now().UTC())
			if err != nil {
				c.Logger().Errorf("rate limiter: %+v", err)
				return next(c)
			}
			if !allowed {
				return fail(c, model.ErrorRateLimited)
			}
			return next(c)
		}
	}
}
