package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okravets/contactsbook/internal/models"
	"github.com/okravets/contactsbook/internal/service/auth"
)

const userContextKey = "user"

// Auth resolves the bearer access token on every protected request and
// puts the current user into the echo context.
type Auth struct {
	Service *auth.Service
}

func (a *Auth) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}

		user, err := a.Service.CurrentUser(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}
			return err
		}

		c.Set(userContextKey, user)
		c.Set("userID", user.ID)
		return next(c)
	}
}

// CurrentUser returns the user stashed by RequireUser, or nil on
// unprotected routes.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
