package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okravets/contactsbook/internal/events"
	"github.com/okravets/contactsbook/internal/service/auth"
)

type AuthHandler struct {
	Auth     *auth.Service
	Producer *events.Producer
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email, username and password are required")
	}

	user, err := h.Auth.Signup(c.Request().Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Account already exists")
		}
		return err
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   user,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	pair, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

// RefreshToken rotates the access/refresh pair. The refresh token arrives
// as the bearer credential.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
		}
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) ConfirmedEmail(c echo.Context) error {
	already, err := h.Auth.ConfirmEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmailToken) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid token for email verification")
		}
		if errors.Is(err, auth.ErrVerification) {
			return echo.NewHTTPError(http.StatusBadRequest, "Verification error")
		}
		return err
	}

	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	already, err := h.Auth.RequestConfirmation(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation"})
}
