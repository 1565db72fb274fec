package handlers

import (
	"fmt"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/okravets/contactsbook/internal/middleware"
	"github.com/okravets/contactsbook/internal/service/auth"
	"github.com/okravets/contactsbook/internal/storage"
)

type UserHandler struct {
	Auth    *auth.Service
	Avatars storage.ObjectStorage
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// UpdateAvatar uploads the avatar image to object storage and persists the
// resulting URL on the user.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	if h.Avatars == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "avatar storage is not configured")
	}

	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("avatars/%d/%s%s", user.ID, uuid.NewString(), path.Ext(fileHeader.Filename))
	ctx := c.Request().Context()
	if err := h.Avatars.Put(ctx, key, file, fileHeader.Size, contentType); err != nil {
		return err
	}

	updated, err := h.Auth.UpdateAvatar(ctx, user.Email, h.Avatars.URL(key))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
