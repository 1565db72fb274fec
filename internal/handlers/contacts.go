package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/okravets/contactsbook/internal/events"
	"github.com/okravets/contactsbook/internal/logging"
	"github.com/okravets/contactsbook/internal/middleware"
	"github.com/okravets/contactsbook/internal/models"
	"github.com/okravets/contactsbook/internal/service/contacts"
	"github.com/okravets/contactsbook/internal/service/search"
)

const (
	defaultOffset = 0
	defaultLimit  = 50
)

type ContactHandler struct {
	Contacts *contacts.Service
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func contactNotFound() error {
	return echo.NewHTTPError(http.StatusNotFound, "Contact is not found")
}

func (h *ContactHandler) index(c echo.Context, contact *models.Contact) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.IndexContact(ctx, h.ES, h.Index, contact); err != nil {
		logging.FromContext(ctx).Error("contact index failed", "contact_id", contact.ID, "error", err)
	}
}

func (h *ContactHandler) unindex(c echo.Context, contactID uint) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.RemoveContact(ctx, h.ES, h.Index, contactID); err != nil {
		logging.FromContext(ctx).Error("contact unindex failed", "contact_id", contactID, "error", err)
	}
}

func (h *ContactHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)
	offset := parseIntDefault(c.QueryParam("offset"), defaultOffset)
	limit := parseIntDefault(c.QueryParam("limit"), defaultLimit)

	items, err := h.Contacts.List(c.Request().Context(), user.ID, offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContactHandler) Get(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	contact, err := h.Contacts.Get(c.Request().Context(), user.ID, uint(id))
	if err != nil {
		return err
	}
	if contact == nil {
		return contactNotFound()
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var fields contacts.Fields
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	contact, err := h.Contacts.Create(c.Request().Context(), user.ID, fields)
	if err != nil {
		return err
	}

	h.index(c, contact)
	publish(c, h.Producer, events.TopicContactEvents, fmt.Sprint(user.ID), map[string]any{
		"type":       "contact_created",
		"contact_id": contact.ID,
		"user_id":    user.ID,
	})

	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	var fields contacts.Fields
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	contact, err := h.Contacts.Update(c.Request().Context(), user.ID, uint(id), fields)
	if err != nil {
		return err
	}
	if contact == nil {
		return contactNotFound()
	}

	h.index(c, contact)
	publish(c, h.Producer, events.TopicContactEvents, fmt.Sprint(user.ID), map[string]any{
		"type":       "contact_updated",
		"contact_id": contact.ID,
		"user_id":    user.ID,
	})

	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	contact, err := h.Contacts.Delete(c.Request().Context(), user.ID, uint(id))
	if err != nil {
		return err
	}
	if contact == nil {
		return contactNotFound()
	}

	h.unindex(c, contact.ID)
	publish(c, h.Producer, events.TopicContactEvents, fmt.Sprint(user.ID), map[string]any{
		"type":       "contact_deleted",
		"contact_id": contact.ID,
		"user_id":    user.ID,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ContactHandler) findOne(c echo.Context, find func() (*models.Contact, error)) error {
	contact, err := find()
	if err != nil {
		return err
	}
	if contact == nil {
		return contactNotFound()
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) SearchByFirstName(c echo.Context) error {
	user := middleware.CurrentUser(c)
	name := c.QueryParam("contact_first_name")
	return h.findOne(c, func() (*models.Contact, error) {
		return h.Contacts.FindByFirstName(c.Request().Context(), user.ID, name)
	})
}

func (h *ContactHandler) SearchByLastName(c echo.Context) error {
	user := middleware.CurrentUser(c)
	name := c.QueryParam("contact_last_name")
	return h.findOne(c, func() (*models.Contact, error) {
		return h.Contacts.FindByLastName(c.Request().Context(), user.ID, name)
	})
}

func (h *ContactHandler) SearchByEmail(c echo.Context) error {
	user := middleware.CurrentUser(c)
	email := c.QueryParam("contact_email")
	return h.findOne(c, func() (*models.Contact, error) {
		return h.Contacts.FindByEmail(c.Request().Context(), user.ID, email)
	})
}

func (h *ContactHandler) UpcomingBirthdays(c echo.Context) error {
	user := middleware.CurrentUser(c)
	items, err := h.Contacts.UpcomingBirthdays(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Search is the full-text companion to the exact-match finders: fuzzy
// matching over names, email and phone, still scoped to the owner.
func (h *ContactHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	user := middleware.CurrentUser(c)
	offset := parseIntDefault(c.QueryParam("offset"), defaultOffset)
	limit := parseIntDefault(c.QueryParam("limit"), defaultLimit)

	total, items, err := search.Search(c.Request().Context(), h.ES, h.Index, user.ID, q, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "contacts": items})
}
