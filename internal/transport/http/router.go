package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/okravets/contactsbook/internal/handlers"
	"github.com/okravets/contactsbook/internal/middleware"
	"github.com/okravets/contactsbook/internal/ratelimit"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ContactHandler *handlers.ContactHandler
	UserHandler    *handlers.UserHandler
	AuthMW         *middleware.Auth
	Limiter        *ratelimit.Limiter
}

func (d *Deps) limit(route string, max int, window time.Duration) echo.MiddlewareFunc {
	if d.Limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return d.Limiter.Limit(route, max, window)
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to contacts!"})
	})

	api := e.Group("/api")

	api.GET("/healthchecker", func(c echo.Context) error {
		var one int
		if err := d.DB.WithContext(c.Request().Context()).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
			return echo.NewHTTPError(http.StatusInternalServerError, "Error connecting to the database")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Database is healthy"})
	})

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", d.AuthHandler.Signup)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.GET("/refresh_token", d.AuthHandler.RefreshToken)
	authGroup.GET("/confirmed_email/:token", d.AuthHandler.ConfirmedEmail)
	authGroup.POST("/request_email", d.AuthHandler.RequestEmail)

	contactsGroup := api.Group("/contacts", d.AuthMW.RequireUser)
	contactsGroup.GET("", d.ContactHandler.List, d.limit("contacts_list", 10, time.Minute))
	contactsGroup.POST("", d.ContactHandler.Create, d.limit("contacts_create", 5, time.Minute))
	contactsGroup.GET("/search", d.ContactHandler.Search)
	contactsGroup.GET("/search_by_first_name", d.ContactHandler.SearchByFirstName)
	contactsGroup.GET("/search_by_last_name", d.ContactHandler.SearchByLastName)
	contactsGroup.GET("/search_by_email", d.ContactHandler.SearchByEmail)
	contactsGroup.GET("/upcoming_birthdays", d.ContactHandler.UpcomingBirthdays)
	contactsGroup.GET("/:id", d.ContactHandler.Get)
	contactsGroup.PUT("/:id", d.ContactHandler.Update)
	contactsGroup.DELETE("/:id", d.ContactHandler.Delete)

	usersGroup := api.Group("/users", d.AuthMW.RequireUser)
	usersGroup.GET("/me", d.UserHandler.Me)
	usersGroup.PATCH("/avatar", d.UserHandler.UpdateAvatar)
}
