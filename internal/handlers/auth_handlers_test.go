package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okravets/contactsbook/internal/handlers"
	"github.com/okravets/contactsbook/internal/middleware"
	"github.com/okravets/contactsbook/internal/models"
	"github.com/okravets/contactsbook/internal/repository"
	authsvc "github.com/okravets/contactsbook/internal/service/auth"
	contactsvc "github.com/okravets/contactsbook/internal/service/contacts"
	"github.com/okravets/contactsbook/internal/tokens"
	httpserver "github.com/okravets/contactsbook/internal/transport/http"
)

type testApp struct {
	e      *echo.Echo
	tokens *tokens.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))

	tokenManager := tokens.NewManager([]byte("test-secret"))
	authService := &authsvc.Service{
		Users:  &repository.UserRepository{DB: db},
		Tokens: tokenManager,
	}
	contactService := &contactsvc.Service{Repo: &repository.ContactRepository{DB: db}}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{Auth: authService},
		ContactHandler: &handlers.ContactHandler{Contacts: contactService},
		UserHandler:    &handlers.UserHandler{Auth: authService},
		AuthMW:         &middleware.Auth{Service: authService},
	})

	return &testApp{e: e, tokens: tokenManager}
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestSignupLoginConfirmFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := map[string]string{"email": "dead@pool.io", "username": "dead", "password": "pw123456"}

	rec := app.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	assert.Equal(t, http.StatusConflict, rec.Code)

	login := map[string]string{"email": "dead@pool.io", "password": "pw123456"}
	rec = app.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "login before confirmation is rejected")

	emailToken, err := app.tokens.CreateEmailToken("dead@pool.io")
	require.NoError(t, err)
	rec = app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+emailToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/auth/confirmed_email/garbage", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair authsvc.TokenPair
	decode(t, rec, &pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefreshTokenEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	pair := signupConfirmLogin(t, app, "dead@pool.io")

	rec := app.do(t, http.MethodGet, "/api/auth/refresh_token", pair.RefreshToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated authsvc.TokenPair
	decode(t, rec, &rotated)
	assert.NotEmpty(t, rotated.RefreshToken)

	// the old token has been rotated out
	rec = app.do(t, http.MethodGet, "/api/auth/refresh_token", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func signupConfirmLogin(t *testing.T, app *testApp, email string) authsvc.TokenPair {
	t.Helper()

	rec := app.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "username": "tester", "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	emailToken, err := app.tokens.CreateEmailToken(email)
	require.NoError(t, err)
	rec = app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+emailToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair authsvc.TokenPair
	decode(t, rec, &pair)
	return pair
}

func TestContactLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	pair := signupConfirmLogin(t, app, "dead@pool.io")

	rec := app.do(t, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "protected without token")

	birthday := time.Now().UTC().AddDate(-30, 0, 3)
	rec = app.do(t, http.MethodPost, "/api/contacts", pair.AccessToken, map[string]any{
		"first_name":   "Wade",
		"last_name":    "Wilson",
		"email":        "wade@pool.io",
		"phone_number": "+123456789",
		"birthday":     birthday.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Contact
	decode(t, rec, &created)
	require.NotZero(t, created.ID)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/contacts/upcoming_birthdays", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var upcoming []models.Contact
	decode(t, rec, &upcoming)
	require.Len(t, upcoming, 1)
	assert.Equal(t, created.ID, upcoming[0].ID)

	rec = app.do(t, http.MethodGet, "/api/contacts/search_by_first_name?contact_first_name=WADE", pair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), pair.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), pair.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactsIsolatedBetweenUsers(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	wade := signupConfirmLogin(t, app, "wade@pool.io")
	al := signupConfirmLogin(t, app, "al@pool.io")

	rec := app.do(t, http.MethodPost, "/api/contacts", wade.AccessToken, map[string]any{
		"first_name":   "Vanessa",
		"last_name":    "Carlysle",
		"email":        "vanessa@pool.io",
		"phone_number": "+1",
		"birthday":     "1992-03-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Contact
	decode(t, rec, &created)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), al.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), al.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersMe(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	pair := signupConfirmLogin(t, app, "dead@pool.io")

	rec := app.do(t, http.MethodGet, "/api/users/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	decode(t, rec, &me)
	assert.Equal(t, "dead@pool.io", me.Email)
	assert.True(t, me.Confirmed)

	rec = app.do(t, http.MethodGet, "/api/users/me", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh token is not an access token")
}

func TestUpdateContactFullReplace(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	pair := signupConfirmLogin(t, app, "dead@pool.io")

	rec := app.do(t, http.MethodPost, "/api/contacts", pair.AccessToken, map[string]any{
		"first_name":   "Wade",
		"last_name":    "Wilson",
		"email":        "wade@pool.io",
		"phone_number": "+1",
		"birthday":     "1990-06-05T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Contact
	decode(t, rec, &created)

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/contacts/%d", created.ID), pair.AccessToken, map[string]any{
		"first_name":   "Vanessa",
		"last_name":    "Carlysle",
		"email":        "vanessa@pool.io",
		"phone_number": "+2",
		"birthday":     "1992-03-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Contact
	decode(t, rec, &updated)
	assert.Equal(t, "Vanessa", updated.FirstName)
	assert.Equal(t, created.ID, updated.ID)

	rec = app.do(t, http.MethodPut, "/api/contacts/9999", pair.AccessToken, map[string]any{
		"first_name":   "X",
		"last_name":    "Y",
		"email":        "x@y.io",
		"phone_number": "+3",
		"birthday":     "1990-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
