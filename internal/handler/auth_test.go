package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/config"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/service"
	"github.com/spaps/rental-backend/internal/token"
)

// fakeFlows implements AuthFlows with overridable funcs; unset methods
// panic so a test cannot silently exercise the wrong path.
type fakeFlows struct {
	RegisterFn                 func(ctx context.Context, in service.RegisterInput) error
	ConfirmRegistrationCodeFn  func(ctx context.Context, code string) (string, error)
	SetPasswordFn              func(ctx context.Context, data token.RegistrationData, password string) (model.User, error)
	RequestPasswordResetFn     func(ctx context.Context, email string) error
	ConfirmPasswordResetCodeFn func(ctx context.Context, email, code string) (string, error)
	ResetPasswordFn            func(ctx context.Context, data token.RestorationData, password string) (model.User, error)
	LoginFn                    func(ctx context.Context, email, password string) (string, model.User, error)
	PersonalDataFn             func(ctx context.Context, userID uint64) (model.User, error)
	ChangeEmailFn              func(ctx context.Context, userID uint64, newEmail string) error
	ConfirmEmailChangeCodeFn   func(ctx context.Context, userID uint64, code string) (model.User, error)
	ChangePhoneFn              func(ctx context.Context, userID uint64, newPhone string) error
	ConfirmPhoneChangeCodeFn   func(ctx context.Context, userID uint64, code string) (model.User, error)
}

func (f *fakeFlows) Register(ctx context.Context, in service.RegisterInput) error {
	return f.RegisterFn(ctx, in)
}
func (f *fakeFlows) ConfirmRegistrationCode(ctx context.Context, code string) (string, error) {
	return f.ConfirmRegistrationCodeFn(ctx, code)
}
func (f *fakeFlows) SetPassword(ctx context.Context, data token.RegistrationData, password string) (model.User, error) {
	return f.SetPasswordFn(ctx, data, password)
}
func (f *fakeFlows) RequestPasswordReset(ctx context.Context, email string) error {
	return f.RequestPasswordResetFn(ctx, email)
}
func (f *fakeFlows) ConfirmPasswordResetCode(ctx context.Context, email, code string) (string, error) {
	return f.ConfirmPasswordResetCodeFn(ctx, email, code)
}
func (f *fakeFlows) ResetPassword(ctx context.Context, data token.RestorationData, password string) (model.User, error) {
	return f.ResetPasswordFn(ctx, data, password)
}
func (f *fakeFlows) Login(ctx context.Context, email, password string) (string, model.User, error) {
	return f.LoginFn(ctx, email, password)
}
func (f *fakeFlows) PersonalData(ctx context.Context, userID uint64) (model.User, error) {
	return f.PersonalDataFn(ctx, userID)
}
func (f *fakeFlows) ChangeEmail(ctx context.Context, userID uint64, newEmail string) error {
	return f.ChangeEmailFn(ctx, userID, newEmail)
}
func (f *fakeFlows) ConfirmEmailChangeCode(ctx context.Context, userID uint64, code string) (model.User, error) {
	return f.ConfirmEmailChangeCodeFn(ctx, userID, code)
}
func (f *fakeFlows) ChangePhone(ctx context.Context, userID uint64, newPhone string) error {
	return f.ChangePhoneFn(ctx, userID, newPhone)
}
func (f *fakeFlows) ConfirmPhoneChangeCode(ctx context.Context, userID uint64, code string) (model.User, error) {
	return f.ConfirmPhoneChangeCodeFn(ctx, userID, code)
}

func testConfig() config.Config {
	return config.Config{
		MaxFirstNameLen: 50,
		MaxLastNameLen:  50,
		MaxEmailLen:     254,
		MaxPhoneLen:     20,
		MinPasswordLen:  8,
		Cookie: config.Cookie{
			HTTPOnly:          true,
			SameSite:          "lax",
			Path:              "/",
			SessionName:       "token",
			RegistrationName:  "registrationToken",
			PasswordResetName: "passwordRestorationToken",
			SessionDays:       7,
			RegistrationDays:  1,
			PasswordResetDays: 1,
		},
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler
	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newCodec() *token.Codec {
	return token.NewCodec("test-secret", time.Hour, time.Hour, 24*time.Hour)
}

func TestRegisterEndpoint(t *testing.T) {
	var got service.RegisterInput
	flows := &fakeFlows{RegisterFn: func(ctx context.Context, in service.RegisterInput) error {
		got = in
		return nil
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/register", h.Register)

	rec := doJSON(e, http.MethodPost, "/users/register",
		`{"firstName":"Ana","lastName":"Ruiz","email":"ana@example.com","role":"CLIENT"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))
	assert.Equal(t, model.RoleClient, got.Role)
}

func TestRegisterEndpointValidation(t *testing.T) {
	flows := &fakeFlows{RegisterFn: func(ctx context.Context, in service.RegisterInput) error {
		t.Fatal("flow must not run on invalid input")
		return nil
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/register", h.Register)

	rec := doJSON(e, http.MethodPost, "/users/register",
		`{"firstName":"Ana","lastName":"Ruiz","email":"not-an-email","role":"CLIENT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointConflict(t *testing.T) {
	flows := &fakeFlows{RegisterFn: func(ctx context.Context, in service.RegisterInput) error {
		return apperr.Conflict(apperr.MsgEmailExists)
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/register", h.Register)

	rec := doJSON(e, http.MethodPost, "/users/register",
		`{"firstName":"Ana","lastName":"Ruiz","email":"ana@example.com","role":"CLIENT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.MsgEmailExists)
}

func TestConfirmRegistrationCodeSetsCookie(t *testing.T) {
	flows := &fakeFlows{ConfirmRegistrationCodeFn: func(ctx context.Context, code string) (string, error) {
		require.Equal(t, "12345", code)
		return "reg-token", nil
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.GET("/users/confirm-registration-code/:code", h.ConfirmRegistrationCode)

	rec := doJSON(e, http.MethodGet, "/users/confirm-registration-code/12345", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "registrationToken", cookies[0].Name)
	assert.Equal(t, "reg-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestConfirmRegistrationCodeWrong(t *testing.T) {
	flows := &fakeFlows{ConfirmRegistrationCodeFn: func(ctx context.Context, code string) (string, error) {
		return "", apperr.InvalidCode(apperr.MsgWrongCode)
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.GET("/users/confirm-registration-code/:code", h.ConfirmRegistrationCode)

	rec := doJSON(e, http.MethodGet, "/users/confirm-registration-code/00000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.MsgWrongCode)
}

func TestSetPasswordEndpoint(t *testing.T) {
	codec := newCodec()
	regRaw := `{"firstName":"Ana","lastName":"Ruiz","email":"ana@example.com","role":"CLIENT"}`
	regTok, err := codec.MintRegistration(regRaw)
	require.NoError(t, err)

	flows := &fakeFlows{SetPasswordFn: func(ctx context.Context, data token.RegistrationData, password string) (model.User, error) {
		require.Equal(t, "ana@example.com", data.Email)
		require.Equal(t, "hunter22pass", password)
		return model.User{ID: 42, Email: data.Email, Role: data.Role}, nil
	}}
	h := NewAuth(flows, codec, testConfig())
	e := newEcho()
	e.POST("/users/set-password", h.SetPassword)

	rec := doJSON(e, http.MethodPost, "/users/set-password", `{"password":"hunter22pass"}`,
		&http.Cookie{Name: "registrationToken", Value: regTok})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":42`)

	// The registration cookie gets expired in the response.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "registrationToken", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestSetPasswordEndpointNoCookie(t *testing.T) {
	h := NewAuth(&fakeFlows{}, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/set-password", h.SetPassword)

	rec := doJSON(e, http.MethodPost, "/users/set-password", `{"password":"hunter22pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgNoToken)
}

func TestSetPasswordEndpointSessionTokenRejected(t *testing.T) {
	codec := newCodec()
	sessTok, err := codec.MintSession(7)
	require.NoError(t, err)

	h := NewAuth(&fakeFlows{}, codec, testConfig())
	e := newEcho()
	e.POST("/users/set-password", h.SetPassword)

	rec := doJSON(e, http.MethodPost, "/users/set-password", `{"password":"hunter22pass"}`,
		&http.Cookie{Name: "registrationToken", Value: sessTok})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetPasswordEndpointShortPassword(t *testing.T) {
	codec := newCodec()
	regTok, err := codec.MintRegistration(`{"firstName":"A","lastName":"B","email":"a@b.co","role":"CLIENT"}`)
	require.NoError(t, err)

	h := NewAuth(&fakeFlows{}, codec, testConfig())
	e := newEcho()
	e.POST("/users/set-password", h.SetPassword)

	rec := doJSON(e, http.MethodPost, "/users/set-password", `{"password":"short"}`,
		&http.Cookie{Name: "registrationToken", Value: regTok})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpointSetsSessionCookie(t *testing.T) {
	flows := &fakeFlows{LoginFn: func(ctx context.Context, email, password string) (string, model.User, error) {
		return "sess-token", model.User{ID: 3, Email: email, Role: model.RoleClient}, nil
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/login", h.Login)

	rec := doJSON(e, http.MethodPost, "/users/login", `{"email":"ana@example.com","password":"hunter22pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "sess-token", cookies[0].Value)
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	flows := &fakeFlows{LoginFn: func(ctx context.Context, email, password string) (string, model.User, error) {
		return "", model.User{}, apperr.Validation(apperr.MsgWrongPass)
	}}
	h := NewAuth(flows, newCodec(), testConfig())
	e := newEcho()
	e.POST("/users/login", h.Login)

	rec := doJSON(e, http.MethodPost, "/users/login", `{"email":"ana@example.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.MsgWrongPass)
}

func TestLogoutEndpoint(t *testing.T) {
	h := NewAuth(&fakeFlows{}, newCodec(), testConfig())
	e := newEcho()
	e.GET("/users/logout", h.Logout)

	rec := doJSON(e, http.MethodGet, "/users/logout", "", &http.Cookie{Name: "token", Value: "sess"})
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)

	// Without a session cookie logout is an error.
	rec = doJSON(e, http.MethodGet, "/users/logout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgNoToken)
}

func TestPasswordResetEndpoints(t *testing.T) {
	codec := newCodec()
	flows := &fakeFlows{
		RequestPasswordResetFn: func(ctx context.Context, email string) error {
			require.Equal(t, "ana@example.com", email)
			return nil
		},
		ConfirmPasswordResetCodeFn: func(ctx context.Context, email, code string) (string, error) {
			return codec.MintRestoration(`{"email":"ana@example.com","id":5}`)
		},
		ResetPasswordFn: func(ctx context.Context, data token.RestorationData, password string) (model.User, error) {
			require.Equal(t, uint64(5), data.ID)
			return model.User{ID: data.ID, Email: data.Email}, nil
		},
	}
	h := NewAuth(flows, codec, testConfig())
	e := newEcho()
	e.GET("/users/password-reset-email/:email", h.PasswordResetEmail)
	e.POST("/users/password-reset-confirm-code/:code", h.PasswordResetConfirmCode)
	e.POST("/users/password-reset", h.PasswordReset)

	rec := doJSON(e, http.MethodGet, "/users/password-reset-email/ana@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/users/password-reset-confirm-code/12345", `{"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	resetCookie := cookies[0]
	assert.Equal(t, "passwordRestorationToken", resetCookie.Name)

	rec = doJSON(e, http.MethodPost, "/users/password-reset", `{"password":"brand-new-pass"}`,
		&http.Cookie{Name: resetCookie.Name, Value: resetCookie.Value})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)
}
