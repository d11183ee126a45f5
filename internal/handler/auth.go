package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/config"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/service"
	"github.com/spaps/rental-backend/internal/token"
)

const msgNoToken = "no token provided"

// AuthFlows is the slice of the auth service the HTTP layer drives.
type AuthFlows interface {
	Register(ctx context.Context, in service.RegisterInput) error
	ConfirmRegistrationCode(ctx context.Context, code string) (string, error)
	SetPassword(ctx context.Context, data token.RegistrationData, password string) (model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordResetCode(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, data token.RestorationData, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error)
	PersonalData(ctx context.Context, userID uint64) (model.User, error)
	ChangeEmail(ctx context.Context, userID uint64, newEmail string) error
	ConfirmEmailChangeCode(ctx context.Context, userID uint64, code string) (model.User, error)
	ChangePhone(ctx context.Context, userID uint64, newPhone string) error
	ConfirmPhoneChangeCode(ctx context.Context, userID uint64, code string) (model.User, error)
}

// Auth exposes the registration, password-reset and session endpoints.
// Registration and reset tokens travel in their own cookies between the
// confirm-code step and the step that redeems them.
type Auth struct {
	flows  AuthFlows
	tokens *token.Codec
	cfg    config.Config
}

func NewAuth(flows AuthFlows, tokens *token.Codec, cfg config.Config) *Auth {
	return &Auth{flows: flows, tokens: tokens, cfg: cfg}
}

type registerRequest struct {
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Role      model.Role `json:"role" validate:"required"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register starts self-registration. The response body is a bare boolean;
// the outcome the caller acts on is the emailed code.
func (h *Auth) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.checkRegisterLimits(req); err != nil {
		return err
	}
	if err := h.flows.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, true)
}

func (h *Auth) checkRegisterLimits(req registerRequest) error {
	switch {
	case len(req.FirstName) > h.cfg.MaxFirstNameLen:
		return apperr.Validation("first name is too long")
	case len(req.LastName) > h.cfg.MaxLastNameLen:
		return apperr.Validation("last name is too long")
	case len(req.Email) > h.cfg.MaxEmailLen:
		return apperr.Validation("email is too long")
	}
	return nil
}

// ConfirmRegistrationCode trades a 5-digit code for a registration token,
// delivered as a cookie for the set-password step.
func (h *Auth) ConfirmRegistrationCode(c echo.Context) error {
	tok, err := h.flows.ConfirmRegistrationCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	c.SetCookie(tokenCookie(h.cfg.Cookie, h.cfg.Cookie.RegistrationName, tok, h.cfg.Cookie.RegistrationDays))
	return c.JSON(http.StatusOK, true)
}

// SetPassword finishes registration. The identity comes from the
// registration cookie, never from the body.
func (h *Auth) SetPassword(c echo.Context) error {
	cookie, err := c.Cookie(h.cfg.Cookie.RegistrationName)
	if err != nil || cookie.Value == "" {
		return apperr.Validation(msgNoToken)
	}
	data, err := h.tokens.VerifyRegistration(cookie.Value)
	if err != nil {
		return err
	}

	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.Password) < h.cfg.MinPasswordLen {
		return apperr.Validation("password is too short")
	}

	user, err := h.flows.SetPassword(c.Request().Context(), data, req.Password)
	if err != nil {
		return err
	}
	c.SetCookie(expiredCookie(h.cfg.Cookie, h.cfg.Cookie.RegistrationName))
	return c.JSON(http.StatusCreated, user)
}

// PasswordResetEmail starts the reset flow for the address in the path.
func (h *Auth) PasswordResetEmail(c echo.Context) error {
	req := emailRequest{Email: c.Param("email")}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.flows.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}

// PasswordResetConfirmCode trades a reset code plus the address it was
// issued for into a reset-token cookie.
func (h *Auth) PasswordResetConfirmCode(c echo.Context) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tok, err := h.flows.ConfirmPasswordResetCode(c.Request().Context(), req.Email, c.Param("code"))
	if err != nil {
		return err
	}
	c.SetCookie(tokenCookie(h.cfg.Cookie, h.cfg.Cookie.PasswordResetName, tok, h.cfg.Cookie.PasswordResetDays))
	return c.JSON(http.StatusOK, true)
}

// PasswordReset overwrites the password for the identity in the reset
// cookie.
func (h *Auth) PasswordReset(c echo.Context) error {
	cookie, err := c.Cookie(h.cfg.Cookie.PasswordResetName)
	if err != nil || cookie.Value == "" {
		return apperr.Validation(msgNoToken)
	}
	data, err := h.tokens.VerifyRestoration(cookie.Value)
	if err != nil {
		return err
	}

	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.Password) < h.cfg.MinPasswordLen {
		return apperr.Validation("password is too short")
	}

	user, err := h.flows.ResetPassword(c.Request().Context(), data, req.Password)
	if err != nil {
		return err
	}
	c.SetCookie(expiredCookie(h.cfg.Cookie, h.cfg.Cookie.PasswordResetName))
	return c.JSON(http.StatusOK, user)
}

// Login checks credentials and installs the session cookie.
func (h *Auth) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tok, user, err := h.flows.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	c.SetCookie(tokenCookie(h.cfg.Cookie, h.cfg.Cookie.SessionName, tok, h.cfg.Cookie.SessionDays))
	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie. Calling it without one is an error,
// matching the platform's existing client contract.
func (h *Auth) Logout(c echo.Context) error {
	cookie, err := c.Cookie(h.cfg.Cookie.SessionName)
	if err != nil || cookie.Value == "" {
		return apperr.Validation(msgNoToken)
	}
	c.SetCookie(expiredCookie(h.cfg.Cookie, h.cfg.Cookie.SessionName))
	return c.JSON(http.StatusOK, true)
}

// PersonalData returns the caller's record with role relations loaded.
func (h *Auth) PersonalData(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	full, err := h.flows.PersonalData(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, full)
}

// Authorized echoes the session identity; clients use it as a cheap
// session probe.
func (h *Auth) Authorized(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	return c.JSON(http.StatusOK, user)
}

// ChangeEmail issues a confirmation code to the new address.
func (h *Auth) ChangeEmail(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	req := emailRequest{Email: c.Param("email")}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if len(req.Email) > h.cfg.MaxEmailLen {
		return apperr.Validation("email is too long")
	}
	if err := h.flows.ChangeEmail(c.Request().Context(), user.ID, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}

// ConfirmEmailChangeCode applies the pending email change.
func (h *Auth) ConfirmEmailChangeCode(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	updated, err := h.flows.ConfirmEmailChangeCode(c.Request().Context(), user.ID, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// ChangePhone issues an SMS confirmation code to the new number.
func (h *Auth) ChangePhone(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	phone := c.Param("phone")
	if phone == "" {
		return apperr.Validation("phone is required")
	}
	if len(phone) > h.cfg.MaxPhoneLen {
		return apperr.Validation("phone is too long")
	}
	if err := h.flows.ChangePhone(c.Request().Context(), user.ID, phone); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}

// ConfirmPhoneChangeCode applies the pending phone change.
func (h *Auth) ConfirmPhoneChangeCode(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	updated, err := h.flows.ConfirmPhoneChangeCode(c.Request().Context(), user.ID, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
