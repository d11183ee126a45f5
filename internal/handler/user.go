package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/config"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/repository"
)

// User exposes the administrative account endpoints. Route registration
// restricts them to ADMIN and SUPERADMIN.
type User struct {
	users *repository.UserRepo
	cfg   config.Config
}

func NewUser(users *repository.UserRepo, cfg config.Config) *User {
	return &User{users: users, cfg: cfg}
}

func (h *User) List(c echo.Context) error {
	page, limit := pagination(c)
	users, total, err := h.users.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return c.JSON(http.StatusOK, listResponse[model.User]{Items: users, Total: total, Page: page, Limit: limit})
}

func (h *User) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetByIDWithRelations(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Sanitized())
}

type updateNamesRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

func (h *User) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateNamesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.FirstName) > h.cfg.MaxFirstNameLen {
		return apperr.Validation("first name is too long")
	}
	if len(req.LastName) > h.cfg.MaxLastNameLen {
		return apperr.Validation("last name is too long")
	}
	if err := h.users.UpdateNames(c.Request().Context(), id, req.FirstName, req.LastName); err != nil {
		return err
	}
	user, err := h.users.GetByIDWithRelations(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Sanitized())
}

func (h *User) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}
