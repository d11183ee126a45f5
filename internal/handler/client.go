package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/repository"
)

// Client serves the CLIENT profile endpoints plus the admin listings.
type Client struct {
	clients *repository.ClientRepo
}

func NewClient(clients *repository.ClientRepo) *Client {
	return &Client{clients: clients}
}

func (h *Client) List(c echo.Context) error {
	page, limit := pagination(c)
	clients, total, err := h.clients.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[model.Client]{Items: clients, Total: total, Page: page, Limit: limit})
}

func (h *Client) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	client, err := h.clients.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

type updateClientRequest struct {
	BirthDate string       `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender    model.Gender `json:"gender" validate:"omitempty"`
}

// UpdatePersonal edits the caller's own client profile.
func (h *Client) UpdatePersonal(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	var req updateClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Gender != "" && !req.Gender.Valid() {
		return apperr.Validation(apperr.MsgWrongEnum)
	}

	ctx := c.Request().Context()
	profile, err := h.clients.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return apperr.Validation("invalid birth date")
		}
		profile.BirthDate = &bd
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}

	if err := h.clients.Update(ctx, profile); err != nil {
		return err
	}
	updated, err := h.clients.GetByID(ctx, profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
