package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/repository"
)

// Rentor serves the admin-facing rentor listings.
type Rentor struct {
	rentors *repository.RentorRepo
}

func NewRentor(rentors *repository.RentorRepo) *Rentor {
	return &Rentor{rentors: rentors}
}

func (h *Rentor) List(c echo.Context) error {
	page, limit := pagination(c)
	rentors, total, err := h.rentors.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[model.Rentor]{Items: rentors, Total: total, Page: page, Limit: limit})
}

func (h *Rentor) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rentor, err := h.rentors.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rentor)
}
