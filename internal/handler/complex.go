package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/repository"
)

// Complex serves the property-complex CRUD. Reads are public; mutation is
// owner-scoped for rentors and unrestricted for admins.
type Complex struct {
	complexes *repository.ComplexRepo
	rentors   *repository.RentorRepo
}

func NewComplex(complexes *repository.ComplexRepo, rentors *repository.RentorRepo) *Complex {
	return &Complex{complexes: complexes, rentors: rentors}
}

func (h *Complex) List(c echo.Context) error {
	page, limit := pagination(c)
	rentorID, _ := strconv.ParseUint(c.QueryParam("rentorId"), 10, 64)
	complexes, total, err := h.complexes.List(c.Request().Context(), rentorID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[model.Complex]{Items: complexes, Total: total, Page: page, Limit: limit})
}

func (h *Complex) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cx, err := h.complexes.GetByIDWithPhotos(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cx)
}

type complexRequest struct {
	Name        string `json:"name" validate:"required"`
	Region      string `json:"region" validate:"required"`
	Location    string `json:"location"`
	Address     string `json:"address" validate:"required"`
	Description string `json:"description"`
}

func (h *Complex) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	var req complexRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	rentorID, err := h.ownerRentorID(c, user)
	if err != nil {
		return err
	}

	created, err := h.complexes.Create(ctx, model.Complex{
		RentorID:    rentorID,
		Name:        req.Name,
		Region:      req.Region,
		Location:    req.Location,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Complex) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req complexRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.authorizeMutation(c, id)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Region = req.Region
	existing.Location = req.Location
	existing.Address = req.Address
	existing.Description = req.Description
	if err := h.complexes.Update(ctx, existing); err != nil {
		return err
	}
	updated, err := h.complexes.GetByIDWithPhotos(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Complex) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.authorizeMutation(c, id); err != nil {
		return err
	}
	if err := h.complexes.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}

// ownerRentorID resolves the rentor profile a mutation acts for. Admins
// may pass rentorId explicitly; rentors always act as themselves.
func (h *Complex) ownerRentorID(c echo.Context, user model.User) (uint64, error) {
	if user.Role == model.RoleRentor {
		rentor, err := h.rentors.GetByUserID(c.Request().Context(), user.ID)
		if err != nil {
			return 0, err
		}
		return rentor.ID, nil
	}
	rentorID, err := strconv.ParseUint(c.QueryParam("rentorId"), 10, 64)
	if err != nil || rentorID == 0 {
		return 0, apperr.Validation("rentorId is required")
	}
	return rentorID, nil
}

// authorizeMutation loads the complex and verifies the caller may change
// it. A rentor touching someone else's complex gets Forbidden, not
// NotFound; the listing is public anyway.
func (h *Complex) authorizeMutation(c echo.Context, id uint64) (model.Complex, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return model.Complex{}, apperr.Unauthorized("unauthorized")
	}
	existing, err := h.complexes.GetByID(c.Request().Context(), id)
	if err != nil {
		return model.Complex{}, err
	}
	if user.Role == model.RoleRentor {
		rentor, err := h.rentors.GetByUserID(c.Request().Context(), user.ID)
		if err != nil {
			return model.Complex{}, err
		}
		if existing.RentorID != rentor.ID {
			return model.Complex{}, apperr.Forbidden("forbidden")
		}
	}
	return existing, nil
}
