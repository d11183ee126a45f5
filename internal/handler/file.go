package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/repository"
	"github.com/spaps/rental-backend/internal/storage"
)

// Object-storage key categories. The stream endpoint refuses to serve a
// file through the wrong category.
const (
	categoryAvatars   = "avatars"
	categoryComplexes = "complexes"
)

// File serves uploads, the public byte stream and deletion of stored
// objects.
type File struct {
	store     *storage.ObjectStorage
	files     *repository.FileRepo
	clients   *repository.ClientRepo
	complexes *repository.ComplexRepo
	rentors   *repository.RentorRepo
}

func NewFile(store *storage.ObjectStorage, files *repository.FileRepo,
	clients *repository.ClientRepo, complexes *repository.ComplexRepo,
	rentors *repository.RentorRepo) *File {
	return &File{store: store, files: files, clients: clients, complexes: complexes, rentors: rentors}
}

// UploadAvatar stores a new avatar for the calling client and relinks the
// profile. The previous avatar, if any, is removed afterwards.
func (h *File) UploadAvatar(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	ctx := c.Request().Context()
	profile, err := h.clients.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}

	stored, err := h.storeUpload(c, fh, categoryAvatars, model.PublicFile{ClientID: profile.ID})
	if err != nil {
		return err
	}
	if err := h.clients.SetAvatar(ctx, profile.ID, stored.ID); err != nil {
		return err
	}

	// Replacing an avatar orphans the old object; clean it up.
	if profile.AvatarID != 0 {
		if old, err := h.files.GetByID(ctx, profile.AvatarID); err == nil {
			_ = h.store.Remove(ctx, old.Key)
			_ = h.files.Delete(ctx, old.ID)
		}
	}

	return c.JSON(http.StatusCreated, stored)
}

// UploadComplexPhoto adds a photo to a complex gallery. The first photo
// becomes the main photo.
func (h *File) UploadComplexPhoto(c echo.Context) error {
	complexID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	cx, err := h.authorizeComplex(c, complexID)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}

	stored, err := h.storeUpload(c, fh, categoryComplexes, model.PublicFile{ComplexID: complexID})
	if err != nil {
		return err
	}

	if cx.MainPhotoID == 0 {
		cx.MainPhotoID = stored.ID
		if err := h.complexes.Update(ctx, cx); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusCreated, stored)
}

// Stream serves the raw bytes of a stored file. The category in the path
// must match the key prefix.
func (h *File) Stream(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	category := c.Param("category")

	ctx := c.Request().Context()
	f, err := h.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(f.Key, category+"/") {
		return apperr.Validation("file does not belong to this category")
	}

	rc, err := h.store.Get(ctx, f.Key)
	if err != nil {
		return err
	}
	defer rc.Close()
	return c.Stream(http.StatusOK, f.Type, rc)
}

// Delete removes a stored file and its row.
func (h *File) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	f, err := h.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(f.Key, c.Param("category")+"/") {
		return apperr.Validation("file does not belong to this category")
	}
	if err := h.store.Remove(ctx, f.Key); err != nil {
		return err
	}
	if err := h.files.Delete(ctx, f.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, true)
}

// storeUpload pushes the multipart file into object storage and records
// the public_file row. owner carries the client or complex link.
func (h *File) storeUpload(c echo.Context, fh *multipart.FileHeader, category string, owner model.PublicFile) (model.PublicFile, error) {
	src, err := fh.Open()
	if err != nil {
		return model.PublicFile{}, apperr.Internal("open upload failed", err)
	}
	defer src.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request().Context()
	key, url, err := h.store.Upload(ctx, category, fh.Filename, contentType, src, fh.Size)
	if err != nil {
		return model.PublicFile{}, err
	}

	owner.Key = key
	owner.URL = url
	owner.Type = contentType
	owner.Name = fh.Filename
	return h.files.Create(ctx, owner)
}

// authorizeComplex checks that the caller may attach photos to the
// complex, mirroring the mutation rule on the complex itself.
func (h *File) authorizeComplex(c echo.Context, id uint64) (model.Complex, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return model.Complex{}, apperr.Unauthorized("unauthorized")
	}
	cx, err := h.complexes.GetByID(c.Request().Context(), id)
	if err != nil {
		return model.Complex{}, err
	}
	if user.Role == model.RoleRentor {
		rentor, err := h.rentors.GetByUserID(c.Request().Context(), user.ID)
		if err != nil {
			return model.Complex{}, err
		}
		if cx.RentorID != rentor.ID {
			return model.Complex{}, apperr.Forbidden("forbidden")
		}
	}
	return cx, nil
}
