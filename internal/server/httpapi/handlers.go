package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/server/models"
)

type handlers struct {
	spots  SpotProcedures
	photos PhotoProcedures
	log    logging.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type mergeSpotRequest struct {
	ListID        string             `json:"listId" validate:"required"`
	SpotID        string             `json:"spotId"`
	Name          string             `json:"name" validate:"required,max=80"`
	Score         float64            `json:"score" validate:"gte=0,lte=5"`
	Criteria      map[string]float64 `json:"criteria" validate:"dive,gte=0,lte=5"`
	Comment       string             `json:"comment"`
	Description   string             `json:"description"`
	Category      string             `json:"category" validate:"required"`
	Address       string             `json:"address"`
	CoverPhotoURL string             `json:"coverPhotoUrl"`
	Phone         string             `json:"phone"`
	Website       string             `json:"website"`
}

type mergeSpotResponse struct {
	SpotID string `json:"spotId"`
}

type addPhotoRequest struct {
	ListID      string `json:"listId" validate:"required"`
	SpotID      string `json:"spotId" validate:"required"`
	StoragePath string `json:"storagePath" validate:"required"`
	PublicURL   string `json:"publicUrl" validate:"required"`
	Width       int    `json:"width" validate:"gte=0"`
	Height      int    `json:"height" validate:"gte=0"`
	SizeBytes   int64  `json:"sizeBytes" validate:"gte=0"`
	MimeType    string `json:"mimeType" validate:"required"`
	SetAsCover  bool   `json:"setAsCover"`
}

type photoResponse struct {
	ID          string `json:"id"`
	StoragePath string `json:"storagePath"`
	PublicURL   string `json:"publicUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"sizeBytes"`
	MimeType    string `json:"mimeType"`
	IsCover     bool   `json:"isCover"`
}

type deletePhotoResponse struct {
	StoragePath string `json:"storagePath"`
}

// writeError maps domain errors onto status codes. Unknown errors are logged
// server-side and reported as an opaque 500 to the caller.
func (h *handlers) writeError(c echo.Context, err error) error {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.log.Error(c.Request().Context(), "request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *handlers) health(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *handlers) mergeSpot(c echo.Context) error {
	var req mergeSpotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.writeError(c, err)
	}

	id, err := h.spots.Merge(c.Request().Context(), &models.Spot{
		ID:            req.SpotID,
		ListID:        req.ListID,
		Name:          req.Name,
		Address:       req.Address,
		Category:      req.Category,
		Description:   req.Description,
		Comment:       req.Comment,
		Phone:         req.Phone,
		Website:       req.Website,
		Score:         req.Score,
		Criteria:      req.Criteria,
		CoverPhotoURL: req.CoverPhotoURL,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, mergeSpotResponse{SpotID: id})
}

func (h *handlers) addPhoto(c echo.Context) error {
	var req addPhotoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.writeError(c, err)
	}

	photo, err := h.photos.Add(c.Request().Context(), &models.Photo{
		SpotID:      req.SpotID,
		ListID:      req.ListID,
		StoragePath: req.StoragePath,
		PublicURL:   req.PublicURL,
		Width:       req.Width,
		Height:      req.Height,
		SizeBytes:   req.SizeBytes,
		MimeType:    req.MimeType,
		IsCover:     req.SetAsCover,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, photoResponse{
		ID:          photo.ID,
		StoragePath: photo.StoragePath,
		PublicURL:   photo.PublicURL,
		Width:       photo.Width,
		Height:      photo.Height,
		SizeBytes:   photo.SizeBytes,
		MimeType:    photo.MimeType,
		IsCover:     photo.IsCover,
	})
}

func (h *handlers) deletePhoto(c echo.Context) error {
	path, err := h.photos.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, deletePhotoResponse{StoragePath: path})
}

func (h *handlers) deleteSpot(c echo.Context) error {
	if err := h.spots.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteRating(c echo.Context) error {
	if err := h.spots.ClearRating(c.Request().Context(), c.Param("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
