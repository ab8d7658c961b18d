package imagestore

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/xray-images", h.Upload)
	api.GET("/xray-images/:id", h.Download)
	api.DELETE("/xray-images/:id", h.Delete)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrInvalidContentType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, ErrMissingFileName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Upload accepts a multipart "file" part and an optional patient_id field.
func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if file.Size > MaxFileSize {
		return toHTTPError(ErrFileTooLarge)
	}

	var patientID int64
	if v := c.FormValue("patient_id"); v != "" {
		if patientID, err = strconv.ParseInt(v, 10, 64); err != nil || patientID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	img, err := h.store.Save(c.Request().Context(), Image{
		FileName:    file.Filename,
		ContentType: ContentType(file.Filename, file.Header.Get(echo.HeaderContentType)),
		PatientID:   patientID,
		UploadedBy:  auth.ActorFromContext(c.Request().Context()),
	}, src)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, img)
}

// Download serves images from stores that keep the bytes locally. Remote
// stores hand out their own URLs, so the route reports not found.
func (h *Handler) Download(c echo.Context) error {
	opener, ok := h.store.(Opener)
	if !ok {
		return toHTTPError(ErrNotFound)
	}
	rc, img, err := opener.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, img.FileName))
	return c.Stream(http.StatusOK, img.ContentType, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
