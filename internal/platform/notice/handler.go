package notice

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

type Handler struct {
	pub *Publisher
}

func NewHandler(pub *Publisher) *Handler {
	return &Handler{pub: pub}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notices", h.List)
	api.DELETE("/notices/:id", h.Dismiss)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	notices, err := h.pub.Active(ctx, auth.ActorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, notices)
}

func (h *Handler) Dismiss(c echo.Context) error {
	ctx := c.Request().Context()
	err := h.pub.Dismiss(ctx, auth.ActorFromContext(ctx), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "notice not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
