package scheduling

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/conflicts", h.CheckConflict)
	api.GET("/appointments/reference-number", h.ReferenceNumber)
	api.GET("/appointments/types", h.ListTypes)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)

	api.GET("/calendar", h.GetMonth)
	api.GET("/calendar/day", h.GetDay)
}

// SaveResponse carries the stored appointment and, when the doctor is
// already booked nearby, the advisory conflict.
type SaveResponse struct {
	Appointment *Appointment `json:"appointment"`
	Conflict    *Conflict    `json:"conflict"`
}

func toHTTPError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListAppointments(c echo.Context) error {
	tab, err := ParseTab(c.QueryParam("tab"))
	if err != nil {
		return toHTTPError(err)
	}
	appts, err := h.svc.List(c.Request().Context(), tab)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	conflict, err := h.svc.Create(c.Request().Context(), &a)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, SaveResponse{Appointment: &a, Conflict: conflict})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	conflict, err := h.svc.Update(c.Request().Context(), &a)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, SaveResponse{Appointment: &a, Conflict: conflict})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckConflict answers the live form check. A null conflict means the slot
// is clear or the form is still incomplete.
func (h *Handler) CheckConflict(c echo.Context) error {
	var cand Candidate
	if err := c.Bind(&cand); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	conflict, err := h.svc.CheckConflict(c.Request().Context(), cand)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]*Conflict{"conflict": conflict})
}

func (h *Handler) ReferenceNumber(c echo.Context) error {
	ref, err := h.svc.NewReferenceNumber(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"referenceNumber": ref})
}

func (h *Handler) ListTypes(c echo.Context) error {
	out := make([]Indicator, 0, len(AppointmentTypes))
	for _, t := range AppointmentTypes {
		out = append(out, Indicator{Type: t, Color: ColorFor(t)})
	}
	return c.JSON(http.StatusOK, out)
}

// GetMonth renders ?year=&month= or, with neither, the current month.
func (h *Handler) GetMonth(c echo.Context) error {
	m := h.svc.CurrentMonth()
	if ys, ms := c.QueryParam("year"), c.QueryParam("month"); ys != "" || ms != "" {
		year, yerr := strconv.Atoi(ys)
		month, merr := strconv.Atoi(ms)
		if yerr != nil || merr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year and month must both be integers")
		}
		var err error
		if m, err = ParseMonth(year, month); err != nil {
			return toHTTPError(err)
		}
	}
	view, err := h.svc.Month(c.Request().Context(), m)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetDay(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Please select a date")
	}
	items, err := h.svc.Day(c.Request().Context(), date)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}
