package ehr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/ehr", h.ListEHR)
	api.POST("/ehr", h.CreateEHR)
	api.GET("/ehr/timeline", h.PatientTimeline)
	api.GET("/ehr/:id", h.GetEHR)
	api.PUT("/ehr/:id", h.UpdateEHR)
	api.DELETE("/ehr/:id", h.DeleteEHR)
	api.GET("/ehr/:id/timeline", h.GetTimeline)

	sessions := api.Group("/ehr/sessions")
	sessions.POST("", h.OpenSession)
	sessions.GET("/:sid", h.GetSession)
	sessions.DELETE("/:sid", h.CloseSession)
	sessions.PATCH("/:sid/fields", h.SetField)
	sessions.POST("/:sid/save", h.SaveSession)
	sessions.POST("/:sid/teeth/:number/toggle", h.ToggleTooth)
	sessions.POST("/:sid/:section", h.AddEntry)
	sessions.PATCH("/:sid/:section/:entryId", h.UpdateEntry)
	sessions.DELETE("/:sid/:section/:entryId", h.RemoveEntry)
}

// FieldChange is the body of every single-field edit.
type FieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func toHTTPError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
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

func parseOptionalID(c echo.Context, name string) (int64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func isDraft(c echo.Context) bool {
	draft, _ := strconv.ParseBool(c.QueryParam("draft"))
	return draft
}

func actor(c echo.Context) string {
	return auth.ActorFromContext(c.Request().Context())
}

// -- Records --

func (h *Handler) ListEHR(c echo.Context) error {
	patientID, err := parseOptionalID(c, "patient_id")
	if err != nil {
		return err
	}
	recs, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) CreateEHR(c echo.Context) error {
	var r EHR
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &r, isDraft(c), actor(c)); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetEHR(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateEHR(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var r EHR
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	changes, err := h.svc.Update(c.Request().Context(), &r, isDraft(c), actor(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"record": r, "changes": changes})
}

func (h *Handler) DeleteEHR(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetTimeline(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	events, err := h.svc.Timeline(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) PatientTimeline(c echo.Context) error {
	patientID, err := parseOptionalID(c, "patient_id")
	if err != nil {
		return err
	}
	if patientID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	events, err := h.svc.PatientTimeline(c.Request().Context(), patientID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, events)
}

// -- Editing sessions --

type openSessionRequest struct {
	EHRID         int64 `json:"ehrId"`
	PatientID     int64 `json:"patientId"`
	AppointmentID int64 `json:"appointmentId"`
}

func (h *Handler) OpenSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.OpenSession(c.Request().Context(), req.EHRID, req.PatientID, req.AppointmentID, actor(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetSession(c echo.Context) error {
	v, err := h.svc.Session(c.Param("sid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) CloseSession(c echo.Context) error {
	if err := h.svc.CloseSession(c.Param("sid")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetField(c echo.Context) error {
	var fc FieldChange
	if err := c.Bind(&fc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	_, err := h.svc.Edit(c.Param("sid"), func(ed *Editor) (interface{}, error) {
		return nil, ed.SetField(fc.Field, fc.Value)
	})
	if err != nil {
		return toHTTPError(err)
	}
	return h.GetSession(c)
}

type addEntryRequest struct {
	ToothNumber int `json:"toothNumber"`
}

// AddEntry appends a defaulted entry. For teeth an optional toothNumber
// picks the tooth.
func (h *Handler) AddEntry(c echo.Context) error {
	var req addEntryRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	section := c.Param("section")
	entry, err := h.svc.Edit(c.Param("sid"), func(ed *Editor) (interface{}, error) {
		if section == SectionTeeth {
			return ed.AddTooth(req.ToothNumber)
		}
		return ed.Add(section)
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(c echo.Context) error {
	var fc FieldChange
	if err := c.Bind(&fc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.svc.Edit(c.Param("sid"), func(ed *Editor) (interface{}, error) {
		return ed.Update(c.Param("section"), c.Param("entryId"), fc.Field, fc.Value)
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) RemoveEntry(c echo.Context) error {
	_, err := h.svc.Edit(c.Param("sid"), func(ed *Editor) (interface{}, error) {
		return nil, ed.Remove(c.Param("section"), c.Param("entryId"))
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleTooth(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tooth number")
	}
	_, err = h.svc.Edit(c.Param("sid"), func(ed *Editor) (interface{}, error) {
		return ed.ToggleTooth(number)
	})
	if err != nil {
		return toHTTPError(err)
	}
	return h.GetSession(c)
}

func (h *Handler) SaveSession(c echo.Context) error {
	rec, err := h.svc.SaveSession(c.Request().Context(), c.Param("sid"), isDraft(c), actor(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}
