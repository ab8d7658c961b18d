package supply

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
	api.GET("/supplies", h.ListSupplies)
	api.POST("/supplies", h.CreateSupply)
	api.GET("/supplies/categories", h.ListCategories)
	api.GET("/supplies/:id", h.GetSupply)
	api.PUT("/supplies/:id", h.UpdateSupply)
	api.DELETE("/supplies/:id", h.DeleteSupply)
	api.GET("/supplies/:id/transactions", h.ListSupplyTransactions)
	api.POST("/supplies/:id/transactions", h.CreateSupplyTransaction)

	api.GET("/transactions", h.ListTransactions)
	api.POST("/transactions", h.CreateTransaction)
}

func toHTTPError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTransactionNotFound):
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

func (h *Handler) ListSupplies(c echo.Context) error {
	q, err := ParseQuery(c.QueryParam("search"), c.QueryParam("category"), c.QueryParam("stock"))
	if err != nil {
		return toHTTPError(err)
	}
	items, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateSupply(c echo.Context) error {
	var s Supply
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &s); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) ListCategories(c echo.Context) error {
	cats, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) GetSupply(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) UpdateSupply(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var s Supply
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.ID = id
	if err := h.svc.Update(c.Request().Context(), &s); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteSupply(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListSupplyTransactions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Transactions(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateSupplyTransaction(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return h.recordTransaction(c, id)
}

func (h *Handler) ListTransactions(c echo.Context) error {
	var supplyID int64
	if s := c.QueryParam("supply_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid supply_id")
		}
		supplyID = id
	}
	items, err := h.svc.Transactions(c.Request().Context(), supplyID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateTransaction(c echo.Context) error {
	return h.recordTransaction(c, 0)
}

// TransactionResponse returns the stored transaction with the supply's new
// level.
type TransactionResponse struct {
	Transaction StockTransaction `json:"transaction"`
	Supply      View             `json:"supply"`
}

func (h *Handler) recordTransaction(c echo.Context, supplyID int64) error {
	var tx StockTransaction
	if err := c.Bind(&tx); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if supplyID != 0 {
		tx.SupplyID = supplyID
	}
	actor := auth.ActorFromContext(c.Request().Context())
	sp, err := h.svc.RecordTransaction(c.Request().Context(), &tx, actor)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, TransactionResponse{
		Transaction: tx,
		Supply:      View{Supply: *sp, Status: StatusOf(sp.Quantity, h.svc.Threshold())},
	})
}
