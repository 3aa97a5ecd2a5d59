package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	caisseuc "caisse-core/internal/usecase/caisse"
	"caisse-core/internal/usecase/fundledger"
)

type CaisseHandler struct {
	uc     *caisseuc.Usecase
	ledger *fundledger.Usecase
	sink   EventSink
}

func NewCaisseHandler(uc *caisseuc.Usecase, ledger *fundledger.Usecase, sink EventSink) *CaisseHandler {
	return &CaisseHandler{uc: uc, ledger: ledger, sink: orNop(sink)}
}

func (h *CaisseHandler) Create(c echo.Context) error {
	var req caisseuc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	ca, evs, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, ca)
}

func (h *CaisseHandler) Get(c echo.Context) error {
	ca, err := h.uc.Get(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, ca)
}

func (h *CaisseHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CaisseHandler) Delete(c echo.Context) error {
	evs, err := h.uc.Delete(c.Request().Context(), c.Param("code"), c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.NoContent(http.StatusNoContent)
}

type depositReq struct {
	Amount string `json:"amount" validate:"required"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

func (h *CaisseHandler) Deposit(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	mv, evs, err := h.ledger.Deposit(c.Request().Context(), c.Param("code"), amount, c.Request().Header.Get("Cx-Actor"), req.Note)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, mv)
}

func (h *CaisseHandler) Charge(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	mv, evs, err := h.ledger.Charge(c.Request().Context(), c.Param("code"), amount, c.Request().Header.Get("Cx-Actor"), req.Note)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, mv)
}

func (h *CaisseHandler) Movements(c echo.Context) error {
	limit, offset := pageParams(c)
	out, err := h.ledger.Movements(c.Request().Context(), c.Param("code"), limit, offset)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
