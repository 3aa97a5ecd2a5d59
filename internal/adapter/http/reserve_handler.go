package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/reserve"
	reserveuc "caisse-core/internal/usecase/reserve"
)

type ReserveHandler struct {
	uc   *reserveuc.Usecase
	sink EventSink
}

func NewReserveHandler(uc *reserveuc.Usecase, sink EventSink) *ReserveHandler {
	return &ReserveHandler{uc: uc, sink: orNop(sink)}
}

func (h *ReserveHandler) Overview(c echo.Context) error {
	a, err := h.uc.Overview(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

type reserveMoveReq struct {
	Amount string `json:"amount" validate:"required"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

func (h *ReserveHandler) Credit(c echo.Context) error {
	return h.move(c, h.uc.Credit)
}

func (h *ReserveHandler) Debit(c echo.Context) error {
	return h.move(c, h.uc.Debit)
}

func (h *ReserveHandler) move(c echo.Context, op func(ctx context.Context, amount decimal.Decimal, actor, note string) (*reserve.Account, []event.Event, error)) error {
	var req reserveMoveReq
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
	a, evs, err := op(c.Request().Context(), amount, c.Request().Header.Get("Cx-Actor"), req.Note)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, a)
}

type fundCaisseReq struct {
	CaisseCode string `json:"caisse_code" validate:"required,caissecode"`
	Amount     string `json:"amount" validate:"required"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

func (h *ReserveHandler) FundCaisse(c echo.Context) error {
	var req fundCaisseReq
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
	a, evs, err := h.uc.FundCaisse(c.Request().Context(), req.CaisseCode, amount, c.Request().Header.Get("Cx-Actor"), req.Note)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, a)
}

func (h *ReserveHandler) Movements(c echo.Context) error {
	out, err := h.uc.Movements(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
