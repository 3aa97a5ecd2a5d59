package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	loanuc "caisse-core/internal/usecase/loan"
	repayuc "caisse-core/internal/usecase/repayment"
)

type LoanHandler struct {
	uc    *loanuc.Usecase
	repay *repayuc.Usecase
	sink  EventSink
}

func NewLoanHandler(uc *loanuc.Usecase, repay *repayuc.Usecase, sink EventSink) *LoanHandler {
	return &LoanHandler{uc: uc, repay: repay, sink: orNop(sink)}
}

func (h *LoanHandler) Submit(c echo.Context) error {
	var req loanuc.SubmitInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, evs, err := h.uc.Submit(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) Get(c echo.Context) error {
	l, installments, err := h.uc.Get(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan": l, "installments": installments})
}

func (h *LoanHandler) ListByCaisse(c echo.Context) error {
	out, err := h.uc.ListByCaisse(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) SendToReview(c echo.Context) error {
	l, evs, err := h.uc.SendToReview(c.Request().Context(), c.Param("number"), c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) Approve(c echo.Context) error {
	var req loanuc.ReviewInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	req.Number = c.Param("number")
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, evs, err := h.uc.Approve(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, l)
}

type reasonReq struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (h *LoanHandler) Hold(c echo.Context) error {
	var req reasonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, evs, err := h.uc.Hold(c.Request().Context(), c.Param("number"), req.Reason, c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) Reject(c echo.Context) error {
	var req reasonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, evs, err := h.uc.Reject(c.Request().Context(), c.Param("number"), req.Reason, c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	l, evs, err := h.uc.Disburse(c.Request().Context(), c.Param("number"), c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) Delete(c echo.Context) error {
	evs, err := h.uc.Delete(c.Request().Context(), c.Param("number"), c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.NoContent(http.StatusNoContent)
}

// BackfillSchedule regenerates a disbursed loan's installment plan when none
// was persisted, a repair path for rows imported from the legacy system.
func (h *LoanHandler) BackfillSchedule(c echo.Context) error {
	if err := h.uc.EnsureSchedule(c.Request().Context(), c.Param("number")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayuc.RepayInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	req.Number = c.Param("number")
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, mv, evs, err := h.repay.Repay(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, map[string]any{"loan": l, "movement": mv})
}
