package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	transferuc "caisse-core/internal/usecase/transfer"
)

type TransferHandler struct {
	uc   *transferuc.Usecase
	sink EventSink
}

func NewTransferHandler(uc *transferuc.Usecase, sink EventSink) *TransferHandler {
	return &TransferHandler{uc: uc, sink: orNop(sink)}
}

func (h *TransferHandler) Create(c echo.Context) error {
	var req transferuc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	t, evs, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, t)
}

func (h *TransferHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "transfer_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transfer_id"})
	}
	t, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TransferHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransferHandler) Execute(c echo.Context) error {
	id, ok := parseID(c, "transfer_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transfer_id"})
	}
	t, evs, err := h.uc.Execute(c.Request().Context(), id, c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, t)
}

func (h *TransferHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "transfer_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transfer_id"})
	}
	t, evs, err := h.uc.Cancel(c.Request().Context(), id, c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, t)
}
