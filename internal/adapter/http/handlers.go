package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/uow"
)

// EventSink receives the events a usecase returned once its transaction has
// committed. In production this is the dispatcher; tests plug in a recorder.
type EventSink interface {
	Dispatch(ctx context.Context, evs []event.Event)
}

type nopSink struct{}

func (nopSink) Dispatch(context.Context, []event.Event) {}

func orNop(s EventSink) EventSink {
	if s == nil {
		return nopSink{}
	}
	return s
}

type Handler struct {
	uow  uow.UnitOfWork
	sink EventSink
}

func NewHandler(u uow.UnitOfWork, sink EventSink) *Handler {
	if sink == nil {
		sink = nopSink{}
	}
	return &Handler{uow: u, sink: sink}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// pageParams reads limit/offset query params with sane defaults.
func pageParams(c echo.Context) (limit, offset int) {
	limit, offset = 50, 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func parseID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	return n, err == nil && n > 0
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	return d, err == nil
}
