package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/uow"
)

// Notifications lists a caisse's notifications, newest first.
func (h *Handler) Notifications(c echo.Context) error {
	limit, offset := pageParams(c)
	var out []notification.Notification
	err := h.uow.WithinTx(c.Request().Context(), func(r uow.Repos) error {
		ca, err := r.Caisses.GetByCode(c.Request().Context(), c.Param("code"))
		if err != nil {
			return err
		}
		out, err = r.Notifications.ListByCaisse(c.Request().Context(), ca.ID, limit, offset)
		return err
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, ok := parseID(c, "notification_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification_id"})
	}
	err := h.uow.WithinTx(c.Request().Context(), func(r uow.Repos) error {
		return r.Notifications.MarkRead(c.Request().Context(), id)
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AuditTrail lists audit entries for one entity, e.g. entity=loan ref=PRT...
func (h *Handler) AuditTrail(c echo.Context) error {
	entity := c.QueryParam("entity")
	ref := c.QueryParam("ref")
	if entity == "" || ref == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "entity and ref query params are required"})
	}
	limit, offset := pageParams(c)
	var out []audit.Entry
	err := h.uow.WithinTx(c.Request().Context(), func(r uow.Repos) error {
		var err error
		out, err = r.Audits.ListByEntity(c.Request().Context(), entity, ref, limit, offset)
		return err
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
