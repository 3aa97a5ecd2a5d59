package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"caisse-core/internal/domain/member"
	contribuc "caisse-core/internal/usecase/contribution"
	memberuc "caisse-core/internal/usecase/member"
)

type MemberHandler struct {
	uc      *memberuc.Usecase
	contrib *contribuc.Usecase
	sink    EventSink
}

func NewMemberHandler(uc *memberuc.Usecase, contrib *contribuc.Usecase, sink EventSink) *MemberHandler {
	return &MemberHandler{uc: uc, contrib: contrib, sink: orNop(sink)}
}

func (h *MemberHandler) Create(c echo.Context) error {
	var req memberuc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	req.CaisseCode = c.Param("code")
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	m, evs, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListByCaisse(c.Request().Context(), c.Param("code"), limit, offset)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type setStatusReq struct {
	Status member.Status `json:"status" validate:"required,oneof=ACTIF INACTIF SUSPENDU RETRAITE"`
}

func (h *MemberHandler) SetStatus(c echo.Context) error {
	id, ok := parseID(c, "member_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid member_id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	m, evs, err := h.uc.SetStatus(c.Request().Context(), id, req.Status, c.Request().Header.Get("Cx-Actor"))
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) RecordContribution(c echo.Context) error {
	var req contribuc.RecordInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	req.CaisseCode = c.Param("code")
	if id, ok := parseID(c, "member_id"); ok {
		req.MemberID = id
	}
	if req.Actor == "" {
		req.Actor = c.Request().Header.Get("Cx-Actor")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	ct, evs, err := h.contrib.Record(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	h.sink.Dispatch(c.Request().Context(), evs)
	return c.JSON(http.StatusCreated, ct)
}

func (h *MemberHandler) ListContributions(c echo.Context) error {
	id, ok := parseID(c, "member_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid member_id"})
	}
	limit, offset := pageParams(c)
	out, err := h.contrib.ListByMember(c.Request().Context(), id, limit, offset)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
