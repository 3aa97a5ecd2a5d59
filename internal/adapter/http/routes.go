package http

import "github.com/labstack/echo/v4"

// Register wires every route onto the echo instance.
func Register(e *echo.Echo, h *Handler, ch *CaisseHandler, mh *MemberHandler, lh *LoanHandler, rh *ReserveHandler, th *TransferHandler) {
	e.GET("/health", h.Health)

	e.POST("/caisses", ch.Create)
	e.GET("/caisses", ch.List)
	e.GET("/caisses/:code", ch.Get)
	e.DELETE("/caisses/:code", ch.Delete)
	e.POST("/caisses/:code/deposits", ch.Deposit)
	e.POST("/caisses/:code/charges", ch.Charge)
	e.GET("/caisses/:code/movements", ch.Movements)
	e.GET("/caisses/:code/notifications", h.Notifications)

	e.POST("/caisses/:code/members", mh.Create)
	e.GET("/caisses/:code/members", mh.List)
	e.PATCH("/members/:member_id/status", mh.SetStatus)
	e.POST("/caisses/:code/members/:member_id/contributions", mh.RecordContribution)
	e.GET("/members/:member_id/contributions", mh.ListContributions)

	e.POST("/loans", lh.Submit)
	e.GET("/loans/:number", lh.Get)
	e.GET("/caisses/:code/loans", lh.ListByCaisse)
	e.POST("/loans/:number/review", lh.SendToReview)
	e.POST("/loans/:number/approve", lh.Approve)
	e.POST("/loans/:number/hold", lh.Hold)
	e.POST("/loans/:number/reject", lh.Reject)
	e.POST("/loans/:number/disburse", lh.Disburse)
	e.POST("/loans/:number/repayments", lh.Repay)
	e.POST("/loans/:number/schedule/backfill", lh.BackfillSchedule)
	e.DELETE("/loans/:number", lh.Delete)

	e.GET("/reserve", rh.Overview)
	e.POST("/reserve/credits", rh.Credit)
	e.POST("/reserve/debits", rh.Debit)
	e.POST("/reserve/fund-caisse", rh.FundCaisse)
	e.GET("/reserve/movements", rh.Movements)

	e.POST("/transfers", th.Create)
	e.GET("/transfers", th.List)
	e.GET("/transfers/:transfer_id", th.Get)
	e.POST("/transfers/:transfer_id/execute", th.Execute)
	e.POST("/transfers/:transfer_id/cancel", th.Cancel)

	e.POST("/notifications/:notification_id/read", h.MarkNotificationRead)
	e.GET("/audit", h.AuditTrail)
}
