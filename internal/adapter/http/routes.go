package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health        *Handler
	Reports       *ReportHandler
	Photos        *PhotoHandler
	Approvals     *ApprovalHandler
	Notifications *NotificationHandler
	Checklist     *ChecklistHandler
}

// Register mounts every route. session authenticates the actor; idempotency
// guards the approval endpoints and must run after session.
func Register(e *echo.Echo, h Handlers, session, idempotency echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	g := e.Group("", session)

	g.GET("/projects/:project_id/reports", h.Reports.ListReports)
	g.POST("/projects/:project_id/reports", h.Reports.CreateReport)
	g.GET("/reports/:report_id", h.Reports.GetReport)
	g.PATCH("/reports/:report_id", h.Reports.UpdateReport)
	g.GET("/reports/:report_id/pdf", h.Reports.DownloadPDF)
	g.POST("/express", h.Reports.CreateExpress)
	g.GET("/express/:express_id", h.Reports.GetExpress)

	g.GET("/reports/:report_id/photos", h.Photos.List)
	g.POST("/reports/:report_id/photos", h.Photos.Upload)
	g.PUT("/reports/:report_id/photos/order", h.Photos.Reorder)
	g.GET("/photos/:photo_id", h.Photos.Get)
	g.DELETE("/photos/:photo_id", h.Photos.Delete)
	g.PATCH("/photos/:photo_id", h.Photos.UpdateCaption)
	g.PUT("/photos/:photo_id/annotations", h.Photos.SetAnnotations)

	g.POST("/reports/:report_id/submit", h.Approvals.Submit)
	g.POST("/reports/:report_id/approve", h.Approvals.Approve, idempotency)
	g.POST("/reports/:report_id/reject", h.Approvals.Reject)
	g.POST("/reports/:report_id/dispatch", h.Approvals.Dispatch, idempotency)
	g.POST("/express/:express_id/approve", h.Approvals.ApproveExpress, idempotency)
	g.PUT("/approvers/global", h.Approvals.SetGlobalApprover)
	g.PUT("/projects/:project_id/approver", h.Approvals.SetProjectApprover)

	g.GET("/notifications", h.Notifications.List)
	g.POST("/notifications/:notification_id/read", h.Notifications.MarkRead)
	g.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	g.POST("/devices", h.Notifications.RegisterDevice)
	g.DELETE("/devices/:token", h.Notifications.UnregisterDevice)

	g.GET("/projects/:project_id/checklist", h.Checklist.List)
	g.POST("/projects/:project_id/checklist", h.Checklist.Add)
	g.PUT("/projects/:project_id/checklist/order", h.Checklist.Reorder)
	g.DELETE("/checklist/:item_id", h.Checklist.Deactivate)
}
