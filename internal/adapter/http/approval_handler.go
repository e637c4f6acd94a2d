package http

import (
	"net/http"

	"site-report-backend/internal/usecase/approval"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct {
	uc  *approval.Usecase
	log *logger.Logger
}

func NewApprovalHandler(uc *approval.Usecase, log *logger.Logger) *ApprovalHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ApprovalHandler{uc: uc, log: log}
}

type rejectReq struct {
	Reason string `json:"reason" validate:"notblank"`
}

type setApproverReq struct {
	ApproverID uint64 `json:"approver_id" validate:"required"`
}

// approvalResp adds the "sent X/Y" line shown to the approver.
type approvalResp struct {
	*approval.ApprovalDTO
	Summary string `json:"summary,omitempty"`
}

func (h *ApprovalHandler) Submit(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	dto, err := h.uc.Submit(c.Request().Context(), approval.SubmitInput{ReportID: reportID, ActorID: actorID})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Approve is idempotent: a repeated call answers 200 with already_approved
// and sends nothing.
func (h *ApprovalHandler) Approve(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	dto, err := h.uc.Approve(c.Request().Context(), approval.ApproveInput{ReportID: reportID, ApproverID: actorID})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toApprovalResp(dto))
}

func (h *ApprovalHandler) ApproveExpress(c echo.Context) error {
	expressID, ok := idParam(c, "express_id")
	if !ok {
		return badParam(c, "express_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	dto, err := h.uc.ApproveExpress(c.Request().Context(), approval.ApproveInput{ReportID: expressID, ApproverID: actorID})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toApprovalResp(dto))
}

func (h *ApprovalHandler) Reject(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req rejectReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), approval.RejectInput{ReportID: reportID, ApproverID: actorID, Reason: req.Reason})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Dispatch re-sends the artifact of an approved report as a new batch.
func (h *ApprovalHandler) Dispatch(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	res, err := h.uc.Dispatch(c.Request().Context(), actorID, reportID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"dispatch": res, "summary": res.Summary()})
}

func (h *ApprovalHandler) SetGlobalApprover(c echo.Context) error {
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req setApproverReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.SetGlobalApprover(c.Request().Context(), actorID, req.ApproverID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) SetProjectApprover(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	actorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req setApproverReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.SetProjectApprover(c.Request().Context(), actorID, projectID, req.ApproverID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func toApprovalResp(dto *approval.ApprovalDTO) approvalResp {
	resp := approvalResp{ApprovalDTO: dto}
	if dto.Dispatch != nil {
		resp.Summary = dto.Dispatch.Summary()
	}
	return resp
}
