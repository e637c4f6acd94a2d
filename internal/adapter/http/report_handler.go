package http

import (
	"net/http"

	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/usecase/artifact"
	"site-report-backend/internal/usecase/report"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	uc        *report.Usecase
	artifacts *artifact.Usecase
	log       *logger.Logger
}

func NewReportHandler(uc *report.Usecase, artifacts *artifact.Usecase, log *logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportHandler{uc: uc, artifacts: artifacts, log: log}
}

type companionReq struct {
	Name  string `json:"name"  validate:"max=200"`
	Email string `json:"email" validate:"max=255"`
}

type createReportReq struct {
	Title             string         `json:"title"               validate:"notblank,max=200"`
	Content           string         `json:"content"`
	Companions        []companionReq `json:"companions"          validate:"dive"`
	NextVisitReminder string         `json:"next_visit_reminder"`
	CompletedItems    []uint64       `json:"completed_items"`
}

type updateReportReq struct {
	Title             *string         `json:"title"               validate:"omitempty,notblank,max=200"`
	Content           *string         `json:"content"`
	Companions        *[]companionReq `json:"companions"`
	NextVisitReminder *string         `json:"next_visit_reminder"`
	CompletedItems    *[]uint64       `json:"completed_items"`
}

type createExpressReq struct {
	SiteName           string         `json:"site_name"           validate:"notblank,max=200"`
	SiteAddress        string         `json:"site_address"`
	ResponsibleCompany string         `json:"responsible_company" validate:"max=200"`
	ResponsibleName    string         `json:"responsible_name"    validate:"max=200"`
	ContactEmail       string         `json:"contact_email"       validate:"omitempty,mailbox"`
	ContactPhone       string         `json:"contact_phone"       validate:"max=40"`
	Content            string         `json:"content"`
	Companions         []companionReq `json:"companions"          validate:"dive"`
	NextVisitReminder  string         `json:"next_visit_reminder"`
}

// Companion addresses are stored as typed; unusable ones are only counted
// when recipients are resolved.
func companions(in []companionReq) []domainReport.Companion {
	out := make([]domainReport.Companion, 0, len(in))
	for _, c := range in {
		out = append(out, domainReport.Companion{Name: c.Name, Email: c.Email})
	}
	return out
}

func (h *ReportHandler) CreateReport(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	authorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req createReportReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), report.CreateInput{
		ProjectID:         projectID,
		AuthorID:          authorID,
		Title:             req.Title,
		Content:           req.Content,
		Companions:        companions(req.Companions),
		NextVisitReminder: req.NextVisitReminder,
		CompletedItems:    req.CompletedItems,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ReportHandler) ListReports(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	list, err := h.uc.ListByProject(c.Request().Context(), projectID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReportHandler) GetReport(c echo.Context) error {
	id, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReportHandler) UpdateReport(c echo.Context) error {
	id, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	var req updateReportReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := report.UpdateInput{
		Title:             req.Title,
		Content:           req.Content,
		NextVisitReminder: req.NextVisitReminder,
		CompletedItems:    req.CompletedItems,
	}
	if req.Companions != nil {
		list := companions(*req.Companions)
		in.Companions = &list
	}
	dto, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// DownloadPDF renders the report as it stands and serves it as an attachment.
func (h *ReportHandler) DownloadPDF(c echo.Context) error {
	id, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	art, err := h.artifacts.Download(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+art.Filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", art.Bytes)
}

func (h *ReportHandler) CreateExpress(c echo.Context) error {
	authorID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req createExpressReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateExpress(c.Request().Context(), report.CreateExpressInput{
		AuthorID: authorID,
		Site: domainReport.SiteInfo{
			SiteName:           req.SiteName,
			SiteAddress:        req.SiteAddress,
			ResponsibleCompany: req.ResponsibleCompany,
			ResponsibleName:    req.ResponsibleName,
			ContactEmail:       req.ContactEmail,
			ContactPhone:       req.ContactPhone,
		},
		Content:           req.Content,
		Companions:        companions(req.Companions),
		NextVisitReminder: req.NextVisitReminder,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ReportHandler) GetExpress(c echo.Context) error {
	id, ok := idParam(c, "express_id")
	if !ok {
		return badParam(c, "express_id")
	}
	dto, err := h.uc.GetExpress(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
