package http

import (
	"net/http"

	"site-report-backend/internal/usecase/checklist"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ChecklistHandler struct {
	uc  *checklist.Usecase
	log *logger.Logger
}

func NewChecklistHandler(uc *checklist.Usecase, log *logger.Logger) *ChecklistHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChecklistHandler{uc: uc, log: log}
}

type addItemReq struct {
	Text string `json:"text" validate:"notblank"`
}

func (h *ChecklistHandler) List(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	list, err := h.uc.List(c.Request().Context(), projectID, c.QueryParam("all") == "true")
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ChecklistHandler) Add(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	var req addItemReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Add(c.Request().Context(), checklist.AddInput{ProjectID: projectID, Text: req.Text})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ChecklistHandler) Reorder(c echo.Context) error {
	projectID, ok := idParam(c, "project_id")
	if !ok {
		return badParam(c, "project_id")
	}
	var req reorderReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	list, err := h.uc.Reorder(c.Request().Context(), projectID, req.IDs)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ChecklistHandler) Deactivate(c echo.Context) error {
	id, ok := idParam(c, "item_id")
	if !ok {
		return badParam(c, "item_id")
	}
	if err := h.uc.Deactivate(c.Request().Context(), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
