package http

import (
	"io"
	"net/http"
	"strconv"

	domainPhoto "site-report-backend/internal/domain/photo"
	"site-report-backend/internal/usecase/photo"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type PhotoHandler struct {
	uc  *photo.Usecase
	log *logger.Logger
}

func NewPhotoHandler(uc *photo.Usecase, log *logger.Logger) *PhotoHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PhotoHandler{uc: uc, log: log}
}

type reorderReq struct {
	IDs []uint64 `json:"ids" validate:"required,min=1"`
}

type captionReq struct {
	Caption  string `json:"caption"`
	Category string `json:"category" validate:"max=120"`
	Location string `json:"location" validate:"max=200"`
}

type annotationsReq struct {
	Annotations []domainPhoto.Annotation `json:"annotations"`
}

// kindOf reads ?kind=express; anything else addresses regular reports.
func kindOf(c echo.Context) domainPhoto.Kind {
	if c.QueryParam("kind") == string(domainPhoto.KindExpress) {
		return domainPhoto.KindExpress
	}
	return domainPhoto.KindReport
}

// Upload takes a multipart "file" part plus optional caption, category and
// location fields.
func (h *PhotoHandler) Upload(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file part")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file part")
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "unreadable file part")
	}

	dto, err := h.uc.Put(c.Request().Context(), photo.PutInput{
		Kind:        kindOf(c),
		ReportID:    reportID,
		Bytes:       b,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Filename:    fh.Filename,
		Caption:     c.FormValue("caption"),
		Category:    c.FormValue("category"),
		Location:    c.FormValue("location"),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PhotoHandler) List(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	list, err := h.uc.List(c.Request().Context(), kindOf(c), reportID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get serves the photo bytes with the stored content type.
func (h *PhotoHandler) Get(c echo.Context) error {
	id, ok := idParam(c, "photo_id")
	if !ok {
		return badParam(c, "photo_id")
	}
	blob, err := h.uc.Get(c.Request().Context(), kindOf(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	res := c.Response().Header()
	res.Set(echo.HeaderContentLength, strconv.Itoa(len(blob.Bytes)))
	res.Set("Cache-Control", "private, max-age=3600")
	if blob.Filename != "" {
		res.Set(echo.HeaderContentDisposition, `inline; filename="`+blob.Filename+`"`)
	}
	return c.Blob(http.StatusOK, blob.ContentType, blob.Bytes)
}

func (h *PhotoHandler) Delete(c echo.Context) error {
	id, ok := idParam(c, "photo_id")
	if !ok {
		return badParam(c, "photo_id")
	}
	if err := h.uc.Delete(c.Request().Context(), kindOf(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PhotoHandler) Reorder(c echo.Context) error {
	reportID, ok := idParam(c, "report_id")
	if !ok {
		return badParam(c, "report_id")
	}
	var req reorderReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	if err := h.uc.Reorder(ctx, kindOf(c), reportID, req.IDs); err != nil {
		return fail(c, h.log, err)
	}
	list, err := h.uc.List(ctx, kindOf(c), reportID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PhotoHandler) UpdateCaption(c echo.Context) error {
	id, ok := idParam(c, "photo_id")
	if !ok {
		return badParam(c, "photo_id")
	}
	var req captionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateCaption(c.Request().Context(), kindOf(c), id, req.Caption, req.Category, req.Location)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PhotoHandler) SetAnnotations(c echo.Context) error {
	id, ok := idParam(c, "photo_id")
	if !ok {
		return badParam(c, "photo_id")
	}
	var req annotationsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	dto, err := h.uc.SetAnnotations(c.Request().Context(), kindOf(c), id, req.Annotations)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
