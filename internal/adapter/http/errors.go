package http

import (
	"errors"
	"net/http"
	"strconv"

	"site-report-backend/internal/adapter/middleware"
	domainApproval "site-report-backend/internal/domain/approval"
	"site-report-backend/internal/domain/checklist"
	"site-report-backend/internal/domain/notification"
	domainPhoto "site-report-backend/internal/domain/photo"
	"site-report-backend/internal/domain/project"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/user"
	"site-report-backend/internal/infrastructure/pdf"
	checklistUC "site-report-backend/internal/usecase/checklist"
	notificationUC "site-report-backend/internal/usecase/notification"
	photoUC "site-report-backend/internal/usecase/photo"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

var errMissingActor = errors.New("missing session")

// Map domain errors → HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainReport.ErrNotFound),
		errors.Is(err, domainPhoto.ErrNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, checklist.ErrNotFound),
		errors.Is(err, domainApproval.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainPhoto.ErrPhotoMissing):
		return http.StatusGone
	case errors.Is(err, domainApproval.ErrNotApprover),
		errors.Is(err, domainReport.ErrNotAuthor):
		return http.StatusForbidden
	case errors.Is(err, domainReport.ErrFrozen),
		errors.Is(err, domainReport.ErrAlreadyApproved),
		errors.Is(err, domainReport.ErrInvalidTransition),
		errors.Is(err, domainReport.ErrNumberingContention):
		return http.StatusConflict
	case errors.Is(err, domainPhoto.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domainPhoto.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domainReport.ErrMissingFields),
		errors.Is(err, domainPhoto.ErrBadOrder),
		errors.Is(err, checklist.ErrBadOrder),
		errors.Is(err, photoUC.ErrInvalidAnnotation),
		errors.Is(err, checklistUC.ErrEmptyText),
		errors.Is(err, notificationUC.ErrEmptyToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMissingActor):
		return http.StatusUnauthorized
	case errors.Is(err, pdf.ErrTemplateMissing),
		errors.Is(err, pdf.ErrTemplateUnreadable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an ErrorResponse. Internal errors are logged and
// answered with a generic message.
func fail(c echo.Context, log *logger.Logger, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// bindValid binds the body into req and validates it. It writes the error
// response itself and reports whether the handler may continue.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

func idParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func badParam(c echo.Context, name string) error {
	return badRequest(c, "invalid "+name+" path param")
}

func actor(c echo.Context) (uint64, error) {
	id, ok := middleware.ActorID(c)
	if !ok {
		return 0, errMissingActor
	}
	return id, nil
}
