package http

import (
	"net/http"
	"net/url"

	"site-report-backend/internal/usecase/notification"
	"site-report-backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	uc  *notification.Usecase
	log *logger.Logger
}

func NewNotificationHandler(uc *notification.Usecase, log *logger.Logger) *NotificationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationHandler{uc: uc, log: log}
}

type deviceReq struct {
	Token string `json:"token" validate:"notblank,max=512"`
	Info  string `json:"info"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	list, err := h.uc.List(c.Request().Context(), userID, c.QueryParam("unread") == "true")
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, ok := idParam(c, "notification_id")
	if !ok {
		return badParam(c, "notification_id")
	}
	userID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	if err := h.uc.MarkRead(c.Request().Context(), userID, id); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	n, err := h.uc.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}

func (h *NotificationHandler) RegisterDevice(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req deviceReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if err := h.uc.RegisterDevice(c.Request().Context(), notification.DeviceInput{UserID: userID, Token: req.Token, Info: req.Info}); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) UnregisterDevice(c echo.Context) error {
	token, err := url.PathUnescape(c.Param("token"))
	if err != nil {
		return badParam(c, "token")
	}
	if err := h.uc.UnregisterDevice(c.Request().Context(), token); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
