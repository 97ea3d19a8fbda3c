package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinicahealth/clinica-backend/internal/application"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/apperr"
	"github.com/clinicahealth/clinica-backend/pkg/response"
	"github.com/clinicahealth/clinica-backend/pkg/validation"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

func (h *NotificationHandler) fail(c *gin.Context, err error) {
	if ae, ok := apperr.From(err); ok {
		response.Error(c, ae.Status, ae.Message, nil)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).Error("unexpected error")
	}
	response.Error(c, http.StatusInternalServerError, "internal error", nil)
}

// List GET /api/notifications?limit=
func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.Svc.List(c.Request.Context(), claims.ID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "notifications")
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	n, err := h.Svc.UnreadCount(c.Request.Context(), claims.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": n}, "unread count")
}

type markReadRequest struct {
	ID string `json:"id" binding:"required"`
}

// MarkRead POST /api/notifications/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.MarkRead(c.Request.Context(), claims.ID, req.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true}, "notification marked read")
}
