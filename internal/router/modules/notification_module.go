package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/clinicahealth/clinica-backend/internal/interface/http"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Tokens  *helpers.TokenManager
}

func NewNotificationModule(h *handlers.NotificationHandler, tokens *helpers.TokenManager) *NotificationModule {
	return &NotificationModule{Handler: h, Tokens: tokens}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/notifications", m.Handler.List)
		auth.GET("/notifications/unread-count", m.Handler.UnreadCount)
		auth.POST("/notifications/read", m.Handler.MarkRead)
	}
}
