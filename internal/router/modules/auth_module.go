package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/clinicahealth/clinica-backend/internal/interface/http"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  *helpers.TokenManager
}

func NewAuthModule(h *handlers.AuthHandler, tokens *helpers.TokenManager) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/verify", m.Handler.Verify)
	rg.POST("/auth/resend-otp", m.Handler.ResendOTP)
	rg.POST("/auth/sign-in", m.Handler.SignIn)
	rg.POST("/auth/refresh", m.Handler.Refresh)
	rg.POST("/auth/forget-password", m.Handler.ForgetPassword)
	rg.POST("/auth/reset-password", m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.POST("/auth/change-password", m.Handler.ChangePassword)
	}
}
