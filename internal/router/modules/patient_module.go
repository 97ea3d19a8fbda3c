package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/clinicahealth/clinica-backend/internal/interface/http"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
)

type PatientModule struct {
	Handler *handlers.PatientHandler
	Tokens  *helpers.TokenManager
}

func NewPatientModule(h *handlers.PatientHandler, tokens *helpers.TokenManager) *PatientModule {
	return &PatientModule{Handler: h, Tokens: tokens}
}

func (m *PatientModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/patients/search", m.Handler.Search)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}
