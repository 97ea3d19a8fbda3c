package router

import (
	"github.com/clinicahealth/clinica-backend/internal/application"
	"github.com/clinicahealth/clinica-backend/internal/container"
	pginfra "github.com/clinicahealth/clinica-backend/internal/infrastructure/postgres"
	handlers "github.com/clinicahealth/clinica-backend/internal/interface/http"
	"github.com/clinicahealth/clinica-backend/internal/router/modules"
)

// InitModules builds every feature module from the container singletons
// and adds it to the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	notifRepo := pginfra.NewNotificationRepository(pool)

	// keep the interface nil when the publisher is absent so email
	// dispatch stays a no-op
	var mail application.EmailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	authSvc := application.NewAuthService(users, container.GetTokens(), mail, logger, cfg.OTPTTL)
	patientSvc := application.NewPatientService(users, container.GetGCS(), cfg.GCSBucket, container.GetES(), cfg.ESPatientsIndex, logger)
	var fcm application.MessagingClient
	if c := container.GetFCM(); c != nil {
		fcm = c
	}
	notifSvc := application.NewNotificationService(fcm, notifRepo, container.GetRedis(), logger)

	authHandler := handlers.NewAuthHandler(authSvc, patientSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	notifHandler := handlers.NewNotificationHandler(notifSvc, logger)
	patientHandler := handlers.NewPatientHandler(patientSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetTokens()))
	r.Add(modules.NewNotificationModule(notifHandler, container.GetTokens()))
	r.Add(modules.NewPatientModule(patientHandler, container.GetTokens()))
}
