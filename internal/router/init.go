package router

import (
	"github.com/userhub/accounts-api/internal/application"
	"github.com/userhub/accounts-api/internal/container"
	pginfra "github.com/userhub/accounts-api/internal/infrastructure/postgres"
	handlers "github.com/userhub/accounts-api/internal/interface/http"
	"github.com/userhub/accounts-api/internal/router/modules"
)

// InitModules builds services and handlers from the container singletons and
// registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	accountSvc := application.NewAccountService(
		repo,
		container.GetJWT(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
	)
	// Avoid handing a typed-nil Mailgun to the Notifier interface.
	var notifier application.Notifier
	if mg := container.GetMailgun(); mg != nil {
		notifier = mg
	}
	resetSvc := application.NewResetService(
		repo,
		container.GetResetSigner(),
		notifier,
		container.GetRedis(),
		container.GetLogger(),
		cfg.AppName,
		cfg.ResetCodeTTL,
		cfg.MailSendEnabled,
	)

	userHandler := handlers.NewUserHandler(accountSvc, container.GetLogger(), cfg, container.GetRabbitPub())
	passwordHandler := handlers.NewPasswordHandler(resetSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewPasswordModule(passwordHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
