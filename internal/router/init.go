package router

import (
	"github.com/profilehub/profilehub/internal/application"
	"github.com/profilehub/profilehub/internal/container"
	"github.com/profilehub/profilehub/internal/infrastructure/gcstore"
	pginfra "github.com/profilehub/profilehub/internal/infrastructure/postgres"
	handlers "github.com/profilehub/profilehub/internal/interface/http"
	"github.com/profilehub/profilehub/internal/router/modules"
)

// InitModules wires the feature modules from the container singletons and
// registers them. Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	authHandler := handlers.NewAuthHandler(
		container.GetAuth(),
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
		cfg.ServiceURL,
	)

	profiles := pginfra.NewProfileRepository(container.GetPGPool())
	accounts := pginfra.NewAccountRepository(container.GetPGPool())
	media := gcstore.NewStore(container.GetGCS(), cfg.GCSBucket, container.GetLogger())

	// A typed nil would dodge the service's nil check, so only assign the
	// publisher when it was actually constructed.
	var jobs application.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		jobs = pub
	}

	profileSvc := application.NewProfileService(
		profiles,
		accounts,
		media,
		jobs,
		container.GetES(),
		cfg.ESProfilesIndex,
		container.GetLogger(),
		cfg.AppName,
		cfg.ServiceURL,
	)
	profileHandler := handlers.NewProfileHandler(
		profileSvc,
		container.GetAuth(),
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewProfileModule(profileHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
