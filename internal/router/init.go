package router

import (
	"github.com/oksasatya/project-tracker/internal/application"
	"github.com/oksasatya/project-tracker/internal/container"
	pginfra "github.com/oksasatya/project-tracker/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/project-tracker/internal/interface/http"
	"github.com/oksasatya/project-tracker/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.IdentityService
	Handler *handlers.AuthHandler
}

type ProjectModuleDeps struct {
	Service *application.ProjectService
	Handler *handlers.ProjectHandler
}

func buildAuthDeps(c *container.Container) AuthModuleDeps {
	repo := pginfra.NewUserRepository(c.Pool)
	service := application.NewIdentityService(repo, c.JWT, c.Logger)
	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, c.Logger),
	}
}

func buildProjectDeps(c *container.Container) ProjectModuleDeps {
	repo := pginfra.NewProjectRepository(c.Pool)
	service := application.NewProjectService(repo, c.Notifier(), c.ProjectIndex(), c.Logger)
	return ProjectModuleDeps{
		Service: service,
		Handler: handlers.NewProjectHandler(service, c.Logger),
	}
}

// InitModules wires every module from the container. Call once at startup,
// before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	auth := buildAuthDeps(c)
	projects := buildProjectDeps(c)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(c.Pool)))
	r.Add(modules.NewAuthModule(auth.Handler))
	r.Add(modules.NewProjectModule(projects.Handler, c.JWT))
	if c.Config.MetricsEnabled {
		r.Add(modules.NewMetricsModule())
	}
}
