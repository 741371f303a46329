package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/project-tracker/internal/interface/http"
	"github.com/oksasatya/project-tracker/internal/interface/middleware"
)

// ProjectModule serves /projects. Every route requires a bearer token.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Tokens  middleware.TokenVerifier
}

func NewProjectModule(h *handlers.ProjectHandler, tokens middleware.TokenVerifier) *ProjectModule {
	return &ProjectModule{Handler: h, Tokens: tokens}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/projects")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.POST("", m.Handler.Create)
		auth.GET("", m.Handler.List)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/stats", m.Handler.Stats)
		auth.GET("/:id", m.Handler.Get)
		auth.PATCH("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
