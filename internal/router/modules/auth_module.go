package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/project-tracker/internal/interface/http"
)

// AuthModule serves the public identity routes:
// POST /auth/signup, POST /auth/signin
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", m.Handler.Signup)
	rg.POST("/auth/signin", m.Handler.Signin)
}
