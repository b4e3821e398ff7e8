package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/userhub/accounts-api/internal/container"
	handlers "github.com/userhub/accounts-api/internal/interface/http"
	"github.com/userhub/accounts-api/internal/interface/middleware"
)

// PasswordModule wires the three public reset-protocol endpoints. All three
// carry tight per-IP limits; the code has little entropy, so verify attempts
// are the ones worth throttling hardest.
type PasswordModule struct {
	Handler *handlers.PasswordHandler
}

func NewPasswordModule(h *handlers.PasswordHandler) *PasswordModule {
	return &PasswordModule{Handler: h}
}

func (m *PasswordModule) Register(rg *gin.RouterGroup) {
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/password/forgot", forgotLimiter, m.Handler.Forgot)
	rg.POST("/password/verify-reset-code", verifyLimiter, m.Handler.VerifyResetCode)
	rg.POST("/password/reset", resetLimiter, m.Handler.Reset)
}
