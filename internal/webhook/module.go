package webhook

import (
	apphttp "scanrate_backend/internal/http"
	"scanrate_backend/platform/config"
	"scanrate_backend/platform/logger"
)

// Module is the Telegram intake bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	secret  string
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(cfg config.TelegramConfig, dialogue Dialogue, messenger Messenger, recognizer Recognizer, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(dialogue, messenger, recognizer, log),
		secret:  cfg.GetWebhookSecret(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the Telegram update endpoint on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/telegram")
	group.Use(ctx.RateLimiter.RateLimit())
	group.Use(SecretTokenAuthMiddleware(m.secret))
	group.POST("/updates", m.handler.HandleUpdate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
