package catalog

import (
	"scanrate_backend/internal/catalog/repository"
	apphttp "scanrate_backend/internal/http"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the catalog module.
func NewModule(repo *repository.Repository) *Module {
	return &Module{handler: NewHandler(repo)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/products")
	group.Use(ctx.RateLimiter.RateLimit())
	group.GET("/:barcode", m.handler.HandleGetProduct)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
