// Package router assembles the Gin engine from the initialized application.
package router

import (
	"net/http"

	apphttp "scanrate_backend/internal/http"
	"scanrate_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// New builds the HTTP engine: shared middleware, the health endpoint and
// every registered module's routes under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))

	engine.GET("/healthz", func(c *gin.Context) {
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Telegram delivers one update per request, so a modest per-IP budget
	// still leaves plenty of headroom for its webhook servers.
	limiter := httpkit.NewIPRateLimiter(20, 40, app.Logger)

	routerCtx := &apphttp.RouterContext{
		Engine:      engine,
		V1:          engine.Group("/api/v1"),
		RateLimiter: limiter,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}
