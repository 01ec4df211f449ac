package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/config"
	"github.com/octobees/wa-validator/internal/handler"
	middlewarepkg "github.com/octobees/wa-validator/internal/middleware"
	"github.com/octobees/wa-validator/internal/validator"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserAdminHandler
	Customers  *handler.CustomersHandler
	Validation *handler.ValidationHandler
	Import     *handler.ImportHandler
	Search     *handler.SearchHandler
	Export     *handler.ExportHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.Validator = validator.Echo{}

	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/logout", handlers.Auth.Logout)

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/auth/me", handlers.Auth.Me)
	secured.GET("/customers", handlers.Customers.List)
	secured.PUT("/customers/:id", handlers.Customers.Update)
	secured.POST("/export", handlers.Export.Export)

	validateLimit := middlewarepkg.RateLimiter(cfg.RateLimitValidate, "Validation rate limit exceeded")
	secured.POST("/validate/single", handlers.Validation.Single, validateLimit)
	secured.POST("/validate/bulk", handlers.Validation.Bulk, validateLimit)

	enrichLimit := middlewarepkg.RateLimiter(cfg.RateLimitEnrich, "Enrichment rate limit exceeded")
	secured.POST("/import/enrich", handlers.Import.Enrich, enrichLimit)
	secured.POST("/import/upload", handlers.Import.Upload, enrichLimit)
	secured.PUT("/import/enrich", handlers.Import.Confirm)
	secured.POST("/search/phone", handlers.Search.Search, enrichLimit)
	secured.GET("/search/phone", handlers.Search.Enrich, enrichLimit)

	if handlers.Users != nil {
		admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
		admin.GET("/users", handlers.Users.List)
		admin.POST("/users", handlers.Users.Create)
		admin.DELETE("/users/:id", handlers.Users.Delete)
	}
}
