package api

import (
	"log/slog"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-codegen-pipeline/docs"
	"go-codegen-pipeline/internal/api/handler"
	"go-codegen-pipeline/internal/app"
	"go-codegen-pipeline/pkg/router"
)

// NewRouter builds the HTTP surface of a.
func NewRouter(a *app.App, logger *slog.Logger) *router.Router {
	r := router.New(logger)
	RegisterRoutes(r, handler.NewRunHandler(a))
	r.Mount("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return r
}

func RegisterRoutes(r *router.Router, h *handler.RunHandler) {
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	// More specific routes first
	r.POST("/api/v1/runs/*/cancel", h.CancelRun)
	r.GET("/api/v1/runs/*", h.GetRun)
	r.GET("/api/v1/progress", h.GetProgress)
	r.GET("/api/v1/health", h.GetHealth)
	r.GET("/api/v1/columns", h.GetColumns)
	r.GET("/api/v1/download/*/*", h.Download)
}
