// Package api wires the HTTP surface: health, the EMS views under a base
// path, and the optional metrics and live-stream endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ems-mock/internal/api/handlers"
	"ems-mock/internal/api/middleware"
	"ems-mock/internal/logger"
)

type Options struct {
	BasePath    string
	CORSOrigins []string
	Logger      logger.Logger
	// Requests receives per-request observations. Optional.
	Requests middleware.RequestRecorder
	// Metrics is mounted at MetricsPath when not nil.
	Metrics     http.Handler
	MetricsPath string
	// Stream is mounted at StreamPath when not nil.
	Stream     http.Handler
	StreamPath string
}

// NewRouter builds the gin engine. The gin mode must be set by the caller.
func NewRouter(svc handlers.EMSService, opts Options) *gin.Engine {
	if opts.BasePath == "" {
		opts.BasePath = "/api/ems"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(opts.Logger, opts.Requests))
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(middleware.ErrorHandler(opts.Logger))

	router.GET("/health", handlers.Health)
	router.GET("/api/health", handlers.Health)

	h := handlers.NewEMSHandler(svc)
	api := router.Group(opts.BasePath)
	{
		api.GET("/live", h.Live)
		api.GET("/kpis", h.KPIs)
		api.GET("/charts", h.Charts)
		api.GET("/charts/summary", h.ChartSummary)
		api.GET("/analytics", h.Analytics)
		api.GET("/alerts", h.Alerts)
		api.GET("/tariff", h.Tariff)
		api.GET("/weather", h.Weather)
		api.GET("/sites", h.Sites)
		api.GET("/sites/:site_id/charts", h.SiteCharts)
	}

	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(opts.Metrics))
	}
	if opts.Stream != nil && opts.StreamPath != "" {
		router.GET(opts.StreamPath, gin.WrapH(opts.Stream))
	}

	router.NoRoute(middleware.NotFound)
	return router
}
