package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ems-mock/internal/ems"
)

// EMSService is the set of read-only views served over HTTP.
type EMSService interface {
	LiveTelemetry() ems.LiveTelemetry
	KPIs() ems.KPIReport
	Charts() ems.ChartSet
	SiteCharts(siteID string) ems.ChartSet
	ChartSummary() ems.ChartSummary
	Analytics() ems.Analytics
	Alerts() []ems.Alert
	Tariff() ems.TariffReport
	Weather() ems.Weather
	Sites() []ems.SiteStatus
}

// EMSHandler exposes the EMS views. Every endpoint is a plain GET with no
// parameters other than the site id in the path.
type EMSHandler struct {
	svc EMSService
}

// NewEMSHandler creates a new EMS handler
func NewEMSHandler(svc EMSService) *EMSHandler {
	return &EMSHandler{svc: svc}
}

// Live handles GET /live
func (h *EMSHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.LiveTelemetry())
}

// KPIs handles GET /kpis
func (h *EMSHandler) KPIs(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.KPIs())
}

// Charts handles GET /charts
func (h *EMSHandler) Charts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Charts())
}

// ChartSummary handles GET /charts/summary
func (h *EMSHandler) ChartSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ChartSummary())
}

// Analytics handles GET /analytics
func (h *EMSHandler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics())
}

// Alerts handles GET /alerts
func (h *EMSHandler) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Alerts())
}

// Tariff handles GET /tariff
func (h *EMSHandler) Tariff(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Tariff())
}

// Weather handles GET /weather
func (h *EMSHandler) Weather(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Weather())
}

// Sites handles GET /sites
func (h *EMSHandler) Sites(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sites())
}

// SiteCharts handles GET /sites/:site_id/charts. Unknown ids are not an
// error.
func (h *EMSHandler) SiteCharts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.SiteCharts(c.Param("site_id")))
}
