package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jgirmay/inquizzitive/internal/analytics/services"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
)

const maxChartDays = 365

type AnalyticsHandler struct {
	service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/analytics")
	g.GET("", h.Analyze)
	g.GET("/charts", h.Charts)
	g.GET("/summary", h.Summary)
	g.GET("/cached", h.Cached)
	g.POST("/refresh", h.Refresh)
}

// Analyze returns weak areas, strengths, recommendations and progress
// GET /api/v1/analytics
func (h *AnalyticsHandler) Analyze(c *gin.Context) {
	result, err := h.service.Analyze(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/analytics/charts?days=30
func (h *AnalyticsHandler) Charts(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxChartDays {
			middleware.JSONErrorResponse(c, errors.BadRequest("days must be between 1 and 365"))
			return
		}
		days = n
	}

	data, err := h.service.ChartData(c.Request.Context(), middleware.UserID(c), days)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/v1/analytics/cached
func (h *AnalyticsHandler) Cached(c *gin.Context) {
	cached, err := h.service.CachedAnalysis(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, cached)
}

// Refresh recomputes the cache synchronously and returns the new snapshot
// POST /api/v1/analytics/refresh
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.service.RefreshCache(c.Request.Context(), userID); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	cached, err := h.service.CachedAnalysis(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, cached)
}
