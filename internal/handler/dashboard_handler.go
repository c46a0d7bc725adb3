package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/dashboard")
	group.Use(middleware.RequireRole("admin", "gestor", "analista"))
	{
		group.GET("", h.GetDashboard)
		group.POST("/refresh", h.RefreshDashboard)
	}
}

// GetDashboard builds the consolidated dashboard for the filtered window
// @Summary      Get dashboard insights
// @Description  Aggregates contracts, commissions and imports into metrics, rankings, charts and a period-over-period comparison
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        partner    query string false "Partner name"
// @Param        product    query string false "Product name"
// @Param        status     query string false "Contract status"
// @Param        start_date query string false "Start date (YYYY-MM-DD or DD/MM/YYYY, inclusive)"
// @Param        end_date   query string false "End date (YYYY-MM-DD or DD/MM/YYYY, inclusive)"
// @Success      200 {object} response.Response{data=model.DashboardView}
// @Failure      500 {object} response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var filters service.DashboardFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid filters: "+err.Error()))
		return
	}

	view, err := h.dashboardService.ComputeDashboardInsights(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build dashboard: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// RefreshDashboard drops the memoized dashboard views
// @Summary      Invalidate the dashboard cache
// @Description  Forces the next dashboard request to recompute from the database
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /api/dashboard/refresh [post]
func (h *DashboardHandler) RefreshDashboard(c *gin.Context) {
	h.dashboardService.InvalidateCache()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"message": "dashboard cache invalidated",
	}))
}
