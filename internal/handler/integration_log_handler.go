package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type IntegrationLogHandler struct {
	logRepo repository.IntegrationLogRepository
}

func NewIntegrationLogHandler(logRepo repository.IntegrationLogRepository) *IntegrationLogHandler {
	return &IntegrationLogHandler{logRepo: logRepo}
}

func (h *IntegrationLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit")
	group.Use(middleware.RequireRole("admin", "gestor")) // Protect the audit trail
	{
		group.GET("", h.GetIntegrationLogs)
	}
}

// GetIntegrationLogs retrieves the audit trail of integration operations
// @Summary      Get integration logs
// @Description  Retrieves analysis and import audit entries, newest first
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        source  query string false "Source (codex, importacao)"
// @Param        outcome query string false "Outcome (sucesso, alerta, erro, info)"
// @Param        page    query int    false "Page number (default 1)"
// @Param        limit   query int    false "Number of items per page (default 20)"
// @Success      200 {object} response.Response{data=response.Page}
// @Router       /api/audit [get]
func (h *IntegrationLogHandler) GetIntegrationLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.logRepo.List(c.Request.Context(), repository.IntegrationLogFilter{
		Source:  c.Query("source"),
		Outcome: c.Query("outcome"),
	}, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve integration logs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}
