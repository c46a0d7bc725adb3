package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	analysisService service.AnalysisService
}

func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/analysis")
	{
		group.POST("", middleware.RequireRole("admin", "gestor", "analista"), h.AnalyzeReport)
	}
}

// AnalyzeReport runs analysis without persisting anything
// @Summary      Analyze a report
// @Description  Sends the rows to the remote analyzer, falling back to local heuristics when it is unreachable
// @Tags         analysis
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        batch body service.ReportBatch true "Report rows"
// @Success      200 {object} response.Response{data=service.AnalysisResult}
// @Failure      400 {object} response.Response
// @Router       /api/analysis [post]
func (h *AnalysisHandler) AnalyzeReport(c *gin.Context) {
	var batch service.ReportBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	result := h.analysisService.AnalyzeReport(c.Request.Context(), batch)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
