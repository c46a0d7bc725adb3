package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commissionService service.CommissionService
}

func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

func (h *CommissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/commissions")
	{
		group.POST("", middleware.RequireRole("admin", "gestor"), h.RegisterCommission)
		group.GET("", middleware.RequireRole("admin", "gestor", "analista"), h.ListCommissions)
	}
}

// RegisterCommission upserts one commission fact keyed by period, partner and product
// @Summary      Register a commission
// @Description  Records a commission fact; resubmitting the same period/partner/product overwrites the amount
// @Tags         commissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        commission body service.CommissionInput true "Commission fact"
// @Success      201 {object} response.Response{data=service.CommissionResponse}
// @Failure      400 {object} response.Response "Missing reference period or product"
// @Failure      500 {object} response.Response
// @Router       /api/commissions [post]
func (h *CommissionHandler) RegisterCommission(c *gin.Context) {
	var input service.CommissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	result, err := h.commissionService.RegisterDetailedCommission(c.Request.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		if isValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListCommissions retrieves commissions newest first
// @Summary      List commissions
// @Description  Retrieves registered commissions, optionally narrowed by period, partner or product
// @Tags         commissions
// @Security     BearerAuth
// @Produce      json
// @Param        reference_period query string false "Reference period (e.g. 2025-10)"
// @Param        partner          query string false "Partner name"
// @Param        product          query string false "Product name"
// @Param        page             query int    false "Page number (default 1)"
// @Param        limit            query int    false "Number of items per page (default 20)"
// @Success      200 {object} response.Response{data=response.Page}
// @Router       /api/commissions [get]
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	params := pagination.Parse(c)

	commissions, total, err := h.commissionService.ListDetailedCommissions(c.Request.Context(), service.ListCommissionsRequest{
		ReferencePeriod: c.Query("reference_period"),
		Partner:         c.Query("partner"),
		Product:         c.Query("product"),
		Limit:           params.Limit,
		Offset:          params.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to list commissions: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, commissions, total, params.Page, params.Limit))
}
