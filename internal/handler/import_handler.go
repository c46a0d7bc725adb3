package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	importService service.ImportService
}

func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/imports")
	{
		group.POST("", middleware.RequireRole("admin", "gestor"), h.ImportReport)
		group.POST("/upload", middleware.RequireRole("admin", "gestor"), h.UploadReport)
		group.GET("", middleware.RequireRole("admin", "gestor", "analista"), h.ListImportBatches)
	}
}

// ImportReport ingests pre-parsed report rows
// @Summary      Import a report
// @Description  Normalizes the rows, runs analysis and persists the batch with its records atomically
// @Tags         imports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        report body service.ImportRequest true "Report rows"
// @Success      201 {object} response.Response{data=service.ImportResult}
// @Failure      400 {object} response.Response "Missing filename or rows"
// @Failure      500 {object} response.Response
// @Router       /api/imports [post]
func (h *ImportHandler) ImportReport(c *gin.Context) {
	var req service.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}
	if req.Actor == "" {
		req.Actor = c.GetString("userID")
	}

	result, err := h.importService.ImportReport(c.Request.Context(), req)
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

// UploadReport ingests a CSV file upload
// @Summary      Upload a report file
// @Description  Parses a comma or semicolon separated CSV and imports its rows
// @Tags         imports
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData file   true  "CSV report"
// @Param        promotora formData string false "Partner name"
// @Success      201 {object} response.Response{data=service.ImportResult}
// @Failure      400 {object} response.Response "Missing or unreadable file"
// @Failure      500 {object} response.Response
// @Router       /api/imports/upload [post]
func (h *ImportHandler) UploadReport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload: "+err.Error()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open upload: "+err.Error()))
		return
	}
	defer file.Close()

	rows, err := h.importService.ParseCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to parse CSV: "+err.Error()))
		return
	}

	result, err := h.importService.ImportReport(c.Request.Context(), service.ImportRequest{
		Filename: fileHeader.Filename,
		Partner:  c.PostForm("promotora"),
		Actor:    c.GetString("userID"),
		Rows:     rows,
	})
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

// ListImportBatches retrieves past ingestion runs newest first
// @Summary      List import batches
// @Tags         imports
// @Security     BearerAuth
// @Produce      json
// @Param        page  query int false "Page number (default 1)"
// @Param        limit query int false "Number of items per page (default 20)"
// @Success      200 {object} response.Response{data=response.Page}
// @Router       /api/imports [get]
func (h *ImportHandler) ListImportBatches(c *gin.Context) {
	params := pagination.Parse(c)

	batches, total, err := h.importService.ListImportBatches(c.Request.Context(), service.ListImportBatchesRequest{
		Page:  params.Page,
		Limit: params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to list import batches: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, batches, total, params.Page, params.Limit))
}
