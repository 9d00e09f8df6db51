package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/service"
	"github.com/marmgroup/atlas-best-practices/pkg/response"
)

// PatchHandler handles HTTP requests for residence patches.
type PatchHandler struct {
	service *service.PatchService
}

// NewPatchHandler creates a new patch handler.
func NewPatchHandler(service *service.PatchService) *PatchHandler {
	return &PatchHandler{service: service}
}

// GetPatches handles GET /api/v1/patches
func (h *PatchHandler) GetPatches(c *gin.Context) {
	var filter models.PatchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	patches, total, err := h.service.GetPatches(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get residence patches", err)
		return
	}

	filter.Normalize()
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, models.PatchesResponse{
		Data:       patches,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	})
}

// GetPatchByID handles GET /api/v1/patches/:id
func (h *PatchHandler) GetPatchByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid patch ID", err)
		return
	}

	patch, err := h.service.GetPatchByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get residence patch", err)
		return
	}

	if patch == nil {
		response.Error(c, http.StatusNotFound, "Residence patch not found", nil)
		return
	}

	response.Success(c, patch)
}

// GetPatchSpatial handles GET /api/v1/patches/:id/spatial
// It returns the patch extent as WKT so GIS clients can load it directly.
func (h *PatchHandler) GetPatchSpatial(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid patch ID", err)
		return
	}

	patch, err := h.service.GetPatchByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get residence patch", err)
		return
	}

	if patch == nil {
		response.Error(c, http.StatusNotFound, "Residence patch not found", nil)
		return
	}

	response.Success(c, gin.H{
		"tag":      patch.Tag,
		"patch":    patch.Patch,
		"geometry": patch.ExtentWKT,
		"area_sqm": patch.AreaSqM,
	})
}
