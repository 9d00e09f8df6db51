package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/service"
	"github.com/marmgroup/atlas-best-practices/internal/spatial"
	"github.com/marmgroup/atlas-best-practices/pkg/response"
)

// FixHandler handles HTTP requests for telemetry fixes.
type FixHandler struct {
	service *service.FixService
}

// NewFixHandler creates a new fix handler.
func NewFixHandler(service *service.FixService) *FixHandler {
	return &FixHandler{service: service}
}

// GetFixes handles GET /api/v1/fixes
func (h *FixHandler) GetFixes(c *gin.Context) {
	var filter models.FixFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	fixes, total, err := h.service.GetFixes(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get fixes", err)
		return
	}

	filter.Normalize()
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, models.FixesResponse{
		Data:       fixes,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	})
}

// GetTags handles GET /api/v1/fixes/tags
func (h *FixHandler) GetTags(c *gin.Context) {
	tags, err := h.service.GetTags()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get tags", err)
		return
	}

	response.Success(c, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// ImportFixes handles POST /api/v1/fixes
func (h *FixHandler) ImportFixes(c *gin.Context) {
	var fixes []models.Fix
	if err := c.ShouldBindJSON(&fixes); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(fixes) == 0 {
		response.Error(c, http.StatusBadRequest, "No fixes to import", nil)
		return
	}
	for _, f := range fixes {
		if f.Tag == "" || f.Time == 0 {
			response.Error(c, http.StatusBadRequest,
				"Each fix requires a tag and a time", nil)
			return
		}
	}

	inserted, err := h.service.ImportFixes(fixes)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to import fixes", err)
		return
	}

	response.Success(c, gin.H{"inserted": inserted})
}

// ImportFixesCSV handles POST /api/v1/fixes/import
// The body is CSV with columns tag,time,x,y[,varxy,nbs]; a header row is
// detected by a non-numeric time column and skipped. With ?coords=latlon
// the position columns are latitude,longitude instead, projected into
// local planar meters around the first data row.
func (h *FixHandler) ImportFixesCSV(c *gin.Context) {
	latlon := c.Query("coords") == "latlon"
	fixes, err := parseFixesCSV(c.Request.Body, latlon)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid CSV body", err)
		return
	}
	if len(fixes) == 0 {
		response.Error(c, http.StatusBadRequest, "No fixes to import", nil)
		return
	}

	inserted, err := h.service.ImportFixes(fixes)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to import fixes", err)
		return
	}

	response.Success(c, gin.H{"inserted": inserted})
}

func parseFixesCSV(body io.Reader, latlon bool) ([]models.Fix, error) {
	r := csv.NewReader(body)
	r.FieldsPerRecord = -1

	var (
		fixes   []models.Fix
		proj    spatial.Projection
		hasProj bool
	)
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line, len(record))
		}

		ts, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: invalid time %q: %w", line, record[1], err)
		}

		x, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid x %q: %w", line, record[2], err)
		}
		y, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid y %q: %w", line, record[3], err)
		}

		if latlon {
			lat, lon := x, y
			if !hasProj {
				proj = spatial.NewProjection(lat, lon)
				hasProj = true
			}
			if !proj.InRange(lat, lon) {
				return nil, fmt.Errorf("line %d: fix (%f, %f) too far from projection origin (%f, %f)",
					line, lat, lon, proj.OriginLat, proj.OriginLon)
			}
			x, y = proj.ToPlanar(lat, lon)
		}

		f := models.Fix{Tag: record[0], Time: ts, X: x, Y: y}
		if len(record) > 4 && record[4] != "" {
			if v, err := strconv.ParseFloat(record[4], 64); err == nil {
				f.VarXY = v
			}
		}
		if len(record) > 5 && record[5] != "" {
			if v, err := strconv.Atoi(record[5]); err == nil {
				f.NBS = v
			}
		}
		fixes = append(fixes, f)
	}

	return fixes, nil
}
