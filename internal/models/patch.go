package models

import "time"

// ResidencePatch represents a persisted residence patch: a spatio-temporal
// cluster of fixes where an individual lingered. The spatial extent is
// stored as WKT so an external writer can lift it into GeoPackage output.
type ResidencePatch struct {
	ID    int64  `json:"id" db:"id"`
	Tag   string `json:"tag" db:"tag"`
	Patch int    `json:"patch" db:"patch"` // 1-based patch number within the tag

	// Temporal info
	StartTime       int64   `json:"start_time" db:"start_time"` // Unix timestamp
	EndTime         int64   `json:"end_time" db:"end_time"`     // Unix timestamp
	DurationSeconds float64 `json:"duration_s" db:"duration_s"`

	// Spatial info
	NFixes     int     `json:"n_fixes" db:"n_fixes"`
	X          float64 `json:"x" db:"x"` // centroid
	Y          float64 `json:"y" db:"y"`
	AreaSqM    float64 `json:"area_sqm" db:"area_sqm"`
	ExtentWKT  string  `json:"extent_wkt,omitempty" db:"extent_wkt"`

	// Covariate summaries
	MeanVarXY float64 `json:"mean_varxy,omitempty" db:"mean_varxy"`
	SDVarXY   float64 `json:"sd_varxy,omitempty" db:"sd_varxy"`
	MeanSpeed float64 `json:"mean_speed,omitempty" db:"mean_speed"`
	SDSpeed   float64 `json:"sd_speed,omitempty" db:"sd_speed"`

	// Metadata
	AlgoVersion string    `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PatchFilter represents filter parameters for querying residence patches.
type PatchFilter struct {
	Tag         string  `form:"tag"`
	StartTime   int64   `form:"startTime"` // Unix timestamp
	EndTime     int64   `form:"endTime"`   // Unix timestamp
	MinDuration float64 `form:"minDuration"`
	MinFixes    int     `form:"minFixes"`
	Page        int     `form:"page"`
	PageSize    int     `form:"pageSize"`
}

// Normalize clamps paging parameters to the supported range. Both the
// repository and the HTTP layer apply it so the page math agrees.
func (f *PatchFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}

// PatchesResponse represents a paginated response of residence patches.
type PatchesResponse struct {
	Data       []ResidencePatch `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}
