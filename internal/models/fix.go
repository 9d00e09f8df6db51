package models

// Fix represents one ATLAS telemetry observation as stored in the fixes
// table: a tag identifier, a Unix timestamp, a position in the local
// planar projection, and the quality covariates delivered by the
// localization system.
type Fix struct {
	ID       int64   `json:"id" db:"id"`
	Tag      string  `json:"tag" db:"tag"`
	Time     int64   `json:"time" db:"time"` // Unix timestamp in seconds
	X        float64 `json:"x" db:"x"`
	Y        float64 `json:"y" db:"y"`
	VarXY    float64 `json:"varxy,omitempty" db:"varxy"` // position error SD (m)
	NBS      int     `json:"nbs,omitempty" db:"nbs"`     // base stations used
	Outlier  bool    `json:"outlier,omitempty" db:"outlier"`
	NightKey string  `json:"night,omitempty" db:"night"` // tracking night (YYYY-MM-DD)
}

// FixesResponse represents a paginated response of fixes.
type FixesResponse struct {
	Data       []Fix `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// FixFilter represents filter parameters for querying fixes.
type FixFilter struct {
	Tag       string  `form:"tag"`
	StartTime int64   `form:"startTime"` // Unix timestamp
	EndTime   int64   `form:"endTime"`   // Unix timestamp
	MaxVarXY  float64 `form:"maxVarxy"`
	MinNBS    int     `form:"minNbs"`
	Page      int     `form:"page"`
	PageSize  int     `form:"pageSize"`
}

// Normalize clamps paging parameters to the supported range. Both the
// repository and the HTTP layer apply it so the page math agrees.
func (f *FixFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 10000 {
		f.PageSize = 10000
	}
}
