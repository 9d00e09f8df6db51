package residence

import (
	"errors"
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/spatial"
)

// Precondition failures reported by the engine. The computation is
// deterministic and pure, so none of these are retryable.
var (
	ErrInvalidRadius     = errors.New("residence: radius must be > 0")
	ErrInvalidWindow     = errors.New("residence: smoothing window must be odd and >= 1")
	ErrEmptyTrack        = errors.New("residence: track has no fixes")
	ErrInsufficientFixes = errors.New("residence: track too short for requested computation")
)

// Covariate keys commonly attached to ATLAS fixes.
const (
	CovVarXY = "varxy" // position error SD (meters)
	CovNBS   = "nbs"   // number of base stations used for the fix
	CovSpeed = "speed" // instantaneous speed (m/s)
)

// Fix is one telemetry observation for a tracked individual: a timestamp
// and a position in a local planar projection (meters). Covariates carry
// optional per-fix quality or derived values keyed by the Cov* constants.
// Tracks are ordered by Time within a tag and never mutated by the engine.
type Fix struct {
	Tag        string
	Time       time.Time
	X          float64
	Y          float64
	Covariates map[string]float64
}

// Covariate returns the named covariate and whether it is present.
func (f Fix) Covariate(name string) (float64, bool) {
	v, ok := f.Covariates[name]
	return v, ok
}

// GapUndefined marks the gap before the first revisit of a reference fix.
// It never compares greater than a threshold, so the first revisit can
// never register as a long absence.
const GapUndefined = time.Duration(-1)

// Revisit is a maximal contiguous run of track fixes that stay within the
// revisit radius of a reference fix. Gap is the time between the end of the
// previous revisit and the start of this one (GapUndefined for the first).
type Revisit struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Gap      time.Duration
}

// AbsenceRule decides when a gap between revisits counts as a long absence.
// With CountTies false (the default) a gap must strictly exceed Threshold;
// with CountTies true a gap exactly equal to Threshold also triggers.
type AbsenceRule struct {
	Threshold time.Duration
	CountTies bool
}

// triggers reports whether gap qualifies as a long absence under the rule.
func (r AbsenceRule) triggers(gap time.Duration) bool {
	if gap == GapUndefined {
		return false
	}
	if r.CountTies {
		return gap >= r.Threshold
	}
	return gap > r.Threshold
}

// ResidenceRecord aggregates the revisit history of one reference fix:
// cumulative time inside the radius up to the first long absence, the
// duration of the first revisit, and how many revisits were retained.
type ResidenceRecord struct {
	FixIndex      int
	ResidenceTime time.Duration
	FirstPassage  time.Duration
	RevisitCount  int
}

// CovariateSummary holds the per-patch mean and sample standard deviation
// of one covariate across member fixes.
type CovariateSummary struct {
	Mean float64
	SD   float64
}

// Patch is a spatio-temporally bounded cluster of reference fixes
// representing sustained occupancy of an area. Extent is the dissolved
// union of disk buffers around the member positions.
type Patch struct {
	Tag       string
	Number    int
	Fixes     []Fix
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Centroid  spatial.Point
	Extent    spatial.MultiPolygon
	Summaries map[string]CovariateSummary
}

// SegmentParams configures patch segmentation. Two fixes join the same
// spatial cluster when their distance is at most
// SpatialIndepLimit + 2*BufferRadius (inclusive); a cluster splits in time
// wherever consecutive members are more than TemporalIndepLimit apart.
type SegmentParams struct {
	SpatialIndepLimit  float64
	TemporalIndepLimit time.Duration
	BufferRadius       float64
	MinFixes           int
	MinResidence       time.Duration
	SummaryCovariates  []string
}

// Params bundles the full engine configuration for one pipeline run.
// MaxGap is the sampling-gap tolerance: a revisit run breaks when two
// consecutive in-radius fixes are more than MaxGap apart, so a hole in the
// data reads as an absence rather than continuous attendance. MaxGap <= 0
// disables time-based splitting.
type Params struct {
	Radius  float64
	MaxGap  time.Duration
	Absence AbsenceRule
	Segment SegmentParams
}

// DefaultParams returns the configuration used by the original field
// deployments: 50 m revisit radius, 60 min absence threshold, 100 m
// spatial and 30 min temporal independence, 25 m buffers, 3-fix minimum.
func DefaultParams() Params {
	return Params{
		Radius:  50,
		MaxGap:  15 * time.Minute,
		Absence: AbsenceRule{Threshold: 60 * time.Minute},
		Segment: SegmentParams{
			SpatialIndepLimit:  100,
			TemporalIndepLimit: 30 * time.Minute,
			BufferRadius:       25,
			MinFixes:           3,
			MinResidence:       5 * time.Minute,
		},
	}
}
