package residence

import (
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/spatial"
)

// MultiPolygonRef pairs a patch identifier with its extent geometry so the
// spatial collection stays keyed to the summary table.
type MultiPolygonRef struct {
	Tag      string
	Patch    int
	Geometry spatial.MultiPolygon
}

// PatchSummary is the tabular projection of a Patch, matching the columns
// written out by the external patch writer.
type PatchSummary struct {
	Tag        string                      `json:"tag"`
	Patch      int                         `json:"patch"`
	TimeStart  time.Time                   `json:"time_start"`
	TimeEnd    time.Time                   `json:"time_end"`
	DurationS  float64                     `json:"duration_s"`
	NFixes     int                         `json:"n_fixes"`
	X          float64                     `json:"x"`
	Y          float64                     `json:"y"`
	Area       float64                     `json:"area"`
	Covariates map[string]CovariateSummary `json:"covariates,omitempty"`
}

// SummarizePatches flattens patches into summary rows. Pure projection:
// no new computation beyond reading fields already on the patches.
func SummarizePatches(patches []Patch) []PatchSummary {
	out := make([]PatchSummary, len(patches))
	for i, p := range patches {
		out[i] = PatchSummary{
			Tag:        p.Tag,
			Patch:      p.Number,
			TimeStart:  p.Start,
			TimeEnd:    p.End,
			DurationS:  p.Duration.Seconds(),
			NFixes:     len(p.Fixes),
			X:          p.Centroid.X,
			Y:          p.Centroid.Y,
			Area:       p.Extent.Area(),
			Covariates: p.Summaries,
		}
	}
	return out
}

// PatchSpatials returns the patch extents in patch order, keyed positionally
// to the rows produced by SummarizePatches.
func PatchSpatials(patches []Patch) []MultiPolygonRef {
	out := make([]MultiPolygonRef, len(patches))
	for i, p := range patches {
		out[i] = MultiPolygonRef{Tag: p.Tag, Patch: p.Number, Geometry: p.Extent}
	}
	return out
}
