package residence

import (
	"sort"

	"github.com/marmgroup/atlas-best-practices/internal/spatial"
	"github.com/marmgroup/atlas-best-practices/internal/stats"
)

// SegmentPatches groups reference fixes into residence patches. The fixes
// and records must be parallel slices in track (time) order.
//
// Segmentation is two-phase. First, fixes whose residence time passed the
// MinResidence filter are merged into spatial clusters by connected
// components over the threshold graph with threshold
// SpatialIndepLimit + 2*BufferRadius (inclusive at the boundary), so the
// result does not depend on scan order. Second, each spatial cluster is
// split wherever the time gap between temporally consecutive members
// exceeds TemporalIndepLimit; members with identical timestamps have zero
// gap and never split. Candidates with fewer than MinFixes members are
// discarded and never revisited.
func SegmentPatches(track []Fix, records []ResidenceRecord, p SegmentParams) ([]Patch, error) {
	if len(track) == 0 {
		return nil, ErrEmptyTrack
	}
	if len(records) != len(track) {
		return nil, ErrInsufficientFixes
	}

	minFixes := p.MinFixes
	if minFixes < 1 {
		minFixes = 1
	}

	// Residence filter: only fixes with enough aggregated residence time
	// become patch candidates.
	var candidates []int
	for i, rec := range records {
		if rec.ResidenceTime >= p.MinResidence {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	clusters := spatialClusters(track, candidates, p.SpatialIndepLimit+2*p.BufferRadius)

	var patches []Patch
	for _, cluster := range clusters {
		for _, members := range temporalSplit(track, cluster, p) {
			if len(members) < minFixes {
				continue
			}
			patches = append(patches, buildPatch(track, members, p))
		}
	}

	// Patch numbering follows start time so output ordering is stable.
	sort.SliceStable(patches, func(i, j int) bool {
		return patches[i].Start.Before(patches[j].Start)
	})
	for i := range patches {
		patches[i].Number = i + 1
	}
	return patches, nil
}

// spatialClusters runs union-find over the candidate fixes, joining any
// pair at most threshold apart. Clusters come back ordered by their
// earliest member index, members in track order.
func spatialClusters(track []Fix, candidates []int, threshold float64) [][]int {
	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(candidates); i++ {
		fi := track[candidates[i]]
		for j := i + 1; j < len(candidates); j++ {
			fj := track[candidates[j]]
			if spatial.Distance(fi.X, fi.Y, fj.X, fj.Y) <= threshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	var order []int
	for i, idx := range candidates {
		root := find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], idx)
	}

	clusters := make([][]int, 0, len(order))
	for _, root := range order {
		clusters = append(clusters, groups[root])
	}
	return clusters
}

// temporalSplit cuts a spatial cluster into sub-clusters at every gap
// strictly exceeding TemporalIndepLimit.
func temporalSplit(track []Fix, members []int, p SegmentParams) [][]int {
	var subs [][]int
	current := []int{members[0]}
	for _, idx := range members[1:] {
		prev := current[len(current)-1]
		if track[idx].Time.Sub(track[prev].Time) > p.TemporalIndepLimit {
			subs = append(subs, current)
			current = nil
		}
		current = append(current, idx)
	}
	return append(subs, current)
}

func buildPatch(track []Fix, members []int, p SegmentParams) Patch {
	fixes := make([]Fix, len(members))
	points := make([]spatial.Point, len(members))
	for i, idx := range members {
		fixes[i] = track[idx]
		points[i] = spatial.Point{X: track[idx].X, Y: track[idx].Y}
	}

	patch := Patch{
		Tag:      fixes[0].Tag,
		Fixes:    fixes,
		Start:    fixes[0].Time,
		End:      fixes[len(fixes)-1].Time,
		Centroid: spatial.Centroid(points),
		Extent:   spatial.BufferUnion(points, p.BufferRadius),
	}
	patch.Duration = patch.End.Sub(patch.Start)

	if len(p.SummaryCovariates) > 0 {
		patch.Summaries = summarizeCovariates(fixes, p.SummaryCovariates)
	}
	return patch
}

func summarizeCovariates(fixes []Fix, names []string) map[string]CovariateSummary {
	out := make(map[string]CovariateSummary, len(names))
	for _, name := range names {
		var values []float64
		for _, f := range fixes {
			if v, ok := f.Covariate(name); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		out[name] = CovariateSummary{
			Mean: stats.Mean(values),
			SD:   stats.StdDev(values),
		}
	}
	return out
}
