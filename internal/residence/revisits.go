package residence

import (
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/spatial"
)

// ComputeRevisits computes, for every fix in the track, the time-ordered
// maximal runs of fixes that stay within radius of it. A run is delimited
// by an excursion beyond the radius or by a sampling gap longer than
// maxGap (maxGap <= 0 disables gap splitting). Distance ties at exactly
// the radius are inclusive. A fix with no other fixes inside the radius
// gets an empty revisit list.
//
// Runs for a given reference fix never overlap: each track index belongs
// to at most one run, and runs are emitted in time order.
func ComputeRevisits(track []Fix, radius float64, maxGap time.Duration) ([][]Revisit, error) {
	if radius <= 0 {
		return nil, ErrInvalidRadius
	}
	if len(track) == 0 {
		return nil, ErrEmptyTrack
	}

	out := make([][]Revisit, len(track))
	for i := range track {
		out[i] = revisitsOf(track, i, radius, maxGap)
	}
	return out, nil
}

// revisitsOf scans the whole track once and collects the maximal runs of
// consecutive fixes within radius of track[i].
func revisitsOf(track []Fix, i int, radius float64, maxGap time.Duration) []Revisit {
	ref := track[i]
	var runs []Revisit
	neighbours := 0

	j := 0
	for j < len(track) {
		if !withinRadius(track[j], ref, radius) {
			j++
			continue
		}
		k := j
		for k+1 < len(track) &&
			withinRadius(track[k+1], ref, radius) &&
			!gapExceeded(track[k], track[k+1], maxGap) {
			k++
		}
		neighbours += k - j + 1
		r := Revisit{
			Start:    track[j].Time,
			End:      track[k].Time,
			Duration: track[k].Time.Sub(track[j].Time),
			Gap:      GapUndefined,
		}
		if len(runs) > 0 {
			r.Gap = r.Start.Sub(runs[len(runs)-1].End)
		}
		runs = append(runs, r)
		j = k + 1
	}

	// The reference fix always matches itself. Without at least one other
	// fix inside the radius there is nothing to call a revisit.
	if neighbours <= 1 {
		return nil
	}
	return runs
}

func withinRadius(a, b Fix, radius float64) bool {
	return spatial.Distance(a.X, a.Y, b.X, b.Y) <= radius
}

func gapExceeded(a, b Fix, maxGap time.Duration) bool {
	return maxGap > 0 && b.Time.Sub(a.Time) > maxGap
}
