package residence

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/spatial"
)

func testSegmentParams() SegmentParams {
	return SegmentParams{
		SpatialIndepLimit:  100,
		TemporalIndepLimit: 30 * time.Minute,
		BufferRadius:       25,
		MinFixes:           2,
	}
}

func TestSegmentPatches_EmptyTrack(t *testing.T) {
	_, err := SegmentPatches(nil, nil, testSegmentParams())
	if !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("expected ErrEmptyTrack, got %v", err)
	}
}

func TestSegmentPatches_RecordMismatch(t *testing.T) {
	track := stationaryTrack(3, 0, 1, 0, 0)
	_, err := SegmentPatches(track, zeroRecords(track[:2]), testSegmentParams())
	if !errors.Is(err, ErrInsufficientFixes) {
		t.Errorf("expected ErrInsufficientFixes, got %v", err)
	}
}

// Spec scenario: two clusters 200 m apart with a 100 m independence limit
// and 25 m buffers give a 150 m merge threshold, so they stay separate.
func TestSegmentPatches_TwoClustersStaySeparate(t *testing.T) {
	var track []Fix
	track = append(track, stationaryTrack(5, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(5, 5, 1, 200, 0)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(patches))
	}
	for _, p := range patches {
		if len(p.Fixes) != 5 {
			t.Errorf("patch %d: expected 5 fixes, got %d", p.Number, len(p.Fixes))
		}
	}
	if patches[0].Start.After(patches[1].Start) {
		t.Error("patches must be numbered in start-time order")
	}
}

func TestSegmentPatches_ClustersWithinThresholdMerge(t *testing.T) {
	// 140 m apart: inside the 100 + 2*25 = 150 m threshold.
	var track []Fix
	track = append(track, stationaryTrack(5, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(5, 5, 1, 140, 0)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(patches) != 1 {
		t.Fatalf("expected 1 merged patch, got %d", len(patches))
	}
	if len(patches[0].Fixes) != 10 {
		t.Errorf("expected 10 member fixes, got %d", len(patches[0].Fixes))
	}
}

func TestSegmentPatches_ThresholdBoundaryInclusive(t *testing.T) {
	// Exactly at the 150 m threshold: ties merge.
	var track []Fix
	track = append(track, stationaryTrack(3, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(3, 3, 1, 150, 0)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected clusters at the exact threshold to merge, got %d patches", len(patches))
	}
}

// Spec scenario: a 45 min gap with a 30 min temporal independence limit
// splits one location into two patches.
func TestSegmentPatches_TemporalSplit(t *testing.T) {
	var track []Fix
	track = append(track, stationaryTrack(5, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(5, 49, 1, 0, 0)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(patches) != 2 {
		t.Fatalf("expected 2 patches after temporal split, got %d", len(patches))
	}
	if patches[0].End.Add(45 * time.Minute).After(patches[1].Start.Add(time.Minute)) {
		t.Errorf("unexpected patch boundaries: %v..%v and %v..%v",
			patches[0].Start, patches[0].End, patches[1].Start, patches[1].End)
	}
}

// Spec scenario: a cluster of 2 fixes with MinFixes=3 is discarded.
func TestSegmentPatches_MinFixesDiscards(t *testing.T) {
	track := stationaryTrack(2, 0, 1, 0, 0)

	p := testSegmentParams()
	p.MinFixes = 3

	patches, err := SegmentPatches(track, zeroRecords(track), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 0 {
		t.Errorf("expected cluster below MinFixes to be discarded, got %d patches", len(patches))
	}
}

func TestSegmentPatches_IdenticalTimestampsNeverSplit(t *testing.T) {
	// Zero temporal limit plus zero gaps: identical timestamps must not
	// trigger a split.
	track := []Fix{
		fixAt(0, 0, 0),
		fixAt(0, 1, 0),
		fixAt(0, 2, 0),
	}

	p := testSegmentParams()
	p.TemporalIndepLimit = 0

	patches, err := SegmentPatches(track, zeroRecords(track), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}
	if patches[0].Duration != 0 {
		t.Errorf("expected zero duration, got %v", patches[0].Duration)
	}
}

func TestSegmentPatches_MinResidenceFilter(t *testing.T) {
	track := stationaryTrack(6, 0, 1, 0, 0)

	records := zeroRecords(track)
	for i := range records {
		records[i].ResidenceTime = 10 * time.Minute
	}
	// Two fixes below the bar never become candidates.
	records[1].ResidenceTime = time.Minute
	records[4].ResidenceTime = time.Minute

	p := testSegmentParams()
	p.MinResidence = 5 * time.Minute

	patches, err := SegmentPatches(track, records, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}
	if len(patches[0].Fixes) != 4 {
		t.Errorf("expected 4 member fixes after residence filter, got %d", len(patches[0].Fixes))
	}
}

func TestSegmentPatches_MembershipIsPartition(t *testing.T) {
	// Three bouts over two locations with unique timestamps throughout.
	var track []Fix
	track = append(track, stationaryTrack(6, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(6, 6, 1, 400, 0)...)
	track = append(track, stationaryTrack(6, 60, 1, 0, 0)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[time.Time]int)
	for _, p := range patches {
		if p.Duration < 0 {
			t.Errorf("patch %d: negative duration %v", p.Number, p.Duration)
		}
		if len(p.Fixes) < 2 {
			t.Errorf("patch %d: below MinFixes with %d fixes", p.Number, len(p.Fixes))
		}
		for _, f := range p.Fixes {
			seen[f.Time]++
			if seen[f.Time] > 1 {
				t.Errorf("fix at %v belongs to more than one patch", f.Time)
			}
		}
	}
}

func TestSegmentPatches_Idempotent(t *testing.T) {
	var track []Fix
	track = append(track, stationaryTrack(5, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(5, 49, 1, 0, 0)...)
	track = append(track, stationaryTrack(5, 60, 1, 500, 0)...)

	params := testSegmentParams()

	first, err := SegmentPatches(track, zeroRecords(track), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-segment the members of the already-segmented patches: boundaries
	// must reproduce exactly.
	var members []Fix
	for _, p := range first {
		members = append(members, p.Fixes...)
	}

	second, err := SegmentPatches(members, zeroRecords(members), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(second) != len(first) {
		t.Fatalf("expected %d patches on re-run, got %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Errorf("patch %d boundaries changed: %v..%v vs %v..%v",
				i+1, first[i].Start, first[i].End, second[i].Start, second[i].End)
		}
		if len(first[i].Fixes) != len(second[i].Fixes) {
			t.Errorf("patch %d member count changed: %d vs %d",
				i+1, len(first[i].Fixes), len(second[i].Fixes))
		}
	}
}

func TestSegmentPatches_ExtentCoversMembers(t *testing.T) {
	var track []Fix
	track = append(track, stationaryTrack(4, 0, 1, 0, 0)...)
	track = append(track, stationaryTrack(4, 4, 1, 40, 30)...)

	patches, err := SegmentPatches(track, zeroRecords(track), testSegmentParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}

	p := patches[0]
	for _, f := range p.Fixes {
		if !p.Extent.Contains(spatial.Point{X: f.X, Y: f.Y}) {
			t.Errorf("extent does not cover member fix at (%v, %v)", f.X, f.Y)
		}
	}

	// Dissolved hull of two 25 m disks 50 m apart: pi*r^2 + 2r*d, about
	// 4464 m^2. Allow slack for the disk discretization.
	want := math.Pi*25*25 + 2*25*50
	if area := p.Extent.Area(); math.Abs(area-want) > 0.05*want {
		t.Errorf("expected extent area near %v, got %v", want, area)
	}
}

func TestSegmentPatches_CovariateSummaries(t *testing.T) {
	track := stationaryTrack(4, 0, 1, 0, 0)
	nbs := []float64{4, 6, 8, 10}
	for i := range track {
		track[i].Covariates = map[string]float64{CovNBS: nbs[i]}
	}

	p := testSegmentParams()
	p.SummaryCovariates = []string{CovNBS, CovSpeed}

	patches, err := SegmentPatches(track, zeroRecords(track), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}

	s, ok := patches[0].Summaries[CovNBS]
	if !ok {
		t.Fatal("expected an nbs summary")
	}
	if math.Abs(s.Mean-7) > 1e-9 {
		t.Errorf("expected mean 7, got %v", s.Mean)
	}
	if math.Abs(s.SD-2.581988897) > 1e-6 {
		t.Errorf("expected sd ~2.582, got %v", s.SD)
	}
	if _, ok := patches[0].Summaries[CovSpeed]; ok {
		t.Error("speed summary should be absent when no fix carries the covariate")
	}
}
