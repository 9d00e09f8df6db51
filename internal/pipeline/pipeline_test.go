package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmgroup/atlas-best-practices/internal/residence"
)

var epoch = time.Date(2023, 4, 1, 6, 0, 0, 0, time.UTC)

// goodTrack builds a track that survives cleaning and yields at least one
// patch with the default parameters: a tight 30 min bout at (x, y).
func goodTrack(tag string, x, y float64) []residence.Fix {
	var track []residence.Fix
	for i := 0; i < 30; i++ {
		track = append(track, residence.Fix{
			Tag:  tag,
			Time: epoch.Add(time.Duration(i) * time.Minute),
			X:    x,
			Y:    y,
			Covariates: map[string]float64{
				residence.CovVarXY: 10,
				residence.CovNBS:   5,
			},
		})
	}
	return track
}

func TestProcessTrack(t *testing.T) {
	cfg := DefaultConfig()
	res := ProcessTrack("tag-01", goodTrack("tag-01", 0, 0), cfg)

	require.NoError(t, res.Err)
	require.Len(t, res.Patches, 1)
	assert.Equal(t, "tag-01", res.Patches[0].Tag)
	assert.Equal(t, 30, len(res.Patches[0].Fixes))
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, 1, res.Summaries[0].Patch)
}

func TestProcessTrack_EmptyTrackFails(t *testing.T) {
	res := ProcessTrack("tag-02", nil, DefaultConfig())
	assert.Error(t, res.Err)
	assert.Empty(t, res.Patches)
}

func TestRun_DeterministicTagOrder(t *testing.T) {
	tracks := map[string][]residence.Fix{
		"tag-03": goodTrack("tag-03", 0, 0),
		"tag-01": goodTrack("tag-01", 500, 0),
		"tag-02": goodTrack("tag-02", 1000, 0),
	}

	cfg := DefaultConfig()
	cfg.Workers = 3

	first := Run(tracks, cfg)
	require.Len(t, first, 3)
	assert.Equal(t, "tag-01", first[0].Tag)
	assert.Equal(t, "tag-02", first[1].Tag)
	assert.Equal(t, "tag-03", first[2].Tag)

	// Re-running yields identical patch boundaries regardless of worker
	// scheduling.
	second := Run(tracks, cfg)
	for i := range first {
		require.Equal(t, len(first[i].Patches), len(second[i].Patches))
		for j := range first[i].Patches {
			assert.True(t, first[i].Patches[j].Start.Equal(second[i].Patches[j].Start))
			assert.True(t, first[i].Patches[j].End.Equal(second[i].Patches[j].End))
		}
	}
}

func TestRun_IsolatesPerIndividualFailures(t *testing.T) {
	tracks := map[string][]residence.Fix{
		"tag-01": goodTrack("tag-01", 0, 0),
		"tag-02": nil, // malformed: no fixes
		"tag-03": goodTrack("tag-03", 800, 0),
	}

	results := Run(tracks, DefaultConfig())
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[0].Patches, 1)
	assert.Len(t, results[2].Patches, 1)
}

func TestRun_NoTracks(t *testing.T) {
	results := Run(nil, DefaultConfig())
	assert.Empty(t, results)
}
