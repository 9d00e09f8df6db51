// Package pipeline drives the residence engine across individuals. Each
// individual's track is owned by exactly one invocation; the pool only
// parallelizes across individuals and results come back in tag order, not
// completion order, so batch output stays reproducible.
package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/marmgroup/atlas-best-practices/internal/cleaning"
	"github.com/marmgroup/atlas-best-practices/internal/residence"
)

// Config bundles engine parameters and cleaning thresholds for one run.
type Config struct {
	Params     residence.Params
	Thresholds cleaning.Thresholds
	Workers    int
}

// DefaultConfig returns the deployment defaults with four workers.
func DefaultConfig() Config {
	return Config{
		Params:     residence.DefaultParams(),
		Thresholds: cleaning.DefaultThresholds,
		Workers:    4,
	}
}

// Result is the outcome for one individual. A failed track carries its
// error here instead of aborting the rest of the batch.
type Result struct {
	Tag       string
	Patches   []residence.Patch
	Summaries []residence.PatchSummary
	Err       error
}

// ProcessTrack runs the full chain for one individual:
// clean -> residence records -> patch segmentation -> summaries.
func ProcessTrack(tag string, track []residence.Fix, cfg Config) Result {
	res := Result{Tag: tag}

	cleaned, err := cleaning.Clean(track, cfg.Thresholds)
	if err != nil {
		res.Err = fmt.Errorf("clean track %s: %w", tag, err)
		return res
	}

	records, err := residence.ResidenceRecords(cleaned, cfg.Params)
	if err != nil {
		res.Err = fmt.Errorf("residence records for %s: %w", tag, err)
		return res
	}

	patches, err := residence.SegmentPatches(cleaned, records, cfg.Params.Segment)
	if err != nil {
		res.Err = fmt.Errorf("segment patches for %s: %w", tag, err)
		return res
	}

	res.Patches = patches
	res.Summaries = residence.SummarizePatches(patches)
	return res
}

// Run fans the per-individual work out over a worker pool and returns one
// Result per tag, ordered by tag.
func Run(tracks map[string][]residence.Fix, cfg Config) []Result {
	tags := make([]string, 0, len(tracks))
	for tag := range tracks {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tags) && len(tags) > 0 {
		workers = len(tags)
	}

	results := make([]Result, len(tags))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tag := tags[i]
				results[i] = ProcessTrack(tag, tracks[tag], cfg)
			}
		}()
	}

	for i := range tags {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
