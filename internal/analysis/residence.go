package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/pipeline"
	"github.com/marmgroup/atlas-best-practices/internal/repository"
	"github.com/marmgroup/atlas-best-practices/internal/residence"
)

func init() {
	RegisterAnalyzer("residence_patches", NewResidencePatchAnalyzer)
}

// ResidencePatchAnalyzer runs the residence pipeline over stored fixes
// and persists the resulting patches. Each tag is processed in
// isolation: a track that fails to segment is recorded as a failed tag
// and the rest of the batch continues.
type ResidencePatchAnalyzer struct {
	*BaseAnalyzer
	Config  pipeline.Config
	fixes   *repository.FixRepository
	patches *repository.PatchRepository
}

// NewResidencePatchAnalyzer creates a residence patch analyzer with
// deployment defaults. workers < 1 keeps the pipeline default pool size.
func NewResidencePatchAnalyzer(db *sql.DB, workers int) Analyzer {
	cfg := pipeline.DefaultConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.Params.Segment.SummaryCovariates = []string{residence.CovVarXY, residence.CovSpeed}

	return &ResidencePatchAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(db, "residence_patches"),
		Config:       cfg,
		fixes:        repository.NewFixRepository(db),
		patches:      repository.NewPatchRepository(db),
	}
}

// Analyze runs the residence pipeline for the task's tag, or for every
// tag in the fixes table when the task has no tag.
func (a *ResidencePatchAnalyzer) Analyze(ctx context.Context, taskID int64, mode string) error {
	log.Printf("[ResidencePatchAnalyzer] Starting analysis (task_id=%d, mode=%s)", taskID, mode)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	tags, err := a.resolveTags(taskID, mode)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return err
	}
	if len(tags) == 0 {
		log.Printf("[ResidencePatchAnalyzer] No tags to process")
		return a.MarkTaskAsCompleted(taskID, `{"tags": 0, "patches": 0}`)
	}

	log.Printf("[ResidencePatchAnalyzer] Processing %d tags", len(tags))
	if err := a.UpdateTaskProgress(taskID, 0, len(tags), 0); err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	tracks := make(map[string][]residence.Fix, len(tags))
	for _, tag := range tags {
		if err := ctx.Err(); err != nil {
			a.MarkTaskAsFailed(taskID, err.Error())
			return err
		}
		stored, err := a.fixes.GetTrack(tag)
		if err != nil {
			a.MarkTaskAsFailed(taskID, err.Error())
			return fmt.Errorf("failed to load track %s: %w", tag, err)
		}
		tracks[tag] = toEngineTrack(stored)
	}

	results := pipeline.Run(tracks, a.Config)

	processed, failed, totalPatches := 0, 0, 0
	for _, res := range results {
		if err := ctx.Err(); err != nil {
			a.MarkTaskAsFailed(taskID, err.Error())
			return err
		}

		if res.Err != nil {
			log.Printf("[ResidencePatchAnalyzer] Tag %s failed: %v", res.Tag, res.Err)
			failed++
		} else {
			rows := toPatchRows(res.Patches)
			if err := a.patches.ReplaceForTag(res.Tag, rows); err != nil {
				log.Printf("[ResidencePatchAnalyzer] Failed to persist patches for %s: %v", res.Tag, err)
				failed++
			} else {
				totalPatches += len(rows)
			}
		}

		processed++
		if err := a.UpdateTaskProgress(taskID, processed, len(tags), failed); err != nil {
			return fmt.Errorf("failed to update task progress: %w", err)
		}
	}

	if failed == len(tags) {
		msg := fmt.Sprintf("all %d tags failed", failed)
		if err := a.MarkTaskAsFailed(taskID, msg); err != nil {
			return err
		}
		return fmt.Errorf("residence analysis: %s", msg)
	}

	summary, _ := json.Marshal(map[string]int{
		"tags":    len(tags),
		"failed":  failed,
		"patches": totalPatches,
	})
	log.Printf("[ResidencePatchAnalyzer] Completed: %d tags, %d failed, %d patches",
		len(tags), failed, totalPatches)

	return a.MarkTaskAsCompleted(taskID, string(summary))
}

func (a *ResidencePatchAnalyzer) resolveTags(taskID int64, mode string) ([]string, error) {
	if mode == models.TaskModePerTag {
		tag, err := a.TaskTag(taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to read task tag: %w", err)
		}
		if tag == "" {
			return nil, fmt.Errorf("per-tag task %d has no tag", taskID)
		}
		return []string{tag}, nil
	}

	tags, err := a.fixes.GetTags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// toEngineTrack converts stored fixes into engine fixes. Fixes already
// flagged as outliers by a previous import are dropped here so the
// cleaning stage only deals with what baseline filtering let through.
func toEngineTrack(stored []models.Fix) []residence.Fix {
	track := make([]residence.Fix, 0, len(stored))
	for _, f := range stored {
		if f.Outlier {
			continue
		}
		track = append(track, residence.Fix{
			Tag:  f.Tag,
			Time: time.Unix(f.Time, 0).UTC(),
			X:    f.X,
			Y:    f.Y,
			Covariates: map[string]float64{
				residence.CovVarXY: f.VarXY,
				residence.CovNBS:   float64(f.NBS),
			},
		})
	}
	return track
}

func toPatchRows(patches []residence.Patch) []models.ResidencePatch {
	rows := make([]models.ResidencePatch, 0, len(patches))
	for _, p := range patches {
		row := models.ResidencePatch{
			Tag:             p.Tag,
			Patch:           p.Number,
			StartTime:       p.Start.Unix(),
			EndTime:         p.End.Unix(),
			DurationSeconds: p.Duration.Seconds(),
			NFixes:          len(p.Fixes),
			X:               p.Centroid.X,
			Y:               p.Centroid.Y,
			AreaSqM:         p.Extent.Area(),
			ExtentWKT:       p.Extent.WKT(),
		}
		if s, ok := p.Summaries[residence.CovVarXY]; ok {
			row.MeanVarXY = s.Mean
			row.SDVarXY = s.SD
		}
		if s, ok := p.Summaries[residence.CovSpeed]; ok {
			row.MeanSpeed = s.Mean
			row.SDSpeed = s.SD
		}
		rows = append(rows, row)
	}
	return rows
}
