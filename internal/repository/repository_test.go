package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmgroup/atlas-best-practices/internal/database"
	"github.com/marmgroup/atlas-best-practices/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedFixes(t *testing.T, repo *FixRepository) {
	t.Helper()
	fixes := []models.Fix{
		{Tag: "b42", Time: 1000, X: 10, Y: 20, VarXY: 5, NBS: 6},
		{Tag: "b42", Time: 1600, X: 11, Y: 21, VarXY: 8, NBS: 4},
		{Tag: "b42", Time: 2200, X: 12, Y: 22, VarXY: 60, NBS: 3},
		{Tag: "a17", Time: 1200, X: 100, Y: 200, VarXY: 4, NBS: 7},
	}
	n, err := repo.InsertFixes(fixes)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestFixRepositoryInsertAndTrack(t *testing.T) {
	repo := NewFixRepository(testDB(t))
	seedFixes(t, repo)

	track, err := repo.GetTrack("b42")
	require.NoError(t, err)
	require.Len(t, track, 3)
	for i := 1; i < len(track); i++ {
		require.LessOrEqual(t, track[i-1].Time, track[i].Time)
	}

	tags, err := repo.GetTags()
	require.NoError(t, err)
	require.Equal(t, []string{"a17", "b42"}, tags)
}

func TestFixRepositoryFilters(t *testing.T) {
	repo := NewFixRepository(testDB(t))
	seedFixes(t, repo)

	fixes, total, err := repo.GetFixes(models.FixFilter{Tag: "b42", MaxVarXY: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, fixes, 2)

	fixes, total, err = repo.GetFixes(models.FixFilter{StartTime: 1500, EndTime: 2300})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, f := range fixes {
		require.Equal(t, "b42", f.Tag)
	}
}

func TestFixRepositoryPagination(t *testing.T) {
	repo := NewFixRepository(testDB(t))

	var fixes []models.Fix
	for i := 0; i < 25; i++ {
		fixes = append(fixes, models.Fix{Tag: "c01", Time: int64(1000 + i*60), X: float64(i), Y: 0})
	}
	_, err := repo.InsertFixes(fixes)
	require.NoError(t, err)

	page, total, err := repo.GetFixes(models.FixFilter{Tag: "c01", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page, 10)
	require.EqualValues(t, 1600, page[0].Time)
}

func TestPatchRepositoryReplaceForTag(t *testing.T) {
	repo := NewPatchRepository(testDB(t))

	first := []models.ResidencePatch{
		{Tag: "b42", Patch: 1, StartTime: 1000, EndTime: 2000, DurationSeconds: 1000, NFixes: 5, X: 10, Y: 20, AreaSqM: 1963, ExtentWKT: "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)))"},
		{Tag: "b42", Patch: 2, StartTime: 3000, EndTime: 4000, DurationSeconds: 1000, NFixes: 4, X: 30, Y: 40},
	}
	require.NoError(t, repo.ReplaceForTag("b42", first))

	// A rerun with different results replaces, never appends.
	second := []models.ResidencePatch{
		{Tag: "b42", Patch: 1, StartTime: 1100, EndTime: 2100, DurationSeconds: 1000, NFixes: 6, X: 11, Y: 21},
	}
	require.NoError(t, repo.ReplaceForTag("b42", second))

	patches, total, err := repo.GetPatches(models.PatchFilter{Tag: "b42"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, patches, 1)
	require.EqualValues(t, 1100, patches[0].StartTime)
	require.Equal(t, "v1", patches[0].AlgoVersion)
}

func TestPatchRepositoryIsolatesTags(t *testing.T) {
	repo := NewPatchRepository(testDB(t))

	require.NoError(t, repo.ReplaceForTag("b42", []models.ResidencePatch{
		{Tag: "b42", Patch: 1, StartTime: 1000, EndTime: 2000, DurationSeconds: 1000, NFixes: 5, X: 1, Y: 1},
	}))
	require.NoError(t, repo.ReplaceForTag("a17", []models.ResidencePatch{
		{Tag: "a17", Patch: 1, StartTime: 1000, EndTime: 2000, DurationSeconds: 1000, NFixes: 5, X: 2, Y: 2},
	}))

	// Replacing one tag leaves the other untouched.
	require.NoError(t, repo.ReplaceForTag("b42", nil))

	_, total, err := repo.GetPatches(models.PatchFilter{Tag: "a17"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	_, total, err = repo.GetPatches(models.PatchFilter{Tag: "b42"})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestPatchRepositoryGetByID(t *testing.T) {
	repo := NewPatchRepository(testDB(t))

	require.NoError(t, repo.ReplaceForTag("b42", []models.ResidencePatch{
		{Tag: "b42", Patch: 1, StartTime: 1000, EndTime: 2000, DurationSeconds: 1000, NFixes: 5, X: 1, Y: 1},
	}))

	patches, _, err := repo.GetPatches(models.PatchFilter{Tag: "b42"})
	require.NoError(t, err)
	require.Len(t, patches, 1)

	got, err := repo.GetPatchByID(patches[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "b42", got.Tag)

	missing, err := repo.GetPatchByID(999999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTaskRepositoryLifecycle(t *testing.T) {
	repo := NewTaskRepository(testDB(t))

	task := &models.PipelineTask{
		UUID:     "11111111-2222-3333-4444-555555555555",
		Analyzer: "residence_patches",
		Mode:     models.TaskModeFull,
		Status:   models.TaskStatusPending,
	}
	require.NoError(t, repo.Create(task))
	require.NotZero(t, task.ID)

	require.NoError(t, repo.MarkAsRunning(task.ID, 12))
	require.NoError(t, repo.UpdateProgress(task.ID, 6, 1, 50))

	got, err := repo.GetByUUID(task.UUID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.TaskStatusRunning, got.Status)
	require.Equal(t, 12, got.TotalTags)
	require.Equal(t, 6, got.ProcessedTags)
	require.Equal(t, 1, got.FailedTags)
	require.NotNil(t, got.StartedAt)
	require.Nil(t, got.CompletedAt)

	require.NoError(t, repo.MarkAsCompleted(task.ID, `{"patches": 42}`))
	got, err = repo.GetByUUID(task.UUID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusCompleted, got.Status)
	require.EqualValues(t, 100, got.ProgressPercent)
	require.NotNil(t, got.CompletedAt)
}

func TestTaskRepositoryListFilters(t *testing.T) {
	repo := NewTaskRepository(testDB(t))

	for i, status := range []string{models.TaskStatusPending, models.TaskStatusFailed} {
		task := &models.PipelineTask{
			UUID:     "00000000-0000-0000-0000-00000000000" + string(rune('a'+i)),
			Analyzer: "residence_patches",
			Mode:     models.TaskModeFull,
			Status:   status,
		}
		require.NoError(t, repo.Create(task))
	}

	tasks, err := repo.List("residence_patches", models.TaskStatusFailed, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, models.TaskStatusFailed, tasks[0].Status)

	missing, err := repo.GetByUUID("not-a-task")
	require.NoError(t, err)
	require.Nil(t, missing)
}
