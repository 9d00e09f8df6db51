package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/marmgroup/atlas-best-practices/internal/models"
)

// PatchRepository handles database operations for residence patches.
type PatchRepository struct {
	db *sql.DB
}

// NewPatchRepository creates a new patch repository.
func NewPatchRepository(db *sql.DB) *PatchRepository {
	return &PatchRepository{db: db}
}

const patchColumns = `id, tag, patch, start_time, end_time, duration_s,
	n_fixes, x, y, area_sqm, extent_wkt,
	mean_varxy, sd_varxy, mean_speed, sd_speed,
	algo_version, created_at`

// ReplaceForTag atomically replaces all patches for one tag. Re-running
// the pipeline for an individual never leaves stale patches behind.
func (r *PatchRepository) ReplaceForTag(tag string, patches []models.ResidencePatch) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM residence_patches WHERE tag = ?", tag); err != nil {
		return fmt.Errorf("failed to clear patches for %s: %w", tag, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO residence_patches (
			tag, patch, start_time, end_time, duration_s,
			n_fixes, x, y, area_sqm, extent_wkt,
			mean_varxy, sd_varxy, mean_speed, sd_speed, algo_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'v1')
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range patches {
		_, err := stmt.Exec(
			p.Tag, p.Patch, p.StartTime, p.EndTime, p.DurationSeconds,
			p.NFixes, p.X, p.Y, p.AreaSqM, p.ExtentWKT,
			p.MeanVarXY, p.SDVarXY, p.MeanSpeed, p.SDSpeed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert patch %d for %s: %w", p.Patch, p.Tag, err)
		}
	}

	return tx.Commit()
}

// GetPatches retrieves residence patches with filtering and pagination.
func (r *PatchRepository) GetPatches(filter models.PatchFilter) ([]models.ResidencePatch, int64, error) {
	query := "SELECT " + patchColumns + " FROM residence_patches"

	var conditions []string
	var args []interface{}

	if filter.Tag != "" {
		conditions = append(conditions, "tag = ?")
		args = append(args, filter.Tag)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.MinDuration > 0 {
		conditions = append(conditions, "duration_s >= ?")
		args = append(args, filter.MinDuration)
	}
	if filter.MinFixes > 0 {
		conditions = append(conditions, "n_fixes >= ?")
		args = append(args, filter.MinFixes)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM residence_patches"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patches: %w", err)
	}

	filter.Normalize()

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY tag, start_time LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query patches: %w", err)
	}
	defer rows.Close()

	var patches []models.ResidencePatch
	for rows.Next() {
		p, err := scanPatch(rows)
		if err != nil {
			return nil, 0, err
		}
		patches = append(patches, p)
	}

	return patches, total, rows.Err()
}

// GetPatchByID retrieves a single residence patch by ID.
func (r *PatchRepository) GetPatchByID(id int64) (*models.ResidencePatch, error) {
	row := r.db.QueryRow("SELECT "+patchColumns+" FROM residence_patches WHERE id = ?", id)

	p, err := scanPatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patch: %w", err)
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatch(row rowScanner) (models.ResidencePatch, error) {
	var p models.ResidencePatch
	err := row.Scan(
		&p.ID, &p.Tag, &p.Patch, &p.StartTime, &p.EndTime, &p.DurationSeconds,
		&p.NFixes, &p.X, &p.Y, &p.AreaSqM, &p.ExtentWKT,
		&p.MeanVarXY, &p.SDVarXY, &p.MeanSpeed, &p.SDSpeed,
		&p.AlgoVersion, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan patch: %w", err)
	}
	return p, nil
}
