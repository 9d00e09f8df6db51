package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/marmgroup/atlas-best-practices/internal/models"
)

// FixRepository handles database operations for telemetry fixes.
type FixRepository struct {
	db *sql.DB
}

// NewFixRepository creates a new fix repository.
func NewFixRepository(db *sql.DB) *FixRepository {
	return &FixRepository{db: db}
}

// GetFixes retrieves fixes with filtering and pagination.
func (r *FixRepository) GetFixes(filter models.FixFilter) ([]models.Fix, int64, error) {
	query := `SELECT id, tag, time, x, y, varxy, nbs, outlier, night FROM fixes`

	var conditions []string
	var args []interface{}

	if filter.Tag != "" {
		conditions = append(conditions, "tag = ?")
		args = append(args, filter.Tag)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.MaxVarXY > 0 {
		conditions = append(conditions, "varxy <= ?")
		args = append(args, filter.MaxVarXY)
	}
	if filter.MinNBS > 0 {
		conditions = append(conditions, "nbs >= ?")
		args = append(args, filter.MinNBS)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM fixes"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count fixes: %w", err)
	}

	filter.Normalize()

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY tag, time LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query fixes: %w", err)
	}
	defer rows.Close()

	var fixes []models.Fix
	for rows.Next() {
		var f models.Fix
		if err := rows.Scan(&f.ID, &f.Tag, &f.Time, &f.X, &f.Y, &f.VarXY, &f.NBS, &f.Outlier, &f.NightKey); err != nil {
			return nil, 0, fmt.Errorf("failed to scan fix: %w", err)
		}
		fixes = append(fixes, f)
	}

	return fixes, total, rows.Err()
}

// GetTags returns the distinct tag identifiers present in the fixes table.
func (r *FixRepository) GetTags() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT tag FROM fixes ORDER BY tag")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetTrack returns one individual's fixes in time order.
func (r *FixRepository) GetTrack(tag string) ([]models.Fix, error) {
	query := `SELECT id, tag, time, x, y, varxy, nbs, outlier, night
		FROM fixes WHERE tag = ? ORDER BY time, id`

	rows, err := r.db.Query(query, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to query track %s: %w", tag, err)
	}
	defer rows.Close()

	var track []models.Fix
	for rows.Next() {
		var f models.Fix
		if err := rows.Scan(&f.ID, &f.Tag, &f.Time, &f.X, &f.Y, &f.VarXY, &f.NBS, &f.Outlier, &f.NightKey); err != nil {
			return nil, fmt.Errorf("failed to scan fix: %w", err)
		}
		track = append(track, f)
	}
	return track, rows.Err()
}

// InsertFixes bulk-inserts fixes inside a single transaction and returns
// the number of rows written.
func (r *FixRepository) InsertFixes(fixes []models.Fix) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO fixes (tag, time, x, y, varxy, nbs, outlier, night)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range fixes {
		if _, err := stmt.Exec(f.Tag, f.Time, f.X, f.Y, f.VarXY, f.NBS, f.Outlier, f.NightKey); err != nil {
			return inserted, fmt.Errorf("failed to insert fix for %s: %w", f.Tag, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}
