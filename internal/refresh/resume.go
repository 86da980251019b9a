package refresh

import (
	"context"
	"database/sql"
	"fmt"
)

// ResumeList records the movies an unfinished sweep has already processed.
// Rows are keyed by movie id, so the list never outgrows the library.
type ResumeList struct {
	db *sql.DB
}

func NewResumeList(db *sql.DB) *ResumeList {
	return &ResumeList{db: db}
}

// Processed returns the ids of every recorded movie.
func (r *ResumeList) Processed(ctx context.Context) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT movie_id FROM refresh_resume`)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume list: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to read resume list: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// Mark records that movieID was processed.
func (r *ResumeList) Mark(ctx context.Context, movieID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO refresh_resume (movie_id) VALUES (?)`, movieID)
	if err != nil {
		return fmt.Errorf("failed to mark movie %d: %w", movieID, err)
	}
	return nil
}

// Clear empties the list.
func (r *ResumeList) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_resume`); err != nil {
		return fmt.Errorf("failed to clear resume list: %w", err)
	}
	return nil
}

// Count returns the number of recorded movies.
func (r *ResumeList) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refresh_resume`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resume list: %w", err)
	}
	return n, nil
}
