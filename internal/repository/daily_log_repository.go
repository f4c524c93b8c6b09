package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

// DailyLogRepository handles daily memorization log (setoran) data access.
type DailyLogRepository struct {
	pool *pgxpool.Pool
}

// NewDailyLogRepository creates a new DailyLogRepository.
func NewDailyLogRepository(pool *pgxpool.Pool) *DailyLogRepository {
	return &DailyLogRepository{pool: pool}
}

// Upsert inserts a student's log for a date, or updates the page count if a
// log already exists. Resubmitting clears a previous verification.
func (r *DailyLogRepository) Upsert(ctx context.Context, l *model.DailyLog) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO daily_logs (student_id, log_date, pages)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (student_id, log_date)
		 DO UPDATE SET pages = EXCLUDED.pages, verified = FALSE, verified_by = NULL, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, verified, created_at, updated_at`,
		l.StudentID, l.LogDate, l.Pages,
	).Scan(&l.ID, &l.Verified, &l.CreatedAt, &l.UpdatedAt)
}

// Verify marks a log as teacher-verified. Returns the number of rows touched
// so callers can distinguish a missing log.
func (r *DailyLogRepository) Verify(ctx context.Context, logID, verifierID int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE daily_logs SET verified = TRUE, verified_by = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2`, verifierID, logID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByClassAndDate retrieves all logs for a class on one date.
func (r *DailyLogRepository) ListByClassAndDate(ctx context.Context, classID int, date time.Time) ([]model.DailyLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.id, l.student_id, l.log_date, l.pages, l.verified, l.verified_by, l.created_at, l.updated_at
		 FROM daily_logs l
		 JOIN students s ON s.id = l.student_id
		 WHERE s.class_id = $1 AND l.log_date = $2
		 ORDER BY l.student_id`, classID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.DailyLog
	for rows.Next() {
		var l model.DailyLog
		if err := rows.Scan(&l.ID, &l.StudentID, &l.LogDate, &l.Pages, &l.Verified, &l.VerifiedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// VerifiedCounts returns, per student of the class, how many distinct days in
// [from, to) carry a verified log. Students with zero verified days are
// absent from the map.
func (r *DailyLogRepository) VerifiedCounts(ctx context.Context, classID int, from, to time.Time) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.student_id, COUNT(DISTINCT l.log_date)
		 FROM daily_logs l
		 JOIN students s ON s.id = l.student_id
		 WHERE s.class_id = $1 AND l.verified = TRUE AND l.log_date >= $2 AND l.log_date < $3
		 GROUP BY l.student_id`, classID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var studentID, n int
		if err := rows.Scan(&studentID, &n); err != nil {
			return nil, err
		}
		counts[studentID] = n
	}
	return counts, rows.Err()
}
