package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

var (
	ErrCompanionDayExists   = errors.New("companion day already exists for this class and date")
	ErrCompanionDayNotFound = errors.New("companion day not found")
	ErrAlreadyPublished     = errors.New("companion day is already published")
)

// CompanionDayRepository handles companion day persistence. The table's
// UNIQUE (class_id, target_date) constraint is the creation guard, and
// MarkPublished's conditional update is the publish guard. Both are enforced
// by PostgreSQL, not application logic.
type CompanionDayRepository struct {
	pool *pgxpool.Pool
}

// NewCompanionDayRepository creates a new CompanionDayRepository.
func NewCompanionDayRepository(pool *pgxpool.Pool) *CompanionDayRepository {
	return &CompanionDayRepository{pool: pool}
}

const companionDayColumns = `id, class_id, target_date, grouping, algorithm, attendance_source,
	locked_groups, pairings, room_assignments, link_snapshot, password_snapshot,
	published_at, published_by, auto_published, created_at, updated_at`

func scanCompanionDay(row interface{ Scan(...any) error }) (*model.CompanionDay, error) {
	d := &model.CompanionDay{}
	err := row.Scan(&d.ID, &d.ClassID, &d.TargetDate, &d.Grouping, &d.Algorithm, &d.AttendanceSource,
		&d.LockedGroups, &d.Pairings, &d.RoomAssignments, &d.LinkSnapshot, &d.PasswordSnapshot,
		&d.PublishedAt, &d.PublishedBy, &d.AutoPublished, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new draft companion day. A second insert for the same
// (class, target date) fails with ErrCompanionDayExists.
func (r *CompanionDayRepository) Create(ctx context.Context, d *model.CompanionDay) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO companion_days (id, class_id, target_date, grouping, algorithm, attendance_source, locked_groups, pairings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		d.ID, d.ClassID, d.TargetDate, d.Grouping, d.Algorithm, d.AttendanceSource, d.LockedGroups, d.Pairings,
	).Scan(&d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCompanionDayExists
		}
		return err
	}
	return nil
}

// GetByClassAndDate retrieves the single companion day for a class and date.
func (r *CompanionDayRepository) GetByClassAndDate(ctx context.Context, classID int, date time.Time) (*model.CompanionDay, error) {
	d, err := scanCompanionDay(r.pool.QueryRow(ctx,
		`SELECT `+companionDayColumns+` FROM companion_days
		 WHERE class_id = $1 AND target_date = $2`, classID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompanionDayNotFound
	}
	return d, err
}

// SaveDraft overwrites the grouping configuration and pairings of a draft.
// Published days are immutable: the WHERE clause refuses them and the caller
// gets ErrAlreadyPublished.
func (r *CompanionDayRepository) SaveDraft(ctx context.Context, d *model.CompanionDay) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companion_days
		 SET grouping = $1, algorithm = $2, attendance_source = $3, locked_groups = $4, pairings = $5,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6 AND published_at IS NULL`,
		d.Grouping, d.Algorithm, d.AttendanceSource, d.LockedGroups, d.Pairings, d.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyPublished
	}
	return nil
}

// MarkPublished performs the one-way Draft → Published transition as a single
// compare-and-swap on published_at. Pairings are written together with the
// room assignments so a lazily generated publish commits atomically. Zero
// rows affected means another caller won the race.
func (r *CompanionDayRepository) MarkPublished(
	ctx context.Context,
	id uuid.UUID,
	pairings [][]int,
	rooms map[int][]int,
	linkSnapshot, passwordSnapshot *string,
	publishedBy *int,
	autoPublished bool,
) (time.Time, error) {
	var publishedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE companion_days
		 SET pairings = $1, room_assignments = $2, link_snapshot = $3, password_snapshot = $4,
		     published_at = CURRENT_TIMESTAMP, published_by = $5, auto_published = $6,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7 AND published_at IS NULL
		 RETURNING published_at`,
		pairings, rooms, linkSnapshot, passwordSnapshot, publishedBy, autoPublished, id,
	).Scan(&publishedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrAlreadyPublished
	}
	return publishedAt, err
}

// LatestPublishedBefore returns the pairings of the most recent published day
// for a class strictly before date, or nil if none exists. Rotation consults
// this as its anti-repetition history.
func (r *CompanionDayRepository) LatestPublishedBefore(ctx context.Context, classID int, date time.Time) ([][]int, error) {
	var pairings [][]int
	err := r.pool.QueryRow(ctx,
		`SELECT pairings FROM companion_days
		 WHERE class_id = $1 AND target_date < $2 AND published_at IS NOT NULL AND pairings IS NOT NULL
		 ORDER BY target_date DESC
		 LIMIT 1`, classID, date,
	).Scan(&pairings)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return pairings, err
}

// ListDueDrafts returns every draft whose target date equals date, for the
// auto-publish scheduler. Already-published rows are excluded so re-runs are
// harmless.
func (r *CompanionDayRepository) ListDueDrafts(ctx context.Context, date time.Time) ([]model.CompanionDay, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companionDayColumns+` FROM companion_days
		 WHERE target_date = $1 AND published_at IS NULL
		 ORDER BY class_id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []model.CompanionDay
	for rows.Next() {
		d, err := scanCompanionDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *d)
	}
	return days, rows.Err()
}
