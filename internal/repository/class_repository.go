package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

// ClassRepository handles class (halaqah) data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

const classColumns = `id, program_id, name, gender, active, room_start, meeting_link, meeting_password, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*model.Class, error) {
	c := &model.Class{}
	err := row.Scan(&c.ID, &c.ProgramID, &c.Name, &c.Gender, &c.Active, &c.RoomStart,
		&c.MeetingLink, &c.MeetingPassword, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
}

// List retrieves all classes.
func (r *ClassRepository) List(ctx context.Context) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+classColumns+` FROM classes ORDER BY program_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (program_id, name, gender, active, room_start, meeting_link, meeting_password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.ProgramID, c.Name, c.Gender, c.Active, c.RoomStart, c.MeetingLink, c.MeetingPassword,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing class, including its live meeting settings.
// Published companion days keep their own snapshot and are unaffected.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE classes SET program_id = $1, name = $2, gender = $3, active = $4, room_start = $5,
		        meeting_link = $6, meeting_password = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8`,
		c.ProgramID, c.Name, c.Gender, c.Active, c.RoomStart, c.MeetingLink, c.MeetingPassword, c.ID,
	)
	return err
}

// Delete removes a class by its ID.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	return err
}
