package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

// ProgramRepository handles tahfidz program data access.
type ProgramRepository struct {
	pool *pgxpool.Pool
}

// NewProgramRepository creates a new ProgramRepository.
func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{pool: pool}
}

// GetByID retrieves a program by its ID.
func (r *ProgramRepository) GetByID(ctx context.Context, id int) (*model.Program, error) {
	p := &model.Program{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, active, created_at, updated_at
		 FROM programs WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves all programs.
func (r *ProgramRepository) List(ctx context.Context) ([]model.Program, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, active, created_at, updated_at
		 FROM programs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []model.Program
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// Create inserts a new program.
func (r *ProgramRepository) Create(ctx context.Context, p *model.Program) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO programs (name, description, active)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies an existing program.
func (r *ProgramRepository) Update(ctx context.Context, p *model.Program) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE programs SET name = $1, description = $2, active = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		p.Name, p.Description, p.Active, p.ID,
	)
	return err
}

// Delete removes a program by its ID.
func (r *ProgramRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	return err
}
