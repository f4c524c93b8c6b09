package service

import (
	"context"

	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
)

// ProgramService handles tahfidz program business logic.
type ProgramService struct {
	programRepo *repository.ProgramRepository
}

// NewProgramService creates a new ProgramService.
func NewProgramService(programRepo *repository.ProgramRepository) *ProgramService {
	return &ProgramService{programRepo: programRepo}
}

func (s *ProgramService) GetByID(ctx context.Context, id int) (*model.Program, error) {
	return s.programRepo.GetByID(ctx, id)
}

func (s *ProgramService) List(ctx context.Context) ([]model.Program, error) {
	return s.programRepo.List(ctx)
}

func (s *ProgramService) Create(ctx context.Context, p *model.Program) error {
	return s.programRepo.Create(ctx, p)
}

func (s *ProgramService) Update(ctx context.Context, p *model.Program) error {
	return s.programRepo.Update(ctx, p)
}

func (s *ProgramService) Delete(ctx context.Context, id int) error {
	return s.programRepo.Delete(ctx, id)
}
