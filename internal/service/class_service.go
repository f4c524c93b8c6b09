package service

import (
	"context"

	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
)

// ClassService handles class (halaqah) business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

func (s *ClassService) GetByID(ctx context.Context, id int) (*model.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	return s.classRepo.List(ctx)
}

func (s *ClassService) Create(ctx context.Context, c *model.Class) error {
	if c.RoomStart < 1 {
		c.RoomStart = 1
	}
	return s.classRepo.Create(ctx, c)
}

func (s *ClassService) Update(ctx context.Context, c *model.Class) error {
	if c.RoomStart < 1 {
		c.RoomStart = 1
	}
	return s.classRepo.Update(ctx, c)
}

func (s *ClassService) Delete(ctx context.Context, id int) error {
	return s.classRepo.Delete(ctx, id)
}
