package service

import (
	"context"
	"errors"
	"time"

	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
)

var ErrDailyLogNotFound = errors.New("daily log not found")

// DailyLogService handles daily memorization log business logic.
type DailyLogService struct {
	logRepo *repository.DailyLogRepository
}

// NewDailyLogService creates a new DailyLogService.
func NewDailyLogService(logRepo *repository.DailyLogRepository) *DailyLogService {
	return &DailyLogService{logRepo: logRepo}
}

// Submit records or replaces a student's log for one date.
func (s *DailyLogService) Submit(ctx context.Context, l *model.DailyLog) error {
	return s.logRepo.Upsert(ctx, l)
}

// Verify marks a log as teacher-verified so it counts toward the commitment
// rate.
func (s *DailyLogService) Verify(ctx context.Context, logID, verifierID int) error {
	n, err := s.logRepo.Verify(ctx, logID, verifierID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDailyLogNotFound
	}
	return nil
}

// ListByClassAndDate retrieves all logs for a class on one date.
func (s *DailyLogService) ListByClassAndDate(ctx context.Context, classID int, date time.Time) ([]model.DailyLog, error) {
	return s.logRepo.ListByClassAndDate(ctx, classID, date)
}
