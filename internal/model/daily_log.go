package model

import "time"

// DailyLog is a student's daily memorization report (setoran). A log counts
// toward the commitment rate only once a teacher has verified it.
type DailyLog struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	LogDate    time.Time `json:"log_date"`
	Pages      float64   `json:"pages"`
	Verified   bool      `json:"verified"`
	VerifiedBy *int      `json:"verified_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubmitDailyLogRequest is the payload for a student submitting today's log.
type SubmitDailyLogRequest struct {
	LogDate string  `json:"log_date" binding:"required,datetime=2006-01-02"`
	Pages   float64 `json:"pages" binding:"required,gt=0,max=604"`
}
