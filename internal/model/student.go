package model

import "time"

// Student represents a santri enrolled in a class.
type Student struct {
	ID        int       `json:"id"`
	NIS       string    `json:"nis"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	ClassID   int       `json:"class_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStudentRequest is the payload for creating a new student record.
type CreateStudentRequest struct {
	NIS     string `json:"nis" binding:"required,min=4,max=20"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Gender  Gender `json:"gender" binding:"required,oneof=Laki-laki Perempuan"`
	ClassID int    `json:"class_id" binding:"required"`
	Active  *bool  `json:"active" binding:"omitempty"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	NIS     string `json:"nis" binding:"required,min=4,max=20"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Gender  Gender `json:"gender" binding:"required,oneof=Laki-laki Perempuan"`
	ClassID int    `json:"class_id" binding:"required"`
	Active  *bool  `json:"active" binding:"omitempty"`
}
