package model

import "time"

// Program represents a tahfidz (memorization) program that classes belong to.
type Program struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProgramRequest is the payload for creating or updating a program.
type CreateProgramRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
	Active      *bool  `json:"active" binding:"omitempty"`
}
