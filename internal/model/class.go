package model

import "time"

// Gender represents a student's or class's gender. Classes are single-gender;
// every member must match.
type Gender string

const (
	GenderMale   Gender = "Laki-laki"
	GenderFemale Gender = "Perempuan"
)

// Class represents a halaqah: a single-gender study circle within a program.
// MeetingLink and MeetingPassword are the class's live settings; published
// companion days carry their own snapshot of both.
type Class struct {
	ID              int       `json:"id"`
	ProgramID       int       `json:"program_id"`
	Name            string    `json:"name"`
	Gender          Gender    `json:"gender"`
	Active          bool      `json:"active"`
	RoomStart       int       `json:"room_start"`
	MeetingLink     *string   `json:"meeting_link,omitempty"`
	MeetingPassword *string   `json:"meeting_password,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateClassRequest is the payload for creating or updating a class.
type CreateClassRequest struct {
	ProgramID       int     `json:"program_id" binding:"required"`
	Name            string  `json:"name" binding:"required,min=2,max=100"`
	Gender          Gender  `json:"gender" binding:"required,oneof=Laki-laki Perempuan"`
	Active          *bool   `json:"active" binding:"omitempty"`
	RoomStart       int     `json:"room_start" binding:"omitempty,min=1"`
	MeetingLink     *string `json:"meeting_link" binding:"omitempty,url,max=500"`
	MeetingPassword *string `json:"meeting_password" binding:"omitempty,max=100"`
}
