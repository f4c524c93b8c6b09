package model

import (
	"time"

	"github.com/google/uuid"
)

// Grouping selects the target group size for a companion day.
type Grouping string

const (
	GroupingPairs    Grouping = "pairs"
	GroupingTriplets Grouping = "triplets"
)

// GroupSize returns the target member count per group.
func (g Grouping) GroupSize() int {
	if g == GroupingTriplets {
		return 3
	}
	return 2
}

// Valid reports whether the grouping is a supported value.
func (g Grouping) Valid() bool {
	return g == GroupingPairs || g == GroupingTriplets
}

// Algorithm selects how the non-locked pool is partitioned.
type Algorithm string

const (
	AlgorithmRandom   Algorithm = "random"
	AlgorithmRotation Algorithm = "rotation"
	AlgorithmManual   Algorithm = "manual"
)

// Valid reports whether the algorithm is a supported value.
func (a Algorithm) Valid() bool {
	return a == AlgorithmRandom || a == AlgorithmRotation || a == AlgorithmManual
}

// AttendanceSource selects which students qualify for grouping.
type AttendanceSource string

const (
	AttendanceAll           AttendanceSource = "all"
	AttendanceCommittedOnly AttendanceSource = "committed_only"
)

// Valid reports whether the attendance source is a supported value.
func (s AttendanceSource) Valid() bool {
	return s == AttendanceAll || s == AttendanceCommittedOnly
}

// CompanionDay is one class's muraja'ah pairing record for one date.
// At most one row exists per (class, target date). The record is a Draft
// until PublishedAt is set; after that the pairings, room assignments and
// meeting snapshot are frozen.
//
// Groups are always ordered lists of student IDs, never names. Names are
// resolved only at the notification/display boundary so a renamed student
// does not invalidate a published artifact.
type CompanionDay struct {
	ID               uuid.UUID        `json:"id"`
	ClassID          int              `json:"class_id"`
	TargetDate       time.Time        `json:"target_date"`
	Grouping         Grouping         `json:"grouping"`
	Algorithm        Algorithm        `json:"algorithm"`
	AttendanceSource AttendanceSource `json:"attendance_source"`
	LockedGroups     [][]int          `json:"locked_groups,omitempty"`
	Pairings         [][]int          `json:"pairings,omitempty"`
	RoomAssignments  map[int][]int    `json:"room_assignments,omitempty"`
	LinkSnapshot     *string          `json:"link_snapshot,omitempty"`
	PasswordSnapshot *string          `json:"password_snapshot,omitempty"`
	PublishedAt      *time.Time       `json:"published_at,omitempty"`
	PublishedBy      *int             `json:"published_by,omitempty"`
	AutoPublished    bool             `json:"auto_published"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Published reports whether the day has left Draft state.
func (d *CompanionDay) Published() bool {
	return d.PublishedAt != nil
}

// GenerateCompanionsRequest is the payload for the staff generate endpoint.
type GenerateCompanionsRequest struct {
	Grouping         Grouping         `json:"grouping" binding:"required,oneof=pairs triplets"`
	Algorithm        Algorithm        `json:"algorithm" binding:"required,oneof=random rotation manual"`
	AttendanceSource AttendanceSource `json:"attendance_source" binding:"omitempty,oneof=all committed_only"`
	LockedGroups     [][]int          `json:"locked_groups" binding:"omitempty"`
}

// LockGroupsRequest is the payload for pinning groups on a draft day.
type LockGroupsRequest struct {
	LockedGroups [][]int `json:"locked_groups" binding:"required,min=1"`
}

// RoomsPreviewRequest is the payload for the side-effect-free room preview.
type RoomsPreviewRequest struct {
	Groups    [][]int `json:"groups" binding:"required,min=1"`
	RoomStart int     `json:"room_start" binding:"omitempty,min=1"`
}

// RoomMember is a student inside a published room, resolved for display.
type RoomMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RoomView is one room of a published companion day.
type RoomView struct {
	Room    int          `json:"room"`
	Members []RoomMember `json:"members"`
}

// CompanionsPayload is the Redis-cached view of a published companion day,
// served to both the staff room map and the student lobby.
type CompanionsPayload struct {
	ClassID         int        `json:"class_id"`
	TargetDate      string     `json:"target_date"`
	Rooms           []RoomView `json:"rooms"`
	MeetingLink     *string    `json:"meeting_link,omitempty"`
	MeetingPassword *string    `json:"meeting_password,omitempty"`
	PublishedAt     time.Time  `json:"published_at"`
	AutoPublished   bool       `json:"auto_published"`
}

// MyCompanionsView is the single-student slice of a published day.
type MyCompanionsView struct {
	Room            int      `json:"room"`
	Companions      []string `json:"companions"`
	MeetingLink     *string  `json:"meeting_link,omitempty"`
	MeetingPassword *string  `json:"meeting_password,omitempty"`
}
