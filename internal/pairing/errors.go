package pairing

import "fmt"

// LockRule identifies which locked-group rule a validation failure violated.
type LockRule string

const (
	LockRuleSize        LockRule = "size_mismatch"
	LockRuleNotFound    LockRule = "not_found"
	LockRuleWrongClass  LockRule = "wrong_class"
	LockRuleWrongGender LockRule = "wrong_gender"
	LockRuleInactive    LockRule = "inactive"
	LockRuleDuplicate   LockRule = "duplicate_member"
)

// LockedGroupError pinpoints the first locked-group violation. GroupIndex is
// the zero-based position in the caller-supplied list; StudentID is zero for
// size violations.
type LockedGroupError struct {
	GroupIndex int      `json:"group_index"`
	Rule       LockRule `json:"rule"`
	StudentID  int      `json:"student_id,omitempty"`
	WantSize   int      `json:"want_size,omitempty"`
	GotSize    int      `json:"got_size,omitempty"`
}

func (e *LockedGroupError) Error() string {
	switch e.Rule {
	case LockRuleSize:
		return fmt.Sprintf("locked group %d has %d members, want %d", e.GroupIndex, e.GotSize, e.WantSize)
	case LockRuleDuplicate:
		return fmt.Sprintf("student %d appears in more than one locked group", e.StudentID)
	default:
		return fmt.Sprintf("locked group %d: student %d: %s", e.GroupIndex, e.StudentID, e.Rule)
	}
}
