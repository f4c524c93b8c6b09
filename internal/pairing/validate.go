package pairing

import (
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

// ValidateLockedGroups checks every caller-pinned group before any grouping
// runs. It either passes as a whole or returns the first violation; no
// partial acceptance. directory must contain every student that exists, keyed
// by ID; members absent from it are reported as not found.
func ValidateLockedGroups(locked [][]int, grouping model.Grouping, class *model.Class, directory map[int]model.Student) error {
	want := grouping.GroupSize()
	seen := make(map[int]int, len(locked)*want)

	for i, group := range locked {
		if len(group) != want {
			return &LockedGroupError{GroupIndex: i, Rule: LockRuleSize, WantSize: want, GotSize: len(group)}
		}
		for _, id := range group {
			if _, dup := seen[id]; dup {
				return &LockedGroupError{GroupIndex: i, Rule: LockRuleDuplicate, StudentID: id}
			}
			seen[id] = i

			s, ok := directory[id]
			if !ok {
				return &LockedGroupError{GroupIndex: i, Rule: LockRuleNotFound, StudentID: id}
			}
			if s.ClassID != class.ID {
				return &LockedGroupError{GroupIndex: i, Rule: LockRuleWrongClass, StudentID: id}
			}
			if !s.Active {
				return &LockedGroupError{GroupIndex: i, Rule: LockRuleInactive, StudentID: id}
			}
			if s.Gender != class.Gender {
				return &LockedGroupError{GroupIndex: i, Rule: LockRuleWrongGender, StudentID: id}
			}
		}
	}
	return nil
}
