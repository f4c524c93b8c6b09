package pairing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

func testClass() *model.Class {
	return &model.Class{ID: 1, Gender: model.GenderMale, Active: true}
}

func testDirectory() map[int]model.Student {
	dir := make(map[int]model.Student)
	for id := 1; id <= 6; id++ {
		dir[id] = model.Student{ID: id, ClassID: 1, Gender: model.GenderMale, Active: true}
	}
	dir[7] = model.Student{ID: 7, ClassID: 2, Gender: model.GenderMale, Active: true}   // wrong class
	dir[8] = model.Student{ID: 8, ClassID: 1, Gender: model.GenderFemale, Active: true} // wrong gender
	dir[9] = model.Student{ID: 9, ClassID: 1, Gender: model.GenderMale, Active: false}  // inactive
	return dir
}

func TestValidateLockedGroupsPasses(t *testing.T) {
	err := ValidateLockedGroups([][]int{{1, 2}, {3, 4}}, model.GroupingPairs, testClass(), testDirectory())
	require.NoError(t, err)
}

func TestValidateLockedGroupsSizeMismatch(t *testing.T) {
	err := ValidateLockedGroups([][]int{{1, 2, 3}}, model.GroupingPairs, testClass(), testDirectory())

	var lge *LockedGroupError
	require.ErrorAs(t, err, &lge)
	require.Equal(t, LockRuleSize, lge.Rule)
	require.Equal(t, 2, lge.WantSize)
	require.Equal(t, 3, lge.GotSize)
	require.Equal(t, 0, lge.GroupIndex)
}

func TestValidateLockedGroupsTripletSize(t *testing.T) {
	require.NoError(t, ValidateLockedGroups([][]int{{1, 2, 3}}, model.GroupingTriplets, testClass(), testDirectory()))

	err := ValidateLockedGroups([][]int{{1, 2}}, model.GroupingTriplets, testClass(), testDirectory())
	var lge *LockedGroupError
	require.ErrorAs(t, err, &lge)
	require.Equal(t, LockRuleSize, lge.Rule)
}

func TestValidateLockedGroupsMemberRules(t *testing.T) {
	cases := []struct {
		name      string
		member    int
		wantRule  LockRule
		wantMatch int
	}{
		{"unknown student", 99, LockRuleNotFound, 99},
		{"wrong class", 7, LockRuleWrongClass, 7},
		{"wrong gender", 8, LockRuleWrongGender, 8},
		{"inactive", 9, LockRuleInactive, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLockedGroups([][]int{{1, tc.member}}, model.GroupingPairs, testClass(), testDirectory())

			var lge *LockedGroupError
			require.ErrorAs(t, err, &lge)
			require.Equal(t, tc.wantRule, lge.Rule)
			require.Equal(t, tc.wantMatch, lge.StudentID)
		})
	}
}

func TestValidateLockedGroupsDuplicateAcrossGroups(t *testing.T) {
	err := ValidateLockedGroups([][]int{{1, 2}, {2, 3}}, model.GroupingPairs, testClass(), testDirectory())

	var lge *LockedGroupError
	require.ErrorAs(t, err, &lge)
	require.Equal(t, LockRuleDuplicate, lge.Rule)
	require.Equal(t, 2, lge.StudentID)
}
