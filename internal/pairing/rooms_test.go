package pairing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignRoomsSequentialFromStart(t *testing.T) {
	groups := [][]int{{1, 2}, {3, 4}, {5, 6}}

	rooms := AssignRooms(groups, 5)

	require.Len(t, rooms, 3)
	require.Equal(t, []int{1, 2}, rooms[5])
	require.Equal(t, []int{3, 4}, rooms[6])
	require.Equal(t, []int{5, 6}, rooms[7])
}

func TestAssignRoomsDefaultsToOne(t *testing.T) {
	rooms := AssignRooms([][]int{{1, 2}}, 0)
	require.Equal(t, []int{1, 2}, rooms[1])
}

func TestAssignRoomsIsPure(t *testing.T) {
	groups := [][]int{{1, 2}}

	rooms := AssignRooms(groups, 1)
	rooms[1][0] = 99

	require.Equal(t, 1, groups[0][0], "mutating the result must not touch the input")
}
