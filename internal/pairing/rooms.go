package pairing

import "slices"

// AssignRooms numbers groups sequentially from startRoom, one room per group,
// in the order the groups were produced. Pure; safe to call repeatedly for
// previews.
func AssignRooms(groups [][]int, startRoom int) map[int][]int {
	if startRoom < 1 {
		startRoom = 1
	}
	rooms := make(map[int][]int, len(groups))
	for i, g := range groups {
		rooms[startRoom+i] = slices.Clone(g)
	}
	return rooms
}
