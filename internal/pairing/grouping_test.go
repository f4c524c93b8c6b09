package pairing

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tahfidzid/mutqin-backend/internal/model"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// collectIDs flattens groups and asserts no student appears twice.
func collectIDs(t *testing.T, groups [][]int) []int {
	t.Helper()
	seen := make(map[int]bool)
	var ids []int
	for _, g := range groups {
		for _, id := range g {
			require.False(t, seen[id], "student %d appears twice", id)
			seen[id] = true
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func TestBuildGroupsPairsOfSix(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6}

	groups := BuildGroups(eligible, nil, model.GroupingPairs, model.AlgorithmRandom, nil, newRNG(7))

	require.Len(t, groups, 3)
	for _, g := range groups {
		require.Len(t, g, 2)
	}
	require.Equal(t, eligible, collectIDs(t, groups))
}

func TestBuildGroupsTripletsOfSix(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6}

	groups := BuildGroups(eligible, nil, model.GroupingTriplets, model.AlgorithmRandom, nil, newRNG(7))

	require.Len(t, groups, 2)
	for _, g := range groups {
		require.Len(t, g, 3)
	}
	require.Equal(t, eligible, collectIDs(t, groups))
}

func TestBuildGroupsRemainderAbsorbedByLastGroup(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6, 7}

	groups := BuildGroups(eligible, nil, model.GroupingPairs, model.AlgorithmRandom, nil, newRNG(3))

	require.Len(t, groups, 3)
	oversized := 0
	for i, g := range groups {
		if len(g) == 3 {
			oversized++
			require.Equal(t, len(groups)-1, i, "only the last group may absorb the remainder")
		} else {
			require.Len(t, g, 2)
		}
	}
	require.Equal(t, 1, oversized)
	require.Equal(t, eligible, collectIDs(t, groups))
}

func TestBuildGroupsLockedGroupsEmittedVerbatimFirst(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6}
	locked := [][]int{{1, 2}}

	for _, alg := range []model.Algorithm{model.AlgorithmRandom, model.AlgorithmRotation, model.AlgorithmManual} {
		groups := BuildGroups(eligible, locked, model.GroupingPairs, alg, nil, newRNG(11))

		require.Len(t, groups, 3, "algorithm %s", alg)
		require.Equal(t, []int{1, 2}, groups[0], "algorithm %s", alg)
		require.Equal(t, eligible, collectIDs(t, groups))
	}
}

func TestBuildGroupsMultipleLockedKeepCallerOrder(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6, 7, 8}
	locked := [][]int{{5, 6}, {2, 1}}

	groups := BuildGroups(eligible, locked, model.GroupingPairs, model.AlgorithmManual, nil, newRNG(11))

	require.Equal(t, []int{5, 6}, groups[0])
	require.Equal(t, []int{2, 1}, groups[1])
	require.Equal(t, eligible, collectIDs(t, groups))
}

func TestBuildGroupsEmptyPool(t *testing.T) {
	groups := BuildGroups(nil, nil, model.GroupingPairs, model.AlgorithmRandom, nil, newRNG(1))
	require.Empty(t, groups)
}

func TestBuildGroupsPoolSmallerThanTarget(t *testing.T) {
	// Two eligible students in a triplets run still form a single group;
	// the engine never silently drops anyone.
	groups := BuildGroups([]int{4, 9}, nil, model.GroupingTriplets, model.AlgorithmRandom, nil, newRNG(1))
	require.Len(t, groups, 1)
	require.Equal(t, []int{4, 9}, collectIDs(t, groups))
}

func TestRotationAvoidsPreviousComposition(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5, 6}
	previous := [][]int{{1, 2}, {3, 4}, {5, 6}}

	// A handful of seeds; each run must cover the pool, and at least one
	// must differ from the previous day (rotation does reshuffle).
	differed := false
	for seed := uint64(1); seed <= 10; seed++ {
		groups := BuildGroups(eligible, nil, model.GroupingPairs, model.AlgorithmRotation, previous, newRNG(seed))
		require.Equal(t, eligible, collectIDs(t, groups))
		if !sameComposition(compositionSet(groups), compositionSet(previous)) {
			differed = true
		}
	}
	require.True(t, differed)
}

func TestRotationWithoutHistoryBehavesLikeRandom(t *testing.T) {
	eligible := []int{1, 2, 3, 4}

	groups := BuildGroups(eligible, nil, model.GroupingPairs, model.AlgorithmRotation, nil, newRNG(5))

	require.Len(t, groups, 2)
	require.Equal(t, eligible, collectIDs(t, groups))
}

func TestRotationFallsBackWhenOnlyOneCompositionExists(t *testing.T) {
	// Two students have exactly one possible pairing; rotation must give up
	// after its bounded retries instead of spinning.
	eligible := []int{1, 2}
	previous := [][]int{{1, 2}}

	groups := BuildGroups(eligible, nil, model.GroupingPairs, model.AlgorithmRotation, previous, newRNG(5))

	require.Len(t, groups, 1)
	require.ElementsMatch(t, []int{1, 2}, groups[0])
}

func TestSameComposition(t *testing.T) {
	a := compositionSet([][]int{{1, 2}, {3, 4}})
	b := compositionSet([][]int{{4, 3}, {2, 1}})
	c := compositionSet([][]int{{1, 3}, {2, 4}})

	require.True(t, sameComposition(a, b))
	require.False(t, sameComposition(a, c))
}
