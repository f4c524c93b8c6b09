package pairing

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/tahfidzid/mutqin-backend/internal/model"
)

// rotationAttempts bounds how many reshuffles rotation tries before giving
// up and keeping the last shuffle. Small classes can make a different
// composition impossible (two students have exactly one pairing), so the
// bound keeps generation terminating instead of guaranteeing difference.
const rotationAttempts = 4

// BuildGroups partitions the eligible pool into groups of the target size.
// Locked groups are emitted first, verbatim and in caller order; their
// members are removed from the pool before the algorithm runs. The caller
// must have validated locked groups already.
//
// previous is the most recent published grouping for the same class and is
// only consulted by the rotation algorithm; pass nil otherwise.
//
// The returned groups always cover the union of eligible and the locked
// members exactly once. If the non-locked pool does not divide evenly, the
// final generated group absorbs the remainder instead of leaving an
// undersized trailing group.
func BuildGroups(eligible []int, locked [][]int, grouping model.Grouping, algorithm model.Algorithm, previous [][]int, rng *rand.Rand) [][]int {
	pinned := make(map[int]bool)
	for _, g := range locked {
		for _, id := range g {
			pinned[id] = true
		}
	}

	pool := make([]int, 0, len(eligible))
	for _, id := range eligible {
		if !pinned[id] {
			pool = append(pool, id)
		}
	}

	size := grouping.GroupSize()

	var generated [][]int
	switch algorithm {
	case model.AlgorithmRotation:
		generated = rotate(pool, locked, size, previous, rng)
	default:
		// random; "manual" only promises that locked groups are honored,
		// the remaining pool still fills randomly.
		generated = chunkShuffled(pool, size, rng)
	}

	out := make([][]int, 0, len(locked)+len(generated))
	for _, g := range locked {
		out = append(out, slices.Clone(g))
	}
	return append(out, generated...)
}

// rotate reshuffles until the full grouping's composition differs from the
// previous published run, up to rotationAttempts times. With no history it
// degenerates to random.
func rotate(pool []int, locked [][]int, size int, previous [][]int, rng *rand.Rand) [][]int {
	if len(previous) == 0 {
		return chunkShuffled(pool, size, rng)
	}

	prevSet := compositionSet(previous)
	var generated [][]int
	for attempt := 0; attempt < rotationAttempts; attempt++ {
		generated = chunkShuffled(pool, size, rng)

		full := make([][]int, 0, len(locked)+len(generated))
		full = append(full, locked...)
		full = append(full, generated...)
		if !sameComposition(compositionSet(full), prevSet) {
			return generated
		}
	}
	// Bounded retries exhausted; keep the last shuffle.
	return generated
}

// chunkShuffled shuffles the pool and slices it into groups of size. A
// trailing remainder smaller than size is merged into the final group.
func chunkShuffled(pool []int, size int, rng *rand.Rand) [][]int {
	shuffled := slices.Clone(pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) == 0 {
		return [][]int{}
	}

	full := len(shuffled) / size
	if full == 0 {
		return [][]int{shuffled}
	}

	groups := make([][]int, 0, full)
	for i := 0; i < full; i++ {
		groups = append(groups, shuffled[i*size:(i+1)*size])
	}
	// Remainder joins the last group rather than forming an undersized one.
	if rest := shuffled[full*size:]; len(rest) > 0 {
		last := groups[len(groups)-1]
		groups[len(groups)-1] = append(slices.Clone(last), rest...)
	}
	return groups
}

// compositionSet canonicalizes a grouping into an order-insensitive set of
// member sets.
func compositionSet(groups [][]int) map[string]bool {
	set := make(map[string]bool, len(groups))
	for _, g := range groups {
		ids := slices.Clone(g)
		slices.Sort(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		set[strings.Join(parts, ",")] = true
	}
	return set
}

func sameComposition(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
