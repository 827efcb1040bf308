package hitler

import "math/rand"

// randSource is the engine's seedable randomness surface: role shuffles,
// deck shuffles, and the five-year-plan addition all draw from it. Given
// an identical (config, seed, event sequence) the engine is deterministic
// and replay-equivalent (§5), so the engine never reaches for the global
// rand source — every Game owns its own *rand.Rand seeded at construction.
type randSource interface {
	Shuffle(n int, swap func(i, j int))
}

func newRandSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
