package clugen

import "math/rand/v2"

// ensureRand returns rng unchanged when non-nil, otherwise a freshly seeded
// PCG generator. Every exported function that draws random values accepts a
// nil generator and falls back to this, so one-off calls need no setup while
// reproducible runs can pass rand.New(rand.NewPCG(seed, seed)).
func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
