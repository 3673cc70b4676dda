package clugen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// SizeSampler draws relative cluster weights. Implementations return
// numClusters non-negative values whose relative magnitudes determine how the
// total point count is split between clusters; the values do not need to sum
// to one. The default sampler is HalfNormalWeights.
type SizeSampler func(numClusters int, rng *rand.Rand) []float64

// HalfNormalWeights is the default SizeSampler. It returns the absolute
// values of numClusters standard normal draws, which yields moderately uneven
// cluster sizes with an occasional dominant cluster.
func HalfNormalWeights(numClusters int, rng *rand.Rand) []float64 {
	rng = ensureRand(rng)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	weights := make([]float64, numClusters)
	for i := range weights {
		weights[i] = math.Abs(normal.Rand())
	}
	return weights
}

// ClusterSizes splits totalPoints points between numClusters clusters.
// Relative sizes are drawn from the weights sampler (HalfNormalWeights when
// nil), scaled to the requested total and rounded. Rounding drift is then
// repaired so the result always sums to exactly totalPoints, and unless
// allowEmpty is set every cluster receives at least one point.
//
// When allowEmpty is false, totalPoints must be at least numClusters.
func ClusterSizes(numClusters, totalPoints int, allowEmpty bool, weights SizeSampler, rng *rand.Rand) ([]int, error) {
	if numClusters < 1 {
		return nil, fmt.Errorf("clugen: number of clusters must be at least 1, got %d", numClusters)
	}
	if totalPoints < 0 {
		return nil, fmt.Errorf("clugen: total number of points must be non-negative, got %d", totalPoints)
	}
	if !allowEmpty && totalPoints < numClusters {
		return nil, fmt.Errorf("clugen: cannot place %d points into %d clusters without empty clusters", totalPoints, numClusters)
	}
	rng = ensureRand(rng)
	if weights == nil {
		weights = HalfNormalWeights
	}

	w := weights(numClusters, rng)
	if len(w) != numClusters {
		return nil, &StrategyError{
			Strategy: "size weights",
			Reason:   fmt.Sprintf("returned %d weights for %d clusters", len(w), numClusters),
		}
	}
	sum := 0.0
	for i, wi := range w {
		if math.IsNaN(wi) || wi < 0 {
			return nil, &StrategyError{
				Strategy: "size weights",
				Reason:   fmt.Sprintf("weight %d is %v, want non-negative", i, wi),
			}
		}
		sum += wi
	}
	if sum <= 0 {
		return nil, &StrategyError{Strategy: "size weights", Reason: "weights sum to zero"}
	}

	sizes := make([]int, numClusters)
	for i, wi := range w {
		sizes[i] = int(math.Round(float64(totalPoints) * wi / sum))
	}
	if !allowEmpty {
		sizes = fixEmpty(sizes)
	}
	return fixNumPoints(sizes, totalPoints), nil
}

// fixEmpty gives every empty cluster one point taken from the currently
// largest cluster. It returns a copy; sizes is not modified. The loop stops
// early if the largest cluster is down to a single point, in which case the
// remaining empty clusters are left for fixNumPoints to fill while it repairs
// the total.
func fixEmpty(sizes []int) []int {
	out := slices.Clone(sizes)
	for {
		empty := slices.Index(out, 0)
		if empty < 0 {
			return out
		}
		largest := argMax(out)
		if out[largest] <= 1 {
			return out
		}
		out[largest]--
		out[empty]++
	}
}

// fixNumPoints adjusts sizes until they sum to total, incrementing the
// currently smallest cluster while under and decrementing the currently
// largest while over. It returns a copy; sizes is not modified.
func fixNumPoints(sizes []int, total int) []int {
	out := slices.Clone(sizes)
	sum := 0
	for _, s := range out {
		sum += s
	}
	for sum < total {
		out[argMin(out)]++
		sum++
	}
	for sum > total {
		out[argMax(out)]--
		sum--
	}
	return out
}

// argMax returns the index of the largest value, preferring the first
// occurrence on ties.
func argMax(s []int) int {
	best := 0
	for i, v := range s {
		if v > s[best] {
			best = i
		}
	}
	return best
}

// argMin returns the index of the smallest value, preferring the first
// occurrence on ties.
func argMin(s []int) int {
	best := 0
	for i, v := range s {
		if v < s[best] {
			best = i
		}
	}
	return best
}
