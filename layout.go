package clugen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// AngleDeltas draws one angular deviation per cluster from a normal
// distribution with mean zero and standard deviation angleDisp, in radians.
// Each draw is wrapped into [-π/2, π/2] so that large dispersions spread
// across the whole interval instead of piling up at the endpoints.
func AngleDeltas(numClusters int, angleDisp float64, rng *rand.Rand) []float64 {
	rng = ensureRand(rng)
	normal := distuv.Normal{Mu: 0, Sigma: angleDisp, Src: rng}
	angles := make([]float64, numClusters)
	for i := range angles {
		angles[i] = wrapHalfPi(normal.Rand())
	}
	return angles
}

// wrapHalfPi wraps an angle in radians into [-π/2, π/2]. The angle is first
// reduced to the principal interval (-π, π] and the outer halves are then
// folded inward by π/2, keeping the sign.
func wrapHalfPi(angle float64) float64 {
	angle = math.Atan2(math.Sin(angle), math.Cos(angle))
	if math.Abs(angle) > math.Pi/2 {
		angle -= math.Copysign(math.Pi/2, angle)
	}
	return angle
}

// LineLengths draws one support line length per cluster from a normal
// distribution with the given mean and standard deviation. Negative draws are
// clipped to zero, so clusters can degenerate to a single spot but never
// report a negative length.
func LineLengths(numClusters int, length, lengthDisp float64, rng *rand.Rand) []float64 {
	rng = ensureRand(rng)
	normal := distuv.Normal{Mu: length, Sigma: lengthDisp, Src: rng}
	lengths := make([]float64, numClusters)
	for i := range lengths {
		lengths[i] = math.Max(0, normal.Rand())
	}
	return lengths
}

// CenterSampler draws the raw spread of cluster centers before scaling.
// Implementations return a numClusters×numDims matrix of unit-scale
// coordinates; ClusterCenters then scales each column j by
// numClusters*separation[j] and shifts it by offset[j]. The default sampler
// is UniformCenterSample.
type CenterSampler func(numClusters, numDims int, rng *rand.Rand) *mat.Dense

// UniformCenterSample is the default CenterSampler. It fills the matrix with
// independent draws uniform on [-0.5, 0.5), centering the raw spread on the
// origin.
func UniformCenterSample(numClusters, numDims int, rng *rand.Rand) *mat.Dense {
	rng = ensureRand(rng)
	uniform := distuv.Uniform{Min: -0.5, Max: 0.5, Src: rng}
	sample := mat.NewDense(numClusters, numDims, nil)
	for i := 0; i < numClusters; i++ {
		row := sample.RawRowView(i)
		for j := range row {
			row[j] = uniform.Rand()
		}
	}
	return sample
}

// ClusterCenters places one center per cluster. Raw coordinates come from
// the sample sampler (UniformCenterSample when nil); coordinate j of center i
// is offset[j] + numClusters*separation[j]*raw(i,j), so the expected spacing
// between centers grows with both the per-dimension separation and the number
// of clusters.
//
// The separation and offset vectors must have the same length, which fixes
// the dimensionality of the centers.
func ClusterCenters(numClusters int, separation, offset []float64, sample CenterSampler, rng *rand.Rand) (*mat.Dense, error) {
	if numClusters < 1 {
		return nil, fmt.Errorf("clugen: number of clusters must be at least 1, got %d", numClusters)
	}
	if len(separation) < 1 {
		return nil, fmt.Errorf("clugen: separation vector must have at least one dimension")
	}
	if len(separation) != len(offset) {
		return nil, fmt.Errorf("clugen: separation has %d dimensions but offset has %d", len(separation), len(offset))
	}
	rng = ensureRand(rng)
	if sample == nil {
		sample = UniformCenterSample
	}

	numDims := len(separation)
	raw := sample(numClusters, numDims, rng)
	if raw == nil {
		return nil, &StrategyError{Strategy: "center sample", Reason: "returned a nil matrix"}
	}
	if r, c := raw.Dims(); r != numClusters || c != numDims {
		return nil, &StrategyError{
			Strategy: "center sample",
			Reason:   fmt.Sprintf("returned a %d×%d matrix, want %d×%d", r, c, numClusters, numDims),
		}
	}

	centers := mat.NewDense(numClusters, numDims, nil)
	for i := 0; i < numClusters; i++ {
		row := centers.RawRowView(i)
		rawRow := raw.RawRowView(i)
		for j := range row {
			row[j] = offset[j] + float64(numClusters)*separation[j]*rawRow[j]
		}
	}
	return centers, nil
}
