package clugen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ProjectionDist selects how point projections spread along a cluster's
// support line.
type ProjectionDist string

const (
	// ProjectionNorm concentrates projections around the line center using
	// a normal distribution with σ = length/6, truncated to the line.
	ProjectionNorm ProjectionDist = "norm"
	// ProjectionUnif spreads projections uniformly along the line.
	ProjectionUnif ProjectionDist = "unif"
)

// PlacementStrategy selects how points are displaced away from their
// projections on the support line.
type PlacementStrategy string

const (
	// PlacementN1 displaces each point along a single direction orthogonal
	// to the cluster line, fixed per cluster. Clusters stay visibly linear.
	PlacementN1 PlacementStrategy = "n-1"
	// PlacementN displaces each point by a full-dimensional normal vector
	// with its along-line component removed, producing rounder clusters.
	PlacementN PlacementStrategy = "n"
)

// ProjectionSampler draws signed distances from the line center for the
// points of one cluster. Implementations return numPoints values;
// lineLen is the length of the cluster's support line.
type ProjectionSampler func(lineLen float64, numPoints int, rng *rand.Rand) []float64

// NormProjections implements ProjectionNorm. Distances are drawn from
// N(0, (lineLen/6)²) and truncated to [-lineLen/2, lineLen/2], so roughly
// 99.7% of the mass falls on the line before truncation.
func NormProjections(lineLen float64, numPoints int, rng *rand.Rand) []float64 {
	rng = ensureRand(rng)
	normal := distuv.Normal{Mu: 0, Sigma: lineLen / 6, Src: rng}
	half := lineLen / 2
	distances := make([]float64, numPoints)
	for i := range distances {
		distances[i] = math.Min(math.Max(normal.Rand(), -half), half)
	}
	return distances
}

// UnifProjections implements ProjectionUnif, drawing distances uniformly on
// [-lineLen/2, lineLen/2].
func UnifProjections(lineLen float64, numPoints int, rng *rand.Rand) []float64 {
	rng = ensureRand(rng)
	uniform := distuv.Uniform{Min: -lineLen / 2, Max: lineLen / 2, Src: rng}
	distances := make([]float64, numPoints)
	for i := range distances {
		distances[i] = uniform.Rand()
	}
	return distances
}

// LateralSampler draws signed lateral offset magnitudes for the points of
// one cluster, used by the "n-1" placement template. Implementations return
// numPoints values; latDisp is the cluster's lateral dispersion.
type LateralSampler func(numPoints int, latDisp float64, rng *rand.Rand) []float64

// normLateral is the default LateralSampler: N(0, latDisp²) offsets.
func normLateral(numPoints int, latDisp float64, rng *rand.Rand) []float64 {
	normal := distuv.Normal{Mu: 0, Sigma: latDisp, Src: rng}
	offsets := make([]float64, numPoints)
	for i := range offsets {
		offsets[i] = normal.Rand()
	}
	return offsets
}

// PointPlacer turns the projections of one cluster into final points. The
// projs matrix holds one projection per row; direction and center describe
// the cluster's support line, and lineLen its length. Implementations return
// a matrix of the same shape as projs.
type PointPlacer func(projs *mat.Dense, latDisp, lineLen float64, direction, center []float64, rng *rand.Rand) (*mat.Dense, error)

// PlacePointsN1 implements PlacementN1: every point moves away from its
// projection along one direction orthogonal to the cluster line, drawn once
// per cluster, by a signed offset drawn from N(0, latDisp²).
func PlacePointsN1(projs *mat.Dense, latDisp, lineLen float64, direction, center []float64, rng *rand.Rand) (*mat.Dense, error) {
	return PlacePointsN1Template(projs, latDisp, direction, nil, rng)
}

// PlacePointsN1Template is the generalized form of PlacePointsN1: the signed
// offsets come from the given sampler (N(0, latDisp²) when nil), while the
// orthogonal direction is still drawn once per cluster. Use it to build
// custom PointPlacer implementations with non-normal lateral profiles.
//
// In one dimension there is no orthogonal direction and the points coincide
// with their projections.
func PlacePointsN1Template(projs *mat.Dense, latDisp float64, direction []float64, sampler LateralSampler, rng *rand.Rand) (*mat.Dense, error) {
	rng = ensureRand(rng)
	if sampler == nil {
		sampler = normLateral
	}

	numPoints, numDims := projs.Dims()
	points := mat.NewDense(numPoints, numDims, nil)
	if numDims == 1 {
		points.Copy(projs)
		return points, nil
	}

	ortho, err := RandOrthogonalVector(direction, rng)
	if err != nil {
		return nil, err
	}
	offsets := sampler(numPoints, latDisp, rng)
	if len(offsets) != numPoints {
		return nil, &StrategyError{
			Strategy: "lateral offsets",
			Reason:   fmt.Sprintf("returned %d offsets for %d points", len(offsets), numPoints),
		}
	}
	for j := 0; j < numPoints; j++ {
		floats.AddScaledTo(points.RawRowView(j), projs.RawRowView(j), offsets[j], ortho)
	}
	return points, nil
}

// PlacePointsN implements PlacementN: every point moves away from its
// projection by an independent displacement with components drawn from
// N(0, latDisp²) and the component along the cluster line projected out, so
// the displacement is strictly lateral but otherwise unconstrained.
//
// In one dimension the lateral complement is empty and the points coincide
// with their projections.
func PlacePointsN(projs *mat.Dense, latDisp, lineLen float64, direction, center []float64, rng *rand.Rand) (*mat.Dense, error) {
	rng = ensureRand(rng)

	numPoints, numDims := projs.Dims()
	points := mat.NewDense(numPoints, numDims, nil)
	if numDims == 1 {
		points.Copy(projs)
		return points, nil
	}

	norm := floats.Norm(direction, 2)
	if norm == 0 {
		return nil, fmt.Errorf("clugen: cannot place points around a zero-magnitude direction")
	}
	unit := make([]float64, numDims)
	floats.ScaleTo(unit, 1/norm, direction)

	normal := distuv.Normal{Mu: 0, Sigma: latDisp, Src: rng}
	displacement := make([]float64, numDims)
	for j := 0; j < numPoints; j++ {
		for i := range displacement {
			displacement[i] = normal.Rand()
		}
		floats.AddScaled(displacement, -floats.Dot(displacement, unit), unit)
		floats.AddTo(points.RawRowView(j), projs.RawRowView(j), displacement)
	}
	return points, nil
}
