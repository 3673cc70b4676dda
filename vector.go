package clugen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// rightAngleTol is the absolute tolerance within which an angle is
	// treated as exactly perpendicular.
	rightAngleTol = 1e-9

	// nearParallelDot is the largest |cosine| a candidate vector may form
	// with the reference before it is rejected as numerically parallel.
	nearParallelDot = 1 - 2.220446049250313e-16
)

// RandUnitVector returns a unit vector with numDims components drawn
// uniformly from the surface of the (numDims-1)-sphere. Each component is
// sampled from a standard normal and the result is normalized, which is
// direction-unbiased in any dimension.
//
// A nil rng falls back to a freshly seeded generator. RandUnitVector panics
// if numDims is less than one.
func RandUnitVector(numDims int, rng *rand.Rand) []float64 {
	if numDims < 1 {
		panic("clugen: RandUnitVector requires at least one dimension")
	}
	rng = ensureRand(rng)

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	if numDims == 1 {
		// x*(1/|x|) is not always exactly ±1 in floating point; draw the
		// sign directly so the 1-D degenerate case stays exact.
		for {
			if x := normal.Rand(); x != 0 {
				return []float64{math.Copysign(1, x)}
			}
		}
	}
	v := make([]float64, numDims)
	for {
		for i := range v {
			v[i] = normal.Rand()
		}
		if norm := floats.Norm(v, 2); norm > 0 {
			floats.Scale(1/norm, v)
			return v
		}
		// All components were zero. Probability zero, but redraw rather
		// than divide by zero.
	}
}

// RandOrthogonalVector returns a unit vector orthogonal to u, chosen
// uniformly at random from the orthogonal complement of u. The reference
// vector does not need to be normalized, but it must have nonzero magnitude.
//
// In one dimension no orthogonal direction exists, so the result degenerates
// to a random unit vector (-1 or +1).
func RandOrthogonalVector(u []float64, rng *rand.Rand) ([]float64, error) {
	if len(u) < 1 {
		return nil, fmt.Errorf("clugen: reference vector must have at least one dimension")
	}
	rng = ensureRand(rng)
	if len(u) == 1 {
		return RandUnitVector(1, rng), nil
	}

	norm := floats.Norm(u, 2)
	if norm == 0 {
		return nil, fmt.Errorf("clugen: cannot find a vector orthogonal to a zero-magnitude vector")
	}
	unit := make([]float64, len(u))
	floats.ScaleTo(unit, 1/norm, u)

	// Draw candidates until one is not numerically parallel to u, then
	// remove the component along u and renormalize.
	var v []float64
	for {
		v = RandUnitVector(len(u), rng)
		if math.Abs(floats.Dot(v, unit)) < nearParallelDot {
			break
		}
	}
	floats.AddScaled(v, -floats.Dot(v, unit), unit)
	floats.Scale(1/floats.Norm(v, 2), v)
	return v, nil
}

// RandVectorAtAngle returns a unit vector forming the given angle, in
// radians, with u. The rotation plane is spanned by u and a random
// orthogonal direction, so in three or more dimensions repeated calls cover
// the whole cone around u. The reference vector does not need to be
// normalized, but it must have nonzero magnitude.
//
// Angles within 1e-9 of ±π/2 yield a vector orthogonal to u. Angles of
// magnitude greater than π/2 do not constrain the direction and yield a
// uniformly random unit vector. In one dimension the result is always a
// random unit vector.
func RandVectorAtAngle(u []float64, angle float64, rng *rand.Rand) ([]float64, error) {
	if len(u) < 1 {
		return nil, fmt.Errorf("clugen: reference vector must have at least one dimension")
	}
	rng = ensureRand(rng)
	if len(u) == 1 {
		return RandUnitVector(1, rng), nil
	}

	norm := floats.Norm(u, 2)
	if norm == 0 {
		return nil, fmt.Errorf("clugen: cannot rotate away from a zero-magnitude vector")
	}
	unit := make([]float64, len(u))
	floats.ScaleTo(unit, 1/norm, u)

	switch {
	case math.Abs(math.Abs(angle)-math.Pi/2) <= rightAngleTol:
		return RandOrthogonalVector(unit, rng)
	case math.Abs(angle) < math.Pi/2:
		ortho, err := RandOrthogonalVector(unit, rng)
		if err != nil {
			return nil, err
		}
		v := make([]float64, len(u))
		floats.AddScaled(v, math.Cos(angle), unit)
		floats.AddScaled(v, math.Sin(angle), ortho)
		floats.Scale(1/floats.Norm(v, 2), v)
		return v, nil
	default:
		// Beyond a right angle the requested separation is unreachable
		// on the unit sphere; fall back to an unconstrained direction.
		return RandUnitVector(len(u), rng), nil
	}
}

// PointsOnLine places points along a line defined by a center and a
// direction. Point j is center + distances[j]*direction, one point per row.
// The center and direction must have the same length; the direction is used
// as given and is not normalized here.
//
// Returns nil when distances is empty.
func PointsOnLine(center, direction []float64, distances []float64) *mat.Dense {
	if len(direction) != len(center) {
		panic("clugen: PointsOnLine requires center and direction of equal length")
	}
	if len(distances) == 0 {
		return nil
	}
	points := mat.NewDense(len(distances), len(center), nil)
	for j, dist := range distances {
		floats.AddScaledTo(points.RawRowView(j), center, dist, direction)
	}
	return points
}
