package clugen

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// --- NormProjections tests ---

func TestNormProjections_WithinHalfLength(t *testing.T) {
	distances := NormProjections(5, 500, testRand(1))
	if len(distances) != 500 {
		t.Fatalf("expected 500 distances, got %d", len(distances))
	}
	for i, d := range distances {
		if math.Abs(d) > 2.5 {
			t.Errorf("distance %d = %v outside ±2.5", i, d)
		}
	}
}

func TestNormProjections_ZeroLength(t *testing.T) {
	for i, d := range NormProjections(0, 10, testRand(2)) {
		if d != 0 {
			t.Errorf("distance %d = %v, want 0", i, d)
		}
	}
}

func TestNormProjections_CenterHeavy(t *testing.T) {
	// With σ = length/6 nearly all mass is within one third of the line
	// around the center.
	distances := NormProjections(6, 2000, testRand(3))
	if m := stat.Mean(distances, nil); math.Abs(m) > 0.5 {
		t.Errorf("mean = %v, want near 0", m)
	}
	inner := 0
	for _, d := range distances {
		if math.Abs(d) <= 1 {
			inner++
		}
	}
	if inner < 1000 {
		t.Errorf("only %d of 2000 projections within ±1; expected a clear majority", inner)
	}
}

// --- UnifProjections tests ---

func TestUnifProjections_WithinHalfLength(t *testing.T) {
	distances := UnifProjections(5, 500, testRand(4))
	for i, d := range distances {
		if math.Abs(d) > 2.5 {
			t.Errorf("distance %d = %v outside ±2.5", i, d)
		}
	}
}

func TestUnifProjections_SpreadsAcrossLine(t *testing.T) {
	distances := UnifProjections(5, 200, testRand(5))
	if max := floats.Max(distances); max < 0.5 {
		t.Errorf("max = %v; uniform projections should reach well past 0.5", max)
	}
	if min := floats.Min(distances); min > -0.5 {
		t.Errorf("min = %v; uniform projections should reach well below -0.5", min)
	}
}

func TestUnifProjections_ZeroLength(t *testing.T) {
	for i, d := range UnifProjections(0, 10, testRand(6)) {
		if d != 0 {
			t.Errorf("distance %d = %v, want 0", i, d)
		}
	}
}

// --- PlacePointsN1 tests ---

func TestPlacePointsN1_ZeroDispersionKeepsProjections(t *testing.T) {
	direction := []float64{1, 0, 0}
	projs := PointsOnLine([]float64{0, 0, 0}, direction, []float64{-1, 0, 1, 2})
	points, err := PlacePointsN1(projs, 0, 4, direction, []float64{0, 0, 0}, testRand(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(points, projs) {
		t.Errorf("points differ from projections despite zero dispersion")
	}
}

func TestPlacePointsN1_DisplacementOrthogonal(t *testing.T) {
	rng := testRand(2)
	direction := RandUnitVector(3, rng)
	projs := PointsOnLine([]float64{1, 2, 3}, direction, UnifProjections(6, 50, rng))
	points, err := PlacePointsN1(projs, 2, 6, direction, []float64{1, 2, 3}, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := make([]float64, 3)
	for j := 0; j < 50; j++ {
		floats.SubTo(diff, points.RawRowView(j), projs.RawRowView(j))
		if dot := floats.Dot(diff, direction); !almostEqual(dot, 0, 1e-9) {
			t.Errorf("point %d: displacement has along-line component %v", j, dot)
		}
	}
}

func TestPlacePointsN1_OneDimension(t *testing.T) {
	projs := PointsOnLine([]float64{2}, []float64{1}, []float64{-0.5, 0, 0.5})
	points, err := PlacePointsN1(projs, 3, 1, []float64{1}, []float64{2}, testRand(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(points, projs) {
		t.Errorf("one-dimensional points must coincide with projections")
	}
}

func TestPlacePointsN1_ZeroDirection_Error(t *testing.T) {
	projs := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	if _, err := PlacePointsN1(projs, 1, 2, []float64{0, 0}, []float64{0, 0}, testRand(4)); err == nil {
		t.Error("expected error for zero-magnitude direction")
	}
}

// --- PlacePointsN1Template tests ---

func TestPlacePointsN1Template_ConstantOffsets(t *testing.T) {
	direction := []float64{0, 1, 0}
	projs := PointsOnLine([]float64{0, 0, 0}, direction, []float64{-1, 0, 1})
	sampler := func(numPoints int, latDisp float64, rng *rand.Rand) []float64 {
		offsets := make([]float64, numPoints)
		for i := range offsets {
			offsets[i] = 2
		}
		return offsets
	}
	points, err := PlacePointsN1Template(projs, 1, direction, sampler, testRand(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := make([]float64, 3)
	for j := 0; j < 3; j++ {
		floats.SubTo(diff, points.RawRowView(j), projs.RawRowView(j))
		if norm := floats.Norm(diff, 2); !almostEqual(norm, 2, floatTol) {
			t.Errorf("point %d: displacement magnitude %v, want 2", j, norm)
		}
	}
}

func TestPlacePointsN1Template_WrongOffsetCount_StrategyError(t *testing.T) {
	direction := []float64{1, 0}
	projs := PointsOnLine([]float64{0, 0}, direction, []float64{0, 1, 2})
	sampler := func(numPoints int, latDisp float64, rng *rand.Rand) []float64 {
		return []float64{1}
	}
	_, err := PlacePointsN1Template(projs, 1, direction, sampler, testRand(6))
	var se *StrategyError
	if !errors.As(err, &se) {
		t.Fatalf("expected StrategyError, got %v", err)
	}
}

// --- PlacePointsN tests ---

func TestPlacePointsN_ZeroDispersionKeepsProjections(t *testing.T) {
	direction := []float64{0, 0, 1}
	projs := PointsOnLine([]float64{5, 5, 5}, direction, []float64{-2, -1, 0, 1, 2})
	points, err := PlacePointsN(projs, 0, 4, direction, []float64{5, 5, 5}, testRand(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(points, projs) {
		t.Errorf("points differ from projections despite zero dispersion")
	}
}

func TestPlacePointsN_DisplacementOrthogonal(t *testing.T) {
	rng := testRand(8)
	direction := RandUnitVector(4, rng)
	projs := PointsOnLine([]float64{0, 1, 0, -1}, direction, UnifProjections(8, 40, rng))
	points, err := PlacePointsN(projs, 1.5, 8, direction, []float64{0, 1, 0, -1}, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := make([]float64, 4)
	for j := 0; j < 40; j++ {
		floats.SubTo(diff, points.RawRowView(j), projs.RawRowView(j))
		if dot := floats.Dot(diff, direction); !almostEqual(dot, 0, 1e-9) {
			t.Errorf("point %d: displacement has along-line component %v", j, dot)
		}
	}
}

func TestPlacePointsN_OneDimension(t *testing.T) {
	projs := PointsOnLine([]float64{-1}, []float64{1}, []float64{0, 1})
	points, err := PlacePointsN(projs, 2, 2, []float64{1}, []float64{-1}, testRand(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(points, projs) {
		t.Errorf("one-dimensional points must coincide with projections")
	}
}

func TestPlacePointsN_NonUnitDirection(t *testing.T) {
	// The direction is normalized internally, so orthogonality holds for
	// the unnormalized input as well.
	rng := testRand(10)
	direction := []float64{2, 0, 0}
	projs := PointsOnLine([]float64{0, 0, 0}, []float64{1, 0, 0}, UnifProjections(4, 20, rng))
	points, err := PlacePointsN(projs, 1, 4, direction, []float64{0, 0, 0}, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := make([]float64, 3)
	for j := 0; j < 20; j++ {
		floats.SubTo(diff, points.RawRowView(j), projs.RawRowView(j))
		if dot := floats.Dot(diff, direction); !almostEqual(dot, 0, 1e-9) {
			t.Errorf("point %d: displacement has along-line component %v", j, dot)
		}
	}
}

func TestPlacePointsN_ZeroDirection_Error(t *testing.T) {
	projs := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	if _, err := PlacePointsN(projs, 1, 2, []float64{0, 0}, []float64{0, 0}, testRand(11)); err == nil {
		t.Error("expected error for zero-magnitude direction")
	}
}

func TestPlacePointsN_ShapeMatchesProjections(t *testing.T) {
	direction := []float64{1, 1}
	projs := PointsOnLine([]float64{0, 0}, direction, []float64{0, 1, 2, 3, 4, 5, 6})
	points, err := PlacePointsN(projs, 0.5, 7, direction, []float64{0, 0}, testRand(12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr, pc := points.Dims()
	if pr != 7 || pc != 2 {
		t.Errorf("expected 7×2 points, got %d×%d", pr, pc)
	}
}
