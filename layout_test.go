package clugen

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// --- AngleDeltas tests ---

func TestAngleDeltas_ZeroDispersion(t *testing.T) {
	angles := AngleDeltas(10, 0, testRand(1))
	if len(angles) != 10 {
		t.Fatalf("expected 10 angles, got %d", len(angles))
	}
	for i, a := range angles {
		if a != 0 {
			t.Errorf("angle %d = %v, want 0", i, a)
		}
	}
}

func TestAngleDeltas_WithinHalfPi(t *testing.T) {
	// A huge dispersion exercises the wrap on almost every draw.
	angles := AngleDeltas(1000, 10, testRand(2))
	for i, a := range angles {
		if math.Abs(a) > math.Pi/2+floatTol {
			t.Errorf("angle %d = %v outside [-π/2, π/2]", i, a)
		}
	}
}

func TestAngleDeltas_NilRNG(t *testing.T) {
	angles := AngleDeltas(3, 0.1, nil)
	if len(angles) != 3 {
		t.Fatalf("expected 3 angles, got %d", len(angles))
	}
}

func TestWrapHalfPi_HandValues(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"zero", 0, 0},
		{"inside interval", -0.4, -0.4},
		{"upper boundary", math.Pi / 2, math.Pi / 2},
		{"just past boundary", 0.6 * math.Pi, 0.1 * math.Pi},
		{"pi folds to half pi", math.Pi, math.Pi / 2},
		{"negative past boundary", -2.0, -2.0 + math.Pi/2},
		{"beyond full turn", 7, 7 - 2*math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapHalfPi(tt.angle); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("wrapHalfPi(%v) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}
}

// --- LineLengths tests ---

func TestLineLengths_ZeroDispersion(t *testing.T) {
	lengths := LineLengths(5, 7.5, 0, testRand(1))
	if len(lengths) != 5 {
		t.Fatalf("expected 5 lengths, got %d", len(lengths))
	}
	for i, l := range lengths {
		if l != 7.5 {
			t.Errorf("length %d = %v, want 7.5", i, l)
		}
	}
}

func TestLineLengths_NonNegative(t *testing.T) {
	lengths := LineLengths(1000, 2, 10, testRand(2))
	for i, l := range lengths {
		if l < 0 {
			t.Errorf("length %d = %v, want non-negative", i, l)
		}
	}
}

func TestLineLengths_NegativeMeanClipsToZero(t *testing.T) {
	lengths := LineLengths(4, -5, 0, testRand(3))
	for i, l := range lengths {
		if l != 0 {
			t.Errorf("length %d = %v, want 0", i, l)
		}
	}
}

// --- ClusterCenters tests ---

func TestClusterCenters_HandComputedWithFixedSampler(t *testing.T) {
	sample := func(numClusters, numDims int, rng *rand.Rand) *mat.Dense {
		raw := mat.NewDense(numClusters, numDims, nil)
		for i := 0; i < numClusters; i++ {
			for j := 0; j < numDims; j++ {
				raw.Set(i, j, 0.5)
			}
		}
		return raw
	}
	centers, err := ClusterCenters(2, []float64{10, 20}, []float64{1, 2}, sample, testRand(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// offset + numClusters*separation*0.5: (1+10, 2+20) for every row.
	for i := 0; i < 2; i++ {
		if got := centers.At(i, 0); !almostEqual(got, 11, floatTol) {
			t.Errorf("center[%d][0] = %v, want 11", i, got)
		}
		if got := centers.At(i, 1); !almostEqual(got, 22, floatTol) {
			t.Errorf("center[%d][1] = %v, want 22", i, got)
		}
	}
}

func TestClusterCenters_Dims(t *testing.T) {
	centers, err := ClusterCenters(7, []float64{1, 1, 1}, []float64{0, 0, 0}, nil, testRand(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r, c := centers.Dims(); r != 7 || c != 3 {
		t.Errorf("expected 7×3 centers, got %d×%d", r, c)
	}
}

func TestClusterCenters_DefaultSamplerBounds(t *testing.T) {
	// With the uniform sampler on [-0.5, 0.5), coordinate j stays within
	// offset[j] ± numClusters*separation[j]/2.
	centers, err := ClusterCenters(3, []float64{2, 2}, []float64{0, 0}, nil, testRand(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if got := math.Abs(centers.At(i, j)); got > 3+floatTol {
				t.Errorf("center[%d][%d] = %v outside ±3", i, j, centers.At(i, j))
			}
		}
	}
}

func TestClusterCenters_ZeroSeparation(t *testing.T) {
	centers, err := ClusterCenters(4, []float64{0, 0}, []float64{3, -1}, nil, testRand(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if centers.At(i, 0) != 3 || centers.At(i, 1) != -1 {
			t.Errorf("center %d = (%v, %v), want (3, -1)",
				i, centers.At(i, 0), centers.At(i, 1))
		}
	}
}

func TestClusterCenters_SeparationOffsetMismatch_Error(t *testing.T) {
	if _, err := ClusterCenters(2, []float64{1, 1}, []float64{0, 0, 0}, nil, testRand(1)); err == nil {
		t.Error("expected error for mismatched separation and offset")
	}
}

func TestClusterCenters_ZeroClusters_Error(t *testing.T) {
	if _, err := ClusterCenters(0, []float64{1}, []float64{0}, nil, testRand(1)); err == nil {
		t.Error("expected error for zero clusters")
	}
}

func TestClusterCenters_EmptySeparation_Error(t *testing.T) {
	if _, err := ClusterCenters(2, nil, nil, nil, testRand(1)); err == nil {
		t.Error("expected error for empty separation")
	}
}

func TestClusterCenters_WrongSampleShape_StrategyError(t *testing.T) {
	sample := func(numClusters, numDims int, rng *rand.Rand) *mat.Dense {
		return mat.NewDense(1, 1, nil)
	}
	_, err := ClusterCenters(3, []float64{1, 1}, []float64{0, 0}, sample, testRand(1))
	var se *StrategyError
	if !errors.As(err, &se) {
		t.Fatalf("expected StrategyError, got %v", err)
	}
}

func TestClusterCenters_NilSample_StrategyError(t *testing.T) {
	sample := func(numClusters, numDims int, rng *rand.Rand) *mat.Dense {
		return nil
	}
	_, err := ClusterCenters(3, []float64{1, 1}, []float64{0, 0}, sample, testRand(1))
	var se *StrategyError
	if !errors.As(err, &se) {
		t.Fatalf("expected StrategyError, got %v", err)
	}
}

// --- UniformCenterSample tests ---

func TestUniformCenterSample_Range(t *testing.T) {
	sample := UniformCenterSample(20, 3, testRand(5))
	r, c := sample.Dims()
	if r != 20 || c != 3 {
		t.Fatalf("expected 20×3 sample, got %d×%d", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := sample.At(i, j)
			if v < -0.5 || v >= 0.5 {
				t.Errorf("sample[%d][%d] = %v outside [-0.5, 0.5)", i, j, v)
			}
		}
	}
}
