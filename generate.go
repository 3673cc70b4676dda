package clugen

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// directionNormTol is the smallest magnitude a configured direction vector
// may have. Anything below is rejected as numerically unusable.
const directionNormTol = 1e-8

// SizesStrategy determines how many points each cluster receives. It returns
// numClusters non-negative counts summing to numPoints. The default wraps
// ClusterSizes.
type SizesStrategy func(numClusters, numPoints int, allowEmpty bool, rng *rand.Rand) ([]int, error)

// CentersStrategy places cluster centers. It returns a numClusters×numDims
// matrix, where numDims is the length of the separation and offset vectors.
// The default wraps ClusterCenters.
type CentersStrategy func(numClusters int, separation, offset []float64, rng *rand.Rand) (*mat.Dense, error)

// LengthsStrategy determines the length of each cluster's support line. It
// returns numClusters non-negative lengths. The default is LineLengths.
type LengthsStrategy func(numClusters int, length, lengthDisp float64, rng *rand.Rand) []float64

// AnglesStrategy determines the angular deviation of each cluster's line
// from the main direction. It returns numClusters angles in radians. The
// default is AngleDeltas.
type AnglesStrategy func(numClusters int, angleDisp float64, rng *rand.Rand) []float64

// StrategyError reports a strategy function whose return value broke its
// contract, for example a sizes strategy returning the wrong number of
// clusters or counts that do not sum to the requested total. Retrieve it
// with errors.As to learn which strategy slot misbehaved.
type StrategyError struct {
	Strategy string // which strategy slot produced the value
	Reason   string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("clugen: %s strategy: %s", e.Strategy, e.Reason)
}

// Config holds the parameters for Generate. Start from DefaultConfig and set
// at least NumDims, NumClusters, NumPoints, Direction (or Directions),
// ClusterSep and LineLength; the remaining fields refine the shape of the
// output or swap individual pipeline stages for custom strategies.
type Config struct {
	// NumDims is the dimensionality of the generated points. Must be at
	// least 1.
	NumDims int

	// NumClusters is the number of clusters to generate. Must be at
	// least 1.
	NumClusters int

	// NumPoints is the total number of points, distributed between the
	// clusters by the sizes strategy. Must be non-negative, and at least
	// NumClusters unless AllowEmpty is set.
	NumPoints int

	// Direction is the main direction all cluster lines deviate from. It
	// must have NumDims components and nonzero magnitude; it does not
	// need to be normalized. Exactly one of Direction and Directions must
	// be set.
	Direction []float64

	// Directions optionally gives each cluster its own main direction as
	// a NumClusters×NumDims matrix, overriding Direction.
	Directions *mat.Dense

	// AngleDisp is the standard deviation, in radians, of each cluster
	// line's angular deviation from its main direction. Must be
	// non-negative.
	AngleDisp float64

	// ClusterSep is the average separation of cluster centers along each
	// dimension. Must have NumDims components.
	ClusterSep []float64

	// LineLength is the average length of the cluster support lines.
	LineLength float64

	// LineLengthDisp is the standard deviation of the support line
	// lengths. Must be non-negative.
	LineLengthDisp float64

	// LateralDisp is the standard deviation of the lateral displacement
	// of points away from their support line. Must be non-negative.
	LateralDisp float64

	// AllowEmpty permits clusters with no points. When false, every
	// cluster receives at least one point and NumPoints must be at least
	// NumClusters.
	AllowEmpty bool

	// ClusterOffset shifts all cluster centers by a constant vector. It
	// must have NumDims components; nil means no shift.
	ClusterOffset []float64

	// Projection selects the built-in distribution of point projections
	// along the support lines. Ignored when ProjectionFn is set.
	Projection ProjectionDist

	// Placement selects the built-in strategy for displacing points away
	// from their projections. Ignored when PlacementFn is set.
	Placement PlacementStrategy

	// SizesFn replaces the cluster sizing stage.
	SizesFn SizesStrategy

	// CentersFn replaces the center placement stage.
	CentersFn CentersStrategy

	// LengthsFn replaces the line length stage.
	LengthsFn LengthsStrategy

	// AnglesFn replaces the angular deviation stage.
	AnglesFn AnglesStrategy

	// ProjectionFn replaces the projection distribution, overriding
	// Projection.
	ProjectionFn ProjectionSampler

	// PlacementFn replaces the point placement strategy, overriding
	// Placement.
	PlacementFn PointPlacer

	// Rand is the source of all random draws. A nil value uses a freshly
	// seeded generator; supply rand.New(rand.NewPCG(seed, seed)) for
	// reproducible output. Generators must not be shared between
	// concurrent Generate calls.
	Rand *rand.Rand
}

// DefaultConfig returns a Config with the built-in strategies selected:
// normal projections and "n-1" point placement. The geometry fields start at
// their zero values and must be filled in before calling Generate.
func DefaultConfig() Config {
	return Config{
		Projection: ProjectionNorm,
		Placement:  PlacementN1,
	}
}

// Result holds the output of Generate: the points themselves plus the
// per-cluster geometry they were built from, so downstream code can inspect
// or re-derive the layout.
type Result struct {
	// Points holds one generated point per row, NumPoints×NumDims. It is
	// nil when no points were requested.
	Points *mat.Dense

	// Clusters assigns each point the 1-based index of its cluster;
	// Clusters[i] labels row i of Points.
	Clusters []int

	// Projections holds the projection of each point on its cluster's
	// support line, row-aligned with Points. It is nil when no points
	// were requested.
	Projections *mat.Dense

	// Sizes is the number of points in each cluster.
	Sizes []int

	// Centers holds one cluster center per row, NumClusters×NumDims.
	Centers *mat.Dense

	// Directions holds the unit direction of each cluster's support
	// line, one per row.
	Directions *mat.Dense

	// Angles is the angular deviation of each cluster line from its main
	// direction, in [-π/2, π/2] radians.
	Angles []float64

	// Lengths is the length of each cluster's support line.
	Lengths []float64
}

// Field returns the value of the named field and whether the name is known.
// It makes Result a FieldSource for Merge; the recognized names are
// "points", "clusters", "projections", "sizes", "centers", "directions",
// "angles" and "lengths".
func (r *Result) Field(name string) (any, bool) {
	switch name {
	case "points":
		return r.Points, true
	case "clusters":
		return r.Clusters, true
	case "projections":
		return r.Projections, true
	case "sizes":
		return r.Sizes, true
	case "centers":
		return r.Centers, true
	case "directions":
		return r.Directions, true
	case "angles":
		return r.Angles, true
	case "lengths":
		return r.Lengths, true
	default:
		return nil, false
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Projection == "" {
		cfg.Projection = ProjectionNorm
	}
	if cfg.Placement == "" {
		cfg.Placement = PlacementN1
	}
	if cfg.ClusterOffset == nil && cfg.NumDims >= 1 {
		cfg.ClusterOffset = make([]float64, cfg.NumDims)
	}
	cfg.Rand = ensureRand(cfg.Rand)
}

func validateConfig(cfg *Config) error {
	if cfg.NumDims < 1 {
		return fmt.Errorf("clugen: NumDims must be at least 1, got %d", cfg.NumDims)
	}
	if cfg.NumClusters < 1 {
		return fmt.Errorf("clugen: NumClusters must be at least 1, got %d", cfg.NumClusters)
	}
	if cfg.NumPoints < 0 {
		return fmt.Errorf("clugen: NumPoints must be non-negative, got %d", cfg.NumPoints)
	}
	if !cfg.AllowEmpty && cfg.NumPoints < cfg.NumClusters {
		return fmt.Errorf("clugen: %d points cannot fill %d clusters; reduce NumClusters or set AllowEmpty",
			cfg.NumPoints, cfg.NumClusters)
	}

	switch {
	case cfg.Direction == nil && cfg.Directions == nil:
		return fmt.Errorf("clugen: either Direction or Directions must be set")
	case cfg.Direction != nil && cfg.Directions != nil:
		return fmt.Errorf("clugen: Direction and Directions are mutually exclusive")
	case cfg.Direction != nil:
		if len(cfg.Direction) != cfg.NumDims {
			return fmt.Errorf("clugen: Direction has %d components, want NumDims = %d", len(cfg.Direction), cfg.NumDims)
		}
		if floats.Norm(cfg.Direction, 2) < directionNormTol {
			return fmt.Errorf("clugen: Direction has near-zero magnitude")
		}
	default:
		r, c := cfg.Directions.Dims()
		if r != cfg.NumClusters || c != cfg.NumDims {
			return fmt.Errorf("clugen: Directions is %d×%d, want NumClusters×NumDims = %d×%d",
				r, c, cfg.NumClusters, cfg.NumDims)
		}
		for i := 0; i < r; i++ {
			if floats.Norm(cfg.Directions.RawRowView(i), 2) < directionNormTol {
				return fmt.Errorf("clugen: Directions row %d has near-zero magnitude", i)
			}
		}
	}

	if len(cfg.ClusterSep) != cfg.NumDims {
		return fmt.Errorf("clugen: ClusterSep has %d components, want NumDims = %d", len(cfg.ClusterSep), cfg.NumDims)
	}
	if len(cfg.ClusterOffset) != cfg.NumDims {
		return fmt.Errorf("clugen: ClusterOffset has %d components, want NumDims = %d", len(cfg.ClusterOffset), cfg.NumDims)
	}
	if cfg.AngleDisp < 0 {
		return fmt.Errorf("clugen: AngleDisp must be non-negative, got %v", cfg.AngleDisp)
	}
	if cfg.LineLengthDisp < 0 {
		return fmt.Errorf("clugen: LineLengthDisp must be non-negative, got %v", cfg.LineLengthDisp)
	}
	if cfg.LateralDisp < 0 {
		return fmt.Errorf("clugen: LateralDisp must be non-negative, got %v", cfg.LateralDisp)
	}

	if cfg.ProjectionFn == nil && cfg.Projection != ProjectionNorm && cfg.Projection != ProjectionUnif {
		return fmt.Errorf("clugen: unknown projection distribution %q", cfg.Projection)
	}
	if cfg.PlacementFn == nil && cfg.Placement != PlacementN1 && cfg.Placement != PlacementN {
		return fmt.Errorf("clugen: unknown placement strategy %q", cfg.Placement)
	}
	return nil
}

// strategies holds the six pipeline stages after resolving names and
// overrides, so Generate dispatches through function values only.
type strategies struct {
	sizes      SizesStrategy
	centers    CentersStrategy
	lengths    LengthsStrategy
	angles     AnglesStrategy
	projection ProjectionSampler
	placement  PointPlacer
}

func resolveStrategies(cfg *Config) strategies {
	s := strategies{
		sizes: func(numClusters, numPoints int, allowEmpty bool, rng *rand.Rand) ([]int, error) {
			return ClusterSizes(numClusters, numPoints, allowEmpty, nil, rng)
		},
		centers: func(numClusters int, separation, offset []float64, rng *rand.Rand) (*mat.Dense, error) {
			return ClusterCenters(numClusters, separation, offset, nil, rng)
		},
		lengths:    LineLengths,
		angles:     AngleDeltas,
		projection: NormProjections,
		placement:  PlacePointsN1,
	}
	if cfg.Projection == ProjectionUnif {
		s.projection = UnifProjections
	}
	if cfg.Placement == PlacementN {
		s.placement = PlacePointsN
	}
	if cfg.SizesFn != nil {
		s.sizes = cfg.SizesFn
	}
	if cfg.CentersFn != nil {
		s.centers = cfg.CentersFn
	}
	if cfg.LengthsFn != nil {
		s.lengths = cfg.LengthsFn
	}
	if cfg.AnglesFn != nil {
		s.angles = cfg.AnglesFn
	}
	if cfg.ProjectionFn != nil {
		s.projection = cfg.ProjectionFn
	}
	if cfg.PlacementFn != nil {
		s.placement = cfg.PlacementFn
	}
	return s
}

// Generate builds a multidimensional dataset of clusters spread along line
// segments. The pipeline runs in a fixed order: cluster sizes, centers, line
// lengths, angular deviations, per-cluster directions, and finally the
// projections and points of each cluster in turn. Every stage draws from
// cfg.Rand, so two calls with identically seeded generators produce
// identical results.
func Generate(cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	strat := resolveStrategies(&cfg)
	rng := cfg.Rand

	numClusters := cfg.NumClusters
	numPoints := cfg.NumPoints
	numDims := cfg.NumDims

	sizes, err := strat.sizes(numClusters, numPoints, cfg.AllowEmpty, rng)
	if err != nil {
		return nil, err
	}
	if len(sizes) != numClusters {
		return nil, &StrategyError{
			Strategy: "cluster sizes",
			Reason:   fmt.Sprintf("returned %d sizes for %d clusters", len(sizes), numClusters),
		}
	}
	sum := 0
	for i, s := range sizes {
		if s < 0 {
			return nil, &StrategyError{
				Strategy: "cluster sizes",
				Reason:   fmt.Sprintf("cluster %d has negative size %d", i, s),
			}
		}
		sum += s
	}
	if sum != numPoints {
		return nil, &StrategyError{
			Strategy: "cluster sizes",
			Reason:   fmt.Sprintf("sizes sum to %d, want %d", sum, numPoints),
		}
	}

	centers, err := strat.centers(numClusters, cfg.ClusterSep, cfg.ClusterOffset, rng)
	if err != nil {
		return nil, err
	}
	if centers == nil {
		return nil, &StrategyError{Strategy: "cluster centers", Reason: "returned a nil matrix"}
	}
	if r, c := centers.Dims(); r != numClusters || c != numDims {
		return nil, &StrategyError{
			Strategy: "cluster centers",
			Reason:   fmt.Sprintf("returned a %d×%d matrix, want %d×%d", r, c, numClusters, numDims),
		}
	}

	lengths := strat.lengths(numClusters, cfg.LineLength, cfg.LineLengthDisp, rng)
	if len(lengths) != numClusters {
		return nil, &StrategyError{
			Strategy: "line lengths",
			Reason:   fmt.Sprintf("returned %d lengths for %d clusters", len(lengths), numClusters),
		}
	}
	for i, l := range lengths {
		if !(l >= 0) {
			return nil, &StrategyError{
				Strategy: "line lengths",
				Reason:   fmt.Sprintf("cluster %d has length %v, want non-negative", i, l),
			}
		}
	}

	angles := strat.angles(numClusters, cfg.AngleDisp, rng)
	if len(angles) != numClusters {
		return nil, &StrategyError{
			Strategy: "angle deltas",
			Reason:   fmt.Sprintf("returned %d angles for %d clusters", len(angles), numClusters),
		}
	}

	directions := mat.NewDense(numClusters, numDims, nil)
	for i := 0; i < numClusters; i++ {
		main := cfg.Direction
		if cfg.Directions != nil {
			main = cfg.Directions.RawRowView(i)
		}
		dir, err := RandVectorAtAngle(main, angles[i], rng)
		if err != nil {
			return nil, err
		}
		directions.SetRow(i, dir)
	}

	var points, projections *mat.Dense
	if numPoints > 0 {
		points = mat.NewDense(numPoints, numDims, nil)
		projections = mat.NewDense(numPoints, numDims, nil)
	}
	clusters := make([]int, numPoints)

	row := 0
	for i := 0; i < numClusters; i++ {
		clusterPoints := sizes[i]
		if clusterPoints == 0 {
			continue
		}
		center := centers.RawRowView(i)
		direction := directions.RawRowView(i)

		distances := strat.projection(lengths[i], clusterPoints, rng)
		if len(distances) != clusterPoints {
			return nil, &StrategyError{
				Strategy: "projection distances",
				Reason:   fmt.Sprintf("returned %d distances for %d points in cluster %d", len(distances), clusterPoints, i),
			}
		}
		clusterProjs := PointsOnLine(center, direction, distances)

		placed, err := strat.placement(clusterProjs, cfg.LateralDisp, lengths[i], direction, center, rng)
		if err != nil {
			return nil, err
		}
		if placed == nil {
			return nil, &StrategyError{Strategy: "point placement", Reason: "returned a nil matrix"}
		}
		if r, c := placed.Dims(); r != clusterPoints || c != numDims {
			return nil, &StrategyError{
				Strategy: "point placement",
				Reason:   fmt.Sprintf("returned a %d×%d matrix for cluster %d, want %d×%d", r, c, i, clusterPoints, numDims),
			}
		}

		for j := 0; j < clusterPoints; j++ {
			points.SetRow(row+j, placed.RawRowView(j))
			projections.SetRow(row+j, clusterProjs.RawRowView(j))
			clusters[row+j] = i + 1
		}
		row += clusterPoints
	}

	return &Result{
		Points:      points,
		Clusters:    clusters,
		Projections: projections,
		Sizes:       sizes,
		Centers:     centers,
		Directions:  directions,
		Angles:      angles,
		Lengths:     lengths,
	}, nil
}
