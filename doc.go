// Package clugen generates multidimensional datasets of clusters supported
// by line segments.
//
// Each cluster lives along its own support line: a center, a direction
// obtained by rotating a main direction by a random angle, and a length. The
// cluster's points are projected onto that line following a configurable
// distribution and then displaced laterally, which produces elongated
// clusters whose ground truth (sizes, centers, directions, angles, lengths)
// is returned alongside the points.
//
// Basic usage:
//
//	cfg := clugen.DefaultConfig()
//	cfg.NumDims = 2
//	cfg.NumClusters = 4
//	cfg.NumPoints = 500
//	cfg.Direction = []float64{1, 1}
//	cfg.AngleDisp = math.Pi / 16
//	cfg.ClusterSep = []float64{10, 10}
//	cfg.LineLength = 10
//	cfg.LineLengthDisp = 1.5
//	cfg.LateralDisp = 1
//	cfg.Rand = rand.New(rand.NewPCG(123, 123))
//	result, err := clugen.Generate(cfg)
//	// result.Points row i is a point, result.Clusters[i] its 1-based cluster
//	// result.Centers, result.Directions, ... hold the per-cluster geometry
//
// # Strategy functions
//
// Every stage of the pipeline can be replaced: cluster sizing, center
// placement, line lengths, angular deviations, the projection distribution
// and the final point placement. The built-in projection distributions and
// placement strategies are selected by name:
//
//	cfg.Projection = clugen.ProjectionUnif // uniform along the line
//	cfg.Placement = clugen.PlacementN      // rounder, full-dimensional spread
//
// while the Fn fields (SizesFn, CentersFn, LengthsFn, AnglesFn,
// ProjectionFn, PlacementFn) accept arbitrary implementations. The exported
// building blocks (ClusterSizes, ClusterCenters, LineLengths, AngleDeltas,
// NormProjections, PlacePointsN1Template, ...) make it easy to wrap or
// perturb the defaults instead of rewriting them.
//
// # Merging datasets
//
// Merge concatenates the fields of several generated or external datasets
// while renumbering cluster labels into one contiguous range, which is
// useful for building multi-source benchmarks:
//
//	merged, err := clugen.Merge(nil, result1, result2)
//	// merged["points"], merged["clusters"] cover both inputs
//
// # Randomness and reproducibility
//
// All draws flow through a single *rand.Rand per call, in a fixed pipeline
// order, so a seeded generator reproduces a dataset exactly. A nil generator
// uses fresh auto-seeded randomness. Generators must not be shared between
// concurrent calls; GenerateBatch enforces this when running several
// generations in parallel.
package clugen
