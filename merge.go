package clugen

import (
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// FieldSource exposes named data fields for merging. Field returns the value
// of the named field and whether the source carries it; supported value
// types are *mat.Dense, []float64 and []int. Result and MapDataset both
// implement FieldSource.
type FieldSource interface {
	Field(name string) (any, bool)
}

// MapDataset is a FieldSource backed by a plain map, used both for handing
// external data to Merge and as Merge's output shape. Convert a merged
// MapDataset back to a Result with AsResult.
type MapDataset map[string]any

// Field implements FieldSource.
func (m MapDataset) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// MergeOptions adjusts which fields Merge combines and how cluster labels
// are treated. The zero value (or a nil *MergeOptions) merges "points" and
// "clusters", relabeling the latter.
type MergeOptions struct {
	// Fields lists the fields to merge from every dataset. When nil it
	// defaults to "points" plus the cluster field, or just "points" when
	// NoClusterField is set.
	Fields []string

	// ClusterField names the field holding the integer cluster labels,
	// "clusters" when empty. The field is merged even when absent from
	// Fields, and its labels are renumbered so that clusters from
	// different datasets never collide.
	ClusterField string

	// NoClusterField disables cluster label treatment entirely: the
	// requested fields are concatenated verbatim and the output gains a
	// synthesized "clusters" field labeling each row with the 1-based
	// index of its source dataset.
	NoClusterField bool
}

// fieldKind partitions supported field values for cross-dataset type checks.
type fieldKind int

const (
	kindUnknown fieldKind = iota
	kindDense
	kindFloats
	kindInts
)

func (k fieldKind) String() string {
	switch k {
	case kindDense:
		return "a matrix"
	case kindFloats:
		return "a real vector"
	case kindInts:
		return "an integer vector"
	}
	return "unsupported"
}

func kindOf(v any) (fieldKind, bool) {
	switch v.(type) {
	case *mat.Dense:
		return kindDense, true
	case []float64:
		return kindFloats, true
	case []int:
		return kindInts, true
	case nil:
		return kindDense, true // empty datasets report nil matrices
	}
	return kindUnknown, false
}

// fieldRows returns the first-dimension length of a field value. A nil
// matrix counts as zero rows.
func fieldRows(v any) int {
	switch x := v.(type) {
	case *mat.Dense:
		if x == nil {
			return 0
		}
		r, _ := x.Dims()
		return r
	case []float64:
		return len(x)
	case []int:
		return len(x)
	}
	return 0
}

// mergeInput holds the resolved fields of one dataset plus its label
// renumbering, computed during validation.
type mergeInput struct {
	values    map[string]any
	numPoints int
	ranks     map[int]int // label value to dense 1-based rank
}

// Merge combines the requested fields of several datasets into one
// MapDataset, concatenating each field along its first dimension in argument
// order. Fields whose first dimension matches the dataset's point count are
// point-indexed; any other first dimension is taken as that dataset's
// cluster count, and all cluster-indexed fields of a dataset must agree on
// it. Matrix fields must agree on their column count across datasets.
//
// Unless NoClusterField is set, the cluster field of each dataset defines
// its point count and must hold []int labels. Labels are renumbered into a
// single contiguous range: each dataset's distinct labels map, in increasing
// order, onto the next free integers, so merging datasets with 3 and 2
// distinct labels yields labels 1 through 5. Datasets that label no points
// claim no labels.
//
// Generate results merge directly; external data can be wrapped in a
// MapDataset.
func Merge(opts *MergeOptions, datasets ...FieldSource) (MapDataset, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("clugen: Merge requires at least one dataset")
	}
	var o MergeOptions
	if opts != nil {
		o = *opts
	}
	clusterField := o.ClusterField
	if clusterField == "" {
		clusterField = "clusters"
	}
	fields := slices.Clone(o.Fields)
	if fields == nil {
		fields = []string{"points"}
	}
	if o.NoClusterField {
		if slices.Contains(fields, "clusters") {
			return nil, fmt.Errorf("clugen: field \"clusters\" is reserved for source labels when NoClusterField is set")
		}
	} else if !slices.Contains(fields, clusterField) {
		fields = append(fields, clusterField)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("clugen: no fields to merge")
	}
	if dup := firstDuplicate(fields); dup != "" {
		return nil, fmt.Errorf("clugen: field %q requested more than once", dup)
	}

	inputs := make([]mergeInput, len(datasets))
	kinds := make(map[string]fieldKind, len(fields))
	cols := make(map[string]int, len(fields))
	totals := make(map[string]int, len(fields))

	for di, ds := range datasets {
		values := make(map[string]any, len(fields))
		for _, f := range fields {
			v, ok := ds.Field(f)
			if !ok {
				return nil, fmt.Errorf("clugen: dataset %d has no field %q", di, f)
			}
			k, supported := kindOf(v)
			if !supported {
				return nil, fmt.Errorf("clugen: dataset %d field %q has unsupported type %T", di, f, v)
			}
			if prev, seen := kinds[f]; !seen {
				kinds[f] = k
			} else if prev != k {
				return nil, fmt.Errorf("clugen: dataset %d field %q is %v but earlier datasets hold %v", di, f, k, prev)
			}
			if m, isDense := v.(*mat.Dense); isDense && m != nil {
				_, c := m.Dims()
				if prev, seen := cols[f]; !seen {
					cols[f] = c
				} else if prev != c {
					return nil, fmt.Errorf("clugen: dataset %d field %q has %d columns but earlier datasets have %d", di, f, c, prev)
				}
			}
			values[f] = v
			totals[f] += fieldRows(v)
		}

		numPoints := fieldRows(values[fields[0]])
		if !o.NoClusterField {
			raw := values[clusterField]
			labels, ok := raw.([]int)
			if !ok {
				return nil, fmt.Errorf("clugen: dataset %d cluster field %q must hold integer labels, got %T", di, clusterField, raw)
			}
			numPoints = len(labels)
			if r := fieldRows(values[fields[0]]); r != numPoints {
				return nil, fmt.Errorf("clugen: dataset %d field %q has %d rows but its labels cover %d points", di, fields[0], r, numPoints)
			}
			inputs[di].ranks = labelRanks(labels)
		}

		numClusters := -1
		for _, f := range fields {
			r := fieldRows(values[f])
			if r == numPoints {
				continue
			}
			if numClusters < 0 {
				numClusters = r
				continue
			}
			if r != numClusters {
				return nil, fmt.Errorf("clugen: dataset %d field %q has %d rows; other fields imply %d points or %d clusters",
					di, f, r, numPoints, numClusters)
			}
		}

		inputs[di].values = values
		inputs[di].numPoints = numPoints
	}

	out := make(MapDataset, len(fields)+1)
	for _, f := range fields {
		if f == clusterField && !o.NoClusterField {
			out[f] = mergeLabels(inputs, clusterField)
			continue
		}
		switch kinds[f] {
		case kindDense:
			out[f] = concatDense(inputs, f, totals[f], cols[f])
		case kindFloats:
			out[f] = concatFloats(inputs, f, totals[f])
		case kindInts:
			out[f] = concatInts(inputs, f, totals[f])
		}
	}
	if o.NoClusterField {
		out["clusters"] = sourceLabels(inputs)
	}
	return out, nil
}

func firstDuplicate(fields []string) string {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f] {
			return f
		}
		seen[f] = true
	}
	return ""
}

// labelRanks maps each distinct label to its 1-based rank in increasing
// label order.
func labelRanks(labels []int) map[int]int {
	distinct := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	ranks := make(map[int]int, len(distinct))
	for i, l := range slices.Sorted(maps.Keys(distinct)) {
		ranks[l] = i + 1
	}
	return ranks
}

// mergeLabels renumbers and concatenates the label fields: dataset labels
// are replaced by their per-dataset ranks, shifted past all labels claimed
// by earlier datasets.
func mergeLabels(inputs []mergeInput, clusterField string) []int {
	total := 0
	for i := range inputs {
		total += inputs[i].numPoints
	}
	merged := make([]int, 0, total)
	offset := 0
	for i := range inputs {
		labels := inputs[i].values[clusterField].([]int)
		for _, l := range labels {
			merged = append(merged, offset+inputs[i].ranks[l])
		}
		offset += len(inputs[i].ranks)
	}
	return merged
}

// sourceLabels labels every row with the 1-based index of the dataset it
// came from.
func sourceLabels(inputs []mergeInput) []int {
	total := 0
	for i := range inputs {
		total += inputs[i].numPoints
	}
	labels := make([]int, 0, total)
	for i := range inputs {
		for j := 0; j < inputs[i].numPoints; j++ {
			labels = append(labels, i+1)
		}
	}
	return labels
}

func concatDense(inputs []mergeInput, field string, total, cols int) *mat.Dense {
	if total == 0 {
		return nil
	}
	merged := mat.NewDense(total, cols, nil)
	row := 0
	for i := range inputs {
		m, _ := inputs[i].values[field].(*mat.Dense)
		if m == nil {
			continue
		}
		r, _ := m.Dims()
		for j := 0; j < r; j++ {
			merged.SetRow(row, m.RawRowView(j))
			row++
		}
	}
	return merged
}

func concatFloats(inputs []mergeInput, field string, total int) []float64 {
	merged := make([]float64, 0, total)
	for i := range inputs {
		merged = append(merged, inputs[i].values[field].([]float64)...)
	}
	return merged
}

func concatInts(inputs []mergeInput, field string, total int) []int {
	merged := make([]int, 0, total)
	for i := range inputs {
		merged = append(merged, inputs[i].values[field].([]int)...)
	}
	return merged
}

// AsResult converts a merged MapDataset back into a Result. Every field
// present must correspond to a Result field by name and type; fields absent
// from the dataset are left at their zero values.
func AsResult(data MapDataset) (*Result, error) {
	r := &Result{}
	for _, name := range slices.Sorted(maps.Keys(data)) {
		v := data[name]
		var err error
		switch name {
		case "points":
			r.Points, err = fieldAsDense(name, v)
		case "projections":
			r.Projections, err = fieldAsDense(name, v)
		case "centers":
			r.Centers, err = fieldAsDense(name, v)
		case "directions":
			r.Directions, err = fieldAsDense(name, v)
		case "clusters":
			r.Clusters, err = fieldAsInts(name, v)
		case "sizes":
			r.Sizes, err = fieldAsInts(name, v)
		case "angles":
			r.Angles, err = fieldAsFloats(name, v)
		case "lengths":
			r.Lengths, err = fieldAsFloats(name, v)
		default:
			return nil, fmt.Errorf("clugen: field %q does not correspond to a Result field", name)
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func fieldAsDense(name string, v any) (*mat.Dense, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(*mat.Dense)
	if !ok {
		return nil, fmt.Errorf("clugen: field %q must be a matrix, got %T", name, v)
	}
	return m, nil
}

func fieldAsInts(name string, v any) ([]int, error) {
	s, ok := v.([]int)
	if !ok {
		return nil, fmt.Errorf("clugen: field %q must be an integer vector, got %T", name, v)
	}
	return s, nil
}

func fieldAsFloats(name string, v any) ([]float64, error) {
	s, ok := v.([]float64)
	if !ok {
		return nil, fmt.Errorf("clugen: field %q must be a real vector, got %T", name, v)
	}
	return s, nil
}
