// Package sample builds a small, diverse subset of a dataset so an external
// planner can reason about data shape without seeing every row. The output is
// a best-effort heuristic sample ("diverse enough to reason about structure"),
// not a statistically rigorous one.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// SAMPLE SELECTOR
// ============================================================================
// The sample is a row-index set built by the union of independent strategies,
// truncated to the cap:
//   1. Quantile sampling        — rows nearest the 0/25/50/75/100th percentiles
//   2. Categorical diversity    — one row per frequent category value
//   3. Temporal coverage        — earliest / median / latest rows
//   4. Edge cases               — most-missing and fewest-missing rows
//   5. Outliers                 — rows outside 1.5×IQR, up to 2 per column
//   6. Systematic fill          — evenly-spaced untouched rows up to the cap
// Small datasets short-circuit: at or below the minimum everything is
// returned, at or below ~2× the cap the first max_rows rows are returned.
// ============================================================================

const (
	// DefaultMaxRows caps the sample size.
	DefaultMaxRows = 20
	// MinRows is the floor below which the whole dataset is returned.
	MinRows = 10

	maxQuantileColumns    = 5
	maxCategoricalColumns = 3
	maxTemporalColumns    = 2
	maxOutlierColumns     = 3
	outliersPerColumn     = 2
	topCategoryValues     = 10
)

// Options tunes the selector.
type Options struct {
	MaxRows int   // 0 → DefaultMaxRows; values below MinRows are raised to MinRows
	Seed    int64 // fixed seed keeps repeated sampling deterministic
}

// Result is the selected subset plus a human-readable account of how it was built.
type Result struct {
	Sample      *dataset.Dataset
	Indices     []int
	Explanation string
}

// Select builds a diverse sample of at most opts.MaxRows rows. All columns
// are preserved and no row index appears twice.
func Select(ds *dataset.Dataset, opts Options) Result {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if maxRows < MinRows {
		maxRows = MinRows
	}

	total := ds.RowCount()
	if total <= MinRows {
		return Result{
			Sample:      ds.Clone(),
			Indices:     sequence(total),
			Explanation: fmt.Sprintf("Dataset has %d rows; returned all of them unchanged.", total),
		}
	}
	if total <= 2*maxRows {
		n := maxRows
		if n > total {
			n = total
		}
		idx := sequence(n)
		return Result{
			Sample:      subset(ds, idx),
			Indices:     idx,
			Explanation: fmt.Sprintf("Dataset has %d rows; returned the first %d as a representative head sample.", total, n),
		}
	}

	cols := classifyColumns(ds)
	picked := newIndexSet()
	var notes []string

	if n := pickQuantiles(ds, cols.numeric, picked); n > 0 {
		notes = append(notes, fmt.Sprintf("%d rows near numeric percentiles", n))
	}
	if n := pickCategories(ds, cols.categorical, picked); n > 0 {
		notes = append(notes, fmt.Sprintf("%d rows covering frequent category values", n))
	}
	if n := pickTemporal(ds, cols.temporal, picked); n > 0 {
		notes = append(notes, fmt.Sprintf("%d rows at temporal extremes", n))
	}
	if n := pickEdgeCases(ds, picked); n > 0 {
		notes = append(notes, fmt.Sprintf("%d rows with extreme missing-value counts", n))
	}
	if n := pickOutliers(ds, cols.numeric, picked); n > 0 {
		notes = append(notes, fmt.Sprintf("%d outlier rows (1.5×IQR)", n))
	}

	indices := picked.ordered()
	if len(indices) > maxRows {
		indices = indices[:maxRows]
	} else if len(indices) < maxRows {
		fill := systematicFill(total, picked, maxRows-len(indices), opts.Seed)
		if len(fill) > 0 {
			notes = append(notes, fmt.Sprintf("%d evenly-spaced rows to fill remaining slots", len(fill)))
		}
		indices = append(indices, fill...)
		sort.Ints(indices)
	}

	explanation := fmt.Sprintf("Selected %d of %d rows: %s.", len(indices), total, strings.Join(notes, ", "))
	return Result{
		Sample:      subset(ds, indices),
		Indices:     indices,
		Explanation: explanation,
	}
}

// ============================================================================
// COLUMN CLASSIFICATION
// ============================================================================

type columnKinds struct {
	numeric     []string
	categorical []string
	temporal    []string
}

// classifyColumns buckets columns by the dominant kind of their non-null
// values. A column needs 80%+ agreement to be treated as numeric or temporal;
// everything else is categorical.
func classifyColumns(ds *dataset.Dataset) columnKinds {
	var kinds columnKinds
	for _, name := range ds.Columns() {
		col, _ := ds.Column(name)
		numCount, timeCount, nonNull := 0, 0, 0
		for _, v := range col {
			if v.IsNull() {
				continue
			}
			nonNull++
			if _, ok := v.Float(); ok {
				numCount++
			}
			if _, ok := clean.ValueTime(v); ok {
				timeCount++
			}
		}
		if nonNull == 0 {
			continue
		}
		threshold := int(math.Ceil(float64(nonNull) * 0.8))
		switch {
		case timeCount >= threshold && timeCount >= numCount:
			kinds.temporal = append(kinds.temporal, name)
		case numCount >= threshold:
			kinds.numeric = append(kinds.numeric, name)
		default:
			kinds.categorical = append(kinds.categorical, name)
		}
	}
	return kinds
}

// ============================================================================
// STRATEGIES
// ============================================================================

var quantilePoints = []float64{0, 0.25, 0.5, 0.75, 1.0}

// pickQuantiles selects, per numeric column, the row whose value is nearest
// each percentile point.
func pickQuantiles(ds *dataset.Dataset, numeric []string, picked *indexSet) int {
	added := 0
	for i, name := range numeric {
		if i >= maxQuantileColumns {
			break
		}
		vals, rows := numericColumn(ds, name)
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		for _, q := range quantilePoints {
			target := percentile(sorted, q)
			best, bestDist := -1, math.MaxFloat64
			for j, v := range vals {
				if d := math.Abs(v - target); d < bestDist {
					best, bestDist = rows[j], d
				}
			}
			if best >= 0 && picked.add(best) {
				added++
			}
		}
	}
	return added
}

// pickCategories selects one representative row for each of the most frequent
// values of the first few categorical columns.
func pickCategories(ds *dataset.Dataset, categorical []string, picked *indexSet) int {
	added := 0
	for i, name := range categorical {
		if i >= maxCategoricalColumns {
			break
		}
		col, _ := ds.Column(name)
		counts := map[string]int{}
		firstRow := map[string]int{}
		for row, v := range col {
			if v.IsNull() {
				continue
			}
			key := v.String()
			counts[key]++
			if _, seen := firstRow[key]; !seen {
				firstRow[key] = row
			}
		}
		for _, key := range topKeys(counts, topCategoryValues) {
			if picked.add(firstRow[key]) {
				added++
			}
		}
	}
	return added
}

// pickTemporal selects the earliest, median, and latest rows of datetime columns.
func pickTemporal(ds *dataset.Dataset, temporal []string, picked *indexSet) int {
	added := 0
	for i, name := range temporal {
		if i >= maxTemporalColumns {
			break
		}
		col, _ := ds.Column(name)
		type stamped struct {
			row  int
			unix int64
		}
		var stamps []stamped
		for row, v := range col {
			if t, ok := clean.ValueTime(v); ok {
				stamps = append(stamps, stamped{row, t.Unix()})
			}
		}
		if len(stamps) == 0 {
			continue
		}
		sort.Slice(stamps, func(a, b int) bool { return stamps[a].unix < stamps[b].unix })
		for _, s := range []stamped{stamps[0], stamps[len(stamps)/2], stamps[len(stamps)-1]} {
			if picked.add(s.row) {
				added++
			}
		}
	}
	return added
}

// pickEdgeCases selects the row with the most missing values and the row
// with the fewest.
func pickEdgeCases(ds *dataset.Dataset, picked *indexSet) int {
	mostRow, most := -1, -1
	leastRow, least := -1, math.MaxInt32
	for i := 0; i < ds.RowCount(); i++ {
		row, err := ds.Row(i)
		if err != nil {
			continue
		}
		missing := 0
		for _, v := range row {
			if v.IsNull() {
				missing++
			}
		}
		if missing > most {
			most, mostRow = missing, i
		}
		if missing < least {
			least, leastRow = missing, i
		}
	}
	added := 0
	for _, row := range []int{mostRow, leastRow} {
		if row >= 0 && picked.add(row) {
			added++
		}
	}
	return added
}

// pickOutliers selects rows whose numeric values fall outside 1.5×IQR from
// Q1/Q3, capped per column.
func pickOutliers(ds *dataset.Dataset, numeric []string, picked *indexSet) int {
	added := 0
	for i, name := range numeric {
		if i >= maxOutlierColumns {
			break
		}
		vals, rows := numericColumn(ds, name)
		if len(vals) < 4 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		q1 := percentile(sorted, 0.25)
		q3 := percentile(sorted, 0.75)
		iqr := q3 - q1
		lo, hi := q1-1.5*iqr, q3+1.5*iqr

		taken := 0
		for j, v := range vals {
			if taken >= outliersPerColumn {
				break
			}
			if v < lo || v > hi {
				if picked.add(rows[j]) {
					added++
					taken++
				}
			}
		}
	}
	return added
}

// systematicFill returns evenly-spaced untouched row indices. The seed only
// shifts the starting offset, so repeated runs with the same seed are
// identical.
func systematicFill(total int, picked *indexSet, want int, seed int64) []int {
	var untouched []int
	for i := 0; i < total; i++ {
		if !picked.has(i) {
			untouched = append(untouched, i)
		}
	}
	if want <= 0 || len(untouched) == 0 {
		return nil
	}
	if len(untouched) <= want {
		for _, i := range untouched {
			picked.add(i)
		}
		return untouched
	}
	step := float64(len(untouched)) / float64(want)
	offset := 0
	if step > 1 {
		offset = rand.New(rand.NewSource(seed)).Intn(int(step))
	}
	out := make([]int, 0, want)
	for k := 0; k < want; k++ {
		idx := untouched[(offset+int(float64(k)*step))%len(untouched)]
		if picked.add(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// ============================================================================
// HELPERS
// ============================================================================

// indexSet tracks picked rows while preserving first-pick order.
type indexSet struct {
	seen  map[int]bool
	order []int
}

func newIndexSet() *indexSet { return &indexSet{seen: map[int]bool{}} }

func (s *indexSet) add(i int) bool {
	if s.seen[i] {
		return false
	}
	s.seen[i] = true
	s.order = append(s.order, i)
	return true
}

func (s *indexSet) has(i int) bool { return s.seen[i] }

func (s *indexSet) ordered() []int {
	out := append([]int(nil), s.order...)
	sort.Ints(out)
	return out
}

// numericColumn returns the coercible values of a column and their row indices.
func numericColumn(ds *dataset.Dataset, name string) ([]float64, []int) {
	col, err := ds.Column(name)
	if err != nil {
		return nil, nil
	}
	var vals []float64
	var rows []int
	for i, v := range col {
		if f, ok := v.Float(); ok {
			vals = append(vals, f)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// percentile interpolates linearly over a sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// topKeys returns the most frequent keys in descending count order, ties
// broken alphabetically for determinism.
func topKeys(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if counts[keys[a]] != counts[keys[b]] {
			return counts[keys[a]] > counts[keys[b]]
		}
		return keys[a] < keys[b]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// subset builds a new dataset holding only the given row indices.
func subset(ds *dataset.Dataset, indices []int) *dataset.Dataset {
	out := ds.Clone()
	out.RetainRows(indices)
	return out
}
