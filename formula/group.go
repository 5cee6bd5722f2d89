package formula

import (
	"fmt"
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// GROUPING
// ============================================================================

// GroupByCategory aggregates valueColumn per distinct groupColumn value,
// returning a NEW dataset of [groupColumn, "<agg>_<valueColumn>"] in first-
// seen group order. Aggregations: count, sum, mean, max, min. Non-coercible
// cells are excluded from numeric aggregations, counted for "count".
func GroupByCategory(ds *dataset.Dataset, groupColumn, valueColumn, aggregation string) (*dataset.Dataset, error) {
	keys, err := ds.Column(groupColumn)
	if err != nil {
		return nil, err
	}
	values, err := ds.Column(valueColumn)
	if err != nil {
		return nil, err
	}

	aggregation = strings.ToLower(strings.TrimSpace(aggregation))
	switch aggregation {
	case "":
		aggregation = "sum"
	case "count", "sum", "mean", "avg", "max", "min":
	default:
		return nil, fmt.Errorf("unknown aggregation %q (count, sum, mean, max, min)", aggregation)
	}
	if aggregation == "avg" {
		aggregation = "mean"
	}

	type bucket struct {
		count int
		nums  []float64
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	for i, k := range keys {
		label := k.String()
		b, ok := buckets[label]
		if !ok {
			b = &bucket{}
			buckets[label] = b
			order = append(order, label)
		}
		b.count++
		if f, ok := values[i].Float(); ok {
			b.nums = append(b.nums, f)
		}
	}

	outColumn := fmt.Sprintf("%s_%s", aggregation, valueColumn)
	result, err := dataset.New([]string{groupColumn, outColumn})
	if err != nil {
		return nil, err
	}
	for _, label := range order {
		b := buckets[label]
		var v dataset.Value
		switch aggregation {
		case "count":
			v = dataset.Number(float64(b.count))
		case "sum":
			v = dataset.Number(sumFloats(b.nums))
		case "mean":
			if len(b.nums) == 0 {
				v = dataset.Null()
			} else {
				v = dataset.Number(sumFloats(b.nums) / float64(len(b.nums)))
			}
		case "max":
			v = extremum(b.nums, true)
		case "min":
			v = extremum(b.nums, false)
		}
		if err := result.InsertRow(-1, map[string]interface{}{
			groupColumn: label,
			outColumn:   v,
		}); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func sumFloats(nums []float64) float64 {
	var total float64
	for _, f := range nums {
		total += f
	}
	return total
}

func extremum(nums []float64, wantMax bool) dataset.Value {
	if len(nums) == 0 {
		return dataset.Null()
	}
	m := nums[0]
	for _, f := range nums[1:] {
		if (wantMax && f > m) || (!wantMax && f < m) {
			m = f
		}
	}
	return dataset.Number(m)
}
