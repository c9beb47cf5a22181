package service

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sesoko-server/internal/modules/tank/types"
)

// MetricSummary describes one column of a day's table.
type MetricSummary struct {
	Metric    types.Metric
	Available bool
	Count     int
	Min       float64
	Mean      float64
	Max       float64
}

// Summarize reports count/min/mean/max for every known metric. Metrics whose column is
// missing or holds no numeric values are marked unavailable.
func Summarize(tbl *types.Table) []MetricSummary {
	ms := types.Metrics()
	out := make([]MetricSummary, 0, len(ms))
	for _, m := range ms {
		sum := MetricSummary{Metric: m}
		if tbl != nil {
			if values, err := tbl.Column(m.Column); err == nil {
				finite := make([]float64, 0, len(values))
				for _, v := range values {
					if !math.IsNaN(v) && !math.IsInf(v, 0) {
						finite = append(finite, v)
					}
				}
				if len(finite) > 0 {
					sum.Available = true
					sum.Count = len(finite)
					sum.Min = floats.Min(finite)
					sum.Max = floats.Max(finite)
					sum.Mean = stat.Mean(finite, nil)
				}
			}
		}
		out = append(out, sum)
	}
	return out
}
