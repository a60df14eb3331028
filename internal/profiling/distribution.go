package profiling

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary holds the descriptive statistics of a numeric sample
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"` // sample standard deviation, 0 for fewer than two values
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P5     float64 `json:"p5"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	P95    float64 `json:"p95"`
}

// Summarize computes summary statistics of the non-null values of a column.
// Percentiles use the nearest-rank method so they are always observed values.
func Summarize(data []float64) (Summary, error) {
	var s Summary
	if len(data) == 0 {
		return s, stats.ErrEmptyInput
	}
	s.Count = len(data)

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}

	percentiles := []struct {
		p   float64
		dst *float64
	}{
		{5, &s.P5}, {25, &s.Q25}, {75, &s.Q75}, {95, &s.P95},
	}
	for _, pc := range percentiles {
		v, err := stats.PercentileNearestRank(data, pc.p)
		if err != nil {
			return s, fmt.Errorf("percentile %.0f: %w", pc.p, err)
		}
		*pc.dst = v
	}
	return s, nil
}

// Quartiles returns the nearest-rank 25th and 75th percentiles
func Quartiles(data []float64) (q25, q75 float64, err error) {
	if len(data) == 0 {
		return 0, 0, stats.ErrEmptyInput
	}
	if q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return 0, 0, err
	}
	if q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return 0, 0, err
	}
	return q25, q75, nil
}

// Fences are the Tukey outlier bounds derived from the interquartile range
type Fences struct {
	Q25   float64
	Q75   float64
	IQR   float64
	Lower float64
	Upper float64
}

// IQRFences computes Q1 - k*IQR and Q3 + k*IQR
func IQRFences(q25, q75, k float64) Fences {
	iqr := q75 - q25
	return Fences{
		Q25:   q25,
		Q75:   q75,
		IQR:   iqr,
		Lower: q25 - k*iqr,
		Upper: q75 + k*iqr,
	}
}

// Outside reports whether x falls strictly outside the fences
func (f Fences) Outside(x float64) bool {
	return x < f.Lower || x > f.Upper
}

// CountOutliers counts values outside the fences
func CountOutliers(data []float64, f Fences) int {
	n := 0
	for _, x := range data {
		if f.Outside(x) {
			n++
		}
	}
	return n
}
