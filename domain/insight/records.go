package insight

// Record is the structured metrics of one column (or column pair) in a result.
// PlotPath is empty when no chart was requested.
type Record interface {
	PlotPath() string
}

// Skew is the qualitative asymmetry derived from mean versus median
type Skew string

const (
	SkewPositive  Skew = "positive"
	SkewNegative  Skew = "negative"
	SkewSymmetric Skew = "symmetric"
)

// SkewOf labels a distribution from its mean and median
func SkewOf(mean, median float64) Skew {
	switch {
	case mean > median:
		return SkewPositive
	case mean < median:
		return SkewNegative
	default:
		return SkewSymmetric
	}
}

// NumericDistribution summarises a numeric column
type NumericDistribution struct {
	Type       string     `json:"type"`
	Mean       float64    `json:"mean"`
	Median     float64    `json:"median"`
	Std        float64    `json:"std"`
	Percentile [2]float64 `json:"percentile_5_95"`
	Min        float64    `json:"min"`
	Max        float64    `json:"max"`
	Skew       Skew       `json:"skew"`
	Plot       string     `json:"plot,omitempty"`
}

func (r NumericDistribution) PlotPath() string { return r.Plot }

// CategoricalDistribution summarises a categorical column
type CategoricalDistribution struct {
	Type   string `json:"type"`
	Unique int    `json:"unique_values"`
}

func (r CategoricalDistribution) PlotPath() string { return "" }

// OutlierRecord describes the outliers found in one column
type OutlierRecord struct {
	Method          string           `json:"method"`
	TotalOutliers   int              `json:"total_outliers"`
	PercentOutliers float64          `json:"percent_outliers"`
	LowerBound      float64          `json:"lower_bound"`
	UpperBound      float64          `json:"upper_bound"`
	FrameSample     []map[string]any `json:"frame_sample,omitempty"`
	Plot            string           `json:"plot,omitempty"`
}

func (r OutlierRecord) PlotPath() string { return r.Plot }

// CorrelationRecord holds the strongest off-diagonal pair of a correlation matrix
type CorrelationRecord struct {
	Columns []string `json:"columns"`
	TopA    string   `json:"top_correlation_a"`
	TopB    string   `json:"top_correlation_b"`
	RValue  float64  `json:"r_value"`
	Plot    string   `json:"plot,omitempty"`
}

func (r CorrelationRecord) PlotPath() string { return r.Plot }

// CategoryCount is one row of a frequency table
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DominanceRecord holds the top categories of a column
type DominanceRecord struct {
	Top       []CategoryCount `json:"top"`
	RareCount int             `json:"rare_count"`
	Plot      string          `json:"plot,omitempty"`
}

func (r DominanceRecord) PlotPath() string { return r.Plot }
