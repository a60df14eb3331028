package analysis

import (
	"fmt"
	"sort"
	"sync"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal/profiling"
)

// MethodIQR is the interquartile range fence, the default outlier method
const MethodIQR = "iqr"

// OutlierResult is what a detection strategy reports for one column
type OutlierResult struct {
	Rows    []int // row positions of the outliers, ascending
	Count   int
	Percent float64 // 100 * Count / total rows
	Lower   float64
	Upper   float64
}

// OutlierStrategy detects outliers in one column of a table
type OutlierStrategy func(table *dataset.Table, column string) (OutlierResult, error)

// StrategyRegistry maps method identifiers to detection strategies.
// New methods are added with Register; the analyzer only looks them up.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]OutlierStrategy
}

// NewStrategyRegistry returns a registry holding the built-in methods
func NewStrategyRegistry() *StrategyRegistry {
	r := &StrategyRegistry{strategies: make(map[string]OutlierStrategy)}
	r.Register(MethodIQR, IQRStrategy(1.5))
	return r
}

// Register adds or replaces a strategy
func (r *StrategyRegistry) Register(method string, s OutlierStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[method] = s
}

// Lookup returns the strategy for a method
func (r *StrategyRegistry) Lookup(method string) (OutlierStrategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[method]
	return s, ok
}

// Methods lists the registered method identifiers
func (r *StrategyRegistry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.strategies))
	for m := range r.strategies {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// IQRStrategy flags values strictly outside [Q1 - k*IQR, Q3 + k*IQR]
func IQRStrategy(k float64) OutlierStrategy {
	return func(table *dataset.Table, column string) (OutlierResult, error) {
		col, ok := table.Column(column)
		if !ok {
			return OutlierResult{}, core.NewColumnNotFoundError(column)
		}
		if !col.Type().IsNumeric() {
			return OutlierResult{}, fmt.Errorf("%w: %s is %s", core.ErrUnsupportedType, column, col.Type())
		}

		q25, q75, err := profiling.Quartiles(col.Floats())
		if err != nil {
			return OutlierResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
		}
		fences := profiling.IQRFences(q25, q75, k)

		res := OutlierResult{Lower: fences.Lower, Upper: fences.Upper}
		for i := 0; i < col.Len(); i++ {
			v, ok := col.Float(i)
			if ok && fences.Outside(v) {
				res.Rows = append(res.Rows, i)
			}
		}
		res.Count = len(res.Rows)
		if table.Rows() > 0 {
			res.Percent = 100 * float64(res.Count) / float64(table.Rows())
		}
		return res, nil
	}
}
