package analysis

import (
	"fmt"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/ports"
)

// Factory builds the analyzer matching an analysis entry
type Factory struct {
	registry *StrategyRegistry
	diag     ports.Diagnostics
}

// NewFactory creates a factory; a nil registry gets the built-in strategies
func NewFactory(registry *StrategyRegistry, diag ports.Diagnostics) *Factory {
	if registry == nil {
		registry = NewStrategyRegistry()
	}
	return &Factory{registry: registry, diag: diag}
}

// Registry exposes the outlier strategies so callers can register more
func (f *Factory) Registry() *StrategyRegistry {
	return f.registry
}

// Build instantiates the analyzer for entry over table
func (f *Factory) Build(entry eda.Entry, table *dataset.Table, style eda.PlotStyle) (Analyzer, error) {
	switch entry.ID {
	case eda.Distribution:
		return NewDistributionAnalyzer(table, entry.Columns, style, f.diag), nil
	case eda.Outliers:
		if entry.Outliers == nil {
			return nil, core.NewContractError("outliers", fmt.Errorf("%w: missing method parameters", core.ErrContractViolation))
		}
		return NewOutlierAnalyzer(table, entry.Columns, entry.Outliers.Method, f.registry, style, f.diag), nil
	case eda.Correlation:
		return NewCorrelationAnalyzer(table, entry.Columns, style, f.diag), nil
	case eda.CategoryDominance:
		if entry.Dominance == nil {
			return nil, core.NewContractError("category_dominance", fmt.Errorf("%w: missing top_n/rare_threshold parameters", core.ErrContractViolation))
		}
		return NewDominanceAnalyzer(table, entry.Columns, *entry.Dominance, style, f.diag), nil
	default:
		return nil, fmt.Errorf("%w: unknown analysis id %q", core.ErrContractViolation, entry.ID)
	}
}
