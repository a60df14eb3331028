package insight

import (
	"encoding/json"
	"time"

	"goeda/domain/core"
	"goeda/domain/eda"
)

// Result is the (structured data, textual insights) pair produced by one analyzer
type Result struct {
	ID       eda.AnalysisID
	Records  map[string]Record
	Insights []string

	keys []string
}

// NewResult creates an empty result for an analysis id
func NewResult(id eda.AnalysisID) *Result {
	return &Result{ID: id, Records: make(map[string]Record), Insights: []string{}}
}

// Add stores the record for key, remembering first insertion order
func (r *Result) Add(key string, rec Record) {
	if _, exists := r.Records[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.Records[key] = rec
}

// AddInsight appends an insight line
func (r *Result) AddInsight(line string) {
	r.Insights = append(r.Insights, line)
}

// Keys returns record keys in the order they were added
func (r *Result) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Report is the aggregate of every analyzer result of a run
type Report struct {
	RunID       core.RunID
	Dataset     string
	Rows        int
	GeneratedAt time.Time

	Results  map[eda.AnalysisID]map[string]Record
	Insights []string

	order []eda.AnalysisID
}

// NewReport starts an empty report for a dataset
func NewReport(runID core.RunID, dataset string, rows int, at time.Time) *Report {
	return &Report{
		RunID:       runID,
		Dataset:     dataset,
		Rows:        rows,
		GeneratedAt: at,
		Results:     make(map[eda.AnalysisID]map[string]Record),
		Insights:    []string{},
	}
}

// Merge folds an analyzer result into the report under its analysis id
func (r *Report) Merge(res *Result) {
	if res == nil {
		return
	}
	if _, seen := r.Results[res.ID]; !seen {
		r.order = append(r.order, res.ID)
	}
	r.Results[res.ID] = res.Records
	r.Insights = append(r.Insights, res.Insights...)
}

// Order returns analysis ids in merge order
func (r *Report) Order() []eda.AnalysisID {
	return append([]eda.AnalysisID(nil), r.order...)
}

// HasPlots reports whether any record references a chart artifact
func (r *Report) HasPlots() bool {
	for _, recs := range r.Results {
		for _, rec := range recs {
			if rec.PlotPath() != "" {
				return true
			}
		}
	}
	return false
}

// MarshalJSON writes the aggregate artifact: a mapping keyed by analysis id
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Results)
}
