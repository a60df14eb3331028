package api

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goeda/domain/core"
	"goeda/ports"
)

// MemoryReports keeps report runs in process memory. It is the store used
// when no database is configured.
type MemoryReports struct {
	mu      sync.RWMutex
	reports map[string]*ports.StoredReport
}

var _ ports.ReportRepository = (*MemoryReports)(nil)

// NewMemoryReports creates an empty store
func NewMemoryReports() *MemoryReports {
	return &MemoryReports{reports: make(map[string]*ports.StoredReport)}
}

func (m *MemoryReports) Save(ctx context.Context, report *ports.StoredReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *report
	m.reports[report.ID] = &stored
	return nil
}

func (m *MemoryReports) Get(ctx context.Context, id string) (*ports.StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, core.ErrNotFound)
	}
	out := *report
	return &out, nil
}

func (m *MemoryReports) List(ctx context.Context, limit int) ([]*ports.StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ports.StoredReport, 0, len(m.reports))
	for _, r := range m.reports {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
