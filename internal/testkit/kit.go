// Package testkit provides deterministic datasets and recording doubles for
// the diagnostics and plot sink ports.
package testkit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"goeda/domain/dataset"
	"goeda/ports"

	"github.com/stretchr/testify/mock"
)

// Diagnostics records every message by level
type Diagnostics struct {
	mu     sync.Mutex
	Infos  []string
	Warns  []string
	Errors []string
}

var _ ports.Diagnostics = (*Diagnostics)(nil)

func (d *Diagnostics) Info(format string, args ...interface{}) {
	d.add(&d.Infos, format, args)
}

func (d *Diagnostics) Warn(format string, args ...interface{}) {
	d.add(&d.Warns, format, args)
}

func (d *Diagnostics) Error(format string, args ...interface{}) {
	d.add(&d.Errors, format, args)
}

func (d *Diagnostics) add(dst *[]string, format string, args []interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

// WarnedAbout reports whether any warning mentions substr
func (d *Diagnostics) WarnedAbout(substr string) bool {
	return d.contains(d.Warns, substr)
}

// ErroredAbout reports whether any error mentions substr
func (d *Diagnostics) ErroredAbout(substr string) bool {
	return d.contains(d.Errors, substr)
}

func (d *Diagnostics) contains(lines []string, substr string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// RecordingSink pretends to render charts and remembers every request
type RecordingSink struct {
	mu    sync.Mutex
	Dir   string
	Specs map[string]ports.ChartSpec
	Names []string
}

var _ ports.PlotSink = (*RecordingSink)(nil)

// NewRecordingSink creates a sink that returns <dir>/<name>.png
func NewRecordingSink(dir string) *RecordingSink {
	return &RecordingSink{Dir: dir, Specs: make(map[string]ports.ChartSpec)}
}

func (s *RecordingSink) SavePlot(ctx context.Context, spec ports.ChartSpec, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Specs[name] = spec
	s.Names = append(s.Names, name)
	return s.Dir + "/" + name + ".png", nil
}

// Calls returns the number of charts requested
func (s *RecordingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Names)
}

// MockPlotSink is a testify mock of ports.PlotSink
type MockPlotSink struct {
	mock.Mock
}

var _ ports.PlotSink = (*MockPlotSink)(nil)

func (m *MockPlotSink) SavePlot(ctx context.Context, spec ports.ChartSpec, name string) (string, error) {
	args := m.Called(ctx, spec, name)
	return args.String(0), args.Error(1)
}

// MustTable builds a table from columns and panics on schema errors
func MustTable(name string, columns ...*dataset.Column) *dataset.Table {
	t, err := dataset.NewTable(name, columns...)
	if err != nil {
		panic(err)
	}
	return t
}
