package plot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"
)

// Open returns the sink for format under reportDir: "png" writes
// <reportDir>/plots/*.png, "xlsx" collects charts into <reportDir>/plots.xlsx.
// finish must be called once rendering is done.
func Open(ctx context.Context, reportDir, format string, logger *internal.Logger) (ports.PlotSink, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	switch format {
	case "", "png":
		sink, err := NewPNGSink(filepath.Join(reportDir, "plots"), logger)
		if err != nil {
			return nil, nil, err
		}
		return sink, func() error { return nil }, nil
	case "xlsx":
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return nil, nil, apperrors.Wrapf(err, "create report folder %s", reportDir)
		}
		sink, err := NewWorkbookSink(filepath.Join(reportDir, "plots.xlsx"), logger)
		if err != nil {
			return nil, nil, err
		}
		finish := func() error {
			defer sink.Close()
			return sink.Save()
		}
		return sink, finish, nil
	default:
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("unsupported plot format %q", format))
	}
}
