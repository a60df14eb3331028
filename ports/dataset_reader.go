package ports

import (
	"context"

	"goeda/domain/dataset"
)

// DatasetReader loads a tabular dataset from some source
type DatasetReader interface {
	Read(ctx context.Context) (*dataset.Table, error)
}
