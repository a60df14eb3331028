// Package postgres loads datasets from PostgreSQL queries.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"goeda/domain/dataset"
	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, apperrors.DataSourceError("postgres", err)
	}
	return db, nil
}

// QueryReader runs one SELECT and turns the result set into a dataset
type QueryReader struct {
	db     *sqlx.DB
	name   string
	query  string
	args   []interface{}
	logger *internal.Logger
}

var _ ports.DatasetReader = (*QueryReader)(nil)

// NewQueryReader creates a reader; name becomes the dataset name
func NewQueryReader(db *sqlx.DB, name, query string, logger *internal.Logger, args ...interface{}) *QueryReader {
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &QueryReader{db: db, name: name, query: query, args: args, logger: logger}
}

// Read executes the query inside a read-only transaction, which is always
// rolled back, and types each column from the scanned values
func (r *QueryReader) Read(ctx context.Context) (*dataset.Table, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, apperrors.DataSourceError("postgres", fmt.Errorf("failed to begin read-only transaction: %w", err))
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, r.query, r.args...)
	if err != nil {
		return nil, apperrors.DataSourceError("postgres", fmt.Errorf("failed to query dataset: %w", err))
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.DataSourceError("postgres", err)
	}
	columns := make([]Field, len(types))
	for i, ct := range types {
		columns[i] = Field{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
	}

	var records [][]interface{}
	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, apperrors.DataSourceError("postgres", fmt.Errorf("failed to scan row: %w", err))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DataSourceError("postgres", err)
	}

	r.logger.Debug("[QueryReader] %s returned %d rows x %d columns", r.name, len(records), len(columns))
	return BuildTable(r.name, columns, records)
}

// Field is a result set column with its database type name, e.g. NUMERIC
type Field struct {
	Name         string
	DatabaseType string
}

// BuildTable types scanned driver values column by column. A column whose
// non-null values are all integers is int64, all numbers float64, all bools
// bool, all timestamps datetime; anything else is rendered as text.
func BuildTable(name string, columns []Field, records [][]interface{}) (*dataset.Table, error) {
	cols := make([]*dataset.Column, len(columns))
	for j, field := range columns {
		values := make([]interface{}, len(records))
		for i, rec := range records {
			if j < len(rec) {
				values[i] = normalize(rec[j], field.DatabaseType)
			}
		}
		cols[j] = buildColumn(field.Name, values)
	}
	table, err := dataset.NewTable(name, cols...)
	if err != nil {
		return nil, apperrors.Wrap(err, "build dataset")
	}
	return table, nil
}

var numericTypes = map[string]bool{"NUMERIC": true, "DECIMAL": true}

// normalize maps driver values onto int64, float64, bool, time.Time, string or nil.
// Non-finite numbers (NaN, Infinity, -Infinity) become nil.
func normalize(v interface{}, dbType string) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		// lib/pq hands NUMERIC back as text
		s := string(x)
		if numericTypes[dbType] {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return finite(f)
			}
		}
		return s
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	default:
		return v
	}
}

func finite(f float64) interface{} {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return f
}

func buildColumn(name string, values []interface{}) *dataset.Column {
	var nulls []int
	kind := ""
	for i, v := range values {
		if v == nil {
			nulls = append(nulls, i)
			continue
		}
		kind = merge(kind, v)
	}

	switch kind {
	case "int":
		out := make([]int64, len(values))
		for i, v := range values {
			if v != nil {
				out[i] = v.(int64)
			}
		}
		return dataset.NewIntColumn(name, out).WithNulls(nulls...)
	case "float":
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = math.NaN()
			switch x := v.(type) {
			case int64:
				out[i] = float64(x)
			case float64:
				out[i] = x
			}
		}
		return dataset.NewFloatColumn(name, out)
	case "bool":
		out := make([]bool, len(values))
		for i, v := range values {
			if v != nil {
				out[i] = v.(bool)
			}
		}
		return dataset.NewBoolColumn(name, out).WithNulls(nulls...)
	case "time":
		out := make([]string, len(values))
		for i, v := range values {
			if v != nil {
				out[i] = v.(time.Time).Format(time.RFC3339)
			}
		}
		return dataset.NewDatetimeColumn(name, out).WithNulls(nulls...)
	default:
		out := make([]string, len(values))
		for i, v := range values {
			if v != nil {
				out[i] = fmt.Sprint(v)
			}
		}
		return dataset.NewStringColumn(name, out).WithNulls(nulls...)
	}
}

// merge widens the running column kind with one more value
func merge(kind string, v interface{}) string {
	var next string
	switch v.(type) {
	case int64:
		next = "int"
	case float64:
		next = "float"
	case bool:
		next = "bool"
	case time.Time:
		next = "time"
	default:
		next = "text"
	}
	switch {
	case kind == "" || kind == next:
		return next
	case (kind == "int" && next == "float") || (kind == "float" && next == "int"):
		return "float"
	default:
		return "text"
	}
}
