package postgres

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"testing"
	"time"

	"goeda/domain/dataset"
	"goeda/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable_TypesDriverValues(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fields := []Field{
		{Name: "id", DatabaseType: "INT8"},
		{Name: "amount", DatabaseType: "NUMERIC"},
		{Name: "ratio", DatabaseType: "FLOAT8"},
		{Name: "city", DatabaseType: "TEXT"},
		{Name: "zip", DatabaseType: "VARCHAR"},
		{Name: "active", DatabaseType: "BOOL"},
		{Name: "created_at", DatabaseType: "TIMESTAMPTZ"},
	}
	records := [][]interface{}{
		{int64(1), []byte("10.50"), 0.5, "Lima", []byte("01234"), true, ts},
		{int64(2), nil, int64(1), nil, []byte("99999"), false, nil},
	}

	table, err := BuildTable("orders", fields, records)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())

	want := map[string]dataset.ColumnType{
		"id":         dataset.TypeInt64,
		"amount":     dataset.TypeFloat64,
		"ratio":      dataset.TypeFloat64,
		"city":       dataset.TypeString,
		"zip":        dataset.TypeString,
		"active":     dataset.TypeBool,
		"created_at": dataset.TypeDatetime,
	}
	for _, f := range table.Schema() {
		assert.Equal(t, want[f.Name], f.Type, f.Name)
	}

	amount, _ := table.Column("amount")
	assert.True(t, amount.IsNull(1))
	assert.Equal(t, []float64{10.5}, amount.Floats())

	zip, _ := table.Column("zip")
	v, _ := zip.Text(0)
	assert.Equal(t, "01234", v)

	created, _ := table.Column("created_at")
	v, _ = created.Text(0)
	assert.Equal(t, "2024-03-01T12:00:00Z", v)
	assert.True(t, created.IsNull(1))
}

func TestMerge_MixedKindsFallBackToText(t *testing.T) {
	assert.Equal(t, "float", merge("int", 1.5))
	assert.Equal(t, "text", merge("bool", int64(1)))
	assert.Equal(t, "int", merge("", int64(3)))
}

func TestBuildTable_EmptyResult(t *testing.T) {
	table, err := BuildTable("empty", []Field{{Name: "x", DatabaseType: "INT4"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Rows())
	assert.True(t, table.HasColumn("x"))
}

func TestBuildTable_NonFiniteNumbersAreNull(t *testing.T) {
	fields := []Field{
		{Name: "x", DatabaseType: "FLOAT8"},
		{Name: "amount", DatabaseType: "NUMERIC"},
	}
	records := [][]interface{}{
		{1.0, []byte("1.5")},
		{2.0, []byte("Infinity")},
		{math.Inf(1), []byte("NaN")},
		{math.Inf(-1), []byte("-Infinity")},
		{float32(math.NaN()), []byte("2.5")},
	}

	table, err := BuildTable("readings", fields, records)
	require.NoError(t, err)

	x, _ := table.Column("x")
	assert.Equal(t, dataset.TypeFloat64, x.Type())
	assert.Equal(t, 3, x.NullCount())
	assert.Equal(t, []float64{1, 2}, x.Floats())

	amount, _ := table.Column("amount")
	assert.Equal(t, dataset.TypeFloat64, amount.Type())
	assert.Equal(t, []float64{1.5, 2.5}, amount.Floats())

	summary, err := profiling.Summarize(x.Floats())
	require.NoError(t, err)
	_, err = json.Marshal(summary)
	assert.NoError(t, err, "summary of a finite column must encode")
}

func TestQueryReader_RunsReadOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS readonly_guard (id INT)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec("DROP TABLE IF EXISTS readonly_guard") })
	_, err = db.ExecContext(ctx, "INSERT INTO readonly_guard VALUES (1)")
	require.NoError(t, err)

	_, err = NewQueryReader(db, "guard", "WITH d AS (DELETE FROM readonly_guard RETURNING *) SELECT * FROM d", nil).Read(ctx)
	assert.Error(t, err)
	// The trailing DROP fails inside the read-only transaction
	_, _ = NewQueryReader(db, "guard", "SELECT 1; DROP TABLE readonly_guard", nil).Read(ctx)

	table, err := NewQueryReader(db, "guard", "SELECT id FROM readonly_guard", nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Rows(), "writes were rejected and the row survives")
}
