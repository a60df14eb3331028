package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"goeda/domain/core"
	"goeda/internal/migration"
	"goeda/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_Integration(t *testing.T) {
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
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	repo := NewReportRepository(db)
	id := core.NewID().String()
	at := time.Now().UTC().Truncate(time.Second)
	stored := &ports.StoredReport{
		ID:          id,
		RunID:       core.NewID().String(),
		Dataset:     "orders",
		Rows:        200,
		GeneratedAt: at,
		ReportDir:   "/tmp/reports/" + id,
		Document:    []byte(`{"id":"` + id + `"}`),
	}
	require.NoError(t, repo.Save(ctx, stored))
	t.Cleanup(func() { db.Exec("DELETE FROM report_runs WHERE id = $1", id) })

	stored.Rows = 150
	require.NoError(t, repo.Save(ctx, stored), "saving the same id updates the row")

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Rows)
	assert.Equal(t, "orders", got.Dataset)
	assert.True(t, at.Equal(got.GeneratedAt))
	assert.JSONEq(t, string(stored.Document), string(got.Document))

	_, err = repo.Get(ctx, core.NewID().String())
	assert.True(t, core.IsNotFoundError(err))

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
