package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSQLRepository(t *testing.T, ttl time.Duration) *SQLRepository {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	repo := NewSQLRepository(db, ttl, zap.NewNop())
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLRepository(t, time.Hour)

	data, err := repo.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, repo.Set(ctx, "8.8.8.8", []byte(`{"status":{"code":"SUCCESS"}}`)))
	require.NoError(t, repo.Set(ctx, "8.8.8.8", []byte(`{"status":{"code":"SUCCESS","message":"Success"}}`)))

	data, err = repo.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":{"code":"SUCCESS","message":"Success"}}`, string(data))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSQLRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLRepository(t, time.Hour)

	require.NoError(t, repo.Set(ctx, "8.8.8.8", []byte(`{}`)))
	require.NoError(t, repo.Set(ctx, "1.1.1.1", []byte(`{}`)))
	require.NoError(t, repo.Delete(ctx, "8.8.8.8"))

	data, err := repo.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = repo.Get(ctx, "1.1.1.1")
	require.NoError(t, err)
	assert.NotNil(t, data)

	// deleting an absent record is not an error
	assert.NoError(t, repo.Delete(ctx, "8.8.8.8"))
}

func TestSQLRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLRepository(t, time.Hour)

	now := time.Now()
	repo.now = func() time.Time { return now.Add(-2 * time.Hour) }
	require.NoError(t, repo.Set(ctx, "8.8.8.8", []byte(`{}`)))
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Set(ctx, "1.1.1.1", []byte(`{}`)))

	data, err := repo.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Nil(t, data)

	removed, err := repo.Cleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
