package region

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"regionalgeo/internal/model"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zap.NewNop())
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepository_ByCountryCode(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, model.Region{
		CountryCode: "us",
		Name:        "North America",
		RegionCode:  "NA",
		TimeZone:    "America/Los_Angeles",
	}))

	region, err := repo.ByCountryCode(ctx, "US")
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, "US", region.CountryCode)
	assert.Equal(t, "North America", region.Name)
	assert.Equal(t, "NA", region.RegionCode)
	assert.Equal(t, "America/Los_Angeles", region.TimeZone)

	missing, err := repo.ByCountryCode(ctx, "NZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, model.Region{CountryCode: "NZ", Name: "Oceania", RegionCode: "APAC", TimeZone: "Pacific/Auckland"}))
	require.NoError(t, repo.Save(ctx, model.Region{CountryCode: "NZ", Name: "Asia Pacific", RegionCode: "APAC", TimeZone: "Pacific/Auckland"}))
	require.NoError(t, repo.Save(ctx, model.Region{CountryCode: "DE", Name: "Europe", RegionCode: "EMEA", TimeZone: "Europe/Berlin"}))

	regions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "DE", regions[0].CountryCode)
	assert.Equal(t, "Asia Pacific", regions[1].Name)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, model.Region{CountryCode: "DE", Name: "Europe", RegionCode: "EMEA", TimeZone: "Europe/Berlin"}))

	removed, err := repo.Delete(ctx, "de")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, "DE")
	require.NoError(t, err)
	assert.False(t, removed)

	region, err := repo.ByCountryCode(ctx, "DE")
	require.NoError(t, err)
	assert.Nil(t, region)
}

func TestRepository_Close(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Close())

	_, err := repo.ByCountryCode(ctx, "US")
	assert.Error(t, err)
}

func TestStatic_ByCountryCode(t *testing.T) {
	s := NewStatic([]model.Region{
		{CountryCode: "us", Name: "North America", RegionCode: "NA", TimeZone: "America/Los_Angeles"},
	})

	region, err := s.ByCountryCode(context.Background(), "US")
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, "NA", region.RegionCode)

	region, err = s.ByCountryCode(context.Background(), "FR")
	require.NoError(t, err)
	assert.Nil(t, region)
}
