package region

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"regionalgeo/internal/model"
)

// Repository stores the country to region mapping in the geo_regions table.
// Queries are written with ? placeholders and rebound for the driver in use.
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRepository(db *sqlx.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS geo_regions (
            country_code VARCHAR(2)  PRIMARY KEY,
            name         TEXT        NOT NULL,
            region_code  VARCHAR(16) NOT NULL,
            time_zone    TEXT        NOT NULL
        )
    `)
	return err
}

// ByCountryCode returns the region for code, or nil when none is mapped.
func (r *Repository) ByCountryCode(ctx context.Context, code string) (*model.Region, error) {
	query := r.db.Rebind(`
        SELECT country_code, name, region_code, time_zone
        FROM geo_regions
        WHERE country_code = ?
    `)

	var region model.Region
	err := r.db.GetContext(ctx, &region, query, normalize(code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		r.logger.Error("failed to find region for country",
			zap.String("country_code", code),
			zap.Error(err))
		return nil, err
	}

	return &region, nil
}

func (r *Repository) List(ctx context.Context) ([]model.Region, error) {
	regions := []model.Region{}
	err := r.db.SelectContext(ctx, &regions, `
        SELECT country_code, name, region_code, time_zone
        FROM geo_regions
        ORDER BY country_code ASC
    `)
	return regions, err
}

func (r *Repository) Save(ctx context.Context, region model.Region) error {
	query := r.db.Rebind(`
        INSERT INTO geo_regions (country_code, name, region_code, time_zone)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (country_code)
        DO UPDATE SET
            name = EXCLUDED.name,
            region_code = EXCLUDED.region_code,
            time_zone = EXCLUDED.time_zone
    `)

	_, err := r.db.ExecContext(ctx, query,
		normalize(region.CountryCode),
		region.Name,
		region.RegionCode,
		region.TimeZone)
	if err != nil {
		r.logger.Error("failed to save region",
			zap.String("country_code", region.CountryCode),
			zap.Error(err))
	}
	return err
}

// Delete removes the mapping for code. It reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("DELETE FROM geo_regions WHERE country_code = ?"),
		normalize(code))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
