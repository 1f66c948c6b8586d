package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLRepository keeps encoded envelopes in the ip_info_cache table. It works
// against postgres, sqlite and mysql; only the upsert differs between them.
type SQLRepository struct {
	db     *sqlx.DB
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLRepository(db *sqlx.DB, ttl time.Duration, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (r *SQLRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS ip_info_cache (
            ip         VARCHAR(45) PRIMARY KEY,
            data       TEXT        NOT NULL,
            updated_at BIGINT      NOT NULL
        )
    `)
	return err
}

func (r *SQLRepository) upsertQuery() string {
	if r.db.DriverName() == "mysql" {
		return `
        INSERT INTO ip_info_cache (ip, data, updated_at)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE
            data = VALUES(data),
            updated_at = VALUES(updated_at)
    `
	}
	return r.db.Rebind(`
        INSERT INTO ip_info_cache (ip, data, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (ip)
        DO UPDATE SET
            data = EXCLUDED.data,
            updated_at = EXCLUDED.updated_at
    `)
}

func (r *SQLRepository) Set(ctx context.Context, ip string, data []byte) error {
	_, err := r.db.ExecContext(ctx, r.upsertQuery(), ip, string(data), r.now().Unix())
	if err != nil {
		r.logger.Error("failed to store envelope",
			zap.String("ip", ip),
			zap.Error(err))
	}
	return err
}

// Get returns nil data and no error on a miss or an expired row.
func (r *SQLRepository) Get(ctx context.Context, ip string) ([]byte, error) {
	query := r.db.Rebind(`
        SELECT data
        FROM ip_info_cache
        WHERE ip = ? AND updated_at > ?
    `)

	var data string
	err := r.db.GetContext(ctx, &data, query, ip, r.cutoff())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		r.logger.Error("failed to load envelope",
			zap.String("ip", ip),
			zap.Error(err))
		return nil, err
	}

	return []byte(data), nil
}

func (r *SQLRepository) Delete(ctx context.Context, ip string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM ip_info_cache WHERE ip = ?"), ip)
	return err
}

// Cleanup removes expired rows and returns how many were deleted.
func (r *SQLRepository) Cleanup(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("DELETE FROM ip_info_cache WHERE updated_at <= ?"),
		r.cutoff())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM ip_info_cache")
	return count, err
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) cutoff() int64 {
	return r.now().Add(-r.ttl).Unix()
}
