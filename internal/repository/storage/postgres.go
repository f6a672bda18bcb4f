package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"brewhaha/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by the device_storage table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, deviceID, key string) (string, error) {
	const q = `
SELECT value
FROM device_storage
WHERE device_id = $1 AND key = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, deviceID, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		r.logger.Error("storage repo: get", zap.String("device_id", deviceID), zap.String("key", key), zap.Error(err))
		return "", err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, deviceID, key, value string) error {
	const q = `
INSERT INTO device_storage (device_id, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (device_id, key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, deviceID, key, value); err != nil {
		r.logger.Error("storage repo: set", zap.String("device_id", deviceID), zap.String("key", key), zap.Error(err))
		return err
	}
	r.logger.Debug("storage repo: set", zap.String("device_id", deviceID), zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, deviceID, key string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM device_storage WHERE device_id = $1 AND key = $2`, deviceID, key)
	if err != nil {
		r.logger.Error("storage repo: delete", zap.String("device_id", deviceID), zap.String("key", key), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
