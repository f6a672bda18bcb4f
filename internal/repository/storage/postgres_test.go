package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"brewhaha/internal/domain"
	"brewhaha/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	store := ForDevice(repo, "device-1")

	if _, err := store.Get(ctx, "cart"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "cart", "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "cart", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := store.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q", got)
	}
	if _, err := repo.Get(ctx, "device-2", "cart"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected other device isolated, got %v", err)
	}
	if err := store.Delete(ctx, "cart"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "cart"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE device_storage`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
