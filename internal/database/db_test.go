package database

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestConnect_Validation(t *testing.T) {
	if _, err := Connect(context.Background(), ""); !errors.Is(err, ErrNoDSN) {
		t.Fatalf("expected ErrNoDSN, got %v", err)
	}

	if _, err := Connect(context.Background(), "invalid-dsn"); err == nil {
		t.Fatalf("expected error for invalid dsn")
	}
}

func TestOpen_WithoutDSN(t *testing.T) {
	pool, err := Open(context.Background(), "", true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != nil {
		t.Fatalf("expected nil pool without dsn")
	}
}

func TestMigrateUp_RequiresPool(t *testing.T) {
	if err := MigrateUp(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error without pool")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}

	data, err := fs.ReadFile(migrationFiles, migrationsDir+"/"+entries[0].Name())
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(data)
	for _, table := range []string{"searches", "candidates", "search_candidates", "saved_candidates", "app_settings", "credit_transactions"} {
		if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("expected table %s in initial migration", table)
		}
	}
	if !strings.Contains(sql, "-- +goose Down") {
		t.Fatalf("expected a down section")
	}
}
