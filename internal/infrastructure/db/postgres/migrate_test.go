package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least two migrations, got %d", len(entries))
	}
	for _, e := range entries {
		body, err := fs.ReadFile(migrations, migrationsDir+"/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "-- +goose Down") {
			t.Fatalf("%s lacks goose annotations", e.Name())
		}
	}
}

func TestMigrate_DelegatesCommand(t *testing.T) {
	orig := gooseRun
	defer func() { gooseRun = orig }()

	var got string
	gooseRun = func(_ context.Context, _ *sql.DB, command string) error {
		got = command
		if command == "down" {
			return errors.New("boom")
		}
		return nil
	}

	if err := Migrate(context.Background(), nil, "up", zerolog.Nop()); err != nil {
		t.Fatalf("Migrate up: %v", err)
	}
	if got != "up" {
		t.Fatalf("expected up, got %q", got)
	}
	if err := Migrate(context.Background(), nil, "down", zerolog.Nop()); err == nil || !strings.Contains(err.Error(), "migrate down") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
