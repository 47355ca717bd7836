package db

import (
	"io/fs"
	"testing"
)

func TestMigrationsArePaired(t *testing.T) {
	fsys, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		t.Fatalf("glob up: %v", err)
	}
	downs, err := fs.Glob(fsys, "*.down.sql")
	if err != nil {
		t.Fatalf("glob down: %v", err)
	}
	if len(ups) == 0 {
		t.Fatal("expected at least one up migration")
	}
	if len(ups) != len(downs) {
		t.Fatalf("expected paired migrations, got %d up / %d down", len(ups), len(downs))
	}
}
