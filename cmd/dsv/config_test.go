package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadColumnConfigEmptyPath(t *testing.T) {
	cfg, err := loadColumnConfig("")
	if err != nil {
		t.Fatalf("loadColumnConfig error: %v", err)
	}
	if len(cfg.Columns) != 0 {
		t.Fatalf("expected no columns for an empty path, got %v", cfg.Columns)
	}
	if cfg.typeFor(0) != "string" {
		t.Fatalf("typeFor(0) = %q, want %q", cfg.typeFor(0), "string")
	}
	if cfg.nameFor(0) != "" {
		t.Fatalf("nameFor(0) = %q, want empty", cfg.nameFor(0))
	}
}

func TestLoadColumnConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "columns.yaml")
	contents := "columns:\n  - name: id\n    type: int\n  - name: label\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	cfg, err := loadColumnConfig(path)
	if err != nil {
		t.Fatalf("loadColumnConfig error: %v", err)
	}
	if cfg.nameFor(0) != "id" || cfg.typeFor(0) != "int" {
		t.Fatalf("column 0 = (%q, %q), want (id, int)", cfg.nameFor(0), cfg.typeFor(0))
	}
	if cfg.nameFor(1) != "label" || cfg.typeFor(1) != "string" {
		t.Fatalf("column 1 = (%q, %q), want (label, string)", cfg.nameFor(1), cfg.typeFor(1))
	}
}
