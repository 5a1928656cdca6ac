package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/fieldstream/dsv"
)

func TestScanRowsUsesHeaderNamesByDefault(t *testing.T) {
	rows, err := scanRows(strings.NewReader("name,age\nalice,30\nbob,25\n"), false, fileConfig{})
	if err != nil {
		t.Fatalf("scanRows error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["name"] != "alice" || rows[0]["age"] != "30" {
		t.Fatalf("rows[0] = %v, want name=alice age=30", rows[0])
	}
	if rows[1]["name"] != "bob" || rows[1]["age"] != "25" {
		t.Fatalf("rows[1] = %v, want name=bob age=25", rows[1])
	}
}

func TestScanRowsAppliesConfiguredTypes(t *testing.T) {
	cfg := fileConfig{Columns: []columnConfig{
		{Name: "id", Type: "int"},
		{Name: "label"},
	}}
	rows, err := scanRows(strings.NewReader("1,one\n2,two\n"), false, cfg)
	if err != nil {
		t.Fatalf("scanRows error: %v", err)
	}
	// The first record ("1,one") is always consumed as the header, even
	// though cfg supplies the column names itself — only the first body
	// row, "2,two", ends up in rows.
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0]["id"] != "2" || rows[0]["label"] != "two" {
		t.Fatalf("rows[0] = %v, want id=2 label=two", rows[0])
	}
}

func TestScanRowsTSV(t *testing.T) {
	rows, err := scanRows(strings.NewReader("a\tb\n1\t2\n"), true, fileConfig{})
	if err != nil {
		t.Fatalf("scanRows error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0]["a"] != "1" || rows[0]["b"] != "2" {
		t.Fatalf("rows[0] = %v, want a=1 b=2", rows[0])
	}
}

func TestScanRowsConversionFailureReportsUnderlyingError(t *testing.T) {
	cfg := fileConfig{Columns: []columnConfig{{Name: "id", Type: "int"}}}
	_, err := scanRows(strings.NewReader("id\nnot-a-number\n"), false, cfg)
	if err == nil {
		t.Fatal("expected an error for a non-numeric int column")
	}
	var ife *dsv.InvalidFormatError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v (%T), want the translator's *dsv.InvalidFormatError", err, err)
	}
}
