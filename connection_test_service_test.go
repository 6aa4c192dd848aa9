package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"rapidslides/config"
	"rapidslides/database"
	"rapidslides/dbpool"
)

func newTestConnectionService(t *testing.T) *ConnectionTestService {
	t.Helper()
	svc := NewConnectionTestService(nil)
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return svc
}

func TestQuerySpaceSQLite(t *testing.T) {
	dir := t.TempDir()
	db, err := database.InitDB(dir)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	db.Close()

	svc := newTestConnectionService(t)
	result := svc.TestQuerySpace(config.QuerySpace{
		Engine: "sqlite",
		DSN:    filepath.Join(dir, "rapidslides.db"),
	})
	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
}

func TestQuerySpaceUnsupportedEngine(t *testing.T) {
	svc := newTestConnectionService(t)
	result := svc.TestQuerySpace(config.QuerySpace{Engine: "oracle", DSN: "whatever"})
	if result.Success {
		t.Error("unsupported engine must fail")
	}
	if result.Message == "" {
		t.Error("expected a message")
	}
}

func TestDescribeQuerySpaceSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "space.db")
	m := dbpool.New(dbpool.EngineSQLite, nil)
	db, err := m.OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable failed: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, amount REAL NOT NULL, note TEXT)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	db.Close()

	svc := newTestConnectionService(t)
	result := svc.DescribeQuerySpace(config.QuerySpace{Engine: "sqlite", DSN: path})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Tables) != 1 || result.Tables[0].Name != "orders" {
		t.Fatalf("tables = %+v, want one table named orders", result.Tables)
	}
	cols := make(map[string]ColumnInfo)
	for _, c := range result.Tables[0].Columns {
		cols[c.Name] = c
	}
	if len(cols) != 3 {
		t.Fatalf("columns = %+v, want 3", result.Tables[0].Columns)
	}
	if c := cols["amount"]; c.Nullable || !strings.EqualFold(c.Type, "REAL") {
		t.Errorf("amount column = %+v, want non-nullable REAL", c)
	}
	if c := cols["note"]; !c.Nullable {
		t.Errorf("note column = %+v, want nullable", c)
	}
}

func TestDescribeQuerySpaceUnsupportedEngine(t *testing.T) {
	svc := newTestConnectionService(t)
	result := svc.DescribeQuerySpace(config.QuerySpace{Engine: "oracle", DSN: "whatever"})
	if result.Success || len(result.Tables) != 0 {
		t.Errorf("unsupported engine must fail with no tables, got %+v", result)
	}
}

func TestQuerySpaceSQLiteMissingFile(t *testing.T) {
	svc := newTestConnectionService(t)
	result := svc.TestQuerySpace(config.QuerySpace{
		Engine: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "does-not-exist.db"),
	})
	if result.Success {
		t.Error("read-only open of a missing database must fail")
	}
}
