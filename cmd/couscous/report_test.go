package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couscous-crawler/couscous/internal/database"
	"github.com/couscous-crawler/couscous/internal/model"
)

// seedReportDB creates a populated crawl database and returns its path.
func seedReportDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "crawl.db")
	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.InsertEmail(ctx, "alice@example.com", "https://example.com/contact"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertPhone(ctx, "0102030405", "https://example.com/contact"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	return dbPath
}

func TestReportCmd(t *testing.T) {
	t.Run("simple report to stdout", func(t *testing.T) {
		dbPath := seedReportDB(t)

		cmd := NewReportCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"--db", dbPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "alice@example.com") {
			t.Errorf("report missing email: %q", out)
		}
		if !strings.Contains(out, "0102030405") {
			t.Errorf("report missing phone: %q", out)
		}
	})

	t.Run("json report decodes", func(t *testing.T) {
		dbPath := seedReportDB(t)

		cmd := NewReportCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"--db", dbPath, "--json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		var decoded model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Stats.UniqueEmails != 1 {
			t.Errorf("UniqueEmails = %d, want 1", decoded.Stats.UniqueEmails)
		}
	})

	t.Run("markdown report to file", func(t *testing.T) {
		dbPath := seedReportDB(t)
		outPath := filepath.Join(t.TempDir(), "reports", "out.md")

		cmd := NewReportCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", dbPath, "--markdown", "-o", outPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.Contains(string(data), "# Couscous Crawl Report") {
			t.Error("markdown report missing title")
		}
	})

	t.Run("missing database fails", func(t *testing.T) {
		cmd := NewReportCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "absent.db")})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("json and markdown are mutually exclusive", func(t *testing.T) {
		dbPath := seedReportDB(t)

		cmd := NewReportCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", dbPath, "--json", "--markdown"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for mutually exclusive flags")
		}
	})
}
