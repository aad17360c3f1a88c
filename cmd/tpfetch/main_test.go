package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssephillip/newsleak/internal/catalog"
)

func TestRunCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, ExitInvalidArgs},
		{"help", []string{"help"}, ExitSuccess},
		{"-h", []string{"-h"}, ExitSuccess},
		{"unknown", []string{"upload"}, ExitInvalidArgs},
		{"fetch without storage", []string{"fetch", "-catalog", "c.json"}, ExitInvalidArgs},
		{"fetch without catalog", []string{"fetch", "-storage", "out"}, ExitInvalidArgs},
		{"inspect without catalog", []string{"inspect"}, ExitInvalidArgs},
		{"inspect missing file", []string{"inspect", "-catalog", "/nonexistent/catalog.json"}, ExitCatalogError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func writeCatalog(t *testing.T, dir string, records []catalog.Record) string {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.pdf":
			w.Write([]byte("%PDF-a"))
		case "/b.csv":
			w.Write([]byte("x,y\n1,2\n"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir, []catalog.Record{
		{
			ID:             "rec0",
			Title:          "Budget",
			PublishingDate: "2019-08-20T00:00:00Z",
			Formats:        []string{"PDF", "csv"},
			URLs:           []string{srv.URL + "/a.pdf", srv.URL + "/b.csv"},
			Names:          []string{"a", "b"},
		},
		{
			ID:      "rec1",
			Formats: []string{"pdf"},
			URLs:    []string{srv.URL + "/broken.pdf"},
			Names:   []string{"broken"},
		},
		{
			ID:      "rec2",
			Formats: []string{"pdf", "pdf"},
			URLs:    []string{srv.URL + "/a.pdf"},
			Names:   []string{"x", "y"},
		},
	})

	storage := filepath.Join(dir, "out")
	report := filepath.Join(dir, "report.txt")

	code := run([]string{
		"fetch",
		"-catalog", catalogPath,
		"-storage", storage,
		"-report", report,
		"-formats", "pdf",
		"-workers", "2",
		"-poll-interval", "10ms",
	})
	if code != ExitSuccess {
		t.Fatalf("fetch exited with %d", code)
	}

	got, err := os.ReadFile(filepath.Join(storage, "rec0_0.pdf"))
	if err != nil {
		t.Fatalf("read downloaded document: %v", err)
	}
	if string(got) != "%PDF-a" {
		t.Errorf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(storage, "rec0_1.csv")); !os.IsNotExist(err) {
		t.Error("csv document should have been filtered out")
	}
	if _, err := os.Stat(filepath.Join(storage, "rec1_0.pdf")); !os.IsNotExist(err) {
		t.Error("failed document should not be stored")
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{
		"(final,",
		"Total number of records: 3",
		"Number of ill-formed records: 1",
		"Total number of documents: 3",
		"Number of documents of requested formats: 2",
		"Number of documents downloaded: 1",
		"Number of documents failed to download: 1",
		"Formats requested: pdf",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %q:\n%s", want, data)
		}
	}
}

func TestFetchCatalogError(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{
		"fetch",
		"-catalog", filepath.Join(dir, "missing.json"),
		"-storage", filepath.Join(dir, "out"),
	})
	if code != ExitCatalogError {
		t.Errorf("expected ExitCatalogError, got %d", code)
	}
}

func TestPrintInspect(t *testing.T) {
	cat := catalog.Build([]catalog.Record{
		{ID: "a", Formats: []string{"pdf", "csv", "PDF"}, URLs: []string{"u1", "u2", "u3"}, Names: []string{"1", "2", "3"}},
		{ID: "b", Formats: []string{"pdf"}},
	}, nil)

	var buf bytes.Buffer
	printInspect(&buf, cat, []string{"csv"})
	out := buf.String()

	for _, want := range []string{
		"Records:             2",
		"Ill-formed records:  1",
		"Documents:           3",
		"Requested formats:   1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	pdf := strings.Index(out, "pdf")
	csv := strings.Index(out, "csv")
	if pdf < 0 || csv < 0 || pdf > csv {
		t.Errorf("expected pdf listed before csv:\n%s", out)
	}
}
