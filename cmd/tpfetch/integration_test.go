//go:build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/ssephillip/newsleak/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var docs []testutils.TestDocument
	for i := 0; i < 20; i++ {
		docs = append(docs, testutils.TestDocument{
			Path:   fmt.Sprintf("/docs/%d.pdf", i),
			Format: "pdf",
			Data:   testutils.GenerateTestData(t, 64*1024, byte(i)),
			Fail:   i%5 == 4,
		})
	}
	csv := testutils.TestDocument{Path: "/docs/table.csv", Format: "csv", Data: []byte("a,b\n")}

	t.Log("Starting HTTP test server...")
	server := testutils.StartDocumentServer(t, append(docs, csv))

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "tpfetch-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	dir := t.TempDir()
	catalogPath := testutils.WriteCatalog(t, dir, server.URL, docs[:10], append(docs[10:], csv))
	report := filepath.Join(dir, "report.txt")

	t.Run("inspect", func(t *testing.T) {
		if code := runInspect([]string{"-catalog", catalogPath}); code != ExitSuccess {
			t.Fatalf("inspect failed with exit code %d", code)
		}
	})

	t.Run("fetch", func(t *testing.T) {
		code := runFetch([]string{
			"-catalog", catalogPath,
			"-storage", minio.BucketURL,
			"-report", report,
			"-formats", "pdf",
			"-workers", "4",
			"-snapshot-every", "5",
			"-poll-interval", "10ms",
		})
		if code != ExitSuccess {
			t.Fatalf("fetch failed with exit code %d", code)
		}
	})

	t.Run("verify", func(t *testing.T) {
		bucket, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bucket.Close()

		for i, d := range docs {
			key := fmt.Sprintf("rec%d_%d.pdf", i/10, i%10)
			got, err := bucket.ReadAll(ctx, key)
			if d.Fail {
				if err == nil {
					t.Errorf("%s: failed document should not be stored", key)
				}
				continue
			}
			if err != nil {
				t.Errorf("%s: %v", key, err)
				continue
			}
			if !bytes.Equal(got, d.Data) {
				t.Errorf("%s: content mismatch", key)
			}
		}
		// one request per requested document, failures included
		if got := server.Requests(); got != int64(len(docs)) {
			t.Errorf("expected %d requests, got %d", len(docs), got)
		}
		if ok, _ := bucket.Exists(ctx, "rec1_10.csv"); ok {
			t.Error("csv document should have been filtered out")
		}

		data, err := os.ReadFile(report)
		if err != nil {
			t.Fatalf("read report: %v", err)
		}
		for _, want := range []string{
			"Number of documents of requested formats: 20",
			"Number of documents downloaded: 16",
			"Number of documents failed to download: 4",
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("report missing %q:\n%s", want, data)
			}
		}
	})
}
