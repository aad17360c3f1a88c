package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/config"
	tphttp "github.com/ssephillip/newsleak/internal/http"
)

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)

	catalogSrc := fs.String("catalog", "", "Catalog file or http(s) URL (required)")
	formats := fs.String("formats", "", "Comma-separated formats to count as requested (default: all)")
	userAgent := fs.String("user-agent", "", "User-Agent header for catalog requests")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: tpfetch inspect [options]

Load a catalog and print how many records and documents it holds, and
how many documents of each format. Nothing is downloaded.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *catalogSrc == "" {
		fmt.Fprintln(os.Stderr, "Error: -catalog is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	client := tphttp.NewClient(tphttp.Options{UserAgent: *userAgent})
	defer client.CloseIdleConnections()

	cat, err := catalog.NewProvider(*catalogSrc, nil, client).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCatalogError
	}

	printInspect(os.Stdout, cat, config.ParseFormats(*formats))
	return ExitSuccess
}

func printInspect(w io.Writer, cat catalog.Catalog, formats []string) {
	relevant := catalog.Filter(cat.Items, formats)

	fmt.Fprintf(w, "Records:             %d\n", cat.Stats.Records)
	fmt.Fprintf(w, "Ill-formed records:  %d\n", cat.Stats.IllFormed)
	fmt.Fprintf(w, "Duplicate records:   %d\n", cat.Stats.Duplicates)
	fmt.Fprintf(w, "Documents:           %d\n", cat.Stats.Items)
	fmt.Fprintf(w, "Requested formats:   %d\n", len(relevant))

	counts := catalog.FormatCounts(cat.Items)
	names := make([]string, 0, len(counts))
	for f := range counts {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintln(w)
	fmt.Fprintln(w, "FORMAT      DOCUMENTS")
	for _, f := range names {
		label := f
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "%-10s  %9d\n", label, counts[f])
	}
}
