// Package config defines configuration structures for the tpfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (TPFETCH_ prefix)
//   - YAML configuration file
//
// Flags override the environment, which overrides the file.
//
// # Structure
//
//	type Config struct {
//	    Storage       string        // bucket URL or local directory
//	    Catalog       string        // catalog file or http(s) URL
//	    Report        string        // final report path
//	    Formats       []string      // allow-list, empty means all
//	    Quota         int           // 0 means the whole catalog
//	    Workers       int
//	    PollInterval  time.Duration
//	    SnapshotEvery int
//	    FetchTimeout  time.Duration
//	    RateLimit     float64       // fetches per second, 0 means unlimited
//	    UserAgent     string
//	    Progress      bool
//	    TUI           bool
//	}
//
// # File format
//
//	storage: /data/transparenz
//	catalog: https://example.org/catalog.json
//	report: /data/stats.txt
//	formats: pdf, html
//	quota: 10000
//	workers: 32
//	fetch_timeout: 10m
package config
