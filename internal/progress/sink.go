package progress

import (
	"fmt"
	"os"
)

// TempSuffix is appended to the report path to form the interim report path.
const TempSuffix = "--temp.txt"

// Sink receives snapshots.
type Sink interface {
	Write(s Snapshot) error
}

// FileSink appends snapshots to a local file, creating it if needed.
type FileSink struct {
	Path string
}

// Write implements Sink.
func (s *FileSink) Write(snap Snapshot) error {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}

	if _, err := snap.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

// Sinks returns the final and interim sinks for a report path.
func Sinks(reportPath string) (final, interim *FileSink) {
	return &FileSink{Path: reportPath}, &FileSink{Path: reportPath + TempSuffix}
}
