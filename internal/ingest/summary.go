package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// Summary is the final accounting of one year's import.
type Summary struct {
	Year     int
	Table    string
	Strategy string

	RowsRead     int64
	RowsImported int64
	RowsDropped  int64
	Batches      int64

	Elapsed  time.Duration
	Finalize storage.FinalizeReport
}

// Partial reports whether the run completed with losses: any dropped rows or
// any failed finalize step.
func (s Summary) Partial() bool {
	return s.RowsDropped > 0 || !s.Finalize.OK()
}

// String renders the one-line run summary logged at the end of a year.
func (s Summary) String() string {
	rate := int64(0)
	if secs := s.Elapsed.Seconds(); secs > 0 {
		rate = int64(float64(s.RowsImported) / secs)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "table=%s strategy=%s read=%s imported=%s dropped=%s batches=%d elapsed=%s rate=%s rows/s",
		s.Table,
		s.Strategy,
		humanize.Comma(s.RowsRead),
		humanize.Comma(s.RowsImported),
		humanize.Comma(s.RowsDropped),
		s.Batches,
		s.Elapsed.Round(time.Second),
		humanize.Comma(rate),
	)
	if s.Partial() {
		sb.WriteString(" PARTIAL")
	}
	return sb.String()
}
