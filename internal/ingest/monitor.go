package ingest

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// monitor logs a periodic progress line while the load phase runs. It reads
// the shared Stats under its lock and never blocks the workers.
type monitor struct {
	job   string
	stats *Stats
	total int64 // expected data rows, 0 when unknown
	every time.Duration
	stop  chan struct{}
	done  chan struct{}
}

func newMonitor(job string, stats *Stats, total int64, every time.Duration) *monitor {
	return &monitor{
		job:   job,
		stats: stats,
		total: total,
		every: every,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the reporting goroutine.
func (m *monitor) Start() {
	go m.loop()
}

// Stop halts reporting and waits for the goroutine to exit. Safe to call once.
func (m *monitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.report(time.Since(start))
		}
	}
}

func (m *monitor) report(elapsed time.Duration) {
	snap := m.stats.Snapshot()

	pct := ""
	if m.total > 0 {
		pct = fmt.Sprintf(" (%.1f%%)", 100*float64(snap.RowsRead)/float64(m.total))
	}
	rate := int64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = int64(float64(snap.RowsImported) / secs)
	}
	log.Printf("%s: progress read=%s%s imported=%s dropped=%s chunks=%d batches=%d elapsed=%s rate=%s rows/s",
		m.job,
		humanize.Comma(snap.RowsRead), pct,
		humanize.Comma(snap.RowsImported),
		humanize.Comma(snap.RowsDropped),
		snap.ChunksDone,
		snap.BatchesFlushed,
		elapsed.Round(time.Second),
		humanize.Comma(rate),
	)
}
