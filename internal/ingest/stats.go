package ingest

import "sync"

// Stats is the shared run accounting, written by the reader and workers and
// read by the progress monitor. All access goes through the mutex.
//
// Invariant at the end of a run: RowsImported + RowsDropped == RowsRead.
// Every row handed to a worker ends up in exactly one of the two buckets.
type Stats struct {
	mu       sync.Mutex
	read     int64
	imported int64
	dropped  int64
	chunks   int64
	batches  int64
}

// Snapshot is a consistent point-in-time copy of the counters.
type Snapshot struct {
	RowsRead       int64
	RowsImported   int64
	RowsDropped    int64
	ChunksDone     int64
	BatchesFlushed int64
}

func (s *Stats) AddRead(n int64) {
	s.mu.Lock()
	s.read += n
	s.mu.Unlock()
}

func (s *Stats) AddImported(n int64) {
	s.mu.Lock()
	s.imported += n
	s.mu.Unlock()
}

func (s *Stats) AddDropped(n int64) {
	s.mu.Lock()
	s.dropped += n
	s.mu.Unlock()
}

func (s *Stats) ChunkDone() {
	s.mu.Lock()
	s.chunks++
	s.mu.Unlock()
}

func (s *Stats) BatchFlushed() {
	s.mu.Lock()
	s.batches++
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of all counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		RowsRead:       s.read,
		RowsImported:   s.imported,
		RowsDropped:    s.dropped,
		ChunksDone:     s.chunks,
		BatchesFlushed: s.batches,
	}
}
