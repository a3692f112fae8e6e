package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/transformer"
)

// runDirect is the staged-file strategy: one sequential pass transforms the
// whole extract into a local staging artifact, then a single bulk-load call
// hands that artifact to the store. No queue, no workers; the store ingests
// at its own full speed from a file it can stream.
//
// The artifact is hashed while it is written so reruns and support tickets
// can compare what was actually handed to the store.
func (imp *importer) runDirect(ctx context.Context) error {
	tmp, err := os.CreateTemp("", "courtimport-*.staging")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hasher := xxh3.New()
	bw := bufio.NewWriterSize(tmp, 1<<20)
	sw := storage.NewStagingWriter(io.MultiWriter(bw, hasher))

	rd := &Reader{
		Path:      imp.path,
		Delimiter: imp.cfg.Source.DelimiterRune(),
		Encoding:  imp.cfg.Source.Encoding,
		ChunkSize: imp.cfg.Runtime.ChunkSize,
	}
	rows, err := rd.Run(ctx, func(c Chunk) error {
		importedAt := time.Now()
		for _, rec := range c.Records {
			row := transformer.FromRecord(rec, importedAt)
			if err := sw.WriteRow(row.Values()); err != nil {
				return fmt.Errorf("stage row: %w", err)
			}
		}
		imp.stats.AddRead(int64(len(c.Records)))
		imp.stats.ChunkDone()
		return nil
	})
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush staging file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush staging file: %w", err)
	}

	size, _ := tmp.Seek(0, io.SeekEnd)
	log.Printf("%s: staging artifact rows=%d bytes=%d xxh3=%016x", imp.cfg.Job, rows, size, hasher.Sum64())

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind staging file: %w", err)
	}

	// The single load is the run's one "batch"; like worker flushes it runs
	// to completion even when the run is being cancelled.
	n, err := imp.repo.LoadFile(context.WithoutCancel(ctx), transformer.Columns, bufio.NewReaderSize(tmp, 1<<20))
	if err != nil {
		lerr := &storage.BulkLoadError{Table: imp.table, Rows: int(rows), Err: err}
		log.Printf("%s: %v", imp.cfg.Job, lerr)
		imp.stats.AddDropped(rows)
		return nil
	}
	imp.stats.AddImported(n)
	if n < rows {
		imp.stats.AddDropped(rows - n)
	}
	imp.stats.BatchFlushed()
	return nil
}
