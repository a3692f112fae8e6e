package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/config"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/metrics"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/transformer"
)

// importer carries the per-run state shared by the strategies and workers.
type importer struct {
	cfg   config.Run
	year  int
	table string
	path  string
	repo  storage.Repository
	stats *Stats
}

// SourcePath resolves the extract file for a year: an explicit source.path
// wins, otherwise the year-derived name under data_dir.
func SourcePath(cfg config.Run, year int) string {
	if cfg.Source.Path != "" {
		return cfg.Source.Path
	}
	return filepath.Join(cfg.Source.DataDir, config.SourceFileName(year))
}

// TableExists reports whether the per-year table is already present in the
// target store. The multi-year driver uses it to honor skip-existing without
// starting a run.
func TableExists(ctx context.Context, cfg config.Run, year int) (bool, error) {
	cfg = cfg.WithDefaults()
	table := cfg.Storage.TableName(year)

	repo, err := storage.New(ctx, storage.Config{
		Kind:    cfg.Storage.Kind,
		DSN:     cfg.Storage.DSN,
		Table:   table,
		Columns: transformer.Columns,
	})
	if err != nil {
		return false, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	lc, err := storage.LifecycleFor(cfg.Storage.Kind)
	if err != nil {
		return false, err
	}
	return lc.TableExists(ctx, repo, table)
}

// Run imports one year's extract into its per-year table and returns the run
// summary. The returned error is fatal (source unreadable, store unreachable,
// table creation failed); batch-level load failures are absorbed into the
// summary's dropped count instead.
//
// Finalize always runs once the table exists, even after a fatal mid-load
// error, so a partially loaded table is never left in its relaxed-durability
// state.
func Run(ctx context.Context, cfg config.Run, year int) (Summary, error) {
	cfg = cfg.WithDefaults()

	imp := &importer{
		cfg:   cfg,
		year:  year,
		table: cfg.Storage.TableName(year),
		path:  SourcePath(cfg, year),
		stats: &Stats{},
	}
	sum := Summary{Year: year, Table: imp.table, Strategy: cfg.Runtime.Strategy}

	repo, err := storage.New(ctx, storage.Config{
		Kind:    cfg.Storage.Kind,
		DSN:     cfg.Storage.DSN,
		Table:   imp.table,
		Columns: transformer.Columns,
	})
	if err != nil {
		return sum, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()
	imp.repo = repo

	lc, err := storage.LifecycleFor(cfg.Storage.Kind)
	if err != nil {
		return sum, err
	}

	// An unopenable source aborts before any table mutation; only mid-stream
	// failures leave a table behind (and still get finalized below).
	if f, err := os.Open(imp.path); err != nil {
		return sum, &SourceReadError{Path: imp.path, Err: err}
	} else {
		f.Close()
	}

	def := transformer.TableDef(imp.table)
	t0 := time.Now()
	err = lc.EnsureTable(ctx, repo, def)
	metrics.RecordPhase(cfg.Job, "create_table", err, time.Since(t0))
	if err != nil {
		return sum, err
	}

	total, cntErr := CountRows(imp.path)
	if cntErr != nil {
		log.Printf("%s: pre-count %s: %v", cfg.Job, imp.path, cntErr)
		total = 0
	}
	log.Printf("%s: year=%d table=%s source=%s rows≈%s strategy=%s workers=%d batch=%d chunk=%d",
		cfg.Job, year, imp.table, imp.path, humanComma(total),
		cfg.Runtime.Strategy, cfg.Runtime.Workers, cfg.Runtime.BatchSize, cfg.Runtime.ChunkSize)

	mon := newMonitor(cfg.Job, imp.stats, total, time.Duration(cfg.Runtime.ProgressSeconds)*time.Second)
	mon.Start()

	start := time.Now()
	var loadErr error
	switch cfg.Runtime.Strategy {
	case config.StrategyDirect:
		loadErr = imp.runDirect(ctx)
	default:
		loadErr = imp.runParallel(ctx)
	}
	loadDur := time.Since(start)
	mon.Stop()
	metrics.RecordPhase(cfg.Job, "load", loadErr, loadDur)

	t1 := time.Now()
	rep := lc.Finalize(ctx, repo, def)
	var finErr error
	if !rep.OK() {
		finErr = fmt.Errorf("finalize incomplete")
	}
	metrics.RecordPhase(cfg.Job, "finalize", finErr, time.Since(t1))

	snap := imp.stats.Snapshot()
	sum.RowsRead = snap.RowsRead
	sum.RowsImported = snap.RowsImported
	sum.RowsDropped = snap.RowsDropped
	sum.Batches = snap.BatchesFlushed
	sum.Elapsed = time.Since(start)
	sum.Finalize = rep

	metrics.RecordRows(cfg.Job, "read", snap.RowsRead)
	metrics.RecordRows(cfg.Job, "imported", snap.RowsImported)
	metrics.RecordRows(cfg.Job, "dropped", snap.RowsDropped)
	metrics.RecordBatches(cfg.Job, snap.BatchesFlushed)

	return sum, loadErr
}

// runParallel is the chunked strategy: one reader goroutine feeds a bounded
// queue of chunks, a pool of workers drains it. Closing the queue is the
// shutdown signal; there is no separate sentinel value.
func (imp *importer) runParallel(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan Chunk, imp.cfg.Runtime.QueueDepth)

	g.Go(func() error {
		defer close(queue)
		rd := &Reader{
			Path:      imp.path,
			Delimiter: imp.cfg.Source.DelimiterRune(),
			Encoding:  imp.cfg.Source.Encoding,
			ChunkSize: imp.cfg.Runtime.ChunkSize,
		}
		_, err := rd.Run(ctx, func(c Chunk) error {
			select {
			case queue <- c:
				// A row counts as read once its chunk is handed off; rows
				// read but never enqueued (cancel mid-run) stay uncounted so
				// imported+dropped==read holds.
				imp.stats.AddRead(int64(len(c.Records)))
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		return err
	})

	for i := 0; i < imp.cfg.Runtime.Workers; i++ {
		id := i
		g.Go(func() error { return imp.worker(ctx, id, queue) })
	}
	return g.Wait()
}

// worker drains chunks, transforms rows, and flushes fixed-size batches. The
// remainder flushes at the end of each chunk, so a batch never spans two
// chunks and row order inside a batch is source order within its chunk. A
// failed batch is dropped and logged, never fatal: one poisoned batch must
// not abandon the other 99% of a multi-million-row year.
func (imp *importer) worker(ctx context.Context, id int, queue <-chan Chunk) error {
	batchSize := imp.cfg.Runtime.BatchSize
	batch := make([][]any, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		n := int64(len(batch))
		t0 := time.Now()
		// An in-flight batch always completes, even when the run is being
		// cancelled: a half-applied bulk load would break the accounting.
		copied, err := imp.repo.CopyFrom(context.WithoutCancel(ctx), transformer.Columns, batch)
		if err != nil {
			lerr := &storage.BulkLoadError{Table: imp.table, Rows: len(batch), Err: err}
			log.Printf("%s: worker %d: %v", imp.cfg.Job, id, lerr)
			imp.stats.AddDropped(n)
		} else {
			imp.stats.AddImported(copied)
			if copied < n {
				imp.stats.AddDropped(n - copied)
			}
			imp.stats.BatchFlushed()
		}
		metrics.RecordPhase(imp.cfg.Job, "load_batch", err, time.Since(t0))
		batch = batch[:0]
	}

	for chunk := range queue {
		importedAt := time.Now()
		for _, rec := range chunk.Records {
			row := transformer.FromRecord(rec, importedAt)
			batch = append(batch, row.Values())
			if len(batch) >= batchSize {
				flush()
			}
		}
		flush()
		imp.stats.ChunkDone()
	}
	return nil
}

func humanComma(n int64) string {
	if n <= 0 {
		return "?"
	}
	return humanize.Comma(n)
}
