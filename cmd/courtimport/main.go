// Command courtimport loads yearly court-decision extracts into per-year
// tables of a relational store. It runs one year or a span of years, picks
// the load strategy per config, and pushes run metrics to a Pushgateway when
// one is configured.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/config"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ingest"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/metrics"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		year              int
		startYear         int
		endYear           int
		file              string
		dataDir           string
		dsn               string
		storageKind       string
		tablePrefix       string
		workers           int
		batchSize         int
		chunkSize         int
		strategy          string
		delimiter         string
		encoding          string
		skipExisting      bool
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (flags override file values)")
	flag.IntVar(&year, "year", 0, "single year to import")
	flag.IntVar(&startYear, "start-year", 0, "first year of a multi-year sweep")
	flag.IntVar(&endYear, "end-year", 0, "last year of a multi-year sweep (inclusive)")
	flag.StringVar(&file, "file", "", "explicit source file (overrides data dir + year naming)")
	flag.StringVar(&dataDir, "data-dir", "", "directory holding yearly extracts (documents_<YY>.csv)")
	flag.StringVar(&dsn, "dsn", "", "storage connection string")
	flag.StringVar(&storageKind, "storage", "", "storage backend kind (postgres, mysql, mssql, sqlite)")
	flag.StringVar(&tablePrefix, "table-prefix", "", "per-year table name prefix")
	flag.IntVar(&workers, "workers", 0, "concurrent load workers")
	flag.IntVar(&batchSize, "batch-size", 0, "rows per bulk-load call")
	flag.IntVar(&chunkSize, "chunk-size", 0, "source rows per queue chunk")
	flag.StringVar(&strategy, "strategy", "", "load strategy (parallel or direct)")
	flag.StringVar(&delimiter, "delimiter", "", "source field delimiter (tab or comma)")
	flag.StringVar(&encoding, "encoding", "", "source encoding (utf-8 or windows-1251)")
	flag.BoolVar(&skipExisting, "skip-existing", false, "skip years whose table already exists")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	run := config.Run{}
	if cfgPath != "" {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&run); err != nil {
			f.Close()
			fatalf("decode config: %v", err)
		}
		f.Close()
	}

	// Flags override whatever the file carried.
	if file != "" {
		run.Source.Path = file
	}
	if dataDir != "" {
		run.Source.DataDir = dataDir
	}
	if delimiter != "" {
		run.Source.Delimiter = delimiter
	}
	if encoding != "" {
		run.Source.Encoding = encoding
	}
	if dsn != "" {
		run.Storage.DSN = dsn
	}
	if storageKind != "" {
		run.Storage.Kind = storageKind
	}
	if tablePrefix != "" {
		run.Storage.TablePrefix = tablePrefix
	}
	if strategy != "" {
		run.Runtime.Strategy = strategy
	}
	if workers > 0 {
		run.Runtime.Workers = workers
	}
	if batchSize > 0 {
		run.Runtime.BatchSize = batchSize
	}
	if chunkSize > 0 {
		run.Runtime.ChunkSize = chunkSize
	}
	run = run.WithDefaults()

	issues := config.ValidateRun(run)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	years, err := resolveYears(year, startYear, endYear)
	if err != nil {
		fatalf("%v", err)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(run.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, run.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	exitCode := 0
	for _, y := range years {
		if err := ctx.Err(); err != nil {
			log.Printf("interrupted before year %d", y)
			exitCode = 1
			break
		}

		if skipExisting {
			exists, err := ingest.TableExists(ctx, run, y)
			if err != nil {
				log.Printf("year %d: existence check: %v", y, err)
			} else if exists {
				log.Printf("year %d: table %s exists, skipping", y, run.Storage.TableName(y))
				continue
			}
		}

		sum, err := ingest.Run(ctx, run, y)
		if err != nil {
			var srcErr *ingest.SourceReadError
			if errors.As(err, &srcErr) {
				log.Printf("year %d: %v", y, err)
			} else {
				log.Printf("year %d failed: %v", y, err)
			}
			log.Printf("year %d: %s", y, sum)
			exitCode = 1
			continue
		}

		log.Printf("year %d: %s", y, sum)
		for _, ie := range sum.Finalize.IndexErrs {
			log.Printf("year %d: %v", y, &ie)
		}
		if sum.Finalize.DurabilityErr != nil {
			log.Printf("year %d: WARNING: %v", y, sum.Finalize.DurabilityErr)
		}
		if sum.Finalize.StatsErr != nil {
			log.Printf("year %d: %v", y, sum.Finalize.StatsErr)
		}
		if sum.Partial() && exitCode == 0 {
			exitCode = 2
		}
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	os.Exit(exitCode)
}

// resolveYears turns the year flags into the ordered list of years to import.
func resolveYears(year, startYear, endYear int) ([]int, error) {
	switch {
	case year != 0:
		return []int{year}, nil
	case startYear != 0 && endYear != 0:
		if endYear < startYear {
			return nil, fmt.Errorf("end-year %d precedes start-year %d", endYear, startYear)
		}
		years := make([]int, 0, endYear-startYear+1)
		for y := startYear; y <= endYear; y++ {
			years = append(years, y)
		}
		return years, nil
	default:
		return nil, fmt.Errorf("either -year or -start-year and -end-year must be set")
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
