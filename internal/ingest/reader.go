// Package ingest drives the import of one yearly court-decision extract into
// one target table. It owns the read → transform → bulk-load pipeline, the
// per-run accounting, and the two load strategies (parallel worker pool and
// direct staged-file).
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/transformer"
)

// SourceReadError is a fatal failure while opening or reading the source
// extract. Unlike batch-load failures it aborts the run: a torn read means
// the accounting can no longer be trusted.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string { return fmt.Sprintf("read source %s: %v", e.Path, e.Err) }
func (e *SourceReadError) Unwrap() error { return e.Err }

// Chunk is one reader-emitted unit of work: a run of consecutive source rows,
// already remapped onto the canonical column order.
type Chunk struct {
	Index   int
	Records []transformer.Record
}

// Reader streams a delimited extract as chunks of canonical records.
type Reader struct {
	Path      string
	Delimiter rune   // field delimiter, usually '\t'
	Encoding  string // "utf-8" or "windows-1251"
	ChunkSize int    // rows per emitted chunk
}

// Run reads the whole file, calling emit once per chunk in file order, and
// returns the number of data rows read. Any I/O or parse failure is returned
// as a *SourceReadError; an error from emit is passed through unchanged.
func (r *Reader) Run(ctx context.Context, emit func(Chunk) error) (int64, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return 0, &SourceReadError{Path: r.Path, Err: err}
	}
	defer f.Close()

	var src io.Reader = bufio.NewReaderSize(f, 1<<20)
	if r.Encoding == "windows-1251" {
		src = transform.NewReader(src, charmap.Windows1251.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = r.Delimiter
	// The extracts carry unescaped quotes inside free-text fields and the
	// occasional short row; both must pass through to the transformer.
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, &SourceReadError{Path: r.Path, Err: errors.New("empty source file")}
		}
		return 0, &SourceReadError{Path: r.Path, Err: err}
	}
	colMap, err := mapHeader(header)
	if err != nil {
		return 0, &SourceReadError{Path: r.Path, Err: err}
	}

	chunkSize := r.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}

	var (
		rows    int64
		idx     int
		records = make([]transformer.Record, 0, chunkSize)
	)
	flush := func() error {
		if len(records) == 0 {
			return nil
		}
		c := Chunk{Index: idx, Records: records}
		idx++
		records = make([]transformer.Record, 0, chunkSize)
		return emit(c)
	}

	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		raw, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, &SourceReadError{Path: r.Path, Err: err}
		}

		rec := make(transformer.Record, len(colMap))
		for i, pos := range colMap {
			if pos >= 0 && pos < len(raw) {
				rec[i] = raw[pos]
			}
		}
		records = append(records, rec)
		rows++

		if len(records) >= chunkSize {
			if err := flush(); err != nil {
				return rows, err
			}
		}
	}
	if err := flush(); err != nil {
		return rows, err
	}
	return rows, nil
}

// mapHeader maps the file's header onto transformer.SourceColumns. The result
// has one entry per canonical column holding the source field position, or -1
// when the file lacks that column (older extracts drop trailing columns).
func mapHeader(header []string) ([]int, error) {
	byName := make(map[string]int, len(header))
	for pos, h := range header {
		byName[normalizeHeader(h)] = pos
	}

	colMap := make([]int, len(transformer.SourceColumns))
	matched := 0
	for i, name := range transformer.SourceColumns {
		pos, ok := byName[name]
		if !ok {
			pos = -1
		} else {
			matched++
		}
		colMap[i] = pos
	}
	if matched == 0 {
		return nil, fmt.Errorf("unrecognized header %q", strings.Join(header, ","))
	}
	return colMap, nil
}

// normalizeHeader strips a UTF-8 BOM, surrounding space, and case from one
// header cell.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// CountRows counts data rows (newlines minus the header line) without parsing,
// so progress can be reported as a percentage. Best-effort: callers treat an
// error as "total unknown".
func CountRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var (
		buf   = make([]byte, 1<<20)
		lines int64
		last  byte
		seen  bool
	)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			seen = true
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if !seen {
		return 0, nil
	}
	if last != '\n' {
		lines++ // final line without trailing newline
	}
	if lines > 0 {
		lines-- // header
	}
	return lines, nil
}
