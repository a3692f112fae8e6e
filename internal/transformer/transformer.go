// Package transformer maps raw registry-extract records onto typed rows ready
// for bulk load.
//
// The mapping is pure and fail-soft: malformed field values degrade to NULL
// or truncated text instead of failing the row. The registry extracts are
// noisy (mixed date shapes, oversized free-text fields, missing columns in
// older years) and per-row rejection would stall multi-million-row loads for
// data that is still usable.
package transformer

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Record is one raw source line, positionally aligned to SourceColumns.
// Missing trailing fields are simply absent; Get treats them as empty.
type Record []string

// Get returns the i-th field or "" when the record is short.
func (r Record) Get(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Row is the transformed record. Date fields are nil when the source value
// was empty or unparseable. ImportDate is stamped with the load time of the
// batch, not anything carried by the source row.
type Row struct {
	DocID            string
	CourtCode        string
	JudgmentCode     string
	JusticeKind      string
	CategoryCode     string
	CauseNum         string
	AdjudicationDate *time.Time
	ReceiptDate      *time.Time
	Judge            string
	DocURL           string
	Status           string
	DatePubl         *time.Time
	ImportDate       time.Time
}

// FromRecord converts one raw record into a Row. importedAt becomes the
// row's ingestion timestamp.
func FromRecord(rec Record, importedAt time.Time) Row {
	return Row{
		DocID:            Truncate(strings.TrimSpace(rec.Get(colDocID)), MaxDocID),
		CourtCode:        Truncate(strings.TrimSpace(rec.Get(colCourtCode)), MaxCourtCode),
		JudgmentCode:     Truncate(strings.TrimSpace(rec.Get(colJudgmentCode)), MaxJudgmentCode),
		JusticeKind:      Truncate(strings.TrimSpace(rec.Get(colJusticeKind)), MaxJusticeKind),
		CategoryCode:     Truncate(strings.TrimSpace(rec.Get(colCategoryCode)), MaxCategoryCode),
		CauseNum:         Truncate(strings.TrimSpace(rec.Get(colCauseNum)), MaxCauseNum),
		AdjudicationDate: ParseDate(rec.Get(colAdjudicationDate)),
		ReceiptDate:      ParseDate(rec.Get(colReceiptDate)),
		Judge:            Truncate(strings.TrimSpace(rec.Get(colJudge)), MaxJudge),
		DocURL:           strings.TrimSpace(rec.Get(colDocURL)),
		Status:           Truncate(strings.TrimSpace(rec.Get(colStatus)), MaxStatus),
		DatePubl:         ParseDate(rec.Get(colDatePubl)),
		ImportDate:       importedAt,
	}
}

// Values returns the row as a positional slice aligned to Columns, suitable
// for a bulk-load call. Nil dates stay nil so the store records NULL. The
// four display-name columns and resolution_text are always empty strings;
// the downstream extraction service fills them in place.
func (r Row) Values() []any {
	return []any{
		r.DocID,
		r.CourtCode,
		r.JudgmentCode,
		r.JusticeKind,
		r.CategoryCode,
		r.CauseNum,
		timeOrNil(r.AdjudicationDate),
		timeOrNil(r.ReceiptDate),
		r.Judge,
		r.DocURL,
		r.Status,
		timeOrNil(r.DatePubl),
		"", // court_name
		"", // judgment_name
		"", // justice_kind_name
		"", // category_name
		"", // resolution_text
		r.ImportDate,
	}
}

// timeOrNil converts a *time.Time into an any that is either a concrete
// time.Time or untyped nil. Passing a typed nil pointer through []any would
// make drivers encode it as a non-NULL zero value.
func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// Truncate right-truncates s to at most max characters. Truncation counts
// runes, not bytes: the extracts are Cyrillic-heavy and a byte cut would
// split a UTF-8 sequence while also halving the allowed width.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Date layouts accepted by ParseDate, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a registry date value. Accepted shapes:
//
//	"2024-01-15 00:00:00+02"  (timestamp with zone suffix; suffix dropped)
//	"2024-01-15 00:00:00"
//	"2024-01-15"
//
// Anything else, including an empty value, yields nil. Parse failure is
// silent: a bad date must not reject the row.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Strip a trailing zone offset ("+02", "+0200"). The registry stores
	// local Kyiv timestamps; the offset carries no extra information.
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	if len(s) > 19 {
		s = s[:19]
	}
	for _, layout := range dateLayouts {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return &t
		}
	}
	return nil
}
