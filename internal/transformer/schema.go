package transformer

import "github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"

// SourceColumns is the canonical header of the yearly registry extract, in
// publication order. The reader maps whatever header the file carries onto
// this order; records are positional slices aligned to it.
var SourceColumns = []string{
	"doc_id",
	"court_code",
	"judgment_code",
	"justice_kind",
	"category_code",
	"cause_num",
	"adjudication_date",
	"receipt_date",
	"judge",
	"doc_url",
	"status",
	"date_publ",
}

// Indices into a Record, aligned with SourceColumns.
const (
	colDocID = iota
	colCourtCode
	colJudgmentCode
	colJusticeKind
	colCategoryCode
	colCauseNum
	colAdjudicationDate
	colReceiptDate
	colJudge
	colDocURL
	colStatus
	colDatePubl
)

// Columns is the ordered destination column list used for every bulk-load
// call. The table's surrogate id column is deliberately absent so the store
// populates it. The four *_name columns and resolution_text are loaded empty
// here and filled by the downstream extraction service.
var Columns = []string{
	"doc_id",
	"court_code",
	"judgment_code",
	"justice_kind",
	"category_code",
	"cause_num",
	"adjudication_date",
	"receipt_date",
	"judge",
	"doc_url",
	"status",
	"date_publ",
	"court_name",
	"judgment_name",
	"justice_kind_name",
	"category_name",
	"resolution_text",
	"import_date",
}

// Declared maximum widths of the text columns, in characters. Values longer
// than the declared width are right-truncated before load; the store never
// sees an overflow.
const (
	MaxDocID        = 50
	MaxCourtCode    = 20
	MaxJudgmentCode = 10
	MaxJusticeKind  = 10
	MaxCategoryCode = 20
	MaxCauseNum     = 255
	MaxJudge        = 500
	MaxStatus       = 10
	MaxName         = 500
)

// TableDef returns the backend-agnostic definition of a per-year decisions
// table. SQL types are generic; each storage backend maps them onto its
// dialect when rendering DDL.
func TableDef(table string) ddl.TableDef {
	return ddl.TableDef{
		FQN: table,
		Columns: []ddl.ColumnDef{
			{Name: "id", SQLType: "serial", PrimaryKey: true},
			{Name: "doc_id", SQLType: "varchar(50)"},
			{Name: "court_code", SQLType: "varchar(20)", Nullable: true},
			{Name: "judgment_code", SQLType: "varchar(10)", Nullable: true},
			{Name: "justice_kind", SQLType: "varchar(10)", Nullable: true},
			{Name: "category_code", SQLType: "varchar(20)", Nullable: true},
			{Name: "cause_num", SQLType: "varchar(255)", Nullable: true},
			{Name: "adjudication_date", SQLType: "timestamp", Nullable: true},
			{Name: "receipt_date", SQLType: "timestamp", Nullable: true},
			{Name: "judge", SQLType: "varchar(500)", Nullable: true},
			{Name: "doc_url", SQLType: "text", Nullable: true},
			{Name: "status", SQLType: "varchar(10)", Nullable: true},
			{Name: "date_publ", SQLType: "timestamp", Nullable: true},
			{Name: "court_name", SQLType: "varchar(500)", Nullable: true},
			{Name: "judgment_name", SQLType: "varchar(200)", Nullable: true},
			{Name: "justice_kind_name", SQLType: "varchar(200)", Nullable: true},
			{Name: "category_name", SQLType: "varchar(200)", Nullable: true},
			{Name: "resolution_text", SQLType: "text", Nullable: true},
			{Name: "import_date", SQLType: "timestamp", Nullable: true},
		},
		Indexes: Indexes(table),
	}
}

// Indexes returns the index set built after the load phase. The doc_id index
// is the natural-key uniqueness constraint; the rest serve the common lookup
// paths of the case-search views.
func Indexes(table string) []ddl.IndexDef {
	return []ddl.IndexDef{
		{Name: "idx_" + table + "_doc_id", Columns: []string{"doc_id"}, Unique: true},
		{Name: "idx_" + table + "_cause_num", Columns: []string{"cause_num"}},
		{Name: "idx_" + table + "_court_code", Columns: []string{"court_code"}},
		{Name: "idx_" + table + "_adjudication_date", Columns: []string{"adjudication_date"}},
		{Name: "idx_" + table + "_case_search", Columns: []string{"cause_num", "court_code", "adjudication_date"}},
	}
}
