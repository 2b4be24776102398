package domain

// SheetType is the semantic role inferred for a worksheet from its name.
type SheetType string

const (
	SheetPlan             SheetType = "plan"
	SheetRateCard         SheetType = "rate_card"
	SheetActuals          SheetType = "actuals"
	SheetCosts            SheetType = "costs"
	SheetInvestmentLog    SheetType = "investment_log"
	SheetExternalEstimate SheetType = "external_estimate"
	SheetMedia            SheetType = "media"
	SheetInfo             SheetType = "info"
	SheetMapping          SheetType = "mapping"
	SheetSkip             SheetType = "skip"
	SheetUnknown          SheetType = "unknown"
)

// IsData reports whether sheets of this type carry rows worth processing.
func (t SheetType) IsData() bool {
	switch t {
	case SheetPlan, SheetRateCard, SheetActuals, SheetCosts,
		SheetInvestmentLog, SheetExternalEstimate, SheetMedia:
		return true
	}
	return false
}

// SheetDescriptor captures what classification and header detection learned
// about one worksheet. HeaderRow is -1 when no header row was detected.
type SheetDescriptor struct {
	Name          string    `json:"name"`
	Type          SheetType `json:"type"`
	HeaderRow     int       `json:"header_row"`
	RowCount      int       `json:"row_count"`
	ColumnCount   int       `json:"column_count"`
	SampleHeaders []string  `json:"sample_headers,omitempty"`
}

// ColumnDescriptor maps one observed column label to its canonical key.
// NormalizedKey is unique within a sheet after deduplication. PeriodIndex is
// the week number for period columns and zero otherwise.
type ColumnDescriptor struct {
	OriginalLabel string `json:"original_label"`
	NormalizedKey string `json:"normalized_key"`
	IsPeriod      bool   `json:"is_period"`
	PeriodIndex   int    `json:"period_index,omitempty"`
}

// ProcessingStatus is the outcome recorded for one sheet.
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusError   ProcessingStatus = "error"
	StatusSkipped ProcessingStatus = "skipped"
)

// ProcessingLogEntry is emitted once per sheet regardless of outcome, so the
// log is a complete projection of the run.
type ProcessingLogEntry struct {
	Sheet    string           `json:"sheet"`
	Type     SheetType        `json:"type"`
	Status   ProcessingStatus `json:"status"`
	RowCount int              `json:"row_count,omitempty"`
	Message  string           `json:"message,omitempty"`
}
