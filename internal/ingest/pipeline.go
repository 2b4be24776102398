package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"finetl/internal/config"
	"finetl/internal/infrastructure"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

// Pipeline drives the full extraction for one workbook: classification,
// header detection, per-type processing and the final rate merge. Sheets are
// processed sequentially in workbook order; a failing sheet is recorded and
// never aborts the run.
type Pipeline struct {
	cfg    *config.Config
	rules  *config.Rules
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to the global
// application logger.
func NewPipeline(cfg *config.Config, rules *config.Rules, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Pipeline{cfg: cfg, rules: rules, logger: logger}
}

// Options identifies the workbook being ingested.
type Options struct {
	ClientName   string
	ProjectTitle string
	SourceFile   string
}

// ResultSet is the complete output of one workbook run.
type ResultSet struct {
	RunID     string
	ProjectID string

	Sheets      []domain.SheetDescriptor
	Allocations []domain.AllocationRecord
	RateCards   []domain.RateCardEntry
	Actuals     []domain.GenericRow
	Costs       []domain.GenericRow
	Investments []domain.GenericRow
	Estimates   []domain.GenericRow
	Media       []domain.GenericRow

	Project  *domain.ProjectRecord
	Metadata *domain.MetadataRecord

	Costed    []domain.CostedAllocation
	Unmatched int

	Log []domain.ProcessingLogEntry
}

// Summary holds per-record-set counts for one run.
type Summary struct {
	Sheets      int
	Allocations int
	RateCards   int
	Actuals     int
	Costs       int
	Investments int
	Estimates   int
	Media       int
	Errors      int
	Skipped     int
	TotalHours  float64
}

// Summarize tallies the result set for logging and batch reporting.
func (rs *ResultSet) Summarize() Summary {
	s := Summary{
		Sheets:      len(rs.Sheets),
		Allocations: len(rs.Allocations),
		RateCards:   len(rs.RateCards),
		Actuals:     len(rs.Actuals),
		Costs:       len(rs.Costs),
		Investments: len(rs.Investments),
		Estimates:   len(rs.Estimates),
		Media:       len(rs.Media),
	}
	for _, e := range rs.Log {
		switch e.Status {
		case domain.StatusError:
			s.Errors++
		case domain.StatusSkipped:
			s.Skipped++
		}
	}
	for _, a := range rs.Allocations {
		s.TotalHours += a.Hours
	}
	return s
}

// ProcessWorkbook runs the pipeline over every sheet of wb.
func (p *Pipeline) ProcessWorkbook(ctx context.Context, wb workbook.Workbook, opts Options) (*ResultSet, error) {
	rs := &ResultSet{
		RunID:     uuid.New().String(),
		ProjectID: domain.ProjectID(opts.ClientName, opts.ProjectTitle, opts.SourceFile),
	}

	// Carry the run id in the context so the logging handler stamps it on
	// every record emitted during this run.
	ctx = infrastructure.WithRunID(ctx, rs.RunID)

	logger := p.logger.With("source_file", opts.SourceFile)
	logger.InfoContext(ctx, "starting workbook ingest",
		"client", opts.ClientName, "project", opts.ProjectTitle)

	for _, name := range wb.SheetNames() {
		p.processSheet(ctx, logger, wb, name, rs)
	}

	p.buildProject(rs, opts)

	merged := MergeRates(rs.Allocations, rs.RateCards)
	rs.Costed = merged.Costed
	rs.Unmatched = merged.Unmatched
	if rs.Unmatched > 0 {
		logger.WarnContext(ctx, "allocations without rate card match",
			"unmatched", rs.Unmatched, "total", len(rs.Costed))
	}

	sum := rs.Summarize()
	logger.InfoContext(ctx, "workbook ingest complete",
		"sheets", sum.Sheets,
		"allocations", sum.Allocations,
		"rate_entries", sum.RateCards,
		"total_hours", sum.TotalHours,
		"errors", sum.Errors,
		"skipped", sum.Skipped)

	return rs, nil
}

func (p *Pipeline) processSheet(ctx context.Context, logger *slog.Logger, wb workbook.Workbook, name string, rs *ResultSet) {
	sheetType := ClassifySheet(p.rules, name)
	log := logger.With("sheet", name, "type", string(sheetType))

	if !sheetType.IsData() {
		log.InfoContext(ctx, "skipping sheet")
		rs.Sheets = append(rs.Sheets, domain.SheetDescriptor{Name: name, Type: sheetType, HeaderRow: -1})
		rs.Log = append(rs.Log, domain.ProcessingLogEntry{
			Sheet:   name,
			Type:    sheetType,
			Status:  domain.StatusSkipped,
			Message: "sheet type not processed",
		})
		return
	}

	grid, err := wb.Grid(name)
	if err != nil {
		log.ErrorContext(ctx, "failed to read sheet", "error", err)
		rs.Sheets = append(rs.Sheets, domain.SheetDescriptor{Name: name, Type: sheetType, HeaderRow: -1})
		rs.Log = append(rs.Log, domain.ProcessingLogEntry{
			Sheet:   name,
			Type:    sheetType,
			Status:  domain.StatusError,
			Message: err.Error(),
		})
		return
	}

	headerRow := LocateHeaderRow(p.rules, grid, sheetType, p.cfg.Ingest.MaxHeaderScanRows)
	desc := domain.SheetDescriptor{
		Name:        name,
		Type:        sheetType,
		HeaderRow:   headerRow,
		RowCount:    grid.Rows(),
		ColumnCount: grid.Cols(),
	}

	if headerRow < 0 {
		log.WarnContext(ctx, "no header row detected")
		rs.Sheets = append(rs.Sheets, desc)
		rs.Log = append(rs.Log, domain.ProcessingLogEntry{
			Sheet:   name,
			Type:    sheetType,
			Status:  domain.StatusError,
			Message: "no header row detected",
		})
		return
	}

	result := p.dispatch(sheetType, grid, headerRow, rs.ProjectID, name)
	for i := range result.Allocations {
		result.Allocations[i].AllocationID = uuid.New().String()
	}

	for _, cd := range result.Columns {
		if !cd.IsPeriod && len(desc.SampleHeaders) < 8 {
			desc.SampleHeaders = append(desc.SampleHeaders, cd.NormalizedKey)
		}
	}
	rs.Sheets = append(rs.Sheets, desc)

	rs.Allocations = append(rs.Allocations, result.Allocations...)
	rs.RateCards = append(rs.RateCards, result.RateCards...)
	switch sheetType {
	case domain.SheetActuals:
		rs.Actuals = append(rs.Actuals, result.Rows...)
	case domain.SheetCosts:
		rs.Costs = append(rs.Costs, result.Rows...)
	case domain.SheetInvestmentLog:
		rs.Investments = append(rs.Investments, result.Rows...)
	case domain.SheetExternalEstimate:
		rs.Estimates = append(rs.Estimates, result.Rows...)
	case domain.SheetMedia:
		rs.Media = append(rs.Media, result.Rows...)
	}
	if result.Metadata != nil && rs.Metadata == nil {
		rs.Metadata = result.Metadata
	}

	entry := domain.ProcessingLogEntry{
		Sheet:    name,
		Type:     sheetType,
		Status:   domain.StatusSuccess,
		RowCount: result.RowCount,
	}
	if result.Degraded {
		entry.Message = "no period columns; kept dimension rows only"
	}
	rs.Log = append(rs.Log, entry)

	log.InfoContext(ctx, "processed sheet",
		"header_row", headerRow, "rows", result.RowCount, "degraded", result.Degraded)
}

func (p *Pipeline) dispatch(sheetType domain.SheetType, grid workbook.Grid, headerRow int, projectID, name string) SheetResult {
	switch sheetType {
	case domain.SheetPlan:
		return ProcessPlan(p.rules, p.cfg.Ingest, grid, headerRow, projectID, name)
	case domain.SheetRateCard:
		return ProcessRateCard(p.rules, p.cfg.Ingest, grid, headerRow, name)
	default:
		return ProcessGeneric(p.rules, p.cfg.Ingest, grid, headerRow, sheetType, projectID, name)
	}
}

// buildProject assembles the project summary from plan metadata, falling
// back to the caller-supplied identity for anything the sheet did not carry.
func (p *Pipeline) buildProject(rs *ResultSet, opts Options) {
	md := rs.Metadata
	if md == nil {
		md = domain.NewMetadataRecord()
	}

	pick := func(key, fallback string) string {
		if v, ok := md.Lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}
	num := func(key string) float64 {
		v, ok := md.Lookup(key)
		if !ok {
			return 0
		}
		f, _ := workbook.ParseCell(v).Float()
		return f
	}

	project := &domain.ProjectRecord{
		ProjectID:            rs.ProjectID,
		ClientName:           pick("client", opts.ClientName),
		ProjectTitle:         pick("project_title", opts.ProjectTitle),
		ProjectNumber:        pick("project_number", ""),
		Market:               pick("market", ""),
		BillingType:          pick("billing_type", ""),
		StartDate:            pick("start_date", ""),
		EndDate:              pick("end_date", ""),
		TotalProjectFee:      num("total_project_fee"),
		BillableLaborFees:    num("billable_labor_fees"),
		LaborCosts:           num("labor_costs"),
		InvestmentCosts:      num("investment_costs"),
		TotalHours:           num("total_hours"),
		EstimatedGrossMargin: num("estimated_gross_margin"),
		SourceFile:           opts.SourceFile,
	}

	for _, s := range rs.Sheets {
		if s.Type == domain.SheetPlan {
			project.SourceSheet = s.Name
			break
		}
	}

	if rs.Metadata != nil {
		if blob, err := json.Marshal(rs.Metadata); err == nil {
			project.SheetMetadata = string(blob)
		}
	}

	rs.Project = project
}
