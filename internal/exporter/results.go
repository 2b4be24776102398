package exporter

import (
	"fmt"
	"os"
	"strconv"

	"finetl/internal/ingest"
	"finetl/pkg/contracts/domain"
)

// Canonical output file names, one per record stream.
const (
	AllocationsFile   = "allocations.csv"
	RateCardsFile     = "rate_cards.csv"
	ActualsFile       = "actuals.csv"
	CostsFile         = "costs.csv"
	InvestmentsFile   = "investment_log.csv"
	EstimatesFile     = "external_estimates.csv"
	MediaFile         = "media.csv"
	ProjectsFile      = "projects.csv"
	ProcessingLogFile = "processing_log.csv"
)

// ExportResultSet writes every populated stream of a run to its canonical
// CSV file. Empty streams produce no file; the processing log is always
// written.
func (w *CSVWriter) ExportResultSet(rs *ingest.ResultSet) error {
	if len(rs.Costed) > 0 {
		if err := w.writeAllocations(rs.Costed); err != nil {
			return fmt.Errorf("export allocations: %w", err)
		}
	}
	if len(rs.RateCards) > 0 {
		if err := w.writeRateCards(rs.RateCards); err != nil {
			return fmt.Errorf("export rate cards: %w", err)
		}
	}

	generic := []struct {
		file string
		rows []domain.GenericRow
	}{
		{ActualsFile, rs.Actuals},
		{CostsFile, rs.Costs},
		{InvestmentsFile, rs.Investments},
		{EstimatesFile, rs.Estimates},
		{MediaFile, rs.Media},
	}
	for _, g := range generic {
		if len(g.rows) == 0 {
			continue
		}
		if err := w.writeGenericRows(g.file, g.rows); err != nil {
			return fmt.Errorf("export %s: %w", g.file, err)
		}
	}

	if rs.Project != nil {
		if err := w.writeProject(rs.Project); err != nil {
			return fmt.Errorf("export project: %w", err)
		}
	}

	if err := w.writeProcessingLog(rs.Log); err != nil {
		return fmt.Errorf("export processing log: %w", err)
	}

	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var allocationHeaders = []string{
	"allocation_id", "project_id", "source_sheet", "category", "market",
	"department", "role", "employee_name", "period", "period_date",
	"hours", "cost_rate", "bill_rate", "forecasted_cost",
	"forecasted_revenue", "matched",
}

func allocationRecords(costed []domain.CostedAllocation) [][]string {
	records := make([][]string, 0, len(costed))
	for _, c := range costed {
		records = append(records, []string{
			c.AllocationID, c.ProjectID, c.SourceSheet, c.Category, c.Market,
			c.Department, c.Role, c.EmployeeName, strconv.Itoa(c.Period),
			c.PeriodDate, formatFloat(c.Hours), formatFloat(c.CostRate),
			formatFloat(c.BillRate), formatFloat(c.ForecastedCost),
			formatFloat(c.ForecastedRevenue), strconv.FormatBool(c.Matched),
		})
	}
	return records
}

func (w *CSVWriter) writeAllocations(costed []domain.CostedAllocation) error {
	return w.WriteSimpleCSV(AllocationsFile, allocationHeaders, allocationRecords(costed))
}

// AppendAllocations adds one run's costed allocations to a shared CSV,
// creating the file with headers on first use. Batch mode collects every
// workbook's allocations into one file this way.
func (w *CSVWriter) AppendAllocations(filePath string, costed []domain.CostedAllocation) error {
	if len(costed) == 0 {
		return nil
	}
	if _, err := os.Stat(w.resolvePath(filePath)); os.IsNotExist(err) {
		return w.WriteSimpleCSV(filePath, allocationHeaders, allocationRecords(costed))
	}
	return w.AppendToCSV(filePath, allocationRecords(costed))
}

func (w *CSVWriter) writeRateCards(entries []domain.RateCardEntry) error {
	headers := []string{
		"market", "department", "level", "role", "cost_rate", "bill_rate",
		"rate_card_type", "source_sheet",
	}
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{
			e.Market, e.Department, e.Level, e.Role,
			formatFloat(e.CostRate), formatFloat(e.BillRate),
			string(e.RateCardType), e.SourceSheet,
		})
	}
	return w.WriteSimpleCSV(RateCardsFile, headers, records)
}

// writeGenericRows unions the column sets of all rows, preserving first-seen
// order, and prefixes the provenance columns.
func (w *CSVWriter) writeGenericRows(file string, rows []domain.GenericRow) error {
	headers := []string{"project_id", "source_sheet"}
	seen := map[string]bool{"project_id": true, "source_sheet": true}
	for _, r := range rows {
		for _, col := range r.Columns {
			if !seen[col] {
				seen[col] = true
				headers = append(headers, col)
			}
		}
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := make([]string, len(headers))
		record[0] = r.ProjectID
		record[1] = r.SourceSheet
		for i, col := range headers[2:] {
			record[i+2] = r.Values[col]
		}
		records = append(records, record)
	}
	return w.WriteSimpleCSV(file, headers, records)
}

func (w *CSVWriter) writeProject(p *domain.ProjectRecord) error {
	headers := []string{
		"project_id", "client_name", "project_title", "project_number",
		"market", "billing_type", "start_date", "end_date",
		"total_project_fee", "billable_labor_fees", "labor_costs",
		"investment_costs", "total_hours", "estimated_gross_margin",
		"sheet_metadata", "source_file", "source_sheet",
	}
	record := []string{
		p.ProjectID, p.ClientName, p.ProjectTitle, p.ProjectNumber,
		p.Market, p.BillingType, p.StartDate, p.EndDate,
		formatFloat(p.TotalProjectFee), formatFloat(p.BillableLaborFees),
		formatFloat(p.LaborCosts), formatFloat(p.InvestmentCosts),
		formatFloat(p.TotalHours), formatFloat(p.EstimatedGrossMargin),
		p.SheetMetadata, p.SourceFile, p.SourceSheet,
	}
	return w.WriteSimpleCSV(ProjectsFile, headers, [][]string{record})
}

func (w *CSVWriter) writeProcessingLog(log []domain.ProcessingLogEntry) error {
	headers := []string{"sheet", "type", "status", "row_count", "message"}
	records := make([][]string, 0, len(log))
	for _, e := range log {
		records = append(records, []string{
			e.Sheet, string(e.Type), string(e.Status),
			strconv.Itoa(e.RowCount), e.Message,
		})
	}
	return w.WriteSimpleCSV(ProcessingLogFile, headers, records)
}
