package ingest

import (
	"strings"

	"finetl/internal/config"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

// SheetResult is the typed output of one data sheet.
type SheetResult struct {
	Allocations []domain.AllocationRecord
	RateCards   []domain.RateCardEntry
	Rows        []domain.GenericRow
	Metadata    *domain.MetadataRecord
	Columns     []domain.ColumnDescriptor
	RowCount    int
	Degraded    bool
}

// keyColumns lists, per sheet type, the columns at least one of which must
// be populated for a data row to survive. Sheets lacking every key column
// keep all rows rather than losing the table.
var keyColumns = map[domain.SheetType][][]string{
	// Actuals prefer employee name; market is the fallback grouping.
	domain.SheetActuals:          {{"employee_name"}, {"market"}},
	domain.SheetCosts:            {{"item"}},
	domain.SheetInvestmentLog:    {{"investment_summary", "investment_amount", "date_identified"}},
	domain.SheetExternalEstimate: {{"department", "role", "total_fee", "est_total_hours"}},
}

// ProcessPlan extracts a plan sheet: metadata zone, week-to-date mapping,
// then the wide-to-long melt of the allocation grid.
func ProcessPlan(rules *config.Rules, cfg config.IngestConfig, grid workbook.Grid, headerRow int, projectID, sheetName string) SheetResult {
	cols := NormalizeColumns(rules, grid[headerRow], cfg.MaxPeriod)
	md := ExtractMetadata(rules, grid, headerRow, cfg)
	weekDates := DetectWeekDates(grid, headerRow, cols)

	melted := MeltPeriods(grid, headerRow, cols, weekDates, projectID, sheetName)

	return SheetResult{
		Allocations: melted.Records,
		Metadata:    md,
		Columns:     cols,
		RowCount:    len(melted.Records),
		Degraded:    melted.Degraded,
	}
}

// ProcessRateCard extracts rate entries from a rate card sheet. The card
// type comes from the sheet name: "custom" and "ext" mark client-specific
// and external cards, anything else is the standard card.
func ProcessRateCard(rules *config.Rules, cfg config.IngestConfig, grid workbook.Grid, headerRow int, sheetName string) SheetResult {
	cols := NormalizeColumns(rules, grid[headerRow], cfg.MaxPeriod)
	byKey := columnIndex(cols)

	cardType := domain.RateCardStandard
	nameLower := strings.ToLower(sheetName)
	if strings.Contains(nameLower, "custom") {
		cardType = domain.RateCardCustom
	} else if strings.Contains(nameLower, "ext") {
		cardType = domain.RateCardExternal
	}

	var entries []domain.RateCardEntry
	for rowIdx := headerRow + 1; rowIdx < grid.Rows(); rowIdx++ {
		market := cellByKey(grid, rowIdx, byKey, "market")
		title := cellByKey(grid, rowIdx, byKey, "title")
		if _, ok := byKey["market"]; ok {
			if market == "" {
				continue
			}
		} else if _, ok := byKey["title"]; ok {
			if title == "" {
				continue
			}
		}

		role := cellByKey(grid, rowIdx, byKey, "role")
		if role == "" {
			role = title
		}

		entry := domain.RateCardEntry{
			Market:       market,
			Department:   cellByKey(grid, rowIdx, byKey, "department"),
			Level:        cellByKey(grid, rowIdx, byKey, "level"),
			Role:         role,
			RateCardType: cardType,
			SourceSheet:  sheetName,
		}
		if f, ok := floatByKey(grid, rowIdx, byKey, "cost_rate"); ok {
			entry.CostRate = f
		}
		if f, ok := floatByKey(grid, rowIdx, byKey, "bill_rate"); ok {
			entry.BillRate = f
		}
		entries = append(entries, entry)
	}

	return SheetResult{
		RateCards: entries,
		Columns:   cols,
		RowCount:  len(entries),
	}
}

// ProcessGeneric extracts actuals, costs, investment log, external estimate
// and media sheets into generic keyed rows, applying the per-type key-column
// row filter.
func ProcessGeneric(rules *config.Rules, cfg config.IngestConfig, grid workbook.Grid, headerRow int, sheetType domain.SheetType, projectID, sheetName string) SheetResult {
	cols := NormalizeColumns(rules, grid[headerRow], cfg.MaxPeriod)
	keys := make([]string, len(cols))
	for i, cd := range cols {
		keys[i] = cd.NormalizedKey
	}

	filter := selectKeyFilter(sheetType, keys)

	var rows []domain.GenericRow
	for rowIdx := headerRow + 1; rowIdx < grid.Rows(); rowIdx++ {
		values := map[string]string{}
		empty := true
		for colIdx, key := range keys {
			v := grid.At(rowIdx, colIdx).String()
			if v == "" {
				continue
			}
			values[key] = v
			empty = false
		}

		if empty {
			continue
		}
		if filter != nil && !anyPopulated(values, filter) {
			continue
		}

		rows = append(rows, domain.GenericRow{
			ProjectID:   projectID,
			SourceSheet: sheetName,
			Columns:     keys,
			Values:      values,
		})
	}

	return SheetResult{
		Rows:     rows,
		Columns:  cols,
		RowCount: len(rows),
	}
}

// selectKeyFilter resolves the key-column set for a sheet type, restricted
// to columns actually present. Media sheets only drop fully empty rows.
func selectKeyFilter(sheetType domain.SheetType, keys []string) []string {
	groups, ok := keyColumns[sheetType]
	if !ok {
		return nil
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	for _, group := range groups {
		var existing []string
		for _, k := range group {
			if present[k] {
				existing = append(existing, k)
			}
		}
		if len(existing) > 0 {
			return existing
		}
	}
	return nil
}

func anyPopulated(values map[string]string, keys []string) bool {
	for _, k := range keys {
		if values[k] != "" {
			return true
		}
	}
	return false
}

func columnIndex(cols []domain.ColumnDescriptor) map[string]int {
	byKey := make(map[string]int, len(cols))
	for i, cd := range cols {
		if _, ok := byKey[cd.NormalizedKey]; !ok {
			byKey[cd.NormalizedKey] = i
		}
	}
	return byKey
}

func cellByKey(grid workbook.Grid, rowIdx int, byKey map[string]int, key string) string {
	colIdx, ok := byKey[key]
	if !ok {
		return ""
	}
	return grid.At(rowIdx, colIdx).String()
}

func floatByKey(grid workbook.Grid, rowIdx int, byKey map[string]int, key string) (float64, bool) {
	colIdx, ok := byKey[key]
	if !ok {
		return 0, false
	}
	return grid.At(rowIdx, colIdx).Float()
}
