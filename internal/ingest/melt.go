package ingest

import (
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

// planDimensions are the non-period plan columns carried onto every melted
// record. Order controls Extra population, not output layout.
var planDimensions = []string{
	"category", "market", "department", "role", "employee_name",
	"notes", "business_team", "ic_type",
	"final_bill_rate", "effective_bill_rate", "cost_rate", "final_cost_rate",
	"total_fees", "total_cost", "total_hours", "margin_pct", "discount_pct",
}

// MeltResult carries the long-format records plus a flag marking the
// dimension-only fallback taken when a sheet has no period columns.
type MeltResult struct {
	Records  []domain.AllocationRecord
	Degraded bool
}

// DetectWeekDates finds the date row that some templates place above the
// header, aligned column-for-column with the week numbers, and returns a
// period-to-ISO-date mapping. The header row itself is scanned too, so
// date-labelled week columns map to their own dates. Returns nil when no
// scanned row carries dates in the period column positions.
func DetectWeekDates(grid workbook.Grid, headerRow int, cols []domain.ColumnDescriptor) map[int]string {
	best := map[int]string{}
	for idx := 0; idx <= headerRow; idx++ {
		current := map[int]string{}
		for colIdx, cd := range cols {
			if !cd.IsPeriod {
				continue
			}
			cell := grid.At(idx, colIdx)
			if cell.Type == workbook.CellDate {
				current[cd.PeriodIndex] = cell.Date.Format("2006-01-02")
			}
		}
		if len(current) > len(best) {
			best = current
		}
	}
	if len(best) == 0 {
		return nil
	}
	return best
}

// MeltPeriods converts one wide plan/allocation table into long format: one
// record per (row, period) pair with non-zero hours. Zero and empty period
// cells are dropped, so summing Hours before and after melting agrees.
// Sheets without period columns degrade to one dimension-only record per
// row with Period and Hours left at zero.
func MeltPeriods(grid workbook.Grid, headerRow int, cols []domain.ColumnDescriptor, weekDates map[int]string, projectID, sheetName string) MeltResult {
	dims := dimensionColumns(cols)

	hasPeriods := false
	for _, cd := range cols {
		if cd.IsPeriod {
			hasPeriods = true
			break
		}
	}

	var records []domain.AllocationRecord

	for rowIdx := headerRow + 1; rowIdx < grid.Rows(); rowIdx++ {
		if !rowHasAnyKey(grid, rowIdx, dims) {
			continue
		}

		base := buildRecord(grid, rowIdx, dims, projectID, sheetName)

		if !hasPeriods {
			records = append(records, base)
			continue
		}

		for colIdx, cd := range cols {
			if !cd.IsPeriod {
				continue
			}
			hours, ok := grid.At(rowIdx, colIdx).Float()
			if !ok || hours == 0 {
				continue
			}
			rec := base
			rec.Extra = cloneExtra(base.Extra)
			rec.Period = cd.PeriodIndex
			rec.Hours = hours
			if weekDates != nil {
				rec.PeriodDate = weekDates[cd.PeriodIndex]
			}
			records = append(records, rec)
		}
	}

	return MeltResult{Records: records, Degraded: !hasPeriods}
}

// dimensionColumns picks the column index for each wanted plan dimension,
// taking the first suffixed duplicate when the plain key is absent.
func dimensionColumns(cols []domain.ColumnDescriptor) map[string]int {
	byKey := make(map[string]int, len(cols))
	for i, cd := range cols {
		if cd.IsPeriod {
			continue
		}
		if _, ok := byKey[cd.NormalizedKey]; !ok {
			byKey[cd.NormalizedKey] = i
		}
	}

	dims := make(map[string]int)
	for _, want := range planDimensions {
		if i, ok := byKey[want]; ok {
			dims[want] = i
			continue
		}
		for _, cd := range cols {
			if cd.IsPeriod {
				continue
			}
			if isSuffixedKey(cd.NormalizedKey, want) {
				dims[want] = byKey[cd.NormalizedKey]
				break
			}
		}
	}
	return dims
}

func isSuffixedKey(key, base string) bool {
	if len(key) <= len(base)+1 || key[:len(base)] != base || key[len(base)] != '_' {
		return false
	}
	for _, r := range key[len(base)+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// rowHasAnyKey drops rows whose market, department and role cells are all
// empty. Rows survive when the sheet lacks those columns entirely.
func rowHasAnyKey(grid workbook.Grid, rowIdx int, dims map[string]int) bool {
	keys := []string{"market", "department", "role"}
	present := false
	for _, k := range keys {
		colIdx, ok := dims[k]
		if !ok {
			continue
		}
		present = true
		if !grid.At(rowIdx, colIdx).IsEmpty() {
			return true
		}
	}
	return !present
}

func buildRecord(grid workbook.Grid, rowIdx int, dims map[string]int, projectID, sheetName string) domain.AllocationRecord {
	rec := domain.AllocationRecord{
		ProjectID:   projectID,
		SourceSheet: sheetName,
	}

	extra := map[string]string{}
	for _, key := range planDimensions {
		colIdx, ok := dims[key]
		if !ok {
			continue
		}
		val := grid.At(rowIdx, colIdx).String()
		switch key {
		case "category":
			rec.Category = val
		case "market":
			rec.Market = val
		case "department":
			rec.Department = val
		case "role":
			rec.Role = val
		case "employee_name":
			rec.EmployeeName = val
		default:
			if val != "" {
				extra[key] = val
			}
		}
	}
	if len(extra) > 0 {
		rec.Extra = extra
	}
	return rec
}

func cloneExtra(extra map[string]string) map[string]string {
	if extra == nil {
		return nil
	}
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
