package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finetl/internal/config"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

// gridFrom builds a typed grid from raw cell text, mirroring what the
// excelize reader produces.
func gridFrom(rows [][]string) workbook.Grid {
	g := make(workbook.Grid, len(rows))
	for i, row := range rows {
		cells := make([]workbook.Cell, len(row))
		for j, raw := range row {
			cells[j] = workbook.ParseCell(raw)
		}
		g[i] = cells
	}
	return g
}

func TestLocateHeaderRow_PlanSheet(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Client", "Acme Corp"},
		{"Project Title", "Website Redesign"},
		{},
		{"Total Project Fee", "250000"},
		{},
		{"Category", "Market", "Department", "Role", "01", "02", "03"},
		{"Staffing", "AMER", "Engineering", "Developer", "10", "20", "0"},
	})

	assert.Equal(t, 5, LocateHeaderRow(rules, grid, domain.SheetPlan, 60))
}

func TestLocateHeaderRow_NoHeader(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"some", "misc", "text"},
		{"1", "2", "3"},
	})
	assert.Equal(t, -1, LocateHeaderRow(rules, grid, domain.SheetPlan, 60))
}

func TestLocateHeaderRow_SparseRowsIgnored(t *testing.T) {
	rules := config.DefaultRules()
	// Rows with fewer than three populated cells never score, even when
	// they contain keywords.
	grid := gridFrom([][]string{
		{"market"},
		{"market", "role"},
		{"Market", "Department", "Role", "Total Hours"},
	})
	assert.Equal(t, 2, LocateHeaderRow(rules, grid, domain.SheetPlan, 60))
}

func TestLocateHeaderRow_FirstOfTiedRowsWins(t *testing.T) {
	rules := config.DefaultRules()
	header := []string{"Market", "Department", "Role", "Total Hours"}
	grid := gridFrom([][]string{header, header})
	assert.Equal(t, 0, LocateHeaderRow(rules, grid, domain.SheetPlan, 60))
}

func TestLocateHeaderRow_BlankRowsBetweenZonesAreStable(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Client", "Acme"},
		{},
		{},
		{"Item", "Category", "Vendor", "Total Cost"},
		{"Hosting", "Infra", "AWS", "1200"},
	})
	assert.Equal(t, 3, LocateHeaderRow(rules, grid, domain.SheetCosts, 60))
}

func TestLocateHeaderRow_RespectsScanLimit(t *testing.T) {
	rules := config.DefaultRules()
	rows := make([][]string, 0, 12)
	for i := 0; i < 10; i++ {
		rows = append(rows, []string{})
	}
	rows = append(rows, []string{"Market", "Department", "Role", "Total Hours"})
	grid := gridFrom(rows)

	assert.Equal(t, -1, LocateHeaderRow(rules, grid, domain.SheetPlan, 5))
	assert.Equal(t, 10, LocateHeaderRow(rules, grid, domain.SheetPlan, 60))
}

func TestLocateHeaderRow_UnknownTypeUsesPlanKeywords(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Category", "Market", "Department", "Role"},
	})
	assert.Equal(t, 0, LocateHeaderRow(rules, grid, domain.SheetUnknown, 60))
}
