package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finetl/internal/config"
	"finetl/pkg/contracts/domain"
)

func TestProcessRateCard_Standard(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Market", "Craft", "Level", "Role", "Cost Rate", "Bill Rate"},
		{"AMER", "Engineering", "Senior", "Developer", "50", "120"},
		{"", "", "", "", "", ""},
		{"EMEA", "Design", "Mid", "Designer", "40", "100"},
	})

	res := ProcessRateCard(rules, testIngestCfg(), grid, 0, "Rate Card")
	require.Len(t, res.RateCards, 2)

	first := res.RateCards[0]
	assert.Equal(t, domain.RateCardStandard, first.RateCardType)
	assert.Equal(t, "AMER", first.Market)
	assert.Equal(t, "Engineering", first.Department)
	assert.Equal(t, "Developer", first.Role)
	assert.Equal(t, 50.0, first.CostRate)
	assert.Equal(t, 120.0, first.BillRate)
	assert.Equal(t, "Rate Card", first.SourceSheet)
}

func TestProcessRateCard_TypeFromSheetName(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Market", "Role", "Cost Rate", "Bill Rate"},
		{"AMER", "Dev", "50", "120"},
	})

	custom := ProcessRateCard(rules, testIngestCfg(), grid, 0, "Custom Rate Card")
	assert.Equal(t, domain.RateCardCustom, custom.RateCards[0].RateCardType)

	ext := ProcessRateCard(rules, testIngestCfg(), grid, 0, "Ext Rate Card")
	assert.Equal(t, domain.RateCardExternal, ext.RateCards[0].RateCardType)
}

func TestProcessRateCard_TitleFallsBackToRole(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Dept Title", "Cost Rate", "Bill Rate"},
		{"Senior Developer", "55", "130"},
		{"", "10", "20"},
	})

	res := ProcessRateCard(rules, testIngestCfg(), grid, 0, "Rate Card")
	require.Len(t, res.RateCards, 1)
	assert.Equal(t, "Senior Developer", res.RateCards[0].Role)
}

func TestProcessGeneric_CostsKeyFilter(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Item", "Category", "Vendor", "Total Cost"},
		{"Hosting", "Infra", "AWS", "1200"},
		{"", "Orphan", "", ""},
	})

	res := ProcessGeneric(rules, testIngestCfg(), grid, 0, domain.SheetCosts, "p", "Costs")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Hosting", res.Rows[0].Values["item"])
	assert.Equal(t, "1200", res.Rows[0].Values["total_cost"])
	assert.Equal(t, "Costs", res.Rows[0].SourceSheet)
}

func TestProcessGeneric_ActualsFallbackKey(t *testing.T) {
	rules := config.DefaultRules()
	// No employee column, so market is the row filter.
	grid := gridFrom([][]string{
		{"Market", "Role", "Total Hours"},
		{"AMER", "Dev", "40"},
		{"", "Stray", ""},
	})

	res := ProcessGeneric(rules, testIngestCfg(), grid, 0, domain.SheetActuals, "p", "Actuals")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "AMER", res.Rows[0].Values["market"])
}

func TestProcessGeneric_InvestmentLogKeys(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Date Identified", "Investment Summary", "Investment Amount", "Notes"},
		{"1/5/2025", "Scope overrun", "5000", ""},
		{"", "", "", "orphan note"},
	})

	res := ProcessGeneric(rules, testIngestCfg(), grid, 0, domain.SheetInvestmentLog, "p", "Investment Log")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Scope overrun", res.Rows[0].Values["investment_summary"])
}

func TestProcessGeneric_MediaDropsOnlyEmptyRows(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Channel", "Platform", "Budget"},
		{"Social", "Meta", "10000"},
		{"", "", ""},
		{"", "", "500"},
	})

	res := ProcessGeneric(rules, testIngestCfg(), grid, 0, domain.SheetMedia, "p", "Media")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "500", res.Rows[1].Values["budget"])
}

func TestProcessPlan_EndToEnd(t *testing.T) {
	rules := config.DefaultRules()
	grid := gridFrom([][]string{
		{"Client", "Acme Corp"},
		{"Project Title", "Website Redesign"},
		{"Market", "AMER"},
		{},
		{"Total Project Fee", "250000"},
		{"Category", "Market", "Department", "Role", "01", "02"},
		{"Staffing", "AMER", "Eng", "Dev", "10", "0"},
	})

	res := ProcessPlan(rules, testIngestCfg(), grid, 5, "proj-1", "2025 Plan")

	require.NotNil(t, res.Metadata)
	assert.Equal(t, "Acme Corp", res.Metadata.ProjectInfo["client"])
	assert.Equal(t, "250000", res.Metadata.FinancialSummary["total_project_fee"])

	require.Len(t, res.Allocations, 1)
	rec := res.Allocations[0]
	assert.Equal(t, 1, rec.Period)
	assert.Equal(t, 10.0, rec.Hours)
	assert.Equal(t, "Staffing", rec.Category)
	assert.Equal(t, "proj-1", rec.ProjectID)
	assert.False(t, res.Degraded)
}
