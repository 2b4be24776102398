package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finetl/internal/config"
	"finetl/pkg/contracts/domain"
)

func TestClassifySheet(t *testing.T) {
	rules := config.DefaultRules()

	tests := []struct {
		name string
		want domain.SheetType
	}{
		{"Plan", domain.SheetPlan},
		{"2025 Plan", domain.SheetPlan},
		{"Plan (Q3)", domain.SheetPlan},
		{"Staffing Forecast", domain.SheetPlan},
		{"Rate Card", domain.SheetRateCard},
		{"Custom Rates", domain.SheetRateCard},
		{"Actuals", domain.SheetActuals},
		{"Timesheet Export", domain.SheetActuals},
		{"Pivot", domain.SheetActuals},
		{"Costs", domain.SheetCosts},
		{"Extras", domain.SheetCosts},
		{"Vendor Costs", domain.SheetCosts},
		{"Investment Log", domain.SheetInvestmentLog},
		{"Overrun Tracker", domain.SheetInvestmentLog},
		{"Ext Estimate", domain.SheetExternalEstimate},
		{"Client Estimate", domain.SheetExternalEstimate},
		{"Media", domain.SheetMedia},
		{"Media Buy", domain.SheetMedia},
		{"Change Log", domain.SheetInfo},
		{"Random Tab", domain.SheetUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySheet(rules, tt.name))
		})
	}
}

func TestClassifySheet_SkipWinsOverType(t *testing.T) {
	rules := config.DefaultRules()

	// Underscore and helper names are skipped even when a type pattern
	// would also match.
	assert.Equal(t, domain.SheetSkip, ClassifySheet(rules, "_Custom Rate Card"))
	assert.Equal(t, domain.SheetSkip, ClassifySheet(rules, "Helper Plan"))
	assert.Equal(t, domain.SheetSkip, ClassifySheet(rules, "Info"))
	assert.Equal(t, domain.SheetSkip, ClassifySheet(rules, "Mapping Table"))
}

func TestClassifySheet_YearDefaultsToPlan(t *testing.T) {
	rules := config.DefaultRules()
	assert.Equal(t, domain.SheetPlan, ClassifySheet(rules, "FY 2026 Budget"))
	assert.Equal(t, domain.SheetUnknown, ClassifySheet(rules, "Budget"))
}

func TestClassifySheet_Deterministic(t *testing.T) {
	rules := config.DefaultRules()
	// "Forecast Rate Card" matches both plan and rate_card patterns; plan
	// rules are consulted first, so the earlier type always wins.
	first := ClassifySheet(rules, "Forecast Rate Card")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ClassifySheet(rules, "Forecast Rate Card"))
	}
	assert.Equal(t, domain.SheetPlan, first)
}
