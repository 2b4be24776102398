package domain

// AllocationRecord is one (dimension row, period column) pair from a plan or
// actuals sheet after wide-to-long reshaping. Records are only emitted for
// cells holding non-null, non-zero hours; a zero Period with zero Hours marks
// a degraded dimension-only row produced when reshaping fell back.
type AllocationRecord struct {
	AllocationID string  `json:"allocation_id" csv:"AllocationID"`
	ProjectID    string  `json:"project_id" csv:"ProjectID"`
	SourceSheet  string  `json:"source_sheet" csv:"SourceSheet"`
	Category     string  `json:"category" csv:"Category"`
	Market       string  `json:"market" csv:"Market"`
	Department   string  `json:"department" csv:"Department"`
	Role         string  `json:"role" csv:"Role"`
	EmployeeName string  `json:"employee_name" csv:"EmployeeName"`
	Period       int     `json:"period_identifier" csv:"Period"`
	PeriodDate   string  `json:"period_date,omitempty" csv:"PeriodDate"`
	Hours        float64 `json:"hours" csv:"Hours"`

	// Extra holds surviving dimension columns that have no dedicated field,
	// keyed by normalized column key.
	Extra map[string]string `json:"extra,omitempty"`
}

// CostedAllocation is an allocation row after the rate-card join. Matched is
// false when no rate-card entry shared the (market, department, role) key, in
// which case the rate and derived fields are zero.
type CostedAllocation struct {
	AllocationRecord

	CostRate          float64 `json:"cost_rate" csv:"CostRate"`
	BillRate          float64 `json:"bill_rate" csv:"BillRate"`
	ForecastedCost    float64 `json:"forecasted_cost" csv:"ForecastedCost"`
	ForecastedRevenue float64 `json:"forecasted_revenue" csv:"ForecastedRevenue"`
	Matched           bool    `json:"matched" csv:"Matched"`
}

// GenericRow is one normalized data row from a sheet type that has no
// dedicated record shape (actuals, costs, investment log, external estimate,
// media). Columns preserves sheet order; Values is keyed by normalized key.
type GenericRow struct {
	ProjectID   string            `json:"project_id"`
	SourceSheet string            `json:"source_sheet"`
	Columns     []string          `json:"columns"`
	Values      map[string]string `json:"values"`
}
