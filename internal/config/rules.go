package config

import (
	"regexp"

	"finetl/pkg/contracts/domain"
)

// SheetRule associates one sheet type with its name patterns. Rules are held
// in slices rather than maps so classification order is fixed: the first
// matching rule wins.
type SheetRule struct {
	Type     domain.SheetType
	Patterns []*regexp.Regexp
}

// ColumnSynonym maps one observed column label to its canonical key.
type ColumnSynonym struct {
	Label string
	Key   string
}

// MetadataLabel maps one metadata zone label to its category and canonical
// key.
type MetadataLabel struct {
	Label    string
	Category string
	Key      string
}

// Rules bundles every heuristic table the pipeline consults. Instances are
// immutable after Default; share them freely.
type Rules struct {
	SkipPatterns     []*regexp.Regexp
	SheetRules       []SheetRule
	HeaderKeywords   map[domain.SheetType][]string
	ColumnSynonyms   []ColumnSynonym
	MetadataLabels   []MetadataLabel
	ValidMarketCodes map[string]bool
	InvalidMarkets   map[string]bool
	ValuePatterns    []string
}

func rx(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// DefaultRules returns the built-in heuristic tables.
func DefaultRules() *Rules {
	return &Rules{
		SkipPatterns: rx(`^_`, `helper`, `mapping`, `^info$`),

		SheetRules: []SheetRule{
			{domain.SheetPlan, rx(
				`^plan$`,
				`plan\s*\(`,
				`allocation`,
				`forecast`,
				`staffing`,
				`20\d{2}.*plan`,
				`plan.*20\d{2}`,
			)},
			{domain.SheetRateCard, rx(
				`rate\s*card`,
				`ratecard`,
				`custom.*rate`,
				`deptapps.*rate`,
			)},
			{domain.SheetActuals, rx(
				`actual`,
				`timesheet`,
				`hours.*log`,
				`pivot`,
			)},
			{domain.SheetCosts, rx(
				`^costs?$`,
				`expense`,
				`vendor.*cost`,
				`^extras?$`,
			)},
			{domain.SheetInvestmentLog, rx(
				`invest.*log`,
				`investment\s+log`,
				`overrun`,
			)},
			{domain.SheetExternalEstimate, rx(
				`ext.*estimate`,
				`client.*estimate`,
				`external.*summary`,
				`^ext\s+`,
			)},
			{domain.SheetMedia, rx(
				`^media$`,
				`media.*plan`,
				`media.*buy`,
			)},
			{domain.SheetInfo, rx(
				`^info$`,
				`change.*log`,
				`version`,
			)},
			{domain.SheetMapping, rx(
				`^_mapping`,
				`^_custom`,
				`helper`,
			)},
		},

		HeaderKeywords: map[domain.SheetType][]string{
			domain.SheetPlan:             {"category", "market", "department", "role", "total hours", "total fees"},
			domain.SheetRateCard:         {"market", "craft", "role", "title", "cost rate", "bill rate", "level"},
			domain.SheetActuals:          {"market", "employee", "role", "total hours"},
			domain.SheetCosts:            {"item", "category", "date", "vendor", "total cost"},
			domain.SheetInvestmentLog:    {"date identified", "investment summary", "investment amount", "resource impact"},
			domain.SheetExternalEstimate: {"department", "role", "total hours", "total fee", "dedication"},
			domain.SheetMedia:            {"channel", "platform", "budget", "spend", "impressions", "vendor"},
		},

		// Declaration order matters: substring fallback walks the table top
		// to bottom, so more specific labels must precede their prefixes.
		ColumnSynonyms: []ColumnSynonym{
			{"market", "market"},
			{"market_region", "market"},
			{"dept market", "market"},

			{"department", "department"},
			{"global department", "department"},
			{"dept department", "department"},
			{"craft", "department"},

			{"role", "role"},
			{"job role", "role"},
			{"title", "title"},
			{"dept title", "title"},
			{"level name", "level"},
			{"level", "level"},

			{"cost rate", "cost_rate"},
			{"bill rate", "bill_rate"},
			{"bill rate, usd", "bill_rate"},
			{"final bill rate", "final_bill_rate"},
			{"effective bill rate", "effective_bill_rate"},
			{"rate card bill rate", "rate_card_bill_rate"},
			{"final cost rate", "final_cost_rate"},
			{"primary rate", "primary_rate"},
			{"standard bill rate", "standard_bill_rate"},

			{"bill rate override", "bill_rate_override"},
			{"cost rate override", "cost_rate_override"},
			{"total fees override", "total_fees_override"},
			{"total cost override", "total_cost_override"},
			{"total hours override", "total_hours_override"},

			{"total fees", "total_fees"},
			{"effective fees", "effective_fees"},
			{"total cost", "total_cost"},
			{"total hours", "total_hours"},
			{"gross margin", "gross_margin"},
			{"margin %", "margin_pct"},
			{"discount %", "discount_pct"},

			{"employee name", "employee_name"},
			{"employee", "employee_name"},
			{"name", "employee_name"},
			{"employee currrent title", "employee_title"}, // typo appears in real workbooks
			{"business team", "business_team"},
			{"ic type", "ic_type"},

			{"category", "category"},
			{"notes", "notes"},
			{"notes/description", "notes"},
			{"standard role name, \nif non-default", "standard_role_override"},
			{"alt. custom rate card", "alt_rate_card"},
			{"deptapps budget", "deptapps_budget"},

			{"item", "item"},
			{"vendor", "vendor"},
			{"estimate/actual", "estimate_actual"},
			{"type", "cost_type"},

			{"% dedication", "dedication_pct"},
			{"est. # of total hours", "est_total_hours"},
			{"est. # of weekly hours", "est_weekly_hours"},
			{"total fee", "total_fee"},
			{"weekly fee", "weekly_fee"},
		},

		MetadataLabels: []MetadataLabel{
			{"client", "project_info", "client"},
			{"client (info)", "project_info", "client"},
			{"project title", "project_info", "project_title"},
			{"project title (info)", "project_info", "project_title"},
			{"project number", "project_info", "project_number"},
			{"project number (info)", "project_info", "project_number"},

			{"start date", "project_info", "start_date"},
			{"start date (required)", "project_info", "start_date"},
			{"end date", "project_info", "end_date"},

			{"market", "configuration", "market"},
			{"market (required)", "configuration", "market"},
			{"company", "configuration", "company"},
			{"company (required)", "configuration", "company"},
			{"rate card", "configuration", "rate_card"},
			{"rate card (required)", "configuration", "rate_card"},
			{"billing type", "configuration", "billing_type"},
			{"billing type (info)", "configuration", "billing_type"},
			{"hour mode", "configuration", "hour_mode"},

			{"total project fee", "financial_summary", "total_project_fee"},
			{"estimated gross margin", "financial_summary", "estimated_gross_margin"},
			{"target gm%", "financial_summary", "target_gm_pct"},
			{"target gm% / fee", "financial_summary", "target_gm_pct"},
			{"billable labor fees", "financial_summary", "billable_labor_fees"},
			{"additional billable fees", "financial_summary", "additional_billable_fees"},
			{"passthrough", "financial_summary", "passthrough"},
			{"labor costs", "financial_summary", "labor_costs"},
			{"investment costs", "financial_summary", "investment_costs"},
			{"total hours", "financial_summary", "total_hours"},
			{"total cost", "financial_summary", "total_cost"},
			{"gross margin", "financial_summary", "gross_margin"},

			{"fixed fee", "configuration", "fixed_fee"},
			{"fixed fee (optional)", "configuration", "fixed_fee"},
			{"fixed % discount", "configuration", "fixed_discount_pct"},
			{"blended rate", "configuration", "blended_rate"},
		},

		ValidMarketCodes: set(
			"DPUS", "CXUS", "EXUS", "MTUS", "AMER", "EMEA", "APAC", "LATAM",
			"NA", "EU", "UK", "US", "CA", "AU", "GLOBAL", "CORP",
		),

		InvalidMarkets: set(
			"total hours", "total fees", "total cost", "gross margin",
			"category", "department", "role", "notes", "employee",
			"bill rate", "cost rate", "hours", "fees", "costs",
		),

		ValuePatterns: []string{
			"weekly (fixed 40)", "weekly (fixed 35)", "monthly (fixed 150)",
			"fixed fee", "t&m", "retainer", "hybrid",
		},
	}
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
