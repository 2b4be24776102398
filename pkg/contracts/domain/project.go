package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ProjectRecord is the per-project summary assembled from the metadata zone
// of a plan sheet. SheetMetadata holds the full extracted metadata as JSON so
// values the label dictionary does not yet recognize are never lost.
type ProjectRecord struct {
	ProjectID            string  `json:"project_id" csv:"ProjectID"`
	ClientName           string  `json:"client_name" csv:"ClientName"`
	ProjectTitle         string  `json:"project_title" csv:"ProjectTitle"`
	ProjectNumber        string  `json:"project_number,omitempty" csv:"ProjectNumber"`
	Market               string  `json:"market,omitempty" csv:"Market"`
	BillingType          string  `json:"billing_type,omitempty" csv:"BillingType"`
	StartDate            string  `json:"start_date,omitempty" csv:"StartDate"`
	EndDate              string  `json:"end_date,omitempty" csv:"EndDate"`
	TotalProjectFee      float64 `json:"total_project_fee,omitempty" csv:"TotalProjectFee"`
	BillableLaborFees    float64 `json:"billable_labor_fees,omitempty" csv:"BillableLaborFees"`
	LaborCosts           float64 `json:"labor_costs,omitempty" csv:"LaborCosts"`
	InvestmentCosts      float64 `json:"investment_costs,omitempty" csv:"InvestmentCosts"`
	TotalHours           float64 `json:"total_hours,omitempty" csv:"TotalHours"`
	EstimatedGrossMargin float64 `json:"estimated_gross_margin,omitempty" csv:"EstimatedGrossMargin"`
	SheetMetadata        string  `json:"sheet_metadata,omitempty" csv:"SheetMetadata"`
	SourceFile           string  `json:"source_file" csv:"SourceFile"`
	SourceSheet          string  `json:"source_sheet" csv:"SourceSheet"`
}

// ProjectID derives a deterministic project identity from the identifying
// strings. Identical inputs always hash to the same id, so re-ingesting the
// same file never creates a duplicate project.
func ProjectID(clientName, projectTitle, sourceFile string) string {
	key := fmt.Sprintf("%s|%s|%s", clientName, projectTitle, sourceFile)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// MetadataEntry is one label/value pair discovered while scanning the
// metadata zone, kept verbatim for provenance whether or not it was promoted
// into a typed field.
type MetadataEntry struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
	Key      string `json:"key,omitempty"`
}

// MetadataRecord accumulates everything extracted from the region above a
// sheet's header row. The three category maps hold promoted values; RawEntries
// preserves every discovered pair in scan order.
type MetadataRecord struct {
	ProjectInfo      map[string]string `json:"project_info"`
	FinancialSummary map[string]string `json:"financial_summary"`
	Configuration    map[string]string `json:"configuration"`
	RawEntries       []MetadataEntry   `json:"raw_entries"`
}

// Assign stores a promoted value under its category map. Later assignments
// to the same key overwrite earlier ones.
func (m *MetadataRecord) Assign(category, key, value string) {
	switch category {
	case "project_info":
		m.ProjectInfo[key] = value
	case "financial_summary":
		m.FinancialSummary[key] = value
	case "configuration":
		m.Configuration[key] = value
	}
}

// Lookup reads a promoted value, checking project info, configuration and
// financial summary in that order.
func (m *MetadataRecord) Lookup(key string) (string, bool) {
	if v, ok := m.ProjectInfo[key]; ok {
		return v, true
	}
	if v, ok := m.Configuration[key]; ok {
		return v, true
	}
	if v, ok := m.FinancialSummary[key]; ok {
		return v, true
	}
	return "", false
}

// NewMetadataRecord returns an empty record with initialized maps.
func NewMetadataRecord() *MetadataRecord {
	return &MetadataRecord{
		ProjectInfo:      make(map[string]string),
		FinancialSummary: make(map[string]string),
		Configuration:    make(map[string]string),
	}
}
