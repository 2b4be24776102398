package domain

// RateCardType distinguishes the three rate-card flavors found in these
// workbooks, inferred from the sheet name.
type RateCardType string

const (
	RateCardStandard RateCardType = "standard"
	RateCardCustom   RateCardType = "custom"
	RateCardExternal RateCardType = "external"
)

// RateCardEntry is one row of a rate-card lookup table. The join key for
// deriving financial totals is (Market, Department, Role), case-insensitive.
type RateCardEntry struct {
	Market       string       `json:"market" csv:"Market"`
	Department   string       `json:"department" csv:"Department"`
	Level        string       `json:"level" csv:"Level"`
	Role         string       `json:"role" csv:"Role"`
	CostRate     float64      `json:"cost_rate" csv:"CostRate"`
	BillRate     float64      `json:"bill_rate" csv:"BillRate"`
	RateCardType RateCardType `json:"rate_card_type" csv:"RateCardType"`
	SourceSheet  string       `json:"source_sheet" csv:"SourceSheet"`
}
