package ingest

import (
	"strings"
	"unicode"

	"finetl/internal/config"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

// isValidMarketValue guards the market field against label text that happens
// to sit next to a "Market" cell. Known codes pass, known labels fail, and
// anything else passes only if it looks like a short uppercase code.
func isValidMarketValue(rules *config.Rules, val string) bool {
	s := strings.TrimSpace(val)
	if s == "" {
		return false
	}
	upper := strings.ToUpper(s)
	if rules.ValidMarketCodes[upper] {
		return true
	}
	if rules.InvalidMarkets[strings.ToLower(s)] {
		return false
	}
	if len(upper) <= 6 && isAlpha(s) && s == upper {
		return true
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ExtractMetadata scans the zone above the header row for label/value pairs.
// The primary pass walks every cell and pairs known labels with the value in
// the next column; a secondary pass covers the column 4/5 layout used for
// fee summaries. Every discovery lands in RawEntries even when it is not
// promoted to a typed field.
func ExtractMetadata(rules *config.Rules, grid workbook.Grid, headerRow int, ingestCfg config.IngestConfig) *domain.MetadataRecord {
	md := domain.NewMetadataRecord()

	rowLimit := headerRow
	if rowLimit > ingestCfg.MaxMetadataRows {
		rowLimit = ingestCfg.MaxMetadataRows
	}
	if rowLimit > grid.Rows() {
		rowLimit = grid.Rows()
	}

	for idx := 0; idx < rowLimit; idx++ {
		row := grid[idx]
		colLimit := len(row)
		if colLimit > ingestCfg.MaxMetadataCols {
			colLimit = ingestCfg.MaxMetadataCols
		}

		for colIdx := 0; colIdx < colLimit; colIdx++ {
			cell := row[colIdx]
			if cell.IsEmpty() {
				continue
			}

			if cell.Type == workbook.CellString {
				valLower := strings.ToLower(strings.TrimSpace(cell.Text))

				for _, ml := range rules.MetadataLabels {
					if valLower != ml.Label && !(strings.Contains(valLower, ml.Label) && len(valLower) < 50) {
						continue
					}
					next := grid.At(idx, colIdx+1)
					if !next.IsEmpty() {
						// The market field attracts stray labels, so it
						// gets value validation; a rejected value keeps
						// scanning other label patterns.
						if ml.Key == "market" && !isValidMarketValue(rules, next.Text) {
							continue
						}
						md.Assign(ml.Category, ml.Key, next.Text)
						md.RawEntries = append(md.RawEntries, domain.MetadataEntry{
							Row:      idx + 1,
							Col:      colIdx,
							Label:    cell.Text,
							Value:    next.Text,
							Category: ml.Category,
							Key:      ml.Key,
						})
					}
					break
				}

				// Some cells carry the value itself with no label, e.g.
				// "Weekly (Fixed 40)" or "T&M".
				for _, pattern := range rules.ValuePatterns {
					if !strings.Contains(valLower, pattern) {
						continue
					}
					if strings.Contains(valLower, "weekly") || strings.Contains(valLower, "monthly") {
						md.Configuration["hour_mode"] = cell.Text
					} else if valLower == "fixed fee" || valLower == "t&m" || valLower == "retainer" || valLower == "hybrid" {
						md.Configuration["billing_type"] = cell.Text
					}
					md.RawEntries = append(md.RawEntries, domain.MetadataEntry{
						Row:   idx + 1,
						Col:   colIdx,
						Label: "detected_value",
						Value: cell.Text,
					})
					break
				}

				// Standalone market codes appear without any label at all.
				if len(cell.Text) <= 10 {
					upper := strings.ToUpper(strings.TrimSpace(cell.Text))
					if rules.ValidMarketCodes[upper] {
						if _, ok := md.Configuration["market"]; !ok {
							md.Configuration["market"] = upper
						}
						md.RawEntries = append(md.RawEntries, domain.MetadataEntry{
							Row:   idx + 1,
							Col:   colIdx,
							Label: "market_code",
							Value: upper,
						})
					}
				}

				// Label-in-first-column with a number beside it is worth
				// keeping for provenance even when the label is unknown.
				if colIdx == 0 {
					next := grid.At(idx, 1)
					if next.Type == workbook.CellNumber {
						md.RawEntries = append(md.RawEntries, domain.MetadataEntry{
							Row:   idx + 1,
							Col:   0,
							Label: cell.Text,
							Value: next.Text,
						})
					}
				}
			}
		}
	}

	// Fee summaries often sit in a label column at index 3 with the number
	// at index 4.
	for idx := 0; idx < rowLimit; idx++ {
		label := grid.At(idx, 3)
		num := grid.At(idx, 4)
		if label.Type != workbook.CellString || num.Type != workbook.CellNumber {
			continue
		}
		labelLower := strings.ToLower(strings.TrimSpace(label.Text))

		switch {
		case strings.Contains(labelLower, "billable") && strings.Contains(labelLower, "fee"):
			md.FinancialSummary["billable_fees"] = num.Text
		case strings.Contains(labelLower, "passthrough"):
			md.FinancialSummary["passthrough"] = num.Text
		case strings.Contains(labelLower, "investment"):
			md.FinancialSummary["investment_costs"] = num.Text
		case strings.Contains(labelLower, "total hours"):
			md.FinancialSummary["total_hours"] = num.Text
		case strings.Contains(labelLower, "total cost"):
			md.FinancialSummary["total_cost"] = num.Text
		case strings.Contains(labelLower, "labor cost"):
			md.FinancialSummary["labor_costs"] = num.Text
		}

		md.RawEntries = append(md.RawEntries, domain.MetadataEntry{
			Row:   idx + 1,
			Col:   3,
			Label: label.Text,
			Value: num.Text,
		})
	}

	return md
}
