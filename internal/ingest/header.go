package ingest

import (
	"regexp"
	"strings"

	"finetl/internal/config"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

var (
	weekNumberPattern = regexp.MustCompile(`^(0[1-9]|[1-9][0-9])$`)
	weekHoursPattern  = regexp.MustCompile(`^(0[1-9]|[1-9][0-9])-hours$`)
)

// LocateHeaderRow scores each of the first maxRows rows by how strongly it
// resembles a header for the given sheet type and returns the index of the
// best-scoring row. Ties keep the earlier row. Returns -1 when no row scores
// at all, which callers treat as "no tabular data here".
//
// Scoring: +5 per cell containing a type keyword, +1 per week-number or
// NN-hours token, plus a bonus equal to the string-cell count when the row
// has at least four string cells.
func LocateHeaderRow(rules *config.Rules, grid workbook.Grid, sheetType domain.SheetType, maxRows int) int {
	keywords, ok := rules.HeaderKeywords[sheetType]
	if !ok {
		keywords = rules.HeaderKeywords[domain.SheetPlan]
	}

	limit := maxRows
	if grid.Rows() < limit {
		limit = grid.Rows()
	}

	bestRow := -1
	bestScore := 0

	for idx := 0; idx < limit; idx++ {
		row := grid[idx]

		nonEmpty := 0
		for _, c := range row {
			if !c.IsEmpty() {
				nonEmpty++
			}
		}
		if nonEmpty < 3 {
			continue
		}

		score := 0
		stringCount := 0

		for _, c := range row {
			if c.Type != workbook.CellString {
				continue
			}
			val := strings.ToLower(strings.TrimSpace(c.Text))
			stringCount++

			for _, kw := range keywords {
				if strings.Contains(val, kw) {
					score += 5
				}
			}
			if weekNumberPattern.MatchString(val) {
				score++
			}
			if weekHoursPattern.MatchString(val) {
				score++
			}
		}

		// Headers are mostly labels, so reward string-heavy rows.
		if stringCount >= 4 {
			score += stringCount
		}

		if score > bestScore {
			bestScore = score
			bestRow = idx
		}
	}

	return bestRow
}
