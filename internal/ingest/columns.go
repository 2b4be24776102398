package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"finetl/internal/config"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonWordRun     = regexp.MustCompile(`[^\w]+`)
	periodString   = regexp.MustCompile(`^(0?[1-9]|[1-8][0-9]|90)$`)
	periodHours    = regexp.MustCompile(`^(0?[1-9]|[1-8][0-9]|90)-[Hh]ours$`)
	leadingDigits  = regexp.MustCompile(`^\d+`)
)

// NormalizeLabel maps one observed column label to its canonical key. Exact
// synonym matches win; otherwise the first synonym contained in the label
// applies; otherwise the label is slugged to snake case. Empty labels
// normalize to the empty string.
func NormalizeLabel(rules *config.Rules, label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return ""
	}
	l = whitespaceRun.ReplaceAllString(l, " ")

	for _, syn := range rules.ColumnSynonyms {
		if l == syn.Label {
			return syn.Key
		}
	}
	for _, syn := range rules.ColumnSynonyms {
		if strings.Contains(l, syn.Label) {
			return syn.Key
		}
	}

	return strings.Trim(nonWordRun.ReplaceAllString(l, "_"), "_")
}

// MakeUnique disambiguates duplicate keys by appending _1, _2, ... to later
// occurrences. Empty keys become "unnamed" before deduplication so blank
// header cells stay addressable.
func MakeUnique(keys []string) []string {
	seen := make(map[string]int, len(keys))
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == "" {
			k = "unnamed"
		}
		if n, dup := seen[k]; dup {
			seen[k] = n + 1
			out[i] = fmt.Sprintf("%s_%d", k, n+1)
		} else {
			seen[k] = 0
			out[i] = k
		}
	}
	return out
}

// periodIndex reports the week number a header cell denotes, or 0 when the
// cell is not a period column. Accepts bare integers 1..maxPeriod, their
// zero-padded string forms, and "NN-Hours" labels.
func periodIndex(cell workbook.Cell, maxPeriod int) int {
	switch cell.Type {
	case workbook.CellNumber:
		n, ok := cell.Int()
		if ok && n >= 1 && n <= maxPeriod {
			return n
		}
	case workbook.CellString:
		s := strings.TrimSpace(cell.Text)
		if periodString.MatchString(s) {
			n := atoiLoose(s)
			if n >= 1 && n <= maxPeriod {
				return n
			}
		}
		if periodHours.MatchString(s) {
			n := atoiLoose(leadingDigits.FindString(s))
			if n >= 1 && n <= maxPeriod {
				return n
			}
		}
	}
	return 0
}

func atoiLoose(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// NormalizeColumns turns one header row into column descriptors: canonical
// unique keys plus period markers derived from the original cell values.
func NormalizeColumns(rules *config.Rules, header []workbook.Cell, maxPeriod int) []domain.ColumnDescriptor {
	keys := make([]string, len(header))
	for i, c := range header {
		keys[i] = NormalizeLabel(rules, c.Text)
	}
	keys = MakeUnique(keys)

	cols := make([]domain.ColumnDescriptor, len(header))
	for i, c := range header {
		period := periodIndex(c, maxPeriod)
		cols[i] = domain.ColumnDescriptor{
			OriginalLabel: c.Text,
			NormalizedKey: keys[i],
			IsPeriod:      period > 0,
			PeriodIndex:   period,
		}
	}

	// Some templates label the week columns with week-start dates instead of
	// week numbers. A date-typed header cell is a period column too; it gets
	// the 1-based ordinal of its position among the period columns.
	ordinal := 0
	for i, c := range header {
		if cols[i].IsPeriod {
			ordinal++
			continue
		}
		if c.Type == workbook.CellDate {
			ordinal++
			cols[i].IsPeriod = true
			cols[i].PeriodIndex = ordinal
		}
	}
	return cols
}
