// Package ingest implements the heuristic extraction pipeline for financial
// planning workbooks: sheet classification, header detection, column
// normalization, metadata capture, period melting and rate merging.
package ingest

import (
	"regexp"
	"strings"

	"finetl/internal/config"
	"finetl/pkg/contracts/domain"
)

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ClassifySheet infers a sheet's semantic type from its name. Skip patterns
// are checked before anything else, then each type's patterns in rule order;
// the first match wins. Names carrying a year but matching nothing default
// to plan, since year-stamped tabs are almost always allocation plans.
func ClassifySheet(rules *config.Rules, sheetName string) domain.SheetType {
	name := strings.ToLower(strings.TrimSpace(sheetName))

	for _, p := range rules.SkipPatterns {
		if p.MatchString(name) {
			return domain.SheetSkip
		}
	}

	for _, rule := range rules.SheetRules {
		for _, p := range rule.Patterns {
			if p.MatchString(name) {
				return rule.Type
			}
		}
	}

	if yearPattern.MatchString(name) {
		return domain.SheetPlan
	}

	return domain.SheetUnknown
}
