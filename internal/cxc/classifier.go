package cxc

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keyword fallbacks for lines whose account is not configured. Historical
// descriptions are free text in Spanish with inconsistent accents, so
// matching happens on the accent-folded, lowercased form.
var (
	interestKeywords = []string{"interes", "mora"}
	fineKeywords     = []string{"multa", "sancion"}
)

// Classify tags a document line with its payment-priority category.
// Structured account lookup wins over keyword matching; unmatched lines fall
// back to CAPITAL. The second return reports whether any rule matched, so the
// engine can record the fallback as a warning.
func Classify(line DocumentLine, cfg Config) (Category, bool) {
	if _, ok := cfg.InterestAccountIDs[line.AccountID]; ok {
		return CategoryInterest, true
	}
	if _, ok := cfg.FineAccountIDs[line.AccountID]; ok {
		return CategoryFine, true
	}
	desc := foldAccents(strings.ToLower(line.Description))
	for _, kw := range interestKeywords {
		if strings.Contains(desc, kw) {
			return CategoryInterest, true
		}
	}
	for _, kw := range fineKeywords {
		if strings.Contains(desc, kw) {
			return CategoryFine, true
		}
	}
	return CategoryCapital, false
}

// foldAccents strips combining marks so "Interés" matches "interes".
func foldAccents(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return out
}
