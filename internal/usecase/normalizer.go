package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var multiSpacePattern = regexp.MustCompile(`\s+`)

// synonymTable maps shop-floor shorthand and abbreviations to the canonical
// vocabulary used in the catalog. Replacements are applied token-wise after
// lowercasing. Every replacement must itself be a fixed point of Normalize,
// which keeps Normalize idempotent.
var synonymTable = map[string]string{
	// Fastener grades
	"gr2":  "2",
	"gr5":  "5",
	"gr8":  "8",
	"gr-8": "8",

	// Materials
	"ss":   "stainless steel",
	"sst":  "stainless steel",
	"stn":  "stainless steel",
	"al":   "aluminum",
	"alum": "aluminum",
	"brs":  "brass",
	"cs":   "carbon steel",

	// Finishes
	"galv":  "galvanized",
	"galvd": "galvanized",
	"hdg":   "hot dip galvanized",
	"zn":    "zinc",
	"zp":    "zinc plated",
	"blk":   "black",
	"pltd":  "plated",

	// Head/drive styles
	"hx":   "hex",
	"phil": "phillips",
	"sckt": "socket",
	"fl":   "flat",
	"rnd":  "round",

	// Thread descriptors
	"crs": "coarse",
	"fn":  "fine",
	"thd": "threaded",
}

// Normalize canonicalizes a property value for comparison: lowercases,
// trims, collapses internal whitespace, and rewrites known abbreviations.
// Unmapped input passes through normalized but otherwise unchanged.
// Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	value := strings.ToLower(strings.TrimSpace(raw))
	value = multiSpacePattern.ReplaceAllString(value, " ")
	if value == "" {
		return ""
	}

	words := strings.Split(value, " ")
	rewritten := make([]string, 0, len(words))
	for _, word := range words {
		if replacement, ok := synonymTable[word]; ok {
			rewritten = append(rewritten, replacement)
		} else {
			rewritten = append(rewritten, word)
		}
	}

	return strings.Join(rewritten, " ")
}
