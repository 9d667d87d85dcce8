package usecase

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Package-level compiled regex pattern for performance
var digitRunRegex = regexp.MustCompile(`\p{Nd}+`)

// unknownSpecValues are the sentinel strings the catalog uses for undocumented specs.
// Matching is exact and case-sensitive.
var unknownSpecValues = map[string]bool{
	"":        true,
	"N/A":     true,
	"Unknown": true,
}

// NormalizeSpecValue extracts a comparable magnitude from a raw spec string.
// Thousands separators are stripped and the first run of decimal digits is parsed,
// so "5,000 mAh" yields 5000 and "1440 x 3120" yields 1440. Any Unicode decimal
// digit counts, so "５０００ mAh" also yields 5000.
// The second return value is false when the value is absent: empty, a sentinel,
// or containing no digits. Runs too large for int64 saturate at math.MaxInt64.
func NormalizeSpecValue(raw string) (int64, bool) {
	if unknownSpecValues[raw] {
		return 0, false
	}

	cleaned := strings.ReplaceAll(raw, ",", "")
	run := digitRunRegex.FindString(cleaned)
	if run == "" {
		return 0, false
	}

	var value int64
	for _, r := range run {
		d := int64(digitValue(r))
		if value > (math.MaxInt64-d)/10 {
			return math.MaxInt64, true
		}
		value = value*10 + d
	}
	return value, true
}

// digitValue returns the numeric value of a decimal digit rune.
// Decimal digits come in contiguous blocks of ten starting at zero, so the
// value is the offset from the start of the surrounding digit range.
func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}
