package constants

import (
	"strings"
)

// PayFrequency is the canonical pay cadence reported on a paystub.
type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	SemiMonthly PayFrequency = "semi-monthly"
	Monthly     PayFrequency = "monthly"
	Unknown     PayFrequency = "unknown"
)

var allFrequencies = []PayFrequency{
	Weekly,
	Biweekly,
	SemiMonthly,
	Monthly,
	Unknown,
}

func FrequenciesAsStringSlice() []string {
	result := make([]string, len(allFrequencies))
	for i, f := range allFrequencies {
		result[i] = string(f)
	}
	return result
}

// Resolved reports whether f is a concrete cadence.
func (f PayFrequency) Resolved() bool {
	return f != "" && f != Unknown
}

// CanonicalizeFrequency maps loose labels ("bi-weekly", "Semi Monthly") onto a PayFrequency.
func CanonicalizeFrequency(input string) (PayFrequency, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]PayFrequency{
		"bi-weekly":     Biweekly,
		"bi weekly":     Biweekly,
		"fortnightly":   Biweekly,
		"semimonthly":   SemiMonthly,
		"semi monthly":  SemiMonthly,
		"twice monthly": SemiMonthly,
	}

	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFrequencies {
		if normalized == string(f) {
			return f, f != Unknown
		}
	}

	return Unknown, false
}
