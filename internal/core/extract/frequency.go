package extract

import (
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

// Checked in order: the longer cadences contain the shorter ones as
// substrings ("biweekly" contains "weekly").
var frequencyPhrases = []struct {
	phrases []string
	freq    constants.PayFrequency
}{
	{[]string{"bi-weekly", "biweekly", "bi weekly", "every two weeks", "fortnightly"}, constants.Biweekly},
	{[]string{"weekly"}, constants.Weekly},
	{[]string{"semi-monthly", "semimonthly", "semi monthly", "twice a month", "twice monthly"}, constants.SemiMonthly},
	{[]string{"monthly"}, constants.Monthly},
}

// InferFrequency resolves the pay cadence from an explicit mention in text,
// falling back to the inclusive day count between start and end (ISO dates).
func InferFrequency(text, start, end string) constants.PayFrequency {
	lower := strings.ToLower(text)
	for _, f := range frequencyPhrases {
		for _, p := range f.phrases {
			if strings.Contains(lower, p) {
				return f.freq
			}
		}
	}
	return frequencyFromDates(start, end)
}

func frequencyFromDates(start, end string) constants.PayFrequency {
	s, ok := normalize.ParseISODate(start)
	if !ok {
		return constants.Unknown
	}
	e, ok := normalize.ParseISODate(end)
	if !ok || e.Before(s) {
		return constants.Unknown
	}
	days := int(e.Sub(s).Hours()/24) + 1
	switch {
	case days >= 6 && days <= 8:
		return constants.Weekly
	case days >= 13 && days <= 16:
		if s.Day() == 1 || s.Day() == 16 {
			return constants.SemiMonthly
		}
		return constants.Biweekly
	case days >= 28 && days <= 31:
		return constants.Monthly
	}
	return constants.Unknown
}
