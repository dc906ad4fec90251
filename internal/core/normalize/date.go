package normalize

import (
	"regexp"
	"strings"
	"time"
)

// ISODate is the canonical date layout of extraction results.
const ISODate = "2006-01-02"

var dateLayouts = []string{
	ISODate,
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"01.02.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

var (
	reDateSpaces = regexp.MustCompile(`\s+`)
	reDateSep    = regexp.MustCompile(`\s*([/\-.,])\s*`)
	reMonthDot   = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.`)
	reOrdinal    = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
)

// NormalizeDate returns s as YYYY-MM-DD when it parses as one of the paystub
// date layouts, and the trimmed input unchanged otherwise.
func NormalizeDate(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ""
	}
	if t, ok := parseDate(raw); ok {
		return t.Format(ISODate)
	}
	return raw
}

// IsISODate reports whether s is a strict YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	_, ok := ParseISODate(s)
	return ok
}

func ParseISODate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(ISODate, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var ocrDigitFixes = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
	"S", "5",
	"B", "8",
)

// RepairOCRDate is the second normalization attempt for dates that did not
// parse: it fixes letter/digit confusions and stray separators, then retries.
func RepairOCRDate(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" || IsISODate(raw) {
		return raw
	}
	if t, ok := parseDate(raw); ok {
		return t.Format(ISODate)
	}
	// month names must keep their letters, only repair all-numeric shapes
	if !strings.ContainsAny(strings.ToLower(raw), "acdefghjkmnpqrtuvwxyz") {
		fixed := ocrDigitFixes.Replace(raw)
		fixed = reDateSep.ReplaceAllString(fixed, "$1")
		fixed = strings.ReplaceAll(fixed, " ", "")
		if t, ok := parseDate(fixed); ok {
			return t.Format(ISODate)
		}
	}
	return raw
}

func parseDate(raw string) (time.Time, bool) {
	s := reDateSpaces.ReplaceAllString(raw, " ")
	s = reMonthDot.ReplaceAllString(s, "$1")
	s = reOrdinal.ReplaceAllString(s, "$1")
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(strings.ToLower(s), "sept") {
		s = "Sep" + s[4:]
	}
	s = titleMonth(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			if t.Year() < 1900 || t.Year() > 2100 {
				continue
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// titleMonth turns "JAN 15, 2024" into "Jan 15, 2024" so time.Parse accepts it.
func titleMonth(s string) string {
	b := []byte(s)
	start := -1
	for i := 0; i <= len(b); i++ {
		isLetter := i < len(b) && ((b[i] >= 'a' && b[i] <= 'z') || (b[i] >= 'A' && b[i] <= 'Z'))
		if isLetter && start < 0 {
			start = i
			continue
		}
		if !isLetter && start >= 0 {
			for j := start; j < i; j++ {
				if j == start {
					if b[j] >= 'a' && b[j] <= 'z' {
						b[j] -= 'a' - 'A'
					}
				} else if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			start = -1
		}
	}
	return string(b)
}

// ExtractDate finds the first date-looking substring in s.
func ExtractDate(s string) string {
	return DatePattern.FindString(s)
}

// DatePattern matches the date shapes NormalizeDate understands. It is meant
// to be embedded inside larger capture patterns.
var DatePattern = regexp.MustCompile(DateExpr)

// DateExpr is the uncompiled form of DatePattern.
const DateExpr = `(?:\d{4}-\d{2}-\d{2}|\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|(?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[A-Za-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}|\d{1,2}\s+(?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[A-Za-z]*\.?,?\s+\d{4})`
