package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Money is an amount in integer cents.
type Money int64

var reMoneyToken = regexp.MustCompile(`^\d+(?:\.\d*)?$|^\.\d+$`)

// MoneyPattern finds monetary values on a paystub line. A bare integer is not
// money (hours, ids, years) unless it carries a $ or thousands separators.
var MoneyPattern = regexp.MustCompile(`\(?-?\$\s?\d[\d,]*(?:\.\d{2})?\b\)?|\(?-?\b\d{1,3}(?:,\d{3})+(?:\.\d{2})?\b\)?|\(?-?\b\d+\.\d{2}\b\)?`)

// ParseMoney converts "$1,234.56", "1234.56", "$1234", "1,234", "(12.00)" or
// "-12.00" into cents. Anything unparsable is zero.
func ParseMoney(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "-") // trailing minus on some ADP layouts
	s = strings.ReplaceAll(s, ",", "")

	if !reMoneyToken.MatchString(s) {
		return 0
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	// cents are taken from the first two fractional digits; the rest is rounded
	frac += "000"
	cents, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0
	}
	if frac[2] >= '5' {
		cents++
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}

	v := Money(units*100 + cents)
	if neg {
		v = -v
	}
	return v
}

// MoneyFromFloat rounds a float amount to cents.
func MoneyFromFloat(f float64) Money {
	if f < 0 {
		return -Money(-f*100 + 0.5)
	}
	return Money(f*100 + 0.5)
}

func (m Money) Float64() float64 { return float64(m) / 100 }

func (m Money) IsZero() bool { return m == 0 }

func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// String renders the amount as a plain decimal, e.g. "2375.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*m = 0
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("money: %q is not a number", s)
	}
	*m = ParseMoney(s)
	return nil
}

// FindMoney returns the monetary substrings of line, left to right. Digits
// inside dates ("01.15.2024") are not money.
func FindMoney(line string) []string {
	return MoneyPattern.FindAllString(maskDates(line), -1)
}

// RightmostMoney returns the last monetary value on the line. Paystubs place
// the amount after description, hours and rate. A zero amount reports false.
func RightmostMoney(line string) (Money, bool) {
	all := FindMoney(line)
	if len(all) == 0 {
		return 0, false
	}
	v := ParseMoney(all[len(all)-1])
	return v, v != 0
}

// HasMoney reports whether line carries any monetary value.
func HasMoney(line string) bool {
	return MoneyPattern.MatchString(maskDates(line))
}

// maskDates blanks every date on line, keeping byte offsets.
func maskDates(line string) string {
	return DatePattern.ReplaceAllStringFunc(line, func(d string) string {
		return strings.Repeat(" ", len(d))
	})
}
