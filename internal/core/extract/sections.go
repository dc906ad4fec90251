package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

type section int

const (
	sectionNone section = iota
	sectionEarnings
	sectionDeductions
	sectionTaxes
)

func (s section) String() string {
	switch s {
	case sectionEarnings:
		return "earnings"
	case sectionDeductions:
		return "deductions"
	case sectionTaxes:
		return "taxes"
	default:
		return "none"
	}
}

var (
	earningWords = []string{
		"regular", "reg pay", "overtime", "double time", "bonus", "commission",
		"holiday", "vacation", "sick", "pto", "salary", "tips", "shift differential",
		"retro pay", "severance", "wages",
	}
	deductionWords = []string{
		"401k", "401(k)", "403b", "403(b)", "roth", "retirement", "insurance",
		"medical", "dental", "vision", "health", "hsa", "fsa", "life", "disability",
		"garnishment", "union dues", "dues", "parking", "transit", "loan",
		"child support", "espp",
	}
	taxWords = []string{
		"federal", "fed income", "fed withholding", "fit", "state", "sit",
		"fica", "social security", "oasdi", "medicare", "local", "city", "county",
		"sdi", "sui", "futa", "withholding", "income tax",
	}
	preTaxWords  = []string{"401k", "401(k)", "403b", "403(b)", "medical", "dental", "vision", "health", "hsa", "fsa", "pre-tax", "pretax", "section 125", "parking", "transit"}
	postTaxWords = []string{"roth", "after-tax", "after tax", "post-tax", "post tax"}
)

var (
	reHours = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hrs|hours|hr)\b`)
	reRate  = regexp.MustCompile(`(?i)(?:@|\brate\b:?)\s*\$?(\d+(?:\.\d+)?)|\$?(\d+(?:\.\d+)?)\s*/\s*hr\b`)
)

// headerSection classifies a line as a section header: it names a section
// and carries no amount.
func headerSection(l string) (section, bool) {
	if normalize.HasMoney(l) {
		return sectionNone, false
	}
	switch {
	case strings.Contains(l, "statutory"), strings.Contains(l, "taxes"), strings.Contains(l, "withholdings"):
		return sectionTaxes, true
	case strings.Contains(l, "deduction"):
		return sectionDeductions, true
	case strings.Contains(l, "earning"):
		return sectionEarnings, true
	}
	return sectionNone, false
}

// scanSections appends earnings, deductions and taxes in source order.
func (e *Extractor) scanSections(r *ExtractionResult, text string) {
	lines := strings.Split(text, "\n")
	lower := make([]string, len(lines))
	headerless := true
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
		if _, ok := headerSection(lower[i]); ok {
			headerless = false
		}
	}

	current := sectionNone
	for i, l := range lower {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if s, ok := headerSection(l); ok {
			current = s
			continue
		}
		if strings.Contains(l, "net pay") {
			current = sectionNone
			continue
		}
		if current == sectionEarnings && strings.Contains(l, "deduction") {
			current = sectionDeductions
			continue
		}
		if strings.Contains(l, "total") || strings.Contains(l, "gross") {
			continue
		}
		cur, ok := currentPart(l)
		if !ok {
			continue
		}

		switch {
		case headerless:
			e.scanLine(r, lines[i], cur, sectionTaxes, sectionDeductions, sectionEarnings)
		case current == sectionEarnings:
			e.scanLine(r, lines[i], cur, sectionEarnings)
		case current == sectionDeductions, current == sectionTaxes:
			e.scanLine(r, lines[i], cur, sectionTaxes, sectionDeductions)
		}
	}
}

// scanLine tests a line against the vocabularies in order and appends the
// first hit that carries a nonzero amount. cur is the lower-cased
// current-period part of line.
func (e *Extractor) scanLine(r *ExtractionResult, line, cur string, order ...section) {
	for _, s := range order {
		kw, ok := firstKeyword(cur, vocabulary(s))
		if !ok {
			continue
		}
		amount, ok := normalize.RightmostMoney(cur)
		if !ok {
			return
		}
		amount = amount.Abs()
		desc := description(line, kw)
		switch s {
		case sectionEarnings:
			item := EarningItem{Description: desc, Amount: amount}
			item.Hours, item.Rate = hoursAndRate(cur)
			r.Earnings = append(r.Earnings, item)
		case sectionDeductions:
			r.Deductions = append(r.Deductions, DeductionItem{Description: desc, Amount: amount, PreTax: isPreTax(cur)})
		case sectionTaxes:
			r.Taxes = append(r.Taxes, TaxItem{Description: desc, Amount: amount})
		}
		return
	}
}

func vocabulary(s section) []string {
	switch s {
	case sectionEarnings:
		return earningWords
	case sectionDeductions:
		return deductionWords
	case sectionTaxes:
		return taxWords
	}
	return nil
}

func firstKeyword(lower string, words []string) (string, bool) {
	for _, w := range words {
		if keywordIndex(lower, w) >= 0 {
			return w, true
		}
	}
	return "", false
}

func isPreTax(lower string) bool {
	if _, ok := firstKeyword(lower, postTaxWords); ok {
		return false
	}
	_, ok := firstKeyword(lower, preTaxWords)
	return ok
}

// description is the text before the first numeric token on the line.
func description(line, kw string) string {
	var words []string
	for _, f := range strings.Fields(line) {
		if _, ok := parseNumber(f); ok || strings.HasPrefix(f, "$") || strings.HasPrefix(f, "(") {
			break
		}
		words = append(words, f)
	}
	desc := strings.TrimRight(strings.Join(words, " "), ":- ")
	if desc == "" {
		return kw
	}
	return desc
}

// hoursAndRate reads explicit "80 hrs" / "@ 25.00" annotations, else the
// leading pair of numbers when their product is a later number on the line.
func hoursAndRate(line string) (hours, rate *float64) {
	if m := reHours.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			hours = &v
		}
	}
	if m := reRate.FindStringSubmatch(line); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			rate = &v
		}
	}
	if hours != nil || rate != nil {
		return hours, rate
	}
	if h, r, _, ok := columnProduct(line); ok {
		return &h, &r
	}
	return nil, nil
}

// columnProduct finds the leading pair of numbers on line whose product is a
// later number, as in "80.00 25.00 2,000.00". The factor with more decimals
// is the rate.
func columnProduct(line string) (hours, rate float64, amount normalize.Money, ok bool) {
	var (
		nums     []float64
		decimals []int
		raw      []string
	)
	for _, f := range strings.Fields(line) {
		if v, ok := parseNumber(f); ok {
			nums = append(nums, v)
			decimals = append(decimals, fractionDigits(f))
			raw = append(raw, f)
		}
	}
	if len(nums) < 3 {
		return 0, 0, 0, false
	}
	hours, rate = nums[0], nums[1]
	for i, later := range nums[2:] {
		if later == 0 {
			continue
		}
		if diff := hours*rate - later; diff <= later*0.01 && diff >= -later*0.01 {
			if decimals[0] > decimals[1] {
				hours, rate = rate, hours
			}
			return hours, rate, normalize.ParseMoney(raw[i+2]).Abs(), true
		}
	}
	return 0, 0, 0, false
}

func parseNumber(f string) (float64, bool) {
	f = strings.Trim(f, "$(),-")
	f = strings.ReplaceAll(f, ",", "")
	if f == "" || f[0] < '0' || f[0] > '9' {
		return 0, false
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func fractionDigits(f string) int {
	f = strings.Trim(f, "$(),-")
	if i := strings.IndexByte(f, '.'); i >= 0 {
		return len(f) - i - 1
	}
	return 0
}
