package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
)

// Keyword lists for the line scanner fallback, most specific first.
var (
	grossKeywords  = []string{"total gross", "gross pay", "gross earnings", "gross wages", "gross"}
	netKeywords    = []string{"net pay", "net amount", "net check", "take home", "net"}
	payDateWords   = []string{"pay date", "check date", "payment date", "deposit date", "advice date", "pay day"}
	periodWords    = []string{"pay period", "period dates", "period"}
	startWords     = []string{"period beginning", "period begin", "period start", "start date"}
	endWords       = []string{"period ending", "period end", "end date"}
	employerWords  = []string{"employer name", "company name", "employer", "company"}
	employeeWords  = []string{"employee name", "employee", "name"}
	addressWords   = []string{"employer address", "company address", "address"}
	employeeIDWord = []string{"employee id", "employee number", "employee no", "emp id", "file number"}
)

var (
	reLabelValue = regexp.MustCompile(`^\s*([^:]{1,40}?)\s*:\s*(.+?)\s*$`)
	reDigits     = regexp.MustCompile(`\d`)
)

// fieldScanner resolves single-value fields: engine match first, then a
// line scan trying "keyword value" before "value keyword".
type fieldScanner struct {
	matches *patterns.MatchSet
	lines   []string
	lower   []string
}

func newFieldScanner(text string, matches *patterns.MatchSet) *fieldScanner {
	lines := strings.Split(text, "\n")
	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}
	return &fieldScanner{matches: matches, lines: lines, lower: lower}
}

// money resolves an amount field. Engine patterns are re-run line by line on
// the current-period part so a YTD column never supplies the value.
func (s *fieldScanner) money(field patterns.FieldType, keywords []string) normalize.Money {
	for _, m := range s.byConfidence(field) {
		for _, line := range s.lower {
			cur, ok := currentPart(line)
			if !ok {
				continue
			}
			loc := m.Pattern.Regex.FindStringSubmatchIndex(cur)
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			if v, ok := labelAmount(cur[loc[2]:], cur[loc[2]:loc[3]]); ok {
				return v
			}
		}
	}
	for _, kw := range keywords {
		for _, line := range s.lower {
			l, ok := currentPart(line)
			if !ok {
				continue
			}
			idx := keywordIndex(l, kw)
			if idx < 0 {
				continue
			}
			rest := l[idx+len(kw):]
			if v, ok := labelAmount(rest, ""); ok {
				return v
			}
			if v, ok := normalize.RightmostMoney(l[:idx]); ok {
				return v.Abs()
			}
		}
	}
	return 0
}

// labelAmount reads the amount that follows a label. When hours and rate
// columns lead, the amount is their product column; otherwise it is the
// captured value, else the first nonzero amount in rest.
func labelAmount(rest, captured string) (normalize.Money, bool) {
	if _, _, v, ok := columnProduct(rest); ok && v != 0 {
		return v, true
	}
	if captured != "" {
		if v := normalize.ParseMoney(captured).Abs(); v != 0 {
			return v, true
		}
	}
	return firstMoney(rest)
}

// byConfidence lists the matches for field, highest weight first and
// encounter order among equals.
func (s *fieldScanner) byConfidence(field patterns.FieldType) []patterns.MatchResult {
	ms := s.matches.ByField(field)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Confidence > ms[j].Confidence })
	return ms
}

func (s *fieldScanner) date(field patterns.FieldType, keywords []string) string {
	if m, ok := s.matches.Best(field); ok {
		if d := m.First(1); d != "" {
			return normalize.NormalizeDate(d)
		}
	}
	for _, kw := range keywords {
		for _, l := range s.lower {
			idx := keywordIndex(l, kw)
			if idx < 0 {
				continue
			}
			if d := normalize.ExtractDate(l[idx+len(kw):]); d != "" {
				return normalize.NormalizeDate(d)
			}
			if all := normalize.DatePattern.FindAllString(l[:idx], -1); len(all) > 0 {
				return normalize.NormalizeDate(all[len(all)-1])
			}
		}
	}
	return ""
}

// period resolves pay-period start and end from a range match, separate
// start/end labels, or a line with two dates after a period keyword.
func (s *fieldScanner) period() (start, end string) {
	if m, ok := s.matches.Best(patterns.FieldDateRange); ok {
		start, end = normalize.NormalizeDate(m.First(1)), normalize.NormalizeDate(m.First(2))
	}
	if start == "" {
		start = s.date(patterns.FieldPeriodStart, startWords)
	}
	if end == "" {
		end = s.date(patterns.FieldPeriodEnd, endWords)
	}
	if start != "" && end != "" {
		return start, end
	}
	for _, kw := range periodWords {
		for _, l := range s.lower {
			idx := keywordIndex(l, kw)
			if idx < 0 {
				continue
			}
			all := normalize.DatePattern.FindAllString(l[idx+len(kw):], -1)
			if len(all) >= 2 {
				return normalize.NormalizeDate(all[0]), normalize.NormalizeDate(all[1])
			}
		}
	}
	return start, end
}

func (s *fieldScanner) text(field patterns.FieldType, keywords []string) string {
	if m, ok := s.matches.Best(field); ok && field != "" {
		if v := m.First(1); v != "" {
			return v
		}
	}
	for _, kw := range keywords {
		for i := range s.lines {
			if v := labelValue(s.lines[i], kw); v != "" {
				return v
			}
		}
	}
	return ""
}

// identifier is like text but accepts only values that contain a digit.
func (s *fieldScanner) identifier(field patterns.FieldType, keywords []string) string {
	v := s.text(field, keywords)
	if !reDigits.MatchString(v) {
		return ""
	}
	if i := strings.IndexAny(v, " \t"); i > 0 {
		v = v[:i]
	}
	return v
}

// labelValue returns the value of a "label: value" line whose label is kw.
func labelValue(line, kw string) string {
	m := reLabelValue.FindStringSubmatch(line)
	if m == nil || strings.ToLower(m[1]) != kw {
		return ""
	}
	if normalize.HasMoney(m[2]) {
		return ""
	}
	return m[2]
}

// keywordIndex finds kw in l on word boundaries.
func keywordIndex(l, kw string) int {
	from := 0
	for {
		i := strings.Index(l[from:], kw)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(kw)
		if (i == 0 || !isWordByte(l[i-1])) && (end == len(l) || !isWordByte(l[end])) {
			return i
		}
		from = i + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func firstMoney(s string) (normalize.Money, bool) {
	for _, raw := range normalize.FindMoney(s) {
		if v := normalize.ParseMoney(raw).Abs(); v != 0 {
			return v, true
		}
	}
	return 0, false
}

var ytdMarkers = []string{"ytd", "year to date", "year-to-date"}

// currentPart cuts a lower-cased line at its first year-to-date marker. Lines
// that start with the marker have no current-period part.
func currentPart(l string) (string, bool) {
	cut := len(l)
	for _, m := range ytdMarkers {
		if i := keywordIndex(l, m); i >= 0 && i < cut {
			cut = i
		}
	}
	cur := l[:cut]
	if strings.TrimSpace(cur) == "" {
		return "", false
	}
	return cur, true
}

func (e *Extractor) extractSingleValues(r *ExtractionResult, s *fieldScanner) {
	r.GrossPay = s.money(patterns.FieldGrossPay, grossKeywords)
	r.NetPay = s.money(patterns.FieldNetPay, netKeywords)
	r.PayPeriodStart, r.PayPeriodEnd = s.period()
	r.PayDate = s.date(patterns.FieldPayDate, payDateWords)

	r.Employer.Name = s.text(patterns.FieldEmployerName, employerWords)
	r.Employer.Address = s.text("", addressWords)
	r.Employer.EIN = s.identifier(patterns.FieldEIN, nil)

	r.Employee.Name = s.text(patterns.FieldEmployeeName, employeeWords)
	r.Employee.EmployeeID = s.identifier(patterns.FieldEmployeeID, employeeIDWord)
	if m, ok := s.matches.Best(patterns.FieldSSNLast4); ok {
		r.Employee.SSNLast4 = m.First(1)
	}
}
