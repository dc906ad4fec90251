package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
)

const (
	ytdExpr   = `(?:ytd|year[\s-]to[\s-]date)`
	ytdAmount = `[^\n\d$]*?\$?\s*((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)`
)

type ytdCategory struct {
	key      string
	forward  *regexp.Regexp // <category> ... ytd ... <amount>
	backward *regexp.Regexp // ytd ... <category> ... <amount>
}

func newYTDCategory(key, expr string) ytdCategory {
	return ytdCategory{
		key:      key,
		forward:  regexp.MustCompile(`(?i)` + expr + `[^\n]*?\b` + ytdExpr + `\b` + ytdAmount),
		backward: regexp.MustCompile(`(?i)\b` + ytdExpr + `\b[^\n]*?` + expr + ytdAmount),
	}
}

var ytdCategories = []ytdCategory{
	newYTDCategory("gross", `\bgross\b`),
	newYTDCategory("net", `\bnet\b`),
	newYTDCategory("federal", `\bfed(?:eral)?\b`),
	newYTDCategory("state", `\bstate\b`),
	newYTDCategory("social_security", `\b(?:social\s+security|oasdi|fica)\b`),
	newYTDCategory("medicare", `\bmedicare\b`),
	newYTDCategory("401k", `\b401\s*\(?k\)?`),
}

func hasYTD(lower string) bool {
	for _, m := range ytdMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// extractYTD fills the year-to-date map. Nothing is scanned unless the text
// mentions year-to-date at all.
func (e *Extractor) extractYTD(r *ExtractionResult, text string, matches *patterns.MatchSet) {
	if !hasYTD(strings.ToLower(text)) {
		return
	}
	ytd := make(map[string]normalize.Money)
	if m, ok := matches.Best(patterns.FieldYTDGross); ok {
		if v := normalize.ParseMoney(m.First(1)); v != 0 {
			ytd["gross"] = v
		}
	}
	if m, ok := matches.Best(patterns.FieldYTDNet); ok {
		if v := normalize.ParseMoney(m.First(1)); v != 0 {
			ytd["net"] = v
		}
	}
	for _, c := range ytdCategories {
		if _, done := ytd[c.key]; done {
			continue
		}
		for _, re := range []*regexp.Regexp{c.forward, c.backward} {
			if m := re.FindStringSubmatch(text); m != nil {
				if v := normalize.ParseMoney(m[1]); v != 0 {
					ytd[c.key] = v
					break
				}
			}
		}
	}
	if len(ytd) > 0 {
		r.YTD = ytd
	}
}
