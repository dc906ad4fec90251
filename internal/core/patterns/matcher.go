package patterns

import (
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
)

// MatchResult is every hit of one pattern against a document.
type MatchResult struct {
	Pattern    Pattern
	Captures   [][]string // one entry per hit, index 0 is the full match
	Confidence float64
}

// First returns capture group n of the first hit, trimmed.
func (m MatchResult) First(n int) string {
	if len(m.Captures) == 0 || n >= len(m.Captures[0]) {
		return ""
	}
	return strings.TrimSpace(m.Captures[0][n])
}

// MatchSet holds the matches of one Match call keyed by pattern name, in
// pattern order.
type MatchSet struct {
	order   []string
	results map[string]MatchResult
}

func newMatchSet(n int) *MatchSet {
	return &MatchSet{
		order:   make([]string, 0, n),
		results: make(map[string]MatchResult, n),
	}
}

// Match runs every pattern of provider against text. Unknown providers use
// the generic set.
func (l *Library) Match(text string, provider constants.Provider) *MatchSet {
	p := l.Provider(provider)
	set := newMatchSet(len(p.Patterns))
	for _, pat := range p.Patterns {
		hits := pat.Regex.FindAllStringSubmatch(text, -1)
		hits = nonEmpty(hits)
		if len(hits) == 0 {
			continue
		}
		if _, dup := set.results[pat.Name]; dup {
			continue
		}
		set.order = append(set.order, pat.Name)
		set.results[pat.Name] = MatchResult{Pattern: pat, Captures: hits, Confidence: pat.Confidence}
	}
	return set
}

// nonEmpty drops hits whose capture groups are all blank.
func nonEmpty(hits [][]string) [][]string {
	out := hits[:0]
	for _, h := range hits {
		if len(h) == 1 {
			if strings.TrimSpace(h[0]) != "" {
				out = append(out, h)
			}
			continue
		}
		for _, g := range h[1:] {
			if strings.TrimSpace(g) != "" {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// Best returns the match for field with the highest confidence. Ties go to
// the match encountered first.
func (s *MatchSet) Best(field FieldType) (MatchResult, bool) {
	var (
		best  MatchResult
		found bool
	)
	for _, name := range s.order {
		m := s.results[name]
		if m.Pattern.Field != field {
			continue
		}
		if !found || m.Confidence > best.Confidence {
			best, found = m, true
		}
	}
	return best, found
}

// ByField returns all matches for field in encounter order.
func (s *MatchSet) ByField(field FieldType) []MatchResult {
	var out []MatchResult
	for _, name := range s.order {
		if m := s.results[name]; m.Pattern.Field == field {
			out = append(out, m)
		}
	}
	return out
}

func (s *MatchSet) Get(name string) (MatchResult, bool) {
	m, ok := s.results[name]
	return m, ok
}

func (s *MatchSet) Len() int { return len(s.order) }

// All returns the matches in encounter order.
func (s *MatchSet) All() []MatchResult {
	out := make([]MatchResult, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.results[name])
	}
	return out
}
