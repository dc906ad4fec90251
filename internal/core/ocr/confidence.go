package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr   = regexp.MustCompile(`\busd\b|\$`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
)

var paystubTerms = []string{"gross", "net pay", "earnings", "deductions", "pay period", "pay date", "ytd"}

// heuristicConfidence rates acquired text by how paystub-like it looks.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.1)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.1
	}
	if reAmount.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	}
	hits := 0
	for _, term := range paystubTerms {
		if strings.Contains(txtL, term) {
			hits++
		}
	}
	score += 0.3 * float32(min(hits, 3)) / 3
	if score > 1.0 {
		score = 1.0
	}
	return score
}
