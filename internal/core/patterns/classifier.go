package patterns

import (
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
)

// Detect returns the first vendor, in registration order, with any keyword
// present in text. When a document mentions two vendors the earlier one wins.
func (l *Library) Detect(text string) constants.Provider {
	lower := strings.ToLower(text)
	for _, p := range l.providers {
		for _, k := range p.Keywords {
			if k != "" && strings.Contains(lower, k) {
				return p.Name
			}
		}
	}
	return constants.Generic
}
