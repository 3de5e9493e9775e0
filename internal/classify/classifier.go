package classify

import "strings"

// DefaultKeywords are swap-related tokens matched as substrings.
// This is a heuristic over raw log text, not a parse of instruction
// data; false positives and negatives are accepted.
var DefaultKeywords = []string{
	"swap",
	"Swap",
	"Instruction: Buy",
	"Instruction: Sell",
}

// Classifier decides whether a log notification is exchange-relevant.
type Classifier struct {
	programs []string
	keywords []string
}

// NewClassifier creates a Classifier. Nil keywords use DefaultKeywords.
func NewClassifier(programIDs, keywords []string) *Classifier {
	if keywords == nil {
		keywords = DefaultKeywords
	}
	return &Classifier{programs: programIDs, keywords: keywords}
}

// IsRelevant reports whether any log line contains a configured program
// id or keyword as a substring, and which rule matched first.
func (c *Classifier) IsRelevant(logs []string) (bool, string) {
	for _, line := range logs {
		for _, program := range c.programs {
			if strings.Contains(line, program) {
				return true, program
			}
		}
		for _, kw := range c.keywords {
			if strings.Contains(line, kw) {
				return true, kw
			}
		}
	}
	return false, ""
}
