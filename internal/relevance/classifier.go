// Package relevance decides which bills belong in the tracker's output set.
package relevance

import "strings"

// Classifier is a two-stage substring matcher: a bill must mention one of the
// anchor terms and then at least one policy term.
type Classifier struct {
	anchors []string
	policy  []string
}

// New builds a Classifier. Terms are trimmed and case-folded; blanks are dropped.
func New(anchorTerms, policyTerms []string) *Classifier {
	return &Classifier{
		anchors: lowerTerms(anchorTerms),
		policy:  lowerTerms(policyTerms),
	}
}

// IsRelevant reports whether the title/description pair passes both stages.
func (c *Classifier) IsRelevant(title, description string) bool {
	if c == nil {
		return false
	}
	text := strings.ToLower(title + " " + description)
	if !containsAny(text, c.anchors) {
		return false
	}
	return containsAny(text, c.policy)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lowerTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, term := range in {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		out = append(out, term)
	}
	return out
}
