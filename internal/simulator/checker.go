// Package simulator implements the complaint-handling roleplay: an angry
// customer driven by the completion service, and a rule-based checklist that
// decides when the trainee has handled the complaint.
package simulator

import (
	"strings"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

// markers are the trigger substrings for each category. Matching is
// case-sensitive and purely lexical; negations still count.
var markers = map[domain.Category][]string{
	domain.CategoryApology:     {"申し訳", "すみません"},
	domain.CategoryCause:       {"原因", "不注意", "確認不足"},
	domain.CategoryRemediation: {"今後", "再発防止", "改善"},
	domain.CategoryOffer:       {"作り直し", "返金", "お取り替え"},
}

// Check reports which categories text satisfies on its own.
// The result has an entry for every category.
func Check(text string) map[domain.Category]bool {
	hits := make(map[domain.Category]bool, len(domain.Categories))
	for _, cat := range domain.Categories {
		hits[cat] = containsAny(text, markers[cat])
	}
	return hits
}

// Markers returns a copy of the trigger substrings for a category.
func Markers(cat domain.Category) []string {
	return append([]string(nil), markers[cat]...)
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
