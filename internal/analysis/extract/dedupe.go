package extract

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// similarityThreshold is the minimum Levenshtein similarity ratio for two
// normalized cause texts to be considered the same cause. Exact matches and
// substring containment always merge regardless of this ratio.
const similarityThreshold = 0.85

// DeduplicateCausas merges causes whose root-cause texts are equivalent
// under normalized comparison. First-appearance order is preserved. The
// surviving record of a group is the first member carrying a non-empty
// action plan, else the first encountered; it keeps the position of the
// group's first appearance.
func DeduplicateCausas(causes []ExtractedCause) []ExtractedCause {
	if len(causes) == 0 {
		return nil
	}

	var (
		result []ExtractedCause
		keys   []string // normalized text of each group's first appearance
	)

	for _, cause := range causes {
		key := normalizeCausa(cause.CausaRaiz)
		if key == "" {
			continue
		}

		merged := false
		for i, existing := range keys {
			if !causasEquivalentes(existing, key) {
				continue
			}
			// A later plan-carrying record replaces a planless survivor
			// wholesale, keeping the group's position. The anchor text
			// stays at the first appearance so grouping is stable.
			if result[i].AccionPlan == "" && cause.AccionPlan != "" {
				result[i] = cause
			}
			merged = true
			break
		}

		if !merged {
			result = append(result, cause)
			keys = append(keys, key)
		}
	}

	return result
}

// normalizeCausa lowercases and collapses all whitespace runs to single
// spaces.
func normalizeCausa(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// causasEquivalentes reports whether two normalized cause texts describe the
// same cause: equality, substring containment, or Levenshtein similarity at
// or above the pinned threshold.
func causasEquivalentes(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return ratio >= similarityThreshold
}
