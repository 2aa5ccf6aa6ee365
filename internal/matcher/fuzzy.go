package matcher

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Fuzzy-similarity bonus tiers. The mapping is deliberately asymmetric:
// strong matches get a large boost while weak coincidental overlaps get
// nothing at all, so fuzzy similarity can never rescue a bad candidate.
const (
	fuzzyHighThreshold = 85
	fuzzyHighBonus     = 50
	fuzzyMidThreshold  = 60
	fuzzyMidBonus      = 25
)

// Similarity scores how alike two strings are on a 0-100 scale. It blends
// an order-independent token-overlap ratio (60%) with a best-alignment
// substring similarity (40%), then takes the alignment term alone when it
// is stronger, so a clean containment or a single-word typo is not diluted
// by low token overlap.
func Similarity(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	token := tokenOverlapRatio(a, b)
	align := bestAlignmentRatio(a, b)

	combined := int(0.6*float64(token) + 0.4*float64(align))
	if align > combined {
		return align
	}
	return combined
}

// FuzzyBonus maps a similarity score onto the thresholded score bonus.
func FuzzyBonus(similarity int) int {
	switch {
	case similarity >= fuzzyHighThreshold:
		return fuzzyHighBonus
	case similarity >= fuzzyMidThreshold:
		return fuzzyMidBonus
	default:
		return 0
	}
}

// tokenOverlapRatio is the Jaccard ratio of the two word sets, 0-100.
func tokenOverlapRatio(a, b string) int {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA)
	for w := range setB {
		if !setA[w] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return 100 * intersection / union
}

// bestAlignmentRatio slides the shorter string across the longer and
// returns the best Levenshtein similarity of any equal-length window,
// 0-100. A short string fully contained in a long one scores 100.
func bestAlignmentRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	params := levenshtein.NewParams()
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		window := string(long[i : i+len(short)])
		if sim := levenshtein.Similarity(string(short), window, params); sim > best {
			best = sim
			if best == 1.0 {
				break
			}
		}
	}
	return int(best * 100)
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if w != "" {
			set[w] = true
		}
	}
	return set
}
