// Package query turns an ingredient name into an ordered list of catalog
// search strings, best candidates first.
package query

import (
	"strings"

	"github.com/sells-group/shopper-cli/internal/lexicon"
)

// Generator produces candidate search queries from lexicon tables.
type Generator struct {
	lex *lexicon.Lexicon
}

// New creates a Generator over the given lexicon.
func New(lex *lexicon.Lexicon) *Generator {
	return &Generator{lex: lex}
}

// Generate returns deduplicated candidate queries for an ingredient,
// ordered by expected precision:
//
//  1. context-specific override (when mealContext matches)
//  2. general term improvement for the exact normalized name
//  3. Danish translation (exact name, phrase substring, then per word)
//  4. name with filler words removed
//  5. raw name when distinct from the cleaned form
//  6. first word of the cleaned name, and its translation, for multi-word
//     names — the first word is usually the head noun
//
// The first entry is the primary query used for display and fallback.
func (g *Generator) Generate(name, mealContext string) []string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return nil
	}

	var queries []string
	add := func(q string) {
		if q == "" {
			return
		}
		for _, existing := range queries {
			if existing == q {
				return
			}
		}
		queries = append(queries, q)
	}

	add(g.lex.ContextQuery(n, mealContext))

	if improved, ok := g.lex.TermImprovements[n]; ok {
		add(improved)
	}

	add(g.lex.Translate(n))

	cleaned := g.Clean(n)
	add(cleaned)
	if n != cleaned {
		add(n)
	}

	words := strings.Fields(cleaned)
	if len(words) > 1 {
		add(g.lex.Translate(words[0]))
		add(words[0])
	}

	return queries
}

// Primary returns the first query Generate would emit, or the name itself
// when nothing applies.
func (g *Generator) Primary(name, mealContext string) string {
	if qs := g.Generate(name, mealContext); len(qs) > 0 {
		return qs[0]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Clean removes descriptive filler words (sizes, prep states, in both
// languages) that hurt catalog search. Falls back to the input when every
// word is filler.
func (g *Generator) Clean(name string) string {
	filler := make(map[string]bool, len(g.lex.FillerWords))
	for _, w := range g.lex.FillerWords {
		filler[w] = true
	}

	var kept []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if !filler[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return strings.Join(kept, " ")
}
