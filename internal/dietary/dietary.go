// Package dietary screens products against allergies and dietary
// restrictions using the lexicon keyword tables. Screening is advisory:
// it partitions and annotates, and the matcher decides how far to degrade
// when nothing safe is left.
package dietary

import (
	"fmt"
	"strings"

	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
)

// Constraints is the set of declared allergies and dietary restrictions
// for one matching run. Values are lowercase table keys ("nuts", "vegan").
type Constraints struct {
	Allergies []string
	Dietary   []string
}

// Empty reports whether no constraint is declared.
func (c Constraints) Empty() bool {
	return len(c.Allergies) == 0 && len(c.Dietary) == 0
}

// Names returns all constraint names, allergies first.
func (c Constraints) Names() []string {
	out := make([]string, 0, len(c.Allergies)+len(c.Dietary))
	out = append(out, c.Allergies...)
	out = append(out, c.Dietary...)
	return out
}

// searchText concatenates the product fields the keyword tables match
// against, lowercased.
func searchText(p model.Product) string {
	parts := []string{p.Name, p.Category, p.Subcategory}
	parts = append(parts, p.Labels...)
	return strings.ToLower(strings.Join(parts, " "))
}

// CheckAllergySafety screens one product against declared allergies.
// Unknown allergy names fall back to matching the name itself as the
// keyword. A product explicitly labeled free of the allergen (e.g.
// "laktosefri") is exempt from that allergen's screen. "May contain
// traces" phrasing adds a warning without making the product unsafe.
func CheckAllergySafety(lex *lexicon.Lexicon, p model.Product, allergies []string) model.SafetyCheckResult {
	text := searchText(p)
	res := model.SafetyCheckResult{Safe: true, ProductName: p.Name}

	for _, allergy := range allergies {
		key := strings.ToLower(strings.TrimSpace(allergy))
		if _, marked := lexicon.ContainsAny(text, lex.SafeIndicators[key]); marked {
			continue
		}
		keywords, ok := lex.AllergenKeywords[key]
		if !ok {
			keywords = []string{key}
		}
		if kw, found := lexicon.ContainsAny(text, keywords); found {
			res.AllergensFound = append(res.AllergensFound, fmt.Sprintf("%s: %q", allergy, kw))
		}
	}
	res.Safe = len(res.AllergensFound) == 0

	if pattern, found := lexicon.ContainsAny(text, lex.TracePatterns); found {
		res.Warnings = append(res.Warnings, fmt.Sprintf("may contain allergen traces (%q)", pattern))
	}

	return res
}

// CheckDietaryCompatibility screens one product against dietary
// restrictions. A product explicitly labeled safe for a restriction
// (e.g. "vegansk") is exempt from that restriction's keyword screen.
func CheckDietaryCompatibility(lex *lexicon.Lexicon, p model.Product, dietary []string) model.DietaryCheckResult {
	text := searchText(p)
	res := model.DietaryCheckResult{Compatible: true, ProductName: p.Name}

	for _, restriction := range dietary {
		key := strings.ToLower(strings.TrimSpace(restriction))

		if _, marked := lexicon.ContainsAny(text, lex.SafeIndicators[key]); marked {
			continue
		}
		if kw, found := lexicon.ContainsAny(text, lex.DietaryKeywords[key]); found {
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("%s: contains %q", restriction, kw))
		}
	}
	res.Compatible = len(res.Conflicts) == 0

	if res.Compatible {
		labeled := false
		for _, indicators := range lex.SafeIndicators {
			if _, found := lexicon.ContainsAny(text, indicators); found {
				labeled = true
				break
			}
		}
		if !labeled {
			res.Warnings = append(res.Warnings, "no dietary labels found - verify manually")
		}
	}

	return res
}

// Partition splits candidates into safe and unsafe under the constraints,
// preserving order within each side. Warnings collects trace-style soft
// warnings from the safe side.
func Partition(lex *lexicon.Lexicon, products []model.Product, c Constraints) (safe, unsafe []model.Product, warnings []string) {
	for _, p := range products {
		allergy := CheckAllergySafety(lex, p, c.Allergies)
		diet := CheckDietaryCompatibility(lex, p, c.Dietary)

		if allergy.Safe && diet.Compatible {
			safe = append(safe, p)
			warnings = append(warnings, allergy.Warnings...)
		} else {
			unsafe = append(unsafe, p)
		}
	}
	return safe, unsafe, warnings
}

// SafeAlternativeQuery derives a modified search query by prepending the
// first applicable safety modifier (e.g. "laktosefri mælk"). Empty string
// means no modifier applies.
func SafeAlternativeQuery(lex *lexicon.Lexicon, name string, c Constraints) string {
	for _, constraint := range c.Names() {
		if mod, ok := lex.SafeModifiers[strings.ToLower(constraint)]; ok {
			return mod + " " + name
		}
	}
	return ""
}

// UnmetWarning renders the human-readable phase-3 warning naming the
// constraints no candidate satisfied.
func UnmetWarning(ingredient string, c Constraints) string {
	return fmt.Sprintf("no products for %q satisfy: %s", ingredient, strings.Join(c.Names(), ", "))
}
