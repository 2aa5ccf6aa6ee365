package matcher

import (
	"strings"

	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
)

// Fixed score weights. Availability dominates every positive bonus so an
// out-of-stock product can never outrank an otherwise-identical available
// one. The smart-organic magnitudes live in Options because they are
// tunable heuristics, not invariants.
const (
	unavailablePenalty = -400
	preferredBonus     = 75
	nonFoodPenalty     = -100
	snackPenalty       = -75
	foodBonus          = 50
	prefixBonus        = 100
	containsBonus      = 50
	allTokensBonus     = 40
	perWordBonus       = 30
	compoundBonus      = 45
	derivativePenalty  = -40
	flavorPenalty      = -60
	cleaningPenalty    = -100
	contextBonus       = 150
	organicFlatBonus   = 40
	budgetBonusCap     = 50
)

// Options control preference scoring for one matching run.
type Options struct {
	PreferOrganic      bool    // flat bonus for organic products
	SmartOrganic       bool    // organic bonus only when price-competitive
	PreferBudget       bool    // reward low unit price
	OrganicThreshold   float64 // max DKK above cheapest non-organic for smart bonus
	SmartOrganicBonus  int
	SmartOrganicMalus  int
	MaxAlternatives    int
	Concurrency        int
}

// scoreInput is the per-candidate transient scoring state. It lives in a
// parallel structure for the duration of one scoring call; nothing is ever
// written onto the shared Product record.
type scoreInput struct {
	ingredient         string  // lowercased ingredient name
	query              string  // lowercased query that discovered the product
	contextHit         bool    // discovered via a context-override query
	preferred          bool    // purchased before per the preference store
	cheapestNonOrganic float64 // batch stat for smart-organic, 0 when absent
}

// scorer computes the additive relevance score for candidates.
type scorer struct {
	lex  *lexicon.Lexicon
	opts Options
}

func (s *scorer) score(p model.Product, in scoreInput) int {
	score := 0
	name := strings.ToLower(p.Name)
	ingredientWords := strings.Fields(in.ingredient)

	if !p.Available {
		score += unavailablePenalty
	}
	if in.preferred {
		score += preferredBonus
	}
	if in.contextHit {
		score += contextBonus
	}

	score += s.categoryScore(p.Category, in.ingredient)
	score += s.textualOverlap(name, in.query, ingredientWords)
	score += FuzzyBonus(Similarity(in.ingredient, name))
	score += s.compoundScore(name, in.query)
	score += s.organicScore(p, in)
	score += s.budgetScore(p)
	score += s.derivativeScore(name, in.ingredient)
	score += s.flavorScore(name, ingredientWords)
	score += s.cleaningScore(name, in.ingredient)

	return score
}

func (s *scorer) categoryScore(category, ingredient string) int {
	for _, c := range s.lex.NonFoodCategories {
		if category == c {
			return nonFoodPenalty
		}
	}
	for _, c := range s.lex.SnackCategories {
		if category == c {
			// Looking for snacks on purpose suppresses the penalty.
			if _, isSnack := lexicon.ContainsAny(ingredient, s.lex.SnackTerms); !isSnack {
				return snackPenalty
			}
			return 0
		}
	}
	for _, c := range s.lex.FoodCategories {
		if category == c {
			return foodBonus
		}
	}
	return 0
}

func (s *scorer) textualOverlap(name, query string, ingredientWords []string) int {
	score := 0
	if strings.HasPrefix(name, query) {
		score += prefixBonus
	}
	if strings.Contains(name, query) {
		score += containsBonus
	}

	// Multi-word context queries rarely match contiguously; reward the
	// case where every token appears somewhere in the name.
	queryWords := strings.Fields(query)
	if len(queryWords) > 1 {
		all := true
		for _, w := range queryWords {
			if !strings.Contains(name, w) {
				all = false
				break
			}
		}
		if all {
			score += allTokensBonus
		}
	}

	for _, w := range ingredientWords {
		if len(w) >= 3 && strings.Contains(name, w) {
			score += perWordBonus
		}
	}
	return score
}

// compoundScore rewards agglutinative compounds: when the per-word
// translations of a multi-word query concatenate into a substring of the
// product name ("white wine" -> "hvid"+"vin" -> "hvidvin").
func (s *scorer) compoundScore(name, query string) int {
	words := strings.Fields(query)
	if len(words) < 2 {
		return 0
	}
	var b strings.Builder
	for _, w := range words {
		da, ok := s.lex.Translations[w]
		if !ok {
			da = w
		}
		b.WriteString(da)
	}
	compound := b.String()
	if len(compound) >= 4 && strings.Contains(name, compound) {
		return compoundBonus
	}
	return 0
}

func (s *scorer) organicScore(p model.Product, in scoreInput) int {
	if !s.isOrganic(p) {
		return 0
	}

	if s.opts.SmartOrganic && in.cheapestNonOrganic > 0 {
		if p.Price <= in.cheapestNonOrganic+s.opts.OrganicThreshold {
			return s.opts.SmartOrganicBonus
		}
		return s.opts.SmartOrganicMalus
	}
	if s.opts.PreferOrganic {
		return organicFlatBonus
	}
	return 0
}

func (s *scorer) isOrganic(p model.Product) bool {
	name := strings.ToLower(p.Name)
	for _, ind := range s.lex.OrganicIndicators {
		if strings.HasPrefix(name, ind) {
			return true
		}
	}
	for _, lbl := range p.Labels {
		if _, ok := lexicon.ContainsAny(strings.ToLower(lbl), s.lex.OrganicIndicators); ok {
			return true
		}
	}
	return false
}

// budgetScore gives cheaper unit prices a larger bonus, capped. Active
// only when the caller asked for budget preference and the gateway
// reported a computed unit price.
func (s *scorer) budgetScore(p model.Product) int {
	if !s.opts.PreferBudget || p.UnitPriceCalc <= 0 {
		return 0
	}
	bonus := int(200 / p.UnitPriceCalc)
	if bonus > budgetBonusCap {
		bonus = budgetBonusCap
	}
	return bonus
}

func (s *scorer) derivativeScore(name, ingredient string) int {
	score := 0
	for _, term := range s.lex.DerivativeTerms {
		if strings.Contains(name, term) && !strings.Contains(ingredient, term) {
			score += derivativePenalty
		}
	}
	return score
}

// flavorScore penalizes products that mention the ingredient only as a
// flavor ("sour cream & onion" chips when the list wants onions). A word
// also present before the connector means the product is the real thing.
func (s *scorer) flavorScore(name string, ingredientWords []string) int {
	connectors := append([]string{"&"}, s.lex.FlavorConnectors...)
	score := 0
	for _, conn := range connectors {
		idx := strings.Index(name, conn)
		if idx < 0 {
			continue
		}
		before, after := name[:idx], name[idx+len(conn):]
		for _, w := range ingredientWords {
			if len(w) < 3 {
				continue
			}
			if strings.Contains(after, w) && !strings.Contains(before, w) {
				score += flavorPenalty
				break
			}
		}
	}
	return score
}

func (s *scorer) cleaningScore(name, ingredient string) int {
	if _, inName := lexicon.ContainsAny(name, s.lex.CleaningTerms); !inName {
		return 0
	}
	if _, inIngredient := lexicon.ContainsAny(ingredient, s.lex.CleaningTerms); inIngredient {
		return 0
	}
	return cleaningPenalty
}

// cheapestNonOrganicPrice finds the lowest price among non-organic
// candidates, the reference point for smart-organic scoring. Returns 0
// when the batch has no non-organic candidate.
func (s *scorer) cheapestNonOrganicPrice(products []model.Product) float64 {
	cheapest := 0.0
	for _, p := range products {
		if s.isOrganic(p) || p.Price <= 0 {
			continue
		}
		if cheapest == 0 || p.Price < cheapest {
			cheapest = p.Price
		}
	}
	return cheapest
}
