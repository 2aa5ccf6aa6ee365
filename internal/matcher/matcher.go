// Package matcher ranks catalog products against recipe ingredients. It
// collects candidates across generated queries, screens them for dietary
// safety, scores them additively and picks a champion plus ranked
// alternatives.
package matcher

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/shopper-cli/internal/dietary"
	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/query"
	"github.com/sells-group/shopper-cli/internal/units"
)

const (
	defaultMaxAlternatives = 3
	defaultConcurrency     = 5
)

// SearchClient is the slice of the storefront client the matcher needs.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)
}

// PreferenceStore answers whether a product was bought before.
type PreferenceStore interface {
	IsPreferred(ctx context.Context, productID int64) (bool, error)
}

// PriceRecorder persists observed prices for later trend queries.
type PriceRecorder interface {
	RecordPrices(ctx context.Context, products []model.Product) (int, error)
}

// Matcher matches ingredients to products for one run's constraints and
// preference options. Safe for concurrent use.
type Matcher struct {
	search      SearchClient
	prefs       PreferenceStore
	prices      PriceRecorder
	lex         *lexicon.Lexicon
	gen         *query.Generator
	constraints dietary.Constraints
	opts        Options
}

// New builds a Matcher. prefs and prices may be nil; preference bonuses
// and price recording are then skipped.
func New(search SearchClient, prefs PreferenceStore, prices PriceRecorder, lex *lexicon.Lexicon, constraints dietary.Constraints, opts Options) *Matcher {
	if opts.MaxAlternatives <= 0 {
		opts.MaxAlternatives = defaultMaxAlternatives
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Matcher{
		search:      search,
		prefs:       prefs,
		prices:      prices,
		lex:         lex,
		gen:         query.New(lex),
		constraints: constraints,
		opts:        opts,
	}
}

// candidate pairs a product with its discovery metadata. The product
// record itself stays untouched.
type candidate struct {
	product    model.Product
	query      string // first query that found it
	contextHit bool
}

// MatchIngredient finds the best product for one scaled ingredient.
// An ingredient with no suitable product yields Matched=false, not an
// error; failed searches count as empty results. The returned error is
// non-nil only when the context is cancelled.
func (m *Matcher) MatchIngredient(ctx context.Context, ing model.ScaledIngredient, mealContext string) (model.ProductMatch, error) {
	name := strings.ToLower(strings.TrimSpace(ing.Name()))
	match := model.ProductMatch{
		IngredientName: ing.Name(),
		SearchQuery:    m.gen.Primary(name, mealContext),
		Safety:         model.SafetyInfo{Safe: true},
	}
	if name == "" {
		return match, nil
	}

	cands, err := m.collect(ctx, name, mealContext)
	if err != nil {
		return match, err
	}
	if len(cands) == 0 {
		zap.L().Debug("no candidates", zap.String("ingredient", name))
		match.Quantity = units.CeilingFallback(ing.ScaledQuantity)
		return match, nil
	}

	m.recordPrices(ctx, cands)

	cands, warnings := m.screen(ctx, name, mealContext, cands, &match.Safety)
	match.Safety.Warnings = append(match.Safety.Warnings, warnings...)
	if len(cands) == 0 {
		match.Quantity = units.CeilingFallback(ing.ScaledQuantity)
		return match, nil
	}

	ranked := m.rank(ctx, name, cands)

	champion := ranked[0]
	match.Product = &champion.product
	match.Matched = true
	match.SearchQuery = champion.query

	limit := m.opts.MaxAlternatives
	if limit > len(ranked)-1 {
		limit = len(ranked) - 1
	}
	for _, c := range ranked[1 : 1+limit] {
		match.Alternatives = append(match.Alternatives, c.product)
	}

	qty, ok := units.PackagesNeeded(ing.ScaledQuantity, ing.Unit(), champion.product.UnitSize)
	if !ok {
		qty = units.CeilingFallback(ing.ScaledQuantity)
	}
	match.Quantity = qty

	return match, nil
}

// MatchAll matches every ingredient concurrently, bounded by the
// configured concurrency, and returns results in input order. Search
// failures degrade individual lines to unmatched; only context
// cancellation aborts the run.
func (m *Matcher) MatchAll(ctx context.Context, ings []model.ScaledIngredient, mealContext string) ([]model.ProductMatch, error) {
	results := make([]model.ProductMatch, len(ings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, ing := range ings {
		g.Go(func() error {
			match, err := m.MatchIngredient(gctx, ing, mealContext)
			if err != nil {
				return eris.Wrapf(err, "matcher: ingredient %q", ing.Name())
			}
			results[i] = match
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// collect runs every generated query and merges the hits, deduplicated by
// product ID. The first query to return a product owns its discovery
// metadata, so higher-precision queries win the annotation. A failed
// search contributes no results and the remaining queries still run; the
// only returned error is context cancellation.
func (m *Matcher) collect(ctx context.Context, name, mealContext string) ([]candidate, error) {
	queries := m.gen.Generate(name, mealContext)
	contextQuery := m.lex.ContextQuery(name, mealContext)
	limit := m.opts.MaxAlternatives*3 + 5

	var cands []candidate
	seen := make(map[int64]bool)
	for _, q := range queries {
		products, err := m.search.Search(ctx, q, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Warn("search failed, skipping query",
				zap.String("query", q), zap.Error(err))
			continue
		}
		for _, p := range products {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			cands = append(cands, candidate{
				product:    p,
				query:      q,
				contextHit: contextQuery != "" && q == contextQuery,
			})
		}
	}
	return cands, nil
}

// screen applies the three-phase dietary filter: keep safe candidates,
// otherwise retry with a safety-modified query, otherwise fall back to the
// unscreened set with a warning. The fallback keeps the line actionable;
// Safety.Safe tells the caller the constraints were not met.
func (m *Matcher) screen(ctx context.Context, name, mealContext string, cands []candidate, info *model.SafetyInfo) ([]candidate, []string) {
	if m.constraints.Empty() {
		return cands, nil
	}

	products := make([]model.Product, len(cands))
	for i, c := range cands {
		products[i] = c.product
	}
	safe, unsafe, warnings := dietary.Partition(m.lex, products, m.constraints)
	info.Excluded = len(unsafe)
	if len(safe) > 0 {
		return keepCandidates(cands, safe), warnings
	}

	// The alternative query builds on the primary catalog-language query,
	// not the raw ingredient name.
	base := m.gen.Primary(name, mealContext)
	if alt := dietary.SafeAlternativeQuery(m.lex, base, m.constraints); alt != "" {
		limit := m.opts.MaxAlternatives*3 + 5
		products, err := m.search.Search(ctx, alt, limit)
		if err != nil {
			zap.L().Warn("safe-alternative search failed",
				zap.String("query", alt), zap.Error(err))
		} else if len(products) > 0 {
			altSafe, _, altWarnings := dietary.Partition(m.lex, products, m.constraints)
			if len(altSafe) > 0 {
				altCands := make([]candidate, len(altSafe))
				for i, p := range altSafe {
					altCands[i] = candidate{product: p, query: alt}
				}
				return altCands, append(warnings, altWarnings...)
			}
		}
	}

	info.Safe = false
	warnings = append(warnings, dietary.UnmetWarning(name, m.constraints))
	return cands, warnings
}

// keepCandidates filters cands down to the products that survived
// screening, preserving discovery metadata and order.
func keepCandidates(cands []candidate, products []model.Product) []candidate {
	keep := make(map[int64]bool, len(products))
	for _, p := range products {
		keep[p.ID] = true
	}
	out := make([]candidate, 0, len(products))
	for _, c := range cands {
		if keep[c.product.ID] {
			out = append(out, c)
		}
	}
	return out
}

// rank scores every candidate and sorts them best first. The sort is
// stable so equal scores keep discovery order, which already encodes
// query precision.
func (m *Matcher) rank(ctx context.Context, name string, cands []candidate) []candidate {
	s := &scorer{lex: m.lex, opts: m.opts}

	products := make([]model.Product, len(cands))
	for i, c := range cands {
		products[i] = c.product
	}
	cheapest := 0.0
	if m.opts.SmartOrganic {
		cheapest = s.cheapestNonOrganicPrice(products)
	}

	scores := make(map[int64]int, len(cands))
	for _, c := range cands {
		in := scoreInput{
			ingredient:         name,
			query:              strings.ToLower(c.query),
			contextHit:         c.contextHit,
			preferred:          m.isPreferred(ctx, c.product.ID),
			cheapestNonOrganic: cheapest,
		}
		scores[c.product.ID] = s.score(c.product, in)
	}

	ranked := make([]candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].product.ID] > scores[ranked[j].product.ID]
	})
	return ranked
}

func (m *Matcher) isPreferred(ctx context.Context, productID int64) bool {
	if m.prefs == nil {
		return false
	}
	preferred, err := m.prefs.IsPreferred(ctx, productID)
	if err != nil {
		zap.L().Warn("preference lookup failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return false
	}
	return preferred
}

// recordPrices stores observed candidate prices. Failures are logged,
// never fatal; price history is a side channel.
func (m *Matcher) recordPrices(ctx context.Context, cands []candidate) {
	if m.prices == nil {
		return
	}
	products := make([]model.Product, len(cands))
	for i, c := range cands {
		products[i] = c.product
	}
	if _, err := m.prices.RecordPrices(ctx, products); err != nil {
		zap.L().Warn("price recording failed", zap.Error(err))
	}
}
