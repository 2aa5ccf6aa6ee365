package matcher

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shopper-cli/internal/dietary"
	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
)

type stubSearch struct {
	mu      sync.Mutex
	results map[string][]model.Product
	errs    map[string]error
	err     error
	queries []string
}

func (s *stubSearch) Search(_ context.Context, q string, _ int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if err := s.errs[q]; err != nil {
		return nil, err
	}
	s.queries = append(s.queries, q)
	return s.results[q], nil
}

type stubPrefs struct {
	preferred map[int64]bool
}

func (s *stubPrefs) IsPreferred(_ context.Context, id int64) (bool, error) {
	return s.preferred[id], nil
}

type stubPrices struct {
	mu       sync.Mutex
	recorded []model.Product
}

func (s *stubPrices) RecordPrices(_ context.Context, products []model.Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, products...)
	return len(products), nil
}

func scaled(name, unit string, qty float64) model.ScaledIngredient {
	return model.ScaledIngredient{
		Ingredient:     model.Ingredient{Original: name, Name: name, Quantity: model.Float(qty), Unit: unit},
		ScaleFactor:    1,
		ScaledQuantity: model.Float(qty),
	}
}

func TestMatchIngredient_PicksBestAndCountsPackages(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"løg": {
			{ID: 1, Name: "Løg i net", Category: "Grønt", Available: true, UnitSize: "1 stk", Price: 12},
			{ID: 2, Name: "Økologiske løg", Category: "Grønt", Available: true, UnitSize: "500 g", Price: 18},
			{ID: 3, Name: "Chips m. løg", Category: "Kiosk", Available: true, Price: 22},
		},
	}}
	prices := &stubPrices{}
	m := New(search, nil, prices, lexicon.Default(), dietary.Constraints{}, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("onion", "stk", 2), "")
	require.NoError(t, err)

	assert.True(t, match.Matched)
	assert.Equal(t, int64(1), match.ProductID())
	assert.Equal(t, "løg", match.SearchQuery)
	assert.Equal(t, 2, match.Quantity)
	require.Len(t, match.Alternatives, 2)
	assert.Equal(t, int64(2), match.Alternatives[0].ID)
	assert.True(t, match.Safety.Safe)
	assert.Len(t, prices.recorded, 3)
}

func TestMatchIngredient_NoCandidates(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{}}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("onion", "stk", 2), "")
	require.NoError(t, err)

	assert.False(t, match.Matched)
	assert.Nil(t, match.Product)
	assert.Equal(t, "løg", match.SearchQuery)
	// The ceiling fallback keeps the line actionable.
	assert.Equal(t, 2, match.Quantity)
}

func TestMatchIngredient_PreferenceBreaksTie(t *testing.T) {
	results := map[string][]model.Product{
		"løg": {
			{ID: 1, Name: "Løg", Category: "Grønt", Available: true},
			{ID: 2, Name: "Løg", Category: "Grønt", Available: true},
		},
	}

	m := New(&stubSearch{results: results}, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})
	match, err := m.MatchIngredient(context.Background(), scaled("onion", "", 0), "")
	require.NoError(t, err)
	// Stable sort keeps discovery order on equal scores.
	assert.Equal(t, int64(1), match.ProductID())

	prefs := &stubPrefs{preferred: map[int64]bool{2: true}}
	m = New(&stubSearch{results: results}, prefs, nil, lexicon.Default(), dietary.Constraints{}, Options{})
	match, err = m.MatchIngredient(context.Background(), scaled("onion", "", 0), "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), match.ProductID())
}

func TestMatchIngredient_ContextOverride(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"madlavningsfløde": {
			{ID: 1, Name: "Madlavningsfløde 15%", Category: "Mejeri", Available: true},
		},
		"piskefløde": {
			{ID: 2, Name: "Piskefløde 38%", Category: "Mejeri", Available: true},
		},
	}}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("fløde", "dl", 2), "pasta med kylling")
	require.NoError(t, err)
	assert.Equal(t, int64(1), match.ProductID())
	assert.Equal(t, "madlavningsfløde", match.SearchQuery)
}

func TestMatchIngredient_SafeAlternativeSearch(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"mælk": {
			{ID: 20, Name: "Letmælk", Category: "Mejeri", Available: true},
		},
		"laktosefri mælk": {
			{ID: 21, Name: "Laktosefri letmælk", Category: "Mejeri", Available: true},
		},
	}}
	constraints := dietary.Constraints{Allergies: []string{"lactose"}}
	m := New(search, nil, nil, lexicon.Default(), constraints, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("milk", "l", 1), "")
	require.NoError(t, err)

	assert.True(t, match.Matched)
	assert.Equal(t, int64(21), match.ProductID())
	assert.Equal(t, "laktosefri mælk", match.SearchQuery)
	assert.True(t, match.Safety.Safe)
	assert.Equal(t, 1, match.Safety.Excluded)
}

func TestMatchIngredient_UnmetConstraintsFallBack(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"bacon": {
			{ID: 10, Name: "Bacon i skiver", Category: "Kød", Available: true},
		},
	}}
	constraints := dietary.Constraints{Dietary: []string{"vegan"}}
	m := New(search, nil, nil, lexicon.Default(), constraints, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("bacon", "g", 150), "")
	require.NoError(t, err)

	// Still matched so the line stays actionable, but flagged unsafe.
	assert.True(t, match.Matched)
	assert.Equal(t, int64(10), match.ProductID())
	assert.False(t, match.Safety.Safe)
	require.NotEmpty(t, match.Safety.Warnings)
	assert.Contains(t, match.Safety.Warnings[len(match.Safety.Warnings)-1], "satisfy")
}

func TestMatchIngredient_AlternativesCapped(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"løg": {
			{ID: 1, Name: "Løg i net", Category: "Grønt", Available: true},
			{ID: 2, Name: "Løg", Category: "Grønt", Available: true},
			{ID: 3, Name: "Rødløg", Category: "Grønt", Available: true},
			{ID: 4, Name: "Skalotteløg", Category: "Grønt", Available: true},
		},
	}}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{MaxAlternatives: 2})

	match, err := m.MatchIngredient(context.Background(), scaled("onion", "", 0), "")
	require.NoError(t, err)
	assert.Len(t, match.Alternatives, 2)
}

func TestMatchAll_PreservesInputOrder(t *testing.T) {
	search := &stubSearch{results: map[string][]model.Product{
		"løg":   {{ID: 1, Name: "Løg", Category: "Grønt", Available: true}},
		"tomat": {{ID: 2, Name: "Tomater", Category: "Grønt", Available: true}},
		"mel":   {{ID: 3, Name: "Mel", Category: "Kolonial", Available: true}},
	}}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{Concurrency: 2})

	ings := []model.ScaledIngredient{
		scaled("onion", "stk", 2),
		scaled("tomato", "stk", 4),
		scaled("flour", "g", 500),
	}
	matches, err := m.MatchAll(context.Background(), ings, "")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "onion", matches[0].IngredientName)
	assert.Equal(t, "tomato", matches[1].IngredientName)
	assert.Equal(t, "flour", matches[2].IngredientName)
	assert.Equal(t, int64(2), matches[1].ProductID())
}

func TestMatchIngredient_FailedSearchFallsThroughToNextQuery(t *testing.T) {
	search := &stubSearch{
		errs: map[string]error{"løg": eris.New("gateway timeout")},
		results: map[string][]model.Product{
			"onion": {{ID: 1, Name: "Løg i net", Category: "Grønt", Available: true, UnitSize: "1 stk"}},
		},
	}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("onion", "stk", 2), "")
	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.Equal(t, int64(1), match.ProductID())
	assert.Equal(t, "onion", match.SearchQuery)
}

func TestMatchAll_SearchFailuresYieldUnmatchedLines(t *testing.T) {
	search := &stubSearch{err: eris.New("gateway timeout")}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	matches, err := m.MatchAll(context.Background(), []model.ScaledIngredient{
		scaled("onion", "stk", 2),
		scaled("flour", "g", 500),
	}, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.False(t, matches[0].Matched)
	assert.False(t, matches[1].Matched)
	// The ceiling fallback still suggests a purchase count.
	assert.Equal(t, 2, matches[0].Quantity)
}

func TestMatchAll_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	search := &stubSearch{err: eris.New("gateway timeout")}
	m := New(search, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	_, err := m.MatchAll(ctx, []model.ScaledIngredient{scaled("onion", "", 0)}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchIngredient_EmptyName(t *testing.T) {
	m := New(&stubSearch{}, nil, nil, lexicon.Default(), dietary.Constraints{}, Options{})

	match, err := m.MatchIngredient(context.Background(), scaled("", "", 0), "")
	require.NoError(t, err)
	assert.False(t, match.Matched)
}
