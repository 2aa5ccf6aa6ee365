package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
)

func entry(source, name, unit string, qty float64) Entry {
	return Entry{
		Source: source,
		Ingredient: model.ScaledIngredient{
			Ingredient:     model.Ingredient{Name: name, Unit: unit, Quantity: model.Float(qty)},
			ScaleFactor:    1,
			ScaledQuantity: model.Float(qty),
		},
	}
}

func unquantified(source, name string) Entry {
	return Entry{
		Source: source,
		Ingredient: model.ScaledIngredient{
			Ingredient:  model.Ingredient{Name: name},
			ScaleFactor: 1,
		},
	}
}

func TestConsolidate_SumsWeightAcrossUnits(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("Pandekager", "flour", "g", 500),
		entry("Boller", "flour", "kg", 1),
	})

	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Quantity)
	assert.Equal(t, 1.5, *lines[0].Quantity)
	assert.Equal(t, "kg", lines[0].Unit)
	assert.Equal(t, []string{"Pandekager", "Boller"}, lines[0].Sources)
}

func TestConsolidate_PluralsMerge(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("A", "onion", "stk", 2),
		entry("B", "onions", "stk", 1),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "onion", lines[0].Name)
	require.NotNil(t, lines[0].Quantity)
	assert.Equal(t, 3.0, *lines[0].Quantity)
	assert.Equal(t, "stk", lines[0].Unit)
}

func TestConsolidate_VolumeDisplayUnits(t *testing.T) {
	lex := lexicon.Default()

	lines := Consolidate(lex, []Entry{entry("A", "cream", "ml", 50)})
	require.Len(t, lines, 1)
	assert.Equal(t, 50.0, *lines[0].Quantity)
	assert.Equal(t, "ml", lines[0].Unit)

	lines = Consolidate(lex, []Entry{
		entry("A", "cream", "dl", 2),
		entry("B", "cream", "ml", 300),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 5.0, *lines[0].Quantity)
	assert.Equal(t, "dl", lines[0].Unit)

	lines = Consolidate(lex, []Entry{
		entry("A", "milk", "l", 1),
		entry("B", "milk", "dl", 5),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 1.5, *lines[0].Quantity)
	assert.Equal(t, "l", lines[0].Unit)
}

func TestConsolidate_WeightDisplayUnits(t *testing.T) {
	lex := lexicon.Default()

	lines := Consolidate(lex, []Entry{entry("A", "smør", "g", 250)})
	require.Len(t, lines, 1)
	assert.Equal(t, 250.0, *lines[0].Quantity)
	assert.Equal(t, "g", lines[0].Unit)

	lines = Consolidate(lex, []Entry{
		entry("A", "smør", "g", 800),
		entry("B", "smør", "g", 400),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 1.2, *lines[0].Quantity)
	assert.Equal(t, "kg", lines[0].Unit)
}

func TestConsolidate_IncompatibleDimensionsStaySplit(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("A", "onion", "g", 500),
		entry("B", "onion", "stk", 2),
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "g", lines[0].Unit)
	assert.Equal(t, "stk", lines[1].Unit)
}

func TestConsolidate_RecipeMeasuresMergeWithVolume(t *testing.T) {
	lex := lexicon.Default()

	lines := Consolidate(lex, []Entry{
		entry("A", "olivenolie", "spsk", 2),
		entry("B", "olivenolie", "dl", 1),
	})
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Quantity)
	assert.InDelta(t, 1.02, *lines[0].Quantity, 1e-9)
	assert.Equal(t, "dl", lines[0].Unit)
	assert.Equal(t, []string{"A", "B"}, lines[0].Sources)

	// Pure recipe measures still sum into one volume line.
	lines = Consolidate(lex, []Entry{
		entry("A", "olivenolie", "spsk", 2),
		entry("B", "olivenolie", "tsk", 1),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 3.0, *lines[0].Quantity)
	assert.Equal(t, "ml", lines[0].Unit)
}

func TestConsolidate_CountKeepsUniformUnit(t *testing.T) {
	lex := lexicon.Default()

	lines := Consolidate(lex, []Entry{
		entry("A", "hvidløg", "fed", 2),
		entry("B", "hvidløg", "fed", 3),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 5.0, *lines[0].Quantity)
	assert.Equal(t, "fed", lines[0].Unit)

	// Mixed count units fall back to pieces.
	lines = Consolidate(lex, []Entry{
		entry("A", "hvidløg", "fed", 2),
		entry("B", "hvidløg", "stk", 1),
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "stk", lines[0].Unit)
}

func TestConsolidate_UnquantifiedJoinsExistingLine(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("A", "salt", "tsk", 1),
		unquantified("B", "salt"),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, []string{"A", "B"}, lines[0].Sources)
	assert.Equal(t, 1.0, *lines[0].Quantity)
}

func TestConsolidate_UnquantifiedOnly(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{unquantified("A", "peber")})

	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Quantity)
	assert.Equal(t, "", lines[0].Unit)
}

func TestConsolidate_OrderAndDanishCasing(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("A", "Løg", "stk", 1),
		entry("A", "Mel", "g", 100),
		entry("B", "løg", "stk", 2),
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "løg", lines[0].Name)
	assert.Equal(t, 3.0, *lines[0].Quantity)
	assert.Equal(t, "mel", lines[1].Name)
}

func TestConsolidate_SourceDedup(t *testing.T) {
	lex := lexicon.Default()
	lines := Consolidate(lex, []Entry{
		entry("A", "ris", "g", 100),
		entry("A", "ris", "g", 100),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, []string{"A"}, lines[0].Sources)
}

func TestScaleFactor(t *testing.T) {
	assert.Equal(t, 1.5, ScaleFactor(4, 6))
	assert.Equal(t, 0.5, ScaleFactor(4, 2))
	assert.Equal(t, 1.0, ScaleFactor(0, 6))
	assert.Equal(t, 1.0, ScaleFactor(4, 0))
}

func TestScaleIngredient(t *testing.T) {
	ing := model.Ingredient{Name: "mel", Unit: "g", Quantity: model.Float(400)}
	scaled := ScaleIngredient(ing, 1.5)
	require.NotNil(t, scaled.ScaledQuantity)
	assert.Equal(t, 600.0, *scaled.ScaledQuantity)

	bare := ScaleIngredient(model.Ingredient{Name: "salt"}, 2)
	assert.Nil(t, bare.ScaledQuantity)
}

func TestRoundPractical(t *testing.T) {
	// Countable quantities round up to whole pieces.
	assert.Equal(t, 2.0, RoundPractical(1.5, "stk"))
	assert.Equal(t, 1.0, RoundPractical(0.5, "fed"))
	assert.Equal(t, 3.0, RoundPractical(2.01, ""))

	// Measurable quantities snap to kitchen fractions.
	assert.Equal(t, 0.75, RoundPractical(0.7, "dl"))
	assert.Equal(t, 2.5, RoundPractical(2.6, "dl"))
	assert.Equal(t, 13.0, RoundPractical(12.7, "g"))
	assert.Equal(t, 0.0, RoundPractical(0, "g"))
}
