package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in        string
		want      float64
		remaining string
	}{
		{"2 cups flour", 2, "cups flour"},
		{"1.5 cups sugar", 1.5, "cups sugar"},
		{"1,5 dl fløde", 1.5, "dl fløde"},
		{"0,50 tsk rosmarin", 0.5, "tsk rosmarin"},
		{"1/2 cup milk", 0.5, "cup milk"},
		{"1 1/2 cups flour", 1.5, "cups flour"},
		{"½ cup butter", 0.5, "cup butter"},
		{"¼ tsp salt", 0.25, "tsp salt"},
		{"¾ cup cream", 0.75, "cup cream"},
		{"2-3 cloves garlic", 3, "cloves garlic"},
		{"2–3 fed hvidløg", 3, "fed hvidløg"},
	}
	for _, c := range cases {
		qty, rest := ParseQuantity(c.in)
		require.NotNil(t, qty, c.in)
		assert.Equal(t, c.want, *qty, c.in)
		assert.Equal(t, c.remaining, rest, c.in)
	}
}

func TestParseQuantity_None(t *testing.T) {
	qty, rest := ParseQuantity("salt to taste")
	assert.Nil(t, qty)
	assert.Equal(t, "salt to taste", rest)

	qty, _ = ParseQuantity("")
	assert.Nil(t, qty)
}

func TestParseUnit(t *testing.T) {
	unit, rest := ParseUnit("cups flour")
	assert.Equal(t, "cups", unit)
	assert.Equal(t, "flour", rest)

	unit, rest = ParseUnit("fl oz cream")
	assert.Equal(t, "fl oz", unit)
	assert.Equal(t, "cream", rest)

	unit, rest = ParseUnit("stk æg")
	assert.Equal(t, "stk", unit)
	assert.Equal(t, "æg", rest)

	unit, rest = ParseUnit("eggs")
	assert.Equal(t, "", unit)
	assert.Equal(t, "eggs", rest)
}

func TestParseIngredient(t *testing.T) {
	ing := ParseIngredient("2 cups flour")
	assert.Equal(t, "flour", ing.Name)
	require.NotNil(t, ing.Quantity)
	assert.Equal(t, 2.0, *ing.Quantity)
	assert.Equal(t, "cups", ing.Unit)
	assert.Equal(t, "", ing.Notes)
}

func TestParseIngredient_ParentheticalNotes(t *testing.T) {
	ing := ParseIngredient("1 cup butter (softened)")
	assert.Equal(t, "butter", ing.Name)
	assert.Equal(t, "softened", ing.Notes)
}

func TestParseIngredient_CommaNotes(t *testing.T) {
	ing := ParseIngredient("2 cups flour, sifted")
	assert.Equal(t, "flour", ing.Name)
	assert.Equal(t, "sifted", ing.Notes)
}

func TestParseIngredient_CombinedNotes(t *testing.T) {
	ing := ParseIngredient("1 1/2 cups heavy cream (cold), whipped")
	assert.Equal(t, "heavy cream", ing.Name)
	require.NotNil(t, ing.Quantity)
	assert.Equal(t, 1.5, *ing.Quantity)
	assert.Equal(t, "cold, whipped", ing.Notes)
}

func TestParseIngredient_NoQuantity(t *testing.T) {
	ing := ParseIngredient("salt to taste")
	assert.Equal(t, "salt to taste", ing.Name)
	assert.Nil(t, ing.Quantity)
	assert.Equal(t, "", ing.Unit)
}

func TestParseIngredient_CountWithoutUnit(t *testing.T) {
	ing := ParseIngredient("3 eggs")
	assert.Equal(t, "eggs", ing.Name)
	require.NotNil(t, ing.Quantity)
	assert.Equal(t, 3.0, *ing.Quantity)
	assert.Equal(t, "", ing.Unit)
}

func TestParseIngredient_KeepsOriginal(t *testing.T) {
	original := "  2 stk løg, finthakket  "
	ing := ParseIngredient(original)
	assert.Equal(t, "2 stk løg, finthakket", ing.Original)
	assert.Equal(t, "løg", ing.Name)
	assert.Equal(t, "finthakket", ing.Notes)
}

func TestParseIngredients(t *testing.T) {
	text := `Ingredients:
- 2 cups flour
* 3 eggs
• 1,5 dl mælk
1. 500 g hakket oksekød
For the sauce:
---
salt to taste`

	ings := ParseIngredients(text)
	require.Len(t, ings, 5)
	assert.Equal(t, "flour", ings[0].Name)
	assert.Equal(t, "eggs", ings[1].Name)
	assert.Equal(t, "mælk", ings[2].Name)
	assert.Equal(t, "hakket oksekød", ings[3].Name)
	assert.Equal(t, "salt to taste", ings[4].Name)
}

func TestParseIngredients_DecimalLineNotMangled(t *testing.T) {
	// A line starting with "1.5" must not be treated as a numbered list item.
	ings := ParseIngredients("1.5 dl fløde")
	require.Len(t, ings, 1)
	require.NotNil(t, ings[0].Quantity)
	assert.Equal(t, 1.5, *ings[0].Quantity)
}

func TestParseRecipeText(t *testing.T) {
	r := ParseRecipeText("Pandekager", "2 cups flour\n3 eggs", 4)
	assert.Equal(t, "Pandekager", r.Title)
	assert.Equal(t, 4, r.Servings)
	assert.Len(t, r.Ingredients, 2)
}
