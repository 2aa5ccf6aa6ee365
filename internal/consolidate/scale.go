package consolidate

import (
	"math"

	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/units"
)

// ScaleFactor computes the multiplier from a recipe's serving count to the
// desired one. Non-positive inputs yield 1 so a malformed recipe scales as
// written.
func ScaleFactor(originalServings, targetServings int) float64 {
	if originalServings <= 0 || targetServings <= 0 {
		return 1
	}
	return float64(targetServings) / float64(originalServings)
}

// ScaleIngredient applies a scale factor to one ingredient. The scaled
// quantity is rounded to a practical kitchen measure; an ingredient with
// no quantity passes through with a nil scaled quantity.
func ScaleIngredient(ing model.Ingredient, factor float64) model.ScaledIngredient {
	out := model.ScaledIngredient{Ingredient: ing, ScaleFactor: factor}
	if ing.Quantity != nil {
		out.ScaledQuantity = model.Float(RoundPractical(*ing.Quantity*factor, ing.Unit))
	}
	return out
}

// ScaleAll scales every ingredient by the same factor.
func ScaleAll(ings []model.Ingredient, factor float64) []model.ScaledIngredient {
	out := make([]model.ScaledIngredient, len(ings))
	for i, ing := range ings {
		out[i] = ScaleIngredient(ing, factor)
	}
	return out
}

// RoundPractical rounds a scaled quantity to something measurable in a
// kitchen. Countable units round up to whole pieces (half an egg is not
// buyable); measurable quantities round to the quarter below 1, to the
// half below 10 and to whole units above.
func RoundPractical(q float64, unit string) float64 {
	if q <= 0 {
		return 0
	}
	if unit == "" || units.Classify(unit) == units.Count {
		return math.Ceil(q)
	}
	switch {
	case q < 1:
		return math.Round(q*4) / 4
	case q < 10:
		return math.Round(q*2) / 2
	default:
		return math.Round(q)
	}
}
