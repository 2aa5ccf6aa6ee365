// Package recipe parses free-text ingredient lines into structured
// ingredients: leading quantity (decimals with dot or comma, fractions,
// unicode fraction glyphs, ranges), a unit token, and trailing notes in
// parentheses or after a comma.
package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/shopper-cli/internal/model"
)

// Recipe is a titled ingredient list.
type Recipe struct {
	Title       string             `json:"title"`
	Servings    int                `json:"servings,omitempty"`
	SourceURL   string             `json:"source_url,omitempty"`
	Ingredients []model.Ingredient `json:"ingredients"`
}

// unitTokens are the unit words recognized at the start of an ingredient
// line, covering metric, imperial and Danish recipe vocabulary. Container
// words (can, bunch, fed) count as units so the ingredient name stays
// clean.
var unitTokens = map[string]bool{
	// volume
	"cup": true, "cups": true, "c": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true, "tbs": true, "tb": true,
	"teaspoon": true, "teaspoons": true, "tsp": true, "ts": true,
	"ml": true, "milliliter": true, "milliliters": true,
	"l": true, "liter": true, "liters": true, "litre": true, "litres": true,
	"dl": true, "deciliter": true, "deciliters": true,
	"fl oz": true, "fluid ounce": true, "fluid ounces": true,
	// weight
	"g": true, "gram": true, "grams": true,
	"kg": true, "kilogram": true, "kilograms": true,
	"oz": true, "ounce": true, "ounces": true,
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	// count
	"piece": true, "pieces": true, "pcs": true,
	"clove": true, "cloves": true, "slice": true, "slices": true,
	"bunch": true, "bunches": true, "can": true, "cans": true,
	"package": true, "packages": true, "pkg": true,
	"bag": true, "bags": true, "bottle": true, "bottles": true,
	"head": true, "heads": true, "stalk": true, "stalks": true,
	"sprig": true, "sprigs": true,
	// Danish
	"stk": true, "styk": true, "spsk": true, "spiseskefuld": true,
	"tsk": true, "teskefuld": true, "fed": true, "bundt": true,
}

// fractionGlyphs maps unicode vulgar fractions to decimals.
var fractionGlyphs = map[rune]float64{
	'½': 0.5, '⅓': 0.333, '⅔': 0.667, '¼': 0.25, '¾': 0.75,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8, '⅙': 0.167, '⅚': 0.833,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// quantityPattern matches a leading number: "2", "1.5", "1,5", a range
// "2-3", a mixed number "1 1/2", or a bare fraction "1/2".
var quantityPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?(?:\s*[-–]\s*\d+(?:[.,]\d+)?)?(?:\s+\d+/\d+)?|\d+/\d+)`)

var (
	parenNotes = regexp.MustCompile(`\(([^)]+)\)`)
	bulletMark = regexp.MustCompile(`^[-*•]\s*`)
	listNumber = regexp.MustCompile(`^\d+\.\s+`)
	whitespace = regexp.MustCompile(`\s+`)
	rangeSplit = regexp.MustCompile(`[-–]`)
)

// ParseQuantity extracts the leading quantity and returns it with the rest
// of the line. Nil means no quantity was present ("salt to taste"). Ranges
// resolve to their upper bound so the shopper never comes up short.
func ParseQuantity(text string) (*float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, text
	}

	runes := []rune(text)
	if v, ok := fractionGlyphs[runes[0]]; ok {
		return model.Float(v), strings.TrimSpace(string(runes[1:]))
	}

	m := quantityPattern.FindString(text)
	if m == "" {
		return nil, text
	}
	remaining := strings.TrimSpace(text[len(m):])
	qty := strings.ReplaceAll(m, ",", ".")

	if rangeSplit.MatchString(qty) {
		parts := rangeSplit.Split(qty, -1)
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64); err == nil {
			return model.Float(v), remaining
		}
	}

	if strings.Contains(qty, " ") && strings.Contains(qty, "/") {
		parts := strings.Fields(qty)
		whole, err1 := strconv.ParseFloat(parts[0], 64)
		frac, err2 := parseFraction(parts[1])
		if err1 == nil && err2 == nil {
			return model.Float(whole + frac), remaining
		}
	}

	if strings.Contains(qty, "/") {
		if v, err := parseFraction(qty); err == nil {
			return model.Float(v), remaining
		}
	}

	if v, err := strconv.ParseFloat(qty, 64); err == nil {
		return model.Float(v), remaining
	}
	return nil, text
}

func parseFraction(s string) (float64, error) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, strconv.ErrRange
	}
	return num / den, nil
}

// ParseUnit extracts a leading unit token, two-word units first.
func ParseUnit(text string) (string, string) {
	text = strings.TrimSpace(text)
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", text
	}

	if len(words) >= 2 {
		twoWord := strings.ToLower(words[0] + " " + words[1])
		if unitTokens[twoWord] {
			return twoWord, strings.Join(words[2:], " ")
		}
	}

	first := strings.TrimRight(strings.ToLower(words[0]), ",.")
	if unitTokens[first] {
		return first, strings.Join(words[1:], " ")
	}
	return "", text
}

// ParseIngredient parses one ingredient line. Parenthetical and
// comma-trailing text become notes; the name keeps whatever is left.
func ParseIngredient(text string) model.Ingredient {
	original := strings.TrimSpace(text)

	quantity, remaining := ParseQuantity(original)
	unit, remaining := ParseUnit(remaining)

	notes := ""
	name := remaining
	if m := parenNotes.FindStringSubmatchIndex(remaining); m != nil {
		notes = remaining[m[2]:m[3]]
		name = remaining[:m[0]] + remaining[m[1]:]
	}
	if i := strings.Index(name, ","); i >= 0 {
		notePart := strings.TrimSpace(name[i+1:])
		name = name[:i]
		if notes != "" {
			notes = notes + ", " + notePart
		} else {
			notes = notePart
		}
	}

	name = strings.TrimRight(strings.TrimSpace(name), ",.")
	name = whitespace.ReplaceAllString(name, " ")

	return model.Ingredient{
		Original: original,
		Name:     name,
		Quantity: quantity,
		Unit:     unit,
		Notes:    notes,
	}
}

// ParseIngredients parses a multi-line ingredient list, skipping blank
// lines, section headers and leading list markers.
func ParseIngredients(text string) []model.Ingredient {
	var out []model.Ingredient
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if line == "" ||
			strings.HasPrefix(lower, "ingredients") ||
			strings.HasPrefix(lower, "for the") ||
			strings.HasPrefix(lower, "---") {
			continue
		}
		line = bulletMark.ReplaceAllString(line, "")
		line = listNumber.ReplaceAllString(line, "")
		if line != "" {
			out = append(out, ParseIngredient(line))
		}
	}
	return out
}

// ParseRecipeText builds a recipe from manual title and ingredient input.
func ParseRecipeText(title, ingredientsText string, servings int) Recipe {
	return Recipe{
		Title:       title,
		Servings:    servings,
		Ingredients: ParseIngredients(ingredientsText),
	}
}
