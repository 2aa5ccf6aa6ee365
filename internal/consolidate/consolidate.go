// Package consolidate merges scaled ingredients from several recipes into
// one shopping list, summing convertible quantities in base units and
// picking a human display unit per line.
package consolidate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/shopper-cli/internal/lexicon"
	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/units"
)

// Entry is one ingredient contribution tagged with its source recipe.
type Entry struct {
	Ingredient model.ScaledIngredient
	Source     string
}

var lowercaser = cases.Lower(language.Danish)

// group accumulates contributions that share a normalized name and a
// summable unit dimension.
type group struct {
	name      string // normalized display name
	typ       units.Type
	unit      string  // exact unit for unsummable dimensions, "" for none
	total     float64 // in base units for known types, raw otherwise
	quantity  bool    // any contributor carried a quantity
	sources   []string
	seenSrc   map[string]bool
	countUnit string // original count unit, kept when uniform
	countSet  bool
}

// Consolidate merges entries into shopping-list lines. Same-name entries
// with convertible units become a single summed line; a name bought in
// incompatible dimensions (500 g onions and 2 stk onions) stays split.
// Line order follows first appearance, and each line remembers which
// recipes contributed to it.
func Consolidate(lex *lexicon.Lexicon, entries []Entry) []model.ConsolidatedIngredient {
	var order []string
	groups := make(map[string]*group)

	for _, e := range entries {
		name := normalizeName(lex, e.Ingredient.Name())
		if name == "" {
			continue
		}

		qty := e.Ingredient.ScaledQuantity
		unit := strings.ToLower(strings.TrimSpace(e.Ingredient.Unit()))
		g := bucket(groups, &order, name, qty, unit)

		if qty != nil {
			// Recipe measures have no metric factor; ToBase passes their
			// values through and they join the volume sum unchanged.
			base, _, _ := units.ToBase(*qty, unit)
			g.total += base
			g.quantity = true
			if g.typ == units.Count {
				switch {
				case !g.countSet:
					g.countUnit, g.countSet = unit, true
				case g.countUnit != unit:
					g.countUnit = units.BaseCount
				}
			}
		}
		if e.Source != "" && !g.seenSrc[e.Source] {
			g.seenSrc[e.Source] = true
			g.sources = append(g.sources, e.Source)
		}
	}

	out := make([]model.ConsolidatedIngredient, 0, len(order))
	for _, key := range order {
		out = append(out, render(groups[key]))
	}
	return out
}

// bucket finds or creates the group for a contribution. The key combines
// the normalized name with the unit dimension from Classify, so recipe
// measures land in the same line as metric volumes while incompatible
// dimensions of the same ingredient stay separate.
func bucket(groups map[string]*group, order *[]string, name string, qty *float64, unit string) *group {
	typ := units.Unknown
	exact := ""
	switch {
	case qty == nil:
		// Unquantified contributions join any existing line for the name,
		// adding only their source.
		for _, key := range *order {
			if g := groups[key]; g.name == name {
				return g
			}
		}
	default:
		typ = units.Classify(unit)
		if typ == units.Unknown {
			exact = unit
		}
	}

	key := name + "\x00" + string(typ) + "\x00" + exact
	if g, ok := groups[key]; ok {
		return g
	}
	g := &group{name: name, typ: typ, unit: exact, seenSrc: make(map[string]bool)}
	groups[key] = g
	*order = append(*order, key)
	return g
}

// render picks the display unit for a finished group. Weights show grams
// below a kilo and kilos above; volumes show milliliters below a deciliter,
// deciliters below a liter and liters above; counts keep their original
// unit when every contributor agreed on it.
func render(g *group) model.ConsolidatedIngredient {
	line := model.ConsolidatedIngredient{Name: g.name, Sources: g.sources}
	if !g.quantity {
		return line
	}

	value, unit := g.total, g.unit
	switch g.typ {
	case units.Weight:
		if g.total < 1000 {
			unit = "g"
		} else {
			value, unit = g.total/1000, "kg"
		}
	case units.Volume:
		switch {
		case g.total < 100:
			unit = "ml"
		case g.total < 1000:
			value, unit = g.total/100, "dl"
		default:
			value, unit = g.total/1000, "l"
		}
	case units.Count:
		unit = g.countUnit
		if unit == "" {
			unit = units.BaseCount
		}
	}

	line.Quantity = model.Float(value)
	line.Unit = unit
	return line
}

// normalizeName lowercases with Danish casing rules, strips surrounding
// whitespace and maps known plurals to their singular form, whole name
// first and the head word as fallback.
func normalizeName(lex *lexicon.Lexicon, name string) string {
	n := strings.TrimSpace(lowercaser.String(name))
	if n == "" {
		return ""
	}
	if s, ok := lex.Plurals[n]; ok {
		return s
	}
	words := strings.Fields(n)
	last := len(words) - 1
	if s, ok := lex.Plurals[words[last]]; ok {
		words[last] = s
		return strings.Join(words, " ")
	}
	return n
}
