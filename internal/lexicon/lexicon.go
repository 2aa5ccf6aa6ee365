// Package lexicon holds the vocabulary tables the matching core consumes:
// ingredient translations, search-term overrides, allergen and dietary
// keyword sets, and the category/term lists used by scoring. The tables
// are plain data so the algorithms that consume them stay branch-free per
// category, and a YAML file can extend them per household.
package lexicon

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ContextOverride substitutes a search query when an ingredient appears
// under a matching meal context (e.g. "fløde" in a pasta dish should find
// cooking cream, not whipping cream).
type ContextOverride struct {
	Ingredient string `yaml:"ingredient"`
	Context    string `yaml:"context"` // substring match against the meal context
	Query      string `yaml:"query"`
}

// Lexicon bundles every vocabulary table. All lookups are lowercase.
type Lexicon struct {
	Translations     map[string]string `yaml:"translations"`      // en -> da
	TermImprovements map[string]string `yaml:"term_improvements"` // da term -> better search term
	ContextOverrides []ContextOverride `yaml:"context_overrides"`
	FillerWords      []string          `yaml:"filler_words"`
	Plurals          map[string]string `yaml:"plurals"` // plural -> singular

	AllergenKeywords map[string][]string `yaml:"allergen_keywords"`
	DietaryKeywords  map[string][]string `yaml:"dietary_keywords"`
	SafeIndicators   map[string][]string `yaml:"safe_indicators"`
	SafeModifiers    map[string]string   `yaml:"safe_modifiers"` // constraint -> query modifier
	TracePatterns    []string            `yaml:"trace_patterns"`

	FoodCategories    []string `yaml:"food_categories"`
	NonFoodCategories []string `yaml:"non_food_categories"`
	SnackCategories   []string `yaml:"snack_categories"`
	SnackTerms        []string `yaml:"snack_terms"`
	DerivativeTerms   []string `yaml:"derivative_terms"`
	CleaningTerms     []string `yaml:"cleaning_terms"`
	FlavorConnectors  []string `yaml:"flavor_connectors"`
	OrganicIndicators []string `yaml:"organic_indicators"`
}

// Default returns the built-in lexicon. The Danish vocabulary targets the
// nemlig.com catalog.
func Default() *Lexicon {
	return &Lexicon{
		Translations: map[string]string{
			// vegetables
			"onion": "løg", "onions": "løg",
			"garlic": "hvidløg",
			"tomato": "tomat", "tomatoes": "tomat",
			"potato": "kartoffel", "potatoes": "kartofler",
			"carrot": "gulerod", "carrots": "gulerødder",
			"celery": "selleri", "lettuce": "salat", "cucumber": "agurk",
			"pepper": "peber", "bell pepper": "peberfrugt",
			"mushroom": "champignon", "mushrooms": "champignon",
			"spinach": "spinat", "broccoli": "broccoli", "cabbage": "kål",
			"leek": "porre", "shallot": "skalotteløg", "shallots": "skalotteløg",
			// dairy
			"milk": "mælk", "butter": "smør", "cheese": "ost", "cream": "fløde",
			"egg": "æg", "eggs": "æg", "yogurt": "yoghurt", "sour cream": "creme fraiche",
			// meat and fish
			"chicken": "kylling", "beef": "oksekød", "pork": "svinekød",
			"fish": "fisk", "salmon": "laks", "bacon": "bacon", "ham": "skinke",
			"sausage": "pølse", "ground beef": "hakket oksekød", "ground pork": "hakket svinekød",
			// pantry
			"flour": "mel", "sugar": "sukker", "salt": "salt",
			"olive oil": "olivenolie", "vegetable oil": "rapsolie",
			"pasta": "pasta", "rice": "ris", "bread": "brød",
			"vinegar": "eddike", "soy sauce": "sojasauce",
			// fruit
			"lemon": "citron", "lemons": "citron", "lime": "lime",
			"apple": "æble", "apples": "æbler", "orange": "appelsin", "banana": "banan",
			// herbs and spices
			"parsley": "persille", "basil": "basilikum", "thyme": "timian",
			"oregano": "oregano", "rosemary": "rosmarin", "cilantro": "koriander",
			"dill": "dild", "chives": "purløg", "ginger": "ingefær",
			"cinnamon": "kanel", "paprika": "paprika", "cumin": "spidskommen",
			// drinks
			"wine": "vin", "white": "hvid", "red": "rød",
			"white wine": "hvidvin", "red wine": "rødvin", "dry white wine": "hvidvin",
			"beer": "øl", "water": "vand",
			// other
			"stock": "bouillon", "broth": "bouillon",
			"chicken stock": "kyllingebouillon", "beef stock": "oksebouillon",
			"vegetable stock": "grøntsagsbouillon",
			"honey": "honning", "mustard": "sennep",
			"mayonnaise": "mayonnaise", "ketchup": "ketchup",
		},
		TermImprovements: map[string]string{
			"mel":      "hvedemel",
			"fløde":    "piskefløde",
			"bouillon": "bouillonterninger",
			"salat":    "salathoved",
			"peber":    "sort peber",
		},
		ContextOverrides: []ContextOverride{
			{Ingredient: "fløde", Context: "pasta", Query: "madlavningsfløde"},
			{Ingredient: "cream", Context: "pasta", Query: "madlavningsfløde"},
			{Ingredient: "salat", Context: "taco", Query: "icebergsalat"},
			{Ingredient: "ost", Context: "taco", Query: "revet ost"},
			{Ingredient: "tortilla", Context: "taco", Query: "tortilla hvede"},
			{Ingredient: "ris", Context: "sushi", Query: "sushiris"},
		},
		FillerWords: []string{
			"fresh", "dried", "frozen", "organic", "large", "small", "medium",
			"chopped", "diced", "minced", "sliced", "grated", "crushed",
			"whole", "ground", "powdered", "raw", "cooked", "ripe",
			"frisk", "tørret", "frosset", "økologisk", "stor", "lille",
			"hakket", "skåret", "revet", "knust", "hel", "malet", "rå", "kogt",
		},
		Plurals: map[string]string{
			"onions": "onion", "tomatoes": "tomato", "potatoes": "potato",
			"carrots": "carrot", "eggs": "egg", "cloves": "clove",
			"lemons": "lemon", "limes": "lime", "apples": "apple",
			"oranges": "orange", "bananas": "banana", "mushrooms": "mushroom",
			"peppers": "pepper", "shallots": "shallot",
			"gulerødder": "gulerod", "kartofler": "kartoffel",
			"tomater": "tomat", "citroner": "citron", "æbler": "æble",
		},
		AllergenKeywords: map[string][]string{
			"nuts": {
				"nød", "nødder", "mandel", "mandler", "hasselnød", "hasselnødder",
				"valnød", "valnødder", "cashew", "pistacie", "peanut", "peanuts",
				"jordnød", "jordnødder", "mandelolie",
				"nut", "almond", "walnut", "hazelnut", "pecan", "macadamia",
			},
			"gluten": {
				"hvede", "rug", "byg", "havre", "gluten",
				"wheat", "rye", "barley", "oat", "seitan", "bulgur",
				"couscous", "semolina", "semulje",
			},
			"dairy": {
				"mælk", "fløde", "ost", "smør", "yoghurt", "skyr",
				"creme fraiche", "cremefraiche", "mascarpone", "ricotta",
				"mozzarella", "parmesan", "feta",
				"milk", "cream", "cheese", "butter", "yogurt",
				"whey", "casein", "valle", "kasein",
			},
			"lactose": {"laktose", "mælk", "fløde", "lactose", "milk", "cream"},
			"shellfish": {
				"rejer", "reje", "hummer", "krabbe", "krabber",
				"musling", "muslinger", "østers",
				"shrimp", "prawn", "prawns", "lobster", "crab",
				"mussel", "mussels", "oyster", "scallop", "clam", "crayfish",
			},
			"fish": {
				"fisk", "laks", "torsk", "tun", "makrel", "sild", "ål", "rødspætte",
				"salmon", "cod", "tuna", "mackerel", "herring",
				"anchovy", "ansjovs", "sardine", "sardin",
			},
			"eggs":    {"æg", "æggehvide", "æggeblomme", "egg", "eggs", "albumin", "mayonnaise", "mayo"},
			"soy":     {"soja", "soy", "tofu", "edamame", "miso", "tempeh", "sojasauce", "soy sauce"},
			"sesame":  {"sesam", "sesame", "tahini"},
			"celery":  {"selleri", "celery", "celeriac", "knoldselleri"},
			"mustard": {"sennep", "mustard"},
		},
		DietaryKeywords: map[string][]string{
			"vegetarian": {
				"kød", "oksekød", "svinekød", "kylling", "kalkun", "gås", "lam",
				"vildt", "bacon", "skinke", "pølse", "leverpostej", "paté",
				"meat", "beef", "pork", "chicken", "turkey", "duck", "lamb",
				"ham", "sausage", "salami", "pepperoni",
				"fisk", "fish", "rejer", "shrimp", "laks", "salmon",
				"gelatin", "gelatine",
			},
			"vegan": {
				"kød", "oksekød", "svinekød", "kylling", "bacon", "skinke", "pølse",
				"meat", "beef", "pork", "chicken", "fisk", "fish",
				"mælk", "milk", "fløde", "cream", "ost", "cheese", "smør", "butter",
				"æg", "egg", "honning", "honey", "yoghurt", "yogurt", "skyr", "gelatin",
			},
			"pescatarian": {
				"kød", "oksekød", "svinekød", "kylling", "bacon", "skinke", "pølse",
				"meat", "beef", "pork", "chicken", "turkey", "ham", "sausage",
			},
		},
		SafeIndicators: map[string][]string{
			"vegetarian":   {"vegetar", "vegetarian", "veggie", "plantebaseret", "plant-based"},
			"vegan":        {"vegan", "vegansk", "plantebaseret", "plant-based"},
			"gluten":       {"glutenfri", "gluten-free", "gluten free"},
			"lactose":      {"laktosefri", "lactose-free", "lactose free"},
			"dairy":        {"laktosefri", "mælkefri", "dairy-free", "dairy free"},
		},
		SafeModifiers: map[string]string{
			"lactose":    "laktosefri",
			"dairy":      "laktosefri",
			"gluten":     "glutenfri",
			"vegan":      "vegansk",
			"vegetarian": "vegetar",
		},
		TracePatterns: []string{
			"kan indeholde", "spor af", "produceret i", "may contain", "traces of",
		},
		FoodCategories: []string{
			"Grønt", "Mejeri", "Kød", "Frost", "Brød", "VIN", "Drikke", "Kolonial",
		},
		NonFoodCategories: []string{
			"Husholdning", "Pleje", "Rengøring", "Baby", "Dyremad", "Apotek",
		},
		SnackCategories: []string{"Kiosk"},
		SnackTerms: []string{
			"chips", "slik", "candy", "snack", "chokolade", "chocolate",
		},
		DerivativeTerms: []string{
			"chips", "snack", "sauce", "dressing", "pulver", "powder", "mix",
			"krydderi", "spice", "klude", "refill", "rengøring", "spray",
			"sæbe", "vask", "ble", "bleer", "drynites", "shampoo",
		},
		CleaningTerms: []string{
			"klud", "klude", "rengøring", "spray", "sæbe", "vask", "mopning",
			"ble", "bleer", "drynites", "shampoo",
		},
		FlavorConnectors: []string{" m. ", " med ", " smag "},
		OrganicIndicators: []string{"øko", "økologisk", "organic"},
	}
}

// Translate returns the Danish term for an ingredient name: whole-name
// exact match first, then substring search across known phrases, then
// per-word lookup. Empty string means no translation is known.
func (l *Lexicon) Translate(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if da, ok := l.Translations[n]; ok {
		return da
	}
	for en, da := range l.Translations {
		if strings.Contains(en, " ") && strings.Contains(n, en) {
			return da
		}
	}
	for _, word := range strings.Fields(n) {
		if da, ok := l.Translations[word]; ok {
			return da
		}
	}
	return ""
}

// ContextQuery returns the override query for an ingredient under a meal
// context, if one applies.
func (l *Lexicon) ContextQuery(name, mealContext string) string {
	if mealContext == "" {
		return ""
	}
	n := strings.ToLower(strings.TrimSpace(name))
	ctx := strings.ToLower(mealContext)
	for _, o := range l.ContextOverrides {
		if o.Ingredient == n && strings.Contains(ctx, o.Context) {
			return o.Query
		}
	}
	return ""
}

// Singular maps a known plural to its singular form, or returns the input.
func (l *Lexicon) Singular(word string) string {
	if s, ok := l.Plurals[word]; ok {
		return s
	}
	return word
}

// ApplyOverrides merges a YAML override file into the lexicon. Map entries
// add or replace; list entries append. A missing file is an error so typos
// in the configured path surface.
func (l *Lexicon) ApplyOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "lexicon: read overrides %s", path)
	}

	var o Lexicon
	if err := yaml.Unmarshal(data, &o); err != nil {
		return eris.Wrapf(err, "lexicon: parse overrides %s", path)
	}

	mergeMap(l.Translations, o.Translations)
	mergeMap(l.TermImprovements, o.TermImprovements)
	mergeMap(l.Plurals, o.Plurals)
	mergeMap(l.SafeModifiers, o.SafeModifiers)
	mergeKeyed(l.AllergenKeywords, o.AllergenKeywords)
	mergeKeyed(l.DietaryKeywords, o.DietaryKeywords)
	mergeKeyed(l.SafeIndicators, o.SafeIndicators)
	l.ContextOverrides = append(l.ContextOverrides, o.ContextOverrides...)
	l.FillerWords = append(l.FillerWords, o.FillerWords...)
	l.TracePatterns = append(l.TracePatterns, o.TracePatterns...)
	l.FoodCategories = append(l.FoodCategories, o.FoodCategories...)
	l.NonFoodCategories = append(l.NonFoodCategories, o.NonFoodCategories...)
	l.SnackCategories = append(l.SnackCategories, o.SnackCategories...)
	l.SnackTerms = append(l.SnackTerms, o.SnackTerms...)
	l.DerivativeTerms = append(l.DerivativeTerms, o.DerivativeTerms...)
	l.CleaningTerms = append(l.CleaningTerms, o.CleaningTerms...)
	l.FlavorConnectors = append(l.FlavorConnectors, o.FlavorConnectors...)
	l.OrganicIndicators = append(l.OrganicIndicators, o.OrganicIndicators...)

	return nil
}

func mergeMap(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func mergeKeyed(dst, src map[string][]string) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}

// ContainsAny reports whether any keyword occurs in text. It is the single
// matcher every keyword table is consumed through.
func ContainsAny(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}
